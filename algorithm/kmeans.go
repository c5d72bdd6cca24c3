package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// KmeansParams are the inputs of the kmeans builtin. X is required; zero
// values for the remaining fields leave the engine defaults in force.
type KmeansParams struct {
	X *dag.Matrix

	K                        int
	Runs                     int
	MaxIter                  int
	Eps                      float64
	AvgSampleSizePerCentroid int
	Seed                     int
	IsVerbose                bool
}

// KmeansResult pairs the two outputs of kmeans.
type KmeansResult struct {
	// C holds the centroids, one per row.
	C *dag.Matrix
	// Y holds the cluster assignment per row of X.
	Y *dag.Matrix
}

// Kmeans builds the deferred kmeans call.
func Kmeans(ectx *engine.Context, p KmeansParams) (*KmeansResult, error) {
	if p.X == nil {
		return nil, errors.New("kmeans: parameter X is required")
	}
	inputs := []dag.NamedInput{{Name: "X", Value: p.X}}
	if p.K != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "k", Value: dag.Lit(ectx, int64(p.K))})
	}
	if p.Runs != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "runs", Value: dag.Lit(ectx, int64(p.Runs))})
	}
	if p.MaxIter != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "max_iter", Value: dag.Lit(ectx, int64(p.MaxIter))})
	}
	if p.Eps != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "eps", Value: dag.Lit(ectx, p.Eps)})
	}
	if p.AvgSampleSizePerCentroid != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "avg_sample_size_per_centroid", Value: dag.Lit(ectx, int64(p.AvgSampleSizePerCentroid))})
	}
	if p.Seed != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "seed", Value: dag.Lit(ectx, int64(p.Seed))})
	}
	if p.IsVerbose {
		inputs = append(inputs, dag.NamedInput{Name: "is_verbose", Value: dag.Lit(ectx, true)})
	}

	mr := dag.NamedMultiOp(ectx, "kmeans", inputs, []dag.OutputType{dag.OutputMatrix, dag.OutputMatrix})
	c, err := mr.Matrix(0)
	if err != nil {
		return nil, err
	}
	y, err := mr.Matrix(1)
	if err != nil {
		return nil, err
	}
	return &KmeansResult{C: c, Y: y}, nil
}
