package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// ConfusionMatrixResult pairs the count matrix with its row-normalized
// form.
type ConfusionMatrixResult struct {
	Sum *dag.Matrix
	Avg *dag.Matrix
}

// ConfusionMatrix builds the deferred confusionMatrix call over predicted
// labels P and ground-truth labels Y.
func ConfusionMatrix(ectx *engine.Context, P, Y *dag.Matrix) (*ConfusionMatrixResult, error) {
	if P == nil {
		return nil, errors.New("confusionMatrix: parameter P is required")
	}
	if Y == nil {
		return nil, errors.New("confusionMatrix: parameter Y is required")
	}
	mr := dag.NamedMultiOp(ectx, "confusionMatrix",
		[]dag.NamedInput{{Name: "P", Value: P}, {Name: "Y", Value: Y}},
		[]dag.OutputType{dag.OutputMatrix, dag.OutputMatrix})
	sum, err := mr.Matrix(0)
	if err != nil {
		return nil, err
	}
	avg, err := mr.Matrix(1)
	if err != nil {
		return nil, err
	}
	return &ConfusionMatrixResult{Sum: sum, Avg: avg}, nil
}
