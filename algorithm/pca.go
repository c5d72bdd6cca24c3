package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// PCAParams are the inputs of the pca builtin.
type PCAParams struct {
	X *dag.Matrix

	K      int
	Center bool
	Scale  bool
}

// PCAResult pairs the projected data with the loadings matrix.
type PCAResult struct {
	Xout *dag.Matrix
	Mout *dag.Matrix
}

// PCA builds the deferred principal component analysis call.
func PCA(ectx *engine.Context, p PCAParams) (*PCAResult, error) {
	if p.X == nil {
		return nil, errors.New("pca: parameter X is required")
	}
	inputs := []dag.NamedInput{{Name: "X", Value: p.X}}
	if p.K != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "K", Value: dag.Lit(ectx, int64(p.K))})
	}
	if p.Center {
		inputs = append(inputs, dag.NamedInput{Name: "center", Value: dag.Lit(ectx, true)})
	}
	if p.Scale {
		inputs = append(inputs, dag.NamedInput{Name: "scale", Value: dag.Lit(ectx, true)})
	}

	mr := dag.NamedMultiOp(ectx, "pca", inputs, []dag.OutputType{dag.OutputMatrix, dag.OutputMatrix})
	xout, err := mr.Matrix(0)
	if err != nil {
		return nil, err
	}
	mout, err := mr.Matrix(1)
	if err != nil {
		return nil, err
	}
	return &PCAResult{Xout: xout, Mout: mout}, nil
}
