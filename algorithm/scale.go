package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// ScaleResult carries the standardized data plus the centering and scaling
// vectors needed to apply the same transform to new data.
type ScaleResult struct {
	Out         *dag.Matrix
	Centering   *dag.Matrix
	ScaleFactor *dag.Matrix
}

// Scale builds the deferred scale call: column-wise centering and/or
// scaling of X.
func Scale(ectx *engine.Context, X *dag.Matrix, center, scale bool) (*ScaleResult, error) {
	if X == nil {
		return nil, errors.New("scale: parameter X is required")
	}
	inputs := []dag.NamedInput{
		{Name: "X", Value: X},
		{Name: "center", Value: dag.Lit(ectx, center)},
		{Name: "scale", Value: dag.Lit(ectx, scale)},
	}
	mr := dag.NamedMultiOp(ectx, "scale", inputs,
		[]dag.OutputType{dag.OutputMatrix, dag.OutputMatrix, dag.OutputMatrix})
	out, err := mr.Matrix(0)
	if err != nil {
		return nil, err
	}
	centering, err := mr.Matrix(1)
	if err != nil {
		return nil, err
	}
	sf, err := mr.Matrix(2)
	if err != nil {
		return nil, err
	}
	return &ScaleResult{Out: out, Centering: centering, ScaleFactor: sf}, nil
}
