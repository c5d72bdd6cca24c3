package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// L2SVMParams are the inputs of the l2svm builtin.
type L2SVMParams struct {
	X *dag.Matrix
	Y *dag.Matrix

	Intercept     bool
	Epsilon       float64
	Reg           float64
	MaxIterations int
	Verbose       bool
}

// L2SVM builds the deferred binary-class support vector machine call and
// returns the model weight matrix handle.
func L2SVM(ectx *engine.Context, p L2SVMParams) (*dag.Matrix, error) {
	if p.X == nil {
		return nil, errors.New("l2svm: parameter X is required")
	}
	if p.Y == nil {
		return nil, errors.New("l2svm: parameter Y is required")
	}
	inputs := []dag.NamedInput{
		{Name: "X", Value: p.X},
		{Name: "Y", Value: p.Y},
	}
	if p.Intercept {
		inputs = append(inputs, dag.NamedInput{Name: "intercept", Value: dag.Lit(ectx, true)})
	}
	if p.Epsilon != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "epsilon", Value: dag.Lit(ectx, p.Epsilon)})
	}
	if p.Reg != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "reg", Value: dag.Lit(ectx, p.Reg)})
	}
	if p.MaxIterations != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "maxIterations", Value: dag.Lit(ectx, int64(p.MaxIterations))})
	}
	if p.Verbose {
		inputs = append(inputs, dag.NamedInput{Name: "verbose", Value: dag.Lit(ectx, true)})
	}
	return dag.NamedMatrixOp(ectx, "l2svm", inputs), nil
}
