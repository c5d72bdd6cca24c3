package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// LmParams are the inputs of the lm builtin: feature matrix X and target
// vector Y, plus the usual solver knobs.
type LmParams struct {
	X *dag.Matrix
	Y *dag.Matrix

	Icpt    int
	Reg     float64
	Tol     float64
	MaxIter int
	Verbose bool
}

// Lm builds the deferred linear regression call and returns the
// coefficient matrix handle.
func Lm(ectx *engine.Context, p LmParams) (*dag.Matrix, error) {
	if p.X == nil {
		return nil, errors.New("lm: parameter X is required")
	}
	if p.Y == nil {
		return nil, errors.New("lm: parameter Y is required")
	}
	inputs := []dag.NamedInput{
		{Name: "X", Value: p.X},
		{Name: "y", Value: p.Y},
	}
	if p.Icpt != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "icpt", Value: dag.Lit(ectx, int64(p.Icpt))})
	}
	if p.Reg != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "reg", Value: dag.Lit(ectx, p.Reg)})
	}
	if p.Tol != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "tol", Value: dag.Lit(ectx, p.Tol)})
	}
	if p.MaxIter != 0 {
		inputs = append(inputs, dag.NamedInput{Name: "maxi", Value: dag.Lit(ectx, int64(p.MaxIter))})
	}
	if p.Verbose {
		inputs = append(inputs, dag.NamedInput{Name: "verbose", Value: dag.Lit(ectx, true)})
	}
	return dag.NamedMatrixOp(ectx, "lm", inputs), nil
}
