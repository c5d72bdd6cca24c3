package algorithm

import (
	"github.com/pkg/errors"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// SherlockPredictParams are the inputs of the sherlockPredict builtin: the
// feature matrix X and the trained weight/bias matrices of the ensemble's
// character, word, paragraph, statistics and final branches.
type SherlockPredictParams struct {
	X *dag.Matrix

	CW1, Cb1, CW2, Cb2, CW3, Cb3 *dag.Matrix
	WW1, Wb1, WW2, Wb2, WW3, Wb3 *dag.Matrix
	PW1, Pb1, PW2, Pb2, PW3, Pb3 *dag.Matrix
	SW1, Sb1, SW2, Sb2, SW3, Sb3 *dag.Matrix
	FW1, Fb1, FW2, Fb2, FW3, Fb3 *dag.Matrix
}

// SherlockPredict builds the deferred sherlockPredict call: semantic data
// type prediction for the text columns described by X. Every parameter is
// required. The returned matrix holds the class probabilities and stays
// unevaluated until computed.
func SherlockPredict(ectx *engine.Context, p SherlockPredictParams) (*dag.Matrix, error) {
	args := []struct {
		name string
		m    *dag.Matrix
	}{
		{"X", p.X},
		{"cW1", p.CW1}, {"cb1", p.Cb1}, {"cW2", p.CW2}, {"cb2", p.Cb2}, {"cW3", p.CW3}, {"cb3", p.Cb3},
		{"wW1", p.WW1}, {"wb1", p.Wb1}, {"wW2", p.WW2}, {"wb2", p.Wb2}, {"wW3", p.WW3}, {"wb3", p.Wb3},
		{"pW1", p.PW1}, {"pb1", p.Pb1}, {"pW2", p.PW2}, {"pb2", p.Pb2}, {"pW3", p.PW3}, {"pb3", p.Pb3},
		{"sW1", p.SW1}, {"sb1", p.Sb1}, {"sW2", p.SW2}, {"sb2", p.Sb2}, {"sW3", p.SW3}, {"sb3", p.Sb3},
		{"fW1", p.FW1}, {"fb1", p.Fb1}, {"fW2", p.FW2}, {"fb2", p.Fb2}, {"fW3", p.FW3}, {"fb3", p.Fb3},
	}

	inputs := make([]dag.NamedInput, 0, len(args))
	for _, a := range args {
		if a.m == nil {
			return nil, errors.Errorf("sherlockPredict: parameter %s is required", a.name)
		}
		inputs = append(inputs, dag.NamedInput{Name: a.name, Value: a.m})
	}
	return dag.NamedMatrixOp(ectx, "sherlockPredict", inputs), nil
}
