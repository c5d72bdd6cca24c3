package algorithm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridml/dag"
	"github.com/vk/gridml/engine"
)

// recordingExecutor captures submitted scripts and answers every requested
// output with a 1x1 matrix.
type recordingExecutor struct {
	calls   int
	scripts []string
	inputs  []map[string]engine.Value
}

func (f *recordingExecutor) Execute(_ context.Context, script string, inputs map[string]engine.Value, outputs []string) (map[string]engine.Value, error) {
	f.calls++
	f.scripts = append(f.scripts, script)
	f.inputs = append(f.inputs, inputs)
	out := map[string]engine.Value{}
	for _, name := range outputs {
		m, err := engine.NewMatrixData(1, 1, []float64{1})
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	return out, nil
}

func newTestContext(t *testing.T) (*engine.Context, *recordingExecutor) {
	t.Helper()
	exec := &recordingExecutor{}
	return engine.NewContext(exec), exec
}

func leaf(t *testing.T, ectx *engine.Context, rows, cols int) *dag.Matrix {
	t.Helper()
	data := make([]float64, rows*cols)
	m, err := engine.NewMatrixData(rows, cols, data)
	require.NoError(t, err)
	return dag.NewMatrix(ectx, m)
}

func fullSherlockParams(t *testing.T, ectx *engine.Context) SherlockPredictParams {
	t.Helper()
	w := func() *dag.Matrix { return leaf(t, ectx, 2, 2) }
	return SherlockPredictParams{
		X:   leaf(t, ectx, 5, 1588),
		CW1: w(), Cb1: w(), CW2: w(), Cb2: w(), CW3: w(), Cb3: w(),
		WW1: w(), Wb1: w(), WW2: w(), Wb2: w(), WW3: w(), Wb3: w(),
		PW1: w(), Pb1: w(), PW2: w(), Pb2: w(), PW3: w(), Pb3: w(),
		SW1: w(), Sb1: w(), SW2: w(), Sb2: w(), SW3: w(), Sb3: w(),
		FW1: w(), Fb1: w(), FW2: w(), Fb2: w(), FW3: w(), Fb3: w(),
	}
}

func TestSherlockPredict(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	probs, err := SherlockPredict(ectx, fullSherlockParams(t, ectx))
	require.NoError(t, err)
	require.False(t, probs.IsMaterialized(), "the wrapper must stay lazy")
	require.Equal(t, 0, exec.calls)

	_, err = probs.Compute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, exec.calls)

	script := exec.scripts[0]
	require.Contains(t, script, "sherlockPredict(")
	for _, name := range []string{"X=", "cW1=", "cb3=", "wW2=", "pb1=", "sW3=", "fb3="} {
		require.Contains(t, script, name)
	}
	require.Len(t, exec.inputs[0], 31, "all weight matrices travel as bound inputs")
}

func TestSherlockPredict_MissingParam(t *testing.T) {
	t.Parallel()

	ectx, _ := newTestContext(t)
	params := fullSherlockParams(t, ectx)
	params.Wb2 = nil

	_, err := SherlockPredict(ectx, params)
	require.ErrorContains(t, err, "parameter wb2 is required")
}

func TestKmeans_OptionalParamsForwardedOnlyWhenSet(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	res, err := Kmeans(ectx, KmeansParams{X: leaf(t, ectx, 20, 3), K: 5, Seed: 42})
	require.NoError(t, err)

	_, err = res.C.Compute(context.Background())
	require.NoError(t, err)

	script := exec.scripts[0]
	require.Contains(t, script, "kmeans(")
	require.Contains(t, script, "k=5")
	require.Contains(t, script, "seed=42")
	require.NotContains(t, script, "runs=")
	require.NotContains(t, script, "max_iter=")
	require.NotContains(t, script, "is_verbose=")

	// Both outputs fill from the one round trip.
	require.True(t, res.Y.IsMaterialized())
	require.Equal(t, 1, exec.calls)
}

func TestKmeans_RequiresX(t *testing.T) {
	t.Parallel()

	ectx, _ := newTestContext(t)
	_, err := Kmeans(ectx, KmeansParams{})
	require.ErrorContains(t, err, "parameter X is required")
}

func TestLm(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	betas, err := Lm(ectx, LmParams{
		X:       leaf(t, ectx, 10, 4),
		Y:       leaf(t, ectx, 10, 1),
		Reg:     0.001,
		MaxIter: 50,
	})
	require.NoError(t, err)

	_, err = betas.Compute(context.Background())
	require.NoError(t, err)

	script := exec.scripts[0]
	require.Contains(t, script, "lm(")
	require.Contains(t, script, "y=")
	require.Contains(t, script, "reg=0.001")
	require.Contains(t, script, "maxi=50")
}

func TestPCA_AndScale_ReturnFullTuples(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)

	pca, err := PCA(ectx, PCAParams{X: leaf(t, ectx, 30, 8), K: 2, Center: true})
	require.NoError(t, err)
	scaled, err := Scale(ectx, leaf(t, ectx, 30, 8), true, true)
	require.NoError(t, err)

	_, err = pca.Xout.Compute(context.Background())
	require.NoError(t, err)
	require.True(t, pca.Mout.IsMaterialized())

	_, err = scaled.Out.Compute(context.Background())
	require.NoError(t, err)
	require.True(t, scaled.Centering.IsMaterialized())
	require.True(t, scaled.ScaleFactor.IsMaterialized())

	require.Equal(t, 2, exec.calls)
	require.Contains(t, exec.scripts[1], "scale(")
	require.Contains(t, exec.scripts[1], "center=TRUE")
}

func TestConfusionMatrix_RequiresBothInputs(t *testing.T) {
	t.Parallel()

	ectx, _ := newTestContext(t)
	_, err := ConfusionMatrix(ectx, leaf(t, ectx, 5, 1), nil)
	require.ErrorContains(t, err, "parameter Y is required")

	_, err = ConfusionMatrix(ectx, nil, leaf(t, ectx, 5, 1))
	require.ErrorContains(t, err, "parameter P is required")
}
