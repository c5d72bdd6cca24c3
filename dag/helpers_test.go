package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridml/engine"
)

// fakeExecutor scripts engine responses for graph tests. Every requested
// output is answered from the results map, or with a 1x1 matrix when the
// map has no entry for it.
type fakeExecutor struct {
	calls   int
	scripts []string
	inputs  []map[string]engine.Value
	names   [][]string

	results map[string]engine.Value
	omit    map[string]struct{}
	extra   map[string]engine.Value
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, script string, inputs map[string]engine.Value, outputs []string) (map[string]engine.Value, error) {
	f.calls++
	f.scripts = append(f.scripts, script)
	f.inputs = append(f.inputs, inputs)
	f.names = append(f.names, outputs)
	if f.err != nil {
		return nil, f.err
	}

	out := map[string]engine.Value{}
	for _, name := range outputs {
		if _, skip := f.omit[name]; skip {
			continue
		}
		if v, ok := f.results[name]; ok {
			out[name] = v
			continue
		}
		out[name] = onesMatrix(1, 1)
	}
	for name, v := range f.extra {
		out[name] = v
	}
	return out, nil
}

func onesMatrix(rows, cols int) *engine.MatrixData {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 1
	}
	m, err := engine.NewMatrixData(rows, cols, data)
	if err != nil {
		panic(err)
	}
	return m
}

func newTestContext(t *testing.T) (*engine.Context, *fakeExecutor) {
	t.Helper()
	exec := &fakeExecutor{}
	return engine.NewContext(exec), exec
}

func leafMatrix(ectx *engine.Context, rows, cols int) *Matrix {
	return NewMatrix(ectx, onesMatrix(rows, cols))
}

func requireScript(t *testing.T, exec *fakeExecutor, call int, want string) {
	t.Helper()
	require.Less(t, call, len(exec.scripts), "expected at least %d engine calls", call+1)
	require.Equal(t, want, exec.scripts[call])
}
