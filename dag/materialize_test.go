package dag

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridml/engine"
)

func TestMaterialize_TypeMismatchLeavesHandleUntouched(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	exec.results = map[string]engine.Value{"v0": engine.IntScalar(3)}
	x := leafMatrix(ectx, 2, 2)
	y := leafMatrix(ectx, 2, 2)
	sum := x.Add(y)

	_, err := sum.Compute(context.Background())

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "+", mismatch.Op)
	require.False(t, sum.IsMaterialized(), "failed materialization must not mutate the handle")
}

func TestMaterialize_MissingOutputIsArityError(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	exec.omit = map[string]struct{}{"v1": {}}
	x := leafMatrix(ectx, 8, 2)
	mr := NamedMultiOp(ectx, "kmeans",
		[]NamedInput{{Name: "X", Value: x}},
		[]OutputType{OutputMatrix, OutputMatrix})

	err := mr.Compute(context.Background())

	var arity *OutputArityError
	require.ErrorAs(t, err, &arity)
	require.Equal(t, 2, arity.Want)
	require.Equal(t, 1, arity.Got)
	require.False(t, mr.At(0).IsMaterialized())
	require.False(t, mr.At(1).IsMaterialized())
}

func TestMaterialize_SurplusOutputIsArityError(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	exec.extra = map[string]engine.Value{"v9": onesMatrix(1, 1)}
	x := leafMatrix(ectx, 8, 2)
	mr := NamedMultiOp(ectx, "kmeans",
		[]NamedInput{{Name: "X", Value: x}},
		[]OutputType{OutputMatrix, OutputMatrix})

	err := mr.Compute(context.Background())

	var arity *OutputArityError
	require.ErrorAs(t, err, &arity)
	require.Equal(t, 2, arity.Want)
	require.Equal(t, 3, arity.Got)
}

func TestMaterialize_ExecutorErrorPropagates(t *testing.T) {
	t.Parallel()

	ectx, exec := newTestContext(t)
	exec.err = errors.New("engine unreachable")
	x := leafMatrix(ectx, 2, 2)
	sum := x.Add(x)

	_, err := sum.Compute(context.Background())

	require.ErrorContains(t, err, "engine unreachable")
	require.False(t, sum.IsMaterialized())
}

func TestMaterialize_PartialFailureMutatesNothing(t *testing.T) {
	t.Parallel()

	// One of two requested outputs comes back with the wrong kind. Neither
	// handle may be assigned, including the valid one.
	ectx, exec := newTestContext(t)
	exec.results = map[string]engine.Value{
		"v0": engine.IntScalar(1),      // sum wants a matrix
		"v1": engine.FloatScalar(2.5),  // avg is fine
	}
	x := leafMatrix(ectx, 3, 3)
	y := leafMatrix(ectx, 3, 3)
	sum := x.Add(y)
	avg := sum.Mean()

	err := materialize(context.Background(), ectx, []*handle{sum.core(), avg.core()})

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "+", mismatch.Op)
	require.False(t, sum.IsMaterialized())
	require.False(t, avg.IsMaterialized())
}
