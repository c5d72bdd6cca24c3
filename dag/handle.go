package dag

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/vk/gridml/engine"
)

// Handle is a typed reference to a value that is either already materialized
// or still pending behind an operation node. Handles compare by reference:
// two handles over identical contents are distinct graph nodes.
type Handle interface {
	// IsMaterialized reports whether a concrete value is already cached.
	IsMaterialized() bool

	core() *handle
}

// handle is the shared state behind every typed handle. Exactly one of
// {val, node} is set; once val is set the handle never changes again. The
// typed wrappers embed a pointer so that a node's output slot and the
// user-visible handle are the same state.
type handle struct {
	ectx *engine.Context
	node *Node
	slot int
	out  OutputType

	mu  sync.Mutex
	val engine.Value
}

func (h *handle) core() *handle { return h }

// IsMaterialized implements Handle.
func (h *handle) IsMaterialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val != nil
}

func (h *handle) cached() engine.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val
}

func (h *handle) store(v engine.Value) {
	h.mu.Lock()
	h.val = v
	h.mu.Unlock()
}

// opName names the producing operator for error messages, or "constant" for
// materialized leaves.
func (h *handle) opName() string {
	if h.node != nil {
		return h.node.op
	}
	return "constant"
}

// compute materializes the handle's graph if needed and returns the value.
func (h *handle) compute(ctx context.Context) (engine.Value, error) {
	if v := h.cached(); v != nil {
		return v, nil
	}
	if err := materialize(ctx, h.ectx, []*handle{h}); err != nil {
		return nil, err
	}
	return h.cached(), nil
}

func leafHandle(ectx *engine.Context, out OutputType, v engine.Value) *handle {
	return &handle{ectx: ectx, out: out, val: v}
}

// Matrix is a handle to a dense float64 matrix.
type Matrix struct {
	*handle
}

// NewMatrix wraps an already materialized matrix as a leaf handle. Leaves
// are shipped to the engine as bound inputs, never re-expanded.
func NewMatrix(ectx *engine.Context, data *engine.MatrixData) *Matrix {
	return &Matrix{leafHandle(ectx, OutputMatrix, data)}
}

// Compute materializes the matrix, running the pending graph on first call
// and serving the cached value afterwards.
func (m *Matrix) Compute(ctx context.Context) (*engine.MatrixData, error) {
	v, err := m.compute(ctx)
	if err != nil {
		return nil, err
	}
	return v.(*engine.MatrixData), nil
}

// Frame is a handle to a column-schema frame.
type Frame struct {
	*handle
}

// NewFrame wraps an already materialized frame as a leaf handle.
func NewFrame(ectx *engine.Context, data *engine.FrameData) *Frame {
	return &Frame{leafHandle(ectx, OutputFrame, data)}
}

// Compute materializes the frame.
func (f *Frame) Compute(ctx context.Context) (*engine.FrameData, error) {
	v, err := f.compute(ctx)
	if err != nil {
		return nil, err
	}
	return v.(*engine.FrameData), nil
}

// Scalar is a handle to a single typed scalar.
type Scalar struct {
	*handle
}

// NewScalar wraps a native Go bool, number or string as a leaf scalar.
// Scalar leaves are rendered inline as script literals during assembly.
func NewScalar(ectx *engine.Context, v any) (*Scalar, error) {
	sv, err := engine.ScalarOf(v)
	if err != nil {
		return nil, err
	}
	return &Scalar{leafHandle(ectx, OutputScalar, sv)}, nil
}

// Compute materializes the scalar.
func (s *Scalar) Compute(ctx context.Context) (engine.ScalarValue, error) {
	v, err := s.compute(ctx)
	if err != nil {
		return engine.ScalarValue{}, err
	}
	return v.(engine.ScalarValue), nil
}

// List is a handle to an ordered collection produced by an operation.
type List struct {
	*handle
}

// Compute materializes the list's scalar elements.
func (l *List) Compute(ctx context.Context) (engine.ListValue, error) {
	v, err := l.compute(ctx)
	if err != nil {
		return engine.ListValue{}, err
	}
	return v.(engine.ListValue), nil
}

// MatrixAt returns a lazy handle to element i of the list, viewed as a
// matrix. The element access is itself a deferred operation; nothing runs
// until the returned handle is computed.
func (l *List) MatrixAt(i int) *Matrix {
	idx := Lit(l.ectx, int64(i))
	node := newNode(l.ectx, "as.matrix", nil, []Handle{l, idx}, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

// ScalarAt returns a lazy handle to element i of the list, viewed as a
// scalar.
func (l *List) ScalarAt(i int) *Scalar {
	idx := Lit(l.ectx, int64(i))
	node := newNode(l.ectx, "as.scalar", nil, []Handle{l, idx}, []OutputType{OutputScalar})
	return &Scalar{node.outs[0]}
}

// MultiReturn groups the ordered output handles of one operation that
// declares several outputs. All sub-handles share the producing node; their
// count and order are fixed at creation and must match the declared arity.
type MultiReturn struct {
	node *Node
	subs []Handle
}

// Len returns the declared output arity.
func (m *MultiReturn) Len() int { return len(m.subs) }

// At returns output slot i.
func (m *MultiReturn) At(i int) Handle { return m.subs[i] }

// Matrix returns output slot i as a matrix handle.
func (m *MultiReturn) Matrix(i int) (*Matrix, error) {
	h, ok := m.subs[i].(*Matrix)
	if !ok {
		return nil, errors.Errorf("%s output %d is %s, not a matrix", m.node.op, i, m.node.outTypes[i])
	}
	return h, nil
}

// Frame returns output slot i as a frame handle.
func (m *MultiReturn) Frame(i int) (*Frame, error) {
	h, ok := m.subs[i].(*Frame)
	if !ok {
		return nil, errors.Errorf("%s output %d is %s, not a frame", m.node.op, i, m.node.outTypes[i])
	}
	return h, nil
}

// Scalar returns output slot i as a scalar handle.
func (m *MultiReturn) Scalar(i int) (*Scalar, error) {
	h, ok := m.subs[i].(*Scalar)
	if !ok {
		return nil, errors.Errorf("%s output %d is %s, not a scalar", m.node.op, i, m.node.outTypes[i])
	}
	return h, nil
}

// IsMaterialized reports whether every output slot is materialized.
func (m *MultiReturn) IsMaterialized() bool {
	for _, s := range m.subs {
		if !s.IsMaterialized() {
			return false
		}
	}
	return true
}

// Compute materializes all output slots in a single engine round trip.
func (m *MultiReturn) Compute(ctx context.Context) error {
	targets := make([]*handle, len(m.subs))
	for i, s := range m.subs {
		targets[i] = s.core()
	}
	return materialize(ctx, m.node.outs[0].ectx, targets)
}

// NamedMatrixOp builds a deferred named-input operation producing a matrix.
// This is the constructor the generated algorithm wrappers use.
func NamedMatrixOp(ectx *engine.Context, op string, inputs []NamedInput) *Matrix {
	node := newNode(ectx, op, inputs, nil, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

// NamedFrameOp builds a deferred named-input operation producing a frame.
func NamedFrameOp(ectx *engine.Context, op string, inputs []NamedInput) *Frame {
	node := newNode(ectx, op, inputs, nil, []OutputType{OutputFrame})
	return &Frame{node.outs[0]}
}

// NamedScalarOp builds a deferred named-input operation producing a scalar.
func NamedScalarOp(ectx *engine.Context, op string, inputs []NamedInput) *Scalar {
	node := newNode(ectx, op, inputs, nil, []OutputType{OutputScalar})
	return &Scalar{node.outs[0]}
}

// NamedListOp builds a deferred named-input operation producing a list.
func NamedListOp(ectx *engine.Context, op string, inputs []NamedInput) *List {
	node := newNode(ectx, op, inputs, nil, []OutputType{OutputList})
	return &List{node.outs[0]}
}

// NamedMultiOp builds a deferred named-input operation with several declared
// outputs and returns the grouped handles.
func NamedMultiOp(ectx *engine.Context, op string, inputs []NamedInput, outs []OutputType) *MultiReturn {
	node := newNode(ectx, op, inputs, nil, outs)
	subs := make([]Handle, len(outs))
	for i, t := range outs {
		subs[i] = typedHandle(node.outs[i], t)
	}
	return &MultiReturn{node: node, subs: subs}
}

// typedHandle wraps a slot core in its public typed handle.
func typedHandle(h *handle, t OutputType) Handle {
	switch t {
	case OutputFrame:
		return &Frame{h}
	case OutputScalar:
		return &Scalar{h}
	case OutputList:
		return &List{h}
	default:
		return &Matrix{h}
	}
}

// Lit wraps a native bool, number or string as a leaf scalar, panicking on
// unsupported types. It exists for wrapper code whose literals are known
// convertible at compile time; everything else should use NewScalar.
func Lit(ectx *engine.Context, v any) *Scalar {
	s, err := NewScalar(ectx, v)
	if err != nil {
		panic(err)
	}
	return s
}
