package dag

import (
	"fmt"

	"github.com/vk/gridml/engine"
)

// OutputType tags the value category an operation slot produces.
type OutputType int

const (
	OutputMatrix OutputType = iota
	OutputFrame
	OutputScalar
	OutputList
)

// String returns a readable name for the tag.
func (t OutputType) String() string {
	switch t {
	case OutputMatrix:
		return "matrix"
	case OutputFrame:
		return "frame"
	case OutputScalar:
		return "scalar"
	case OutputList:
		return "list"
	}
	return fmt.Sprintf("outputtype(%d)", int(t))
}

// kindFor maps an output tag to the wire kind it must materialize as.
func (t OutputType) kindFor() engine.Kind {
	switch t {
	case OutputMatrix:
		return engine.KindMatrix
	case OutputFrame:
		return engine.KindFrame
	case OutputScalar:
		return engine.KindScalar
	case OutputList:
		return engine.KindList
	}
	return engine.KindMatrix
}

// NamedInput is one keyword argument of an operation.
type NamedInput struct {
	Name  string
	Value Handle
}

// Node is a single deferred operation: an operator name, its inputs and the
// declared output slots. A node is immutable after construction and has
// reference identity; two nodes built from the same operator and inputs are
// still distinct, and no structural merging ever happens at this layer.
//
// Inputs are either named or positional, never both: algorithm builtins use
// named inputs to stay robust across dozens of parameters, while the small
// arithmetic builtins use positional form.
type Node struct {
	op    string
	named []NamedInput
	pos   []Handle

	outTypes []OutputType
	outs     []*handle
}

// Op returns the operator name.
func (n *Node) Op() string { return n.op }

// Arity returns the declared number of output slots.
func (n *Node) Arity() int { return len(n.outTypes) }

// NamedInputs returns the keyword arguments in declaration order.
func (n *Node) NamedInputs() []NamedInput { return n.named }

// PositionalInputs returns the positional arguments.
func (n *Node) PositionalInputs() []Handle { return n.pos }

// multi reports whether the node produces more than one output.
func (n *Node) multi() bool { return len(n.outTypes) > 1 }

// inputs yields every input handle in a stable order: named inputs first in
// declaration order, then positional ones.
func (n *Node) inputs() []Handle {
	out := make([]Handle, 0, len(n.named)+len(n.pos))
	for _, in := range n.named {
		out = append(out, in.Value)
	}
	out = append(out, n.pos...)
	return out
}

// newNode builds a node and one pending handle per output slot. Duplicate
// keyword names are a construction bug in the calling wrapper, not a runtime
// condition, so they panic.
func newNode(ectx *engine.Context, op string, named []NamedInput, pos []Handle, outTypes []OutputType) *Node {
	if len(named) > 0 && len(pos) > 0 {
		panic(fmt.Sprintf("dag: operation %q mixes named and positional inputs", op))
	}
	seen := make(map[string]struct{}, len(named))
	for _, in := range named {
		if in.Value == nil {
			panic(fmt.Sprintf("dag: operation %q input %q is nil", op, in.Name))
		}
		if _, dup := seen[in.Name]; dup {
			panic(fmt.Sprintf("dag: operation %q repeats input %q", op, in.Name))
		}
		seen[in.Name] = struct{}{}
	}
	n := &Node{op: op, named: named, pos: pos, outTypes: outTypes}
	n.outs = make([]*handle, len(outTypes))
	for i, t := range outTypes {
		n.outs[i] = &handle{ectx: ectx, node: n, slot: i, out: t}
	}
	return n
}
