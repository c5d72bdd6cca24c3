package dag

import (
	"fmt"
	"strings"

	"github.com/vk/gridml/engine"
)

// reservedWords are identifiers of the engine's script language that a
// generated variable name must never collide with. Generated names follow
// the v<N>/in<N> pattern, so collisions cannot happen today; the guard
// protects against future prefix changes.
var reservedWords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "parfor": {},
	"function": {}, "return": {}, "source": {}, "setwd": {},
	"TRUE": {}, "FALSE": {}, "NaN": {}, "Inf": {},
	"matrix": {}, "frame": {}, "list": {}, "print": {}, "write": {}, "read": {},
}

// infixOps are builtins emitted in infix form between exactly two
// positional inputs.
var infixOps = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {}, "^": {}, "%*%": {},
}

// Plan is the result of one assembly pass: the script text, the bound
// top-level inputs shipped alongside it, and the requested output variables
// in target order.
type Plan struct {
	Script  string
	Inputs  map[string]engine.Value
	Outputs []string

	// vars maps each target handle to its script variable, for the
	// materializer to route results back.
	vars map[*handle]string
}

// assembler holds the per-pass bookkeeping. A pass owns its name allocator;
// nothing carries over between passes.
type assembler struct {
	lines []string

	nextVar int
	nextIn  int

	nodeVars  map[*Node][]string
	leafNames map[*handle]string
	inputs    map[string]engine.Value

	visiting map[*Node]struct{}
	done     map[*Node]struct{}
}

// assemble walks the union of the targets' pending graphs in depth-first
// post-order and emits one statement per node, in dependency order. A node
// shared by several targets is emitted exactly once: de-duplication is by
// node identity, never by operator/input equality.
func assemble(targets []*handle) (*Plan, error) {
	a := &assembler{
		nodeVars:  map[*Node][]string{},
		leafNames: map[*handle]string{},
		inputs:    map[string]engine.Value{},
		visiting:  map[*Node]struct{}{},
		done:      map[*Node]struct{}{},
	}

	plan := &Plan{vars: map[*handle]string{}}
	for _, t := range targets {
		if t.node == nil {
			// Materialized leaves need no statement; the caller serves
			// them from cache.
			continue
		}
		if err := a.visit(t.node); err != nil {
			return nil, err
		}
	}
	for _, t := range targets {
		if t.node == nil {
			continue
		}
		name := a.nodeVars[t.node][t.slot]
		if _, dup := plan.vars[t]; dup {
			continue
		}
		plan.vars[t] = name
		plan.Outputs = append(plan.Outputs, name)
	}

	plan.Script = strings.Join(a.lines, "\n") + "\n"
	plan.Inputs = a.inputs
	return plan, nil
}

// visit emits the statement for n after all of its pending inputs, guarding
// against reference cycles. Nodes are immutable, so a cycle can only come
// from a construction bug; it fails fast rather than looping.
func (a *assembler) visit(n *Node) error {
	if _, ok := a.done[n]; ok {
		return nil
	}
	if _, ok := a.visiting[n]; ok {
		return &GraphCycleError{Op: n.op}
	}
	a.visiting[n] = struct{}{}

	for _, in := range n.inputs() {
		h := in.core()
		if h.node != nil {
			if err := a.visit(h.node); err != nil {
				return err
			}
		}
	}

	vars := make([]string, len(n.outTypes))
	for i := range vars {
		vars[i] = a.freshName("v", &a.nextVar)
	}
	a.nodeVars[n] = vars
	a.lines = append(a.lines, a.statement(n, vars))

	delete(a.visiting, n)
	a.done[n] = struct{}{}
	return nil
}

// statement renders one assignment for the node.
func (a *assembler) statement(n *Node, vars []string) string {
	lhs := vars[0]
	if n.multi() {
		lhs = "[" + strings.Join(vars, ",") + "]"
	}

	if _, infix := infixOps[n.op]; infix && len(n.pos) == 2 {
		return fmt.Sprintf("%s = %s %s %s", lhs, a.argRef(n.pos[0]), n.op, a.argRef(n.pos[1]))
	}

	args := make([]string, 0, len(n.named)+len(n.pos))
	for _, in := range n.named {
		args = append(args, in.Name+"="+a.argRef(in.Value))
	}
	for _, in := range n.pos {
		args = append(args, a.argRef(in))
	}
	return fmt.Sprintf("%s = %s(%s)", lhs, n.op, strings.Join(args, ", "))
}

// argRef renders one input reference: the producing variable for pending
// inputs, an inline literal for scalar constants, and a bound-input name
// for matrix, frame and list constants. Large leaves always travel as bound
// inputs, never as embedded literals.
func (a *assembler) argRef(in Handle) string {
	h := in.core()
	if h.node != nil {
		return a.nodeVars[h.node][h.slot]
	}
	if sv, ok := h.val.(engine.ScalarValue); ok {
		return sv.Literal()
	}
	if name, ok := a.leafNames[h]; ok {
		return name
	}
	name := a.freshName("in", &a.nextIn)
	a.leafNames[h] = name
	a.inputs[name] = h.val
	return name
}

// freshName allocates the next collision-free generated name for the pass.
func (a *assembler) freshName(prefix string, counter *int) string {
	for {
		name := fmt.Sprintf("%s%d", prefix, *counter)
		*counter++
		if _, reserved := reservedWords[name]; !reserved {
			return name
		}
	}
}
