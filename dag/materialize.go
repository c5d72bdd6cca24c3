package dag

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vk/gridml/engine"
)

// materialize runs the pending graphs behind the given targets and stores
// the results into their value slots. The whole request succeeds or fails
// atomically: on any error no handle is mutated.
func materialize(ctx context.Context, ectx *engine.Context, targets []*handle) error {
	pending := expandTargets(targets)
	if len(pending) == 0 {
		return nil
	}

	plan, err := assemble(pending)
	if err != nil {
		return err
	}

	results, err := ectx.Execute(ctx, plan.Script, plan.Inputs, plan.Outputs)
	if err != nil {
		return err
	}

	if err := checkArity(pending, plan, results); err != nil {
		return err
	}

	// Validate every assignment before performing any.
	for _, h := range pending {
		v := results[plan.vars[h]]
		if v.Kind() != h.out.kindFor() {
			return &TypeMismatchError{Op: h.opName(), Want: h.out, Got: v.Kind().String()}
		}
	}
	for _, h := range pending {
		h.store(results[plan.vars[h]])
	}
	return nil
}

// expandTargets drops already-materialized handles, de-duplicates, and
// widens multi-output targets to all sibling slots of their node so a
// single round trip fills the whole declared output tuple.
func expandTargets(targets []*handle) []*handle {
	seen := map[*handle]struct{}{}
	var out []*handle
	add := func(h *handle) {
		if _, dup := seen[h]; dup {
			return
		}
		seen[h] = struct{}{}
		if h.cached() == nil {
			out = append(out, h)
		}
	}
	for _, t := range targets {
		if t.node != nil && t.node.multi() {
			for _, sib := range t.node.outs {
				add(sib)
			}
			continue
		}
		add(t)
	}
	return out
}

// checkArity verifies, node by node, that the engine returned exactly the
// declared outputs. A missing or surplus output is an arity violation and
// never silently truncated or padded.
func checkArity(pending []*handle, plan *Plan, results map[string]engine.Value) error {
	perNode := map[*Node][]*handle{}
	for _, h := range pending {
		perNode[h.node] = append(perNode[h.node], h)
	}
	returned := len(results)
	for node, hs := range perNode {
		got := 0
		for _, h := range hs {
			if _, ok := results[plan.vars[h]]; ok {
				got++
			}
		}
		if got != len(hs) {
			return &OutputArityError{Op: node.op, Want: node.Arity(), Got: got}
		}
		returned -= got
	}
	if returned != 0 {
		// Surplus outputs the plan never asked for.
		for node := range perNode {
			if node.multi() {
				return &OutputArityError{Op: node.op, Want: node.Arity(), Got: node.Arity() + returned}
			}
		}
		return errors.Errorf("engine returned %d unrequested outputs", returned)
	}
	return nil
}
