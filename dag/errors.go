package dag

import "fmt"

// GraphCycleError reports a cycle in the node identity graph. Nodes are
// immutable and built only from existing handles, so this can only surface
// a reference bug; it is fatal for the materialization that hit it.
type GraphCycleError struct {
	Op string
}

func (e *GraphCycleError) Error() string {
	return fmt.Sprintf("operation graph contains a cycle through %q", e.Op)
}

// OutputArityError reports that the engine returned a different number of
// outputs than the operation declared. The mismatch is never papered over
// by truncating or padding.
type OutputArityError struct {
	Op   string
	Want int
	Got  int
}

func (e *OutputArityError) Error() string {
	return fmt.Sprintf("operation %q declared %d outputs, engine returned %d", e.Op, e.Want, e.Got)
}

// TypeMismatchError reports that a returned value cannot serve the handle's
// declared output type.
type TypeMismatchError struct {
	Op   string
	Want OutputType
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("operation %q output is %s, handle expects %s", e.Op, e.Got, e.Want)
}
