// Package dag builds lazy computation graphs over remote engine operations.
// Handles (Matrix, Frame, Scalar, List) stand in for values that do not
// exist yet; calling Compute assembles the reachable subgraph into a script,
// executes it in one round trip, and caches the materialized results on the
// handles so later computations reuse them as bound inputs.
package dag
