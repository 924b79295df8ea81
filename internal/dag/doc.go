// Package dag holds the task graph: named tasks joined by hard dependency
// edges (`depends_on`) and ordering-only edges (`must_run_after`).
//
// A Graph is built once from the declared tasks and rejected as a whole if
// any reference is unknown, any name is duplicated or the union of both edge
// sets contains a cycle. Plan then selects the tasks needed for a set of
// targets and orders them deterministically. Running the plan is the job of
// the executor package.
package dag
