// Package executor runs a dag.Plan on a pool of workers.
//
// A single coordinator goroutine owns every state transition and decides
// when a task is released. Workers take a task's artifact locks, evaluate
// its skip predicate and run its action. After the first failure no further
// task is started unless the executor was configured to continue on failure;
// tasks already running are left to finish.
package executor
