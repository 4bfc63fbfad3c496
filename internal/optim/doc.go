// Package optim defines the optimization step behind the lab's
// "Optimizar Parámetros" action.
//
// [Placeholder] is what ships: a fixed simulated latency followed by an
// evaluation and canned savings. [GridOptimizer] satisfies the same
// [Optimizer] contract with an exhaustive grid search, so a real optimizer
// can be swapped in without touching callers.
package optim
