// Package dag is the execution layer of the application. It builds an
// immutable directed acyclic graph from the registered tasks and evaluates
// any subset of it concurrently with a worker pool.
//
// The graph holds topology only. Every call to Executor.Run creates fresh
// per-run state, so the same graph can be evaluated repeatedly, e.g. by the
// file watchers that rebuild one category at a time.
package dag
