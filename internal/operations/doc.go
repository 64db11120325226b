// Package operations orchestrates pipeline runs.
//
// A run executes four steps in order: extract fundamentals from raw
// disclosure documents, combine the per-entity tables, align the
// combined table to information dates, and join prices into the
// terminal feature table. The Manager tracks per-step state, records
// spans and metrics for every run, and keeps finished run states
// queryable by ID for the HTTP surface.
//
// Steps hand their outputs to each other through the OperationState.
// A single failing entity never fails a run; it is tallied in the
// batch summary and the run continues with the rest.
package operations
