// Package pipeline runs a full Collatz backbone generation.
//
// Highlights:
// - Generator.Run: partition, chase tails, expand backbone, stitch, derive
// - the parallel stages run on rop.Stage; each one is a barrier
// - Stitch runs alone between the parallel stages
// - optional store: reuse a covered range, persist results, record the run
// - per-stage logs, spans and Prometheus metrics
package pipeline
