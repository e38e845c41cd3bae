// Package collatz holds the per-number records of a Collatz backbone run and
// the pure stages that fill them in.
//
// A run walks every integer in [2, upperBound) and records where its
// trajectory meets the backbone, the chain of powers of two that halves
// straight down to 1.
//
// Stages, in pipeline order:
// - Partition/Seed: split [0, upperBound] into contiguous ranges and create records
// - Chaser.ChaseTails: follow each trajectory until it drops below the floor
// - ExpandBackbone: resolve powers of two all the way to 1
// - Stitch: close the tail-points-to forest so every path ends at 1
// - Deriver.DeriveProperties: distance, closest vertebra, peak and parity flags
//
// ChaseTails, ExpandBackbone and DeriveProperties only touch the batch they are
// given, so batches may be processed concurrently. Stitch owns the whole arena
// and must run alone.
package collatz
