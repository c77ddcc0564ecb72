// Package kernel holds local compute units and the reference workloads built on them.
//
// Compute units are pure functions of their partitions: they see no rank,
// group size or transport, so running one over the whole dataset and running
// it per partition and concatenating give the same result.
package kernel
