// Package main trains a stage over time bucketed batches. Batch sizes come
// from the table a probe_batch run left in the log directory; a step that
// runs out of device memory is retried, the bin's batch size is lowered and
// saved, and the rest of the bin is skipped for the epoch.
//
// The program drives a simulated stage that models device memory as a frame
// budget, so the batching behaviour can be watched on any machine.
package main
