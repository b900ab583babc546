// Package trainer drives a training stage over time binned batches. It probes
// the largest batch size every bin fits in device memory, and during training
// retries steps that exhausted memory, shrinking the bin's batch size and
// skipping the rest of a bin that keeps failing within an epoch.
//
// A Manager is used from a single goroutine. Its batch size table is the only
// state it mutates and it is never shared between processes at run time.
package trainer
