// Package main probes the largest batch size every time bin of a train list
// fits on the device and writes the result to batch_sizes.json in the log
// directory. It must run as a single process; copy the file to the log
// directory of every replica before a data parallel run.
package main
