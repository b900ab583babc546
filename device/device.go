// Package device is the boundary between the trainer and the execution
// engine: it turns engine failures into failure kinds and releases memory
// after an exhausted step.
package device

import "runtime"
import "runtime/debug"

// Host runs steps on the CPU. Steps report exhaustion themselves, so
// Classify passes errors through untouched.
type Host struct{}

// Release runs a garbage collection and returns freed pages to the OS.
func (Host) Release() {
	runtime.GC()
	debug.FreeOSMemory()
}

func (Host) Classify(err error) error {
	return err
}

func (Host) String() string {
	return "host"
}
