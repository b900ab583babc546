// Package failure separates recoverable resource exhaustion from fatal
// training step failures.
package failure

import "errors"

import pkgerrors "github.com/pkg/errors"

// Resource names what ran out.
type Resource int

const (
	DeviceMemory Resource = iota
	FFTWorkspace
)

func (r Resource) String() string {
	switch r {
	case DeviceMemory:
		return "device memory"
	case FFTWorkspace:
		return "fft workspace"
	default:
		return "unknown resource"
	}
}

// ResourceExhausted is reported by the execution engine when a step could not
// allocate what it needed. A step failing this way may be retried with less work.
type ResourceExhausted struct {
	Resource Resource
	Err      error
}

func (e *ResourceExhausted) Error() string {
	if e.Err == nil {
		return e.Resource.String() + " exhausted"
	}
	return e.Resource.String() + " exhausted: " + e.Err.Error()
}

func (e *ResourceExhausted) Unwrap() error {
	return e.Err
}

// OutOfMemory tags err as device memory exhaustion.
func OutOfMemory(err error) error {
	return &ResourceExhausted{Resource: DeviceMemory, Err: err}
}

// FFT tags err as FFT workspace exhaustion.
func FFT(err error) error {
	return &ResourceExhausted{Resource: FFTWorkspace, Err: err}
}

// IsResourceExhausted reports whether any error in the chain is a ResourceExhausted.
func IsResourceExhausted(err error) bool {
	var re *ResourceExhausted
	return errors.As(err, &re)
}

// As returns the ResourceExhausted in the chain, or nil. Wrapping with
// github.com/pkg/errors keeps the chain intact.
func As(err error) *ResourceExhausted {
	var re *ResourceExhausted
	if errors.As(err, &re) {
		return re
	}
	return nil
}

// Fatal wraps a failure that must terminate the run.
func Fatal(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}
