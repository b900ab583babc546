//go:build cuda

// Package cu adapts a CUDA device to the trainer. Driver results that mean
// the device ran out of memory are reported as failure.ResourceExhausted.
package cu

import "errors"
import "fmt"
import "log"
import "runtime"
import "runtime/debug"

import "gorgonia.org/cu"

import "github.com/neurlang/stylish/failure"

// Device holds a context on one CUDA device.
type Device struct {
	Ordinal int
	Logger  *log.Logger

	ctx *cu.CUContext
}

// Open creates and locks a context on the device with the given ordinal.
func Open(ordinal int) (*Device, error) {
	device, err := cu.GetDevice(ordinal)
	if err != nil {
		return nil, fmt.Errorf("failed to get device %d: %w", ordinal, err)
	}
	ctx, err := device.MakeContext(cu.SchedAuto)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	if err := ctx.Lock(); err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("failed to lock context: %w", err)
	}
	return &Device{Ordinal: ordinal, ctx: &ctx}, nil
}

// Close releases the context.
func (d *Device) Close() {
	if d.ctx != nil {
		d.ctx.Unlock()
		d.ctx.Destroy()
		d.ctx = nil
	}
}

// Classify tags CUDA out of memory results. cuFFT failures are reported by
// the step through failure.FFT directly, cu has no cuFFT binding.
func (d *Device) Classify(err error) error {
	if err == nil || failure.IsResourceExhausted(err) {
		return err
	}
	if errors.Is(err, cu.OutOfMemory) {
		return failure.OutOfMemory(err)
	}
	return err
}

// Release collects garbage so finalizers holding device buffers run, then
// makes the context current again for the next step.
func (d *Device) Release() {
	runtime.GC()
	debug.FreeOSMemory()
	if d.ctx != nil {
		if err := cu.SetCurrentContext(*d.ctx); err != nil && d.Logger != nil {
			d.Logger.Printf("failed to set device context: %v", err)
		}
	}
}

// TotalMem is the device memory in bytes.
func (d *Device) TotalMem() (int64, error) {
	return cu.Device(d.Ordinal).TotalMem()
}

func (d *Device) String() string {
	name, _ := cu.Device(d.Ordinal).Name()
	mem, _ := cu.Device(d.Ordinal).TotalMem()
	maj, _ := cu.Device(d.Ordinal).Attribute(cu.ComputeCapabilityMajor)
	min, _ := cu.Device(d.Ordinal).Attribute(cu.ComputeCapabilityMinor)
	return fmt.Sprintf("cuda:%d %q (%d MiB, compute %d.%d)", d.Ordinal, name, mem>>20, maj, min)
}
