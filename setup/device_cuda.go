//go:build cuda

package setup

import "log"

import "github.com/neurlang/stylish/config"
import "github.com/neurlang/stylish/device"
import "github.com/neurlang/stylish/device/cu"
import "github.com/neurlang/stylish/trainer"

func openDevice(t config.Training, logger *log.Logger) (trainer.Device, func(), error) {
	if t.Device != "cuda" {
		return device.Host{}, func() {}, nil
	}
	d, err := cu.Open(t.DeviceIndex)
	if err != nil {
		return nil, nil, err
	}
	d.Logger = logger
	if logger != nil {
		logger.Printf("device %v", d)
	}
	return d, d.Close, nil
}
