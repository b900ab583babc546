//go:build !cuda

package setup

import "log"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/config"
import "github.com/neurlang/stylish/device"
import "github.com/neurlang/stylish/trainer"

func openDevice(t config.Training, logger *log.Logger) (trainer.Device, func(), error) {
	if t.Device == "cuda" {
		return nil, nil, errors.New("built without cuda, rebuild with -tags cuda")
	}
	return device.Host{}, func() {}, nil
}
