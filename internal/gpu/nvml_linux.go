//go:build linux && cgo

package gpu

import (
	"errors"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type nvmlDriver struct{}

func newDriver() driver { return nvmlDriver{} }

func (nvmlDriver) Init() error {
	if ret := nvml.Init(); !errors.Is(ret, nvml.SUCCESS) {
		return fmt.Errorf("nvml init: %s", nvml.ErrorString(ret))
	}
	return nil
}

func (nvmlDriver) DeviceCount() (int, error) {
	count, ret := nvml.DeviceGetCount()
	if !errors.Is(ret, nvml.SUCCESS) {
		return 0, fmt.Errorf("nvml device count: %s", nvml.ErrorString(ret))
	}
	return count, nil
}

func (nvmlDriver) Utilization(i int) (uint32, error) {
	device, ret := nvml.DeviceGetHandleByIndex(i)
	if !errors.Is(ret, nvml.SUCCESS) {
		return 0, fmt.Errorf("nvml device %d: %s", i, nvml.ErrorString(ret))
	}
	util, ret := device.GetUtilizationRates()
	if !errors.Is(ret, nvml.SUCCESS) {
		return 0, fmt.Errorf("nvml utilization %d: %s", i, nvml.ErrorString(ret))
	}
	return util.Gpu, nil
}
