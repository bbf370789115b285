//go:build !(linux && cgo)

package gpu

import "errors"

type noDriver struct{}

func newDriver() driver { return noDriver{} }

func (noDriver) Init() error { return errors.New("nvml not built for this platform") }

func (noDriver) DeviceCount() (int, error) { return 0, nil }

func (noDriver) Utilization(int) (uint32, error) { return 0, nil }
