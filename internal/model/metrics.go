package model

import (
	"encoding/json"
	"fmt"
)

// Metrics is a point-in-time hardware sample. Field names follow the macmon
// pipe format so native samples decode straight into it. Platforms that cannot
// report a field leave it at 0.
type Metrics struct {
	AllPower    float64     `json:"all_power"`
	ANEPower    float64     `json:"ane_power"`
	CPUPower    float64     `json:"cpu_power"`
	GPUPower    float64     `json:"gpu_power"`
	GPURAMPower float64     `json:"gpu_ram_power"`
	RAMPower    float64     `json:"ram_power"`
	SysPower    float64     `json:"sys_power"`
	ECPUUsage   UsagePair   `json:"ecpu_usage"`
	GPUUsage    UsagePair   `json:"gpu_usage"`
	PCPUUsage   UsagePair   `json:"pcpu_usage"`
	Temp        TempMetrics `json:"temp"`
	Timestamp   string      `json:"timestamp"`
}

type TempMetrics struct {
	CPUTempAvg float64 `json:"cpu_temp_avg"`
	GPUTempAvg float64 `json:"gpu_temp_avg"`
}

// UsagePair is (active units, utilization percent). It travels as a
// two-element JSON array.
type UsagePair struct {
	Units   int
	Percent float64
}

func (p UsagePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Units), p.Percent})
}

func (p *UsagePair) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("usage pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("usage pair: want 2 elements, got %d", len(raw))
	}
	p.Units = int(raw[0])
	p.Percent = raw[1]
	return nil
}
