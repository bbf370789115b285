package model

type NetworkInterfaceInfo struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
}

// SystemPerformanceProfile is the slice of Metrics carried on node profiles.
type SystemPerformanceProfile struct {
	GPUUsage  float64 `json:"gpu_usage"`
	Temp      float64 `json:"temp"`
	SysPower  float64 `json:"sys_power"`
	PCPUUsage float64 `json:"pcpu_usage"`
	ECPUUsage float64 `json:"ecpu_usage"`
	ANEPower  float64 `json:"ane_power"`
}

func SystemProfileFromMetrics(m Metrics) SystemPerformanceProfile {
	return SystemPerformanceProfile{
		GPUUsage:  m.GPUUsage.Percent,
		Temp:      m.Temp.GPUTempAvg,
		SysPower:  m.SysPower,
		PCPUUsage: m.PCPUUsage.Percent,
		ECPUUsage: m.ECPUUsage.Percent,
		ANEPower:  m.ANEPower,
	}
}

// NodePerformanceProfile is assembled fresh on every node poll and handed to
// the sink, which owns it from then on.
type NodePerformanceProfile struct {
	ModelID           string                   `json:"model_id"`
	ChipID            string                   `json:"chip_id"`
	FriendlyName      string                   `json:"friendly_name"`
	NetworkInterfaces []NetworkInterfaceInfo   `json:"network_interfaces"`
	Memory            MemoryPerformanceProfile `json:"memory"`
	System            SystemPerformanceProfile `json:"system"`
}
