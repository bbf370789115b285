package model

import (
	"encoding/json"
	"testing"
)

func TestNewMemoryProfile(t *testing.T) {
	host := HostMemory{
		TotalBytes:     64 * bytesPerMB * 1024,
		AvailableBytes: 20 * bytesPerMB * 1024,
		SwapTotalBytes: 2 * bytesPerMB * 1024,
		SwapFreeBytes:  bytesPerMB * 1024,
	}
	small := MemoryFromMB(4096)
	large := MemoryFromMB(128 * 1024)

	tests := []struct {
		name          string
		override      *Memory
		wantTotal     uint64
		wantAvailable uint64
	}{
		{
			name:          "detected",
			override:      nil,
			wantTotal:     host.TotalBytes,
			wantAvailable: host.AvailableBytes,
		},
		{
			name:          "override below available",
			override:      &small,
			wantTotal:     4096 * bytesPerMB,
			wantAvailable: 4096 * bytesPerMB,
		},
		{
			name:          "override above detected total",
			override:      &large,
			wantTotal:     large.Bytes,
			wantAvailable: host.AvailableBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMemoryProfile(host, tt.override)
			if p.RAMTotal.InBytes() != tt.wantTotal {
				t.Errorf("RAMTotal = %d, want %d", p.RAMTotal.InBytes(), tt.wantTotal)
			}
			if p.RAMAvailable.InBytes() != tt.wantAvailable {
				t.Errorf("RAMAvailable = %d, want %d", p.RAMAvailable.InBytes(), tt.wantAvailable)
			}
			if p.SwapTotal.InBytes() != host.SwapTotalBytes || p.SwapAvailable.InBytes() != host.SwapFreeBytes {
				t.Errorf("swap = %+v/%+v, want untouched", p.SwapTotal, p.SwapAvailable)
			}
		})
	}
}

func TestMemoryFromMB(t *testing.T) {
	m := MemoryFromMB(4096)
	if m.InBytes() != 4096*1024*1024 {
		t.Fatalf("InBytes() = %d", m.InBytes())
	}
	if m.InMB() != 4096 {
		t.Fatalf("InMB() = %d", m.InMB())
	}
}

func TestMetricsDecodeMacmonLine(t *testing.T) {
	line := `{"all_power":12.5,"ane_power":0.25,"cpu_power":4.5,"ecpu_usage":[1020,0.4],` +
		`"gpu_power":3.0,"gpu_ram_power":0.1,"gpu_usage":[389,0.2],"pcpu_usage":[3228,0.55],` +
		`"ram_power":0.6,"sys_power":20.1,"temp":{"cpu_temp_avg":48.2,"gpu_temp_avg":41.0},` +
		`"timestamp":"2026-10-18T10:00:00Z","memory":{"ram_total":1}}`

	var m Metrics
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.SysPower != 20.1 || m.ANEPower != 0.25 {
		t.Errorf("power fields = %+v", m)
	}
	if m.PCPUUsage.Units != 3228 || m.PCPUUsage.Percent != 0.55 {
		t.Errorf("PCPUUsage = %+v", m.PCPUUsage)
	}
	if m.Temp.GPUTempAvg != 41.0 {
		t.Errorf("Temp = %+v", m.Temp)
	}
	if m.Timestamp != "2026-10-18T10:00:00Z" {
		t.Errorf("Timestamp = %q", m.Timestamp)
	}
}

func TestUsagePairRejectsWrongArity(t *testing.T) {
	var p UsagePair
	if err := json.Unmarshal([]byte(`[1,2,3]`), &p); err == nil {
		t.Fatal("expected error for 3-element pair")
	}
}

func TestSystemProfileFromMetrics(t *testing.T) {
	m := Metrics{
		ANEPower:  1.5,
		SysPower:  30,
		ECPUUsage: UsagePair{Units: 4, Percent: 12},
		GPUUsage:  UsagePair{Units: 1, Percent: 80},
		PCPUUsage: UsagePair{Units: 8, Percent: 55},
		Temp:      TempMetrics{CPUTempAvg: 60, GPUTempAvg: 50},
	}
	got := SystemProfileFromMetrics(m)
	want := SystemPerformanceProfile{GPUUsage: 80, Temp: 50, SysPower: 30, PCPUUsage: 55, ECPUUsage: 12, ANEPower: 1.5}
	if got != want {
		t.Fatalf("SystemProfileFromMetrics = %+v, want %+v", got, want)
	}
}
