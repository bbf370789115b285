package model

type MetricType string

const (
	MetricTypeMemory MetricType = "memory_profile"
	MetricTypeNode   MetricType = "node_profile"
)

// Envelope is transport-agnostic framing for sink output.
type Envelope struct {
	Type          MetricType `json:"type"`
	AgentID       string     `json:"agent_id"`
	TimestampUnix int64      `json:"timestamp_unix"`
	Payload       any        `json:"payload"`
}
