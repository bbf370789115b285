// Package stream frames profiles as envelopes and writes them out.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/peterxing/exo/internal/model"
)

// Sink receives every profile the polling loops produce.
type Sink interface {
	SendMemoryProfile(ctx context.Context, p model.MemoryPerformanceProfile) error
	SendNodeProfile(ctx context.Context, p model.NodePerformanceProfile) error
	Close(ctx context.Context) error
}

func NewMemoryEnvelope(agentID string, at time.Time, p model.MemoryPerformanceProfile) model.Envelope {
	return model.Envelope{Type: model.MetricTypeMemory, AgentID: agentID, TimestampUnix: at.UTC().Unix(), Payload: p}
}

func NewNodeEnvelope(agentID string, at time.Time, p model.NodePerformanceProfile) model.Envelope {
	return model.Envelope{Type: model.MetricTypeNode, AgentID: agentID, TimestampUnix: at.UTC().Unix(), Payload: p}
}

func EncodeEnvelope(e model.Envelope) ([]byte, error) {
	return json.Marshal(e)
}
