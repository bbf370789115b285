package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/peterxing/exo/internal/clock"
	"github.com/peterxing/exo/internal/model"
)

func TestWriterSinkWritesEnvelopeLines(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewWriterSink(&buf, "agent-7", clock.Fake(at))

	mem := model.MemoryPerformanceProfile{RAMTotal: model.MemoryFromMB(4096)}
	if err := s.SendMemoryProfile(context.Background(), mem); err != nil {
		t.Fatal(err)
	}
	node := model.NodePerformanceProfile{ModelID: "Mac14,3", FriendlyName: "mini"}
	if err := s.SendNodeProfile(context.Background(), node); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(&buf)
	var types []model.MetricType
	for sc.Scan() {
		var e struct {
			Type          model.MetricType `json:"type"`
			AgentID       string           `json:"agent_id"`
			TimestampUnix int64            `json:"timestamp_unix"`
			Payload       json.RawMessage  `json:"payload"`
		}
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		if e.AgentID != "agent-7" || e.TimestampUnix != at.Unix() {
			t.Fatalf("envelope header = %+v", e)
		}
		types = append(types, e.Type)
		if e.Type == model.MetricTypeMemory {
			var p model.MemoryPerformanceProfile
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				t.Fatal(err)
			}
			if p.RAMTotal.InMB() != 4096 {
				t.Fatalf("ram total = %d MB", p.RAMTotal.InMB())
			}
		}
	}
	if len(types) != 2 || types[0] != model.MetricTypeMemory || types[1] != model.MetricTypeNode {
		t.Fatalf("types = %v", types)
	}
}

func TestWriterSinkRejectsAfterClose(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf, "a", nil)
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := s.SendNodeProfile(context.Background(), model.NodePerformanceProfile{})
	if !errors.Is(err, ErrSinkClosed) {
		t.Fatalf("err = %v, want ErrSinkClosed", err)
	}
	if buf.Len() != 0 {
		t.Fatal("wrote after close")
	}
}

func TestWriterSinkHonorsCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf, "a", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SendMemoryProfile(ctx, model.MemoryPerformanceProfile{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
