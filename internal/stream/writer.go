package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/peterxing/exo/internal/clock"
	"github.com/peterxing/exo/internal/model"
)

var ErrSinkClosed = errors.New("sink closed")

// WriterSink writes one JSON envelope per line. Both loops share it, so
// writes are serialized.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	agentID string
	clock   clock.Clock
	closed  bool
}

func NewWriterSink(w io.Writer, agentID string, clk clock.Clock) *WriterSink {
	if clk == nil {
		clk = clock.Real()
	}
	return &WriterSink{w: w, agentID: agentID, clock: clk}
}

func (s *WriterSink) SendMemoryProfile(ctx context.Context, p model.MemoryPerformanceProfile) error {
	return s.write(ctx, NewMemoryEnvelope(s.agentID, s.clock.Now(), p))
}

func (s *WriterSink) SendNodeProfile(ctx context.Context, p model.NodePerformanceProfile) error {
	return s.write(ctx, NewNodeEnvelope(s.agentID, s.clock.Now(), p))
}

func (s *WriterSink) write(ctx context.Context, e model.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := EncodeEnvelope(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write %s: %w", e.Type, err)
	}
	return nil
}

// Close stops further writes. The underlying writer is closed when it is an
// io.Closer.
func (s *WriterSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
