package telemetry

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	"github.com/peterxing/exo/internal/model"
)

// CommandRunner runs a command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if stderr.Len() > 0 {
			return out, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return out, err
	}
	return out, nil
}

// SampleWindow is how long macmon measures before printing a sample. It is
// kept short so the polling interval alone sets the node cadence.
const SampleWindow = 200 * time.Millisecond

// MacmonSampler reads one sample per call from `macmon pipe`.
type MacmonSampler struct {
	path   string
	window time.Duration
	run    CommandRunner
}

func NewMacmonSampler(path string) *MacmonSampler {
	return newMacmonSampler(path, SampleWindow, execRunner)
}

func newMacmonSampler(path string, window time.Duration, run CommandRunner) *MacmonSampler {
	if path == "" {
		path = "macmon"
	}
	if window <= 0 {
		window = SampleWindow
	}
	return &MacmonSampler{path: path, window: window, run: run}
}

func (s *MacmonSampler) args() []string {
	return []string{"pipe", "-s", "1", "-i", strconv.FormatInt(s.window.Milliseconds(), 10)}
}

// Sample returns nil, nil when macmon exits cleanly without output.
func (s *MacmonSampler) Sample(ctx context.Context) (*model.Metrics, error) {
	out, err := s.run(ctx, s.path, s.args()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, Fault("macmon", fmt.Errorf("binary %q not found: %w", s.path, err))
		}
		return nil, Fault("macmon", err)
	}
	return parseMacmonOutput(bytes.NewReader(out))
}

func parseMacmonOutput(r io.Reader) (*model.Metrics, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var m model.Metrics
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, Fault("macmon", fmt.Errorf("decode sample: %w", err))
		}
		return &m, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, Fault("macmon", fmt.Errorf("read output: %w", err))
	}
	return nil, nil
}
