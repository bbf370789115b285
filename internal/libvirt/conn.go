// Package libvirt reads host memory from the hypervisor daemon on machines
// that run guests, where the daemon's view is authoritative.
package libvirt

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	golibvirt "github.com/digitalocean/go-libvirt"
)

const (
	defaultRetryWait = time.Second
	defaultAttempts  = 3
)

// ConnManager owns one libvirt RPC connection and re-dials it on demand.
// Dialing gives up after a bounded number of attempts so a dead daemon never
// stalls a polling tick past its own deadline.
type ConnManager struct {
	mu        sync.Mutex
	client    *golibvirt.Libvirt
	uri       string
	logger    *slog.Logger
	retryWait time.Duration
	maxJitter time.Duration
	attempts  int
	dial      func(*url.URL) (*golibvirt.Libvirt, error)
}

func NewConnManager(uri string, retryWait, maxJitter time.Duration, logger *slog.Logger) *ConnManager {
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}
	if maxJitter < 0 {
		maxJitter = 0
	}
	return &ConnManager{
		uri:       uri,
		logger:    logger,
		retryWait: retryWait,
		maxJitter: maxJitter,
		attempts:  defaultAttempts,
		dial: func(u *url.URL) (*golibvirt.Libvirt, error) {
			return golibvirt.ConnectToURI(u)
		},
	}
}

// Client returns a live connection, dialing when none is held.
func (m *ConnManager) Client(ctx context.Context) (*golibvirt.Libvirt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	if err := m.connectLocked(ctx); err != nil {
		return nil, err
	}
	return m.client, nil
}

// Invalidate drops the held connection after a failed call; the next Client
// call re-dials.
func (m *ConnManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return
	}
	if err := m.client.Disconnect(); err != nil {
		m.logger.Debug("libvirt disconnect failed", "error", err)
	}
	m.client = nil
}

func (m *ConnManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect()
	m.client = nil
	return err
}

func (m *ConnManager) connectLocked(ctx context.Context) error {
	uri, err := parseURI(m.uri)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, dialErr := m.dial(uri)
		if dialErr == nil {
			m.client = c
			m.logger.Info("libvirt connected", "uri", uri.Redacted())
			return nil
		}
		lastErr = dialErr
		if attempt == m.attempts {
			break
		}

		wait := m.retryWait + m.jitter()
		m.logger.Warn("libvirt connect failed", "uri", uri.Redacted(), "attempt", attempt, "error", dialErr, "retry_in", wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("libvirt connect %s: %w", uri.Redacted(), lastErr)
}

func parseURI(raw string) (*url.URL, error) {
	if raw == "" {
		raw = string(golibvirt.QEMUSystem)
	}
	uri, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %q: %w", raw, err)
	}
	if uri.Scheme == "" {
		return url.Parse(string(golibvirt.QEMUSystem))
	}
	return uri, nil
}

func (m *ConnManager) jitter() time.Duration {
	if m.maxJitter == 0 {
		return 0
	}
	return rand.N(m.maxJitter)
}
