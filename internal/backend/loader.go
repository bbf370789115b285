package backend

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const (
	// RequiredPlatform is the only OS the bridge library is built for.
	RequiredPlatform = "darwin"

	LibraryEnv     = "EXO_BACKEND_LIBRARY"
	DefaultLibrary = "libmlx_bridge.dylib"
)

// ResolveFunc opens library and binds the bridge entry points.
type ResolveFunc func(library string) (EntryPoints, error)

// Loader caches the first successful resolution for its lifetime. Failures
// are never cached, so a later call retries from scratch.
type Loader struct {
	library  string
	platform func() string
	resolve  ResolveFunc
	logger   *slog.Logger

	cached atomic.Pointer[Handle]
	group  singleflight.Group
}

type Option func(*Loader)

func WithPlatform(fn func() string) Option {
	return func(l *Loader) { l.platform = fn }
}

func WithResolver(fn ResolveFunc) Option {
	return func(l *Loader) { l.resolve = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(library string, opts ...Option) *Loader {
	if library == "" {
		library = DefaultLibrary
	}
	l := &Loader{
		library:  library,
		platform: func() string { return runtime.GOOS },
		resolve:  resolveEntryPoints,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the cached handle, resolving it on first use. Concurrent
// first callers share a single resolution; every failed call logs one
// warning.
func (l *Loader) Load() (*Handle, error) {
	if h := l.cached.Load(); h != nil {
		return h, nil
	}

	v, err, _ := l.group.Do(l.library, func() (any, error) {
		if h := l.cached.Load(); h != nil {
			return h, nil
		}
		h, err := l.resolveHandle()
		if err != nil {
			return nil, err
		}
		if !l.cached.CompareAndSwap(nil, h) {
			return l.cached.Load(), nil
		}
		l.logger.Info("capability backend loaded", "library", l.library)
		return h, nil
	})
	if err != nil {
		// Callers that shared a failed resolution each get their own warning.
		l.logger.Warn("capability backend unavailable", "library", l.library, "error", err)
		return nil, err
	}
	return v.(*Handle), nil
}

func (l *Loader) resolveHandle() (*Handle, error) {
	platform := l.platform()
	if platform != RequiredPlatform {
		return nil, &UnavailableError{
			Platform: platform,
			Reason:   fmt.Sprintf("requires %s", RequiredPlatform),
		}
	}
	entry, err := l.resolve(l.library)
	if err != nil {
		return nil, &UnavailableError{Platform: platform, Reason: "resolve " + l.library, Err: err}
	}
	if !entry.complete() {
		return nil, &UnavailableError{Platform: platform, Reason: "incomplete entry point set in " + l.library}
	}
	return NewHandle(l.library, entry), nil
}

var (
	defaultOnce   sync.Once
	defaultLoader *Loader
)

// Load resolves the process-wide handle from EXO_BACKEND_LIBRARY.
func Load() (*Handle, error) {
	defaultOnce.Do(func() {
		defaultLoader = NewLoader(os.Getenv(LibraryEnv))
	})
	return defaultLoader.Load()
}
