// Package backend resolves the native inference bridge that only exists on
// the accelerated platform and hands out a process-wide handle to it.
package backend

// EntryPoints is the fixed set of functions exported by the bridge library.
type EntryPoints struct {
	Initialize func(modelPath string) int32
	ForceOOM   func() int32
	Generate   func(prompt string, maxTokens int32) string
	Warmup     func() int32
}

func (e EntryPoints) complete() bool {
	return e.Initialize != nil && e.ForceOOM != nil && e.Generate != nil && e.Warmup != nil
}

// Handle is an immutable bundle of resolved entry points. A Handle is only
// ever built from a complete EntryPoints set.
type Handle struct {
	library string
	entry   EntryPoints
}

// NewHandle wraps already-resolved entry points; used by resolvers and tests.
func NewHandle(library string, entry EntryPoints) *Handle {
	return &Handle{library: library, entry: entry}
}

// Library is the path the handle was resolved from.
func (h *Handle) Library() string { return h.library }

func (h *Handle) Initialize(modelPath string) error {
	return statusErr("initialize", h.entry.Initialize(modelPath))
}

func (h *Handle) ForceOOM() error {
	return statusErr("force_oom", h.entry.ForceOOM())
}

func (h *Handle) Generate(prompt string, maxTokens int32) string {
	return h.entry.Generate(prompt, maxTokens)
}

func (h *Handle) Warmup() error {
	return statusErr("warmup", h.entry.Warmup())
}

func statusErr(op string, status int32) error {
	if status == 0 {
		return nil
	}
	return &StatusError{Op: op, Status: status}
}
