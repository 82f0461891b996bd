//go:build !linux

package autocmd

// Watch is a no-op stub on platforms without inotify or kqueue wired up
// (§4.11: "On platforms without either, skip."). BSD kqueue support is not
// implemented — no pack example wires a kqueue binding, and the spec treats
// its absence as a documented degrade, not a failure.
type Watch struct{}

// NewWatch always reports unavailable on non-Linux platforms.
func NewWatch(dir string) (*Watch, error) {
	return nil, errUnsupported
}

// Poll never reports a change on the stub.
func (w *Watch) Poll() bool { return false }

// Close is a no-op.
func (w *Watch) Close() error { return nil }

var errUnsupported = &unsupportedError{}

type unsupportedError struct{}

func (e *unsupportedError) Error() string { return "autocmd: filesystem watch unsupported on this platform" }
