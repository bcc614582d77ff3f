package outbound

import "io"

// FilterProcess is a spawned external filter. Input and Output are its two
// independent byte channels; the process is owned by exactly one pipeline
// run and never reused.
type FilterProcess interface {
	Input() io.WriteCloser
	Output() io.Reader
	// Terminate closes the input if still open, waits for process exit up to
	// a bounded grace period, then kills it. Idempotent and safe to call on
	// a process that already exited.
	Terminate() error
}

type AudioFilterPort interface {
	Spawn(volume float64, format string) (FilterProcess, error)
}
