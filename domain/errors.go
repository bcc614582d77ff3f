package domain

import "fmt"

// ValidationError rejects a request before any pipeline work starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamSynthesisError reports a provider failure or a voice the provider's
// current catalog does not know.
type UpstreamSynthesisError struct {
	Voice string
	Cause error
}

func (e *UpstreamSynthesisError) Error() string {
	if e.Voice != "" {
		return fmt.Sprintf("synthesis provider does not know voice %q", e.Voice)
	}
	return fmt.Sprintf("synthesis provider failure: %v", e.Cause)
}

func (e *UpstreamSynthesisError) Unwrap() error { return e.Cause }

// FilterUnavailableError reports that the audio filter could not be spawned
// while the request explicitly asked for volume adjustment. It is always a
// hard failure, never a silent fallback to unfiltered audio.
type FilterUnavailableError struct {
	Cause error
}

func (e *FilterUnavailableError) Error() string {
	return fmt.Sprintf("audio filter unavailable: %v", e.Cause)
}

func (e *FilterUnavailableError) Unwrap() error { return e.Cause }

// PipelineWriteError reports a failed mid-stream write into the filter
// process. It is logged and ends the writer leg; the response degrades to a
// truncated stream because headers are already committed.
type PipelineWriteError struct {
	Cause error
}

func (e *PipelineWriteError) Error() string {
	return fmt.Sprintf("failed to write audio to filter: %v", e.Cause)
}

func (e *PipelineWriteError) Unwrap() error { return e.Cause }
