package outbound

import (
	"context"

	"edge-speech-gateway/domain"
)

// SynthesizerPort produces the raw chunk stream for one synthesis. The chunk
// channel is lazy, finite and single-pass; both channels close when the
// stream ends or ctx is cancelled.
type SynthesizerPort interface {
	Synthesize(ctx context.Context, spec domain.SynthesisSpec) (<-chan domain.AudioChunk, <-chan error)
	ListVoices(ctx context.Context) ([]domain.ProviderVoice, error)
}
