package mock

import (
	"context"
	"sync"

	"edge-speech-gateway/domain"
)

// Synthesizer replays a scripted chunk sequence, standing in for the Edge
// provider in tests and local runs.
type Synthesizer struct {
	Chunks  []domain.AudioChunk
	Voices  []domain.ProviderVoice
	Err     error // delivered on the error channel after the chunks
	ListErr error

	mu       sync.Mutex
	lastSpec domain.SynthesisSpec
	calls    int
}

func (m *Synthesizer) Synthesize(ctx context.Context, spec domain.SynthesisSpec) (<-chan domain.AudioChunk, <-chan error) {
	m.mu.Lock()
	m.lastSpec = spec
	m.calls++
	m.mu.Unlock()

	out := make(chan domain.AudioChunk)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		for _, chunk := range m.Chunks {
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if m.Err != nil {
			errCh <- m.Err
		}
	}()

	return out, errCh
}

func (m *Synthesizer) ListVoices(ctx context.Context) ([]domain.ProviderVoice, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Voices, nil
}

func (m *Synthesizer) LastSpec() domain.SynthesisSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSpec
}

func (m *Synthesizer) SynthesizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// AudioChunks builds an audio-tagged chunk per string.
func AudioChunks(payloads ...string) []domain.AudioChunk {
	chunks := make([]domain.AudioChunk, 0, len(payloads))
	for _, p := range payloads {
		chunks = append(chunks, domain.AudioChunk{Type: domain.AudioChunkType, Data: []byte(p)})
	}
	return chunks
}
