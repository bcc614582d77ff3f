package inbound

import (
	"context"

	"edge-speech-gateway/config"
)

type StreamSpeechParams struct {
	Text   string
	Voice  string // public voice alias, lowercased
	Speed  float64
	Volume float64
	Format string
	Model  *config.ModelConfig
}

// SpeechStreamerPort runs one synthesis pipeline. Failures before any byte
// can be produced (unknown provider voice, filter spawn failure) are returned
// synchronously; everything after that arrives on the error channel. Both
// channels close when the pipeline ends, and cancelling ctx tears the whole
// session down.
type SpeechStreamerPort interface {
	Stream(ctx context.Context, params StreamSpeechParams) (<-chan []byte, <-chan error, error)
}
