package domain

import (
	"fmt"
	"math"
)

type ChunkType string

const (
	AudioChunkType    ChunkType = "audio"
	MetadataChunkType ChunkType = "metadata"
)

// AudioChunk is one segment of the provider stream. Data carries encoded
// bytes with no frame alignment; only audio-tagged chunks reach the client.
type AudioChunk struct {
	Type ChunkType
	Data []byte
}

// SynthesisSpec is the fully resolved input of one pipeline run. It is built
// once per request and never mutated afterwards.
type SynthesisSpec struct {
	Text   string
	Voice  string // provider voice ID, e.g. zh-CN-YunxiNeural
	Rate   string // signed percentage, e.g. "+30%"
	Volume float64
	Format string
}

// ProviderVoice is one entry of the provider's live voice catalog.
type ProviderVoice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

// RateForSpeed converts a speed multiplier into the signed percentage rate
// string the provider expects.
func RateForSpeed(speed float64) string {
	if speed == 1.0 {
		return "+0%"
	}
	return fmt.Sprintf("%+d%%", int(math.Round((speed-1)*100)))
}
