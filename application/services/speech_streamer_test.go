package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"edge-speech-gateway/application/ports/inbound"
	"edge-speech-gateway/config"
	"edge-speech-gateway/domain"
	"edge-speech-gateway/infrastructure/adapters"
	"edge-speech-gateway/mock"
)

func knownVoices() []domain.ProviderVoice {
	return []domain.ProviderVoice{
		{ShortName: "en-US-GuyNeural"},
		{ShortName: "zh-CN-YunxiNeural"},
		{ShortName: "zh-CN-YunjianNeural"},
	}
}

func newTestStreamer(t *testing.T, synth *mock.Synthesizer, filter *mock.Filter) inbound.SpeechStreamerPort {
	t.Helper()

	workerPool, err := ants.NewPool(32)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	logger := adapters.NewZerologWrapper(zerolog.Disabled)

	return NewSpeechStreamer(logger, workerPool, synth, filter)
}

func streamParams(voice string, speed, volume float64) inbound.StreamSpeechParams {
	model, _ := config.GetModelCatalog().Lookup("tts-1")
	return inbound.StreamSpeechParams{
		Text:   "hello",
		Voice:  voice,
		Speed:  speed,
		Volume: volume,
		Format: "mp3",
		Model:  model,
	}
}

func drain(t *testing.T, out <-chan []byte, errCh <-chan error) ([]byte, []error) {
	t.Helper()

	var buf bytes.Buffer
	var errs []error
	timeout := time.After(5 * time.Second)

	for out != nil || errCh != nil {
		select {
		case block, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			buf.Write(block)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			errs = append(errs, err)
		case <-timeout:
			t.Fatal("pipeline did not complete")
		}
	}
	return buf.Bytes(), errs
}

func TestStreamBypassIsByteIdentical(t *testing.T) {
	synth := &mock.Synthesizer{
		Voices: knownVoices(),
		Chunks: []domain.AudioChunk{
			{Type: domain.AudioChunkType, Data: []byte("he")},
			{Type: domain.MetadataChunkType, Data: []byte(`{"word":"hello"}`)},
			{Type: domain.AudioChunkType, Data: []byte("llo")},
		},
	}
	filter := &mock.Filter{}
	streamer := newTestStreamer(t, synth, filter)

	out, errCh, err := streamer.Stream(context.Background(), streamParams("nova", 1.0, 1.0))
	if err != nil {
		t.Fatal("Stream failed:", err)
	}

	got, errs := drain(t, out, errCh)
	if len(errs) != 0 {
		t.Fatal("unexpected pipeline errors:", errs)
	}
	if string(got) != "hello" {
		t.Errorf("bypass output = %q, want %q", got, "hello")
	}
	if filter.SpawnCount() != 0 {
		t.Errorf("bypass path spawned %d filter processes", filter.SpawnCount())
	}
	if spec := synth.LastSpec(); spec.Voice != "zh-CN-YunxiNeural" || spec.Rate != "+0%" {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestStreamFilteredTransformsOutput(t *testing.T) {
	synth := &mock.Synthesizer{
		Voices: knownVoices(),
		Chunks: mock.AudioChunks("he", "llo"),
	}
	filter := &mock.Filter{Transform: bytes.ToUpper}
	streamer := newTestStreamer(t, synth, filter)

	out, errCh, err := streamer.Stream(context.Background(), streamParams("nova", 1.0, 2.0))
	if err != nil {
		t.Fatal("Stream failed:", err)
	}

	got, errs := drain(t, out, errCh)
	if len(errs) != 0 {
		t.Fatal("unexpected pipeline errors:", errs)
	}
	if string(got) != "HELLO" {
		t.Errorf("filtered output = %q, want %q", got, "HELLO")
	}
	if filter.SpawnCount() != 1 {
		t.Errorf("spawned %d filter processes, want 1", filter.SpawnCount())
	}
	if filter.TerminateCount() != 1 {
		t.Errorf("terminated %d filter processes, want 1", filter.TerminateCount())
	}
}

func TestStreamCancelMidStreamTerminatesFilter(t *testing.T) {
	payloads := make([]string, 200)
	for i := range payloads {
		payloads[i] = "aaaaaaaaaaaaaaaa"
	}
	synth := &mock.Synthesizer{Voices: knownVoices(), Chunks: mock.AudioChunks(payloads...)}
	filter := &mock.Filter{}
	streamer := newTestStreamer(t, synth, filter)

	ctx, cancel := context.WithCancel(context.Background())
	out, errCh, err := streamer.Stream(ctx, streamParams("nova", 1.0, 2.0))
	if err != nil {
		t.Fatal("Stream failed:", err)
	}

	// Consume one block, then walk away like a disconnected client.
	select {
	case <-out:
	case <-time.After(5 * time.Second):
		t.Fatal("no output produced")
	}
	cancel()

	_, _ = drain(t, out, errCh)
	if filter.SpawnCount() != 1 {
		t.Errorf("spawned %d filter processes, want 1", filter.SpawnCount())
	}
	if filter.TerminateCount() != 1 {
		t.Errorf("terminated %d filter processes, want 1", filter.TerminateCount())
	}
}

func TestStreamUpstreamErrorDoesNotHang(t *testing.T) {
	upstreamErr := errors.New("provider connection reset")
	synth := &mock.Synthesizer{
		Voices: knownVoices(),
		Chunks: mock.AudioChunks("par"),
		Err:    upstreamErr,
	}
	filter := &mock.Filter{}
	streamer := newTestStreamer(t, synth, filter)

	out, errCh, err := streamer.Stream(context.Background(), streamParams("nova", 1.0, 2.0))
	if err != nil {
		t.Fatal("Stream failed:", err)
	}

	got, errs := drain(t, out, errCh)
	if string(got) != "par" {
		t.Errorf("partial output = %q, want %q", got, "par")
	}
	if len(errs) != 1 || !errors.Is(errs[0], upstreamErr) {
		t.Errorf("expected the upstream error to surface, got %v", errs)
	}
	if filter.TerminateCount() != 1 {
		t.Errorf("terminated %d filter processes, want 1", filter.TerminateCount())
	}
}

func TestStreamFilterUnavailableFailsLoudly(t *testing.T) {
	spawnErr := &domain.FilterUnavailableError{Cause: errors.New("executable not found")}
	synth := &mock.Synthesizer{Voices: knownVoices()}
	filter := &mock.Filter{SpawnErr: spawnErr}
	streamer := newTestStreamer(t, synth, filter)

	_, _, err := streamer.Stream(context.Background(), streamParams("nova", 1.0, 2.0))

	var unavailable *domain.FilterUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FilterUnavailableError, got %v", err)
	}
	if synth.SynthesizeCalls() != 0 {
		t.Error("synthesis must not start when the filter cannot be spawned")
	}
}

func TestStreamRejectsUnknownProviderVoice(t *testing.T) {
	synth := &mock.Synthesizer{Voices: []domain.ProviderVoice{{ShortName: "en-US-GuyNeural"}}}
	streamer := newTestStreamer(t, synth, &mock.Filter{})

	_, _, err := streamer.Stream(context.Background(), streamParams("nova", 1.0, 1.0))

	var upstream *domain.UpstreamSynthesisError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamSynthesisError, got %v", err)
	}
	if upstream.Voice != "zh-CN-YunxiNeural" {
		t.Errorf("error names voice %q, want zh-CN-YunxiNeural", upstream.Voice)
	}
	if synth.SynthesizeCalls() != 0 {
		t.Error("synthesis must not start for an unknown voice")
	}
}

func TestStreamEnhancedTierClampsSpeed(t *testing.T) {
	synth := &mock.Synthesizer{Voices: knownVoices(), Chunks: mock.AudioChunks("x")}
	streamer := newTestStreamer(t, synth, &mock.Filter{})

	model, _ := config.GetModelCatalog().Lookup("tts-1-hd")
	params := inbound.StreamSpeechParams{
		Text:   "hello",
		Voice:  "nova",
		Speed:  2.0,
		Volume: 1.0,
		Format: "mp3",
		Model:  model,
	}

	out, errCh, err := streamer.Stream(context.Background(), params)
	if err != nil {
		t.Fatal("Stream failed:", err)
	}
	drain(t, out, errCh)

	if spec := synth.LastSpec(); spec.Rate != "+50%" {
		t.Errorf("rate = %q, want +50%% after clamping to 1.5", spec.Rate)
	}
}

func TestStreamComputesSignedRate(t *testing.T) {
	synth := &mock.Synthesizer{Voices: knownVoices(), Chunks: mock.AudioChunks("x")}
	streamer := newTestStreamer(t, synth, &mock.Filter{})

	out, errCh, err := streamer.Stream(context.Background(), streamParams("nova", 1.3, 1.0))
	if err != nil {
		t.Fatal("Stream failed:", err)
	}
	drain(t, out, errCh)

	if spec := synth.LastSpec(); spec.Rate != "+30%" {
		t.Errorf("rate = %q, want +30%%", spec.Rate)
	}
}
