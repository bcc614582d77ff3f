package adapters

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"edge-speech-gateway/config"
	"edge-speech-gateway/domain"
)

func TestSpawnMissingBinary(t *testing.T) {
	filter := NewFFmpegAudioFilter(NewZerologWrapper(zerolog.Disabled), &config.FFmpegConfig{
		BinaryPath:     "/nonexistent/ffmpeg",
		TerminateGrace: time.Second,
	})

	_, err := filter.Spawn(2.0, "mp3")

	var unavailable *domain.FilterUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FilterUnavailableError, got %v", err)
	}
}

func TestVolumeFilterArgs(t *testing.T) {
	got := volumeFilterArgs(2.0, "mp3")
	want := []string{"-i", "pipe:0", "-af", "volume=2", "-f", "mp3", "-loglevel", "quiet", "pipe:1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("volumeFilterArgs = %v, want %v", got, want)
	}

	got = volumeFilterArgs(1.5, "mp3")
	if got[3] != "volume=1.5" {
		t.Errorf("volume arg = %q, want volume=1.5", got[3])
	}
}

func TestTerminateIdempotent(t *testing.T) {
	// "true" ignores the ffmpeg-shaped args and exits immediately, which is
	// exactly the already-exited case Terminate must tolerate.
	filter := NewFFmpegAudioFilter(NewZerologWrapper(zerolog.Disabled), &config.FFmpegConfig{
		BinaryPath:     "true",
		TerminateGrace: 2 * time.Second,
	})

	proc, err := filter.Spawn(2.0, "mp3")
	if err != nil {
		t.Fatal("Spawn failed:", err)
	}

	if err := proc.Terminate(); err != nil {
		t.Fatal("first Terminate failed:", err)
	}
	if err := proc.Terminate(); err != nil {
		t.Fatal("second Terminate failed:", err)
	}
	if err := proc.Input().Close(); err != nil {
		t.Fatal("closing input after termination failed:", err)
	}
}
