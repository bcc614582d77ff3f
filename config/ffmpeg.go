package config

import "time"

type FFmpegConfig struct {
	BinaryPath string
	// TerminateGrace bounds how long a filter process may keep running after
	// its input is closed before it is killed.
	TerminateGrace time.Duration
}

func GetFFmpegConfig() *FFmpegConfig {
	return &FFmpegConfig{
		BinaryPath:     "ffmpeg",
		TerminateGrace: 3 * time.Second,
	}
}
