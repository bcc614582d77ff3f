package adapters

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"edge-speech-gateway/application/ports/outbound"
	"edge-speech-gateway/config"
	"edge-speech-gateway/domain"
)

type ffmpegAudioFilter struct {
	logger       outbound.LoggerPort
	ffmpegConfig *config.FFmpegConfig
}

// NewFFmpegAudioFilter builds the filter process manager. This is the only
// place the system spawns or kills OS processes.
func NewFFmpegAudioFilter(logger outbound.LoggerPort, ffmpegConfig *config.FFmpegConfig) outbound.AudioFilterPort {
	return &ffmpegAudioFilter{
		logger:       logger,
		ffmpegConfig: ffmpegConfig,
	}
}

func (f *ffmpegAudioFilter) Spawn(volume float64, format string) (outbound.FilterProcess, error) {
	cmd := exec.Command(f.ffmpegConfig.BinaryPath, volumeFilterArgs(volume, format)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &domain.FilterUnavailableError{Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &domain.FilterUnavailableError{Cause: err}
	}
	// Stderr stays nil: diagnostics are discarded.

	if err := cmd.Start(); err != nil {
		f.logger.ErrorWithFields(err, "Failed to start filter process", map[string]interface{}{
			"binary": f.ffmpegConfig.BinaryPath,
		})
		return nil, &domain.FilterUnavailableError{Cause: err}
	}

	return &ffmpegProcess{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		grace:  f.ffmpegConfig.TerminateGrace,
		logger: f.logger,
	}, nil
}

func volumeFilterArgs(volume float64, format string) []string {
	return []string{
		"-i", "pipe:0",
		"-af", fmt.Sprintf("volume=%g", volume),
		"-f", format,
		"-loglevel", "quiet",
		"pipe:1",
	}
}

type ffmpegProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	grace  time.Duration
	logger outbound.LoggerPort

	closeInputOnce sync.Once
	terminateOnce  sync.Once
	terminateErr   error
}

func (p *ffmpegProcess) Input() io.WriteCloser { return &processInput{proc: p} }

func (p *ffmpegProcess) Output() io.Reader { return p.stdout }

func (p *ffmpegProcess) Terminate() error {
	p.terminateOnce.Do(func() {
		p.terminateErr = p.terminate()
	})
	return p.terminateErr
}

func (p *ffmpegProcess) terminate() error {
	p.closeInput()

	done := make(chan error, 1)
	go func() {
		done <- p.cmd.Wait()
	}()

	select {
	case err := <-done:
		return ignoreExit(err)
	case <-time.After(p.grace):
		p.logger.Warn("filter process did not exit within grace period, killing it")
		if err := p.cmd.Process.Kill(); err != nil {
			return err
		}
		return ignoreExit(<-done)
	}
}

func (p *ffmpegProcess) closeInput() {
	p.closeInputOnce.Do(func() {
		if err := p.stdin.Close(); err != nil {
			p.logger.Error(err, "Failed to close filter process input")
		}
	})
}

// ignoreExit drops exit-status errors: a filter that was killed or exited
// non-zero after a truncated input is an expected teardown outcome.
func ignoreExit(err error) error {
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return err
	}
	return nil
}

// processInput routes Close through the process's idempotent input closer so
// the writer leg and Terminate can both safely close stdin.
type processInput struct {
	proc *ffmpegProcess
}

func (w *processInput) Write(b []byte) (int, error) {
	return w.proc.stdin.Write(b)
}

func (w *processInput) Close() error {
	w.proc.closeInput()
	return nil
}
