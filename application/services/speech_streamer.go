package services

import (
	"context"
	"errors"
	"io"

	"edge-speech-gateway/application/ports/inbound"
	"edge-speech-gateway/application/ports/outbound"
	"edge-speech-gateway/channel_utils"
	"edge-speech-gateway/domain"
)

// outputBlockSize is how much filtered audio the reader leg pulls per step.
const outputBlockSize = 4096

type speechStreamer struct {
	logger      outbound.LoggerPort
	workerPool  outbound.TaskDispatcher
	synthesizer outbound.SynthesizerPort
	filter      outbound.AudioFilterPort
}

func NewSpeechStreamer(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	synthesizer outbound.SynthesizerPort, filter outbound.AudioFilterPort) inbound.SpeechStreamerPort {
	return &speechStreamer{
		logger:      logger,
		workerPool:  workerPool,
		synthesizer: synthesizer,
		filter:      filter,
	}
}

func (s *speechStreamer) Stream(ctx context.Context, params inbound.StreamSpeechParams) (<-chan []byte, <-chan error, error) {
	realVoice := params.Model.ResolveVoice(params.Voice)

	voices, err := s.synthesizer.ListVoices(ctx)
	if err != nil {
		return nil, nil, &domain.UpstreamSynthesisError{Cause: err}
	}
	if !voiceKnown(voices, realVoice) {
		return nil, nil, &domain.UpstreamSynthesisError{Voice: realVoice}
	}

	spec := domain.SynthesisSpec{
		Text:   params.Text,
		Voice:  realVoice,
		Rate:   domain.RateForSpeed(params.Model.ClampSpeed(params.Speed)),
		Volume: params.Volume,
		Format: params.Format,
	}

	// Spawn before dialing the provider so an unavailable filter is a
	// pre-stream failure, not a silent downgrade to raw audio.
	var proc outbound.FilterProcess
	if spec.Volume != 1.0 {
		proc, err = s.filter.Spawn(spec.Volume, spec.Format)
		if err != nil {
			return nil, nil, err
		}
	}

	newCtx, cancel := context.WithCancel(ctx)

	chunkCh, synthErrCh := s.synthesizer.Synthesize(newCtx, spec)

	var out <-chan []byte
	var pipeErrCh <-chan error
	if proc == nil {
		out, pipeErrCh, err = s.startBypass(newCtx, cancel, chunkCh)
	} else {
		out, pipeErrCh, err = s.startFiltered(newCtx, cancel, chunkCh, proc)
	}
	if err != nil {
		cancel()
		if proc != nil {
			if termErr := proc.Terminate(); termErr != nil {
				s.logger.Error(termErr, "failed to terminate filter process")
			}
		}
		return nil, nil, err
	}

	merged, err := channel_utils.MergeChannels(s.workerPool, synthErrCh, pipeErrCh)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	return out, merged, nil
}

// startBypass copies audio-tagged chunk payloads straight from the provider
// stream to the out channel. The channel is unbuffered: the transport's pull
// is the only demand signal.
func (s *speechStreamer) startBypass(ctx context.Context, cancel context.CancelFunc,
	chunks <-chan domain.AudioChunk) (<-chan []byte, <-chan error, error) {
	out := make(chan []byte)
	errCh := make(chan error)

	err := s.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)
		defer cancel()

		for chunk := range chunks {
			if chunk.Type != domain.AudioChunkType {
				continue
			}
			select {
			case out <- chunk.Data:
			case <-ctx.Done():
				return
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}

	return out, errCh, nil
}

// startFiltered runs the two concurrent legs of a filtered session: a writer
// task draining provider chunks into the filter's stdin and a reader task
// draining its stdout towards the client. The two legs only share the
// process's own pipe buffers; running them independently is what keeps the
// session from deadlocking once both OS pipes fill up.
func (s *speechStreamer) startFiltered(ctx context.Context, cancel context.CancelFunc,
	chunks <-chan domain.AudioChunk, proc outbound.FilterProcess) (<-chan []byte, <-chan error, error) {
	out := make(chan []byte)
	errCh := make(chan error)

	writerCtx, cancelWriter := context.WithCancel(ctx)
	writerDone := make(chan struct{})

	// Blocking reads on the process pipes cannot be interrupted directly;
	// terminating the process on cancellation is what unblocks them.
	stopWatch := make(chan struct{})
	err := s.workerPool.Submit(func() {
		select {
		case <-ctx.Done():
			if err := proc.Terminate(); err != nil {
				s.logger.Error(err, "failed to terminate filter process")
			}
		case <-stopWatch:
		}
	})
	if err != nil {
		cancelWriter()
		return nil, nil, err
	}

	err = s.workerPool.Submit(func() {
		defer close(writerDone)

		input := proc.Input()
		for {
			select {
			case <-writerCtx.Done():
				return
			case chunk, ok := <-chunks:
				if !ok {
					// Source exhausted: closing stdin tells the filter to
					// flush and produce its final output.
					if err := input.Close(); err != nil {
						s.logger.Error(err, "failed to close filter input")
					}
					return
				}
				if chunk.Type != domain.AudioChunkType {
					continue
				}
				if _, err := input.Write(chunk.Data); err != nil {
					// Never propagated into the reader leg: the response
					// degrades to a truncated stream.
					s.logger.Error(&domain.PipelineWriteError{Cause: err}, "writer leg stopped")
					return
				}
			}
		}
	})
	if err != nil {
		close(stopWatch)
		cancelWriter()
		return nil, nil, err
	}

	err = s.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)
		defer cancel()
		defer func() {
			// Teardown, on every exit path: stop the writer, make sure the
			// process is gone, then wait for the writer to acknowledge.
			cancelWriter()
			if err := proc.Terminate(); err != nil {
				s.logger.Error(err, "failed to terminate filter process")
			}
			<-writerDone
			close(stopWatch)
		}()

		output := proc.Output()
		buf := make([]byte, outputBlockSize)
		for {
			n, err := output.Read(buf)
			if n > 0 {
				block := make([]byte, n)
				copy(block, buf[:n])
				select {
				case out <- block:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					select {
					case errCh <- err:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	})
	if err != nil {
		cancelWriter()
		return nil, nil, err
	}

	return out, errCh, nil
}

func voiceKnown(voices []domain.ProviderVoice, shortName string) bool {
	for _, v := range voices {
		if v.ShortName == shortName {
			return true
		}
	}
	return false
}
