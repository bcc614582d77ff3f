package adapters

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"edge-speech-gateway/application/ports/outbound"
	"edge-speech-gateway/config"
	"edge-speech-gateway/domain"
)

type edgeSynthesizer struct {
	ContentFetcher
	logger     outbound.LoggerPort
	workerPool outbound.TaskDispatcher
	edgeConfig *config.EdgeConfig
}

// NewEdgeSynthesizer builds the Edge TTS provider client. One WebSocket
// connection is dialed per synthesis and never reused.
func NewEdgeSynthesizer(contentFetcher ContentFetcher, logger outbound.LoggerPort,
	workerPool outbound.TaskDispatcher, edgeConfig *config.EdgeConfig) outbound.SynthesizerPort {
	return &edgeSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		workerPool:     workerPool,
		edgeConfig:     edgeConfig,
	}
}

func (e *edgeSynthesizer) ListVoices(ctx context.Context) ([]domain.ProviderVoice, error) {
	url := e.edgeConfig.VoiceListURL + "?trustedclienttoken=" + e.edgeConfig.TrustedClientToken
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		e.logger.Error(err, "Failed to construct the voice list request")
		return nil, err
	}

	payload, err := e.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var voices []domain.ProviderVoice
	if err := json.Unmarshal(payload, &voices); err != nil {
		e.logger.Error(err, "Failed to unmarshal the provider voice list")
		return nil, err
	}
	return voices, nil
}

func (e *edgeSynthesizer) Synthesize(ctx context.Context, spec domain.SynthesisSpec) (<-chan domain.AudioChunk, <-chan error) {
	out := make(chan domain.AudioChunk)
	errCh := make(chan error, 1)

	err := e.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)
		e.stream(ctx, spec, out, errCh)
	})
	if err != nil {
		e.logger.Error(err, "Failed to submit synthesis task to worker pool")
		errCh <- err
		close(out)
		close(errCh)
	}

	return out, errCh
}

func (e *edgeSynthesizer) stream(ctx context.Context, spec domain.SynthesisSpec, out chan<- domain.AudioChunk, errCh chan<- error) {
	connID := strings.ReplaceAll(uuid.NewString(), "-", "")
	url := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s",
		e.edgeConfig.WSEndpoint, e.edgeConfig.TrustedClientToken, connID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		errCh <- &domain.UpstreamSynthesisError{Cause: err}
		return
	}
	defer conn.Close()

	// ReadMessage has no ctx support; closing the connection is what
	// unblocks it on cancellation.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	if err := e.workerPool.Submit(func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopWatch:
		}
	}); err != nil {
		e.logger.Error(err, "Failed to submit cancellation watcher to worker pool")
	}

	if err := e.sendSpeechConfig(conn); err != nil {
		errCh <- &domain.UpstreamSynthesisError{Cause: err}
		return
	}
	if err := e.sendSSML(conn, spec); err != nil {
		errCh <- &domain.UpstreamSynthesisError{Cause: err}
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			errCh <- &domain.UpstreamSynthesisError{Cause: err}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			payload, ok := binaryAudioPayload(data)
			if !ok || len(payload) == 0 {
				continue
			}
			select {
			case out <- domain.AudioChunk{Type: domain.AudioChunkType, Data: payload}:
			case <-ctx.Done():
				return
			}
		case websocket.TextMessage:
			switch messagePath(data) {
			case "turn.end":
				return
			case "audio.metadata":
				select {
				case out <- domain.AudioChunk{Type: domain.MetadataChunkType, Data: messageBody(data)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (e *edgeSynthesizer) sendSpeechConfig(conn *websocket.Conn) error {
	msg := fmt.Sprintf("X-Timestamp:%s\r\n"+
		"Content-Type:application/json; charset=utf-8\r\n"+
		"Path:speech.config\r\n\r\n"+
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"true"},"outputFormat":"%s"}}}}`,
		edgeTimestamp(), e.edgeConfig.OutputFormat)
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (e *edgeSynthesizer) sendSSML(conn *websocket.Conn, spec domain.SynthesisSpec) error {
	ssml := fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
		"<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='+0%%'>%s</prosody></voice></speak>",
		spec.Voice, spec.Rate, html.EscapeString(spec.Text))

	reqID := strings.ReplaceAll(uuid.NewString(), "-", "")
	msg := fmt.Sprintf("X-RequestId:%s\r\n"+
		"Content-Type:application/ssml+xml\r\n"+
		"X-Timestamp:%s\r\n"+
		"Path:ssml\r\n\r\n%s",
		reqID, edgeTimestamp(), ssml)
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

// binaryAudioPayload splits a binary frame into header and payload. The
// first two bytes carry the big-endian header length; only frames whose
// header declares Path:audio carry audio bytes.
func binaryAudioPayload(frame []byte) ([]byte, bool) {
	if len(frame) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil, false
	}
	if !strings.Contains(string(frame[2:2+headerLen]), "Path:audio") {
		return nil, false
	}
	return frame[2+headerLen:], true
}

func messagePath(frame []byte) string {
	header, _, _ := strings.Cut(string(frame), "\r\n\r\n")
	for _, line := range strings.Split(header, "\r\n") {
		if value, ok := strings.CutPrefix(line, "Path:"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func messageBody(frame []byte) []byte {
	_, body, _ := strings.Cut(string(frame), "\r\n\r\n")
	return []byte(body)
}
