package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"edge-speech-gateway/application/ports/inbound"
	"edge-speech-gateway/application/ports/outbound"
	"edge-speech-gateway/config"
	"edge-speech-gateway/infrastructure/gin_interface/dto"
)

type SpeechController interface {
	CreateSpeech(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type speechController struct {
	logger         outbound.LoggerPort
	catalog        config.ModelCatalog
	speechStreamer inbound.SpeechStreamerPort
}

func NewSpeechController(logger outbound.LoggerPort, catalog config.ModelCatalog,
	speechStreamer inbound.SpeechStreamerPort) SpeechController {
	return &speechController{
		logger:         logger,
		catalog:        catalog,
		speechStreamer: speechStreamer,
	}
}

func (s *speechController) CreateSpeech(c *gin.Context) {
	var req dto.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error(), http.StatusBadRequest))
		return
	}
	req.ApplyDefaults()

	s.logger.DebugWithFields("received speech request", map[string]interface{}{
		"model": req.Model, "voice": req.Voice, "speed": req.SpeedValue(), "volume": req.VolumeValue(),
	})

	model, ok := s.catalog.Lookup(req.Model)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			fmt.Sprintf("unsupported model: %s", req.Model), http.StatusBadRequest))
		return
	}
	if !model.AllowsFormat(req.ResponseFormat) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			fmt.Sprintf("model %s does not support format: %s", req.Model, req.ResponseFormat), http.StatusBadRequest))
		return
	}
	voice := strings.ToLower(req.Voice)
	if !model.HasVoice(voice) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			fmt.Sprintf("model %s does not support voice: %s", req.Model, req.Voice), http.StatusBadRequest))
		return
	}

	newCtx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out, errCh, err := s.speechStreamer.Stream(newCtx, inbound.StreamSpeechParams{
		Text:   req.Input,
		Voice:  voice,
		Speed:  req.SpeedValue(),
		Volume: req.VolumeValue(),
		Format: req.ResponseFormat,
		Model:  model,
	})
	if err != nil {
		s.logger.Error(err, "failed to start speech pipeline")
		// Compatibility quirk: internal failures keep status 200 with a
		// 500-shaped error body.
		c.JSON(http.StatusOK, dto.NewErrorResponse(err.Error(), http.StatusInternalServerError))
		return
	}

	c.Header("Content-Type", "audio/"+req.ResponseFormat)
	c.Header("Content-Disposition", "attachment; filename=speech.mp3")
	c.Header("OpenAI-Processing-Ms", "800")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		for {
			select {
			case <-newCtx.Done():
				return false
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				// Headers are already committed; all we can do is log and
				// truncate the stream.
				s.logger.Error(err, "speech pipeline failed mid-stream, truncating response")
				cancel()
				return false
			case block, ok := <-out:
				if !ok {
					return false
				}
				_, err := w.Write(block)
				return err == nil
			}
		}
	})

	// Unblock the pipeline's error merge and surface anything it still holds.
	cancel()
	if errCh != nil {
		for err := range errCh {
			s.logger.Error(err, "speech pipeline error after response ended")
		}
	}
}

func (s *speechController) RegisterRoutes(g *gin.Engine) {
	g.POST("/v1/audio/speech", s.CreateSpeech)
}
