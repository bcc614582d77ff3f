package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type VoiceInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacities []string `json:"capacities"`
}

type VoiceListResponse struct {
	Data []VoiceInfo `json:"data"`
}

type VoicesController interface {
	ListVoices(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type voicesController struct{}

func NewVoicesController() VoicesController {
	return &voicesController{}
}

func (v *voicesController) ListVoices(c *gin.Context) {
	c.JSON(http.StatusOK, VoiceListResponse{
		Data: []VoiceInfo{
			{ID: "alloy", Name: "Alloy (EdgeTTS)", Capacities: []string{"tts-1", "tts-1-hd"}},
			{ID: "echo", Name: "Echo (EdgeTTS)", Capacities: []string{"tts-1", "tts-1-hd"}},
			{ID: "nova", Name: "Nova (EdgeTTS)", Capacities: []string{"tts-1", "tts-1-hd"}},
		},
	})
}

func (v *voicesController) RegisterRoutes(g *gin.Engine) {
	g.GET("/v1/voices", v.ListVoices)
}
