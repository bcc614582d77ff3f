package controllers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var indexHTML []byte

type WebController interface {
	Index(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type webController struct{}

func NewWebController() WebController {
	return &webController{}
}

func (w *webController) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (w *webController) RegisterRoutes(g *gin.Engine) {
	g.GET("/", w.Index)
}
