package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"edge-speech-gateway/application/services"
	"edge-speech-gateway/config"
	"edge-speech-gateway/infrastructure/adapters"
	"edge-speech-gateway/infrastructure/gin_interface/controllers"
	"edge-speech-gateway/middleware"
)

func main() {
	logger := adapters.NewZerologWrapper(zerolog.InfoLevel)

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	workerPool, err := ants.NewPool(100)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(logger)
	synthesizer := adapters.NewEdgeSynthesizer(contentFetcher, logger, workerPool, config.GetEdgeConfig())
	audioFilter := adapters.NewFFmpegAudioFilter(logger, config.GetFFmpegConfig())

	speechStreamer := services.NewSpeechStreamer(logger, workerPool, synthesizer, audioFilter)

	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(middleware.RequestLogger(logger))

	controllers.NewSpeechController(logger, config.GetModelCatalog(), speechStreamer).RegisterRoutes(g)
	controllers.NewVoicesController().RegisterRoutes(g)
	controllers.NewWebController().RegisterRoutes(g)

	srv := &http.Server{
		Addr:    serverConfig.Addr(),
		Handler: g,
		// Long keep-alive: a single synthesis may stream for minutes.
		IdleTimeout: serverConfig.KeepAliveTimeout,
	}

	logger.InfoWithFields("starting speech gateway", map[string]interface{}{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}
