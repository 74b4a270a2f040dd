package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dharti/dharti/bridge/internal/application/usecase"
	"github.com/dharti/dharti/bridge/internal/domain/service"
	"github.com/dharti/dharti/bridge/internal/infrastructure/speech"
	"github.com/dharti/dharti/bridge/internal/interfaces/http/handlers"
	"github.com/dharti/dharti/bridge/internal/interfaces/websocket"
)

// Server is the bridge's HTTP surface.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Config configures the HTTP server.
type Config struct {
	Host string
	Port int
	Mode string // local, production
}

// NewServer builds the server with all routes registered. speechProv
// may be nil when the voice channel is disabled.
func NewServer(
	cfg Config,
	uc *usecase.ProcessPromptUseCase,
	tools service.ToolExecutor,
	speechProv speech.Provider,
	logger *zap.Logger,
) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logger))

	promptHandler := handlers.NewPromptHandler(uc, tools, logger)
	speechHandler := handlers.NewSpeechHandler(speechProv, logger)
	wsHandler := websocket.NewHandler(uc, logger)

	setupRoutes(router, promptHandler, speechHandler, wsHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func setupRoutes(
	router *gin.Engine,
	promptHandler *handlers.PromptHandler,
	speechHandler *handlers.SpeechHandler,
	wsHandler *websocket.Handler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.POST("/prompt", promptHandler.HandlePrompt)
	router.GET("/tools", promptHandler.ListTools)

	router.POST("/stt", speechHandler.Transcribe)
	router.POST("/tts", speechHandler.Synthesize)

	router.GET("/ws", wsHandler.Serve)
}

func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
