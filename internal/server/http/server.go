// Package http exposes the core services over a JSON REST API plus the
// websocket relay endpoint. It owns the translation from core errors to
// transport-level responses; nothing below this layer knows about status
// codes.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/config"
	"github.com/avolkovs/tabshare/internal/server/realtime"
	"github.com/avolkovs/tabshare/internal/server/services"
	"github.com/avolkovs/tabshare/internal/server/tabs"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	addr           string
	engine         *gin.Engine
	logger         logging.Logger
	users          *services.UserService
	tabs           *tabs.Store
	hub            *realtime.Hub
	maxUploadBytes int64
}

func NewServer(cfg *config.Config, logger logging.Logger, users *services.UserService, store *tabs.Store, hub *realtime.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		addr:           cfg.Addr,
		engine:         engine,
		logger:         logger.With("module", "http_server"),
		users:          users,
		tabs:           store,
		hub:            hub,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.GET("/user", s.requireAuth(), s.profile)
	authGroup.PUT("/user", s.requireAuth(), s.updateProfile)

	tabGroup := api.Group("/tabs")
	tabGroup.GET("", s.optionalAuth(), s.listTabs)
	tabGroup.GET("/:id", s.getTab)
	tabGroup.POST("", s.requireAuth(), s.bodyLimit(), s.uploadTab)
	tabGroup.DELETE("/:id", s.requireAuth(), s.deleteTab)

	s.engine.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
