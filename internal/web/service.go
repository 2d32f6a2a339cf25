// Package web serves datasets and analysis reports as a JSON API for an
// external display layer.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Service struct {
	source *Source
	router *gin.Engine
	server *http.Server
	conf   *Config
}

type Config struct {
	ListenAddr string
	// MaxUploadBytes caps the total size of one upload request.
	MaxUploadBytes int64
}

const defaultMaxUpload = 64 << 20

func NewService(source *Source, conf *Config) *Service {
	gin.SetMode(gin.ReleaseMode)
	if conf.MaxUploadBytes <= 0 {
		conf.MaxUploadBytes = defaultMaxUpload
	}

	s := &Service{
		source: source,
		router: gin.New(),
		conf:   conf,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Start serves in the background. A listen failure is logged and reported
// on the returned channel.
func (s *Service) Start() <-chan error {
	s.server = &http.Server{
		Addr:    s.conf.ListenAddr,
		Handler: s.router,
	}
	log.Info().Str("addr", s.conf.ListenAddr).Msg("starting web service")

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("web service failed")
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Stop shuts the server down gracefully.
func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	log.Info().Msg("web service stopped")
	return nil
}

func (s *Service) Router() *gin.Engine {
	return s.router
}
