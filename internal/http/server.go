package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
	srv    *http.Server
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg), log: cfg.Log}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, address string) error {
	s.srv = &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if s.log != nil {
			s.log.Info("HTTP server listening", "addr", address)
		}
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
