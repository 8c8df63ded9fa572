package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	log    *zap.Logger
	server *http.Server
}

func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		log: log,
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
			// header timeout only: /ws connections are long-lived, so
			// no read/write deadlines on the whole server
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start() {
	s.log.Info("http server listening", zap.String("addr", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
