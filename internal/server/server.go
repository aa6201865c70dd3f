package server

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/stats"
)

type Server struct {
	addr   string
	sender *core.Sender
	stats  *stats.Stats
	log    *zap.Logger
}

func New(addr string, sender *core.Sender, st *stats.Stats, log *zap.Logger) *Server {
	return &Server{
		addr:   addr,
		sender: sender,
		stats:  st,
		log:    log,
	}
}

// ListenAndServe accepts connections until ctx is cancelled. Each connection
// gets its own goroutine; all of them funnel into the same core sender.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.handleConn(ctx, conn)
	}
}
