package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/protocol"
)

func (s *Server) handleConn(ctx context.Context, c net.Conn) {
	defer c.Close()

	log := s.log.With(
		zap.String("conn_id", connID()),
		zap.String("remote", c.RemoteAddr().String()),
	)
	log.Debug("connection open")
	defer log.Debug("connection closed")

	reader := bufio.NewReader(c)
	writer := bufio.NewWriter(c)

	for {
		cmd, err := protocol.ReadCommand(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.stats.RecordError()
				log.Warn("read failed", zap.Error(err))
			}
			return
		}

		val, err := s.sender.Submit(ctx, cmd)
		if err != nil {
			// No value to encode; the only honest move is to drop the client.
			if errors.Is(err, core.ErrDispatcherDown) {
				s.stats.RecordRejected()
				log.Error("dispatcher unavailable")
			}
			return
		}
		s.record(cmd, val)

		if err := protocol.WriteValue(writer, val); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) record(cmd core.Command, val core.Value) {
	switch cmd.Type {
	case core.CmdSet:
		s.stats.RecordSet()
	case core.CmdGet:
		s.stats.RecordGet(!val.IsError())
	case core.CmdFlushAll:
		s.stats.RecordFlush()
	case core.CmdIncr:
		s.stats.RecordIncr()
	case core.CmdDecr:
		s.stats.RecordDecr()
	default:
		s.stats.RecordUnknown()
	}
}

func connID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
