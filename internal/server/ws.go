package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleWS speaks the same command protocol over websocket frames: one text
// frame in is one request line, one text frame out is one encoded value.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := s.log.With(
		zap.String("conn_id", connID()),
		zap.String("remote", r.RemoteAddr),
		zap.String("transport", "ws"),
	)
	log.Debug("connection open")
	defer log.Debug("connection closed")

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		cmd := protocol.ParseCommand(string(payload))
		val, err := s.sender.Submit(r.Context(), cmd)
		if err != nil {
			if errors.Is(err, core.ErrDispatcherDown) {
				s.stats.RecordRejected()
				log.Error("dispatcher unavailable")
			}
			return
		}
		s.record(cmd, val)

		data, err := protocol.EncodeValue(val)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(data)); err != nil {
			return
		}
	}
}
