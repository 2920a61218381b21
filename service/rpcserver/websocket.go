package rpcserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// handleWebSocketRPC upgrades the connection and serves JSON-RPC 2.0 calls
// for its lifetime, one goroutine per connection. Each inbound message is
// dispatched independently and concurrently - nothing here assumes
// request/response ordering, matching the stateless semantics of the HTTP
// transport. Writes are serialized through writeMu since gorilla/websocket
// forbids concurrent writers on the same connection.
func (s *Server) handleWebSocketRPC() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		writeMu := make(chan struct{}, 1)
		writeMu <- struct{}{}

		for {
			var req request
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read error", "error", err)
				}
				return
			}

			go func(req request) {
				start := time.Now()
				resp := s.handle(r.Context(), req)
				s.recordRPC(req.Method, "websocket", resp, start)

				<-writeMu
				defer func() { writeMu <- struct{}{} }()
				if err := conn.WriteJSON(resp); err != nil {
					s.logger.Debug("websocket write error", "error", err)
				}
			}(req)
		}
	})
}
