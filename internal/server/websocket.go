package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bell24h/realtime/internal/connection"
	"github.com/bell24h/realtime/internal/protocol"
)

// Close codes that mean the peer left on purpose.
var expectedCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.isClosed() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	if s.registry.Full() {
		s.logger.Warn("connection refused, server full", "remote_addr", r.RemoteAddr)
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.logger.Debug("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(s.cfg.ReadLimit)

	c := connection.NewConn(ws, s.cfg.Conn, s.logger, s.metrics)
	if !s.trackReader() {
		refuse(ws, websocket.CloseGoingAway, "server shutting down")
		c.Close()
		return
	}
	defer s.readers.Done()

	if err := s.registry.Register(c); err != nil {
		c.Logger().Warn("connection refused", "error", err)
		refuse(ws, websocket.CloseTryAgainLater, "too many connections")
		c.Close()
		return
	}

	// Close may have snapshotted the registry before Register
	if s.isClosed() {
		s.registry.Unregister(c)
		c.Close()
		return
	}

	c.Logger().Info("client connected", "remote_addr", r.RemoteAddr)
	s.readLoop(c, ws)
}

// trackReader counts a new read loop unless Close has begun.
func (s *Server) trackReader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.readers.Add(1)
	return true
}

func refuse(ws *websocket.Conn, code int, reason string) {
	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
}

// readLoop handles inbound frames until the socket fails, then removes c.
func (s *Server) readLoop(c *connection.Conn, ws *websocket.Conn) {
	defer func() {
		s.registry.Unregister(c)
		c.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, expectedCloseCodes...) && c.IsOpen() {
				c.Logger().Warn("client read failed", "error", err)
			} else {
				c.Logger().Info("client disconnected")
			}
			return
		}

		s.handleInbound(c, data)
	}
}

// handleInbound processes one text or binary frame.
func (s *Server) handleInbound(c *connection.Conn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		s.metrics.InboundErrors.Inc()
		c.Logger().Debug("invalid inbound message", "error", err)
		s.reply(c, protocol.Error{Message: protocol.InvalidFormatMessage})
		return
	}

	switch m := msg.(type) {
	case protocol.Authenticate:
		id := connection.Identity{UserID: m.UserID, Role: m.Role}
		if err := s.registry.Bind(c, id); err != nil {
			c.Logger().Warn("authenticate rejected", "user_id", m.UserID, "role", m.Role, "error", err)
			if errors.Is(err, connection.ErrAlreadyBound) {
				s.reply(c, protocol.Error{Message: protocol.AlreadyAuthenticatedMessage})
			}
			return
		}
		c.Logger().Info("client authenticated", "user_id", m.UserID, "role", m.Role)
		s.reply(c, protocol.AuthenticationSuccess{UserID: m.UserID, Role: m.Role})

	case protocol.Pong:
		c.MarkAlive()

	case protocol.Unknown:
		c.Logger().Debug("dropping unhandled message", "type", m.Type)
	}
}

func (s *Server) reply(c *connection.Conn, msg protocol.Outbound) {
	if err := c.Send(msg); err != nil {
		c.Logger().Debug("failed to queue reply", "type", msg.Type(), "error", err)
	}
}
