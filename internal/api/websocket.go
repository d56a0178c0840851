package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/middleware"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// handleWebSocket runs live analysis: each text message holding an
// AnalyzeRequest is answered with a Report, or an APIError when the message
// cannot be decoded or exceeds analysis.max_slides. The connection survives
// bad messages.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	correlationID := c.GetString(middleware.CorrelationIDKey)
	log := s.logger.WithField("correlation_id", correlationID)
	log.Debug("Live analysis session opened")

	if limit := s.configManager.GetConfig().Server.MaxBodyBytes; limit > 0 {
		conn.SetReadLimit(limit)
	}
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	writes := make(chan interface{})
	go s.wsWriter(conn, writes, done, log)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("Live analysis session closed unexpectedly")
			}
			return
		}

		var req AnalyzeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			writes <- domain.NewAPIError(domain.ErrInvalidInput, "Malformed analysis message", err.Error(), correlationID)
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		if verr := s.slideLimitError("slides", req.Slides); verr != nil {
			writes <- domain.NewAPIError(domain.ErrValidation, verr.Message, verr.Error(), correlationID)
			continue
		}
		writes <- s.analyzer.Analyze(req.Slides, req.PresentationType)
	}
}

// wsWriter owns all writes on conn, including keepalive pings.
func (s *Server) wsWriter(conn *websocket.Conn, writes <-chan interface{}, done <-chan struct{}, log *logrus.Entry) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-writes:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("Live analysis write failed")
				conn.Close()
				drain(writes, done)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				conn.Close()
				drain(writes, done)
				return
			}
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

// drain discards pending writes until the reader exits.
func drain(writes <-chan interface{}, done <-chan struct{}) {
	for {
		select {
		case <-writes:
		case <-done:
			return
		}
	}
}
