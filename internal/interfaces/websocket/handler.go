// Package websocket streams reasoning-loop events to interactive
// clients. One connection drives one prompt at a time: the client
// sends a prompt frame, reads events until "done", then may send the
// next prompt.
package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dharti/dharti/bridge/internal/application/usecase"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The bridge fronts trusted first-party clients only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades connections and runs prompts over them.
type Handler struct {
	uc     *usecase.ProcessPromptUseCase
	logger *zap.Logger
}

// NewHandler creates the WebSocket handler.
func NewHandler(uc *usecase.ProcessPromptUseCase, logger *zap.Logger) *Handler {
	return &Handler{
		uc:     uc,
		logger: logger.With(zap.String("component", "ws-handler")),
	}
}

type promptFrame struct {
	Prompt string `json:"prompt"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Serve handles GET /ws.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	h.logger.Info("WebSocket connected", zap.String("remote", conn.RemoteAddr().String()))

	for {
		var frame promptFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		if frame.Prompt == "" {
			h.writeJSON(conn, errorFrame{Type: "error", Error: "prompt is required"})
			continue
		}

		_, events := h.uc.Run(c.Request.Context(), "ws", frame.Prompt)
		for ev := range events {
			if !h.writeJSON(conn, ev) {
				// Writer is gone; drain so the run still gets recorded.
				for range events {
				}
				return
			}
		}
	}
}

func (h *Handler) writeJSON(conn *websocket.Conn, v interface{}) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Warn("WebSocket write failed", zap.Error(err))
		return false
	}
	return true
}
