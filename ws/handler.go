package ws

import (
	"net/http"

	"freelancehub/internal/logger"
	"freelancehub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// auth happens via the token middleware, not the origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an authenticated HTTP request to a WebSocket connection
// and registers it with the manager.
func (m *Manager) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(userID, conn, m)
	m.register <- client

	go client.writePump()
	go client.readPump()
}
