package ws

import (
	"encoding/json"
	"time"

	"freelancehub/internal/logger"
	"freelancehub/internal/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one WebSocket connection of one authenticated user.
type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan any
	manager *Manager
}

// inboundEnvelope is what a connected client may send us.
type inboundEnvelope struct {
	Type       string `json:"type"`
	ProjectID  string `json:"project_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type errorEnvelope struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newClient(userID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan any, 32),
		manager: manager,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.trySend(errorEnvelope{Type: "error", Error: "invalid message format"})
			continue
		}
		c.handleEnvelope(env)
	}
}

func (c *Client) handleEnvelope(env inboundEnvelope) {
	switch env.Type {
	case "chat_message":
		if c.manager.chatService == nil {
			c.trySend(errorEnvelope{Type: "error", Error: "chat unavailable"})
			return
		}
		// sender identity comes from the authenticated connection,
		// never from the payload
		msg, err := c.manager.chatService.SendMessage(c.manager.db, c.UserID, env.ProjectID, env.ReceiverID, env.Content)
		if err != nil {
			c.trySend(errorEnvelope{Type: "error", Error: err.Error()})
			return
		}
		c.trySend(services.WSMessageEnvelope{Type: "message_sent", Message: msg})
	case "ping":
		c.trySend(map[string]string{"type": "pong"})
	default:
		c.trySend(errorEnvelope{Type: "error", Error: "unknown message type"})
	}
}

func (c *Client) trySend(payload any) {
	select {
	case c.Send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(payload); err != nil {
				logger.Warn("ws write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
