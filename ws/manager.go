package ws

import (
	"sync"

	"freelancehub/internal/logger"
	"freelancehub/internal/services"

	"gorm.io/gorm"
)

// Manager is the live-connection registry: user id -> set of connections.
// A user may be connected from several devices; pushes fan out to all of
// them. With a redis relay attached, pushes also reach connections held by
// other instances.
type Manager struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	chatService services.ChatService
	db          *gorm.DB
	relay       *RedisRelay
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		db:         db,
	}
}

// SetChatService breaks the construction cycle: the chat service needs the
// manager as its pusher, the manager needs the chat service for inbound
// frames. Must be called before Run.
func (m *Manager) SetChatService(chatService services.ChatService) {
	m.chatService = chatService
}

// SetRelay attaches a cross-instance relay. Must be called before Run.
func (m *Manager) SetRelay(relay *RedisRelay) {
	m.relay = relay
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.UserID] == nil {
				m.clients[client.UserID] = make(map[*Client]bool)
			}
			m.clients[client.UserID][client] = true
			m.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID)

		case client := <-m.unregister:
			m.mu.Lock()
			if set, ok := m.clients[client.UserID]; ok && set[client] {
				delete(set, client)
				close(client.Send)
				if len(set) == 0 {
					delete(m.clients, client.UserID)
				}
			}
			m.mu.Unlock()
			logger.Debug("ws client unregistered", "user_id", client.UserID)
		}
	}
}

// PushToUser delivers the payload to every local connection of the user and
// forwards it to other instances through the relay. Returns whether at
// least one local connection took it. At-most-once: a full send buffer
// drops the connection rather than blocking the caller.
func (m *Manager) PushToUser(userID string, payload any) bool {
	if m.relay != nil {
		m.relay.Publish(userID, payload)
	}
	return m.pushLocal(userID, payload)
}

func (m *Manager) pushLocal(userID string, payload any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	delivered := false
	for client := range m.clients[userID] {
		select {
		case client.Send <- payload:
			delivered = true
		default:
			// slow consumer, disconnect it
			go func(c *Client) { m.unregister <- c }(client)
		}
	}
	return delivered
}

// IsConnected reports whether the user has at least one live connection on
// this instance.
func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID]) > 0
}

// ConnectionCount returns the number of live connections on this instance.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, set := range m.clients {
		total += len(set)
	}
	return total
}
