package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"storefront/internal/storesync"
	"storefront/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one browser connection. ID is unique per connection; UserID is
// empty for anonymous shoppers.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	greeting func() []WSMessage
}

func NewClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Refresher is the store refresh a client can ask for.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Manager fans store snapshots and notifications out to every connected
// client. Clients that cannot keep up are dropped.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex

	refresher Refresher
}

func NewManager(refresher Refresher) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		refresher:  refresher,
	}
}

// SetRefresher sets the target of client refresh requests. Call it before
// Start.
func (m *Manager) SetRefresher(refresher Refresher) {
	m.refresher = refresher
}

// Start runs the manager's main loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("WebSocket client registered: id=%s user=%s", client.ID, client.UserID)
				m.greet(client)

			case client := <-m.Unregister:
				m.remove(client)

			case message := <-m.broadcast:
				m.mutex.Lock()
				for id, client := range m.clients {
					select {
					case client.Send <- message:
					default:
						logger.Warn("WebSocket client %s is too slow, dropping it", id)
						delete(m.clients, id)
						close(client.Send)
					}
				}
				m.mutex.Unlock()

			case <-ctx.Done():
				m.mutex.Lock()
				for id, client := range m.clients {
					delete(m.clients, id)
					close(client.Send)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if current, ok := m.clients[client.ID]; ok && current == client {
		delete(m.clients, client.ID)
		close(client.Send)
		logger.Debug("WebSocket client unregistered: id=%s", client.ID)
	}
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Broadcast queues message for every client. It never blocks; when the queue
// is full the message is dropped.
func (m *Manager) Broadcast(message WSMessage) {
	data, err := encode(message)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s message: %v", message.Type, err)
		return
	}

	select {
	case m.broadcast <- data:
	case <-m.done:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping %s message", message.Type)
	}
}

// PublishSnapshot is a storesync listener.
func (m *Manager) PublishSnapshot(snap *storesync.Snapshot) {
	m.Broadcast(NewMessage(MessageTypeSnapshot, snap))
}

// Notify implements storesync.Notifier.
func (m *Manager) Notify(n storesync.Notification) {
	m.Broadcast(NewMessage(MessageTypeNotification, n))
}

// greet queues the client's greeting. It runs on the manager loop right after
// registration, so nothing broadcast before it can be newer than what it sends.
func (m *Manager) greet(client *Client) {
	if client.greeting == nil {
		return
	}
	for _, message := range client.greeting() {
		data, err := encode(message)
		if err != nil {
			logger.Error("WebSocket: failed to encode %s message: %v", message.Type, err)
			continue
		}
		select {
		case client.Send <- data:
		default:
			logger.Warn("WebSocket client %s greeting dropped, send buffer full", client.ID)
		}
	}
}

// Serve registers a client for conn and starts its pumps. greeting, when set,
// is built once the client is registered and queued ahead of later
// broadcasts.
func (m *Manager) Serve(conn *websocket.Conn, userID string, greeting func() []WSMessage) *Client {
	client := NewClient(conn, userID)
	client.greeting = greeting

	select {
	case m.Register <- client:
	case <-m.done:
		close(client.Send)
	}

	go client.WritePump()
	go client.ReadPump(m)
	return client
}

// ReadPump reads client messages until the connection closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-m.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for client %s: %v", c.ID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket write error for client %s: %v", c.ID, err)
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

func encode(message WSMessage) ([]byte, error) {
	return json.Marshal(message)
}
