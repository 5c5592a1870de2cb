package websocket

import (
	"context"
	"encoding/json"
	"time"

	"storefront/pkg/logger"
)

const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeRefresh      = "refresh"
	MessageTypeSnapshot     = "snapshot"
	MessageTypeNotification = "notification"
	MessageTypeError        = "error"

	refreshTimeout = 15 * time.Second
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func NewMessage(messageType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// HandleClientMessage answers pings and refresh requests. A refresh result
// reaches the client through the usual snapshot broadcast.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var message WSMessage
	if err := json.Unmarshal(messageBytes, &message); err != nil {
		m.sendToClient(client, NewMessage(MessageTypeError, map[string]string{"error": "Invalid message format"}))
		return
	}

	switch message.Type {
	case MessageTypePing:
		m.sendToClient(client, NewMessage(MessageTypePong, map[string]string{"status": "alive"}))

	case MessageTypeRefresh:
		if m.refresher == nil {
			m.sendToClient(client, NewMessage(MessageTypeError, map[string]string{"error": "Refresh is not available"}))
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := m.refresher.Refresh(ctx); err != nil {
				m.sendToClient(client, NewMessage(MessageTypeError, map[string]string{"error": "Refresh failed"}))
			}
		}()

	default:
		logger.Debug("WebSocket: unknown message type %q from client %s", message.Type, client.ID)
		m.sendToClient(client, NewMessage(MessageTypeError, map[string]string{"error": "Unknown message type"}))
	}
}

func (m *Manager) sendToClient(client *Client, message WSMessage) {
	data, err := encode(message)
	if err != nil {
		logger.Error("WebSocket: failed to encode message for client %s: %v", client.ID, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		logger.Warn("WebSocket client %s send buffer full, dropping %s message", client.ID, message.Type)
	}
}
