package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "storefront/internal/infrastructure/websocket"
	"storefront/internal/storesync"
	"storefront/pkg/logger"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	store     *storesync.Synchronizer
}

var webSocketHandler *WebSocketHandler

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, store *storesync.Synchronizer) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		store:     store,
	}
}

func SetupWebSocketHandler(wsManager *ws.Manager, store *storesync.Synchronizer) {
	webSocketHandler = NewWebSocketHandler(wsManager, store)
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

// HandleWebSocket upgrades the connection and greets it with the snapshot
// current at registration, ahead of any later broadcast.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		logger.Warn("WebSocket upgrade failed: %v", err)
		return nil
	}

	userID, _ := c.Get("uid").(string)
	h.wsManager.Serve(conn, userID, func() []ws.WSMessage {
		return []ws.WSMessage{ws.NewMessage(ws.MessageTypeSnapshot, h.store.Snapshot())}
	})

	return nil
}
