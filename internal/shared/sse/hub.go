package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// 事件类型
const (
	EventConnected        = "connected"
	EventInspectionUpdate = "inspection_update"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID          string
	UserID      string
	WorkspaceID string
	Events      chan Event
}

// Hub 按工作区分发事件，慢客户端的事件直接丢弃
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("workspace_id", client.WorkspaceID),
		zap.Int("total", len(h.clients)),
	)
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// Publish 向工作区内所有客户端推送事件
func (h *Hub) Publish(workspaceID, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("sse payload marshal failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	event := Event{EventType: eventType, Data: string(data)}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.WorkspaceID != workspaceID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, skipping event", zap.String("client_id", client.ID))
		}
	}
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
