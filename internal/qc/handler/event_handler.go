package handler

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/shared/sse"
	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 30 * time.Second

// EventHandler 质检事件推送
type EventHandler struct {
	hub *sse.Hub
}

func NewEventHandler(hub *sse.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

// Stream 订阅工作区内的质检单变更
// GET /api/v1/qc/events
func (h *EventHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	client := &sse.Client{
		ID:          clientID,
		UserID:      userID,
		WorkspaceID: GetWorkspaceID(c),
		Events:      make(chan sse.Event, 64),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(clientID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	writeEvent(c, sse.EventConnected, fmt.Sprintf(`{"client_id":"%s"}`, clientID))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			writeEvent(c, event.EventType, event.Data)
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

func writeEvent(c *gin.Context, eventType, data string) {
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", eventType, data)
	c.Writer.Flush()
}
