package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishScopedToWorkspace(t *testing.T) {
	hub := NewHub(nil)
	a := &Client{ID: "a", WorkspaceID: "ws-1", Events: make(chan Event, 1)}
	b := &Client{ID: "b", WorkspaceID: "ws-2", Events: make(chan Event, 1)}
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.Count())

	hub.Publish("ws-1", EventInspectionUpdate, map[string]string{"action": "start"})

	select {
	case ev := <-a.Events:
		assert.Equal(t, EventInspectionUpdate, ev.EventType)
		assert.JSONEq(t, `{"action":"start"}`, ev.Data)
	default:
		t.Fatal("expected event for ws-1 client")
	}
	assert.Len(t, b.Events, 0)
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "c", WorkspaceID: "ws", Events: make(chan Event, 1)}
	hub.Register(c)

	hub.Publish("ws", EventInspectionUpdate, 1)
	hub.Publish("ws", EventInspectionUpdate, 2)

	assert.Len(t, c.Events, 1)
	assert.Equal(t, "1", (<-c.Events).Data)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "c", WorkspaceID: "ws", Events: make(chan Event, 1)}
	hub.Register(c)
	hub.Unregister("c")
	hub.Unregister("c")

	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count())
}
