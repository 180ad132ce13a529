package handlers

import (
	"github.com/deskos/deskos-api/internal/events"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type EventsHandler struct {
	hub HubInterface
}

func NewEventsHandler(hub HubInterface) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Subscribe streams document changes for one collection over SSE until the
// client disconnects.
func (h *EventsHandler) Subscribe(c *drift.Context) {
	collection := c.Param("collection")

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &events.Client{
		ID:          clientID,
		Collections: map[string]bool{collection: true},
		Send:        make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":       "connected",
		"client_id":  clientID,
		"collection": collection,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
