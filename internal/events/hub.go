package events

import (
	"encoding/json"
	"sync"

	"github.com/deskos/deskos-api/internal/services"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	ID          string
	Collections map[string]bool
	Send        chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *CollectionMessage
	mu         sync.RWMutex
}

type CollectionMessage struct {
	Collection string
	Event      Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *CollectionMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Collections[msg.Collection] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToCollection(clientID, collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Collections[collection] = true
	}
}

func (h *Hub) UnsubscribeFromCollection(clientID, collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Collections, collection)
	}
}

// BroadcastChange fans a store mutation out to every client subscribed to
// the mutated collection. Wire it as the store's notify callback.
func (h *Hub) BroadcastChange(change services.Change) {
	h.broadcast <- &CollectionMessage{
		Collection: change.Collection,
		Event: Event{
			Type: "document_" + change.Op,
			Data: change,
		},
	}
}
