package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/events"
)

// Rooms clients can join. Kitchen screens only follow the cooking queue;
// everyone else sees the whole order lifecycle.
const (
	RoomKitchen = "kitchen"
	RoomFront   = "front"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrHubStopped is returned for work submitted after Run has returned.
var ErrHubStopped = errors.New("websocket hub stopped")

type roomEvent struct {
	Room  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *roomEvent

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		done:       make(chan struct{}),
	}
}

// RoomForRole maps a staff role to the room its screens subscribe to.
func RoomForRole(role string) string {
	if role == enum.UserRoleKitchen {
		return RoomKitchen
	}
	return RoomFront
}

// roomsFor lists the rooms an order event is delivered to.
func roomsFor(eventType string) []string {
	if eventType == events.TypeOrderPaymentAdded {
		return []string{RoomFront}
	}
	return []string{RoomFront, RoomKitchen}
}

// Run starts the hub's main loop and returns when ctx is cancelled, closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Room] {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than stall the room.
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// join registers client and reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client; a stopped hub has already released it.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToRoom queues an event for every client in room.
func (h *Hub) BroadcastToRoom(ctx context.Context, room string, event Event) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- &roomEvent{Room: room, Event: event}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish implements events.Publisher.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	for _, room := range roomsFor(e.Type) {
		if err := h.BroadcastToRoom(ctx, room, Event{Type: e.Type, Payload: payload}); err != nil {
			return fmt.Errorf("broadcast to %s: %w", room, err)
		}
	}
	return nil
}
