package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// EngagementEvent is broadcast to connected clients whenever a post's like
// membership actually changes.
type EngagementEvent struct {
	PostID     uuid.UUID
	LikesCount int
}

type engagementMessage struct {
	Type       string `json:"type"`
	PostID     string `json:"postId"`
	LikesCount int    `json:"likesCount"`
}

type subscription struct {
	client  *Client
	postIDs []uuid.UUID
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan *subscription
	events     chan EngagementEvent
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan *subscription),
		events:     make(chan EngagementEvent, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			h.mu.Unlock()
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				sub.client.setPosts(sub.postIDs)
			}

		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

// Stop gracefully shuts down the hub and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// EngagementChanged implements service.EngagementNotifier. It never blocks a
// request goroutine: if the hub is saturated or stopped the event is dropped.
func (h *Hub) EngagementChanged(postID uuid.UUID, likesCount int) {
	select {
	case h.events <- EngagementEvent{PostID: postID, LikesCount: likesCount}:
	default:
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	stopped := h.stopped
	h.mu.Unlock()
	if stopped {
		client.Close()
		return
	}
	h.register <- client
}

func (h *Hub) broadcast(event EngagementEvent) {
	data, _ := json.Marshal(engagementMessage{
		Type:       "engagement",
		PostID:     event.PostID.String(),
		LikesCount: event.LikesCount,
	})

	for client := range h.clients {
		if !client.wants(event.PostID) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer, skip this event for them.
		}
	}
}
