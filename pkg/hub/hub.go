package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-wayfinder/internal/log"
)

// DefaultBroadcastBuffer is the capacity of the hub's inbound queue.
const DefaultBroadcastBuffer = 256

// Stats is a point-in-time view of a Hub.
type Stats struct {
	Clients   int    `json:"clients"`
	Sent      uint64 `json:"sent"`
	Dropped   uint64 `json:"dropped"`
	Evicted   uint64 `json:"evicted"`
	Connected uint64 `json:"connected"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	name string
	log  *slog.Logger

	// Registered clients, owned by the Run goroutine
	clients map[*Client]bool

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Client count for readers outside Run
	mu    sync.RWMutex
	count int

	sent      atomic.Uint64
	dropped   atomic.Uint64
	evicted   atomic.Uint64
	connected atomic.Uint64
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		log:        log.Component("hub").With("hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, DefaultBroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Name returns the hub's name.
func (h *Hub) Name() string { return h.name }

// Run is the hub's main loop. It returns when ctx is canceled, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			h.setCount()
			h.log.Info("client connected", "client", c.ID(), "total", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.log.Info("client disconnected", "client", c.ID(), "remaining", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
					h.sent.Add(1)
				default:
					// Client's buffer is full; it is too slow to keep.
					h.remove(c)
					h.evicted.Add(1)
					h.log.Warn("dropped slow client", "client", c.ID())
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Broadcast queues msg for every connected client. It never blocks; when
// the hub is backed up the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.log.Debug("broadcast queue full, dropping message")
	}
}

// BroadcastEvent encodes a pipeline event and broadcasts it.
func (h *Hub) BroadcastEvent(event any) error {
	msg, err := NewEventMessage(event)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// BroadcastBinary broadcasts binary data (e.g., camera frames)
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Stats returns current counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Clients:   h.ClientCount(),
		Sent:      h.sent.Load(),
		Dropped:   h.dropped.Load(),
		Evicted:   h.evicted.Load(),
		Connected: h.connected.Load(),
	}
}
