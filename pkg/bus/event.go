package bus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-wayfinder/internal/log"
)

// DefaultHighWater is the subscriber queue depth that triggers a warning.
const DefaultHighWater = 1024

// EventChannel is a typed publish/subscribe bus. Every subscriber whose type
// matches a published event receives its own copy, in publication order.
// Queues are unbounded; depth is exposed through Stats and a warning is
// logged when a queue crosses the high-water mark.
type EventChannel struct {
	mu        sync.RWMutex
	subs      map[*eventSub]struct{}
	closed    bool
	highWater int
	log       *slog.Logger

	published atomic.Uint64
}

type eventSub struct {
	name   string
	q      *queue[any]
	match  func(any) bool
	warned atomic.Bool
}

// EventStats is a point-in-time view of an EventChannel.
type EventStats struct {
	Published   uint64 `json:"published"`
	Subscribers int    `json:"subscribers"`
	MaxDepth    int    `json:"max_depth"`
}

// EventOption configures an EventChannel.
type EventOption func(*EventChannel)

// WithHighWater sets the depth that triggers the slow-subscriber warning.
func WithHighWater(n int) EventOption {
	return func(c *EventChannel) { c.highWater = n }
}

// WithLogger sets the logger used for slow-subscriber warnings.
func WithLogger(l *slog.Logger) EventOption {
	return func(c *EventChannel) { c.log = l }
}

// NewEventChannel creates an event channel.
func NewEventChannel(opts ...EventOption) *EventChannel {
	c := &EventChannel{
		subs:      make(map[*eventSub]struct{}),
		highWater: DefaultHighWater,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.Component("event-bus")
	}
	return c
}

// Publish delivers event to every matching subscriber. Safe for concurrent use.
func (c *EventChannel) Publish(event any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}
	c.deliver(event)
	return nil
}

// PublishBatch delivers every event in batch, or none of them if c is
// closed. Close cannot split a batch.
func PublishBatch[T any](c *EventChannel, batch []T) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}
	for _, e := range batch {
		c.deliver(e)
	}
	return nil
}

// deliver must be called with c.mu held.
func (c *EventChannel) deliver(event any) {
	c.published.Add(1)
	for s := range c.subs {
		if !s.match(event) {
			continue
		}
		_, depth := s.q.push(event)
		if c.highWater > 0 && depth >= c.highWater && !s.warned.Swap(true) {
			c.log.Warn("subscriber falling behind", "subscriber", s.name, "depth", depth)
		}
	}
}

// Subscription yields events of type T.
type Subscription[T any] struct {
	c   *EventChannel
	sub *eventSub
}

// Subscribe registers a subscriber for events whose dynamic type is T.
// name appears in slow-subscriber warnings.
func Subscribe[T any](c *EventChannel, name string) *Subscription[T] {
	return subscribe[T](c, name, func(e any) bool {
		_, ok := e.(T)
		return ok
	})
}

// SubscribeAll registers a subscriber for every event.
func SubscribeAll(c *EventChannel, name string) *Subscription[any] {
	return subscribe[any](c, name, func(any) bool { return true })
}

func subscribe[T any](c *EventChannel, name string, match func(any) bool) *Subscription[T] {
	s := &eventSub{name: name, q: newQueue[any](0), match: match}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		s.q.close()
	} else {
		c.subs[s] = struct{}{}
	}
	return &Subscription[T]{c: c, sub: s}
}

// Next blocks until the next event is available.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	v, err := s.sub.q.pop(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if s.sub.q.len() == 0 {
		s.sub.warned.Store(false)
	}
	return v.(T), nil
}

// Depth returns the number of queued events.
func (s *Subscription[T]) Depth() int {
	return s.sub.q.len()
}

// Close unregisters the subscription.
func (s *Subscription[T]) Close() {
	s.c.mu.Lock()
	delete(s.c.subs, s.sub)
	s.c.mu.Unlock()
	s.sub.q.close()
}

// Close stops the channel. Subscribers drain what they hold, then get ErrClosed.
func (c *EventChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for s := range c.subs {
		s.q.close()
	}
}

// Stats returns current counters.
func (c *EventChannel) Stats() EventStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := EventStats{Published: c.published.Load(), Subscribers: len(c.subs)}
	for s := range c.subs {
		if d := s.q.len(); d > st.MaxDepth {
			st.MaxDepth = d
		}
	}
	return st
}
