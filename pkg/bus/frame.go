// Package bus provides the two transports that connect pipeline stages:
// a latest-wins FrameChannel for video and a typed, unbounded EventChannel
// for everything derived from it.
package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// DefaultFrameCapacity is the per-subscriber frame buffer size.
const DefaultFrameCapacity = 2

// FrameChannel broadcasts frames to independent subscribers. Publish never
// blocks; a full subscriber buffer drops its oldest frame.
type FrameChannel struct {
	mu       sync.RWMutex
	subs     map[*FrameSubscription]struct{}
	capacity int
	closed   bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// FrameStats is a point-in-time view of a FrameChannel.
type FrameStats struct {
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// NewFrameChannel creates a frame channel. capacity <= 0 selects DefaultFrameCapacity.
func NewFrameChannel(capacity int) *FrameChannel {
	if capacity <= 0 {
		capacity = DefaultFrameCapacity
	}
	return &FrameChannel{
		subs:     make(map[*FrameSubscription]struct{}),
		capacity: capacity,
	}
}

// Publish offers f to every subscriber.
func (c *FrameChannel) Publish(f protocol.FramePacket) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}
	c.published.Add(1)
	for s := range c.subs {
		if evicted, _ := s.q.push(f); evicted {
			c.dropped.Add(1)
			s.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a new subscriber. It sees only frames published after
// this call.
func (c *FrameChannel) Subscribe() *FrameSubscription {
	s := &FrameSubscription{q: newQueue[protocol.FramePacket](c.capacity), ch: c}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		s.q.close()
		return s
	}
	c.subs[s] = struct{}{}
	return s
}

// Close stops the channel. Subscribers drain what they hold, then get ErrClosed.
func (c *FrameChannel) Close() {
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
func (c *FrameChannel) Stats() FrameStats {
	c.mu.RLock()
	n := len(c.subs)
	c.mu.RUnlock()
	return FrameStats{
		Published:   c.published.Load(),
		Dropped:     c.dropped.Load(),
		Subscribers: n,
	}
}

func (c *FrameChannel) remove(s *FrameSubscription) {
	c.mu.Lock()
	delete(c.subs, s)
	c.mu.Unlock()
}

// FrameSubscription is one consumer's cursor on a FrameChannel.
type FrameSubscription struct {
	q       *queue[protocol.FramePacket]
	ch      *FrameChannel
	dropped atomic.Uint64
}

// Next blocks until a frame is available.
func (s *FrameSubscription) Next(ctx context.Context) (protocol.FramePacket, error) {
	return s.q.pop(ctx)
}

// Buffered returns the number of frames waiting.
func (s *FrameSubscription) Buffered() int {
	return s.q.len()
}

// Dropped returns how many frames this subscriber lost to eviction.
func (s *FrameSubscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unregisters the subscription.
func (s *FrameSubscription) Close() {
	s.ch.remove(s)
	s.q.close()
}
