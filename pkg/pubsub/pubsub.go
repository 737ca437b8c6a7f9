// Package pubsub fans recomputed reports out to in-process display
// consumers (the HTTP layer, the terminal UI and the network broadcaster).
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// TopicAll receives every message regardless of the topic it was sent on.
const TopicAll = "*"

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// ErrClosed is returned by Subscribe after Shutdown.
var ErrClosed = errors.New("pubsub: shut down")

// PubSub provides publish/subscribe of values of type T keyed by topic.
// Slow subscribers never block publishers: a message that does not fit in a
// subscription's buffer is dropped for that subscriber and counted.
type PubSub[T any] struct {
	subscribers map[string]map[*Subscription[T]]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	buffer      int
	dropped     atomic.Uint64
}

// Subscription represents a subscription to a topic
type Subscription[T any] struct {
	topic     string
	channel   chan T
	ps        *PubSub[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a PubSub whose subscriptions buffer up to buffer messages;
// buffer <= 0 selects DefaultBuffer.
func New[T any](buffer int) *PubSub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &PubSub[T]{
		subscribers: make(map[string]map[*Subscription[T]]bool),
		shutdown:    make(chan struct{}),
		buffer:      buffer,
	}
}

// Subscribe creates a new subscription to a topic. The subscription ends
// when ctx is cancelled, Unsubscribe is called or the PubSub shuts down;
// its channel is then closed.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrClosed
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription[T]]bool)
	}
	ps.subscribers[topic][sub] = true
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			// Shutdown closes every live subscription under the lock.
		}
	}()

	return sub, nil
}

// Publish sends a message to all subscribers of topic and of TopicAll.
// It returns the number of subscribers that received it.
func (ps *PubSub[T]) Publish(topic string, message T) int {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return 0
	}
	ps.shutdownMu.Unlock()

	// Snapshot under the read lock; sends happen outside it.
	ps.mu.RLock()
	subs := make([]*Subscription[T], 0, len(ps.subscribers[topic])+len(ps.subscribers[TopicAll]))
	for sub := range ps.subscribers[topic] {
		subs = append(subs, sub)
	}
	if topic != TopicAll {
		for sub := range ps.subscribers[TopicAll] {
			subs = append(subs, sub)
		}
	}
	ps.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.send(message) {
			delivered++
		} else {
			ps.dropped.Add(1)
		}
	}
	return delivered
}

// GetSubscriberCount returns the number of subscribers for a topic
func (ps *PubSub[T]) GetSubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (ps *PubSub[T]) Dropped() uint64 {
	return ps.dropped.Load()
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub[T]) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for topic := range ps.subscribers {
		for sub := range ps.subscribers[topic] {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
	ps.mu.Unlock()
}

// Topic returns the subscribed topic.
func (s *Subscription[T]) Topic() string {
	return s.topic
}

// Channel returns the subscription's message channel
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.topic] != nil {
		delete(s.ps.subscribers[s.topic], s)
		if len(s.ps.subscribers[s.topic]) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}

	s.close()
}

// send delivers without blocking. Sending races with close, so it holds
// the PubSub read lock, which close callers hold exclusively.
func (s *Subscription[T]) send(message T) (ok bool) {
	s.ps.mu.RLock()
	defer s.ps.mu.RUnlock()

	if !s.ps.subscribers[s.topic][s] {
		return false
	}
	select {
	case s.channel <- message:
		return true
	default:
		return false
	}
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
