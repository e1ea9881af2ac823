package daylog

import (
	"sync"
	"sync/atomic"
)

// Notifier fans flushed lines out to subscribers without ever blocking the publisher.
// A subscriber whose channel is full misses the line; the miss is counted.
type Notifier struct {
	mu            sync.RWMutex
	subs          map[chan string]struct{}
	closed        bool
	defaultBuffer int
	dropped       atomic.Uint64
}

// NewNotifier creates a notifier whose Subscribe(0) channels hold defaultBuffer lines
func NewNotifier(defaultBuffer int) *Notifier {
	if defaultBuffer <= 0 {
		defaultBuffer = int(defaultConfig.NotifyBuffer)
	}
	return &Notifier{
		subs:          make(map[chan string]struct{}),
		defaultBuffer: defaultBuffer,
	}
}

// Subscribe registers a buffered channel. The returned func unsubscribes and closes it.
// After Close the channel is returned already closed.
func (n *Notifier) Subscribe(buffer int) (<-chan string, func()) {
	n.mu.Lock()
	if buffer <= 0 {
		buffer = n.defaultBuffer
	}
	ch := make(chan string, buffer)
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			// Close may already have closed it
			if _, ok := n.subs[ch]; ok {
				delete(n.subs, ch)
				close(ch)
			}
		})
	}
	return ch, unsub
}

// Publish delivers line to every subscriber with room for it
func (n *Notifier) Publish(line string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs {
		select {
		case ch <- line:
		default:
			n.dropped.Add(1)
		}
	}
}

// Dropped returns the number of deliveries skipped because a subscriber was full
func (n *Notifier) Dropped() uint64 {
	return n.dropped.Load()
}

// Subscribers returns the current subscriber count
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// setDefaultBuffer applies a new notify_buffer to later subscriptions
func (n *Notifier) setDefaultBuffer(size int) {
	if size <= 0 {
		return
	}
	n.mu.Lock()
	n.defaultBuffer = size
	n.mu.Unlock()
}

// Close closes every subscriber channel. Later publishes are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
}
