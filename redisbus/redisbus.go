// Package redisbus mirrors flushed sink lines onto a Redis pub/sub channel so
// observers in other processes can follow a sink without touching its files.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope is the JSON message published for every line
type Envelope struct {
	Source string `json:"source"` // publisher id, one per process unless configured
	Seq    uint64 `json:"seq"`    // per-publisher sequence, starts at 1
	Line   string `json:"line"`
}

// Config holds publisher settings
type Config struct {
	Channel string        // Redis channel name
	Source  string        // Envelope source; a random UUID when empty
	Timeout time.Duration // Upper bound for a single PUBLISH
}

// DefaultConfig returns default publisher settings
func DefaultConfig() Config {
	return Config{
		Channel: "daylog:lines",
		Timeout: 500 * time.Millisecond,
	}
}

// Observable is the part of a sink the publisher attaches to
type Observable interface {
	Observe(fn func(line string)) func()
}

// Publisher sends lines to a Redis channel
type Publisher struct {
	client redis.UniversalClient
	cfg    Config

	seq       atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
}

// NewPublisher creates a publisher; zero Config fields take their defaults
func NewPublisher(client redis.UniversalClient, cfg Config) *Publisher {
	def := DefaultConfig()
	if cfg.Channel == "" {
		cfg.Channel = def.Channel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Source == "" {
		cfg.Source = uuid.NewString()
	}
	return &Publisher{client: client, cfg: cfg}
}

// Source returns the id stamped on every envelope
func (p *Publisher) Source() string {
	return p.cfg.Source
}

// Publish sends one line
func (p *Publisher) Publish(ctx context.Context, line string) error {
	env := Envelope{
		Source: p.cfg.Source,
		Seq:    p.seq.Add(1),
		Line:   line,
	}

	data, err := json.Marshal(env)
	if err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := p.client.Publish(ctx, p.cfg.Channel, data).Err(); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to publish to %s: %w", p.cfg.Channel, err)
	}

	p.published.Add(1)
	return nil
}

// Attach publishes every line the sink flushes, on the sink's observer goroutine.
// Failures are counted and never reach the sink. The returned func detaches.
func (p *Publisher) Attach(sink Observable) func() {
	return sink.Observe(func(line string) {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
		defer cancel()
		_ = p.Publish(ctx, line)
	})
}

// Published returns the number of lines sent
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// Failed returns the number of lines that could not be sent
func (p *Publisher) Failed() uint64 {
	return p.failed.Load()
}

// Subscriber receives envelopes from a channel
type Subscriber struct {
	pubsub    *redis.PubSub
	malformed atomic.Uint64
}

// Subscribe joins channel and waits for Redis to confirm the subscription
func Subscribe(ctx context.Context, client redis.UniversalClient, channel string) (*Subscriber, error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return &Subscriber{pubsub: pubsub}, nil
}

// Run calls fn for every envelope until ctx is done or the subscription closes.
// Messages that are not envelopes are skipped and counted.
func (s *Subscriber) Run(ctx context.Context, fn func(Envelope)) error {
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				s.malformed.Add(1)
				continue
			}
			fn(env)
		}
	}
}

// Malformed returns the number of skipped messages
func (s *Subscriber) Malformed() uint64 {
	return s.malformed.Load()
}

// Close leaves the channel
func (s *Subscriber) Close() error {
	return s.pubsub.Close()
}

// Listen subscribes to channel and delivers envelopes to fn until ctx is done
func Listen(ctx context.Context, client redis.UniversalClient, channel string, fn func(Envelope)) error {
	sub, err := Subscribe(ctx, client, channel)
	if err != nil {
		return err
	}
	defer sub.Close()
	return sub.Run(ctx, fn)
}
