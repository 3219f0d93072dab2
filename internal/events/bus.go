package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oremus-labs/webhook-receiver/internal/logutil"
	"github.com/redis/go-redis/v9"
)

// TypeWebhookReceived is published after an event is stored.
const TypeWebhookReceived = "webhook.received"

// Event is a notification fanned out to subscribers.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Bus multiplexes events to local subscribers and, when configured, a Redis channel.
type Bus struct {
	client redis.UniversalClient
	logger *log.Logger
	ch     string

	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// Options configure the bus.
type Options struct {
	Client  redis.UniversalClient
	Logger  *log.Logger
	Channel string
}

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "webhook-events"

// NewBus creates a new event bus. A nil Client keeps the bus process-local.
func NewBus(opts Options) *Bus {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Bus{
		client:      opts.Client,
		logger:      opts.Logger,
		ch:          channel,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Channel returns the Redis channel name.
func (b *Bus) Channel() string {
	return b.ch
}

// Publish broadcasts an event to local subscribers and Redis.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	if b.client != nil {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if err := b.client.Publish(ctx, b.ch, payload).Err(); err != nil {
			return fmt.Errorf("redis publish: %w", err)
		}
	}

	b.broadcast(evt)
	return nil
}

// Subscribe registers a subscriber and returns a channel plus a cancel func.
// The subscription also ends when ctx is done.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel
}

func (b *Bus) broadcast(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			logutil.Warn("event_dropped", logutil.Fields{
				"eventId": evt.ID,
				"type":    evt.Type,
				"reason":  "subscriber backlog",
			})
		}
	}
}

// Listen relays messages from the Redis channel to local subscribers until
// ctx is done. It is meant for observers; a process that both publishes and
// listens sees its own events twice.
func (b *Bus) Listen(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("events: redis client not configured")
	}
	pubsub := b.client.Subscribe(ctx, b.ch)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Printf("events: redis subscriber error: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}

		evt, err := DecodeEvent([]byte(msg.Payload))
		if err != nil {
			b.logger.Printf("events: invalid payload: %v", err)
			continue
		}
		b.broadcast(evt)
	}
}

// DecodeEvent parses a published event, keeping numbers as json.Number.
func DecodeEvent(data []byte) (Event, error) {
	var evt Event
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
