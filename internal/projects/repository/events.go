package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

const (
	eventChannelPrefix = "docforge:events:" // docforge:events:{document_id}
	subscriberBuffer   = 32
)

// Broker fans section state changes out to live viewers of a document.
// Delivery is best effort; slow subscribers drop events.
type Broker interface {
	Publish(ctx context.Context, ev domain.SectionEvent) error
	// Subscribe returns a channel of events for the document. The channel is
	// closed once ctx is done or the returned cancel func is called.
	Subscribe(ctx context.Context, documentID string) (<-chan domain.SectionEvent, func(), error)
}

// RedisBroker uses Redis pub/sub, so viewers connected to any api instance see
// every transition.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, ev domain.SectionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal section event: %w", err)
	}
	if err := b.client.Publish(ctx, eventChannel(ev.DocumentID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish section event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, documentID string) (<-chan domain.SectionEvent, func(), error) {
	ps := b.client.Subscribe(ctx, eventChannel(documentID))
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to section events: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan domain.SectionEvent, subscriberBuffer)
	msgs := ps.Channel()

	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.SectionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, cancel, nil
}

func eventChannel(documentID string) string {
	return eventChannelPrefix + documentID
}

// MemoryBroker is the in-process Broker.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.SectionEvent]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan domain.SectionEvent]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev domain.SectionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[ev.DocumentID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, documentID string) (<-chan domain.SectionEvent, func(), error) {
	ch := make(chan domain.SectionEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[documentID] == nil {
		b.subs[documentID] = make(map[chan domain.SectionEvent]struct{})
	}
	b.subs[documentID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[documentID], ch)
			if len(b.subs[documentID]) == 0 {
				delete(b.subs, documentID)
			}
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

	return ch, cancel, nil
}
