package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Broker carries change events between the services that mutate data and the
// hubs that push them to connected clients.
type Broker interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
	// Subscribe returns a channel that receives every published event until ctx ends
	Subscribe(ctx context.Context) <-chan domain.ChangeEvent
}

const subscriberBuffer = 64

// LocalBroker fans events out inside one process
type LocalBroker struct {
	mu   sync.RWMutex
	subs map[chan domain.ChangeEvent]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[chan domain.ChangeEvent]struct{})}
}

// Publish never blocks; a subscriber that is not keeping up loses the event
func (b *LocalBroker) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			logger.Warn("Dropping change event for slow subscriber", "collection", ev.Collection, "id", ev.ID)
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context) <-chan domain.ChangeEvent {
	ch := make(chan domain.ChangeEvent, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch
}

// RedisBroker shares events between API instances through Redis pub/sub
type RedisBroker struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroker(rdb *redis.Client, channel string) *RedisBroker {
	return &RedisBroker{rdb: rdb, channel: channel}
}

func (b *RedisBroker) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		logger.ExternalServiceResult("redis", "PUBLISH", err, "channel", b.channel)
		return err
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) <-chan domain.ChangeEvent {
	out := make(chan domain.ChangeEvent, subscriberBuffer)
	pubsub := b.rdb.Subscribe(ctx, b.channel)

	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Warn("Discarding malformed change event", "error", err)
					continue
				}
				select {
				case out <- ev:
				default:
					logger.Warn("Dropping change event for slow subscriber", "collection", ev.Collection, "id", ev.ID)
				}
			}
		}
	}()
	return out
}
