package observability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/tradecoin/internal/logging"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Broadcaster fans committed events out to live subscribers.
// Slow subscribers lose events instead of blocking the ledger.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan domain.Event]struct{}
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Broadcaster{
		subscribers: make(map[chan domain.Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Event, DefaultBuffer)
	b.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber without blocking.
func (b *Broadcaster) Publish(e domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.logger.Warn("Event subscriber buffer full, dropping event", "seq", e.Seq, "event", e.Name)
		}
	}
}

// Subscribers reports the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Hooks returns the callback that publishes committed events.
func (b *Broadcaster) Hooks() domain.Hooks {
	return domain.Hooks{
		OnEvent: func(_ context.Context, e domain.Event) { b.Publish(e) },
	}
}
