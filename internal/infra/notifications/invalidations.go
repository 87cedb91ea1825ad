package notifications

import (
	"context"
	"sync"

	"serverview/internal/domain"
)

const defaultInvalidationBuffer = 8

// DropCounter is notified when a slow subscriber misses an invalidation.
type DropCounter interface {
	ObserveInvalidationDropped()
}

// InvalidationHub fans change notifications out to tree consumers. Delivery
// is fire-and-forget: a failing or slow consumer never blocks subsequent
// notifications, it just misses events and re-derives on the next one.
type InvalidationHub struct {
	drops DropCounter

	mu   sync.RWMutex
	subs map[chan domain.Invalidation]struct{}
}

func NewInvalidationHub(drops DropCounter) *InvalidationHub {
	return &InvalidationHub{
		drops: drops,
		subs:  make(map[chan domain.Invalidation]struct{}),
	}
}

func (h *InvalidationHub) EmitInvalidation(event domain.Invalidation) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			if h.drops != nil {
				h.drops.ObserveInvalidationDropped()
			}
		}
	}
}

// Subscribe returns a channel of invalidations. The subscription is removed
// and the channel closed when ctx is canceled.
func (h *InvalidationHub) Subscribe(ctx context.Context) <-chan domain.Invalidation {
	ch := make(chan domain.Invalidation, defaultInvalidationBuffer)
	if h == nil {
		close(ch)
		return ch
	}

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

var _ domain.InvalidationEmitter = (*InvalidationHub)(nil)
