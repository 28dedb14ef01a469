package store

import (
	"context"
	"sync"
	"time"
)

// Event announces that the snapshot was replaced, with the new collection
// sizes.
type Event struct {
	RefreshedAt   time.Time
	Leads         int
	Manufacturers int
	Orders        int
	Documents     int
}

type watcherHub struct {
	mu         sync.RWMutex
	watchers   map[int64]chan Event
	nextID     int64
	bufferSize int
}

func newWatcherHub() *watcherHub {
	return &watcherHub{
		watchers:   make(map[int64]chan Event),
		bufferSize: 16,
	}
}

func (h *watcherHub) subscribe(ctx context.Context) (<-chan Event, func()) {
	stream := make(chan Event, h.bufferSize)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.watchers[id] = stream
	h.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, id)
			h.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return stream, cleanup
}

// broadcast delivers the event to every watcher without blocking; slow
// watchers drop events rather than stalling refreshes.
func (h *watcherHub) broadcast(event Event) {
	h.mu.RLock()
	streams := make([]chan Event, 0, len(h.watchers))
	for _, stream := range h.watchers {
		streams = append(streams, stream)
	}
	h.mu.RUnlock()

	for _, stream := range streams {
		select {
		case stream <- event:
		default:
		}
	}
}
