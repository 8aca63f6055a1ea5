// Package events fans finished assessments out to live subscribers.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-quake-impact/internal/models"
)

// bufferSize bounds the assessments queued per subscriber.
const bufferSize = 100

type Broadcaster struct {
	subscribers map[uint64]chan *models.Assessment
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Assessment),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.Assessment) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Assessment, bufferSize)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast delivers a to every subscriber with room in its buffer.
func (b *Broadcaster) Broadcast(a *models.Assessment) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- a:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
