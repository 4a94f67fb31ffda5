package app

import (
	"sync"

	"quiz-economy-service/internal/domain"
)

const feedBuffer = 8

// ShopFeed fans committed shop events out to in-process subscribers.
type ShopFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.ShopEvent]struct{}
}

func NewShopFeed() *ShopFeed {
	return &ShopFeed{subscribers: make(map[chan domain.ShopEvent]struct{})}
}

// Subscribe returns a channel of shop events.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ShopFeed) Subscribe() (<-chan domain.ShopEvent, func()) {
	ch := make(chan domain.ShopEvent, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks: a full subscriber loses its oldest pending event.
func (f *ShopFeed) Publish(ev domain.ShopEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribers reports how many subscribers are attached.
func (f *ShopFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
