// Package stream fans out live engagement events to dashboard subscribers.
package stream

import (
	"context"
	"sync"
	"time"
)

// VisitEvent is the wire shape pushed to SSE subscribers when a page visit
// is recorded. It carries ids and coarse context only, never token secrets.
type VisitEvent struct {
	ProductID    string    `json:"product_id"`
	OrgID        string    `json:"org_id"`
	AccessMethod string    `json:"access_method"`
	ChannelID    string    `json:"channel_id,omitempty"`
	ChannelName  string    `json:"channel_name,omitempty"`
	UniqueVisit  bool      `json:"unique_visit"`
	DeviceType   string    `json:"device_type,omitempty"`
	Country      string    `json:"country,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stream fan-outs visit events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan VisitEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan VisitEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan VisitEvent {
	ch := make(chan VisitEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt VisitEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
