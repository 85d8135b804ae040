package events

import (
	"sync"

	"github.com/enerscope/enerscope/internal/logger"
)

// Event names emitted by the sync engine.
const (
	DownloadUpdate  = "downloadUpdate"
	AppStatusUpdate = "appStatusUpdate"
	SettingsUpdated = "settingsUpdated"
)

// DownloadUpdatePayload reports progress of one named download.
type DownloadUpdatePayload struct {
	Percentage int    `json:"percentage"`
	Name       string `json:"name"`
}

// AppStatusUpdatePayload reports a change to the downloading flag.
type AppStatusUpdatePayload struct {
	IsDownloading bool `json:"isDownloading"`
}

// Sink receives events from the engine. Emit never blocks and never fails:
// delivery problems belong to the sink, not to sync progress.
type Sink interface {
	Emit(name string, payload any)
}

// Event is one emitted notification.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// Bus is an in-process fan-out Sink. Subscribers that fall behind lose
// events rather than stalling the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
	log  *logger.Logger
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
		log:  logger.Default().WithPrefix("events"),
	}
}

func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- Event{Name: name, Payload: payload}:
		default:
			b.log.Warn("subscriber %d is full, dropping %s event", id, name)
		}
	}
}

// Subscribe registers a buffered receiver. The returned cancel function must
// be called to release the subscription.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Discard is a Sink that drops everything, useful where no UI is attached.
type Discard struct{}

func (Discard) Emit(string, any) {}
