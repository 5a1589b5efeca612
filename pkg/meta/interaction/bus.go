package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/toyz/metamodel/pkg/meta/consent"
)

// Listener observes invocation events
type Listener interface {
	Handle(ctx context.Context, e *Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(ctx context.Context, e *Event)

func (f ListenerFunc) Handle(ctx context.Context, e *Event) { f(ctx, e) }

// Publisher is the hook the machine hands every event to
type Publisher interface {
	Publish(ctx context.Context, e *Event)
}

type subscription struct {
	id       int
	topic    string
	listener Listener
}

// Bus is an in-memory Publisher delivering events to listeners synchronously,
// in subscription order
type Bus struct {
	mu     sync.RWMutex
	next   int
	subs   []subscription
	logger *slog.Logger
}

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers l for every event and returns a function removing it
func (b *Bus) Subscribe(l Listener) func() {
	return b.SubscribeTopic("", l)
}

// SubscribeTopic registers l for events of members declaring topic
func (b *Bus) SubscribeTopic(topic string, l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, topic: topic, listener: l})
	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of listeners
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers e to every matching listener. A panicking listener vetoes
// the invocation when the phase allows it.
func (b *Bus) Publish(ctx context.Context, e *Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.topic != "" && s.topic != e.Topic {
			continue
		}
		b.deliver(ctx, s.listener, e)
	}
}

func (b *Bus) deliver(ctx context.Context, l Listener, e *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "listener panicked",
				"identifier", e.Identifier.String(),
				"phase", e.Phase.String(),
				"error", fmt.Sprint(r))
			_ = e.Veto(consent.FaultReason)
		}
	}()
	l.Handle(ctx, e)
}
