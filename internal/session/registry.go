package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shiftwyse/shiftwyse"
)

// Signaler delivers change signals for a partition. The returned close
// function stops delivery and closes the channel.
type Signaler interface {
	Subscribe(ctx context.Context, partition string) (<-chan shiftwyse.ChangeSignal, func())
}

// Key identifies one live subscription within a session.
type Key struct {
	Kind  string
	Owner string
}

// LoadFunc fetches the full current record set for a subscription and
// wraps it in the reducer event that replaces the corresponding slice.
type LoadFunc func(ctx context.Context) (Event, error)

type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry tracks the live subscriptions of a single session. Each key
// holds at most one listener, subscribing again for the same key closes
// the previous listener first.
type Registry struct {
	mu        sync.Mutex
	signaler  Signaler
	listeners map[Key]*listener
}

func NewRegistry(signaler Signaler) *Registry {
	return &Registry{
		signaler:  signaler,
		listeners: make(map[Key]*listener),
	}
}

// Subscribe starts a listener for key. The listener delivers the full
// record set once immediately, then again on every change signal for
// partition. A failed load is logged and skipped, the previous delivery
// stands.
func (r *Registry) Subscribe(ctx context.Context, key Key, partition string, load LoadFunc, onUpdate func(Event)) {
	r.mu.Lock()
	old, ok := r.listeners[key]
	if ok {
		delete(r.listeners, key)
	}
	r.mu.Unlock()
	if ok {
		old.cancel()
		<-old.done
	}

	lctx, cancel := context.WithCancel(ctx)
	l := &listener{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.listeners[key] = l
	r.mu.Unlock()

	go func() {
		defer close(l.done)

		signals, stop := r.signaler.Subscribe(lctx, partition)
		defer stop()

		deliver(lctx, key, load, onUpdate)

		for {
			select {
			case <-lctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				deliver(lctx, key, load, onUpdate)
			}
		}
	}()
}

func deliver(ctx context.Context, key Key, load LoadFunc, onUpdate func(Event)) {
	ev, err := load(ctx)
	if err != nil {
		slog.Warn("subscription load failed",
			slog.String("kind", key.Kind),
			slog.String("error", err.Error()),
			slog.String("module", "session"),
		)
		return
	}
	onUpdate(ev)
}

// Close stops the listener for key if one is active.
func (r *Registry) Close(key Key) {
	r.mu.Lock()
	l, ok := r.listeners[key]
	if ok {
		delete(r.listeners, key)
	}
	r.mu.Unlock()
	if ok {
		l.cancel()
		<-l.done
	}
}

// CloseAll stops every active listener. Called on session teardown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	listeners := r.listeners
	r.listeners = make(map[Key]*listener)
	r.mu.Unlock()

	for _, l := range listeners {
		l.cancel()
		<-l.done
	}
}

// Active reports whether a listener is registered for key.
func (r *Registry) Active(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.listeners[key]
	return ok
}
