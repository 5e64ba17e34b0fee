package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shiftwyse/shiftwyse"
)

type fakeSignaler struct {
	mu   sync.Mutex
	subs map[string][]chan shiftwyse.ChangeSignal
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{subs: make(map[string][]chan shiftwyse.ChangeSignal)}
}

func (f *fakeSignaler) Subscribe(ctx context.Context, partition string) (<-chan shiftwyse.ChangeSignal, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan shiftwyse.ChangeSignal, 8)
	f.subs[partition] = append(f.subs[partition], ch)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, c := range f.subs[partition] {
				if c == ch {
					f.subs[partition] = append(f.subs[partition][:i], f.subs[partition][i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

func (f *fakeSignaler) waitRegistered(t *testing.T, partition string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		n := len(f.subs[partition])
		f.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no subscriber registered for %s", partition)
}

func (f *fakeSignaler) Emit(partition string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[partition] {
		ch <- shiftwyse.ChangeSignal{Partition: partition}
	}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
		return nil
	}
}

func TestRegistryInitialDelivery(t *testing.T) {
	signaler := newFakeSignaler()
	registry := NewRegistry(signaler)
	defer registry.CloseAll()

	deliveries := make(chan Event, 8)
	registry.Subscribe(context.Background(), Key{Kind: "chats", Owner: "user-1"}, "artifacts/app/users/user-1/chats",
		func(ctx context.Context) (Event, error) {
			return MessagesUpdated{}, nil
		},
		func(ev Event) { deliveries <- ev },
	)

	if _, ok := waitEvent(t, deliveries).(MessagesUpdated); !ok {
		t.Fatalf("initial delivery missing or wrong type")
	}
}

func TestRegistryRedeliversOnSignal(t *testing.T) {
	signaler := newFakeSignaler()
	registry := NewRegistry(signaler)
	defer registry.CloseAll()

	partition := "artifacts/app/users/user-1/chats"
	deliveries := make(chan Event, 8)

	var mu sync.Mutex
	loads := 0
	registry.Subscribe(context.Background(), Key{Kind: "chats", Owner: "user-1"}, partition,
		func(ctx context.Context) (Event, error) {
			mu.Lock()
			loads++
			mu.Unlock()
			return MessagesUpdated{}, nil
		},
		func(ev Event) { deliveries <- ev },
	)

	waitEvent(t, deliveries)
	signaler.Emit(partition)
	waitEvent(t, deliveries)

	mu.Lock()
	defer mu.Unlock()
	if loads != 2 {
		t.Fatalf("expected 2 loads, got %d", loads)
	}
}

func TestRegistryFailedLoadSkipsDelivery(t *testing.T) {
	signaler := newFakeSignaler()
	registry := NewRegistry(signaler)
	defer registry.CloseAll()

	partition := "artifacts/app/users/user-1/chats"
	deliveries := make(chan Event, 8)

	var mu sync.Mutex
	calls := 0
	registry.Subscribe(context.Background(), Key{Kind: "chats", Owner: "user-1"}, partition,
		func(ctx context.Context) (Event, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("store unavailable")
			}
			return MessagesUpdated{}, nil
		},
		func(ev Event) { deliveries <- ev },
	)

	// First load fails so the only delivery comes from the signal.
	signaler.waitRegistered(t, partition)
	signaler.Emit(partition)
	waitEvent(t, deliveries)

	select {
	case <-deliveries:
		t.Fatalf("failed load produced a delivery")
	default:
	}
}

func TestRegistrySingleListenerPerKey(t *testing.T) {
	signaler := newFakeSignaler()
	registry := NewRegistry(signaler)
	defer registry.CloseAll()

	partition := "artifacts/app/users/user-1/chats"
	key := Key{Kind: "chats", Owner: "user-1"}

	first := make(chan Event, 8)
	registry.Subscribe(context.Background(), key, partition,
		func(ctx context.Context) (Event, error) { return MessagesUpdated{}, nil },
		func(ev Event) { first <- ev },
	)
	waitEvent(t, first)

	second := make(chan Event, 8)
	registry.Subscribe(context.Background(), key, partition,
		func(ctx context.Context) (Event, error) { return MessagesUpdated{}, nil },
		func(ev Event) { second <- ev },
	)
	waitEvent(t, second)

	signaler.Emit(partition)
	waitEvent(t, second)

	select {
	case <-first:
		t.Fatalf("replaced listener still delivering")
	default:
	}
}

func TestRegistryCloseAll(t *testing.T) {
	signaler := newFakeSignaler()
	registry := NewRegistry(signaler)

	partition := "artifacts/app/users/user-1/chats"
	key := Key{Kind: "chats", Owner: "user-1"}
	deliveries := make(chan Event, 8)

	registry.Subscribe(context.Background(), key, partition,
		func(ctx context.Context) (Event, error) { return MessagesUpdated{}, nil },
		func(ev Event) { deliveries <- ev },
	)
	waitEvent(t, deliveries)

	registry.CloseAll()
	if registry.Active(key) {
		t.Fatalf("listener still active after CloseAll")
	}

	signaler.Emit(partition)
	select {
	case <-deliveries:
		t.Fatalf("closed listener still delivering")
	case <-time.After(100 * time.Millisecond):
	}
}
