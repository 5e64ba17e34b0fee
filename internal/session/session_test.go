package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/internal/usecase"
)

type memMessageRepo struct {
	mu       sync.Mutex
	failing  bool
	messages map[string][]shiftwyse.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string][]shiftwyse.Message)}
}

func (m *memMessageRepo) Upsert(ctx context.Context, partition string, message shiftwyse.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return fmt.Errorf("store unavailable")
	}
	m.messages[partition] = append(m.messages[partition], message)
	return nil
}

func (m *memMessageRepo) List(ctx context.Context, partition string) ([]shiftwyse.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shiftwyse.Message(nil), m.messages[partition]...), nil
}

type memSnapshotRepo struct{}

func (m *memSnapshotRepo) Upsert(ctx context.Context, partition string, snapshot shiftwyse.CompetencySnapshot) error {
	return nil
}
func (m *memSnapshotRepo) List(ctx context.Context, partition string) ([]shiftwyse.CompetencySnapshot, error) {
	return nil, nil
}

type memMentorRepo struct{}

func (m *memMentorRepo) Append(ctx context.Context, partition string, profile shiftwyse.MentorProfile) (string, error) {
	return "mentor-1", nil
}
func (m *memMentorRepo) List(ctx context.Context, partition string) ([]shiftwyse.MentorProfile, error) {
	return nil, nil
}

type memAnalyticsRepo struct{}

func (m *memAnalyticsRepo) Append(ctx context.Context, partition string, event shiftwyse.AnalyticsEvent) (string, error) {
	return "event-1", nil
}
func (m *memAnalyticsRepo) List(ctx context.Context, partition string) ([]shiftwyse.AnalyticsEvent, error) {
	return nil, nil
}

type staticInferrer struct{}

func (staticInferrer) Reply(ctx context.Context, userText string, locale string) string {
	return "assistant reply"
}

type signalerPublisher struct {
	*fakeSignaler
}

func (s signalerPublisher) Publish(ctx context.Context, partition string) error {
	s.Emit(partition)
	return nil
}

func newTestSession(repo *memMessageRepo, states chan State) *Session {
	config := domain.Config{AppID: "test-app"}
	signaler := signalerPublisher{newFakeSignaler()}

	services := Services{
		Chat:      usecase.NewChatUsecase(config, repo, staticInferrer{}, signaler),
		Snapshots: usecase.NewSnapshotUsecase(config, &memSnapshotRepo{}, signaler),
		Mentors:   usecase.NewMentorUsecase(config, &memMentorRepo{}, signaler),
		Analytics: usecase.NewAnalyticsUsecase(config, &memAnalyticsRepo{}, signaler),
	}

	identity := shiftwyse.Identity{ID: "user-1", Authenticated: true}
	return New(config, identity, "en", signaler, services, func(state State) {
		select {
		case states <- state:
		default:
		}
	})
}

// drainStates waits for n state notifications. Start produces one for
// the identity and one per initial subscription delivery.
func drainStates(t *testing.T, states chan State, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-states:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for state %d of %d", i+1, n)
		}
	}
}

func TestSessionSubmitMessage(t *testing.T) {
	repo := newMemMessageRepo()
	states := make(chan State, 64)

	sess := newTestSession(repo, states)
	defer sess.Close()
	sess.Start(context.Background())
	drainStates(t, states, 4)

	err := sess.SubmitMessage(context.Background(), "How do I delegate?")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Subscription reloads land asynchronously, so settle on the final
	// state instead of asserting an intermediate one.
	var state State
	deadline := time.Now().Add(2 * time.Second)
	for {
		state = sess.State()
		if len(state.Messages) == 2 &&
			state.Messages[0].Sender == shiftwyse.SenderUser && !state.Messages[0].Pending &&
			state.Messages[1].Sender == shiftwyse.SenderAssistant {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never settled: %+v", state.Messages)
		}
		time.Sleep(10 * time.Millisecond)
	}

	partition := shiftwyse.ComposeUserPartition("test-app", "user-1", "chats")
	if len(repo.messages[partition]) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(repo.messages[partition]))
	}
}

func TestSessionSubmitMessageStoreFailure(t *testing.T) {
	repo := newMemMessageRepo()
	repo.failing = true
	states := make(chan State, 64)

	sess := newTestSession(repo, states)
	defer sess.Close()
	sess.Start(context.Background())
	drainStates(t, states, 4)

	err := sess.SubmitMessage(context.Background(), "hello")
	if err != nil {
		t.Fatalf("submit failed hard: %v", err)
	}

	state := sess.State()
	if len(state.Messages) != 2 {
		t.Fatalf("expected echo and reply, got %d", len(state.Messages))
	}
	if !state.Messages[0].Degraded {
		t.Fatalf("echo not marked degraded after store failure")
	}
}

func TestSessionUnauthenticatedStaysLocal(t *testing.T) {
	repo := newMemMessageRepo()
	config := domain.Config{AppID: "test-app"}
	signaler := signalerPublisher{newFakeSignaler()}

	services := Services{
		Chat: usecase.NewChatUsecase(config, repo, staticInferrer{}, signaler),
	}

	identity := shiftwyse.Identity{ID: "local-1", Authenticated: false}
	sess := New(config, identity, "en", signaler, services, nil)
	defer sess.Close()
	sess.Start(context.Background())

	err := sess.SubmitMessage(context.Background(), "hello")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// No subscriptions open in local mode, so the echo and reply live
	// only in the reducer.
	state := sess.State()
	if len(state.Messages) != 2 {
		t.Fatalf("expected local echo and reply, got %d", len(state.Messages))
	}
	if len(repo.messages) != 0 {
		t.Fatalf("local session wrote to the store")
	}

	time.Sleep(100 * time.Millisecond)
	if len(sess.State().Messages) != 2 {
		t.Fatalf("local state was overwritten")
	}
}
