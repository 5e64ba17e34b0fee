package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
)

type mockMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]shiftwyse.Message
	failing  bool
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[string][]shiftwyse.Message)}
}

func (m *mockMessageRepo) Upsert(ctx context.Context, partition string, message shiftwyse.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return fmt.Errorf("store unavailable")
	}
	m.messages[partition] = append(m.messages[partition], message)
	return nil
}

func (m *mockMessageRepo) List(ctx context.Context, partition string) ([]shiftwyse.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shiftwyse.Message(nil), m.messages[partition]...), nil
}

func (m *mockMessageRepo) count(partition string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[partition])
}

type mockInferrer struct {
	reply   string
	gate    chan struct{}
	entered chan struct{}
}

func (m *mockInferrer) Reply(ctx context.Context, userText string, locale string) string {
	if m.entered != nil {
		close(m.entered)
		m.entered = nil
	}
	if m.gate != nil {
		<-m.gate
	}
	return m.reply
}

type mockSignal struct {
	mu         sync.Mutex
	partitions []string
}

func (m *mockSignal) Publish(ctx context.Context, partition string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partitions = append(m.partitions, partition)
	return nil
}

func (m *mockSignal) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partitions)
}

func testConfig() domain.Config {
	return domain.Config{AppID: "test-app", PrivilegedPrefix: "manager_"}
}

func authedIdentity() shiftwyse.Identity {
	return shiftwyse.Identity{ID: "user-1", Authenticated: true}
}

func TestChatSendPersistsBothTurns(t *testing.T) {
	repo := newMockMessageRepo()
	signal := &mockSignal{}
	uc := NewChatUsecase(testConfig(), repo, &mockInferrer{reply: "Try shadowing a colleague."}, signal)

	user, assistant, err := uc.Send(context.Background(), authedIdentity(), "  How do I grow?  ", "en")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if user.Text != "How do I grow?" {
		t.Fatalf("user text not trimmed: %q", user.Text)
	}
	if user.Sender != shiftwyse.SenderUser || assistant.Sender != shiftwyse.SenderAssistant {
		t.Fatalf("unexpected senders: %s, %s", user.Sender, assistant.Sender)
	}
	if assistant.OwnerID != AssistantOwnerID {
		t.Fatalf("unexpected assistant owner: %s", assistant.OwnerID)
	}
	if assistant.Timestamp.Before(user.Timestamp) {
		t.Fatalf("assistant timestamp precedes user timestamp")
	}

	partition := shiftwyse.ComposeUserPartition("test-app", "user-1", "chats")
	if repo.count(partition) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", repo.count(partition))
	}
	if signal.count() != 2 {
		t.Fatalf("expected 2 signals, got %d", signal.count())
	}
}

func TestChatSendRejectsEmptyText(t *testing.T) {
	uc := NewChatUsecase(testConfig(), newMockMessageRepo(), &mockInferrer{reply: "x"}, &mockSignal{})

	_, _, err := uc.Send(context.Background(), authedIdentity(), "   ", "en")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChatSendFenceRejectsConcurrentTurn(t *testing.T) {
	inferrer := &mockInferrer{
		reply:   "slow reply",
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	uc := NewChatUsecase(testConfig(), newMockMessageRepo(), inferrer, &mockSignal{})

	done := make(chan error, 1)
	go func() {
		_, _, err := uc.Send(context.Background(), authedIdentity(), "first", "en")
		done <- err
	}()

	<-inferrer.entered
	_, _, err := uc.Send(context.Background(), authedIdentity(), "second", "en")
	if !errors.Is(err, domain.ErrInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}

	close(inferrer.gate)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// The fence releases once the first turn completes.
	_, _, err = uc.Send(context.Background(), authedIdentity(), "third", "en")
	if err != nil {
		t.Fatalf("send after release failed: %v", err)
	}
}

func TestChatSendUnauthenticatedSkipsWrites(t *testing.T) {
	repo := newMockMessageRepo()
	signal := &mockSignal{}
	uc := NewChatUsecase(testConfig(), repo, &mockInferrer{reply: "still replying"}, signal)

	identity := shiftwyse.Identity{ID: "local-1", Authenticated: false}
	_, assistant, err := uc.Send(context.Background(), identity, "hello", "en")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if assistant.Text != "still replying" {
		t.Fatalf("inference skipped: %q", assistant.Text)
	}

	partition := shiftwyse.ComposeUserPartition("test-app", "local-1", "chats")
	if repo.count(partition) != 0 {
		t.Fatalf("unauthenticated session wrote %d turns", repo.count(partition))
	}
	if signal.count() != 0 {
		t.Fatalf("unauthenticated session published signals")
	}
}

func TestChatSendStoreFailureDegradesTurn(t *testing.T) {
	repo := newMockMessageRepo()
	repo.failing = true
	uc := NewChatUsecase(testConfig(), repo, &mockInferrer{reply: "x"}, &mockSignal{})

	user, assistant, err := uc.Send(context.Background(), authedIdentity(), "hello", "en")
	if err != nil {
		t.Fatalf("send failed hard on store error: %v", err)
	}
	if !user.Degraded || !assistant.Degraded {
		t.Fatalf("turns not degraded: user=%v assistant=%v", user.Degraded, assistant.Degraded)
	}
}

func TestChatListSortsAscending(t *testing.T) {
	repo := newMockMessageRepo()
	uc := NewChatUsecase(testConfig(), repo, &mockInferrer{reply: "x"}, &mockSignal{})

	partition := shiftwyse.ComposeUserPartition("test-app", "user-1", "chats")
	base := time.Now().UTC()
	repo.messages[partition] = []shiftwyse.Message{
		{ID: "m2", Timestamp: base.Add(time.Minute)},
		{ID: "m1", Timestamp: base},
	}

	messages, err := uc.List(context.Background(), authedIdentity())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if messages[0].ID != "m1" || messages[1].ID != "m2" {
		t.Fatalf("messages not ascending: %+v", messages)
	}
}
