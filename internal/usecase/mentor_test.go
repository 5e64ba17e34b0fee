package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/schemas"
)

type mockMentorRepo struct {
	mu       sync.Mutex
	profiles map[string][]shiftwyse.MentorProfile
}

func newMockMentorRepo() *mockMentorRepo {
	return &mockMentorRepo{profiles: make(map[string][]shiftwyse.MentorProfile)}
}

func (m *mockMentorRepo) Append(ctx context.Context, partition string, profile shiftwyse.MentorProfile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.ID = uuid.New().String()
	m.profiles[partition] = append(m.profiles[partition], profile)
	return profile.ID, nil
}

func (m *mockMentorRepo) List(ctx context.Context, partition string) ([]shiftwyse.MentorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shiftwyse.MentorProfile(nil), m.profiles[partition]...), nil
}

func validProfile() shiftwyse.MentorProfile {
	return shiftwyse.MentorProfile{
		Name:      "Thandi M.",
		Expertise: "Shift scheduling",
		Bio:       "Ten years running retail floors.",
		Contact:   "thandi@example.com",
	}
}

func TestMentorSubmitAppendsExactlyOne(t *testing.T) {
	repo := newMockMentorRepo()
	signal := &mockSignal{}
	uc := NewMentorUsecase(testConfig(), repo, signal)

	profile, err := uc.Submit(context.Background(), authedIdentity(), validProfile())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if profile.ID == "" {
		t.Fatalf("store-assigned id missing")
	}
	if profile.OwnerID != "user-1" {
		t.Fatalf("owner not stamped: %s", profile.OwnerID)
	}

	partition := shiftwyse.ComposePublicPartition("test-app", schemas.KindMentors)
	if len(repo.profiles[partition]) != 1 {
		t.Fatalf("expected exactly 1 record, got %d", len(repo.profiles[partition]))
	}
	if signal.count() != 1 {
		t.Fatalf("expected 1 signal, got %d", signal.count())
	}
}

func TestMentorSubmitRequiresEveryField(t *testing.T) {
	uc := NewMentorUsecase(testConfig(), newMockMentorRepo(), &mockSignal{})

	for _, mutate := range []func(*shiftwyse.MentorProfile){
		func(p *shiftwyse.MentorProfile) { p.Name = " " },
		func(p *shiftwyse.MentorProfile) { p.Expertise = "" },
		func(p *shiftwyse.MentorProfile) { p.Bio = "" },
		func(p *shiftwyse.MentorProfile) { p.Contact = "" },
	} {
		profile := validProfile()
		mutate(&profile)
		_, err := uc.Submit(context.Background(), authedIdentity(), profile)
		if !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("expected validation error for %+v, got %v", profile, err)
		}
	}
}

func TestMentorSubmitUnauthenticatedSkipsWrite(t *testing.T) {
	repo := newMockMentorRepo()
	uc := NewMentorUsecase(testConfig(), repo, &mockSignal{})

	identity := shiftwyse.Identity{ID: "local-1", Authenticated: false}
	_, err := uc.Submit(context.Background(), identity, validProfile())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(repo.profiles) != 0 {
		t.Fatalf("unauthenticated session wrote a profile")
	}
}

func TestMentorListArrivalOrder(t *testing.T) {
	repo := newMockMentorRepo()
	uc := NewMentorUsecase(testConfig(), repo, &mockSignal{})

	first := validProfile()
	second := validProfile()
	second.Name = "Sipho K."

	if _, err := uc.Submit(context.Background(), authedIdentity(), first); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := uc.Submit(context.Background(), authedIdentity(), second); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	profiles, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "Thandi M." || profiles[1].Name != "Sipho K." {
		t.Fatalf("unexpected order: %+v", profiles)
	}
}
