package session

import (
	"context"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/internal/usecase"
	"github.com/shiftwyse/shiftwyse/schemas"
)

// Services are the operations a session shell drives.
type Services struct {
	Chat      *usecase.ChatUsecase
	Snapshots *usecase.SnapshotUsecase
	Mentors   *usecase.MentorUsecase
	Analytics *usecase.AnalyticsUsecase
}

// Session is the server-side shell behind one realtime connection. It
// owns a reducer and the live subscriptions feeding it.
type Session struct {
	config   domain.Config
	identity shiftwyse.Identity
	locale   string
	reducer  *Reducer
	registry *Registry
	services Services
}

func New(config domain.Config, identity shiftwyse.Identity, locale string, signaler Signaler, services Services, onChange func(State)) *Session {
	return &Session{
		config:   config,
		identity: identity,
		locale:   locale,
		reducer:  NewReducer(onChange),
		registry: NewRegistry(signaler),
		services: services,
	}
}

// Start applies the resolved identity and opens the live subscriptions.
// Unauthenticated sessions stay local, no subscriptions are opened and
// state accumulates in the reducer only.
func (s *Session) Start(ctx context.Context) {
	s.reducer.Apply(IdentityResolved{Identity: s.identity})

	if !s.identity.Authenticated {
		return
	}

	for _, kind := range schemas.UserKinds {
		switch kind {
		case schemas.KindChats:
			s.subscribe(ctx, kind,
				shiftwyse.ComposeUserPartition(s.config.AppID, s.identity.ID, kind),
				func(ctx context.Context) (Event, error) {
					messages, err := s.services.Chat.List(ctx, s.identity)
					if err != nil {
						return nil, err
					}
					return MessagesUpdated{Messages: messages}, nil
				})
		case schemas.KindSnapshots:
			s.subscribe(ctx, kind,
				shiftwyse.ComposeUserPartition(s.config.AppID, s.identity.ID, kind),
				func(ctx context.Context) (Event, error) {
					snapshots, err := s.services.Snapshots.List(ctx, s.identity)
					if err != nil {
						return nil, err
					}
					return SnapshotsUpdated{Snapshots: snapshots}, nil
				})
		case schemas.KindMentors:
			s.subscribe(ctx, kind,
				shiftwyse.ComposePublicPartition(s.config.AppID, kind),
				func(ctx context.Context) (Event, error) {
					mentors, err := s.services.Mentors.List(ctx)
					if err != nil {
						return nil, err
					}
					return MentorsUpdated{Mentors: mentors}, nil
				})
		case schemas.KindAnalytics:
			// Only privileged identities may observe the analytics stream.
			if !s.identity.IsPrivileged {
				continue
			}
			s.subscribe(ctx, kind,
				shiftwyse.ComposePublicPartition(s.config.AppID, kind),
				func(ctx context.Context) (Event, error) {
					events, err := s.services.Analytics.List(ctx, s.identity)
					if err != nil {
						return nil, err
					}
					return AnalyticsUpdated{Events: events}, nil
				})
		}
	}
}

func (s *Session) subscribe(ctx context.Context, kind, partition string, load LoadFunc) {
	s.registry.Subscribe(ctx, Key{Kind: kind, Owner: s.identity.ID}, partition, load, s.reducer.Apply)
}

// SubmitMessage runs the optimistic send pipeline. The local echo is
// applied before the store write or inference call, a failed pipeline
// leaves the echo marked degraded rather than removing it.
func (s *Session) SubmitMessage(ctx context.Context, text string) error {
	user := usecase.NewUserMessage(s.identity.ID, text)
	s.reducer.Apply(UserSubmittedMessage{Message: user})

	persisted, assistant, err := s.services.Chat.SendPrepared(ctx, s.identity, user, s.locale)
	if err != nil {
		s.reducer.Apply(MessageFailed{ID: user.ID})
		return err
	}

	if persisted.Degraded {
		s.reducer.Apply(MessageFailed{ID: user.ID})
	} else {
		s.reducer.Apply(MessageConfirmed{ID: user.ID})
	}
	s.reducer.Apply(InferenceCompleted{Message: assistant})

	return nil
}

// SaveSnapshot persists one rating set. The history refresh arrives via
// the snapshot subscription.
func (s *Session) SaveSnapshot(ctx context.Context, ratings map[string]int) (shiftwyse.CompetencySnapshot, error) {
	return s.services.Snapshots.Save(ctx, s.identity, ratings)
}

// Identity returns the identity this session was started with.
func (s *Session) Identity() shiftwyse.Identity {
	return s.identity
}

// State returns a copy of the current reducer state.
func (s *Session) State() State {
	return s.reducer.State()
}

// Close tears down every live subscription.
func (s *Session) Close() {
	s.registry.CloseAll()
}
