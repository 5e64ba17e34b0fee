package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/schemas"
)

var tracer = otel.Tracer("usecase")

// AssistantOwnerID is the owner id recorded on assistant turns.
const AssistantOwnerID = "shiftwyse"

// MessageRepository defines storage operations for conversation turns.
type MessageRepository interface {
	Upsert(ctx context.Context, partition string, message shiftwyse.Message) error
	List(ctx context.Context, partition string) ([]shiftwyse.Message, error)
}

type ChatUsecase struct {
	config   domain.Config
	repo     MessageRepository
	inferrer Inferrer
	signal   SignalPublisher

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewChatUsecase(config domain.Config, repo MessageRepository, inferrer Inferrer, signal SignalPublisher) *ChatUsecase {
	return &ChatUsecase{
		config:   config,
		repo:     repo,
		inferrer: inferrer,
		signal:   signal,
		inflight: make(map[string]struct{}),
	}
}

// NewUserMessage builds the optimistic local entry for a user turn.
func NewUserMessage(ownerID, text string) shiftwyse.Message {
	return shiftwyse.Message{
		ID:        uuid.New().String(),
		Sender:    shiftwyse.SenderUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
		OwnerID:   ownerID,
	}
}

// Send validates and submits a user turn, then generates and persists
// the assistant reply. At most one turn per conversation may be in
// flight, concurrent sends fail with domain.ErrInFlight.
func (uc *ChatUsecase) Send(ctx context.Context, identity shiftwyse.Identity, text string, locale string) (shiftwyse.Message, shiftwyse.Message, error) {
	ctx, span := tracer.Start(ctx, "Chat.Usecase.Send")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return shiftwyse.Message{}, shiftwyse.Message{}, domain.ValidationError{Reason: "message text must not be empty"}
	}

	return uc.SendPrepared(ctx, identity, NewUserMessage(identity.ID, text), locale)
}

// SendPrepared runs the send pipeline for an already built user turn.
// Session shells use this so the persisted turn keeps the id of their
// optimistic local entry.
func (uc *ChatUsecase) SendPrepared(ctx context.Context, identity shiftwyse.Identity, user shiftwyse.Message, locale string) (shiftwyse.Message, shiftwyse.Message, error) {
	ctx, span := tracer.Start(ctx, "Chat.Usecase.SendPrepared")
	defer span.End()

	if strings.TrimSpace(user.Text) == "" {
		return shiftwyse.Message{}, shiftwyse.Message{}, domain.ValidationError{Reason: "message text must not be empty"}
	}

	if !uc.acquire(identity.ID) {
		return shiftwyse.Message{}, shiftwyse.Message{}, domain.ErrInFlight
	}
	defer uc.release(identity.ID)

	partition := shiftwyse.ComposeUserPartition(uc.config.AppID, identity.ID, schemas.KindChats)

	// The user turn is persisted before the inference call so a crash
	// mid-turn never loses the question.
	uc.persist(ctx, identity, partition, &user)

	assistant := shiftwyse.Message{
		ID:        uuid.New().String(),
		Sender:    shiftwyse.SenderAssistant,
		Text:      uc.inferrer.Reply(ctx, user.Text, locale),
		Timestamp: time.Now().UTC(),
		OwnerID:   AssistantOwnerID,
	}
	uc.persist(ctx, identity, partition, &assistant)

	return user, assistant, nil
}

// persist writes one turn. Unauthenticated sessions skip the write,
// failed writes mark the turn degraded. Neither aborts the pipeline.
func (uc *ChatUsecase) persist(ctx context.Context, identity shiftwyse.Identity, partition string, message *shiftwyse.Message) {
	if !identity.Authenticated {
		slog.Debug("skipping chat write for unauthenticated session",
			slog.String("module", "chat"),
		)
		return
	}

	err := uc.repo.Upsert(ctx, partition, *message)
	if err != nil {
		message.Degraded = true
		slog.Warn("failed to persist chat message",
			slog.String("error", err.Error()),
			slog.String("module", "chat"),
		)
		return
	}

	err = uc.signal.Publish(ctx, partition)
	if err != nil {
		slog.Warn("failed to publish chat signal",
			slog.String("error", err.Error()),
			slog.String("module", "chat"),
		)
	}
}

// List returns the conversation for an identity, ascending by timestamp.
func (uc *ChatUsecase) List(ctx context.Context, identity shiftwyse.Identity) ([]shiftwyse.Message, error) {
	ctx, span := tracer.Start(ctx, "Chat.Usecase.List")
	defer span.End()

	partition := shiftwyse.ComposeUserPartition(uc.config.AppID, identity.ID, schemas.KindChats)
	messages, err := uc.repo.List(ctx, partition)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to list messages"))
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages, nil
}

func (uc *ChatUsecase) acquire(id string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.inflight[id]; ok {
		return false
	}
	uc.inflight[id] = struct{}{}
	return true
}

func (uc *ChatUsecase) release(id string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inflight, id)
}
