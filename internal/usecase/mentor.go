package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/schemas"
)

// MentorRepository defines storage operations for the public mentor
// directory. Append returns the store-assigned id.
type MentorRepository interface {
	Append(ctx context.Context, partition string, profile shiftwyse.MentorProfile) (string, error)
	List(ctx context.Context, partition string) ([]shiftwyse.MentorProfile, error)
}

type MentorUsecase struct {
	config domain.Config
	repo   MentorRepository
	signal SignalPublisher
}

func NewMentorUsecase(config domain.Config, repo MentorRepository, signal SignalPublisher) *MentorUsecase {
	return &MentorUsecase{
		config: config,
		repo:   repo,
		signal: signal,
	}
}

// Submit appends one profile to the public directory. Every field is
// required.
func (uc *MentorUsecase) Submit(ctx context.Context, identity shiftwyse.Identity, profile shiftwyse.MentorProfile) (shiftwyse.MentorProfile, error) {
	ctx, span := tracer.Start(ctx, "Mentor.Usecase.Submit")
	defer span.End()

	profile.Name = strings.TrimSpace(profile.Name)
	profile.Expertise = strings.TrimSpace(profile.Expertise)
	profile.Bio = strings.TrimSpace(profile.Bio)
	profile.Contact = strings.TrimSpace(profile.Contact)

	for field, value := range map[string]string{
		"name":      profile.Name,
		"expertise": profile.Expertise,
		"bio":       profile.Bio,
		"contact":   profile.Contact,
	} {
		if value == "" {
			return shiftwyse.MentorProfile{}, domain.ValidationError{Reason: field + " is required"}
		}
	}

	profile.OwnerID = identity.ID
	profile.Timestamp = time.Now().UTC()

	if !identity.Authenticated {
		slog.Debug("skipping mentor write for unauthenticated session",
			slog.String("module", "mentor"),
		)
		return profile, nil
	}

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindMentors)
	id, err := uc.repo.Append(ctx, partition, profile)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to append mentor profile"))
		return shiftwyse.MentorProfile{}, err
	}
	profile.ID = id

	err = uc.signal.Publish(ctx, partition)
	if err != nil {
		slog.Warn("failed to publish mentor signal",
			slog.String("error", err.Error()),
			slog.String("module", "mentor"),
		)
	}

	return profile, nil
}

// List returns the public directory in arrival order.
func (uc *MentorUsecase) List(ctx context.Context) ([]shiftwyse.MentorProfile, error) {
	ctx, span := tracer.Start(ctx, "Mentor.Usecase.List")
	defer span.End()

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindMentors)
	profiles, err := uc.repo.List(ctx, partition)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to list mentor profiles"))
		return nil, err
	}

	return profiles, nil
}
