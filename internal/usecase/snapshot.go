package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/schemas"
)

// SnapshotRepository defines storage operations for competency snapshots.
type SnapshotRepository interface {
	Upsert(ctx context.Context, partition string, snapshot shiftwyse.CompetencySnapshot) error
	List(ctx context.Context, partition string) ([]shiftwyse.CompetencySnapshot, error)
}

type SnapshotUsecase struct {
	config domain.Config
	repo   SnapshotRepository
	signal SignalPublisher
}

func NewSnapshotUsecase(config domain.Config, repo SnapshotRepository, signal SignalPublisher) *SnapshotUsecase {
	return &SnapshotUsecase{
		config: config,
		repo:   repo,
		signal: signal,
	}
}

// Save appends one snapshot to the identity's history. Ratings must use
// known competency keys and stay within the rating scale.
func (uc *SnapshotUsecase) Save(ctx context.Context, identity shiftwyse.Identity, ratings map[string]int) (shiftwyse.CompetencySnapshot, error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Usecase.Save")
	defer span.End()

	err := validateRatings(ratings)
	if err != nil {
		return shiftwyse.CompetencySnapshot{}, err
	}

	snapshot := shiftwyse.CompetencySnapshot{
		ID:        uuid.New().String(),
		OwnerID:   identity.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Ratings:   ratings,
	}

	if !identity.Authenticated {
		slog.Debug("skipping snapshot write for unauthenticated session",
			slog.String("module", "snapshot"),
		)
		return snapshot, nil
	}

	partition := shiftwyse.ComposeUserPartition(uc.config.AppID, identity.ID, schemas.KindSnapshots)
	err = uc.repo.Upsert(ctx, partition, snapshot)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to persist snapshot"))
		return shiftwyse.CompetencySnapshot{}, err
	}

	err = uc.signal.Publish(ctx, partition)
	if err != nil {
		slog.Warn("failed to publish snapshot signal",
			slog.String("error", err.Error()),
			slog.String("module", "snapshot"),
		)
	}

	return snapshot, nil
}

// List returns the snapshot history, ascending by timestamp.
func (uc *SnapshotUsecase) List(ctx context.Context, identity shiftwyse.Identity) ([]shiftwyse.CompetencySnapshot, error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Usecase.List")
	defer span.End()

	partition := shiftwyse.ComposeUserPartition(uc.config.AppID, identity.ID, schemas.KindSnapshots)
	snapshots, err := uc.repo.List(ctx, partition)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to list snapshots"))
		return nil, err
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp < snapshots[j].Timestamp
	})

	return snapshots, nil
}

// Latest returns the most recent snapshot, or domain.ErrNotFound when
// the history is empty.
func (uc *SnapshotUsecase) Latest(ctx context.Context, identity shiftwyse.Identity) (shiftwyse.CompetencySnapshot, error) {
	snapshots, err := uc.List(ctx, identity)
	if err != nil {
		return shiftwyse.CompetencySnapshot{}, err
	}
	if len(snapshots) == 0 {
		return shiftwyse.CompetencySnapshot{}, domain.ErrNotFound
	}
	return snapshots[len(snapshots)-1], nil
}

func validateRatings(ratings map[string]int) error {
	if len(ratings) == 0 {
		return domain.ValidationError{Reason: "at least one rating is required"}
	}

	known := make(map[string]bool, len(schemas.CompetencyKeys))
	for _, key := range schemas.CompetencyKeys {
		known[key] = true
	}

	for key, value := range ratings {
		if !known[key] {
			return domain.ValidationError{Reason: fmt.Sprintf("unknown competency: %s", key)}
		}
		if value < schemas.RatingMin || value > schemas.RatingMax {
			return domain.ValidationError{
				Reason: fmt.Sprintf("rating for %s out of range: %d", key, value),
			}
		}
	}

	return nil
}
