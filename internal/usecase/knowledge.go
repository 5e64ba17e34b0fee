package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/internal/infra/gateway"
	"github.com/shiftwyse/shiftwyse/schemas"
)

// InsightRepository defines storage operations for the public knowledge
// base.
type InsightRepository interface {
	Upsert(ctx context.Context, partition string, insight shiftwyse.Insight) error
	List(ctx context.Context, partition string) ([]shiftwyse.Insight, error)
}

type KnowledgeUsecase struct {
	config     domain.Config
	repo       InsightRepository
	summarizer Summarizer
	signal     SignalPublisher
}

func NewKnowledgeUsecase(config domain.Config, repo InsightRepository, summarizer Summarizer, signal SignalPublisher) *KnowledgeUsecase {
	return &KnowledgeUsecase{
		config:     config,
		repo:       repo,
		summarizer: summarizer,
		signal:     signal,
	}
}

// Ingest summarizes an upload and publishes the resulting insight to
// the shared knowledge base.
func (uc *KnowledgeUsecase) Ingest(ctx context.Context, identity shiftwyse.Identity, upload gateway.Upload) (shiftwyse.Insight, error) {
	ctx, span := tracer.Start(ctx, "Knowledge.Usecase.Ingest")
	defer span.End()

	if strings.TrimSpace(upload.Name) == "" {
		return shiftwyse.Insight{}, domain.ValidationError{Reason: "upload name is required"}
	}

	insight, err := uc.summarizer.Summarize(ctx, upload)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to summarize upload"))
		return shiftwyse.Insight{}, err
	}

	if !identity.Authenticated {
		slog.Debug("skipping insight write for unauthenticated session",
			slog.String("module", "knowledge"),
		)
		return insight, nil
	}

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindKnowledge)
	err = uc.repo.Upsert(ctx, partition, insight)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to persist insight"))
		return shiftwyse.Insight{}, err
	}

	err = uc.signal.Publish(ctx, partition)
	if err != nil {
		slog.Warn("failed to publish knowledge signal",
			slog.String("error", err.Error()),
			slog.String("module", "knowledge"),
		)
	}

	return insight, nil
}

// List returns the published knowledge base in arrival order.
func (uc *KnowledgeUsecase) List(ctx context.Context) ([]shiftwyse.Insight, error) {
	ctx, span := tracer.Start(ctx, "Knowledge.Usecase.List")
	defer span.End()

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindKnowledge)
	insights, err := uc.repo.List(ctx, partition)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to list insights"))
		return nil, err
	}

	return insights, nil
}
