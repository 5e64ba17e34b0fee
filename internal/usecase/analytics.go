package usecase

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/schemas"
)

// AnalyticsRepository defines storage operations for the append-only
// analytics stream. Append returns the store-assigned id.
type AnalyticsRepository interface {
	Append(ctx context.Context, partition string, event shiftwyse.AnalyticsEvent) (string, error)
	List(ctx context.Context, partition string) ([]shiftwyse.AnalyticsEvent, error)
}

// TrendPoint is one bar of the aggregated dashboard series.
type TrendPoint struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AnalyticsSummary is the dashboard aggregation. Demo is set when the
// stream is empty and the competency series is a canned placeholder.
type AnalyticsSummary struct {
	Competency []TrendPoint `json:"competency"`
	MicroWins  []TrendPoint `json:"microWins"`
	Demo       bool         `json:"demo"`
}

var sampleEvents = []shiftwyse.AnalyticsEvent{
	{Type: shiftwyse.AnalyticsCompetency, Data: map[string]string{"competency": "Strategic Vision"}},
	{Type: shiftwyse.AnalyticsCompetency, Data: map[string]string{"competency": "Team Leadership"}},
	{Type: shiftwyse.AnalyticsCompetency, Data: map[string]string{"competency": "Communication"}},
	{Type: shiftwyse.AnalyticsMicroWin, Data: map[string]string{"winType": "Positive Feedback"}},
	{Type: shiftwyse.AnalyticsMicroWin, Data: map[string]string{"winType": "Conflict Resolution"}},
}

var demoCompetencySeries = []TrendPoint{
	{Name: "Strategic Vision", Count: 10},
	{Name: "Communication", Count: 15},
	{Name: "Team Leadership", Count: 20},
	{Name: "Ethical Practice", Count: 12},
}

type AnalyticsUsecase struct {
	config domain.Config
	repo   AnalyticsRepository
	signal SignalPublisher
}

func NewAnalyticsUsecase(config domain.Config, repo AnalyticsRepository, signal SignalPublisher) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		config: config,
		repo:   repo,
		signal: signal,
	}
}

// Record appends one event to the public analytics stream. Only
// privileged identities may write or read analytics.
func (uc *AnalyticsUsecase) Record(ctx context.Context, identity shiftwyse.Identity, event shiftwyse.AnalyticsEvent) (shiftwyse.AnalyticsEvent, error) {
	ctx, span := tracer.Start(ctx, "Analytics.Usecase.Record")
	defer span.End()

	if !identity.IsPrivileged {
		return shiftwyse.AnalyticsEvent{}, domain.ErrForbidden
	}
	if event.Type != shiftwyse.AnalyticsCompetency && event.Type != shiftwyse.AnalyticsMicroWin {
		return shiftwyse.AnalyticsEvent{}, domain.ValidationError{Reason: "unknown analytics event type"}
	}

	if !identity.Authenticated {
		slog.Debug("skipping analytics write for unauthenticated session",
			slog.String("module", "analytics"),
		)
		return event, nil
	}

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindAnalytics)
	id, err := uc.repo.Append(ctx, partition, event)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to append analytics event"))
		return shiftwyse.AnalyticsEvent{}, err
	}
	event.ID = id

	err = uc.signal.Publish(ctx, partition)
	if err != nil {
		slog.Warn("failed to publish analytics signal",
			slog.String("error", err.Error()),
			slog.String("module", "analytics"),
		)
	}

	return event, nil
}

// GenerateSample records one randomly chosen sample event. Exposed to
// privileged identities so the dashboard can be exercised without real
// traffic.
func (uc *AnalyticsUsecase) GenerateSample(ctx context.Context, identity shiftwyse.Identity) (shiftwyse.AnalyticsEvent, error) {
	return uc.Record(ctx, identity, sampleEvents[rand.IntN(len(sampleEvents))])
}

// List returns the raw analytics stream in arrival order.
func (uc *AnalyticsUsecase) List(ctx context.Context, identity shiftwyse.Identity) ([]shiftwyse.AnalyticsEvent, error) {
	ctx, span := tracer.Start(ctx, "Analytics.Usecase.List")
	defer span.End()

	if !identity.IsPrivileged {
		return nil, domain.ErrForbidden
	}

	partition := shiftwyse.ComposePublicPartition(uc.config.AppID, schemas.KindAnalytics)
	events, err := uc.repo.List(ctx, partition)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to list analytics events"))
		return nil, err
	}

	return events, nil
}

// Aggregate groups the stream into dashboard series. An empty stream
// yields the canned demo competency series.
func (uc *AnalyticsUsecase) Aggregate(ctx context.Context, identity shiftwyse.Identity) (AnalyticsSummary, error) {
	ctx, span := tracer.Start(ctx, "Analytics.Usecase.Aggregate")
	defer span.End()

	events, err := uc.List(ctx, identity)
	if err != nil {
		return AnalyticsSummary{}, err
	}

	return Aggregate(events), nil
}

// Aggregate counts events by competency and win type, preserving first
// arrival order of each name.
func Aggregate(events []shiftwyse.AnalyticsEvent) AnalyticsSummary {
	competency := countBy(events, shiftwyse.AnalyticsCompetency, "competency")
	microWins := countBy(events, shiftwyse.AnalyticsMicroWin, "winType")

	if len(competency) == 0 {
		return AnalyticsSummary{
			Competency: append([]TrendPoint(nil), demoCompetencySeries...),
			MicroWins:  microWins,
			Demo:       true,
		}
	}

	return AnalyticsSummary{
		Competency: competency,
		MicroWins:  microWins,
	}
}

func countBy(events []shiftwyse.AnalyticsEvent, eventType shiftwyse.AnalyticsEventType, field string) []TrendPoint {
	counts := make(map[string]int)
	var order []string

	for _, event := range events {
		if event.Type != eventType {
			continue
		}
		name := event.Data[field]
		if name == "" {
			name = "N/A"
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	points := make([]TrendPoint, 0, len(order))
	for _, name := range order {
		points = append(points, TrendPoint{Name: name, Count: counts[name]})
	}
	return points
}
