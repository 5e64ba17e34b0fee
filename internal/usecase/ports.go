package usecase

import (
	"context"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/gateway"
)

// Inferrer produces an assistant reply for a user message. It never
// fails, degraded backends surface as a fallback reply text.
type Inferrer interface {
	Reply(ctx context.Context, userText string, locale string) string
}

// Summarizer turns an uploaded document into a structured insight.
type Summarizer interface {
	Summarize(ctx context.Context, upload gateway.Upload) (shiftwyse.Insight, error)
}

// SignalPublisher broadcasts a change signal after a partition write so
// live subscriptions reload.
type SignalPublisher interface {
	Publish(ctx context.Context, partition string) error
}
