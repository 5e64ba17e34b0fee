package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/shiftwyse/shiftwyse"
)

// Upload describes a document handed to the knowledge pipeline. No file
// content is read; the pipeline is an external collaborator reached
// through the Summarizer port.
type Upload struct {
	Name string
	Size int64
}

// SimulatedSummarizer stands in for the hosted document-understanding
// service. It waits a fixed processing delay and yields a canned insight,
// which is what the upstream service currently does for us too.
type SimulatedSummarizer struct {
	delay time.Duration
}

const defaultProcessingDelay = 2 * time.Second

func NewSimulatedSummarizer(delay time.Duration) *SimulatedSummarizer {
	if delay <= 0 {
		delay = defaultProcessingDelay
	}
	return &SimulatedSummarizer{delay: delay}
}

// Summarize blocks for the processing delay (or until the context ends)
// and returns the structured insight. The id is derived from the upload's
// name and size so re-ingesting the same document merges instead of
// duplicating.
func (s *SimulatedSummarizer) Summarize(ctx context.Context, upload Upload) (shiftwyse.Insight, error) {

	select {
	case <-ctx.Done():
		return shiftwyse.Insight{}, ctx.Err()
	case <-time.After(s.delay):
	}

	return shiftwyse.Insight{
		ID:      InsightID(upload),
		Title:   "Key Insights from Global Nursing Leadership Framework",
		Summary: "This document highlights key competencies for nurse leaders, including strategic vision, communication, and team development. It emphasizes continuous learning and ethical decision-making.",
		Keywords: []string{
			"leadership", "competency", "strategic vision", "ethics", "nursing",
		},
	}, nil
}

// InsightID is a stable id for an upload.
func InsightID(upload Upload) string {
	sum := xxh3.HashString(fmt.Sprintf("%s:%d", upload.Name, upload.Size))
	return fmt.Sprintf("insight-%016x", sum)
}
