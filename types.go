package shiftwyse

import (
	"time"
)

// Sender identifies which side of a conversation produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single conversation turn. Messages are immutable once
// written; a conversation is every message under one owner id, ordered
// ascending by timestamp.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	OwnerID   string    `json:"ownerId"`

	// Pending marks an optimistic local entry whose backing write has not
	// been acknowledged yet. Degraded marks one whose write failed.
	Pending  bool `json:"pending,omitempty"`
	Degraded bool `json:"degraded,omitempty"`
}

// CompetencySnapshot is one self-rating save. History is append-only;
// "latest" is the max-timestamp element.
type CompetencySnapshot struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId"`
	Timestamp string         `json:"timestamp"` // ISO-8601, sortable as text
	Ratings   map[string]int `json:"ratings"`
}

// MentorProfile is a public, append-only directory entry. The id is
// assigned by the store on append.
type MentorProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Expertise string    `json:"expertise"`
	Bio       string    `json:"bio"`
	Contact   string    `json:"contact"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

type AnalyticsEventType string

const (
	AnalyticsCompetency AnalyticsEventType = "competency"
	AnalyticsMicroWin   AnalyticsEventType = "micro-win"
)

// AnalyticsEvent is an append-only counter sample, consumed only in
// aggregate.
type AnalyticsEvent struct {
	ID        string             `json:"id"`
	Type      AnalyticsEventType `json:"type"`
	Data      map[string]string  `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

// Insight is the structured result of the knowledge ingest pipeline,
// written to the public knowledge partition.
type Insight struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Identity is the resolved session identity. Authenticated is false in
// degraded local-only mode, in which store writes are skipped.
type Identity struct {
	ID            string `json:"id"`
	IsPrivileged  bool   `json:"isPrivileged"`
	Authenticated bool   `json:"authenticated"`
}

// ChangeSignal announces that a partition's content changed. It carries no
// payload: subscribers reload the full current set.
type ChangeSignal struct {
	Partition string `json:"partition"`
}
