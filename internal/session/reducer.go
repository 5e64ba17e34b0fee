package session

import (
	"sort"
	"sync"

	"github.com/shiftwyse/shiftwyse"
)

// Event is a state transition applied to a Reducer.
type Event interface {
	eventName() string
}

type IdentityResolved struct {
	Identity shiftwyse.Identity
}

type MessagesUpdated struct {
	Messages []shiftwyse.Message
}

type SnapshotsUpdated struct {
	Snapshots []shiftwyse.CompetencySnapshot
}

type MentorsUpdated struct {
	Mentors []shiftwyse.MentorProfile
}

type AnalyticsUpdated struct {
	Events []shiftwyse.AnalyticsEvent
}

type UserSubmittedMessage struct {
	Message shiftwyse.Message
}

type MessageConfirmed struct {
	ID string
}

type MessageFailed struct {
	ID string
}

type InferenceCompleted struct {
	Message shiftwyse.Message
}

func (IdentityResolved) eventName() string     { return "IdentityResolved" }
func (MessagesUpdated) eventName() string      { return "MessagesUpdated" }
func (SnapshotsUpdated) eventName() string     { return "SnapshotsUpdated" }
func (MentorsUpdated) eventName() string       { return "MentorsUpdated" }
func (AnalyticsUpdated) eventName() string     { return "AnalyticsUpdated" }
func (UserSubmittedMessage) eventName() string { return "UserSubmittedMessage" }
func (MessageConfirmed) eventName() string     { return "MessageConfirmed" }
func (MessageFailed) eventName() string        { return "MessageFailed" }
func (InferenceCompleted) eventName() string   { return "InferenceCompleted" }

// State is the session-scoped view of all synchronized records.
type State struct {
	Identity  shiftwyse.Identity
	Messages  []shiftwyse.Message
	Snapshots []shiftwyse.CompetencySnapshot
	Mentors   []shiftwyse.MentorProfile
	Analytics []shiftwyse.AnalyticsEvent
}

// Reducer applies events to a State one at a time. Apply is safe to
// call from multiple goroutines, transitions are serialized.
type Reducer struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

func NewReducer(onChange func(State)) *Reducer {
	return &Reducer{
		onChange: onChange,
	}
}

// State returns a copy of the current state.
func (r *Reducer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyState(r.state)
}

func (r *Reducer) Apply(ev Event) {
	r.mu.Lock()

	changed := true
	switch e := ev.(type) {
	case IdentityResolved:
		if r.state.Identity.ID == e.Identity.ID {
			changed = false
			break
		}
		r.state = State{Identity: e.Identity}
	case MessagesUpdated:
		messages := make([]shiftwyse.Message, len(e.Messages))
		copy(messages, e.Messages)
		sortMessages(messages)
		r.state.Messages = messages
	case SnapshotsUpdated:
		snapshots := make([]shiftwyse.CompetencySnapshot, len(e.Snapshots))
		copy(snapshots, e.Snapshots)
		sortSnapshots(snapshots)
		r.state.Snapshots = snapshots
	case MentorsUpdated:
		mentors := make([]shiftwyse.MentorProfile, len(e.Mentors))
		copy(mentors, e.Mentors)
		r.state.Mentors = mentors
	case AnalyticsUpdated:
		events := make([]shiftwyse.AnalyticsEvent, len(e.Events))
		copy(events, e.Events)
		r.state.Analytics = events
	case UserSubmittedMessage:
		message := e.Message
		message.Pending = true
		r.state.Messages = append(r.state.Messages, message)
	case MessageConfirmed:
		changed = r.markMessage(e.ID, false)
	case MessageFailed:
		changed = r.markMessage(e.ID, true)
	case InferenceCompleted:
		r.state.Messages = append(r.state.Messages, e.Message)
	default:
		changed = false
	}

	var snapshot State
	if changed && r.onChange != nil {
		snapshot = copyState(r.state)
	}
	r.mu.Unlock()

	if changed && r.onChange != nil {
		r.onChange(snapshot)
	}
}

func (r *Reducer) markMessage(id string, degraded bool) bool {
	for i := range r.state.Messages {
		if r.state.Messages[i].ID == id {
			r.state.Messages[i].Pending = false
			r.state.Messages[i].Degraded = degraded
			return true
		}
	}
	return false
}

func sortMessages(messages []shiftwyse.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

func sortSnapshots(snapshots []shiftwyse.CompetencySnapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp < snapshots[j].Timestamp
	})
}

func copyState(s State) State {
	out := s
	out.Messages = append([]shiftwyse.Message(nil), s.Messages...)
	out.Snapshots = append([]shiftwyse.CompetencySnapshot(nil), s.Snapshots...)
	out.Mentors = append([]shiftwyse.MentorProfile(nil), s.Mentors...)
	out.Analytics = append([]shiftwyse.AnalyticsEvent(nil), s.Analytics...)
	return out
}
