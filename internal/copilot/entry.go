package copilot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/matheus3301/inbox/internal/gateway"
)

// Role says which side of the exchange an entry holds.
type Role string

const (
	RoleQuestion Role = "user-question"
	RoleAnswer   Role = "ai-answer"
)

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// validTransitions defines allowed status transitions. Complete and failed
// are terminal.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusComplete, StatusFailed},
}

const (
	// FailedAnswerText is shown in place of an answer the gateway could not
	// produce.
	FailedAnswerText = "Sorry, I couldn't get an answer right now. Please try asking again."
	// InterruptedAnswerText replaces answers that were still pending when the
	// daemon stopped.
	InterruptedAnswerText = "This answer was interrupted. Please ask again."
)

// QAEntry is one turn of the copilot conversation for a thread.
type QAEntry struct {
	ID                string           `json:"id"`
	Role              Role             `json:"role"`
	QuestionText      string           `json:"questionText"`
	AnswerText        *string          `json:"answerText"`
	Status            Status           `json:"status"`
	CreatedAt         time.Time        `json:"createdAt"`
	Sources           []gateway.Source `json:"sources"`
	FreshForAnimation bool             `json:"isFreshForAnimation"`
	// Projected marks display-only entries derived from thread messages.
	Projected bool `json:"projected,omitempty"`
}

func (e *QAEntry) transition(to Status) error {
	if !slices.Contains(validTransitions[e.Status], to) {
		return fmt.Errorf("entry %s: invalid transition from %s to %s", e.ID, e.Status, to)
	}
	e.Status = to
	return nil
}

func (e *QAEntry) complete(reply gateway.Reply) error {
	if err := e.transition(StatusComplete); err != nil {
		return err
	}
	text := reply.Text
	e.AnswerText = &text
	e.Sources = slices.Clone(reply.Sources)
	if len(e.Sources) == 0 {
		e.Sources = nil
	}
	e.FreshForAnimation = true
	return nil
}

func (e *QAEntry) fail(message string) error {
	if err := e.transition(StatusFailed); err != nil {
		return err
	}
	e.AnswerText = &message
	e.Sources = nil
	e.FreshForAnimation = false
	return nil
}

// Validate checks the invariants of a single entry.
func (e QAEntry) Validate() error {
	if e.ID == "" {
		return errors.New("entry id is empty")
	}
	switch e.Role {
	case RoleQuestion:
		if e.Status != StatusComplete {
			return fmt.Errorf("entry %s: question with status %q", e.ID, e.Status)
		}
	case RoleAnswer:
	default:
		return fmt.Errorf("entry %s: unknown role %q", e.ID, e.Role)
	}
	switch e.Status {
	case StatusPending:
		if e.AnswerText != nil {
			return fmt.Errorf("entry %s: pending entry has an answer", e.ID)
		}
	case StatusComplete, StatusFailed:
	default:
		return fmt.Errorf("entry %s: unknown status %q", e.ID, e.Status)
	}
	return nil
}

// ValidateHistory checks every entry and rejects duplicate ids.
func ValidateHistory(history []QAEntry) error {
	seen := make(map[string]struct{}, len(history))
	for _, e := range history {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

func (e QAEntry) clone() QAEntry {
	if e.AnswerText != nil {
		text := *e.AnswerText
		e.AnswerText = &text
	}
	e.Sources = slices.Clone(e.Sources)
	return e
}

func cloneHistory(h []QAEntry) []QAEntry {
	out := make([]QAEntry, len(h))
	for i, e := range h {
		out[i] = e.clone()
	}
	return out
}
