package api

import (
	"encoding/json"
	"time"

	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
)

// Empty is used where a call takes or returns nothing.
type Empty struct{}

type ListThreadsRequest struct{}

type ListThreadsResponse struct {
	Threads  []inbox.Summary `json:"threads"`
	Selected string          `json:"selected,omitempty"`
}

type GetThreadRequest struct {
	ThreadID string `json:"thread_id"`
}

type ThreadResponse struct {
	Thread inbox.Thread `json:"thread"`
}

type SelectThreadRequest struct {
	ThreadID string `json:"thread_id"`
}

// SelectThreadResponse carries the thread and its copilot view, which is
// restored as part of selection.
type SelectThreadResponse struct {
	Thread  inbox.Thread      `json:"thread"`
	Copilot []copilot.QAEntry `json:"copilot"`
}

type AppendMessageRequest struct {
	ThreadID string       `json:"thread_id"`
	Sender   inbox.Sender `json:"sender"`
	Text     string       `json:"text"`
}

type WatchEventsRequest struct {
	// Prefix filters event kinds, e.g. "copilot.". Empty means all.
	Prefix string `json:"prefix,omitempty"`
}

// EventEnvelope is one bus event on the wire.
type EventEnvelope struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	ThreadID   string          `json:"thread_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type AskRequest struct {
	ThreadID string `json:"thread_id"`
	Question string `json:"question"`
}

// AskResponse has a nil Submission when the question was blank.
type AskResponse struct {
	Submission *copilot.Submission `json:"submission,omitempty"`
}

type HistoryRequest struct {
	ThreadID string `json:"thread_id"`
	// View asks for the display projection when the history is empty.
	View bool `json:"view,omitempty"`
}

type HistoryResponse struct {
	Entries []copilot.QAEntry `json:"entries"`
}

type MarkRevealedRequest struct {
	ThreadID string `json:"thread_id"`
	EntryID  string `json:"entry_id"`
}

type ClearHistoryRequest struct {
	ThreadID string `json:"thread_id"`
}

// RefineRequest applies an action to Span. When Buffer is set the
// response also carries the buffer with the span replaced.
type RefineRequest struct {
	ThreadID string            `json:"thread_id,omitempty"`
	Buffer   string            `json:"buffer,omitempty"`
	Span     selection.Span    `json:"span"`
	Action   string            `json:"action"`
	Options  selection.Options `json:"options"`
}

type RefineResponse struct {
	Text   string `json:"text"`
	Buffer string `json:"buffer,omitempty"`
	Cursor int    `json:"cursor,omitempty"`
}

type FormatRequest struct {
	Buffer string         `json:"buffer"`
	Span   selection.Span `json:"span"`
	Style  string         `json:"style"`
}

type EditResponse struct {
	Buffer string `json:"buffer"`
	Cursor int    `json:"cursor"`
}
