package bus

import "time"

// Event kinds published by the inbox daemon.
const (
	KindThreadAdded     = "inbox.thread_added"
	KindThreadSelected  = "inbox.thread_selected"
	KindMessageAppended = "inbox.message_appended"

	KindEntryAdded     = "copilot.entry_added"
	KindEntryResolved  = "copilot.entry_resolved"
	KindEntryRevealed  = "copilot.entry_revealed"
	KindHistoryCleared = "copilot.history_cleared"
)

// Event is a domain event published on the bus. ThreadID is empty for
// events that are not tied to a conversation.
type Event struct {
	Kind      string
	ThreadID  string
	Timestamp time.Time
	Payload   any
}

// NewEvent stamps an event with the current time.
func NewEvent(kind, threadID string, payload any) Event {
	return Event{Kind: kind, ThreadID: threadID, Timestamp: time.Now(), Payload: payload}
}
