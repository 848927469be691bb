package inbox

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrNotFound is returned for operations that reference an unknown thread.
var ErrNotFound = errors.New("thread not found")

// ErrInvalidMessage is returned when a message fails validation.
var ErrInvalidMessage = errors.New("invalid message")

// Sender identifies who wrote a message.
type Sender string

const (
	Customer Sender = "customer"
	Agent    Sender = "agent"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == Customer || s == Agent
}

// Participant is the customer on the other side of a thread.
type Participant struct {
	Name   string `json:"name" toml:"name"`
	Avatar string `json:"avatar,omitempty" toml:"avatar"`
	Email  string `json:"email,omitempty" toml:"email"`
}

// Message is one exchange within a thread. It is never modified after being
// appended.
type Message struct {
	Sender    Sender    `json:"sender" toml:"sender"`
	Text      string    `json:"text" toml:"text"`
	Timestamp time.Time `json:"timestamp" toml:"timestamp"`
}

// Validate checks the message fields.
func (m Message) Validate() error {
	if !m.Sender.Valid() {
		return fmt.Errorf("%w: unknown sender %q", ErrInvalidMessage, m.Sender)
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidMessage)
	}
	return nil
}

// Thread is one customer conversation.
type Thread struct {
	ID          string      `json:"id" toml:"id"`
	Participant Participant `json:"participant" toml:"participant"`
	Subject     string      `json:"subject,omitempty" toml:"subject"`
	Messages    []Message   `json:"messages" toml:"messages"`
	Unread      bool        `json:"unread" toml:"unread"`
}

// clone returns a deep copy so callers never share the store's slices.
func (t *Thread) clone() Thread {
	c := *t
	c.Messages = slices.Clone(t.Messages)
	return c
}

// Summary is the list-pane view of a thread.
type Summary struct {
	ID            string    `json:"id"`
	Participant   string    `json:"participant"`
	Subject       string    `json:"subject,omitempty"`
	Preview       string    `json:"preview"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int       `json:"message_count"`
	Unread        bool      `json:"unread"`
}

const previewLen = 80

func (t *Thread) summary() Summary {
	s := Summary{
		ID:           t.ID,
		Participant:  t.Participant.Name,
		Subject:      t.Subject,
		MessageCount: len(t.Messages),
		Unread:       t.Unread,
	}
	if n := len(t.Messages); n > 0 {
		last := t.Messages[n-1]
		s.Preview = truncate(last.Text, previewLen)
		s.LastMessageAt = last.Timestamp
	}
	return s
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes])
}

// ValidateThreads checks a thread set loaded from outside the process.
func ValidateThreads(threads []Thread) error {
	seen := make(map[string]struct{}, len(threads))
	for _, t := range threads {
		if t.ID == "" {
			return errors.New("thread with empty id")
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate thread id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		for i, m := range t.Messages {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("thread %q message %d: %w", t.ID, i, err)
			}
		}
	}
	return nil
}
