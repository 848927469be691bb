package selection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned for unknown actions, missing options or an
// empty span.
var ErrInvalidRequest = errors.New("invalid refine request")

// ActionKind names a refinement.
type ActionKind string

const (
	Polish       ActionKind = "polish"
	Elaborate    ActionKind = "elaborate"
	Summarize    ActionKind = "summarize"
	Friendly     ActionKind = "friendly"
	Professional ActionKind = "professional"
	Rephrase     ActionKind = "rephrase"
	GrammarFix   ActionKind = "grammar-fix"
	Translate    ActionKind = "translate"
	CustomTone   ActionKind = "custom-tone"
)

type action struct {
	kind     ActionKind
	label    string
	template string
}

// actions is in menu order.
var actions = []action{
	{Polish, "Polish", "Polish the following text so it reads clearly and confidently. Keep its meaning."},
	{Rephrase, "Rephrase", "Rephrase the following text using different wording. Keep its meaning."},
	{Friendly, "More friendly", "Rewrite the following text in a warmer, friendlier tone."},
	{Professional, "More formal", "Rewrite the following text in a professional, formal tone."},
	{GrammarFix, "Fix grammar & spelling", "Fix grammar, spelling and punctuation in the following text. Change nothing else."},
	{Elaborate, "Elaborate", "Expand the following text with helpful detail for the customer."},
	{Summarize, "Summarize", "Summarize the following text in one or two sentences."},
	{Translate, "Translate", "Translate the following text into %s."},
	{CustomTone, "My tone of voice", "Rewrite the following text in this tone of voice: %s."},
}

const replyRule = "Reply with the rewritten text only."

// Actions lists the kinds in menu order.
func Actions() []ActionKind {
	out := make([]ActionKind, len(actions))
	for i, a := range actions {
		out[i] = a.kind
	}
	return out
}

func lookup(k ActionKind) (action, bool) {
	for _, a := range actions {
		if a.kind == k {
			return a, true
		}
	}
	return action{}, false
}

// ParseAction validates an action name.
func ParseAction(s string) (ActionKind, error) {
	if _, ok := lookup(ActionKind(s)); !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, s)
	}
	return ActionKind(s), nil
}

// Label is the menu text for k.
func (k ActionKind) Label() string {
	if a, ok := lookup(k); ok {
		return a.label
	}
	return string(k)
}

// Options carries per-action parameters.
type Options struct {
	// Language is the translate target. Defaults to English.
	Language string `json:"language,omitempty"`
	// Tone is required by custom-tone.
	Tone string `json:"tone,omitempty"`
}

// Instruction renders the prompt for applying k to text.
func Instruction(k ActionKind, text string, opts Options) (string, error) {
	a, ok := lookup(k)
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, k)
	}
	head := a.template
	switch k {
	case Translate:
		lang := strings.TrimSpace(opts.Language)
		if lang == "" {
			lang = "English"
		}
		head = fmt.Sprintf(head, lang)
	case CustomTone:
		tone := strings.TrimSpace(opts.Tone)
		if tone == "" {
			return "", fmt.Errorf("%w: %s needs a tone", ErrInvalidRequest, k)
		}
		head = fmt.Sprintf(head, tone)
	}
	return head + " " + replyRule + "\n\nText:\n" + text, nil
}
