package views

import (
	"fmt"

	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays details about the open thread's participant.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.Pane.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements ui.Pane.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders thread details.
func (ci *ConversationInfo) Update(t *inbox.Thread) {
	ci.Clear()
	if t == nil {
		return
	}

	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	var customer, agent int
	for _, m := range t.Messages {
		if m.Sender == inbox.Customer {
			customer++
		} else {
			agent++
		}
	}
	lastActive := "-"
	if n := len(t.Messages); n > 0 {
		lastActive = t.Messages[n-1].Timestamp.Local().Format("2006-01-02 15:04")
	}

	_, _ = fmt.Fprintf(ci,
		"\n [%s::b]Name:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Email:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Subject:[-:-:-]     [%s]%s[-]\n"+
			" [%s::b]Thread:[-:-:-]      [%s]%s[-]\n"+
			" [%s::b]Messages:[-:-:-]    [%s]%d from customer, %d replies[-]\n"+
			" [%s::b]Last Active:[-:-:-] [%s]%s[-]",
		fg, ct, escape(t.Participant.Name),
		fg, ct, escape(orDash(t.Participant.Email)),
		fg, ct, escape(orDash(t.Subject)),
		fg, ct, escape(t.ID),
		fg, ct, customer, agent,
		fg, ct, lastActive,
	)
	ci.SetTitle(fmt.Sprintf(" %s Details ", escape(t.Participant.Name)))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
