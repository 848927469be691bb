package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays a conversation and the reply composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.TextArea
	thread   *inbox.Thread
	onSend   func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewTextArea().
		SetPlaceholder("Write a reply. Shift+arrows select, Alt-r refines, Ctrl-S sends.")
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetTextStyle(tcell.StyleDefault.Foreground(theme.FgColor).Background(theme.BgColor))
	composer.SetPlaceholderStyle(tcell.StyleDefault.Foreground(theme.PendingColor).Background(theme.BgColor))
	composer.SetTitle(" Reply (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 7, 0, false)

	return &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}
}

// Name implements ui.Pane.
func (mt *MessageThread) Name() string {
	if mt.thread != nil {
		return mt.thread.Participant.Name
	}
	return "Messages"
}

// Hints implements ui.Pane.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Reply"},
		{Key: "Ctrl-S", Description: "Send"},
		{Key: "Alt-r", Description: "Refine"},
		{Key: "Alt-b/i/c", Description: "Format"},
		{Key: "a", Description: "Ask copilot"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnSend sets the callback for Ctrl-S in the composer.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Send submits the composer contents and clears it.
func (mt *MessageThread) Send() {
	text := mt.composer.GetText()
	if text == "" || mt.onSend == nil {
		return
	}
	mt.onSend(text)
	mt.composer.SetText("", false)
}

// Thread returns the displayed thread, or nil.
func (mt *MessageThread) Thread() *inbox.Thread {
	return mt.thread
}

// Update renders the thread. A different thread resets the composer.
func (mt *MessageThread) Update(t *inbox.Thread) {
	if t == nil || mt.thread == nil || mt.thread.ID != t.ID {
		mt.composer.SetText("", false)
	}
	mt.thread = t
	mt.messages.Clear()
	if t == nil {
		mt.messages.SetTitle(" Messages ")
		return
	}

	title := t.Participant.Name
	if t.Subject != "" {
		title += " · " + t.Subject
	}
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(title))))

	for _, m := range t.Messages {
		who, color := t.Participant.Name, mt.theme.CustomerColor
		if m.Sender == inbox.Agent {
			who, color = "You", mt.theme.AgentColor
		}
		_, _ = fmt.Fprintf(mt.messages, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			ui.ColorName(color),
			tview.Escape(sanitizeForTerminal(who)),
			formatTimestamp(m.Timestamp),
			tview.Escape(sanitizeForTerminal(m.Text)))
	}
	mt.messages.ScrollToEnd()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the reply text area.
func (mt *MessageThread) Composer() *tview.TextArea {
	return mt.composer
}

// ReplaceBuffer swaps the composer text after an edit and places the
// cursor at the given byte offset.
func (mt *MessageThread) ReplaceBuffer(text string, cursor int) {
	mt.composer.SetText(text, false)
	mt.composer.Select(cursor, cursor)
}
