package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the thread list pane.
type ConversationList struct {
	*tview.Table
	theme   *ui.Theme
	threads []inbox.Summary
	visible []string
	filter  string
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Inbox ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
	}
}

// Name implements ui.Pane.
func (cl *ConversationList) Name() string { return "Inbox" }

// Hints implements ui.Pane.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "Tab", Description: "Next pane"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the list, keeping the cursor on the same thread.
func (cl *ConversationList) Update(threads []inbox.Summary) {
	current := cl.SelectedThread()
	cl.threads = threads
	cl.render()
	cl.Focus(current)
}

// SetFilter sets the active filter text and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// ClearFilter clears the active filter.
func (cl *ConversationList) ClearFilter() {
	cl.filter = ""
	cl.render()
}

// Filter returns the active filter.
func (cl *ConversationList) Filter() string {
	return cl.filter
}

func (cl *ConversationList) matches(t inbox.Summary) bool {
	if cl.filter == "" {
		return true
	}
	return containsFold(t.Participant, cl.filter) ||
		containsFold(t.Subject, cl.filter) ||
		containsFold(t.Preview, cl.filter)
}

func (cl *ConversationList) render() {
	cl.Clear()
	cl.visible = cl.visible[:0]

	headers := []struct {
		text string
		exp  int
	}{
		{" ", 0},
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	row := 1
	for _, t := range cl.threads {
		if !cl.matches(t) {
			continue
		}
		cl.visible = append(cl.visible, t.ID)

		marker := tview.NewTableCell(" ")
		if t.Unread {
			marker = tview.NewTableCell("●").SetTextColor(cl.theme.UnreadColor)
		}
		name := t.Participant
		if t.Subject != "" {
			name += " · " + t.Subject
		}
		nameCell := tview.NewTableCell(" " + tview.Escape(sanitizeForTerminal(name))).
			SetExpansion(1).
			SetTextColor(cl.theme.FgColor)
		if t.Unread {
			nameCell.SetAttributes(tcell.AttrBold)
		}

		cl.SetCell(row, 0, marker)
		cl.SetCell(row, 1, nameCell)
		cl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(t.Preview))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(formatTimestamp(t.LastMessageAt)).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		row++
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Inbox (%d/%d) filter: %s ", len(cl.visible), len(cl.threads), cl.filter))
	} else {
		cl.SetTitle(fmt.Sprintf(" Inbox (%d) ", len(cl.threads)))
	}
}

// SelectedThread returns the id of the thread under the cursor.
func (cl *ConversationList) SelectedThread() string {
	row, _ := cl.GetSelection()
	return cl.ThreadByIndex(row)
}

// ThreadByIndex returns the id of the Nth visible thread (1-based).
func (cl *ConversationList) ThreadByIndex(n int) string {
	if n < 1 || n > len(cl.visible) {
		return ""
	}
	return cl.visible[n-1]
}

// Focus moves the cursor to the thread with the given id, if visible.
func (cl *ConversationList) Focus(id string) {
	for i, v := range cl.visible {
		if v == id {
			cl.Select(i+1, 0)
			return
		}
	}
	if len(cl.visible) > 0 {
		row, _ := cl.GetSelection()
		if row < 1 || row > len(cl.visible) {
			cl.Select(1, 0)
		}
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
