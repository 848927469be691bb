package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/reveal"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// CopilotPane shows the copilot history for the open thread. Fresh answers
// are revealed incrementally; one reveal slot is kept per answer.
type CopilotPane struct {
	*tview.TextView
	theme       *ui.Theme
	granularity reveal.Granularity
	pacing      reveal.Pacing
	sleep       reveal.SleepFunc

	threadID string
	entries  []copilot.QAEntry
	partial  map[string]string
	slots    map[string]*reveal.Slot

	queue      func(func())
	onRevealed func(threadID, entryID string)
}

// NewCopilotPane creates the pane. queue must run f on the UI goroutine,
// typically tview.Application.QueueUpdateDraw.
func NewCopilotPane(theme *ui.Theme, g reveal.Granularity, p reveal.Pacing, queue func(func())) *CopilotPane {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Copilot ")
	tv.SetTitleColor(theme.TitleColor)

	return &CopilotPane{
		TextView:    tv,
		theme:       theme,
		granularity: g,
		pacing:      p,
		sleep:       reveal.Sleep,
		partial:     make(map[string]string),
		slots:       make(map[string]*reveal.Slot),
		queue:       queue,
	}
}

// Name implements ui.Pane.
func (cp *CopilotPane) Name() string { return "Copilot" }

// Stop cancels every running reveal.
func (cp *CopilotPane) Stop() { cp.stopAll() }

// Hints implements ui.Pane.
func (cp *CopilotPane) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "a", Description: "Ask"},
		{Key: "x", Description: "Clear history"},
		{Key: "Tab", Description: "Next pane"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnRevealed sets the callback fired when an answer finishes animating.
func (cp *CopilotPane) SetOnRevealed(fn func(threadID, entryID string)) {
	cp.onRevealed = fn
}

// SetSleep replaces the reveal clock, for tests.
func (cp *CopilotPane) SetSleep(fn reveal.SleepFunc) {
	cp.sleep = fn
}

// Update shows entries for threadID. Must be called on the UI goroutine.
func (cp *CopilotPane) Update(threadID string, entries []copilot.QAEntry) {
	if threadID != cp.threadID {
		cp.stopAll()
		cp.threadID = threadID
	}
	cp.entries = entries

	live := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Role != copilot.RoleAnswer || e.Status != copilot.StatusComplete || e.AnswerText == nil || e.Projected {
			continue
		}
		live[e.ID] = true
		slot, ok := cp.slots[e.ID]
		if !ok {
			if !e.FreshForAnimation {
				continue
			}
			slot = reveal.NewSlot(cp.granularity, cp.pacing, cp.sleep)
			cp.slots[e.ID] = slot
		}
		cp.play(slot, threadID, e)
	}
	for id, slot := range cp.slots {
		if !live[id] {
			slot.Stop()
			delete(cp.slots, id)
			delete(cp.partial, id)
		}
	}
	cp.render()
}

func (cp *CopilotPane) play(slot *reveal.Slot, threadID string, e copilot.QAEntry) {
	id := e.ID
	slot.Play(context.Background(), *e.AnswerText, !e.FreshForAnimation,
		func(f reveal.Frame) {
			cp.queue(func() {
				if !slot.IsCurrent(f.Run) || cp.threadID != threadID {
					return
				}
				cp.partial[id] = f.Text
				cp.render()
			})
		},
		func() {
			if cp.onRevealed != nil {
				cp.onRevealed(threadID, id)
			}
		})
}

func (cp *CopilotPane) stopAll() {
	for id, slot := range cp.slots {
		slot.Stop()
		delete(cp.slots, id)
	}
	clear(cp.partial)
}

// answerText is what the pane shows for a completed answer right now.
func (cp *CopilotPane) answerText(e copilot.QAEntry) string {
	if _, animated := cp.slots[e.ID]; animated {
		return cp.partial[e.ID]
	}
	return strings.Join(reveal.Segment(*e.AnswerText), reveal.Separator)
}

func (cp *CopilotPane) render() {
	cp.Clear()
	if cp.threadID == "" {
		_, _ = fmt.Fprintf(cp, "[%s]Open a conversation to ask the copilot.[-]", ui.ColorName(cp.theme.PendingColor))
		return
	}
	if len(cp.entries) == 0 {
		_, _ = fmt.Fprintf(cp, "[%s]No questions yet. Press a to ask.[-]", ui.ColorName(cp.theme.PendingColor))
		return
	}

	pending := ui.ColorName(cp.theme.PendingColor)
	for _, e := range cp.entries {
		switch e.Role {
		case copilot.RoleQuestion:
			label := "You asked"
			if e.Projected {
				label = "Customer"
			}
			_, _ = fmt.Fprintf(cp, "[%s::b]%s[-:-:-]\n%s\n\n",
				ui.ColorName(cp.theme.CustomerColor), label, escape(e.QuestionText))
		case copilot.RoleAnswer:
			label := "Copilot"
			if e.Projected {
				label = "Agent"
			}
			_, _ = fmt.Fprintf(cp, "[%s::b]%s[-:-:-]\n", ui.ColorName(cp.theme.CopilotColor), label)
			switch e.Status {
			case copilot.StatusPending:
				_, _ = fmt.Fprintf(cp, "[%s]thinking…[-]\n\n", pending)
			case copilot.StatusFailed:
				_, _ = fmt.Fprintf(cp, "[%s]%s[-]\n\n", ui.ColorName(cp.theme.FailedColor), escape(deref(e.AnswerText)))
			default:
				_, _ = fmt.Fprintf(cp, "%s\n", escape(cp.answerText(e)))
				if len(e.Sources) > 0 && cp.revealed(e) {
					titles := make([]string, len(e.Sources))
					for i, s := range e.Sources {
						titles[i] = s.Title
						if titles[i] == "" {
							titles[i] = s.ID
						}
					}
					_, _ = fmt.Fprintf(cp, "[%s]Sources: %s[-]\n", pending, escape(strings.Join(titles, ", ")))
				}
				_, _ = fmt.Fprint(cp, "\n")
			}
		}
	}
	cp.ScrollToEnd()
}

// revealed reports whether the answer is fully shown.
func (cp *CopilotPane) revealed(e copilot.QAEntry) bool {
	if _, animated := cp.slots[e.ID]; !animated {
		return true
	}
	return cp.partial[e.ID] == strings.Join(reveal.Segment(*e.AnswerText), reveal.Separator)
}

func escape(s string) string {
	return tview.Escape(sanitizeForTerminal(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
