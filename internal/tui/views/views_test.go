package views

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/reveal"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instant(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func answer(id, text string, fresh bool) copilot.QAEntry {
	return copilot.QAEntry{
		ID:                id,
		Role:              copilot.RoleAnswer,
		Status:            copilot.StatusComplete,
		AnswerText:        &text,
		FreshForAnimation: fresh,
	}
}

func drain(updates chan func()) {
	for {
		select {
		case f := <-updates:
			f()
		default:
			return
		}
	}
}

func TestCopilotPaneRevealsFreshAnswer(t *testing.T) {
	updates := make(chan func(), 256)
	pane := NewCopilotPane(ui.DefaultTheme(), reveal.Paragraph, reveal.DefaultPacing, func(f func()) { updates <- f })
	pane.SetSleep(instant)
	revealed := make(chan string, 1)
	pane.SetOnRevealed(func(threadID, entryID string) { revealed <- threadID + "/" + entryID })

	q := copilot.QAEntry{ID: "q1", Role: copilot.RoleQuestion, Status: copilot.StatusComplete, QuestionText: "Refund?"}
	pane.Update("1", []copilot.QAEntry{q, answer("a1", "First paragraph.\n\nSecond paragraph.", true)})
	assert.Contains(t, pane.GetText(true), "Refund?")
	assert.NotContains(t, pane.GetText(true), "Second paragraph.")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-updates:
			f()
		case id := <-revealed:
			drain(updates)
			assert.Equal(t, "1/a1", id)
			assert.Contains(t, pane.GetText(true), "First paragraph.\n\nSecond paragraph.")
			return
		case <-deadline:
			t.Fatal("reveal did not finish")
		}
	}
}

func TestCopilotPaneShowsRevealedAnswerAtOnce(t *testing.T) {
	pane := NewCopilotPane(ui.DefaultTheme(), reveal.Character, reveal.DefaultPacing, func(f func()) {
		t.Error("no frames expected for a revealed answer")
	})
	a := answer("a1", "Your refund will be processed.", false)
	a.Sources = []gateway.Source{{ID: "kb-refunds", Title: "Refund policy"}}

	pane.Update("1", []copilot.QAEntry{a})
	text := pane.GetText(true)
	assert.Contains(t, text, "Your refund will be processed.")
	assert.Contains(t, text, "Sources: Refund policy")
}

func TestCopilotPaneStatuses(t *testing.T) {
	pane := NewCopilotPane(ui.DefaultTheme(), reveal.Character, reveal.DefaultPacing, func(func()) {})
	failed := copilot.FailedAnswerText
	pane.Update("1", []copilot.QAEntry{
		{ID: "a1", Role: copilot.RoleAnswer, Status: copilot.StatusPending},
		{ID: "a2", Role: copilot.RoleAnswer, Status: copilot.StatusFailed, AnswerText: &failed},
	})
	text := pane.GetText(true)
	assert.Contains(t, text, "thinking")
	assert.Contains(t, text, failed)

	pane.Update("", nil)
	assert.Contains(t, pane.GetText(true), "Open a conversation")
}

func TestCopilotPaneDropsStaleFramesOnThreadSwitch(t *testing.T) {
	updates := make(chan func(), 256)
	pane := NewCopilotPane(ui.DefaultTheme(), reveal.Character, reveal.DefaultPacing, func(f func()) { updates <- f })
	block := make(chan struct{})
	pane.SetSleep(func(ctx context.Context, _ time.Duration) error {
		select {
		case <-block:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	pane.Update("1", []copilot.QAEntry{answer("a1", "hello from thread one", true)})
	pane.Update("2", []copilot.QAEntry{answer("b1", "second thread", false)})
	close(block)
	time.Sleep(20 * time.Millisecond)
	drain(updates)

	text := pane.GetText(true)
	assert.Contains(t, text, "second thread")
	assert.NotContains(t, text, "hello")
}

func drawn(text string) *tview.TextArea {
	screen := tcell.NewSimulationScreen("")
	_ = screen.Init()
	screen.SetSize(40, 6)
	area := tview.NewTextArea()
	area.SetRect(0, 0, 40, 6)
	area.SetText(text, false)
	area.Draw(screen)
	return area
}

func TestComposerSourceReportsSelection(t *testing.T) {
	area := drawn("hello world")
	area.Select(6, 11)

	raw, ok := NewComposerSource(area, nil).Selection()
	require.True(t, ok)
	assert.Equal(t, "world", raw.Text)
	assert.Equal(t, 6, raw.Start)
	assert.Equal(t, 11, raw.End)
	assert.Equal(t, RegionComposer, raw.Region)
}

func TestComposerSourceIgnoredInsideActionMenu(t *testing.T) {
	area := drawn("hello world")
	area.Select(0, 5)

	src := NewComposerSource(area, func() string { return selection.RegionActionMenu })
	_, ok := selection.NewCapturer(src).Capture()
	assert.False(t, ok)

	area.Select(3, 3)
	_, ok = NewComposerSource(area, nil).Selection()
	assert.False(t, ok, "a bare cursor is not a selection")
}

func TestConversationListFilterAndIndex(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update([]inbox.Summary{
		{ID: "1", Participant: "Luis - Github", Preview: "refund please"},
		{ID: "2", Participant: "Ivan - Nike", Preview: "Can I get a receipt?", Unread: true},
	})
	assert.Equal(t, "1", cl.ThreadByIndex(1))
	assert.Equal(t, "2", cl.ThreadByIndex(2))
	assert.Empty(t, cl.ThreadByIndex(3))

	cl.SetFilter("RECEIPT")
	assert.Equal(t, "2", cl.ThreadByIndex(1))
	assert.Empty(t, cl.ThreadByIndex(2))

	cl.ClearFilter()
	cl.Focus("2")
	assert.Equal(t, "2", cl.SelectedThread())
}

func TestMessageThreadKeepsComposerForSameThread(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	th := &inbox.Thread{ID: "1", Participant: inbox.Participant{Name: "Luis"},
		Messages: []inbox.Message{{Sender: inbox.Customer, Text: "hi"}}}
	mt.Update(th)
	mt.Composer().SetText("draft", false)

	mt.Update(th)
	assert.Equal(t, "draft", mt.Composer().GetText())
	assert.Contains(t, mt.Messages().GetText(true), "hi")

	mt.Update(&inbox.Thread{ID: "2", Participant: inbox.Participant{Name: "Ivan"}})
	assert.Empty(t, mt.Composer().GetText())
}

func TestMessageThreadSend(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	var sent string
	mt.SetOnSend(func(text string) { sent = text })
	mt.Composer().SetText("Thanks!", false)

	mt.Send()
	assert.Equal(t, "Thanks!", sent)
	assert.Empty(t, mt.Composer().GetText())
}

func TestSanitizeForTerminal(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeForTerminal("a\tb\nc"))
	assert.Equal(t, "bell", sanitizeForTerminal("be\x07ll\x1b"))
	assert.Equal(t, "👍", sanitizeForTerminal("👍\U0001F3FB"))
	assert.Equal(t, "❤", sanitizeForTerminal("❤️"))
}
