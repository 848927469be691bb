package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ActionMenu lists the refinement actions for a captured selection.
type ActionMenu struct {
	*tview.Flex
	theme    *ui.Theme
	list     *tview.List
	span     selection.Span
	onPick   func(selection.Span, selection.ActionKind)
	onCancel func()
}

// NewActionMenu creates the menu, centered in a modal frame.
func NewActionMenu(theme *ui.Theme) *ActionMenu {
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(theme.TableCursorBg).
		SetSelectedTextColor(theme.TableCursorFg).
		SetMainTextColor(theme.FgColor).
		SetShortcutColor(theme.MenuKeyColor)
	list.SetBorder(true)
	list.SetBorderColor(theme.PromptBorderColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetTitle(" Refine selection ")
	list.SetTitleColor(theme.TitleColor)

	m := &ActionMenu{theme: theme, list: list}

	for i, kind := range selection.Actions() {
		list.AddItem(kind.Label(), string(kind), shortcut(i), func() {
			if m.onPick != nil {
				m.onPick(m.span, kind)
			}
		})
	}
	list.SetDoneFunc(func() {
		if m.onCancel != nil {
			m.onCancel()
		}
	})
	list.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			if m.onCancel != nil {
				m.onCancel()
			}
			return nil
		}
		return ev
	})

	height := len(selection.Actions()) + 2
	m.Flex = tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(list, height, 0, true).
			AddItem(nil, 0, 1, false), 36, 0, true).
		AddItem(nil, 0, 1, false)
	return m
}

func shortcut(i int) rune {
	if i < 9 {
		return rune('1' + i)
	}
	return 0
}

// Name implements ui.Pane.
func (m *ActionMenu) Name() string { return "Refine" }

// Hints implements ui.Pane.
func (m *ActionMenu) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Apply"},
		{Key: "1-9", Description: "Pick", Numeric: true},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Open shows the menu for span.
func (m *ActionMenu) Open(span selection.Span) {
	m.span = span
	m.list.SetCurrentItem(0)
}

// List returns the focusable list.
func (m *ActionMenu) List() *tview.List {
	return m.list
}

// SetOnPick sets the callback for a chosen action.
func (m *ActionMenu) SetOnPick(fn func(selection.Span, selection.ActionKind)) {
	m.onPick = fn
}

// SetOnCancel sets the callback for Esc.
func (m *ActionMenu) SetOnCancel(fn func()) {
	m.onCancel = fn
}
