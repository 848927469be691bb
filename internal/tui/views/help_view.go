package views

import (
	"fmt"

	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.Pane.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements ui.Pane.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	key := func(k string) string { return fmt.Sprintf("[%s]%s[-:-:-]", kc, k) }

	_, _ = fmt.Fprintf(hv, `
  [::b]Global Keys[-:-:-]

  %s       Command mode         %s     Cancel / Go back
  %s       Filter conversations %s       Help
  %s     Next pane            %s  Quit immediately

  [::b]Inbox[-:-:-]

  %s   Open conversation    %s     Jump to Nth conversation
  %s  Move down            %s    Move up

  [::b]Conversation[-:-:-]

  %s       Focus reply composer %s       Ask the copilot
  %s       Details              %s       Clear copilot history
  %s  Send reply (composer)

  [::b]Composer[-:-:-]

  %s  Select text          %s   Refine selection
  %s   Bold                 %s   Italic
  %s   Inline code          %s / %s  Heading 1 / 2

  [::b]Commands (: mode)[-:-:-]

  %s     Ask the copilot
  %s   Append a reply to the open conversation
  %s    Open conversation by name
  %s             Clear copilot history
  %s / %s        Show this help
  %s / %s        Quit application
`,
		key(":"), key("Esc"),
		key("/"), key("?"),
		key("Tab"), key("Ctrl-C"),
		key("Enter"), key("1-9"),
		key("j/Down"), key("k/Up"),
		key("i"), key("a"),
		key("d"), key("x"),
		key("Ctrl-S"),
		key("Shift+arrows"), key("Alt-r"),
		key("Alt-b"), key("Alt-i"),
		key("Alt-c"), key("Alt-1"), key("Alt-2"),
		key(":ask <question>"),
		key(":reply <text>"),
		key(":open <name>"),
		key(":clear"),
		key(":help"), key(":h"),
		key(":quit"), key(":q"),
	)
}
