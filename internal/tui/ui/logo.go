package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo is the header mark. Its tagline tracks how many conversations wait
// on the agent.
type Logo struct {
	*tview.TextView
	theme  *Theme
	unread int
}

func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	l := &Logo{
		TextView: tv,
		theme:    theme,
	}
	l.render()
	return l
}

// SetUnread redraws the tagline when the count changes.
func (l *Logo) SetUnread(n int) {
	if n == l.unread {
		return
	}
	l.unread = n
	l.render()
}

func (l *Logo) render() {
	l.Clear()
	title := ColorName(l.theme.TitleColor)
	_, _ = fmt.Fprintf(l,
		"[%s::b] ╦╔╗╔╔╗ ╔═╗═╗ ╦[-:-:-]\n"+
			"[%s::b] ║║║║╠╩╗║ ║╔╩╦╝[-:-:-]\n"+
			"[%s::b] ╩╝╚╝╚═╝╚═╝╩ ╚═[-:-:-]\n"+
			"%s",
		title, title, title, l.tagline(),
	)
}

func (l *Logo) tagline() string {
	if l.unread == 0 {
		return fmt.Sprintf("[%s] all caught up[-:-:-]", ColorName(l.theme.FgColor))
	}
	return fmt.Sprintf("[%s::b] %d waiting[-:-:-]", ColorName(l.theme.NumericKeyColor), l.unread)
}
