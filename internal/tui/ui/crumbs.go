package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// crumbWidth caps a label; participant names can be long.
const crumbWidth = 24

// Crumbs shows where the agent is: the inbox, the open conversation, then
// any page pushed over it.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders labels left to right; the last one is highlighted.
func (c *Crumbs) Update(labels []string) {
	c.Clear()
	last := len(labels) - 1
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == last {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]",
			ColorName(fg), ColorName(bg), attr, tview.Escape(truncate(label, crumbWidth))))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
