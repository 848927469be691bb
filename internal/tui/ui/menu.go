package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/tview"
)

// menuRows matches the header height minus its top line.
const menuRows = 5

// Menu lists the focused pane's keys in columns of menuRows.
type Menu struct {
	*tview.TextView
	theme *Theme
}

func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	if len(hints) == 0 {
		return
	}

	cols := (len(hints) + menuRows - 1) / menuRows
	widths := make([]int, cols)
	for i, h := range hints {
		widths[i/menuRows] = max(widths[i/menuRows], hintWidth(h))
	}

	var b strings.Builder
	for row := range min(menuRows, len(hints)) {
		for col := range cols {
			i := col*menuRows + row
			if i >= len(hints) {
				break
			}
			h := hints[i]
			kc := ColorName(m.theme.MenuKeyColor)
			if h.Numeric {
				kc = ColorName(m.theme.NumericKeyColor)
			}
			fmt.Fprintf(&b, "[%s::b]<%s>[-:-:-] %s", kc, tview.Escape(h.Key), tview.Escape(h.Description))
			if col < cols-1 && i+menuRows < len(hints) {
				b.WriteString(strings.Repeat(" ", widths[col]-hintWidth(h)+3))
			}
		}
		b.WriteByte('\n')
	}
	_, _ = fmt.Fprint(m, b.String())
}

// hintWidth is the printed width of "<key> description".
func hintWidth(h MenuHint) int {
	return utf8.RuneCountInString(h.Key) + utf8.RuneCountInString(h.Description) + 3
}
