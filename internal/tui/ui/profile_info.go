package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ProfileData holds the header summary.
type ProfileData struct {
	Profile  string
	Provider string
	Threads  int
	Unread   int
	Pending  int
	Uptime   time.Duration
}

// ProfileInfo displays profile metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fg := ColorName(pi.theme.FgColor)
	counter := ColorName(pi.theme.CounterColor)

	provider := data.Provider
	if provider == "" {
		provider = "-"
	}

	_, _ = fmt.Fprintf(pi,
		"[%s::b]Profile:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Copilot:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Threads:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Unread:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Asking:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-]   [%s]%s[-]",
		fg, counter, data.Profile,
		fg, counter, provider,
		fg, counter, data.Threads,
		fg, counter, data.Unread,
		fg, counter, data.Pending,
		fg, counter, formatDuration(data.Uptime),
	)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
