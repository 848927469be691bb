package ui

import (
	"strings"
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPages(names ...string) *Pages {
	p := NewPages()
	for _, n := range names {
		p.AddPage(n, tview.NewBox(), true, false)
	}
	return p
}

func TestPagesPopKeepsRoot(t *testing.T) {
	p := newTestPages("main", "help")
	p.Reset("main")

	assert.Equal(t, "", p.Pop())
	assert.True(t, p.Push("help"))
	assert.Equal(t, "help", p.Pop())
	assert.Equal(t, []string{"main"}, p.Stack())
}

func TestPagesPushUnwindsToExistingPage(t *testing.T) {
	p := newTestPages("main", "details", "help")
	p.Reset("main")
	var seen [][]string
	p.SetOnChange(func(stack []string) { seen = append(seen, stack) })

	p.Push("details")
	p.Push("help")
	assert.False(t, p.Push("help"))
	assert.True(t, p.Push("details"))

	assert.Equal(t, []string{"main", "details"}, p.Stack())
	require.Len(t, seen, 3)
	assert.Equal(t, []string{"main", "details", "help"}, seen[1])
}

func TestPagesOverlayKeepsUnderlyingVisible(t *testing.T) {
	p := newTestPages("main", "actions")
	p.Reset("main")

	p.Overlay("actions")
	assert.Equal(t, "actions", p.Current())
	assert.True(t, p.HasPage("main"))
	name, _ := p.GetFrontPage()
	assert.Equal(t, "actions", name)
}

func TestMenuLaysHintsOutInColumns(t *testing.T) {
	m := NewMenu(DefaultTheme())
	m.Update([]MenuHint{
		{Key: "enter", Description: "open"},
		{Key: "/", Description: "filter"},
		{Key: "r", Description: "reply"},
		{Key: "d", Description: "details"},
		{Key: "?", Description: "help"},
		{Key: "1-9", Description: "jump", Numeric: true},
	})

	lines := strings.Split(strings.TrimRight(m.GetText(true), "\n"), "\n")
	require.Len(t, lines, menuRows)
	assert.True(t, strings.HasPrefix(lines[0], "<enter> open"))
	assert.True(t, strings.HasSuffix(lines[0], "<1-9> jump"))
	assert.Equal(t, "</> filter", lines[1])

	second := strings.Index(lines[0], "<1-9>")
	assert.Equal(t, hintWidth(MenuHint{Key: "enter", Description: "open"})+3, second)
}

func TestMenuEmpty(t *testing.T) {
	m := NewMenu(DefaultTheme())
	m.Update(nil)
	assert.Empty(t, strings.TrimSpace(m.GetText(true)))
}

func TestCrumbsTruncateLongNames(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	long := "Maria Aparecida dos Santos Oliveira"
	c.Update([]string{"Inbox", long})

	text := c.GetText(true)
	assert.Contains(t, text, "Inbox")
	assert.NotContains(t, text, long)
	assert.Contains(t, text, truncate(long, crumbWidth))
	assert.Len(t, []rune(truncate(long, crumbWidth)), crumbWidth)
}

func TestLogoTaglineFollowsUnread(t *testing.T) {
	l := NewLogo(DefaultTheme())
	assert.Contains(t, l.GetText(true), "all caught up")

	l.SetUnread(3)
	assert.Contains(t, l.GetText(true), "3 waiting")
	assert.NotContains(t, l.GetText(true), "all caught up")

	l.SetUnread(0)
	assert.Contains(t, l.GetText(true), "all caught up")
}
