package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestActionMatches(t *testing.T) {
	plain := &Action{Key: tcell.KeyRune, Rune: 'q'}
	alt := &Action{Key: tcell.KeyRune, Rune: 'b', Mod: tcell.ModAlt}
	ctrl := &Action{Key: tcell.KeyCtrlS}

	assert.True(t, plain.Matches(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, plain.Matches(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.True(t, alt.Matches(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModAlt)))
	assert.False(t, alt.Matches(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone)))
	assert.True(t, ctrl.Matches(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)))
}

func TestRegistryViewBeforeGlobal(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "q:quit", Visible: true,
		Handler: func() { got = "global" }})
	r.AddView("thread", "quiet", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "q:back", Visible: true,
		Handler: func() { got = "view" }})

	assert.True(t, r.HandleEvent("thread", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.Equal(t, "view", got)
	assert.True(t, r.HandleEvent("inbox", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.Equal(t, "global", got)
	assert.False(t, r.HandleEvent("inbox", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)))

	assert.Equal(t, []string{"q:back", "q:quit"}, r.Hints("thread"))
}

func TestRegistryReplacesByName(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.AddGlobal("help", &Action{Key: tcell.KeyRune, Rune: '?', Handler: func() { calls = 1 }})
	r.AddGlobal("help", &Action{Key: tcell.KeyRune, Rune: '?', Handler: func() { calls = 2 }})

	r.HandleEvent("", tcell.NewEventKey(tcell.KeyRune, '?', tcell.ModNone))
	assert.Equal(t, 2, calls)
}
