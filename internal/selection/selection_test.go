package selection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixedSource struct {
	raw RawSelection
	ok  bool
}

func (f fixedSource) Selection() (RawSelection, bool) { return f.raw, f.ok }

func TestCapture(t *testing.T) {
	tests := []struct {
		name string
		src  fixedSource
		want bool
	}{
		{"plain", fixedSource{RawSelection{Text: "hello", Start: 0, End: 5, Region: "composer"}, true}, true},
		{"nothing selected", fixedSource{ok: false}, false},
		{"empty", fixedSource{RawSelection{Text: ""}, true}, false},
		{"whitespace", fixedSource{RawSelection{Text: " \n\t", End: 3}, true}, false},
		{"inside menu", fixedSource{RawSelection{Text: "Polish", End: 6, Region: RegionActionMenu}, true}, false},
		{"bad offsets", fixedSource{RawSelection{Text: "x", Start: 4, End: 2}, true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := NewCapturer(tt.src).Capture()
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, tt.src.raw.Text, span.Text)
			}
		})
	}
}

func TestCaptureCustomExclusions(t *testing.T) {
	src := fixedSource{RawSelection{Text: "hi", End: 2, Region: "history"}, true}
	_, ok := NewCapturer(src, "history").Capture()
	assert.False(t, ok)

	menu := fixedSource{RawSelection{Text: "hi", End: 2, Region: RegionActionMenu}, true}
	_, ok = NewCapturer(menu, "history").Capture()
	assert.True(t, ok, "explicit exclusions replace the default")
}

func TestParseAction(t *testing.T) {
	for _, k := range Actions() {
		got, err := ParseAction(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Label())
	}
	_, err := ParseAction("shout")
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Len(t, Actions(), 9)
}

func TestInstruction(t *testing.T) {
	p, err := Instruction(Translate, "hola", Options{Language: "French"})
	require.NoError(t, err)
	assert.Contains(t, p, "into French")
	assert.True(t, strings.HasSuffix(p, "Text:\nhola"))

	p, err = Instruction(Translate, "hola", Options{})
	require.NoError(t, err)
	assert.Contains(t, p, "into English")

	_, err = Instruction(CustomTone, "x", Options{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	p, err = Instruction(CustomTone, "x", Options{Tone: "cheerful pirate"})
	require.NoError(t, err)
	assert.Contains(t, p, "cheerful pirate")
}

type recordingGateway struct {
	reply  gateway.Reply
	err    error
	prompt string
	msgs   []inbox.Message
}

func (g *recordingGateway) Ask(_ context.Context, prompt string, msgs []inbox.Message) (gateway.Reply, error) {
	g.prompt, g.msgs = prompt, msgs
	return g.reply, g.err
}

func TestBrokerApply(t *testing.T) {
	g := &recordingGateway{reply: gateway.Reply{Text: "  Hello there!  "}}
	b := NewBroker(g, zaptest.NewLogger(t))
	msgs := []inbox.Message{{Sender: inbox.Customer, Text: "hi"}}

	out, err := b.Apply(context.Background(), Span{Text: "hey", End: 3}, Friendly, msgs, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", out)
	assert.Contains(t, g.prompt, "friendlier")
	assert.Contains(t, g.prompt, "hey")
	assert.Equal(t, msgs, g.msgs)
}

func TestBrokerApplyErrors(t *testing.T) {
	gwErr := &gateway.Error{Kind: gateway.KindUpstream, Backend: "stub", Err: errors.New("500")}
	b := NewBroker(&recordingGateway{err: gwErr}, nil)
	ctx := context.Background()

	_, err := b.Apply(ctx, Span{Text: "x", End: 1}, Polish, nil, Options{})
	var target *gateway.Error
	require.ErrorAs(t, err, &target)
	assert.Equal(t, gateway.KindUpstream, target.Kind)

	_, err = b.Apply(ctx, Span{Text: "  "}, Polish, nil, Options{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = b.Apply(ctx, Span{Text: "x", End: 1}, "shout", nil, Options{})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSplice(t *testing.T) {
	buf := "Hi there, thanks for waiting."
	span := Span{Text: "there", Start: 3, End: 8}

	out, cursor, err := Splice(buf, span, "Luis")
	require.NoError(t, err)
	assert.Equal(t, "Hi Luis, thanks for waiting.", out)
	assert.Equal(t, 7, cursor)

	_, _, err = Splice("changed buffer", span, "Luis")
	require.ErrorIs(t, err, ErrStaleSpan)
	_, _, err = Splice("short", Span{Text: "x", Start: 9, End: 10}, "y")
	require.ErrorIs(t, err, ErrStaleSpan)
}

func TestFormat(t *testing.T) {
	buf := "line one\nsome text here"
	span := Span{Text: "text", Start: 14, End: 18}

	tests := []struct {
		style  Style
		want   string
		cursor int
	}{
		{Bold, "line one\nsome **text** here", 22},
		{Italic, "line one\nsome *text* here", 20},
		{Code, "line one\nsome `text` here", 20},
		{Heading1, "line one\n# some text here", 11},
		{Heading2, "line one\n## some text here", 12},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			out, cursor, err := Format(buf, span, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.cursor, cursor)
		})
	}
}

func TestFormatFirstLineHeading(t *testing.T) {
	out, cursor, err := Format("title", Span{Text: "it", Start: 1, End: 3}, Heading1)
	require.NoError(t, err)
	assert.Equal(t, "# title", out)
	assert.Equal(t, 2, cursor)
}

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"bold", "italic", "code", "h1", "h2"} {
		_, err := ParseStyle(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseStyle("underline")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
