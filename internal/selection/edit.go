package selection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStaleSpan means the buffer changed since the span was captured.
var ErrStaleSpan = errors.New("selection no longer matches the buffer")

// Style is a markdown formatting command.
type Style string

const (
	Bold     Style = "bold"
	Italic   Style = "italic"
	Code     Style = "code"
	Heading1 Style = "h1"
	Heading2 Style = "h2"
)

var wraps = map[Style]string{
	Bold:   "**",
	Italic: "*",
	Code:   "`",
}

var headings = map[Style]string{
	Heading1: "# ",
	Heading2: "## ",
}

// ParseStyle validates a style name.
func ParseStyle(s string) (Style, error) {
	st := Style(s)
	if _, ok := wraps[st]; ok {
		return st, nil
	}
	if _, ok := headings[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown style %q", ErrInvalidRequest, s)
}

func check(buffer string, span Span) error {
	if span.Start < 0 || span.End < span.Start || span.End > len(buffer) || buffer[span.Start:span.End] != span.Text {
		return ErrStaleSpan
	}
	return nil
}

// Splice replaces the span in buffer. It returns the new buffer and the
// cursor offset just after the replacement.
func Splice(buffer string, span Span, replacement string) (string, int, error) {
	if err := check(buffer, span); err != nil {
		return buffer, 0, err
	}
	out := buffer[:span.Start] + replacement + buffer[span.End:]
	return out, span.Start + len(replacement), nil
}

// Format applies a markdown style to the span. Inline styles wrap the
// selection; headings prefix the line the selection starts on.
func Format(buffer string, span Span, style Style) (string, int, error) {
	if err := check(buffer, span); err != nil {
		return buffer, 0, err
	}
	if mark, ok := wraps[style]; ok {
		return Splice(buffer, span, mark+span.Text+mark)
	}
	prefix, ok := headings[style]
	if !ok {
		return buffer, 0, fmt.Errorf("%w: unknown style %q", ErrInvalidRequest, style)
	}
	lineStart := strings.LastIndexByte(buffer[:span.Start], '\n') + 1
	out := buffer[:lineStart] + prefix + buffer[lineStart:]
	return out, lineStart + len(prefix), nil
}
