// Package selection captures text selections and turns them into refinement
// requests for the gateway. It never edits the caller's buffers; the helpers
// in edit.go return new text instead.
package selection

import "strings"

// RegionActionMenu is the region of the action menu itself. Selections
// inside it are ignored.
const RegionActionMenu = "action-menu"

// Rect is a screen rectangle in cells, used to place the action menu.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Span is an active selection. Start and End are byte offsets into the
// buffer the selection was made in.
type Span struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Anchor Rect   `json:"anchor"`
}

// RawSelection is what a toolkit reports before filtering.
type RawSelection struct {
	Text   string
	Start  int
	End    int
	Anchor Rect
	// Region names the part of the screen holding the selection.
	Region string
}

// Source is implemented once per UI toolkit.
type Source interface {
	Selection() (RawSelection, bool)
}

// Capturer filters a Source down to actionable spans.
type Capturer struct {
	source   Source
	excluded map[string]struct{}
}

// NewCapturer returns a capturer ignoring the given regions, or the action
// menu when none are given.
func NewCapturer(src Source, excluded ...string) *Capturer {
	if len(excluded) == 0 {
		excluded = []string{RegionActionMenu}
	}
	c := &Capturer{source: src, excluded: make(map[string]struct{}, len(excluded))}
	for _, r := range excluded {
		c.excluded[r] = struct{}{}
	}
	return c
}

// Capture returns the current selection, or false when there is nothing to
// act on.
func (c *Capturer) Capture() (Span, bool) {
	raw, ok := c.source.Selection()
	if !ok || strings.TrimSpace(raw.Text) == "" {
		return Span{}, false
	}
	if _, skip := c.excluded[raw.Region]; skip {
		return Span{}, false
	}
	if raw.Start < 0 || raw.End < raw.Start {
		return Span{}, false
	}
	return Span{Text: raw.Text, Start: raw.Start, End: raw.End, Anchor: raw.Anchor}, true
}
