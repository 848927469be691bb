package views

import (
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/rivo/tview"
)

// RegionComposer names the reply composer for selection filtering.
const RegionComposer = "composer"

// ComposerSource reports the text selected in a TextArea. The region
// callback tells which part of the screen has focus, so selections are
// ignored while the action menu is open.
type ComposerSource struct {
	area   *tview.TextArea
	region func() string
}

// NewComposerSource wraps area. A nil region always reports the composer.
func NewComposerSource(area *tview.TextArea, region func() string) *ComposerSource {
	if region == nil {
		region = func() string { return RegionComposer }
	}
	return &ComposerSource{area: area, region: region}
}

// Selection implements selection.Source.
func (cs *ComposerSource) Selection() (selection.RawSelection, bool) {
	text, start, end := cs.area.GetSelection()
	if text == "" {
		return selection.RawSelection{}, false
	}
	x, y, w, h := cs.area.GetInnerRect()
	return selection.RawSelection{
		Text:   text,
		Start:  start,
		End:    end,
		Anchor: selection.Rect{X: x, Y: y, Width: w, Height: h},
		Region: cs.region(),
	}, true
}
