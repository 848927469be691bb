// Package reveal turns a finished answer into a timed sequence of growing
// prefixes for progressive display.
package reveal

import (
	"iter"
	"strings"
	"time"
	"unicode/utf8"
)

// Separator joins paragraphs.
const Separator = "\n\n"

// Granularity is the unit revealed per step.
type Granularity string

const (
	Character Granularity = "character"
	Paragraph Granularity = "paragraph"
)

// ParseGranularity accepts "character" or "paragraph"; "" means character.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(s) {
	case "", Character:
		return Character, true
	case Paragraph:
		return Paragraph, true
	}
	return "", false
}

// Pacing controls step delays.
type Pacing struct {
	PerChar      time.Duration
	PerParagraph time.Duration
	// Ceiling bounds the total reveal time regardless of text length.
	Ceiling time.Duration
	// MinStep is the shortest delay worth a redraw. Faster rates reveal
	// several runes per step instead.
	MinStep time.Duration
}

// DefaultPacing reveals about fifty runes a second and never takes longer
// than four seconds.
var DefaultPacing = Pacing{
	PerChar:      20 * time.Millisecond,
	PerParagraph: 400 * time.Millisecond,
	Ceiling:      4 * time.Second,
	MinStep:      16 * time.Millisecond,
}

// Frame is one step of a reveal: wait Delay, then show Text.
type Frame struct {
	Text  string
	Delay time.Duration
	Final bool
	// Run identifies the Slot run that produced the frame. Zero outside a
	// Slot.
	Run uint64
}

// Segment splits text into paragraphs on blank lines. Paragraphs holding
// only whitespace are dropped.
func Segment(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, Separator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "\n")
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Schedule lazily yields the reveal of chunks. Every frame extends the
// previous one and the last equals strings.Join(chunks, Separator). An
// empty chunks slice yields nothing.
func Schedule(chunks []string, g Granularity, p Pacing) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		if len(chunks) == 0 {
			return
		}
		full := strings.Join(chunks, Separator)
		if g == Paragraph {
			paragraphs(full, chunks, p, yield)
			return
		}
		characters(full, p, yield)
	}
}

func paragraphs(full string, chunks []string, p Pacing, yield func(Frame) bool) {
	delay := p.PerParagraph
	if exceeds(delay, len(chunks), p.Ceiling) {
		delay = p.Ceiling / time.Duration(len(chunks))
	}
	end := 0
	for i, c := range chunks {
		if i > 0 {
			end += len(Separator)
		}
		end += len(c)
		if !yield(Frame{Text: full[:end], Delay: delay, Final: i == len(chunks)-1}) {
			return
		}
	}
}

func characters(full string, p Pacing, yield func(Frame) bool) {
	total := utf8.RuneCountInString(full)
	if total == 0 {
		yield(Frame{Text: full, Final: true})
		return
	}
	batch, delay := charStep(total, p)

	end, n := 0, 0
	for end < len(full) {
		_, size := utf8.DecodeRuneInString(full[end:])
		end += size
		n++
		// A step never stops on a newline, so separators appear together
		// with the text that follows them.
		if end < len(full) && (n < batch || full[end-size] == '\n') {
			continue
		}
		if !yield(Frame{Text: full[:end], Delay: delay, Final: end == len(full)}) {
			return
		}
		n = 0
	}
}

// charStep returns how many runes each step reveals and the delay before
// each step, keeping the total under the ceiling.
func charStep(total int, p Pacing) (int, time.Duration) {
	per := p.PerChar
	if exceeds(per, total, p.Ceiling) {
		per = p.Ceiling / time.Duration(total)
	}
	batch := 1
	if p.MinStep > 0 && per < p.MinStep {
		if per <= 0 {
			batch = total
		} else {
			batch = int((p.MinStep + per - 1) / per)
		}
	}
	steps := (total + batch - 1) / batch
	delay := per * time.Duration(batch)
	if exceeds(delay, steps, p.Ceiling) {
		delay = p.Ceiling / time.Duration(steps)
	}
	return batch, delay
}

// exceeds reports whether n steps of d run past ceiling. It divides rather
// than multiplies so huge n cannot overflow.
func exceeds(d time.Duration, n int, ceiling time.Duration) bool {
	return ceiling > 0 && n > 0 && d > ceiling/time.Duration(n)
}
