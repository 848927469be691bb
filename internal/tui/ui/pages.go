package ui

import (
	"slices"

	"github.com/rivo/tview"
)

// Pages keeps the console's page stack. The first page is the root and is
// never popped; details, help and the refine menu stack on top of it.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
	}
}

// SetOnChange registers fn to run with a copy of the stack after each change.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name over the current page and hides the latter. A page that is
// already on the stack is unwound to instead of stacked twice. It reports
// whether the top changed.
func (p *Pages) Push(name string) bool {
	if i := slices.Index(p.stack, name); i >= 0 {
		return p.unwind(i)
	}
	if top := p.Current(); top != "" {
		p.HidePage(top)
	}
	p.show(name)
	return true
}

// Overlay is Push without hiding the page underneath, for modals.
func (p *Pages) Overlay(name string) bool {
	if i := slices.Index(p.stack, name); i >= 0 {
		return p.unwind(i)
	}
	p.show(name)
	return true
}

// Pop removes the top page unless it is the root and returns its name.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.unwind(len(p.stack) - 2)
	return top
}

func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

func (p *Pages) Stack() []string {
	return slices.Clone(p.stack)
}

// Reset makes name the only page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = p.stack[:0]
	p.show(name)
}

func (p *Pages) show(name string) {
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// unwind pops every page above index i.
func (p *Pages) unwind(i int) bool {
	if i == len(p.stack)-1 {
		return false
	}
	for _, n := range p.stack[i+1:] {
		p.HidePage(n)
	}
	p.stack = p.stack[:i+1]
	top := p.stack[i]
	p.ShowPage(top)
	p.SendToFront(top)
	p.notify()
	return true
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
