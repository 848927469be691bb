package ui

// MenuHint is one key shown in the header menu.
type MenuHint struct {
	Key         string
	Description string
	// Numeric marks digit shortcuts such as thread jumps.
	Numeric bool
}

// Pane is a focusable part of the console. Name labels it in the crumb
// bar; Hints fills the header menu while it has focus.
type Pane interface {
	Name() string
	Hints() []MenuHint
}
