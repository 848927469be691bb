package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/reveal"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/tui/client"
	"github.com/matheus3301/inbox/internal/tui/keys"
	"github.com/matheus3301/inbox/internal/tui/model"
	"github.com/matheus3301/inbox/internal/tui/ui"
	"github.com/matheus3301/inbox/internal/tui/views"
	"github.com/rivo/tview"
)

const (
	pageMain    = "main"
	pageDetails = "details"
	pageHelp    = "help"
	pageActions = "actions"

	// Registry scopes for the main page, by focused pane.
	viewInbox    = "inbox"
	viewThread   = "thread"
	viewComposer = "composer"
	viewCopilot  = "copilot"
)

// Options configures the console.
type Options struct {
	Profile     string
	Provider    string
	Granularity reveal.Granularity
	Pacing      reveal.Pacing
}

// pendingRefine is an action waiting for its option value.
type pendingRefine struct {
	span selection.Span
	kind selection.ActionKind
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	vm       *model.ViewModel
	registry *keys.Registry
	opts     Options
	started  time.Time

	info    *ui.ProfileInfo
	logo    *ui.Logo
	menu    *ui.Menu
	crumbs  *ui.Crumbs
	flash   *ui.FlashBar
	prompt  *ui.Prompt
	body    *tview.Flex
	threads *views.ConversationList
	thread  *views.MessageThread
	copilot *views.CopilotPane
	details *views.ConversationInfo
	help    *views.HelpView
	actions *views.ActionMenu

	capturer      *selection.Capturer
	promptVisible bool
	pending       *pendingRefine

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		pages:    ui.NewPages(),
		vm:       model.NewViewModel(c),
		registry: keys.NewRegistry(),
		opts:     opts,
		started:  time.Now(),
		info:     ui.NewProfileInfo(theme),
		logo:     ui.NewLogo(theme),
		menu:     ui.NewMenu(theme),
		crumbs:   ui.NewCrumbs(theme),
		flash:    ui.NewFlashBar(theme),
		prompt:   ui.NewPrompt(theme),
		threads:  views.NewConversationList(theme),
		thread:   views.NewMessageThread(theme),
		details:  views.NewConversationInfo(theme),
		help:     views.NewHelpView(theme),
		actions:  views.NewActionMenu(theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.copilot = views.NewCopilotPane(theme, opts.Granularity, opts.Pacing, func(f func()) {
		a.app.QueueUpdateDraw(f)
	})
	a.capturer = selection.NewCapturer(views.NewComposerSource(a.thread.Composer(), a.focusedRegion))

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "q:quit", Visible: true,
		Handler: func() {
			if a.pages.Current() == pageMain {
				a.Stop()
				return
			}
			a.back()
		},
	})
	a.registry.AddGlobal("command", &keys.Action{
		Key: tcell.KeyRune, Rune: ':',
		Description: "::command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal("filter", &keys.Action{
		Key: tcell.KeyRune, Rune: '/',
		Description: "/:filter", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Key: tcell.KeyRune, Rune: '?',
		Description: "?:help", Visible: true,
		Handler: func() { a.push(pageHelp, a.help) },
	})

	for i := 1; i <= 9; i++ {
		n := i
		a.registry.AddView(viewInbox, "jump"+string(rune('0'+n)), &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n),
			Handler: func() {
				if id := a.threads.ThreadByIndex(n); id != "" {
					a.threads.Focus(id)
					a.openThread(id, true)
				}
			},
		})
	}
	a.registry.AddView(viewInbox, "down", &keys.Action{
		Key: tcell.KeyRune, Rune: 'j',
		Handler: func() { a.moveCursor(1) },
	})
	a.registry.AddView(viewInbox, "up", &keys.Action{
		Key: tcell.KeyRune, Rune: 'k',
		Handler: func() { a.moveCursor(-1) },
	})

	for _, view := range []string{viewThread, viewCopilot} {
		a.registry.AddView(view, "compose", &keys.Action{
			Key: tcell.KeyRune, Rune: 'i',
			Description: "i:reply", Visible: true,
			Handler: a.focusComposer,
		})
		a.registry.AddView(view, "ask", &keys.Action{
			Key: tcell.KeyRune, Rune: 'a',
			Description: "a:ask", Visible: true,
			Handler: func() { a.showPrompt(ui.PromptAsk) },
		})
		a.registry.AddView(view, "details", &keys.Action{
			Key: tcell.KeyRune, Rune: 'd',
			Description: "d:details", Visible: true,
			Handler: a.showDetails,
		})
		a.registry.AddView(view, "clear", &keys.Action{
			Key: tcell.KeyRune, Rune: 'x',
			Description: "x:clear copilot", Visible: true,
			Handler: a.clearCopilot,
		})
	}

	a.registry.AddView(viewComposer, "send", &keys.Action{
		Key: tcell.KeyCtrlS, Description: "Ctrl-S:send", Visible: true,
		Handler: a.thread.Send,
	})
	a.registry.AddView(viewComposer, "refine", &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Mod: tcell.ModAlt,
		Description: "Alt-r:refine", Visible: true,
		Handler: a.openActions,
	})
	styles := []struct {
		r     rune
		style selection.Style
	}{
		{'b', selection.Bold},
		{'i', selection.Italic},
		{'c', selection.Code},
		{'1', selection.Heading1},
		{'2', selection.Heading2},
	}
	for _, s := range styles {
		style := s.style
		a.registry.AddView(viewComposer, "format-"+string(style), &keys.Action{
			Key: tcell.KeyRune, Rune: s.r, Mod: tcell.ModAlt,
			Handler: func() { a.format(style) },
		})
	}
}

func (a *App) setupCallbacks() {
	a.threads.SetSelectedFunc(func(row, _ int) {
		if id := a.threads.ThreadByIndex(row); id != "" {
			a.openThread(id, true)
		}
	})

	a.thread.SetOnSend(a.reply)

	a.copilot.SetOnRevealed(func(threadID, entryID string) {
		go func() {
			if err := a.vm.MarkRevealed(a.ctx, threadID, entryID); err != nil && a.ctx.Err() == nil {
				a.vm.Flash.Err(err)
			}
		}()
	})

	a.actions.SetOnPick(func(span selection.Span, kind selection.ActionKind) {
		a.back()
		switch kind {
		case selection.Translate:
			a.pending = &pendingRefine{span: span, kind: kind}
			a.showValuePrompt("Translate to", "English")
		case selection.CustomTone:
			a.pending = &pendingRefine{span: span, kind: kind}
			a.showValuePrompt("Tone of voice", "e.g. calm, concise and warm")
		default:
			a.refine(span, kind, selection.Options{})
		}
	})
	a.actions.SetOnCancel(a.back)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.execCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.threads.SetFilter(text)
		case ui.PromptAsk:
			a.ask(text)
		case ui.PromptValue:
			p := a.pending
			a.pending = nil
			if p == nil {
				return
			}
			opts := selection.Options{Language: text}
			if p.kind == selection.CustomTone {
				opts = selection.Options{Tone: text}
			}
			a.refine(p.span, p.kind, opts)
		}
	})
	a.prompt.SetOnCancel(func() {
		a.pending = nil
		a.hidePrompt()
	})

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(a.crumbLabels(stack))
	})
}

func (a *App) setupLayout() {
	panes := tview.NewFlex().
		AddItem(a.threads, 0, 3, true).
		AddItem(a.thread, 0, 4, false).
		AddItem(a.copilot, 0, 3, false)

	a.pages.AddPage(pageMain, panes, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddPage(pageActions, a.actions, true, false)
	a.pages.Reset(pageMain)

	header := tview.NewFlex().
		AddItem(a.logo, 18, 0, false).
		AddItem(a.info, 0, 1, false).
		AddItem(a.menu, 0, 1, false)

	a.body = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flash, 1, 0, false)

	a.app.SetRoot(a.body, true)
	a.app.SetFocus(a.threads)
	a.app.SetInputCapture(a.handleKey)
	a.app.SetAfterDrawFunc(func(tcell.Screen) { a.menu.Update(a.hints()) })
	a.renderCopilot()
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if a.promptVisible {
		return ev
	}
	page := a.pages.Current()
	if page == pageActions {
		return ev
	}
	focus := a.app.GetFocus()
	inComposer := focus == a.thread.Composer()

	switch ev.Key() {
	case tcell.KeyEscape:
		switch {
		case page != pageMain:
			a.back()
		case inComposer:
			a.app.SetFocus(a.thread.Messages())
		case focus != a.threads:
			a.app.SetFocus(a.threads)
		case a.threads.Filter() != "":
			a.threads.ClearFilter()
		default:
			return ev
		}
		return nil
	case tcell.KeyTab:
		if page == pageMain {
			a.cycleFocus()
			return nil
		}
	}

	if inComposer {
		if a.registry.HandleEvent(viewComposer, ev) {
			return nil
		}
		return ev
	}
	if a.registry.HandleEvent(a.scope(), ev) {
		return nil
	}
	return ev
}

// scope names the registry view for the current focus.
func (a *App) scope() string {
	if page := a.pages.Current(); page != pageMain {
		return page
	}
	switch a.app.GetFocus() {
	case a.thread.Composer():
		return viewComposer
	case a.thread.Messages():
		return viewThread
	case a.copilot:
		return viewCopilot
	default:
		return viewInbox
	}
}

func (a *App) paneFor(scope string) ui.Pane {
	switch scope {
	case pageDetails:
		return a.details
	case pageHelp:
		return a.help
	case pageActions:
		return a.actions
	case viewThread, viewComposer:
		return a.thread
	case viewCopilot:
		return a.copilot
	default:
		return a.threads
	}
}

func (a *App) hints() []ui.MenuHint {
	return a.paneFor(a.scope()).Hints()
}

// focusedRegion feeds the selection capturer.
func (a *App) focusedRegion() string {
	if a.pages.Current() == pageActions {
		return selection.RegionActionMenu
	}
	if a.app.GetFocus() == a.thread.Composer() {
		return views.RegionComposer
	}
	return viewThread
}

func (a *App) cycleFocus() {
	order := []tview.Primitive{a.threads, a.thread.Messages(), a.thread.Composer(), a.copilot}
	focus := a.app.GetFocus()
	next := 0
	for i, p := range order {
		if p == focus {
			next = (i + 1) % len(order)
			break
		}
	}
	a.app.SetFocus(order[next])
}

func (a *App) moveCursor(delta int) {
	row, _ := a.threads.GetSelection()
	row += delta
	if id := a.threads.ThreadByIndex(row); id != "" {
		a.threads.Select(row, 0)
	}
}

func (a *App) focusComposer() {
	if a.vm.ActiveID() == "" {
		a.vm.Flash.Warn("Open a conversation first")
		return
	}
	a.app.SetFocus(a.thread.Composer())
}

func (a *App) push(page string, focus tview.Primitive) {
	if a.pages.Push(page) {
		a.app.SetFocus(focus)
	}
}

func (a *App) back() {
	if a.pages.Pop() == "" {
		return
	}
	if a.pages.Current() == pageMain {
		if a.vm.ActiveID() != "" {
			a.app.SetFocus(a.thread.Composer())
			if a.thread.Composer().GetText() == "" {
				a.app.SetFocus(a.thread.Messages())
			}
			return
		}
		a.app.SetFocus(a.threads)
	}
}

func (a *App) showDetails() {
	t := a.vm.Active()
	if t == nil {
		return
	}
	a.details.Update(t)
	a.push(pageDetails, a.details)
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.openPrompt()
}

func (a *App) showValuePrompt(title, placeholder string) {
	a.prompt.ActivateValue(title, placeholder)
	a.openPrompt()
}

func (a *App) openPrompt() {
	a.promptVisible = true
	a.body.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptVisible = false
	a.body.ResizeItem(a.prompt, 0, 0)
	if a.vm.ActiveID() != "" && a.pending == nil {
		a.app.SetFocus(a.thread.Messages())
		return
	}
	a.app.SetFocus(a.threads)
}

func (a *App) execCommand(cmd Command) {
	switch cmd.Canonical() {
	case "quit":
		a.Stop()
	case "help":
		a.push(pageHelp, a.help)
	case "ask":
		a.ask(cmd.Args)
	case "reply":
		a.reply(cmd.Args)
	case "clear":
		a.clearCopilot()
	case "open":
		for _, t := range a.vm.Threads() {
			if t.ID == cmd.Args || strings.Contains(strings.ToLower(t.Participant), strings.ToLower(cmd.Args)) {
				a.threads.Focus(t.ID)
				a.openThread(t.ID, true)
				return
			}
		}
		a.vm.Flash.Warn("No conversation matches " + cmd.Args)
	case "":
	default:
		a.vm.Flash.Warn("Unknown command: " + cmd.Name)
	}
}

func (a *App) crumbLabels(stack []string) []string {
	labels := make([]string, 0, len(stack)+1)
	for _, page := range stack {
		switch page {
		case pageMain:
			labels = append(labels, a.threads.Name())
			if t := a.vm.Active(); t != nil {
				labels = append(labels, t.Participant.Name)
			}
		default:
			labels = append(labels, a.paneFor(page).Name())
		}
	}
	return labels
}

// openThread selects id on the daemon and shows it with its copilot view.
func (a *App) openThread(id string, focus bool) {
	go func() {
		if err := a.vm.SelectThread(a.ctx, id); err != nil {
			a.vm.Flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.renderThread()
			a.renderCopilot()
			a.crumbs.Update(a.crumbLabels(a.pages.Stack()))
			if focus && a.pages.Current() == pageMain && !a.promptVisible {
				a.app.SetFocus(a.thread.Messages())
			}
		})
	}()
}

func (a *App) reply(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	go func() {
		if err := a.vm.Reply(a.ctx, text); err != nil {
			a.vm.Flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(a.renderThread)
	}()
}

func (a *App) ask(question string) {
	go func() {
		if err := a.vm.Ask(a.ctx, question); err != nil {
			a.vm.Flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(a.renderCopilot)
	}()
}

func (a *App) clearCopilot() {
	if a.vm.ActiveID() == "" {
		return
	}
	go func() {
		if err := a.vm.ClearCopilot(a.ctx); err != nil {
			a.vm.Flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(a.renderCopilot)
	}()
}

func (a *App) openActions() {
	span, ok := a.capturer.Capture()
	if !ok {
		a.vm.Flash.Warn("Select text in the reply first (Shift+arrows)")
		return
	}
	a.actions.Open(span)
	a.pages.Overlay(pageActions)
	a.app.SetFocus(a.actions.List())
}

// refine sends the action to the daemon and splices the result into the
// composer, unless the reply was edited in the meantime.
func (a *App) refine(span selection.Span, kind selection.ActionKind, opts selection.Options) {
	buffer := a.thread.Composer().GetText()
	threadID := a.vm.ActiveID()
	a.vm.Flash.Info(kind.Label() + "…")
	a.app.SetFocus(a.thread.Composer())

	go func() {
		resp, err := a.vm.Refine(a.ctx, buffer, span, kind, opts)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.vm.Flash.Err(err)
				return
			}
			if a.vm.ActiveID() != threadID || a.thread.Composer().GetText() != buffer {
				a.vm.Flash.Warn("Reply changed while refining, result discarded")
				return
			}
			a.thread.ReplaceBuffer(resp.Buffer, resp.Cursor)
			a.vm.Flash.Info(kind.Label() + " applied")
		})
	}()
}

func (a *App) format(style selection.Style) {
	span, ok := a.capturer.Capture()
	if !ok {
		a.vm.Flash.Warn("Select text in the reply first (Shift+arrows)")
		return
	}
	buf, cursor, err := selection.Format(a.thread.Composer().GetText(), span, style)
	if err != nil {
		a.vm.Flash.Err(err)
		return
	}
	a.thread.ReplaceBuffer(buf, cursor)
}

func (a *App) renderThread() {
	a.thread.Update(a.vm.Active())
	a.threads.Update(a.vm.Threads())
	a.renderHeader()
}

func (a *App) renderCopilot() {
	a.copilot.Update(a.vm.ActiveID(), a.vm.Entries())
	a.renderHeader()
}

func (a *App) renderHeader() {
	a.logo.SetUnread(a.vm.Unread())
	a.info.Update(&ui.ProfileData{
		Profile:  a.opts.Profile,
		Provider: a.opts.Provider,
		Threads:  len(a.vm.Threads()),
		Unread:   a.vm.Unread(),
		Pending:  a.vm.Pending(),
		Uptime:   time.Since(a.started),
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	go func() {
		if err := a.vm.LoadThreads(a.ctx); err != nil {
			a.vm.Flash.Err(err)
		}
		selected := a.vm.Selected()
		a.app.QueueUpdateDraw(func() {
			a.threads.Update(a.vm.Threads())
			a.threads.Focus(selected)
			a.renderHeader()
		})
		if selected != "" {
			a.openThread(selected, false)
		}
		a.watchEvents()
	}()
	go a.startRefreshLoop()

	return a.app.Run()
}

// watchEvents follows the daemon's event stream, reconnecting until the
// app stops.
func (a *App) watchEvents() {
	for a.ctx.Err() == nil {
		events, err := a.vm.Watch(a.ctx)
		if err != nil {
			a.vm.Flash.Err(err)
		} else {
			for evt := range events {
				a.handleEvent(evt)
			}
		}
		select {
		case <-a.ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (a *App) handleEvent(evt api.EventEnvelope) {
	active := a.vm.ActiveID()
	switch {
	case strings.HasPrefix(evt.Kind, "inbox."):
		if err := a.vm.LoadThreads(a.ctx); err != nil {
			return
		}
		if evt.ThreadID != "" && evt.ThreadID == active {
			_ = a.vm.RefreshActive(a.ctx)
		}
		a.app.QueueUpdateDraw(a.renderThread)
	case strings.HasPrefix(evt.Kind, "copilot."):
		if evt.ThreadID != active {
			return
		}
		if err := a.vm.RefreshCopilot(a.ctx); err != nil {
			return
		}
		a.app.QueueUpdateDraw(a.renderCopilot)
	}
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.flash.Update(a.vm.Flash.GetMessage())
				a.renderHeader()
			})
		case msg := <-a.vm.Flash.Watch():
			a.app.QueueUpdateDraw(func() { a.flash.Update(&msg) })
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.copilot.Stop()
	a.app.Stop()
}
