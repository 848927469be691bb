package model

import (
	"context"
	"sync"

	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/tui/client"
	"github.com/matheus3301/inbox/internal/tui/ui"
)

// ViewModel caches daemon state for the views. Loaders are called from
// background goroutines; getters return snapshots safe for the UI goroutine.
type ViewModel struct {
	mu sync.RWMutex

	client   *client.Client
	threads  []inbox.Summary
	active   *inbox.Thread
	entries  []copilot.QAEntry
	selected string
	Flash    *ui.FlashModel
}

// NewViewModel creates a new view model connected to the daemon client.
func NewViewModel(c *client.Client) *ViewModel {
	return &ViewModel{
		client: c,
		Flash:  ui.NewFlashModel(),
	}
}

// LoadThreads fetches the thread list and the remembered selection.
func (vm *ViewModel) LoadThreads(ctx context.Context) error {
	resp, err := vm.client.Inbox.ListThreads(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.threads = resp.Threads
	vm.selected = resp.Selected
	vm.mu.Unlock()
	return nil
}

// SelectThread makes id active and loads its copilot view.
func (vm *ViewModel) SelectThread(ctx context.Context, id string) error {
	resp, err := vm.client.Inbox.SelectThread(ctx, id)
	if err != nil {
		return err
	}
	t := resp.Thread
	vm.mu.Lock()
	vm.active = &t
	vm.selected = t.ID
	vm.entries = resp.Copilot
	vm.mu.Unlock()
	return nil
}

// RefreshActive reloads the active thread, if any.
func (vm *ViewModel) RefreshActive(ctx context.Context) error {
	id := vm.ActiveID()
	if id == "" {
		return nil
	}
	t, err := vm.client.Inbox.GetThread(ctx, id)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.active != nil && vm.active.ID == id {
		vm.active = &t
	}
	vm.mu.Unlock()
	return nil
}

// RefreshCopilot reloads the copilot view for the active thread.
func (vm *ViewModel) RefreshCopilot(ctx context.Context) error {
	id := vm.ActiveID()
	if id == "" {
		return nil
	}
	entries, err := vm.client.Copilot.History(ctx, id, true)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.active != nil && vm.active.ID == id {
		vm.entries = entries
	}
	vm.mu.Unlock()
	return nil
}

// Reply appends an agent message to the active thread.
func (vm *ViewModel) Reply(ctx context.Context, text string) error {
	id := vm.ActiveID()
	if id == "" {
		return nil
	}
	t, err := vm.client.Inbox.AppendMessage(ctx, id, inbox.Agent, text)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.active != nil && vm.active.ID == id {
		vm.active = &t
	}
	vm.mu.Unlock()
	vm.Flash.Info("Reply sent")
	return nil
}

// Ask submits a copilot question for the active thread. The answer
// arrives through the event stream.
func (vm *ViewModel) Ask(ctx context.Context, question string) error {
	id := vm.ActiveID()
	if id == "" {
		vm.Flash.Warn("Open a conversation first")
		return nil
	}
	sub, err := vm.client.Copilot.Ask(ctx, id, question)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	return vm.RefreshCopilot(ctx)
}

// MarkRevealed records that an answer finished animating.
func (vm *ViewModel) MarkRevealed(ctx context.Context, threadID, entryID string) error {
	return vm.client.Copilot.MarkRevealed(ctx, threadID, entryID)
}

// ClearCopilot clears the active thread's copilot history.
func (vm *ViewModel) ClearCopilot(ctx context.Context) error {
	id := vm.ActiveID()
	if id == "" {
		return nil
	}
	if err := vm.client.Copilot.ClearHistory(ctx, id); err != nil {
		return err
	}
	vm.Flash.Info("Copilot history cleared")
	return vm.RefreshCopilot(ctx)
}

// Refine runs a selection action against the composer buffer.
func (vm *ViewModel) Refine(ctx context.Context, buffer string, span selection.Span, kind selection.ActionKind, opts selection.Options) (*api.RefineResponse, error) {
	return vm.client.Refine.Refine(ctx, &api.RefineRequest{
		ThreadID: vm.ActiveID(),
		Buffer:   buffer,
		Span:     span,
		Action:   string(kind),
		Options:  opts,
	})
}

// Threads returns a snapshot of the thread list.
func (vm *ViewModel) Threads() []inbox.Summary {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.threads
}

// Selected returns the remembered selection from the daemon.
func (vm *ViewModel) Selected() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selected
}

// Active returns the open thread, or nil.
func (vm *ViewModel) Active() *inbox.Thread {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// ActiveID returns the open thread's id, or "".
func (vm *ViewModel) ActiveID() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.active == nil {
		return ""
	}
	return vm.active.ID
}

// Entries returns the copilot view for the open thread.
func (vm *ViewModel) Entries() []copilot.QAEntry {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.entries
}

// Pending counts unanswered copilot questions in the open thread.
func (vm *ViewModel) Pending() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	n := 0
	for _, e := range vm.entries {
		if e.Status == copilot.StatusPending {
			n++
		}
	}
	return n
}

// Unread counts threads with unread customer messages.
func (vm *ViewModel) Unread() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	n := 0
	for _, t := range vm.threads {
		if t.Unread {
			n++
		}
	}
	return n
}

// Watch streams every daemon event until ctx ends.
func (vm *ViewModel) Watch(ctx context.Context) (<-chan api.EventEnvelope, error) {
	return vm.client.Inbox.WatchEvents(ctx, "")
}
