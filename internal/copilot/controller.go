// Package copilot runs the per-thread question and answer history: it asks
// the gateway, reconciles answers into the history by entry id and persists
// every change.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/cache"
	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"go.uber.org/zap"
)

// ErrEntryNotFound is returned for an unknown entry id.
var ErrEntryNotFound = errors.New("copilot entry not found")

// Submission identifies the entries created by SubmitQuestion.
type Submission struct {
	ThreadID   string `json:"thread_id"`
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
}

// saveSlot serialises cache writes for one history key. Versions let a
// writer skip a snapshot older than one already written.
type saveSlot struct {
	mu      sync.Mutex
	version uint64
	written uint64
}

// Controller owns the copilot histories. The empty thread id is the history
// used when no thread is selected.
type Controller struct {
	mu        sync.Mutex
	histories map[string][]QAEntry
	slots     map[string]*saveSlot

	gateway gateway.Client
	inbox   *inbox.Store
	cache   *cache.Adapter
	bus     *bus.Bus
	logger  *zap.Logger

	// calls outlive the request that started them.
	baseCtx  context.Context
	inflight sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// New creates a controller. A nil cache disables persistence.
func New(g gateway.Client, store *inbox.Store, c *cache.Adapter, b *bus.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		histories: make(map[string][]QAEntry),
		slots:     make(map[string]*saveSlot),
		gateway:   g,
		inbox:     store,
		cache:     c,
		bus:       b,
		logger:    logger,
		baseCtx:   context.Background(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func historyKey(threadID string) string {
	if threadID == "" {
		return cache.DefaultHistoryKey
	}
	return cache.HistoryKey(threadID)
}

// SubmitQuestion appends a question and a pending answer to the thread's
// history and asks the gateway in the background. Blank text is ignored and
// returns a nil submission.
func (c *Controller) SubmitQuestion(ctx context.Context, threadID, text string) (*Submission, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	msgs, err := c.contextMessages(threadID)
	if err != nil {
		return nil, err
	}
	c.load(ctx, threadID)

	now := c.now()
	question := QAEntry{
		ID:           c.newID(),
		Role:         RoleQuestion,
		QuestionText: text,
		Status:       StatusComplete,
		CreatedAt:    now,
	}
	answer := QAEntry{
		ID:           c.newID(),
		Role:         RoleAnswer,
		QuestionText: text,
		Status:       StatusPending,
		CreatedAt:    now,
	}

	c.mu.Lock()
	c.histories[threadID] = append(c.histories[threadID], question, answer)
	snapshot, version := c.snapshotLocked(threadID)
	c.mu.Unlock()

	c.save(ctx, threadID, snapshot, version)
	c.publish(bus.KindEntryAdded, threadID, question)
	c.publish(bus.KindEntryAdded, threadID, answer)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.resolve(threadID, answer.ID, text, msgs)
	}()

	c.logger.Info("question submitted",
		zap.String("thread_id", threadID),
		zap.String("answer_id", answer.ID))
	return &Submission{ThreadID: threadID, QuestionID: question.ID, AnswerID: answer.ID}, nil
}

// resolve waits for the gateway and writes the outcome into the entry with
// answerID, wherever that thread's history is now.
func (c *Controller) resolve(threadID, answerID, text string, msgs []inbox.Message) {
	ctx := c.baseCtx
	reply, askErr := c.gateway.Ask(ctx, text, msgs)
	if askErr != nil {
		c.logger.Warn("gateway call failed",
			zap.String("thread_id", threadID),
			zap.String("answer_id", answerID),
			zap.String("kind", string(gateway.KindOf(askErr))),
			zap.Error(askErr))
	}

	c.mu.Lock()
	history := c.histories[threadID]
	idx := indexOf(history, answerID)
	if idx < 0 {
		c.mu.Unlock()
		c.logger.Debug("answer resolved after its history was cleared",
			zap.String("thread_id", threadID),
			zap.String("answer_id", answerID))
		return
	}
	entry := &history[idx]
	var err error
	if askErr != nil {
		err = entry.fail(FailedAnswerText)
	} else {
		err = entry.complete(reply)
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("failed to resolve answer", zap.Error(err))
		return
	}
	resolved := entry.clone()
	snapshot, version := c.snapshotLocked(threadID)
	c.mu.Unlock()

	c.save(ctx, threadID, snapshot, version)
	c.publish(bus.KindEntryResolved, threadID, resolved)
}

// Open returns the thread's history, loading it from the cache the first
// time the thread is seen. Once loaded, the in-memory history is
// authoritative: this controller is the only writer of the cache keys, so
// reloading could only lose answers still in flight.
//
// A restored answer that is still pending belonged to a previous run and
// can never resolve, so it comes back failed with InterruptedAnswerText.
// Apart from that, a loaded history equals the one that was saved.
func (c *Controller) Open(ctx context.Context, threadID string) ([]QAEntry, error) {
	if err := c.checkThread(threadID); err != nil {
		return nil, err
	}
	c.load(ctx, threadID)
	return c.history(threadID), nil
}

// History is Open under the name used by read-only callers.
func (c *Controller) History(ctx context.Context, threadID string) ([]QAEntry, error) {
	return c.Open(ctx, threadID)
}

// View returns the history, or when it is empty a display-only projection
// of the thread's messages. The projection is never stored.
func (c *Controller) View(ctx context.Context, threadID string) ([]QAEntry, error) {
	history, err := c.Open(ctx, threadID)
	if err != nil || len(history) > 0 || threadID == "" {
		return history, err
	}
	msgs, err := c.contextMessages(threadID)
	if err != nil {
		return nil, err
	}
	return project(threadID, msgs), nil
}

// MarkRevealed clears the fresh flag once the answer has been shown.
func (c *Controller) MarkRevealed(ctx context.Context, threadID, entryID string) error {
	if err := c.checkThread(threadID); err != nil {
		return err
	}
	c.load(ctx, threadID)

	c.mu.Lock()
	history := c.histories[threadID]
	idx := indexOf(history, entryID)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrEntryNotFound, entryID)
	}
	if !history[idx].FreshForAnimation {
		c.mu.Unlock()
		return nil
	}
	history[idx].FreshForAnimation = false
	snapshot, version := c.snapshotLocked(threadID)
	c.mu.Unlock()

	c.save(ctx, threadID, snapshot, version)
	c.publish(bus.KindEntryRevealed, threadID, snapshot[idx])
	return nil
}

// ClearHistory drops the thread's history and its cache record. Answers
// still in flight for it are discarded when they arrive.
func (c *Controller) ClearHistory(ctx context.Context, threadID string) error {
	if err := c.checkThread(threadID); err != nil {
		return err
	}

	c.mu.Lock()
	c.histories[threadID] = nil
	slot := c.slotLocked(threadID)
	slot.version++
	version := slot.version
	c.mu.Unlock()

	if c.cache != nil {
		slot.mu.Lock()
		if version > slot.written {
			slot.written = version
			if err := c.cache.Remove(ctx, historyKey(threadID)); err != nil {
				c.logger.Warn("failed to remove copilot history", zap.String("thread_id", threadID), zap.Error(err))
			}
		}
		slot.mu.Unlock()
	}
	c.publish(bus.KindHistoryCleared, threadID, nil)
	return nil
}

// Drain waits for in-flight gateway calls to resolve.
func (c *Controller) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of copilot events.
func (c *Controller) Subscribe(bufSize int) (<-chan bus.Event, func()) {
	return c.bus.Subscribe("copilot.", bufSize)
}

func (c *Controller) checkThread(threadID string) error {
	if threadID == "" || c.inbox == nil {
		return nil
	}
	_, err := c.inbox.Thread(threadID)
	return err
}

func (c *Controller) contextMessages(threadID string) ([]inbox.Message, error) {
	if threadID == "" || c.inbox == nil {
		return nil, nil
	}
	return c.inbox.Messages(threadID)
}

// load fills the in-memory history from the cache if the thread has not been
// seen yet. Answers left pending by a previous run are failed, since nothing
// will resolve them.
func (c *Controller) load(ctx context.Context, threadID string) {
	c.mu.Lock()
	_, loaded := c.histories[threadID]
	c.mu.Unlock()
	if loaded {
		return
	}

	var restored []QAEntry
	if c.cache != nil {
		if h, ok := cache.Decode(ctx, c.cache, historyKey(threadID), ValidateHistory); ok {
			restored = h
		}
	}
	interrupted := 0
	for i := range restored {
		if restored[i].Status == StatusPending {
			_ = restored[i].fail(InterruptedAnswerText)
			interrupted++
		}
	}

	c.mu.Lock()
	if _, loaded := c.histories[threadID]; loaded {
		c.mu.Unlock()
		return
	}
	c.histories[threadID] = restored
	var snapshot []QAEntry
	var version uint64
	if interrupted > 0 {
		snapshot, version = c.snapshotLocked(threadID)
	}
	c.mu.Unlock()

	if interrupted > 0 {
		c.logger.Info("failed interrupted answers",
			zap.String("thread_id", threadID),
			zap.Int("count", interrupted))
		c.save(ctx, threadID, snapshot, version)
	}
}

func (c *Controller) history(threadID string) []QAEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneHistory(c.histories[threadID])
}

func (c *Controller) slotLocked(threadID string) *saveSlot {
	slot, ok := c.slots[threadID]
	if !ok {
		slot = &saveSlot{}
		c.slots[threadID] = slot
	}
	return slot
}

// snapshotLocked copies the history and stamps it with a new version.
// c.mu must be held.
func (c *Controller) snapshotLocked(threadID string) ([]QAEntry, uint64) {
	slot := c.slotLocked(threadID)
	slot.version++
	return cloneHistory(c.histories[threadID]), slot.version
}

// save writes a snapshot unless a newer one for the same key was already
// written. Writes for different threads use different slots.
func (c *Controller) save(ctx context.Context, threadID string, snapshot []QAEntry, version uint64) {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	slot := c.slotLocked(threadID)
	c.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if version <= slot.written {
		return
	}
	slot.written = version
	if err := cache.Encode(ctx, c.cache, historyKey(threadID), snapshot); err != nil {
		var writeErr *cache.WriteError
		if errors.As(err, &writeErr) {
			c.logger.Warn("failed to persist copilot history",
				zap.String("thread_id", threadID),
				zap.String("key", writeErr.Key),
				zap.Error(writeErr.Err))
			return
		}
		c.logger.Warn("failed to persist copilot history", zap.String("thread_id", threadID), zap.Error(err))
	}
}

func (c *Controller) publish(kind, threadID string, entry any) {
	c.bus.Publish(bus.NewEvent(kind, threadID, entry))
}

func indexOf(history []QAEntry, id string) int {
	for i := range history {
		if history[i].ID == id {
			return i
		}
	}
	return -1
}

// project maps thread messages onto display-only entries: customer messages
// as questions, agent messages as answers.
func project(threadID string, msgs []inbox.Message) []QAEntry {
	out := make([]QAEntry, 0, len(msgs))
	for i, m := range msgs {
		e := QAEntry{
			ID:        fmt.Sprintf("%s-msg-%d", threadID, i),
			Status:    StatusComplete,
			CreatedAt: m.Timestamp,
			Projected: true,
		}
		if m.Sender == inbox.Customer {
			e.Role = RoleQuestion
			e.QuestionText = m.Text
		} else {
			text := m.Text
			e.Role = RoleAnswer
			e.AnswerText = &text
		}
		out = append(out, e)
	}
	return out
}
