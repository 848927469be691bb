package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/cache"
	"go.uber.org/zap"
)

// Store owns the conversation threads and the current selection for the
// session. Every mutation publishes an event on the bus and is written to
// the local cache on a best-effort basis.
type Store struct {
	mu       sync.RWMutex
	order    []string
	threads  map[string]*Thread
	selected string

	persistMu sync.Mutex

	bus    *bus.Bus
	cache  *cache.Adapter
	logger *zap.Logger
}

// Open builds a store, restoring threads and the last selection from the
// cache. When the cache holds no usable inbox, seed is used instead.
// A nil adapter disables persistence.
func Open(ctx context.Context, b *bus.Bus, c *cache.Adapter, logger *zap.Logger, seed []Thread) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		threads: make(map[string]*Thread),
		bus:     b,
		cache:   c,
		logger:  logger,
	}

	threads := seed
	restored := false
	if c != nil {
		if cached, ok := cache.Decode(ctx, c, cache.ThreadsKey, ValidateThreads); ok {
			threads = cached
			restored = true
		}
	}
	if err := ValidateThreads(threads); err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	for i := range threads {
		t := threads[i].clone()
		s.order = append(s.order, t.ID)
		s.threads[t.ID] = &t
	}

	if c != nil {
		if id, ok := cache.Decode[string](ctx, c, cache.SelectedThreadKey, nil); ok {
			if _, exists := s.threads[id]; exists {
				s.selected = id
			}
		}
		if !restored {
			s.persist(ctx)
		}
	}

	logger.Info("inbox loaded",
		zap.Int("threads", len(s.order)),
		zap.Bool("from_cache", restored),
		zap.String("selected", s.selected))
	return s, nil
}

// ListThreads returns thread summaries in insertion order.
func (s *Store) ListThreads() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.threads[id].summary())
	}
	return out
}

// Thread returns a copy of the thread with the given id.
func (s *Store) Thread(id string) (Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return Thread{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return t.clone(), nil
}

// Messages returns a copy of the thread's messages.
func (s *Store) Messages(id string) ([]Message, error) {
	t, err := s.Thread(id)
	if err != nil {
		return nil, err
	}
	return t.Messages, nil
}

// Selected returns the currently selected thread id, or "" when none is.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectThread makes id the current thread and marks it read.
func (s *Store) SelectThread(ctx context.Context, id string) (Thread, error) {
	s.mu.Lock()
	t, ok := s.threads[id]
	if !ok {
		s.mu.Unlock()
		return Thread{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.selected = id
	t.Unread = false
	out := t.clone()
	s.mu.Unlock()

	s.persist(ctx)
	s.bus.Publish(bus.NewEvent(bus.KindThreadSelected, id, nil))
	return out, nil
}

// AppendMessage adds msg to the end of the thread. A zero timestamp is
// replaced with the current time.
func (s *Store) AppendMessage(ctx context.Context, threadID string, msg Message) (Thread, error) {
	if err := msg.Validate(); err != nil {
		return Thread{}, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	t, ok := s.threads[threadID]
	if !ok {
		s.mu.Unlock()
		return Thread{}, fmt.Errorf("%w: %q", ErrNotFound, threadID)
	}
	t.Messages = append(t.Messages, msg)
	if msg.Sender == Customer && s.selected != threadID {
		t.Unread = true
	}
	out := t.clone()
	s.mu.Unlock()

	s.persist(ctx)
	s.bus.Publish(bus.NewEvent(bus.KindMessageAppended, threadID, msg))
	return out, nil
}

// AddThread registers an incoming conversation.
func (s *Store) AddThread(ctx context.Context, t Thread) error {
	if err := ValidateThreads([]Thread{t}); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.threads[t.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("thread %q already exists", t.ID)
	}
	c := t.clone()
	s.threads[t.ID] = &c
	s.order = append(s.order, t.ID)
	s.mu.Unlock()

	s.persist(ctx)
	s.bus.Publish(bus.NewEvent(bus.KindThreadAdded, t.ID, nil))
	return nil
}

// Subscribe returns a channel of inbox events.
func (s *Store) Subscribe(bufSize int) (<-chan bus.Event, func()) {
	return s.bus.Subscribe("inbox.", bufSize)
}

// persist writes the full thread set and the selection. The snapshot is
// taken while holding persistMu so an older snapshot never overwrites a
// newer one.
func (s *Store) persist(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	threads := make([]Thread, 0, len(s.order))
	for _, id := range s.order {
		threads = append(threads, s.threads[id].clone())
	}
	selected := s.selected
	s.mu.RUnlock()

	if err := cache.Encode(ctx, s.cache, cache.ThreadsKey, threads); err != nil {
		s.logger.Warn("failed to persist threads", zap.Error(err))
	}
	if selected == "" {
		return
	}
	if err := cache.Encode(ctx, s.cache, cache.SelectedThreadKey, selected); err != nil {
		s.logger.Warn("failed to persist selection", zap.Error(err))
	}
}
