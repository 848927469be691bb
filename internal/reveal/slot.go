package reveal

import (
	"context"
	"strings"
	"sync"
	"time"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Slot plays reveals for one display position. Starting a new reveal
// discards the one in progress; replaying the same input does nothing.
type Slot struct {
	granularity Granularity
	pacing      Pacing
	sleep       SleepFunc

	mu       sync.Mutex
	run      uint64
	playing  bool
	text     string
	revealed bool
	cancel   context.CancelFunc
	finished chan struct{}
}

// NewSlot creates a slot. A nil sleep uses Sleep.
func NewSlot(g Granularity, p Pacing, sleep SleepFunc) *Slot {
	if sleep == nil {
		sleep = Sleep
	}
	return &Slot{granularity: g, pacing: p, sleep: sleep}
}

// Play reveals text, calling render for every frame from a separate
// goroutine. When alreadyRevealed is set the whole text is rendered at
// once. done runs after an animated reveal completes without being
// replaced.
func (s *Slot) Play(ctx context.Context, text string, alreadyRevealed bool, render func(Frame), done func()) {
	s.mu.Lock()
	if s.playing && s.text == text && s.revealed == alreadyRevealed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.run++
	run := s.run
	s.playing = true
	s.text, s.revealed = text, alreadyRevealed
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	finished := make(chan struct{})
	s.finished = finished
	s.mu.Unlock()

	chunks := Segment(text)
	go func() {
		defer close(finished)
		defer cancel()

		if alreadyRevealed || len(chunks) == 0 {
			s.emit(run, Frame{Text: strings.Join(chunks, Separator), Final: true}, render)
			return
		}
		for f := range Schedule(chunks, s.granularity, s.pacing) {
			if err := s.sleep(ctx, f.Delay); err != nil {
				return
			}
			if !s.emit(run, f, render) {
				return
			}
		}
		if done != nil && s.IsCurrent(run) {
			done()
		}
	}()
}

// IsCurrent reports whether run is the latest reveal started on the slot.
func (s *Slot) IsCurrent(run uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run == run
}

// Stop cancels the running reveal and forgets the last input, so the next
// Play always starts.
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.run++
	s.playing = false
	s.text, s.revealed = "", false
}

// Wait blocks until the latest reveal has finished or was cancelled.
func (s *Slot) Wait() {
	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()
	if finished != nil {
		<-finished
	}
}

func (s *Slot) emit(run uint64, f Frame, render func(Frame)) bool {
	if !s.IsCurrent(run) {
		return false
	}
	f.Run = run
	render(f)
	return true
}
