package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("inbox.", 10)
	defer unsub()

	b.Publish(NewEvent(KindMessageAppended, "1", "hello"))

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageAppended {
			t.Errorf("got kind %q, want %q", evt.Kind, KindMessageAppended)
		}
		if evt.ThreadID != "1" {
			t.Errorf("got thread %q, want 1", evt.ThreadID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("copilot.", 10)
	defer unsub()

	b.Publish(NewEvent(KindThreadSelected, "1", nil))
	b.Publish(NewEvent(KindEntryAdded, "1", nil))

	select {
	case evt := <-ch:
		if evt.Kind != KindEntryAdded {
			t.Errorf("got kind %q, want %q", evt.Kind, KindEntryAdded)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmptyPrefixReceivesEverything(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 10)
	defer unsub()

	b.Publish(NewEvent(KindThreadAdded, "1", nil))
	b.Publish(NewEvent(KindEntryResolved, "1", nil))

	if len(ch) != 2 {
		t.Fatalf("got %d buffered events, want 2", len(ch))
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("inbox.", 10)
	unsub()
	unsub() // second call is a no-op

	b.Publish(NewEvent(KindThreadAdded, "1", nil))

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("inbox.", 1)
	defer unsub()

	b.Publish(NewEvent(KindThreadAdded, "1", nil))
	b.Publish(NewEvent(KindThreadAdded, "2", nil))

	evt := <-ch
	if evt.ThreadID != "1" {
		t.Errorf("got thread %q, want 1", evt.ThreadID)
	}
	if b.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", b.Dropped())
	}
}

func TestNilBusPublish(t *testing.T) {
	var b *Bus
	b.Publish(NewEvent(KindThreadAdded, "1", nil))
}
