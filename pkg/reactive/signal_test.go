package reactive

import (
	"sync"
	"testing"
)

// testListener counts MarkDirty calls.
type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty++
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value should not notify
	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("same value should not notify, got %d", listener.getDirtyCount())
	}

	count.Set(2)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalNoTrackingOutsideContext(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	// Read outside any tracked context
	_ = count.Get()

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("expected 0 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalSliceEquality(t *testing.T) {
	items := NewSignal([]string{"a", "b"})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = items.Get()
	})

	// DeepEqual slices: no notification
	items.Set([]string{"a", "b"})
	if listener.getDirtyCount() != 0 {
		t.Errorf("equal slice should not notify, got %d", listener.getDirtyCount())
	}

	items.Set([]string{"b", "a"})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalStructEquality(t *testing.T) {
	type point struct{ X, Y int }

	pos := NewSignal(point{1, 2})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = pos.Get()
	})

	// Comparable struct: equal value takes the == path, no notification.
	pos.Set(point{1, 2})
	if listener.getDirtyCount() != 0 {
		t.Errorf("equal struct should not notify, got %d", listener.getDirtyCount())
	}

	pos.Set(point{2, 1})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	// Custom equality that only looks at length
	items := NewSignal([]int{1, 2}).WithEquals(func(a, b []int) bool {
		return len(a) == len(b)
	})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = items.Get()
	})

	items.Set([]int{3, 4})
	if listener.getDirtyCount() != 0 {
		t.Errorf("same-length slice should not notify, got %d", listener.getDirtyCount())
	}

	items.Set([]int{1, 2, 3})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.base.unsubscribe(listener)

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("unsubscribed listener notified %d times, want 0", listener.getDirtyCount())
	}
}
