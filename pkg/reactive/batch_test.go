package reactive

import "testing"

func TestBatchCoalescesNotifications(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = a.Get()
		_ = b.Get()
	})

	Batch(func() {
		a.Set(1)
		b.Set(2)

		if listener.getDirtyCount() != 0 {
			t.Errorf("notified inside batch, got %d", listener.getDirtyCount())
		}
	})

	// One listener, one notification despite two writes
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after batch, got %d", listener.getDirtyCount())
	}
}

func TestBatchNested(t *testing.T) {
	a := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = a.Get()
	})

	Batch(func() {
		a.Set(1)
		Batch(func() {
			a.Set(2)
		})

		if listener.getDirtyCount() != 0 {
			t.Errorf("notified before outermost batch completed, got %d", listener.getDirtyCount())
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestUntracked(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_ = count.Get()
		})
	})

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("untracked read subscribed listener, got %d notifications", listener.getDirtyCount())
	}
}
