package reconcile

import (
	"reflect"
	"testing"

	"github.com/woodworthkyle/floem/pkg/reactive"
	"github.com/woodworthkyle/floem/pkg/view"
)

// newTestStack wires a Stack over a string signal with its own queue.
func newTestStack(t *testing.T, initial []string, opts ...StackOption) (*reactive.Signal[[]string], *Stack[string, string], *view.UpdateQueue) {
	t.Helper()

	rows := reactive.NewSignal(initial)
	queue := view.NewUpdateQueue()
	root := reactive.NewScope(nil)
	t.Cleanup(root.Dispose)

	var s *Stack[string, string]
	reactive.WithScope(root, func() {
		s = NewStack(
			func() []string { return rows.Get() },
			func(r string) string { return r },
			func(r string) view.View { return newItemView(r) },
			append([]StackOption{WithQueue(queue)}, opts...)...,
		)
	})

	return rows, s, queue
}

func stackKeys(s *Stack[string, string]) []string {
	var keys []string
	s.ForEachChild(func(v view.View) bool {
		keys = append(keys, v.(*itemView).key)
		return false
	})
	return keys
}

func TestStackFirstGenerationAddsEverything(t *testing.T) {
	_, s, queue := newTestStack(t, []string{"a", "b", "c"})

	// The compute pass ran inside NewStack but must not have touched the
	// slot array yet.
	if s.Len() != 0 {
		t.Fatalf("Len() = %d before drain, want 0", s.Len())
	}
	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1", queue.Len())
	}

	if !s.Drain() {
		t.Error("Drain() = false, want true for initial additions")
	}
	if got, want := stackKeys(s), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestStackReorderMovesExistingViews(t *testing.T) {
	rows, s, _ := newTestStack(t, []string{"a", "b", "c"})
	s.Drain()

	var a view.View
	s.ForEachChild(func(v view.View) bool {
		if v.(*itemView).key == "a" {
			a = v
		}
		return false
	})

	rows.Set([]string{"b", "c", "a"})
	if !s.Tick() {
		t.Fatal("Tick() = false, want structural change")
	}

	if got, want := stackKeys(s), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	var moved view.View
	s.ForEachChild(func(v view.View) bool {
		if v.(*itemView).key == "a" {
			moved = v
		}
		return false
	})
	if moved != a {
		t.Error("reorder reconstructed a surviving child, want the original view moved")
	}
}

func TestStackRemovalDisposesChildScope(t *testing.T) {
	cleanups := map[string]int{}

	rows := reactive.NewSignal([]string{"a", "b"})
	queue := view.NewUpdateQueue()
	root := reactive.NewScope(nil)
	t.Cleanup(root.Dispose)

	var s *Stack[string, string]
	reactive.WithScope(root, func() {
		s = NewStack(
			func() []string { return rows.Get() },
			func(r string) string { return r },
			func(r string) view.View {
				// State created during construction belongs to the
				// child's scope and dies with it.
				key := r
				reactive.CurrentScope().OnCleanup(func() { cleanups[key]++ })
				return newItemView(r)
			},
			WithQueue(queue),
		)
	})
	s.Drain()

	rows.Set([]string{"a"})
	s.Tick()

	if cleanups["b"] != 1 {
		t.Errorf("cleanups[b] = %d, want 1", cleanups["b"])
	}
	if cleanups["a"] != 0 {
		t.Errorf("cleanups[a] = %d, want 0 for a survivor", cleanups["a"])
	}

	// Disposing the stack releases the survivors exactly once.
	s.Dispose()
	if cleanups["a"] != 1 {
		t.Errorf("cleanups[a] = %d after Dispose, want 1", cleanups["a"])
	}
	if cleanups["b"] != 1 {
		t.Errorf("cleanups[b] = %d after Dispose, want 1", cleanups["b"])
	}
}

func TestStackQueuedDiffsApplyInOrder(t *testing.T) {
	rows, s, queue := newTestStack(t, []string{"a", "b"})
	s.Drain()

	// Two compute passes before any apply: both scripts sit in the
	// queue, each built against its predecessor's generation.
	rows.Set([]string{"b", "a", "c"})
	s.Scope().RunPendingEffects()
	rows.Set([]string{"c", "b"})
	s.Scope().RunPendingEffects()

	if queue.Len() != 2 {
		t.Fatalf("queue.Len() = %d, want 2", queue.Len())
	}

	s.Drain()
	if got, want := stackKeys(s), []string{"c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestStackClearThenRepopulate(t *testing.T) {
	rows, s, _ := newTestStack(t, []string{"a", "b"})
	s.Drain()

	rows.Set(nil)
	s.Tick()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after clear, want 0", s.Len())
	}

	rows.Set([]string{"x", "y"})
	s.Tick()
	if got, want := stackKeys(s), []string{"x", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestStackStructureChangedCallback(t *testing.T) {
	var notified []view.ID
	rows, s, _ := newTestStack(t, []string{"a"},
		OnStructureChanged(func(id view.ID) { notified = append(notified, id) }))
	s.Drain()

	if len(notified) != 1 || notified[0] != s.ID() {
		t.Fatalf("notified = %v, want [%v]", notified, s.ID())
	}

	// A no-op generation publishes an empty script; no notification.
	rows.Set([]string{"a"})
	s.Tick()
	if len(notified) != 1 {
		t.Errorf("notified %d times, want 1 after no-op generation", len(notified))
	}
}

func TestStackUpdateIgnoresForeignState(t *testing.T) {
	_, s, _ := newTestStack(t, nil)
	s.Drain()

	if s.Update("not a diff") {
		t.Error("Update(non-diff) = true, want false")
	}
}

func TestStackDrainRequeuesOtherTargets(t *testing.T) {
	_, s, queue := newTestStack(t, []string{"a"})

	other := view.NextID()
	queue.Enqueue(other, "someone else's state")

	s.Drain()

	updates := queue.Drain()
	if len(updates) != 1 || updates[0].Target != other {
		t.Fatalf("requeued updates = %v, want the foreign update only", updates)
	}
	if got, want := stackKeys(s), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestStackForEachChildRev(t *testing.T) {
	_, s, _ := newTestStack(t, []string{"a", "b", "c"})
	s.Drain()

	var keys []string
	s.ForEachChildRev(func(v view.View) bool {
		keys = append(keys, v.(*itemView).key)
		return false
	})

	if got, want := keys, []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("reverse order = %v, want %v", got, want)
	}
}

func TestStackChildrenLinkToStack(t *testing.T) {
	_, s, _ := newTestStack(t, []string{"a"})
	s.Drain()

	s.ForEachChild(func(v view.View) bool {
		if p, ok := view.Parent(v.ID()); !ok || p != s.ID() {
			t.Errorf("Parent(%v) = (%v, %v), want (%v, true)", v.ID(), p, ok, s.ID())
		}
		return false
	})
}
