package reconcile

import (
	"github.com/woodworthkyle/floem/pkg/reactive"
	"github.com/woodworthkyle/floem/pkg/view"
)

// ChildSlot is a unit of ownership in the child array: a constructed
// child view plus the Scope that is its disposal token. A slot may be
// transiently empty (a hole) while a diff is being applied; holes are
// compacted away before the apply pass finishes.
type ChildSlot struct {
	child view.View
	scope *reactive.Scope
}

// IsEmpty reports whether the slot is a hole.
func (s ChildSlot) IsEmpty() bool {
	return s.child == nil && s.scope == nil
}

// View returns the child view held by the slot, or nil for a hole.
func (s ChildSlot) View() view.View {
	return s.child
}

// ConstructFunc builds a child view for an inserted item, returning the
// view together with the Scope owning its reactive state.
type ConstructFunc[T any] func(item T) (view.View, *reactive.Scope)

// removeIndex empties the slot at i, unlinks its view's whole subtree
// from the tree registry, and releases its scope. Removing an
// already-empty slot is a silent no-op, which makes malformed removals
// idempotent.
func removeIndex(children []ChildSlot, i int) {
	slot := children[i]
	if slot.IsEmpty() {
		return
	}
	children[i] = ChildSlot{}

	if slot.child != nil {
		view.UnregisterTree(slot.child)
	}
	if slot.scope != nil {
		slot.scope.Dispose()
	}
}

// applyDiff materializes an edit script into the slot array, mutating it
// in place. host is the view owning the array; inserted children are
// registered under it.
//
// The command order is fixed:
//
//  1. clear
//  2. removals
//  3. moves
//  4. additions
//
// Removals must release their slots before anything is written, and a
// moved slot is read out of its old position but not written into its
// new one until every removal has run; otherwise a later command could
// overwrite a slot a pending move still needs to read. Staged moves are
// written back before additions run, so a fault raised by construct
// leaves removals and moves committed and later additions unattempted.
//
// Metrics may be nil.
func applyDiff[T any](host view.ID, d Diff[T], children *[]ChildSlot, construct ConstructFunc[T], m *Metrics) {
	// Grow to the expected new length so add/move targets are valid
	// positions. Never shrink here: removal and move sources index the
	// old array, and truncation would invalidate them. Compaction at the
	// end drops the leftover holes instead.
	if len(d.Added) >= len(d.Removed) {
		target := len(*children) + len(d.Added) - len(d.Removed)
		for len(*children) < target {
			*children = append(*children, ChildSlot{})
		}
	}

	if d.Clear {
		for i := range *children {
			if !(*children)[i].IsEmpty() {
				m.childDisposed()
			}
			removeIndex(*children, i)
		}
		d.Removed = nil
		m.countOp(opClear, 1)
	}

	for _, op := range d.Removed {
		removeIndex(*children, op.At)
		m.countOp(opRemove, 1)
		m.childDisposed()
	}

	type stagedMove struct {
		to   int
		slot ChildSlot
	}
	staged := make([]stagedMove, 0, len(d.Moved))

	for _, op := range d.Moved {
		slot := (*children)[op.From]
		(*children)[op.From] = ChildSlot{}
		staged = append(staged, stagedMove{to: op.To, slot: slot})
	}

	for _, sm := range staged {
		(*children)[sm.to] = sm.slot
		m.countOp(opMove, 1)
	}

	for _, op := range d.Added {
		if op.Item == nil {
			continue
		}
		child, scope := construct(*op.Item)
		(*children)[op.At] = ChildSlot{child: child, scope: scope}
		if child != nil {
			view.SetParent(child.ID(), host)
			view.LinkChildren(child)
		}
		m.countOp(opAdd, 1)
		m.childCreated()
	}

	// Compact away the holes left by removals, preserving the relative
	// order of survivors.
	compacted := (*children)[:0]
	for _, slot := range *children {
		if !slot.IsEmpty() {
			compacted = append(compacted, slot)
		}
	}
	*children = compacted
}
