package reconcile

// RemoveOp removes the child at At, an index into the slot array as it
// existed before any edit in the same Diff is applied.
type RemoveOp struct {
	At int
}

// MoveOp relocates a surviving child. From is its index in the old slot
// array; To is its final position in the new order.
type MoveOp struct {
	From int
	To   int
}

// AddOp inserts a newly constructed child at At, a final position in the
// new order. Item is nil until the diff is rehydrated with the source
// items of its generation.
type AddOp[T any] struct {
	At   int
	Item *T
}

// Diff is the edit script transforming one generation's child layout
// into the next. Removed, Moved, and Added are each in ascending target
// order. Clear discards every existing child in one step and replaces
// per-item removals when set.
type Diff[T any] struct {
	Removed []RemoveOp
	Moved   []MoveOp
	Added   []AddOp[T]
	Clear   bool
}

// IsEmpty reports whether applying the diff would change nothing.
func (d *Diff[T]) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Moved) == 0 && len(d.Added) == 0 && !d.Clear
}

// Compute calculates the operations needed to get from generation `from`
// to generation `to`. It is pure and deterministic: no side effects, and
// no allocation beyond the returned script.
//
// The walk over `to` is a single pass. Two cursors consume the pending
// add and remove indices while `normalized` tracks where an unmoved
// surviving item would sit in the old array after the edits consumed so
// far: an insertion contributes no old position (decrement), a removal
// skips one (increment). A surviving key whose old position matches both
// the loop index and `normalized` has not moved and produces no op.
func Compute[K comparable, T any](from, to *KeySet[K]) Diff[T] {
	var d Diff[T]

	if from.Len() == 0 && to.Len() == 0 {
		return d
	}
	if to.Len() == 0 {
		// Everything goes; a single clear is cheaper than per-item removals.
		d.Clear = true
		return d
	}

	// Old keys absent from the new generation, as old-array indices in
	// ascending order.
	for i := 0; i < from.Len(); i++ {
		if !to.Contains(from.At(i)) {
			d.Removed = append(d.Removed, RemoveOp{At: i})
		}
	}

	// New keys absent from the old generation, as new-array indices in
	// ascending order. Items are filled in by rehydration.
	for i := 0; i < to.Len(); i++ {
		if !from.Contains(to.At(i)) {
			d.Added = append(d.Added, AddOp[T]{At: i})
		}
	}

	normalized := 0
	addCur, removeCur := 0, 0
	moved := make([]MoveOp, 0, to.Len())

	for idx := 0; idx < to.Len(); idx++ {
		// The add cursor is consulted before the remove cursor when both
		// land on the same index.
		if addCur < len(d.Added) && d.Added[addCur].At == idx {
			if addCur+1 < len(d.Added) {
				addCur++
				normalized--
			} else {
				addCur = len(d.Added)
			}
		}

		if removeCur < len(d.Removed) && d.Removed[removeCur].At == idx {
			normalized++
			removeCur++
		}

		if fromIdx, ok := from.IndexOf(to.At(idx)); ok {
			if fromIdx != normalized || fromIdx != idx {
				moved = append(moved, MoveOp{From: fromIdx, To: idx})
			}
		}

		normalized++
	}
	if len(moved) > 0 {
		d.Moved = moved
	}

	// When every old child is removed and nothing moves, collapse the
	// per-item removals into a single clear.
	if from.Len() > 0 && to.Len() > 0 && len(d.Removed) == from.Len() && len(d.Moved) == 0 {
		d.Clear = true
		d.Removed = nil
	}

	return d
}
