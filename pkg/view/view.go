package view

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// ID identifies a view in the structural tree.
// IDs are allocated by NextID, are monotonically increasing, and are
// never reused within a process.
type ID uint64

// idCounter is the process-wide allocator for view IDs.
var idCounter uint64

// NextID returns a fresh view ID.
func NextID() ID {
	return ID(atomic.AddUint64(&idCounter, 1))
}

// View is the minimal capability a node needs to participate in the
// structural tree: a stable identity and child enumeration.
type View interface {
	// ID returns the view's identity.
	ID() ID

	// ForEachChild calls fn for each direct child in order.
	// Iteration stops early if fn returns true.
	ForEachChild(fn func(View) bool)
}

// DebugNamer is implemented by views that carry a human-readable name
// for logging and tooling.
type DebugNamer interface {
	DebugName() string
}

// Name resolves a display name for v: its DebugName when the view
// provides one, otherwise a name derived from its ID.
func Name(v View) string {
	if n, ok := v.(DebugNamer); ok {
		return n.DebugName()
	}
	return "view-" + strconv.FormatUint(uint64(v.ID()), 10)
}

// parents maps a view ID to its parent's ID.
var (
	parents   = make(map[ID]ID)
	parentsMu sync.RWMutex
)

// SetParent records parent as the parent of child in the tree registry.
func SetParent(child, parent ID) {
	parentsMu.Lock()
	defer parentsMu.Unlock()
	parents[child] = parent
}

// Parent returns the registered parent of id, if any.
func Parent(id ID) (ID, bool) {
	parentsMu.RLock()
	defer parentsMu.RUnlock()
	p, ok := parents[id]
	return p, ok
}

// Unregister removes a view and its parent link from the registry.
// Called when a view is torn down.
func Unregister(id ID) {
	parentsMu.Lock()
	defer parentsMu.Unlock()
	delete(parents, id)
}

// LinkChildren registers v as the parent of each of its children and
// recurses into them, so a freshly constructed subtree is fully linked
// into the registry in one pass.
func LinkChildren(v View) {
	v.ForEachChild(func(child View) bool {
		SetParent(child.ID(), v.ID())
		LinkChildren(child)
		return false
	})
}

// UnregisterTree removes v and every descendant from the registry, the
// teardown counterpart of LinkChildren. Removal paths must use this
// rather than Unregister on the root alone, or descendant links leak.
func UnregisterTree(v View) {
	Unregister(v.ID())
	v.ForEachChild(func(child View) bool {
		UnregisterTree(child)
		return false
	})
}
