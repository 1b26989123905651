package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope is an ownership unit for reactive state.
// When a Scope is disposed, all effects, cleanup functions, and child
// scopes it contains are also disposed. This ensures proper teardown and
// prevents leaked subscriptions.
//
// Scopes form a hierarchy: each reconciled child gets a Scope that is a
// child of the collection's Scope, mirroring the structural tree. The
// Scope handed out with a constructed child is its disposal token:
// releasing it exactly once tears down everything that child owned.
type Scope struct {
	id uint64

	// parent is the parent Scope in the hierarchy.
	// nil for a root Scope.
	parent *Scope

	// children are child Scopes.
	children   []*Scope
	childrenMu sync.Mutex

	// effects owned by this scope.
	effects   []*Effect
	effectsMu sync.Mutex

	// cleanups are manual cleanup functions registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// pendingEffects are effects scheduled to run on the next drain.
	pendingEffects   []*Effect
	pendingEffectsMu sync.Mutex

	// disposed indicates whether this Scope has been disposed.
	disposed atomic.Bool
}

// NewScope creates a new Scope with the given parent.
// The new Scope is automatically registered as a child of the parent.
// If parent is nil, creates a root Scope.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(s)
	}

	return s
}

// NewChildScope creates a Scope parented to the current scope of this
// goroutine, or a root Scope if none is set.
func NewChildScope() *Scope {
	return NewScope(CurrentScope())
}

// ID returns the unique identifier for this Scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent Scope, or nil if this is a root Scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed returns true if this Scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// registerEffect adds an effect to this Scope.
// The effect will be disposed when this Scope is disposed.
func (s *Scope) registerEffect(e *Effect) {
	if s.disposed.Load() {
		return
	}

	s.effectsMu.Lock()
	defer s.effectsMu.Unlock()
	s.effects = append(s.effects, e)
}

// OnCleanup registers a cleanup function to run when this Scope is
// disposed. If the Scope is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// scheduleEffect adds an effect to the pending queue.
// Pending effects run when the owner drains them via RunPendingEffects,
// never reentrantly from within a signal write.
func (s *Scope) scheduleEffect(e *Effect) {
	if s.disposed.Load() {
		return
	}

	s.pendingEffectsMu.Lock()
	defer s.pendingEffectsMu.Unlock()
	s.pendingEffects = append(s.pendingEffects, e)
}

// RunPendingEffects executes all pending effects on this Scope and,
// recursively, its children. This is the scheduling tick: callers invoke
// it once per tick after signal writes have settled.
func (s *Scope) RunPendingEffects() {
	if s.disposed.Load() {
		return
	}

	s.pendingEffectsMu.Lock()
	effects := s.pendingEffects
	s.pendingEffects = nil
	s.pendingEffectsMu.Unlock()

	for _, e := range effects {
		if e.pending.Load() {
			e.run()
		}
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.childrenMu.Unlock()

	for _, child := range children {
		child.RunPendingEffects()
	}
}

// HasPendingEffects returns true if this scope or any child has effects
// waiting for the next drain.
func (s *Scope) HasPendingEffects() bool {
	if s.disposed.Load() {
		return false
	}

	s.pendingEffectsMu.Lock()
	hasPending := len(s.pendingEffects) > 0
	s.pendingEffectsMu.Unlock()

	if hasPending {
		return true
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.childrenMu.Unlock()

	for _, child := range children {
		if child.HasPendingEffects() {
			return true
		}
	}

	return false
}

// Dispose disposes this Scope and all its children, effects, and
// cleanups. Children are disposed in reverse order (last created first).
// Disposing twice is a no-op; the teardown runs exactly once.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.effectsMu.Lock()
	effects := s.effects
	s.effects = nil
	s.effectsMu.Unlock()

	for _, e := range effects {
		e.dispose()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	s.pendingEffectsMu.Lock()
	s.pendingEffects = nil
	s.pendingEffectsMu.Unlock()
}
