// Package reactive provides the reactive substrate for the reconciliation
// engine.
//
// The system provides fine-grained reactivity where dependencies are
// tracked automatically at runtime: reading a signal during an effect run
// subscribes that effect to the signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	items := NewSignal([]Row{})
//	value := items.Get()  // Read (subscribes current listener)
//	items.Set(rows)       // Write (notifies subscribers)
//
// Scope is an ownership unit. Effects and cleanup functions created under
// a Scope are torn down when the Scope is disposed. Scopes form a tree
// mirroring the structure that owns them; disposing a Scope disposes its
// children first. A Scope is the disposal token handed out alongside each
// constructed child of a reconciled collection: releasing it tears down
// every subscription and nested state that child owned.
//
// Effect runs a side effect and re-runs it whenever a signal it read
// during its last run changes:
//
//	CreateEffect(func() Cleanup {
//	    process(items.Get())
//	    return nil
//	})
//
// # Batching
//
// Multiple signal updates can be batched to trigger a single notification:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // Single notification after all updates
//
// # Thread Safety
//
// Reactive primitives are safe for concurrent access. The tracking context
// is per-goroutine; spawning goroutines requires explicit propagation via
// WithScope.
package reactive
