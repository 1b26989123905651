// Package reconcile keeps a keyed, ordered collection of child views
// synchronized with a changing collection of source items.
//
// Each evaluation of the source collection produces a generation: an
// ordered, duplicate-free KeySet derived from the items by a
// caller-supplied key function. Compute diffs two generations into an
// edit script (Diff) of clear/remove/move/add operations, and the
// applier materializes that script into the child slot array, disposing
// removed children's scopes and linking inserted children into the
// surrounding view tree.
//
// # Pipeline
//
// Stack is the reactive boundary tying the pieces together:
//
//	stack := reconcile.NewStack(
//	    func() []Row { return rows.Get() },     // item producer
//	    func(r Row) int64 { return r.ID },      // key function
//	    func(r Row) view.View { return newRowView(r) },
//	)
//
// A compute pass re-runs whenever a signal read by the item producer
// changes. It never touches the slot array: the resulting Diff is
// published to an update queue, and the host delivers it back to the
// stack on the next tick. Queued diffs are applied strictly in
// production order, each against the slot array as left by the previous
// one.
//
// # Caller contract
//
// The key function must be deterministic and yield unique keys within
// one generation. Violations are not detected; behavior under them is
// unspecified.
package reconcile
