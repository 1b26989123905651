package view

import "sync"

// Update is a deferred state delivery addressed to a view.
// State is opaque to the queue; the target downcasts it on receipt.
type Update struct {
	Target ID
	State  any
}

// Updater is implemented by views that can consume queued updates.
type Updater interface {
	View

	// Update delivers queued state to the view. Returns true if the
	// view's structure changed and traversal/layout state is stale.
	Update(state any) bool
}

// UpdateQueue is the deferred update channel between computation and
// mutation. Producers enqueue from compute passes; the host drains once
// per scheduling tick and delivers each update to its target.
//
// Ordering is strictly FIFO. Consumers that queue several updates for
// the same target rely on each being applied against the state left by
// the previous one, so updates are never merged, reordered, or dropped.
type UpdateQueue struct {
	mu      sync.Mutex
	pending []Update
}

// NewUpdateQueue creates an empty update queue.
func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{}
}

// Enqueue appends an update in production order.
func (q *UpdateQueue) Enqueue(target ID, state any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, Update{Target: target, State: state})
}

// Drain returns and clears all queued updates in FIFO order.
func (q *UpdateQueue) Drain() []Update {
	q.mu.Lock()
	defer q.mu.Unlock()
	updates := q.pending
	q.pending = nil
	return updates
}

// Len returns the number of queued updates.
func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Deliver drains the queue and hands each update to the matching view in
// views. Returns the IDs of views that reported a structural change, in
// delivery order without duplicates.
func (q *UpdateQueue) Deliver(views map[ID]Updater) []ID {
	var changed []ID
	seen := make(map[ID]bool)

	for _, u := range q.Drain() {
		v, ok := views[u.Target]
		if !ok {
			continue
		}
		if v.Update(u.State) && !seen[u.Target] {
			seen[u.Target] = true
			changed = append(changed, u.Target)
		}
	}

	return changed
}
