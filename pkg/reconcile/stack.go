package reconcile

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/woodworthkyle/floem/pkg/reactive"
	"github.com/woodworthkyle/floem/pkg/view"
)

// defaultQueue carries updates for stacks that were not given their own
// queue. Hosts embedding the engine normally supply one per tree.
var defaultQueue = view.NewUpdateQueue()

// DefaultUpdateQueue returns the shared update queue used by stacks
// created without WithQueue.
func DefaultUpdateQueue() *view.UpdateQueue {
	return defaultQueue
}

// stackOptions holds optional Stack collaborators.
type stackOptions struct {
	name               string
	logger             *slog.Logger
	queue              *view.UpdateQueue
	metrics            *Metrics
	tracer             trace.Tracer
	onStructureChanged func(view.ID)
}

// StackOption configures a Stack.
type StackOption func(*stackOptions)

// WithDebugName sets the name used in logs and tooling.
func WithDebugName(name string) StackOption {
	return func(o *stackOptions) {
		o.name = name
	}
}

// WithLogger sets the logger for the stack.
func WithLogger(logger *slog.Logger) StackOption {
	return func(o *stackOptions) {
		o.logger = logger
	}
}

// WithQueue sets the update queue diffs are published to.
func WithQueue(queue *view.UpdateQueue) StackOption {
	return func(o *stackOptions) {
		o.queue = queue
	}
}

// WithMetrics sets the Prometheus metrics instance.
func WithMetrics(m *Metrics) StackOption {
	return func(o *stackOptions) {
		o.metrics = m
	}
}

// WithTracer enables OpenTelemetry spans around compute and apply passes.
func WithTracer(tracer trace.Tracer) StackOption {
	return func(o *stackOptions) {
		o.tracer = tracer
	}
}

// OnStructureChanged registers a callback raised after each completed
// apply pass that changed the child array, telling the surrounding tree
// that layout/traversal state is stale.
func OnStructureChanged(fn func(view.ID)) StackOption {
	return func(o *stackOptions) {
		o.onStructureChanged = fn
	}
}

// Stack keeps a child collection synchronized with a keyed item
// collection. Re-evaluation is reactive: whenever a signal read by the
// item producer changes, a compute pass derives the new generation's
// KeySet, diffs it against the retained previous generation, rehydrates
// insertions with item values, and publishes the script to the update
// queue. The host delivers queued scripts back via Update, which runs
// the apply pass against the slot array.
//
// The two passes never overlap for one stack: a compute pass only reads
// items and writes the queue, and an apply pass only consumes the queue
// and mutates slots. Both run to completion synchronously once invoked.
type Stack[T any, K comparable] struct {
	id   view.ID
	name string

	// scope owns the compute effect and, transitively, every child's
	// scope. Disposing it tears the whole stack down.
	scope  *reactive.Scope
	effect *reactive.Effect

	// children is the slot array. Owned exclusively by this stack; all
	// mutation flows through the applier.
	children  []ChildSlot
	construct ConstructFunc[T]

	queue              *view.UpdateQueue
	logger             *slog.Logger
	metrics            *Metrics
	tracer             trace.Tracer
	onStructureChanged func(view.ID)
}

// NewStack creates a reconciling child collection.
//
// each yields the full ordered item collection on every evaluation (not
// a delta). key derives an identity for each item: deterministic, and
// unique within one evaluation. build constructs the child view for a
// newly inserted item; it runs under a fresh child scope, so any signals
// or effects it creates are torn down when the item's child is removed.
//
// The first compute pass runs synchronously inside NewStack and
// publishes an all-insertions script for the initial items.
func NewStack[T any, K comparable](each func() []T, key func(T) K, build func(T) view.View, opts ...StackOption) *Stack[T, K] {
	options := stackOptions{
		name:   "Stack",
		logger: slog.Default(),
		queue:  defaultQueue,
	}
	for _, opt := range opts {
		opt(&options)
	}

	s := &Stack[T, K]{
		id:                 view.NextID(),
		name:               options.name,
		scope:              reactive.NewChildScope(),
		queue:              options.queue,
		logger:             options.logger,
		metrics:            options.metrics,
		tracer:             options.tracer,
		onStructureChanged: options.onStructureChanged,
	}
	s.construct = asChildOfScope(s.scope, build)

	// The compute pass. The previous generation's key set is carried
	// across runs; nil means no generation has been recorded yet.
	var prev *KeySet[K]

	reactive.WithScope(s.scope, func() {
		s.effect = reactive.CreateEffect(func() reactive.Cleanup {
			span := startSpan(s.tracer, "reconcile.compute", nil)
			defer span.End()

			items := each()
			keys := KeysOf(items, key)

			var d Diff[T]
			if prev == nil {
				// First evaluation: the entire collection is newly added.
				for i := range items {
					d.Added = append(d.Added, AddOp[T]{At: i, Item: &items[i]})
				}
			} else {
				d = Compute[K, T](prev, keys)
				rehydrate(&d, items)
			}
			prev = keys

			span.SetAttributes(diffAttributes(&d)...)
			s.metrics.diffComputed()
			s.logger.Debug("diff computed",
				"stack", s.name,
				"removed", len(d.Removed),
				"moved", len(d.Moved),
				"added", len(d.Added),
				"clear", d.Clear)

			s.queue.Enqueue(s.id, d)
			return nil
		})
	})

	return s
}

// rehydrate fills each insertion with the item at its position in the
// freshly evaluated list. Positions are consumed left-to-right from the
// snapshot, so an item feeds at most one insertion.
func rehydrate[T any](d *Diff[T], items []T) {
	snapshot := make([]*T, len(items))
	for i := range items {
		snapshot[i] = &items[i]
	}
	for i := range d.Added {
		op := &d.Added[i]
		op.Item = snapshot[op.At]
		snapshot[op.At] = nil
	}
}

// asChildOfScope wraps build so each constructed child runs under (and
// is owned by) a fresh child scope of parent. The returned scope is the
// child's disposal token.
func asChildOfScope[T any](parent *reactive.Scope, build func(T) view.View) ConstructFunc[T] {
	return func(item T) (view.View, *reactive.Scope) {
		scope := reactive.NewScope(parent)
		var v view.View
		reactive.WithScope(scope, func() {
			v = build(item)
		})
		return v, scope
	}
}

// ID returns the stack's view identity.
func (s *Stack[T, K]) ID() view.ID {
	return s.id
}

// DebugName returns the stack's name for logs and tooling.
func (s *Stack[T, K]) DebugName() string {
	return s.name
}

// Len returns the number of live children.
func (s *Stack[T, K]) Len() int {
	n := 0
	for _, slot := range s.children {
		if !slot.IsEmpty() {
			n++
		}
	}
	return n
}

// ForEachChild calls fn for each live child in order.
// Iteration stops early if fn returns true.
func (s *Stack[T, K]) ForEachChild(fn func(view.View) bool) {
	for _, slot := range s.children {
		if slot.IsEmpty() {
			continue
		}
		if fn(slot.child) {
			break
		}
	}
}

// ForEachChildRev calls fn for each live child in reverse order, the
// front-to-back order hit-testing consumers want.
// Iteration stops early if fn returns true.
func (s *Stack[T, K]) ForEachChildRev(fn func(view.View) bool) {
	for i := len(s.children) - 1; i >= 0; i-- {
		slot := s.children[i]
		if slot.IsEmpty() {
			continue
		}
		if fn(slot.child) {
			break
		}
	}
}

// Update delivers queued state to the stack. A Diff runs the apply pass;
// anything else is ignored. Returns true when the child structure
// changed. Implements view.Updater.
func (s *Stack[T, K]) Update(state any) bool {
	d, ok := state.(Diff[T])
	if !ok {
		return false
	}
	if d.IsEmpty() {
		return false
	}

	span := startSpan(s.tracer, "reconcile.apply", diffAttributes(&d))
	defer span.End()
	start := time.Now()

	applyDiff(s.id, d, &s.children, s.construct, s.metrics)

	s.metrics.observeApply(start)
	s.logger.Debug("diff applied", "stack", s.name, "children", len(s.children))

	if s.onStructureChanged != nil {
		s.onStructureChanged(s.id)
	}
	return true
}

// Drain applies every update queued for this stack, strictly in
// production order, each against the slot array as left by the previous
// one. Updates addressed to other views are requeued unchanged.
// Returns true if any applied script changed the structure.
func (s *Stack[T, K]) Drain() bool {
	changed := false
	for _, u := range s.queue.Drain() {
		if u.Target != s.id {
			s.queue.Enqueue(u.Target, u.State)
			continue
		}
		if s.Update(u.State) {
			changed = true
		}
	}
	return changed
}

// Tick runs one scheduling tick: pending compute passes drain first,
// then every queued diff is applied. Returns true if the structure
// changed.
func (s *Stack[T, K]) Tick() bool {
	s.scope.RunPendingEffects()
	return s.Drain()
}

// Scope returns the scope owning the stack's reactive state.
func (s *Stack[T, K]) Scope() *reactive.Scope {
	return s.scope
}

// Dispose tears down the stack: the compute effect, every child's scope,
// and the tree registrations of all children.
func (s *Stack[T, K]) Dispose() {
	for i := range s.children {
		removeIndex(s.children, i)
	}
	s.children = nil
	s.scope.Dispose()
	view.Unregister(s.id)
}
