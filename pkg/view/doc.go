// Package view provides the minimal view-tree abstraction the
// reconciliation engine works against.
//
// A View is anything with a stable identity that can enumerate its
// children. Parent linkage lives in a process-wide registry keyed by ID,
// so the engine can register newly constructed children (and their
// descendants) into the surrounding structural tree without knowing the
// concrete view types.
//
// The UpdateQueue is the deferred update channel: computation publishes
// state (such as an edit script) addressed to a view ID, and the host
// drains the queue in FIFO order, delivering each update to its target.
// This keeps the compute pass from ever mutating consumer state directly.
package view
