// Package reactive implements the fine-grained reactivity engine: sources
// (writable cells), derivations (lazily recomputed read-only cells),
// effects (re-run on dependency change), and batching.
//
// The tracking algorithm is a push/pull hybrid. Writes to a source mark
// directly dependent derivations stale and walk the graph: a stale
// derivation that currently has observers of its own is recomputed right
// away so the walk can short-circuit on an equal result (reflect.DeepEqual
// unless the cell was given its own equality; the glitch-free guarantee); a stale derivation with no observers is left
// dirty and recomputed lazily the next time something reads it. Effects are
// never recomputed eagerly; they are enqueued into the scheduler and run
// during a flush.
//
// Every Source, Derivation, and Effect is anchored to the scope active at
// creation time (see package scope): disposing that scope detaches the
// cell from the graph.
package reactive
