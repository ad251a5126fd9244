package reactive

import (
	"sync"
	"time"

	"github.com/sprig-ui/sprig/monitoring"
)

const cycleGuardMultiplier = 64

var (
	schedMu        sync.Mutex
	batchDepth     int
	flushQueue     []*effectCore
	flushQueued    = map[uint64]bool{}
	flushing       bool
	effectCount    int
	effectRegistry = map[uint64]*effectCore{}
)

func registerEffectMeta(e *effectCore) {
	schedMu.Lock()
	effectCount++
	effectRegistry[e.id] = e
	schedMu.Unlock()
}

func dequeueEffect(id uint64) {
	schedMu.Lock()
	delete(flushQueued, id)
	for i, e := range flushQueue {
		if e.id == id {
			flushQueue = append(flushQueue[:i], flushQueue[i+1:]...)
			break
		}
	}
	effectCount--
	delete(effectRegistry, id)
	schedMu.Unlock()
}

// EffectSnapshot is the read-only devtools view of one live effect.
type EffectSnapshot struct {
	ID       uint64
	Label    string
	DepCount int
}

// Effects returns an EffectSnapshot for every effect that has not yet
// been stopped, in no particular order.
func Effects() []EffectSnapshot {
	schedMu.Lock()
	defer schedMu.Unlock()
	out := make([]EffectSnapshot, 0, len(effectRegistry))
	for _, e := range effectRegistry {
		e.mu.Lock()
		out = append(out, EffectSnapshot{ID: e.id, Label: e.label, DepCount: len(e.deps)})
		e.mu.Unlock()
	}
	return out
}

func enqueueEffect(e *effectCore) {
	schedMu.Lock()
	if flushQueued[e.id] {
		schedMu.Unlock()
		return
	}
	flushQueued[e.id] = true
	flushQueue = append(flushQueue, e)
	shouldFlush := batchDepth == 0 && !flushing
	schedMu.Unlock()

	if shouldFlush {
		runFlush()
	}
}

// Batch defers effect flushing until fn returns. Writes inside fn still
// propagate to derivations immediately (so reads inside the batch observe
// up-to-date values); only the effect flush is deferred, and nested
// batches flush once, when the outermost one exits.
func Batch(fn func()) {
	schedMu.Lock()
	batchDepth++
	schedMu.Unlock()

	defer func() {
		schedMu.Lock()
		batchDepth--
		depth := batchDepth
		schedMu.Unlock()
		if depth == 0 {
			runFlush()
		}
	}()

	fn()
}

// runFlush drains the pending effect queue in FIFO order. An effect that
// writes to a source during its run may enqueue further effects; those are
// appended and drained by the same loop. A cycle guard aborts the flush and
// reports ErrCycleDetected if the loop runs far more effects than exist in
// the graph, rather than spinning forever.
func runFlush() {
	schedMu.Lock()
	if flushing {
		schedMu.Unlock()
		return
	}
	flushing = true
	bound := cycleGuardMultiplier * (effectCount + 1)
	schedMu.Unlock()

	ran := 0
	for {
		schedMu.Lock()
		if len(flushQueue) == 0 {
			flushing = false
			schedMu.Unlock()
			return
		}
		e := flushQueue[0]
		flushQueue = flushQueue[1:]
		delete(flushQueued, e.id)
		schedMu.Unlock()

		ran++
		if ran > bound {
			schedMu.Lock()
			flushQueue = nil
			flushQueued = map[uint64]bool{}
			flushing = false
			schedMu.Unlock()
			monitoring.Default().CycleDetected()
			reportError(ErrCycleDetected)
			return
		}

		runStart := time.Now()
		e.run()
		e.mu.Lock()
		label := e.label
		e.mu.Unlock()
		monitoring.Default().EffectFlushed(label, time.Since(runStart))
	}
}
