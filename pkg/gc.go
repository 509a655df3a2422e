package termpool

// gc.go is the public surface over C5, the stop-the-world mark-and-sweep
// collector. CollectNow implements spec.md §4.5's six-step algorithm
// directly: acquire exclusive, clear marks (by advancing the stamp rather
// than a full pass), walk every registered thread's roots, sweep, retire
// drained generations, release exclusive.
//
// © 2025 termpool authors. MIT License.

import (
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/termpool/internal/markstack"
	"github.com/Voskan/termpool/internal/term"
)

// CollectStats summarises one completed collection cycle.
type CollectStats struct {
	Duration    time.Duration
	Visited     int // nodes marked reachable
	Reclaimed   int // nodes swept
	Survived    int
	TableShrunk bool
	TableCap    int
}

// CollectNow runs a full stop-the-world collection: it acquires the
// exclusive grant (waiting for every in-flight shared grant to drain),
// marks from every registered thread's protection roots, sweeps every
// unmarked node, releases any generation whose node count reached zero,
// and releases the exclusive grant. Safe to call from any registered
// thread; concurrent CollectNow calls are serialised on gcMu so only one
// drives the barrier at a time, and each caller then runs its own full
// collection in turn.
func (p *Pool) CollectNow() CollectStats {
	p.gcMu.Lock()
	defer p.gcMu.Unlock()

	start := time.Now()

	p.barrier.AcquireExclusive()
	defer p.barrier.ReleaseExclusive()

	liveStamp := p.stamp.Add(1)

	roots := p.registry.Roots()
	visited := markstack.Mark(roots, liveStamp)

	result := p.terms.Sweep(liveStamp)

	stats := CollectStats{
		Duration:    time.Since(start),
		Visited:     visited,
		Reclaimed:   result.Swept,
		Survived:    result.Survived,
		TableShrunk: result.Shrunk,
		TableCap:    result.NewCap,
	}

	p.gcRuns.Add(1)
	p.lastGCNanos.Store(stats.Duration.Nanoseconds())
	p.lastReclaimed.Store(int64(stats.Reclaimed))

	p.metrics.incGCRun()
	p.metrics.observeGCDuration(stats.Duration.Seconds())
	p.metrics.addReclaimed(stats.Reclaimed)
	p.metrics.setPoolSize(p.terms.Len())
	p.metrics.setPoolCapacity(p.terms.Capacity())

	p.logger.Info("termpool: collection complete",
		zap.Int("visited", visited),
		zap.Int("reclaimed", stats.Reclaimed),
		zap.Int("survived", stats.Survived),
		zap.Bool("table_shrunk", stats.TableShrunk),
		zap.Int64("duration_ms", stats.Duration.Milliseconds()),
	)

	return stats
}

// GCRunCount returns the number of collections completed so far.
func (p *Pool) GCRunCount() uint64 { return p.gcRuns.Load() }

// LastGCDuration returns the wall-clock duration of the most recent
// collection, or zero if none has run yet.
func (p *Pool) LastGCDuration() time.Duration {
	return time.Duration(p.lastGCNanos.Load())
}

// compile-time assertion that term.Node satisfies the interface CollectNow
// needs for marking — kept here rather than in internal/term so the C5
// public surface documents the dependency it relies on.
var _ markstack.Node = (*term.Node)(nil)
