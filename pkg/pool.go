// Package termpool provides a process-wide, thread-safe repository of
// first-order terms under maximal structural sharing ("hash-consing"). Two
// terms are structurally equal if and only if they live at the same
// storage address: equality is a pointer comparison.
//
// A term is one of a numeric leaf (an unsigned 64-bit integer), a constant
// (a named symbol of arity zero), or a function application f(t1, ..., tn)
// over a named symbol of arity n >= 1.
//
// Every goroutine that touches the pool must call RegisterThread once and
// present the returned *Thread to every construction and protection call
// it makes, then call UnregisterThread before it stops using the pool. Go
// has no public goroutine-local-storage API, so the *Thread is the pool's
// stand-in for "the calling thread" — the same explicit-capability style
// the teacher's cache used for its loader context.
//
// © 2025 termpool authors. MIT License.
package termpool

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Voskan/termpool/internal/barrier"
	"github.com/Voskan/termpool/internal/protect"
	"github.com/Voskan/termpool/internal/symtab"
	"github.com/Voskan/termpool/internal/term"
)

// Pool is the top-level handle to a term repository. The zero value is not
// usable; construct one with Initialize.
type Pool struct {
	symbols  *symtab.Table
	terms    *term.Table
	barrier  *barrier.Barrier
	registry *protect.Registry

	cfg     *config
	metrics metricsSink
	logger  *zap.Logger

	autoGC atomic.Bool
	stamp  atomic.Uint64 // current "live" mark stamp

	gcMu           sync.Mutex // serialises CollectNow callers before they compete for the exclusive grant
	gcRuns         atomic.Uint64
	lastGCNanos    atomic.Int64
	lastReclaimed  atomic.Int64

	closed atomic.Bool
}

// Initialize constructs a new, independent term pool. Unlike a process-wide
// singleton, each Pool is self-contained — tests construct one per test
// case via the reset-hook idiom spec.md's design notes call out, instead of
// mutating shared global state.
func Initialize(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}

	p := &Pool{
		symbols:  symtab.New(),
		barrier:  barrier.New(),
		registry: protect.New(),
		cfg:      cfg,
		metrics:  newMetricsSink(cfg.registry),
		logger:   cfg.logger,
	}
	p.terms = term.NewTable(cfg.initialTableCapacity, cfg.perGenerationBytes, p.symbols)
	p.autoGC.Store(cfg.gcEnabled)
	p.stamp.Store(1)
	return p, nil
}

// Thread is the capability RegisterThread returns; see the package doc.
type Thread struct {
	t *protect.Thread
}

// RegisterThread registers the calling goroutine with the pool, returning a
// capability it must present to every subsequent construction/protection
// call. Safe to call from any number of goroutines concurrently.
func (p *Pool) RegisterThread() *Thread {
	return &Thread{t: p.registry.Register()}
}

// UnregisterThread removes th from the pool's protection registry. Any
// OwnedHandles or ProtectedContainers it still held stop rooting anything —
// callers must release protection they still need elsewhere first.
func (p *Pool) UnregisterThread(th *Thread) {
	p.registry.Unregister(th.t)
}

// EnableAutomaticGC turns the load-factor-triggered collection path on or
// off. When enabled, whichever goroutine's MakeApplication/MakeNumeric call
// pushes the table's load factor past gc_trigger_ratio pays for running
// CollectNow inline — the pool never starts a background goroutine of its
// own.
func (p *Pool) EnableAutomaticGC(enabled bool) {
	p.autoGC.Store(enabled)
}

// PoolSize returns the number of live term nodes currently stored.
func (p *Pool) PoolSize() int {
	return p.terms.Len()
}

// PoolCapacity returns the term table's current slot capacity.
func (p *Pool) PoolCapacity() int {
	return p.terms.Capacity()
}

// SymbolCount returns the number of currently interned symbols.
func (p *Pool) SymbolCount() int {
	return p.symbols.Len()
}

// maybeAutoCollect runs CollectNow if automatic GC is enabled and the table
// has crossed its configured load factor. Called after every successful
// MakeApplication/MakeNumeric, whether it allocated a new node or returned
// an existing one.
func (p *Pool) maybeAutoCollect(th *Thread) {
	if !p.autoGC.Load() {
		return
	}
	cap := p.terms.Capacity()
	if cap == 0 {
		return
	}
	load := float64(p.terms.Len()) / float64(cap)
	if load >= p.cfg.gcTriggerRatio {
		p.CollectNow()
	}
}

// Close marks the pool closed: MakeConstant, MakeApplication and
// MakeNumeric return ErrClosed afterwards. Collection must not be in
// progress and no thread should still be registered; Close does not verify
// this and does not wait on callers, mirroring the teacher cache's Close.
func (p *Pool) Close() {
	p.closed.Store(true)
}
