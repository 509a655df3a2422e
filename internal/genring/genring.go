// Package genring maintains the registry of *generations* — arenas that
// term storage allocates nodes from — and the bookkeeping needed to free a
// generation's memory once the collector confirms none of its nodes survived
// a sweep.
//
// A *generation* owns:
//   - an arena where nodes and symbol names are allocated;
//   - a running count of how many live table entries currently point into it;
//   - a monotonically increasing ID so the collector can still identify a
//     generation's nodes after rotation, the same way the cache this package
//     is descended from let CLOCK‑Pro track ghost entries after their arena
//     was freed.
//
// Unlike the cache's fixed-size ring (which forcibly evicted the oldest
// generation to bound TTL), a term pool has no notion of expiry: a
// generation lives for as long as the collector finds at least one reachable
// node inside it. Rotation here is purely a capacity device — once the
// active generation has accumulated enough bytes, storage starts a fresh one
// so that future sweeps have smaller units to reclaim — and retirement is
// explicit, driven by the collector after a sweep.
//
// Concurrency model
// ------------------
// genring does **not** use its own locks. Term storage only mutates the
// ring from within the short exclusive section it already holds for table
// inserts (the term table's own write lock, see internal/term), and the
// collector only retires generations while holding the pool-wide exclusive
// grant. Byte and node-count counters
// are atomic so read-only observers (PoolCapacity, metrics) never race.
//
// © 2025 termpool authors. MIT License.
package genring

import (
	"sync/atomic"

	arena "github.com/Voskan/termpool/internal/arena"
)

/* -------------------------------------------------------------------------
   Generation object
   ------------------------------------------------------------------------- */

// Generation is a single arena plus the bookkeeping term storage and the
// collector need to decide when it can be freed.
type Generation struct {
	id    uint32
	ar    *arena.Arena
	nodes atomic.Int64 // live table entries currently allocated from ar
}

func newGeneration(id uint32) *Generation {
	return &Generation{id: id, ar: arena.New()}
}

// ID returns the stable identifier for the generation.
func (g *Generation) ID() uint32 { return g.id }

// Arena exposes the underlying arena for allocation. Valid until the
// generation is retired.
func (g *Generation) Arena() *arena.Arena { return g.ar }

// Bytes returns the arena's current accounted byte size.
func (g *Generation) Bytes() int64 { return g.ar.LiveBytes() }

// IncNodes adjusts the live-node counter; called by term storage on insert
// (+1) and by the collector's sweep on removal (-1).
func (g *Generation) IncNodes(delta int64) { g.nodes.Add(delta) }

// NodeCount returns the number of table entries currently attributed to
// this generation.
func (g *Generation) NodeCount() int64 { return g.nodes.Load() }

/* -------------------------------------------------------------------------
   Ring – registry of generations
   ------------------------------------------------------------------------- */

// Ring owns every generation that still has at least one node reachable, or
// that is still being allocated into.
type Ring struct {
	gens        map[uint32]*Generation
	active      *Generation
	perGenBytes int64

	idCtr atomic.Uint32
}

// New constructs a generation ring whose active generation rotates once it
// has accumulated more than perGenBytes of accounted allocations.
func New(perGenBytes int64) *Ring {
	if perGenBytes <= 0 {
		panic("genring: perGenBytes must be positive")
	}

	r := &Ring{
		gens:        make(map[uint32]*Generation, 4),
		perGenBytes: perGenBytes,
	}
	r.idCtr.Store(1) // generation 0 is reserved to mean "no generation"
	first := newGeneration(r.idCtr.Load())
	r.gens[first.id] = first
	r.active = first
	return r
}

// Active returns the generation currently used for new allocations.
func (r *Ring) Active() *Generation { return r.active }

// CheckRotationNeeded reports whether the active generation has exceeded its
// byte budget and should be rotated before the next allocation.
func (r *Ring) CheckRotationNeeded() bool {
	return r.active.Bytes() > r.perGenBytes
}

// Rotate starts a fresh generation and makes it active, returning the
// previous active generation so the caller can register it with the
// collector. The previous generation is NOT freed — it may still hold live
// nodes — and remains registered in the ring until Retire reclaims it.
func (r *Ring) Rotate() *Generation {
	retiring := r.active
	newID := r.idCtr.Add(1)
	fresh := newGeneration(newID)
	r.gens[fresh.id] = fresh
	r.active = fresh
	return retiring
}

// Retire frees a generation's arena and drops it from the registry,
// provided it currently has zero live nodes and is not the active
// generation. Returns true if the generation was freed.
func (r *Ring) Retire(id uint32) bool {
	g, ok := r.gens[id]
	if !ok || g == r.active || g.NodeCount() != 0 {
		return false
	}
	g.ar.Free()
	delete(r.gens, id)
	return true
}

// Generations returns a snapshot of every generation currently registered,
// active or retiring. Used by the collector after a sweep to find
// generations eligible for Retire.
func (r *Ring) Generations() []*Generation {
	out := make([]*Generation, 0, len(r.gens))
	for _, g := range r.gens {
		out = append(out, g)
	}
	return out
}

// LiveBytes sums accounted bytes across every registered generation.
func (r *Ring) LiveBytes() int64 {
	var total int64
	for _, g := range r.gens {
		total += g.Bytes()
	}
	return total
}

// Len returns the number of generations currently registered.
func (r *Ring) Len() int { return len(r.gens) }
