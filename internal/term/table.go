package term

import (
	"fmt"
	"hash/maphash"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sync/singleflight"

	"github.com/Voskan/termpool/internal/arena"
	"github.com/Voskan/termpool/internal/genring"
	"github.com/Voskan/termpool/internal/symtab"
	"github.com/Voskan/termpool/internal/unsafehelpers"
)

// ErrArityMismatch is returned by MakeApplication when the supplied child
// count disagrees with the symbol's arity.
type ErrArityMismatch struct {
	Symbol   *symtab.Symbol
	Expected uint32
	Got      int
}

func (e *ErrArityMismatch) Error() string {
	return fmt.Sprintf("term: arity mismatch for %q: expected %d children, got %d",
		e.Symbol.Name(), e.Expected, e.Got)
}

const (
	defaultCapacity = 1024
	maxLoadFactor   = 0.75
	minShrinkLoad   = 0.10 // sweep shrinks the table once live/capacity falls below this
)

// Table is the process-wide hash-cons table (C2). It owns an open-addressed
// slot array, probing on (symbol address, child addresses) for applications
// and on (numeric tag, value) for numerics.
//
// Concurrency: the fast lookup path takes only a read lock, mirroring the
// teacher cache's shard.get/put split; a miss escalates to the write lock
// and re-probes before inserting, so two goroutines racing to build the
// same term never allocate twice. A singleflight.Group additionally
// collapses concurrent identical MakeApplication calls onto one
// probe-or-insert execution, avoiding pointless write-lock contention when
// many goroutines build the same subterm at once — the same
// thundering-herd collapse the teacher used singleflight for on cache
// misses, here applied to hash-cons insertion instead of value loading.
type Table struct {
	mu    sync.RWMutex
	slots []*Node
	count int
	seed  maphash.Seed

	symbols *symtab.Table
	gens    *genring.Ring

	build singleflight.Group
}

// NewTable constructs an empty term table with the given initial capacity
// (rounded up to a power of two) and per-generation arena byte budget.
func NewTable(initialCapacity int, perGenBytes int64, symbols *symtab.Table) *Table {
	if initialCapacity <= 0 {
		initialCapacity = defaultCapacity
	}
	cap := nextPowerOfTwo(initialCapacity)
	return &Table{
		slots:   make([]*Node, cap),
		seed:    maphash.MakeSeed(),
		symbols: symbols,
		gens:    genring.New(perGenBytes),
	}
}

func nextPowerOfTwo(n int) int {
	p := uintptr(1)
	for !unsafehelpers.IsPowerOfTwo(p) || p < uintptr(n) {
		p <<= 1
	}
	return int(p)
}

// Len returns the number of canonical nodes currently stored.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Capacity returns the current slot array size.
func (t *Table) Capacity() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}

// Generations exposes the generation ring for the collector.
func (t *Table) Generations() *genring.Ring { return t.gens }

/* -------------------------------------------------------------------------
   Hashing
   ------------------------------------------------------------------------- */

func (t *Table) hashApplication(sym *symtab.Symbol, children []*Node) uint64 {
	var h maphash.Hash
	h.SetSeed(t.seed)
	symAddr := uintptr(unsafe.Pointer(sym))
	h.Write(unsafehelpers.ByteSliceFrom(unsafe.Pointer(&symAddr), unsafe.Sizeof(symAddr)))
	for _, c := range children {
		addr := uintptr(unsafe.Pointer(c))
		h.Write(unsafehelpers.ByteSliceFrom(unsafe.Pointer(&addr), unsafe.Sizeof(addr)))
	}
	return h.Sum64()
}

// buildKeyApplication renders the exact (symbol, children) identity as a
// string for singleflight.Group.Do. This must be collision-free, unlike the
// table's own probing hash: two distinct keys coalesced onto the same
// singleflight call would make the second caller receive the first
// caller's node, which hashApplication's 64-bit digest alone cannot
// guarantee against on its own. Pointer addresses are exact.
func buildKeyApplication(sym *symtab.Symbol, children []*Node) string {
	var b strings.Builder
	b.WriteString("a:")
	b.WriteString(strconv.FormatUint(uint64(uintptr(unsafe.Pointer(sym))), 16))
	for _, c := range children {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(uintptr(unsafe.Pointer(c))), 16))
	}
	return b.String()
}

func (t *Table) hashNumeric(v uint64) uint64 {
	var h maphash.Hash
	h.SetSeed(t.seed)
	// Tag byte keeps a numeric's hash out of an application's hash space even
	// when the bit patterns happen to collide.
	h.WriteByte(0xFF)
	h.Write(unsafehelpers.ByteSliceFrom(unsafe.Pointer(&v), unsafe.Sizeof(v)))
	return h.Sum64()
}

/* -------------------------------------------------------------------------
   Equality
   ------------------------------------------------------------------------- */

func equalApplication(n *Node, sym *symtab.Symbol, children []*Node) bool {
	if n.isNumeric || n.sym != sym || len(n.children) != len(children) {
		return false
	}
	for i, c := range children {
		if n.children[i] != c {
			return false
		}
	}
	return true
}

func equalNumeric(n *Node, v uint64) bool {
	return n.isNumeric && n.numeric == v
}

/* -------------------------------------------------------------------------
   Probing
   ------------------------------------------------------------------------- */

// probe returns the existing node matching the key, or nil if absent. Caller
// holds at least a read lock.
func (t *Table) probeApplication(h uint64, sym *symtab.Symbol, children []*Node) *Node {
	mask := uint64(len(t.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		n := t.slots[i]
		if n == nil {
			return nil
		}
		if equalApplication(n, sym, children) {
			return n
		}
	}
}

func (t *Table) probeNumeric(h uint64, v uint64) *Node {
	mask := uint64(len(t.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		n := t.slots[i]
		if n == nil {
			return nil
		}
		if equalNumeric(n, v) {
			return n
		}
	}
}

// insertLocked places n into the slot array. Caller holds the write lock
// and has already confirmed growth headroom.
func (t *Table) insertLocked(h uint64, n *Node) {
	mask := uint64(len(t.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		if t.slots[i] == nil {
			t.slots[i] = n
			t.count++
			return
		}
	}
}

func (t *Table) growIfNeeded() {
	if float64(t.count+1) <= float64(len(t.slots))*maxLoadFactor {
		return
	}
	t.rehash(len(t.slots) * 2)
}

// rehash rebuilds the slot array at the given capacity, reinserting every
// live node. Used both for growth (doubling on high load) and for the
// collector's post-sweep shrink.
func (t *Table) rehash(newCap int) {
	if newCap < defaultCapacity {
		newCap = defaultCapacity
	}
	old := t.slots
	t.slots = make([]*Node, nextPowerOfTwo(newCap))
	t.count = 0
	mask := uint64(len(t.slots) - 1)
	for _, n := range old {
		if n == nil {
			continue
		}
		for i := n.hash & mask; ; i = (i + 1) & mask {
			if t.slots[i] == nil {
				t.slots[i] = n
				t.count++
				break
			}
		}
	}
}

/* -------------------------------------------------------------------------
   Public construction API
   ------------------------------------------------------------------------- */

// MakeApplication returns the canonical node for sym(children...),
// allocating one if this is the first time this exact (symbol, children)
// tuple has been constructed. Precondition: len(children) == sym.Arity();
// violating it returns *ErrArityMismatch without allocating.
func (t *Table) MakeApplication(sym *symtab.Symbol, children []*Node) (*Node, error) {
	if uint32(len(children)) != sym.Arity() {
		return nil, &ErrArityMismatch{Symbol: sym, Expected: sym.Arity(), Got: len(children)}
	}

	h := t.hashApplication(sym, children)

	t.mu.RLock()
	if n := t.probeApplication(h, sym, children); n != nil {
		t.mu.RUnlock()
		return n, nil
	}
	t.mu.RUnlock()

	// Collapse concurrent builders of the identical key onto one
	// probe-or-insert execution; everyone gets the same resulting node.
	key := buildKeyApplication(sym, children)
	v, err, _ := t.build.Do(key, func() (any, error) {
		t.mu.Lock()
		defer t.mu.Unlock()

		if n := t.probeApplication(h, sym, children); n != nil {
			return n, nil
		}

		t.growIfNeeded()

		gen := t.gens.Active()
		childrenCopy := arena.MakeSlice[*Node](gen.Arena(), len(children))
		copy(childrenCopy, children)

		n := arena.NewValue[Node](gen.Arena())
		n.sym = sym
		n.children = childrenCopy
		n.hash = h
		n.genID = gen.ID()

		t.symbols.Retain(sym)
		t.insertLocked(h, n)
		gen.IncNodes(1)

		if t.gens.CheckRotationNeeded() {
			t.gens.Rotate()
		}

		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Node), nil
}

// MakeNumeric returns the canonical node for the given u64 value.
func (t *Table) MakeNumeric(value uint64) *Node {
	h := t.hashNumeric(value)

	t.mu.RLock()
	if n := t.probeNumeric(h, value); n != nil {
		t.mu.RUnlock()
		return n
	}
	t.mu.RUnlock()

	key := "n:" + strconv.FormatUint(value, 16)
	v, _, _ := t.build.Do(key, func() (any, error) {
		t.mu.Lock()
		defer t.mu.Unlock()

		if n := t.probeNumeric(h, value); n != nil {
			return n, nil
		}

		t.growIfNeeded()

		gen := t.gens.Active()
		n := arena.NewValue[Node](gen.Arena())
		n.isNumeric = true
		n.numeric = value
		n.hash = h
		n.genID = gen.ID()

		t.insertLocked(h, n)
		gen.IncNodes(1)

		if t.gens.CheckRotationNeeded() {
			t.gens.Rotate()
		}

		return n, nil
	})
	return v.(*Node)
}

/* -------------------------------------------------------------------------
   Collector support
   ------------------------------------------------------------------------- */

// SweepResult summarises one sweep pass.
type SweepResult struct {
	Swept     int
	Survived  int
	Shrunk    bool
	NewCap    int
}

// Sweep removes every node whose mark stamp differs from liveStamp,
// releasing its symbol reference and decrementing its generation's node
// count. Caller must hold the pool's exclusive grant — Sweep takes Table's
// own write lock too since metrics/introspection readers only take the
// read lock and must never observe a half-rebuilt table.
func (t *Table) Sweep(liveStamp uint64) SweepResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.slots
	survivors := make([]*Node, 0, t.count)
	var swept int
	for _, n := range old {
		if n == nil {
			continue
		}
		if n.stamp == liveStamp {
			survivors = append(survivors, n)
			continue
		}
		swept++
		if !n.isNumeric {
			t.symbols.Release(n.sym)
		}
		for _, g := range t.gens.Generations() {
			if g.ID() == n.genID {
				g.IncNodes(-1)
				break
			}
		}
	}

	newCap := len(t.slots)
	shrunk := false
	if len(old) > defaultCapacity && float64(len(survivors)) < float64(len(old))*minShrinkLoad {
		newCap = len(old) / 2
		if newCap < defaultCapacity {
			newCap = defaultCapacity
		}
		shrunk = newCap != len(old)
	}

	t.slots = make([]*Node, nextPowerOfTwo(newCap))
	t.count = 0
	mask := uint64(len(t.slots) - 1)
	for _, n := range survivors {
		for i := n.hash & mask; ; i = (i + 1) & mask {
			if t.slots[i] == nil {
				t.slots[i] = n
				t.count++
				break
			}
		}
	}

	for _, g := range t.gens.Generations() {
		t.gens.Retire(g.ID())
	}

	return SweepResult{Swept: swept, Survived: len(survivors), Shrunk: shrunk, NewCap: len(t.slots)}
}

// AllNodesForMarkRoots is used only by tests that need to enumerate every
// stored node regardless of reachability (e.g. to assert canonicalization
// invariants against the raw table).
func (t *Table) AllNodesForMarkRoots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Node, 0, t.count)
	for _, n := range t.slots {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
