// Package symtab implements C1, the process-wide symbol table: interning of
// (name, arity) pairs into canonical, address-stable Symbol handles.
//
// Symbols are reference-counted rather than mark-swept (spec.md §9's open
// question resolved this way because symbols are few, long-lived, and every
// node that references one already knows exactly when it stops doing so —
// at construction and at sweep — so a precise count is cheap and avoids
// giving the collector a second object graph to walk). symbolName's
// lifetime is therefore tied to the symbol's refcount reaching zero, not to
// a collection cycle: callers must not retain a Name() view past the
// matching node's own lifetime.
//
// Concurrency
// -----------
// Intern is called from many goroutines concurrently (Pool.Intern does not
// take the barrier's shared grant); entries are added under a short internal
// mutex,
// mirroring the teacher cache's shard index, which also protects a plain Go
// map with a narrow critical section rather than attempting a lock-free
// table.
//
// © 2025 termpool authors. MIT License.
package symtab

import (
	"sync"

	"github.com/Voskan/termpool/internal/arena"
	"github.com/Voskan/termpool/internal/unsafehelpers"
)

// Symbol is a canonicalised (name, arity) pair. Two Intern calls with equal
// name and arity always return the same *Symbol; equality is therefore
// pointer identity.
type Symbol struct {
	name  string // backed by arena-owned storage, stable for the symbol's life
	arity uint32
	refs  int64 // mutated only while Table.mu is held
}

// Name returns the symbol's name. The returned string is valid for as long
// as the symbol itself is reachable.
func (s *Symbol) Name() string { return s.name }

// Arity returns the symbol's arity.
func (s *Symbol) Arity() uint32 { return s.arity }

type key struct {
	name  string
	arity uint32
}

// Table is the process-wide symbol intern table.
type Table struct {
	mu  sync.Mutex
	ar  *arena.Arena
	idx map[key]*Symbol
}

// New constructs an empty symbol table.
func New() *Table {
	return &Table{
		ar:  arena.New(),
		idx: make(map[key]*Symbol, 64),
	}
}

// Intern returns the canonical Symbol for (name, arity), allocating one on
// first use. The empty name is permitted; distinct arities with an
// identical name are distinct symbols.
func (t *Table) Intern(name string, arity uint32) *Symbol {
	k := key{name: name, arity: arity}

	t.mu.Lock()
	defer t.mu.Unlock()

	if sym, ok := t.idx[k]; ok {
		return sym
	}

	stable := arena.AllocBytes(t.ar, unsafehelpers.StringToBytes(name))
	sym := &Symbol{name: unsafehelpers.BytesToString(stable), arity: arity}
	t.idx[k] = sym
	return sym
}

// Retain increments a symbol's reference count. Called once per term node
// that stores this symbol (MakeConstant/MakeApplication). Retain and
// Release both hold the table's lock for their whole read-modify-write so a
// release that drops the count to zero can never race a concurrent retain
// of the same symbol into believing it is still unreferenced.
func (t *Table) Retain(s *Symbol) {
	t.mu.Lock()
	s.refs++
	t.mu.Unlock()
}

// Release decrements a symbol's reference count and removes it from the
// table once no node references it any longer. Called by the collector's
// sweep for every node it reclaims.
func (t *Table) Release(s *Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.refs--
	if s.refs > 0 {
		return
	}
	k := key{name: s.name, arity: s.arity}
	if cur, ok := t.idx[k]; ok && cur == s {
		delete(t.idx, k)
	}
}

// Len returns the number of currently interned symbols.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.idx)
}
