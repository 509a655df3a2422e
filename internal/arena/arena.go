// Package arena provides a thin, generation-scoped allocation wrapper used
// by term storage and the symbol table.
//
// The cache this repository is descended from wrapped Go's experimental
// `goexperiment.arenas` package, which bypasses the garbage collector by
// handing out memory the GC never scans. That package was never
// stabilised and is unavailable to a plain `go build` — and more to the
// point, hand-rolling an equivalent over a raw []byte slab would be
// unsafe here: term nodes hold pointers (to children and to symbols), and
// the Go runtime only scans memory it knows contains pointers. Bit-casting
// a pointer-free []byte region into a pointer-bearing struct would let the
// collector reclaim still-referenced children out from under us.
//
// termpool therefore keeps the call shape the original wrapper exposed —
// New/Free/NewValue/MakeSlice/AllocBytes — but lets Go's own precise GC do
// the actual memory management. Arena's job is purely to group a
// generation's allocations for byte accounting (see internal/genring, which
// also keeps each generation's live-node count); "freeing" an arena only
// marks it freed and zeroes its byte count, and the runtime reclaims the
// objects once the term table's sweep has dropped every reference to them.
//
// Concurrency
// -----------
// Arena is *not* thread‑safe; in termpool the generation ring already
// serialises access to the active arena under the reader/writer barrier's
// shared grant combined with the term table's own short exclusive section.
//
// © 2025 termpool authors. MIT License.
package arena

import (
	"sync/atomic"
	"unsafe"

	"github.com/Voskan/termpool/internal/unsafehelpers"
)

// cacheLineSize is the accounting granularity for liveBytes: every
// allocation is rounded up to a cache-line multiple so the byte budget
// reflects the slabs the runtime actually touches rather than raw payload
// size.
const cacheLineSize = 64

// Arena is a thin new‑type wrapper that prevents external packages from
// depending on the allocation strategy directly, giving termpool the
// freedom to change it later (e.g. back to a real arena package, should one
// ever stabilise) without touching callers.
type Arena struct {
	liveBytes atomic.Int64
	freed     atomic.Bool
}

// New constructs an empty arena ready for allocations.
func New() *Arena {
	return &Arena{}
}

// Free marks the arena as no longer accepting allocations and zeroes its
// byte accounting. It does not and cannot reach into already-returned
// pointers — those remain valid for as long as the Go runtime can still
// trace a reference to them. Once the collector's sweep removes a
// generation's last node from the term table, the objects allocated here
// become unreachable and the runtime reclaims them on its own schedule.
func (a *Arena) Free() {
	a.freed.Store(true)
	a.liveBytes.Store(0)
}

// LiveBytes reports the accounted byte size of everything allocated through
// this arena since the last Free.
func (a *Arena) LiveBytes() int64 { return a.liveBytes.Load() }

// Freed reports whether Free has already been called.
func (a *Arena) Freed() bool { return a.freed.Load() }

// NewValue allocates a zero‑initialised T and returns a pointer to it,
// recording its size against the arena's byte budget.
func NewValue[T any](a *Arena) *T {
	var zero T
	p := new(T)
	a.liveBytes.Add(int64(unsafehelpers.AlignUp(unsafe.Sizeof(zero), cacheLineSize)))
	return p
}

// MakeSlice allocates a slice of length==cap==n, recording its size against
// the arena's byte budget.
func MakeSlice[T any](a *Arena, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	s := make([]T, n)
	a.liveBytes.Add(int64(unsafehelpers.AlignUp(unsafe.Sizeof(zero)*uintptr(n), cacheLineSize)))
	return s
}

// AllocBytes copies buf into a freshly allocated, arena-accounted buffer —
// used when interning a symbol's name into its own stable storage so later
// callers never hold a reference into caller-owned memory.
func AllocBytes(a *Arena, buf []byte) []byte {
	dst := make([]byte, len(buf))
	copy(dst, buf)
	a.liveBytes.Add(int64(unsafehelpers.AlignUp(uintptr(len(dst)), cacheLineSize)))
	return dst
}
