// Package protect implements C3, the protection registry: the root set the
// collector (C5) scans before it may reclaim anything. Go has no public API
// for goroutine-local storage, so unlike a pthread-style implementation that
// would key roots off the calling thread implicitly, termpool requires each
// participating goroutine to call pool.RegisterThread once and thread the
// returned *Thread capability through every subsequent call that needs to
// protect a result — the same explicit-handle style the teacher cache uses
// for its loader context, generalised from "carries a context.Context" to
// "carries a *Thread".
//
// © 2025 termpool authors. MIT License.
package protect

import (
	"sync"
	"sync/atomic"

	"github.com/Voskan/termpool/internal/markstack"
)

// OwnedHandle is a single protection slot: as long as it is not released,
// the node it holds (and everything reachable from it) survives collection.
// Owned handles are registry-rooted — releasing one is required before the
// node can ever be reclaimed, even if every other reference to it has been
// dropped.
type OwnedHandle struct {
	thread *Thread
	slot   markstack.Handle[markstack.Node]
	node   markstack.Node
}

// Node returns the protected value.
func (h *OwnedHandle) Node() markstack.Node { return h.node }

// Release removes the handle from its thread's root set. Calling Release
// twice panics, matching the teacher's double-close guards elsewhere in this
// codebase.
func (h *OwnedHandle) Release() {
	if h.slot == nil {
		panic("protect: Release called on an already-released handle")
	}
	h.thread.mu.Lock()
	h.thread.owned.Remove(h.slot)
	h.thread.mu.Unlock()
	h.slot = nil
}

// Thread is the capability a goroutine obtains from RegisterThread and must
// present to every construction or protection call it makes. It owns one
// root slot per outstanding OwnedHandle plus any ProtectedContainers it has
// created.
type Thread struct {
	token int64

	mu    sync.Mutex
	owned markstack.Ring[markstack.Node]
	bulk  map[*ProtectedContainer]struct{}

	registry *Registry
}

// Token returns the stable per-thread identifier, also used as the
// reentrancy key for internal/barrier.
func (t *Thread) Token() int64 { return t.token }

// Protect adds node to this thread's root set and returns a handle the
// caller must Release once the node no longer needs to survive a
// collection independent of other references to it.
func (t *Thread) Protect(node markstack.Node) *OwnedHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := &OwnedHandle{thread: t, node: node}
	h.slot = t.owned.Append(node)
	return h
}

// NewProtectedContainer creates a bulk-protection container owned by this
// thread: a single root slot whose mark callback walks every member the
// caller has added, instead of consuming one registry slot per member. Use
// this when protecting many nodes at once (e.g. building a large term graph
// before it is reachable from anywhere else) would otherwise flood the
// registry with one-off OwnedHandles.
func (t *Thread) NewProtectedContainer() *ProtectedContainer {
	c := &ProtectedContainer{owner: t}
	t.mu.Lock()
	if t.bulk == nil {
		t.bulk = make(map[*ProtectedContainer]struct{})
	}
	t.bulk[c] = struct{}{}
	t.mu.Unlock()
	return c
}

// roots appends every node currently protected by this thread — owned
// handles and bulk containers alike — onto dst and returns the extended
// slice. Called by the collector while it holds the pool's exclusive grant,
// so no other thread can be mutating this thread's root set concurrently;
// Thread.mu is still taken for symmetry with Go's race detector, which
// cannot otherwise see that the exclusive grant implies exclusion here.
func (t *Thread) roots(dst []markstack.Node) []markstack.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.owned.Walk(func(n markstack.Node) { dst = append(dst, n) })
	for c := range t.bulk {
		c.mu.Lock()
		c.members.Walk(func(n markstack.Node) { dst = append(dst, n) })
		c.mu.Unlock()
	}
	return dst
}

// ProtectedContainer is a bulk protection slot: one registry-visible root
// that can hold many member nodes, backed by the same ring the collector
// uses elsewhere, instead of one OwnedHandle per node.
type ProtectedContainer struct {
	owner *Thread

	mu      sync.Mutex
	members markstack.Ring[markstack.Node]
}

// Add protects node via this container, returning a token Remove accepts.
func (c *ProtectedContainer) Add(node markstack.Node) markstack.Handle[markstack.Node] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members.Append(node)
}

// Remove stops protecting the member identified by tok.
func (c *ProtectedContainer) Remove(tok markstack.Handle[markstack.Node]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members.Remove(tok)
}

// Len reports how many members the container currently protects.
func (c *ProtectedContainer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members.Len()
}

// Close releases the container itself, dropping every member's protection.
// Members already reachable from elsewhere are unaffected; members that
// were only reachable through this container become collectible at the
// pool's next collection.
func (c *ProtectedContainer) Close() {
	c.owner.mu.Lock()
	delete(c.owner.bulk, c)
	c.owner.mu.Unlock()
}

/* -------------------------------------------------------------------------
   Registry — process-wide set of registered threads
   ------------------------------------------------------------------------- */

// Registry tracks every currently registered Thread. The collector asks it
// for the full root set; pool.RegisterThread/UnregisterThread add and
// remove entries.
type Registry struct {
	mu      sync.RWMutex
	threads map[int64]*Thread
	nextTok atomic.Int64
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{threads: make(map[int64]*Thread, 8)}
}

// Register mints a new Thread and adds it to the registry.
func (r *Registry) Register() *Thread {
	tok := r.nextTok.Add(1)
	t := &Thread{token: tok, registry: r}

	r.mu.Lock()
	r.threads[tok] = t
	r.mu.Unlock()
	return t
}

// Unregister removes a thread from the registry. Any OwnedHandles or
// ProtectedContainers it still held stop rooting anything; this is the
// caller's responsibility to have already released if that protection was
// still needed elsewhere.
func (r *Registry) Unregister(t *Thread) {
	r.mu.Lock()
	delete(r.threads, t.token)
	r.mu.Unlock()
}

// Len reports how many threads are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.threads)
}

// Roots collects the full process-wide root set: every node protected by
// every registered thread. Called by the collector once it holds the pool's
// exclusive grant, so the set of registered threads and each thread's
// protected nodes cannot change underneath it.
func (r *Registry) Roots() []markstack.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]markstack.Node, 0, 64)
	for _, t := range r.threads {
		out = t.roots(out)
	}
	return out
}
