package termpool

// handle.go is the public surface over C3, the protection registry.
//
// A bare Term value (see term.go) already behaves as spec.md's "borrowed
// handle": it is just an address, costs nothing to copy, and participates
// in no registry bookkeeping. What the registry actually needs to track is
// which Terms must survive a collection independent of whatever else
// references them — that is what Owned and ProtectedContainer provide.
//
// © 2025 termpool authors. MIT License.

import (
	"github.com/Voskan/termpool/internal/markstack"
	"github.com/Voskan/termpool/internal/protect"
)

// Owned is a registry-rooted reference: as long as it has not been
// Released, the term it wraps (and everything reachable from it) survives
// collection, even if no other reference to it exists anywhere.
type Owned struct {
	h *protect.OwnedHandle
}

// Own reserves a protection slot in th's registry for t and returns an
// Owned handle rooting it. Own is amortized O(1), per spec.md §9's
// requirement on the own() operation.
func (p *Pool) Own(th *Thread, t Term) Owned {
	return Owned{h: th.t.Protect(t)}
}

// Term returns the protected value. Equivalent to spec.md's borrow(owned):
// O(1) and registry-free, since the returned Term is just the address
// already carried by the Owned handle.
func (o Owned) Term() Term {
	n, _ := o.h.Node().(Term)
	return n
}

// Release removes the handle from its thread's root set. The underlying
// node becomes collectible once no other root reaches it. Calling Release
// twice panics.
func (o Owned) Release() { o.h.Release() }

// ProtectedContainer is a bulk protection slot: one registry-visible root
// that can hold many member terms, instead of one Owned handle per term.
// Use this when protecting a large batch at once (e.g. building a big term
// graph before it is reachable from anywhere else) would otherwise flood
// the registry with individual handles.
type ProtectedContainer struct {
	c *protect.ProtectedContainer
}

// containerMember is the token returned by ProtectedContainer.Add, opaque
// to callers beyond passing it back to Remove.
type containerMember = markstack.Handle[markstack.Node]

// NewProtectedContainer creates a container owned by th.
func (p *Pool) NewProtectedContainer(th *Thread) ProtectedContainer {
	return ProtectedContainer{c: th.t.NewProtectedContainer()}
}

// Add protects t via the container and returns a token Remove accepts.
func (c ProtectedContainer) Add(t Term) containerMember {
	return c.c.Add(t)
}

// Remove stops protecting the member identified by tok.
func (c ProtectedContainer) Remove(tok containerMember) {
	c.c.Remove(tok)
}

// Len reports how many members the container currently protects.
func (c ProtectedContainer) Len() int { return c.c.Len() }

// Close releases the container itself. Members not otherwise reachable
// become collectible at the next CollectNow.
func (c ProtectedContainer) Close() { c.c.Close() }
