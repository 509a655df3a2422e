// Package term implements C2, the hash-consed term storage table, and the
// Node representation shared by the collector (C5) and the public API.
//
// The table's probing and growth machinery is adapted from the teacher
// cache's shard index: a plain open-addressed array guarded by a
// sync.RWMutex, with a fast read-only probe and a double-checked write path
// on miss — shard.put's "optimistic read‑lock, upgrade on miss" pattern,
// generalised from a single key→value slot to the full hash-cons
// (symbol, children) / (numeric, value) key.
//
// © 2025 termpool authors. MIT License.
package term

import (
	"github.com/Voskan/termpool/internal/markstack"
	"github.com/Voskan/termpool/internal/symtab"
)

// Node is a single hash-consed term: either a function application over a
// symbol, or a numeric leaf. Two Nodes are structurally equal if and only
// if they are the same Node — the invariant the whole pool exists to
// maintain.
type Node struct {
	sym       *symtab.Symbol // nil for numeric nodes
	children  []*Node        // nil for numeric and zero-arity nodes
	numeric   uint64
	isNumeric bool

	hash  uint64
	genID uint32 // generation (internal/genring.Generation.ID) this node was allocated from
	stamp uint64 // collector mark stamp; live iff stamp == table's current epoch
}

// Symbol returns the node's symbol. Panics if the node is numeric — callers
// must check IsNumeric first, mirroring the precondition style spec.md uses
// throughout C2.
func (n *Node) Symbol() *symtab.Symbol {
	if n.isNumeric {
		panic("term: Symbol called on a numeric node")
	}
	return n.sym
}

// IsNumeric reports whether the node is a numeric leaf.
func (n *Node) IsNumeric() bool { return n.isNumeric }

// NumericValue returns the node's numeric value. Panics on an application
// node.
func (n *Node) NumericValue() uint64 {
	if !n.isNumeric {
		panic("term: NumericValue called on an application node")
	}
	return n.numeric
}

// Arity returns the number of children: 0 for numerics and constants, the
// symbol's arity for applications.
func (n *Node) Arity() int {
	if n.isNumeric {
		return 0
	}
	return len(n.children)
}

// ChildNode returns the i'th child. Panics on an out-of-range index.
func (n *Node) ChildNode(i int) *Node { return n.children[i] }

// GenerationID reports which generation's arena this node was allocated
// from, used by the collector to decide when a generation can be retired.
func (n *Node) GenerationID() uint32 { return n.genID }

/* -------------------------------------------------------------------------
   markstack.Node implementation
   ------------------------------------------------------------------------- */

// MarkStamp returns the node's current mark stamp.
func (n *Node) MarkStamp() uint64 { return n.stamp }

// SetMarkStamp sets the node's mark stamp.
func (n *Node) SetMarkStamp(stamp uint64) { n.stamp = stamp }

// NumChildren implements markstack.Node.
func (n *Node) NumChildren() int { return n.Arity() }

// ChildAt implements markstack.Node.
func (n *Node) ChildAt(i int) markstack.Node {
	return n.children[i]
}

var _ markstack.Node = (*Node)(nil)
