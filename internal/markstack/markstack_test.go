package markstack

import "testing"

// fakeNode is a minimal Node implementation for exercising Mark in isolation
// from internal/term.
type fakeNode struct {
	stamp    uint64
	children []*fakeNode
}

func (n *fakeNode) MarkStamp() uint64     { return n.stamp }
func (n *fakeNode) SetMarkStamp(s uint64) { n.stamp = s }
func (n *fakeNode) NumChildren() int      { return len(n.children) }
func (n *fakeNode) ChildAt(i int) Node    { return n.children[i] }

func TestMarkVisitsReachableGraphOnce(t *testing.T) {
	leaf := &fakeNode{}
	mid := &fakeNode{children: []*fakeNode{leaf}}
	root := &fakeNode{children: []*fakeNode{mid, leaf}} // leaf shared, must be visited once

	visited := Mark([]Node{root}, 7)
	if visited != 3 {
		t.Fatalf("visited = %d, want 3 (root, mid, leaf each once)", visited)
	}
	if root.stamp != 7 || mid.stamp != 7 || leaf.stamp != 7 {
		t.Fatal("not every reachable node was stamped")
	}
}

func TestMarkIgnoresUnreachableNodes(t *testing.T) {
	reachable := &fakeNode{}
	orphan := &fakeNode{}

	Mark([]Node{reachable}, 1)
	if orphan.stamp == 1 {
		t.Fatal("orphan node was marked despite not being reachable from roots")
	}
}

func TestMarkHandlesCycleSafely(t *testing.T) {
	a := &fakeNode{}
	b := &fakeNode{children: []*fakeNode{a}}
	a.children = []*fakeNode{b} // a <-> b cycle

	visited := Mark([]Node{a}, 3)
	if visited != 2 {
		t.Fatalf("visited = %d, want 2", visited)
	}
}

func TestRingAppendWalkRemove(t *testing.T) {
	var r Ring[string]
	h1 := r.Append("a")
	r.Append("b")
	h3 := r.Append("c")

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	var seen []string
	r.Walk(func(s string) { seen = append(seen, s) })
	if len(seen) != 3 {
		t.Fatalf("Walk visited %d elements, want 3", len(seen))
	}

	r.Remove(h1)
	r.Remove(h3)
	if r.Len() != 1 {
		t.Fatalf("Len() after removing two = %d, want 1", r.Len())
	}

	var remaining []string
	r.Walk(func(s string) { remaining = append(remaining, s) })
	if len(remaining) != 1 || remaining[0] != "b" {
		t.Fatalf("remaining = %v, want [b]", remaining)
	}
}

func TestRingRemoveLastElementEmptiesRing(t *testing.T) {
	var r Ring[int]
	h := r.Append(1)
	r.Remove(h)
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	var visited bool
	r.Walk(func(int) { visited = true })
	if visited {
		t.Fatal("Walk visited an element on an emptied ring")
	}
}
