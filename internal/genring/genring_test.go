package genring

import (
	"testing"

	arena "github.com/Voskan/termpool/internal/arena"
)

func TestNewStartsWithOneActiveGeneration(t *testing.T) {
	r := New(1 << 20)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if r.Active() == nil {
		t.Fatal("Active() returned nil")
	}
}

func TestRotateStartsFreshGenerationAndKeepsOld(t *testing.T) {
	r := New(1 << 20)
	first := r.Active()
	first.IncNodes(1) // pretend a node was allocated so Retire won't reap it early

	retiring := r.Rotate()
	if retiring != first {
		t.Fatal("Rotate did not return the previously active generation")
	}
	if r.Active() == first {
		t.Fatal("Rotate did not install a new active generation")
	}
	if r.Active().ID() == first.ID() {
		t.Fatal("new generation must have a distinct ID")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() after Rotate = %d, want 2", r.Len())
	}
}

func TestRetireOnlyFreesDrainedNonActiveGenerations(t *testing.T) {
	r := New(1 << 20)
	first := r.Active()
	first.IncNodes(1)
	r.Rotate()

	if r.Retire(first.ID()) {
		t.Fatal("Retire must refuse a generation that still has live nodes")
	}

	first.IncNodes(-1)
	if !r.Retire(first.ID()) {
		t.Fatal("Retire should free a drained, non-active generation")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() after Retire = %d, want 1", r.Len())
	}
}

func TestRetireRefusesActiveGeneration(t *testing.T) {
	r := New(1 << 20)
	active := r.Active()
	if r.Retire(active.ID()) {
		t.Fatal("Retire must refuse the currently active generation")
	}
}

func TestCheckRotationNeededReflectsByteBudget(t *testing.T) {
	r := New(8) // tiny budget
	if r.CheckRotationNeeded() {
		t.Fatal("freshly created generation should not need rotation")
	}
	arena.AllocBytes(r.Active().Arena(), make([]byte, 64))
	if !r.CheckRotationNeeded() {
		t.Fatal("expected rotation to be needed once the byte budget is exceeded")
	}
}
