package symtab

import "testing"

func TestInternCanonicalizesByNameAndArity(t *testing.T) {
	tbl := New()
	a1 := tbl.Intern("f", 2)
	a2 := tbl.Intern("f", 2)
	if a1 != a2 {
		t.Fatal("Intern(f,2) twice did not canonicalize")
	}

	b := tbl.Intern("f", 3)
	if a1 == b {
		t.Fatal("same name different arity must differ")
	}
}

func TestRetainReleaseLifecycle(t *testing.T) {
	tbl := New()
	s := tbl.Intern("x", 0)
	tbl.Retain(s)
	tbl.Retain(s)

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}

	tbl.Release(s)
	if tbl.Len() != 1 {
		t.Fatal("symbol with outstanding refs must not be evicted")
	}

	tbl.Release(s)
	if tbl.Len() != 0 {
		t.Fatal("symbol with zero refs must be evicted")
	}

	// Interning again after full release must yield a fresh symbol.
	s2 := tbl.Intern("x", 0)
	if s == s2 {
		t.Fatal("expected a new Symbol after the old one was fully released")
	}
}

func TestReleaseWithoutRetainDoesNotPanic(t *testing.T) {
	tbl := New()
	s := tbl.Intern("x", 0)
	tbl.Release(s) // refs goes negative, but must not evict a different current entry
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tbl.Len())
	}
}

func TestNameAndArityAccessors(t *testing.T) {
	tbl := New()
	s := tbl.Intern("foo", 3)
	if s.Name() != "foo" {
		t.Fatalf("Name() = %q, want foo", s.Name())
	}
	if s.Arity() != 3 {
		t.Fatalf("Arity() = %d, want 3", s.Arity())
	}
}
