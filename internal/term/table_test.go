package term

import (
	"sync"
	"testing"

	"github.com/Voskan/termpool/internal/symtab"
)

func newTestTable() (*Table, *symtab.Table) {
	syms := symtab.New()
	return NewTable(16, 1<<20, syms), syms
}

func TestMakeApplicationCanonicalizes(t *testing.T) {
	tbl, syms := newTestTable()
	a := syms.Intern("a", 0)
	f := syms.Intern("f", 1)

	na, err := tbl.MakeApplication(a, nil)
	if err != nil {
		t.Fatalf("MakeApplication(a): %v", err)
	}

	n1, err := tbl.MakeApplication(f, []*Node{na})
	if err != nil {
		t.Fatalf("MakeApplication(f(a)): %v", err)
	}
	n2, err := tbl.MakeApplication(f, []*Node{na})
	if err != nil {
		t.Fatalf("MakeApplication(f(a)): %v", err)
	}
	if n1 != n2 {
		t.Fatal("f(a) built twice did not canonicalize")
	}
}

func TestMakeApplicationArityMismatch(t *testing.T) {
	tbl, syms := newTestTable()
	f := syms.Intern("f", 2)
	a := mustLeaf(t, tbl, syms, "a")

	_, err := tbl.MakeApplication(f, []*Node{a})
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	if _, ok := err.(*ErrArityMismatch); !ok {
		t.Fatalf("error type = %T, want *ErrArityMismatch", err)
	}
}

func mustLeaf(t *testing.T, tbl *Table, syms *symtab.Table, name string) *Node {
	t.Helper()
	sym := syms.Intern(name, 0)
	n, err := tbl.MakeApplication(sym, nil)
	if err != nil {
		t.Fatalf("MakeApplication(%s): %v", name, err)
	}
	return n
}

func TestMakeNumericCanonicalizesByExactValue(t *testing.T) {
	tbl, _ := newTestTable()
	n1 := tbl.MakeNumeric(7)
	n2 := tbl.MakeNumeric(7)
	if n1 != n2 {
		t.Fatal("MakeNumeric(7) twice did not canonicalize")
	}
	n3 := tbl.MakeNumeric(8)
	if n1 == n3 {
		t.Fatal("distinct numeric values must not share a node")
	}
}

func TestGrowPreservesCanonicalIdentity(t *testing.T) {
	tbl, syms := newTestTable() // small initial capacity to force growth
	first := map[string]*Node{}
	for i := 0; i < 64; i++ {
		name := string(rune('a' + (i % 26)))
		sym := syms.Intern(name, 1)
		leaf := mustLeaf(t, tbl, syms, "leaf"+string(rune(i)))
		n, err := tbl.MakeApplication(sym, []*Node{leaf})
		if err != nil {
			t.Fatalf("MakeApplication: %v", err)
		}
		key := name + ":" + string(rune(i))
		first[key] = n
	}
	// 64 distinct leaves plus 64 distinct applications.
	if tbl.Len() != 128 {
		t.Fatalf("Len() = %d, want 128", tbl.Len())
	}
	// Re-probing after growth must still find the same nodes.
	for i := 0; i < 64; i++ {
		name := string(rune('a' + (i % 26)))
		sym := syms.Intern(name, 1)
		leaf := mustLeaf(t, tbl, syms, "leaf"+string(rune(i)))
		n, err := tbl.MakeApplication(sym, []*Node{leaf})
		if err != nil {
			t.Fatalf("MakeApplication: %v", err)
		}
		if n != first[name+":"+string(rune(i))] {
			t.Fatalf("re-probe of %s(leaf%d) after growth returned a different node", name, i)
		}
	}
}

func TestSweepReclaimsUnmarkedAndKeepsMarked(t *testing.T) {
	tbl, _ := newTestTable()
	live := tbl.MakeNumeric(1)
	dead := tbl.MakeNumeric(2)
	_ = dead

	live.SetMarkStamp(5)
	result := tbl.Sweep(5)

	if result.Survived != 1 {
		t.Fatalf("Survived = %d, want 1", result.Survived)
	}
	if result.Swept != 1 {
		t.Fatalf("Swept = %d, want 1", result.Swept)
	}

	remaining := tbl.AllNodesForMarkRoots()
	if len(remaining) != 1 || remaining[0] != live {
		t.Fatal("sweep did not preserve exactly the marked node")
	}
}

func TestSweepReleasesSymbolRefsForDeadApplications(t *testing.T) {
	tbl, syms := newTestTable()
	sym := syms.Intern("only", 0)
	n, err := tbl.MakeApplication(sym, nil)
	if err != nil {
		t.Fatalf("MakeApplication: %v", err)
	}
	_ = n
	if syms.Len() != 1 {
		t.Fatalf("symbol table Len() = %d, want 1", syms.Len())
	}

	tbl.Sweep(999) // nothing marked with stamp 999, so n is swept
	if syms.Len() != 0 {
		t.Fatal("sweeping the last node referencing a symbol must release it")
	}
}

func TestConcurrentMakeApplicationSingleflightConvergesToOneNode(t *testing.T) {
	tbl, syms := newTestTable()
	a := mustLeaf(t, tbl, syms, "a")
	f := syms.Intern("f", 1)

	const workers = 16
	results := make([]*Node, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := tbl.MakeApplication(f, []*Node{a})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = n
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d produced a different node than worker 0", i)
		}
	}
}
