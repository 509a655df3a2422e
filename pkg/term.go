package termpool

// term.go is the public surface over C2, the hash-cons term storage table.
//
// Term itself is a type alias for the internal node representation rather
// than a wrapping struct: spec.md's central invariant is that structural
// equality *is* address equality, so a Term value must carry exactly the
// node's own address and nothing else — wrapping it in a second struct
// would give two different Term values (at different wrapper addresses)
// for what must be the same term, breaking `==` as the equality test.
//
// © 2025 termpool authors. MIT License.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Voskan/termpool/internal/term"
)

// Term is a hash-consed first-order term: a numeric leaf, a zero-arity
// constant, or a function application. Two Terms are structurally equal if
// and only if t1 == t2.
type Term = *term.Node

// MakeConstant returns the canonical node for a zero-arity symbol.
// Precondition: SymbolArity(sym) == 0.
func (p *Pool) MakeConstant(th *Thread, sym *Symbol) (Term, error) {
	return p.MakeApplication(th, sym, nil)
}

// MakeApplication returns the canonical node for sym(children...),
// allocating one only if this exact (symbol, children) tuple has never been
// built before. children must already be valid canonical terms obtained
// from this same pool. Returns ErrArityMismatch (wrapping the underlying
// detail) if len(children) != SymbolArity(sym); no node is allocated in
// that case.
func (p *Pool) MakeApplication(th *Thread, sym *Symbol, children []Term) (Term, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if th == nil || th.t == nil {
		return nil, ErrUnregisteredThread
	}
	tok := th.t.Token()
	p.barrier.AcquireShared(tok)
	n, err := p.terms.MakeApplication(sym, children)
	p.barrier.ReleaseShared(tok)
	if err != nil {
		return nil, wrapArityError(err)
	}
	p.metrics.incMake()
	p.maybeAutoCollect(th)
	return n, nil
}

// MakeNumeric returns the canonical node for the given u64 value. All
// distinct values are distinct nodes; there is no sub-interning of small
// integers.
func (p *Pool) MakeNumeric(th *Thread, value uint64) (Term, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if th == nil || th.t == nil {
		return nil, ErrUnregisteredThread
	}
	tok := th.t.Token()
	p.barrier.AcquireShared(tok)
	n := p.terms.MakeNumeric(value)
	p.barrier.ReleaseShared(tok)
	p.metrics.incMake()
	p.maybeAutoCollect(th)
	return n, nil
}

func wrapArityError(err error) error {
	if _, ok := err.(*term.ErrArityMismatch); ok {
		return fmt.Errorf("%w: %s", ErrArityMismatch, err)
	}
	return err
}

// Argument returns the i'th child of an application term. Panics if i is
// out of range or t is numeric, mirroring spec.md's precondition-style
// contract for C2 accessors.
func Argument(t Term, i int) Term { return t.ChildNode(i) }

// Arguments returns a borrowed view over t's children: length equals
// SymbolArity(SymbolOf(t)) for applications, zero for numerics. The
// returned slice is a fresh copy; mutating it does not affect t.
func Arguments(t Term) []Term {
	n := t.Arity()
	out := make([]Term, n)
	for i := 0; i < n; i++ {
		out[i] = t.ChildNode(i)
	}
	return out
}

// SymbolOf returns t's symbol. Panics if t is numeric.
func SymbolOf(t Term) *Symbol { return t.Symbol() }

// IsNumeric reports whether t is a numeric leaf.
func IsNumeric(t Term) bool { return t.IsNumeric() }

// NumericValue returns t's numeric value. Panics if t is not numeric.
func NumericValue(t Term) uint64 { return t.NumericValue() }

// Print renders t as text: `f(a1,...,an)` for applications, the bare
// symbol name for constants, decimal digits for numerics. It is the exact
// dual of ParseTerm, so ParseTerm(Print(t)) round-trips to the same
// address.
func Print(t Term) string {
	var b strings.Builder
	printTerm(&b, t)
	return b.String()
}

func printTerm(b *strings.Builder, t Term) {
	if t.IsNumeric() {
		b.WriteString(strconv.FormatUint(t.NumericValue(), 10))
		return
	}
	b.WriteString(t.Symbol().Name())
	n := t.Arity()
	if n == 0 {
		return
	}
	b.WriteByte('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		printTerm(b, t.ChildNode(i))
	}
	b.WriteByte(')')
}
