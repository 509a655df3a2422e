package termpool

// symbol.go is the public surface over C1, the symbol intern table.
//
// © 2025 termpool authors. MIT License.

import "github.com/Voskan/termpool/internal/symtab"

// Symbol is a canonicalised (name, arity) pair. Two Intern calls with equal
// name and arity always return the same *Symbol — equality is pointer
// identity.
type Symbol = symtab.Symbol

// Intern returns the canonical Symbol for (name, arity), allocating one on
// first use. The empty name is permitted; distinct arities with an
// identical name are distinct symbols.
func (p *Pool) Intern(name string, arity uint32) *Symbol {
	p.metrics.incIntern()
	return p.symbols.Intern(name, arity)
}

// SymbolName returns sym's name. The returned string is valid for as long
// as sym itself is reachable.
func SymbolName(sym *Symbol) string { return sym.Name() }

// SymbolArity returns sym's arity.
func SymbolArity(sym *Symbol) uint32 { return sym.Arity() }
