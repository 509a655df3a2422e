package termpool

// parse.go implements the textual input surface spec.md §6 requires
// (`parse_term(text) → Owned`) but leaves to an out-of-scope grammar
// collaborator. Since the operation must still exist and round-trip with
// Print (spec.md §8), a minimal grammar is defined here:
//
//	term := NUMBER | IDENT '(' term (',' term)* ')' | IDENT
//
// Whitespace is insignificant between tokens. NUMBER is a sequence of
// decimal digits; IDENT is any run of characters that is neither
// whitespace, a digit-only token, nor one of '(', ')', ','.
//
// © 2025 termpool authors. MIT License.

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer { return &lexer{src: []rune(s)} }

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isDelimiter(r rune) bool {
	return r == '(' || r == ')' || r == ','
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}

	r := l.src[l.pos]
	switch r {
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "("}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ","}, nil
	}

	start := l.pos
	for l.pos < len(l.src) && !unicode.IsSpace(l.src[l.pos]) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return token{}, fmt.Errorf("%w: unexpected character %q at offset %d", ErrParse, r, l.pos)
	}
	text := string(l.src[start:l.pos])

	isNumber := true
	for _, c := range text {
		if !unicode.IsDigit(c) {
			isNumber = false
			break
		}
	}
	if isNumber {
		return token{kind: tokNumber, text: text}, nil
	}
	return token{kind: tokIdent, text: text}, nil
}

type parser struct {
	lx   *lexer
	tok  token
	p    *Pool
	th   *Thread
	held ProtectedContainer
}

func (ps *parser) advance() error {
	t, err := ps.lx.next()
	if err != nil {
		return err
	}
	ps.tok = t
	return nil
}

// ParseTerm parses text per the grammar documented above, interning any new
// symbols it encounters and constructing the term via MakeConstant /
// MakeApplication / MakeNumeric, and returns it wrapped in an Owned handle
// so the freshly built (and potentially not-yet-reachable-from-anywhere-
// else) term survives until the caller has a chance to anchor it elsewhere.
//
// A child built mid-parse is, for the moment it exists, a canonical table
// entry reachable from no registry root: it hasn't been wrapped in its
// parent application yet, and it isn't the final result ParseTerm will
// hand back via Own. parser.held anchors every such intermediate in a
// ProtectedContainer for the whole parse so a collection racing the parse
// can never reclaim one out from under it; it is only closed once the
// top-level term has its own Owned handle.
func (p *Pool) ParseTerm(th *Thread, text string) (Owned, error) {
	ps := &parser{lx: newLexer(text), p: p, th: th, held: p.NewProtectedContainer(th)}
	defer ps.held.Close()

	if err := ps.advance(); err != nil {
		return Owned{}, err
	}

	t, err := ps.parseTerm()
	if err != nil {
		return Owned{}, err
	}
	if ps.tok.kind != tokEOF {
		return Owned{}, fmt.Errorf("%w: trailing input %q", ErrParse, ps.tok.text)
	}
	return p.Own(th, t), nil
}

func (ps *parser) parseTerm() (Term, error) {
	switch ps.tok.kind {
	case tokNumber:
		v, err := strconv.ParseUint(ps.tok.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrParse, ps.tok.text)
		}
		if err := ps.advance(); err != nil {
			return nil, err
		}
		n, err := ps.p.MakeNumeric(ps.th, v)
		if err != nil {
			return nil, err
		}
		ps.held.Add(n)
		return n, nil

	case tokIdent:
		name := ps.tok.text
		if err := ps.advance(); err != nil {
			return nil, err
		}
		if ps.tok.kind != tokLParen {
			sym := ps.p.Intern(name, 0)
			n, err := ps.p.MakeConstant(ps.th, sym)
			if err != nil {
				return nil, err
			}
			ps.held.Add(n)
			return n, nil
		}
		if err := ps.advance(); err != nil { // consume '('
			return nil, err
		}
		var children []Term
		if ps.tok.kind != tokRParen {
			for {
				child, err := ps.parseTerm()
				if err != nil {
					return nil, err
				}
				children = append(children, child)
				if ps.tok.kind == tokComma {
					if err := ps.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
		}
		if ps.tok.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')', got %q", ErrParse, ps.tok.text)
		}
		if err := ps.advance(); err != nil { // consume ')'
			return nil, err
		}
		sym := ps.p.Intern(name, uint32(len(children)))
		n, err := ps.p.MakeApplication(ps.th, sym, children)
		if err != nil {
			return nil, err
		}
		ps.held.Add(n)
		return n, nil

	default:
		return nil, fmt.Errorf("%w: unexpected token %q", ErrParse, ps.tok.text)
	}
}

