package main

// termgen.go generates random nested term shapes for load-testing a
// running termpool, grounded directly on tools/dataset_gen's flag layout,
// adapted from emitting flat uint64 keys to emitting f(...)-style term text
// with uniformly random choices (there is no Zipf option) and a configurable amount of
// shared substructure (so a loaded pool actually exercises hash-consing
// instead of allocating N independent trees).
//
// Usage:
//
//	go run ./tools/termgen -n 10000 -depth 4 -fanout 3 -share 0.3 -seed 42
//
// Each generated line is parse_term-compatible text (see pkg/parse.go),
// ready to feed into a batch caller of Pool.ParseTerm.
//
// © 2025 termpool authors. MIT License.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

func main() {
	var (
		n       = flag.Int("n", 10_000, "number of top-level terms to generate")
		depth   = flag.Int("depth", 4, "maximum nesting depth")
		fanout  = flag.Int("fanout", 3, "maximum arity of a generated application")
		share   = flag.Float64("share", 0.3, "probability a subterm reuses a previously generated one instead of building fresh")
		seedVal = flag.Int64("seed", 42, "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *share < 0 || *share > 1 {
		fmt.Fprintln(os.Stderr, "share must be in [0, 1]")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))
	g := &generator{rnd: rnd, maxDepth: *depth, maxFanout: *fanout, shareProb: *share}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for i := 0; i < *n; i++ {
		fmt.Fprintln(w, g.term(0))
	}
}

// generator produces parse_term-compatible text, remembering previously
// emitted subterm strings at each depth so later calls can reuse one
// instead of always building fresh structure.
type generator struct {
	rnd       *rand.Rand
	maxDepth  int
	maxFanout int
	shareProb float64

	seenByDepth map[int][]string
}

func (g *generator) remember(depth int, s string) {
	if g.seenByDepth == nil {
		g.seenByDepth = make(map[int][]string)
	}
	g.seenByDepth[depth] = append(g.seenByDepth[depth], s)
}

func (g *generator) reuse(depth int) (string, bool) {
	pool := g.seenByDepth[depth]
	if len(pool) == 0 {
		return "", false
	}
	return pool[g.rnd.Intn(len(pool))], true
}

func (g *generator) term(depth int) string {
	if depth > 0 && g.rnd.Float64() < g.shareProb {
		if s, ok := g.reuse(depth); ok {
			return s
		}
	}

	var s string
	switch {
	case depth >= g.maxDepth || g.rnd.Float64() < 0.35:
		s = strconv.FormatUint(g.rnd.Uint64()%1000, 10)
	case g.rnd.Float64() < 0.25:
		s = randomIdent(g.rnd)
	default:
		arity := 1 + g.rnd.Intn(g.maxFanout)
		args := make([]string, arity)
		for i := range args {
			args[i] = g.term(depth + 1)
		}
		s = randomIdent(g.rnd) + "(" + strings.Join(args, ",") + ")"
	}

	g.remember(depth, s)
	return s
}

var identAlphabet = []rune("abcdefghijklmnopqrstuvwxyz")

func randomIdent(rnd *rand.Rand) string {
	n := 1 + rnd.Intn(4)
	b := make([]rune, n)
	for i := range b {
		b[i] = identAlphabet[rnd.Intn(len(identAlphabet))]
	}
	return string(b)
}
