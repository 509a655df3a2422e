package termpool

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollectNowReclaimsUnreachableSubgraph(t *testing.T) {
	p, _ := Initialize()
	th := p.RegisterThread()
	defer p.UnregisterThread(th)

	a := mustConst(t, p, th, "a")
	b := mustConst(t, p, th, "b")
	f := p.Intern("f", 2)
	root, err := p.MakeApplication(th, f, []Term{a, b})
	if err != nil {
		t.Fatalf("MakeApplication: %v", err)
	}
	owned := p.Own(th, root)
	defer owned.Release()

	if _, err := p.MakeConstant(th, p.Intern("orphan", 0)); err != nil {
		t.Fatalf("MakeConstant: %v", err)
	}

	before := p.PoolSize()
	stats := p.CollectNow()
	if stats.Reclaimed != 1 {
		t.Fatalf("stats.Reclaimed = %d, want 1", stats.Reclaimed)
	}
	if stats.Survived != before-1 {
		t.Fatalf("stats.Survived = %d, want %d", stats.Survived, before-1)
	}
	if p.PoolSize() != before-1 {
		t.Fatalf("PoolSize after collect = %d, want %d", p.PoolSize(), before-1)
	}
}

func TestCollectNowIsReentrantSafeAcrossGoroutines(t *testing.T) {
	p, _ := Initialize()
	th := p.RegisterThread()
	defer p.UnregisterThread(th)

	for i := 0; i < 16; i++ {
		if _, err := p.MakeNumeric(th, uint64(i)); err != nil {
			t.Fatalf("MakeNumeric: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		p.CollectNow()
		close(done)
	}()
	p.CollectNow()
	<-done

	if p.GCRunCount() != 2 {
		t.Fatalf("GCRunCount = %d, want 2", p.GCRunCount())
	}
}

func TestCollectNowLogsCompletionEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.WrapCore(
		func(zapcore.Core) zapcore.Core { return core },
	)))

	p, err := Initialize(WithLogger(logger))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	th := p.RegisterThread()
	defer p.UnregisterThread(th)
	mustConst(t, p, th, "a")

	p.CollectNow()

	entries := logs.FilterMessageSnippet("collection complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one collection-complete log entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Message, "termpool") {
		t.Fatalf("log message = %q, want it to mention termpool", entries[0].Message)
	}
}

func TestGCRunCountAndLastDurationTrackCollections(t *testing.T) {
	p, _ := Initialize()
	if p.GCRunCount() != 0 {
		t.Fatal("fresh pool should report zero GC runs")
	}
	p.CollectNow()
	if p.GCRunCount() != 1 {
		t.Fatalf("GCRunCount = %d, want 1", p.GCRunCount())
	}
	if p.LastGCDuration() < 0 {
		t.Fatal("LastGCDuration must not be negative")
	}
}
