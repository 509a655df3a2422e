package termpool

// snapshot.go is the pool's debug introspection surface, mirroring the
// teacher's /debug/arena-cache/snapshot one-for-one: a small
// JSON-serializable struct an HTTP handler can expose and a CLI can poll.
//
// © 2025 termpool authors. MIT License.

import "time"

// PoolSnapshot is a point-in-time summary of pool state, suitable for JSON
// encoding over a debug HTTP endpoint and decoding by an operator CLI (see
// cmd/termpool-inspect).
type PoolSnapshot struct {
	PoolSize         int     `json:"pool_size"`
	PoolCapacity     int     `json:"pool_capacity"`
	SymbolCount      int     `json:"symbol_count"`
	GCRuns           uint64  `json:"gc_runs"`
	LastGCDurationMs float64 `json:"last_gc_duration_ms"`
}

// Snapshot returns the current PoolSnapshot.
func (p *Pool) Snapshot() PoolSnapshot {
	return PoolSnapshot{
		PoolSize:         p.PoolSize(),
		PoolCapacity:     p.PoolCapacity(),
		SymbolCount:      p.SymbolCount(),
		GCRuns:           p.GCRunCount(),
		LastGCDurationMs: float64(p.LastGCDuration()) / float64(time.Millisecond),
	}
}
