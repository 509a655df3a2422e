package termpool

// config.go defines the pool's internal configuration object and the
// functional options that build it, following the teacher's config[K,V] +
// Option[K,V] pattern — minus the generics, since a term pool has exactly
// one K/V shape (symbols and nodes), not a user-chosen one.
//
// Design notes
// ------------
// • All fields are initialised with sensible defaults in defaultConfig().
// • Options never allocate unless strictly necessary — they just capture
//   scalars or pointers to external objects (registry, logger).
// • The struct itself is unexported: callers can only influence behaviour
//   through Option values, which keeps the door open to add fields later
//   without breaking callers.
//
// © 2025 termpool authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Pool at Initialize time.
type Option func(*config)

type config struct {
	initialTableCapacity int
	gcTriggerRatio       float64
	gcEnabled            bool
	threadRegistryInit   int
	perGenerationBytes   int64

	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultConfig() *config {
	return &config{
		initialTableCapacity: 1024,
		gcTriggerRatio:       0.75,
		gcEnabled:            false,
		threadRegistryInit:   8,
		perGenerationBytes:   64 << 20, // 64MiB per generation before rotation
		logger:               zap.NewNop(),
	}
}

// WithInitialTableCapacity sets the term table's starting capacity. Rounded
// up to a power of two internally.
func WithInitialTableCapacity(n int) Option {
	return func(c *config) { c.initialTableCapacity = n }
}

// WithGCTriggerRatio sets the load factor at which automatic collection
// fires, when enabled via WithAutomaticGC. Ignored if automatic GC is off.
func WithGCTriggerRatio(ratio float64) Option {
	return func(c *config) { c.gcTriggerRatio = ratio }
}

// WithAutomaticGC enables or disables the load-factor trigger that calls
// CollectNow once the table's load factor crosses gc_trigger_ratio.
// Collection itself always runs synchronously on whichever goroutine
// crosses the threshold — the pool starts no background goroutines of its
// own, matching the teacher's preference for explicit rotation calls over
// hidden timers.
func WithAutomaticGC(enabled bool) Option {
	return func(c *config) { c.gcEnabled = enabled }
}

// WithThreadRegistryInitial records the starting protection-slot count per
// registered thread. The value is validated (it must be > 0) but not
// otherwise used: each thread's root set is a linked ring that reserves no
// slots up front.
func WithThreadRegistryInitial(n int) Option {
	return func(c *config) { c.threadRegistryInit = n }
}

// WithGenerationBytes sets the byte budget at which term storage rotates to
// a fresh allocation generation.
func WithGenerationBytes(n int64) Option {
	return func(c *config) { c.perGenerationBytes = n }
}

// WithMetrics enables Prometheus metrics collection for the pool. Passing
// nil disables metrics (default): the hot path never pays for a metric
// update it cannot observe.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The pool never logs on the hot
// path (Intern, Make*, Argument); the only event emitted is one Info line
// per completed collection. Table growth and generation rotation are not
// logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(cfg *config, opts []Option) error {
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.initialTableCapacity <= 0 {
		return errInvalidCapacity
	}
	if cfg.gcTriggerRatio <= 0 || cfg.gcTriggerRatio > 1 {
		return errInvalidGCTriggerRatio
	}
	if cfg.threadRegistryInit <= 0 {
		return errInvalidThreadRegistry
	}
	if cfg.perGenerationBytes <= 0 {
		return errInvalidGenerationBytes
	}
	return nil
}

var (
	errInvalidCapacity        = errors.New("termpool: initial table capacity must be > 0")
	errInvalidGCTriggerRatio  = errors.New("termpool: gc trigger ratio must be in (0, 1]")
	errInvalidThreadRegistry  = errors.New("termpool: thread registry initial size must be > 0")
	errInvalidGenerationBytes = errors.New("termpool: per-generation byte budget must be > 0")
)
