package termpool

// errors.go collects the sentinel errors the pool surfaces as values,
// following the same errors.New + errors.Is convention the teacher's
// pkg/config.go used for errInvalidCap/errInvalidTTL/errInvalidShards.
// Invariant violations inside the pool (a corrupted mark stamp, a symbol
// missing from its own table) are programmer errors and panic instead —
// they are never wrapped in one of these.
//
// © 2025 termpool authors. MIT License.

import "errors"

var (
	// ErrArityMismatch is returned by MakeApplication when the supplied
	// child slice length disagrees with the symbol's arity.
	ErrArityMismatch = errors.New("termpool: child count does not match symbol arity")

	// ErrUnregisteredThread is returned when a *Thread that was never
	// obtained from RegisterThread (or has already been unregistered) is
	// presented to a pool operation.
	ErrUnregisteredThread = errors.New("termpool: thread is not registered with this pool")

	// ErrOutOfMemory is reserved for allocation failure during table
	// resize. Go's runtime allocator panics rather than returning an error
	// on true exhaustion, so in practice this sentinel exists for API
	// completeness with spec-mandated error kinds rather than any live
	// return path.
	ErrOutOfMemory = errors.New("termpool: allocation failed during resize")

	// ErrParse is returned by ParseTerm on malformed input.
	ErrParse = errors.New("termpool: parse error")

	// ErrClosed is returned by MakeConstant, MakeApplication and MakeNumeric
	// once the pool's Close has run. Other operations do not check it.
	ErrClosed = errors.New("termpool: pool is closed")
)
