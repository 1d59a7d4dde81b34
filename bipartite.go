// Package lfbb provides a lock-free SPSC (Single Producer Single Consumer)
// bipartite byte buffer.
//
// A bipartite buffer is a ring buffer whose readable and writable regions
// are always handed to callers as contiguous linear byte spans, never split
// across the wrap boundary. Producers write into memory that can be used
// directly by zero-copy APIs (DMA, I/O descriptors, parser work areas), and
// consumers read from memory that can be handed to such APIs unchanged.
//
// # Thread Safety
//
// This buffer is ONLY safe for single producer + single consumer scenarios.
// It uses atomic operations on three indices to achieve thread-safety
// without locks.
//
// IMPORTANT: Multiple producers or multiple consumers will cause data races.
//
// # Coordination protocol
//
// Three indices are shared between producer and consumer: w (next write
// position), r (next read position), and i (the invalidate mark — the first
// byte past the readable region's high-water mark before a wrap). The
// producer owns w and i, the consumer owns r; each side also keeps a
// private, unshared boolean recording whether its last accepted acquire
// wrapped to the start of the array.
//
// # Basic Usage
//
//	buf := lfbb.New(make([]byte, 4096))
//
//	// Producer goroutine
//	go func() {
//	    region := buf.WriteAcquire(128)
//	    if region == nil {
//	        return // not enough contiguous free space right now
//	    }
//	    n := copy(region, payload)
//	    buf.WriteRelease(uint64(n))
//	}()
//
//	// Consumer goroutine
//	region, available := buf.ReadAcquire()
//	if available > 0 {
//	    process(region)
//	    buf.ReadRelease(available)
//	}
package lfbb

import (
	"errors"
	"sync/atomic"
)

// Errors surfaced by the contract-violation class of failure (spec section
// "Error handling design"). Capacity misses and empty reads are not errors —
// they are reported by a nil acquire return — these sentinels only cover
// programmer-error preconditions that the assertion hook would otherwise
// abort the process for, kept here for callers (and the demo CLI) that want
// a typed diagnostic instead of a hard abort.
var (
	// ErrZeroCapacity indicates NewSafe was given an empty data slice.
	ErrZeroCapacity = errors.New("lfbb: data slice must have length >= 1")

	// ErrReleaseExceedsAcquire indicates a release committed more bytes
	// than the most recently accepted matching acquire returned.
	ErrReleaseExceedsAcquire = errors.New("lfbb: release exceeds acquired region")

	// ErrNoActiveAcquire indicates a release was called without a matching
	// outstanding, accepted acquire on that side.
	ErrNoActiveAcquire = errors.New("lfbb: release without a matching acquire")
)

// AssertFunc is the collaborator-supplied assertion hook. It is invoked only
// on precondition violations (contract violations), never on the two
// legitimate non-fatal outcomes (capacity miss, empty read). The default
// aborts the process, matching the reference implementation's behavior.
type AssertFunc func(cond bool, msg string)

func defaultAssert(cond bool, msg string) {
	if !cond {
		panic("lfbb: " + msg)
	}
}

// Buffer is a lock-free single-producer single-consumer bipartite byte
// buffer. It hands callers contiguous linear spans on both the write and
// read sides, skipping the tail of the backing array and wrapping to the
// head when the remaining linear space is insufficient.
//
// Producer-side methods (WriteAcquire, WriteRelease) must only be called
// from the producer goroutine. Consumer-side methods (ReadAcquire,
// ReadRelease) must only be called from the consumer goroutine.
type Buffer struct {
	data []byte
	size uint64

	w sharedIndex // next write position, owned by the producer
	r sharedIndex // next read position, owned by the consumer
	i sharedIndex // invalidate mark, owned by the producer

	// newIndex constructs a fresh sharedIndex honoring the cache-line
	// padding option chosen via WithPadding/WithoutPadding. Defaults to
	// indexPlain (no padding) when no option is given.
	newIndex func() sharedIndex

	writeWrapped bool // producer-local: last accepted WriteAcquire wrapped
	readWrapped  bool // consumer-local: last accepted ReadAcquire wrapped

	// lastAcquiredWrite/lastAcquiredRead record the size of the most
	// recently accepted acquire on each side, so WriteRelease/ReadRelease
	// can detect a release that exceeds what was actually handed out.
	// These are local bookkeeping, not part of the spec's control plane.
	lastAcquiredWrite uint64
	haveWriteAcquire  bool
	lastAcquiredRead  uint64
	haveReadAcquire   bool

	assert AssertFunc
}

// Option configures a Buffer at construction time.
type Option func(*Buffer)

// CacheLineSize selects the padding applied to each of the buffer's three
// shared indices to avoid false sharing between producer and consumer
// cores. Go cannot size a struct field from a runtime value, so the choice
// is a construction-time option rather than the reference implementation's
// compile-time LFBB_CACHELINE_LENGTH knob.
type CacheLineSize int

const (
	// CacheLine64 pads each index to 64 bytes, the common x86/ARM line size.
	CacheLine64 CacheLineSize = 64
	// CacheLine128 pads each index to 128 bytes, for Apple-class cores with
	// adjacent-line prefetch.
	CacheLine128 CacheLineSize = 128
)

// WithPadding enables per-index cache-line padding at the given size. Use
// this for hosted multicore deployments (spec's LFBB_MULTICORE_HOSTED).
func WithPadding(size CacheLineSize) Option {
	return func(b *Buffer) {
		switch size {
		case CacheLine128:
			b.newIndex = func() sharedIndex { return &index128{} }
		default:
			b.newIndex = func() sharedIndex { return &index64{} }
		}
	}
}

// WithoutPadding disables cache-line padding, appropriate for deeply
// embedded single-core deployments where the padding overhead is wasted.
// This is the default.
func WithoutPadding() Option {
	return func(b *Buffer) {
		b.newIndex = func() sharedIndex { return &indexPlain{} }
	}
}

// WithAssert overrides the default process-aborting assertion hook.
func WithAssert(fn AssertFunc) Option {
	return func(b *Buffer) {
		b.assert = fn
	}
}

// New binds data as the backing array of a new Buffer and returns it.
// len(data) must be at least 1; violating this aborts via the assertion
// hook (default: panic) since it is a programmer error, not a runtime
// condition a caller can usefully recover from.
func New(data []byte, opts ...Option) *Buffer {
	b := &Buffer{assert: defaultAssert}
	for _, opt := range opts {
		opt(b)
	}
	Init(b, data)
	return b
}

// NewSafe is the error-returning counterpart of New, for callers that would
// rather get ErrZeroCapacity back than trigger the assertion hook when
// handed an empty data slice.
func NewSafe(data []byte, opts ...Option) (*Buffer, error) {
	if len(data) < 1 {
		return nil, ErrZeroCapacity
	}
	return New(data, opts...), nil
}

// Init (re)binds data to an existing Buffer instance, clearing all indices
// and wrap flags. len(data) must be at least 1.
func Init(b *Buffer, data []byte) {
	if b.newIndex == nil {
		b.newIndex = func() sharedIndex { return &indexPlain{} }
	}
	if b.assert == nil {
		b.assert = defaultAssert
	}

	b.assertf(len(data) >= 1, "data slice must have length >= 1")

	b.data = data
	b.size = uint64(len(data))
	b.w = b.newIndex()
	b.r = b.newIndex()
	b.i = b.newIndex()
	b.writeWrapped = false
	b.readWrapped = false
	b.haveWriteAcquire = false
	b.haveReadAcquire = false
}

func (b *Buffer) assertf(cond bool, msg string) {
	b.assert(cond, msg)
}

// Cap returns the capacity N of the backing array. At most N-1 bytes are
// ever readable at once; one slot is reserved to disambiguate empty from
// full.
func (b *Buffer) Cap() uint64 {
	return b.size
}

// freeSpace computes the number of free bytes given the current producer
// and consumer index snapshot, reserving one slot to disambiguate empty
// (r == w) from full.
func freeSpace(w, r, size uint64) uint64 {
	if r > w {
		return r - w - 1
	}
	return size - (w - r) - 1
}

// WriteAcquire requests a contiguous writable region of at least n bytes.
// It returns a slice of exactly length n positioned either at the current
// write index (no wrap needed) or at the start of the array (the producer
// elects to skip an insufficient tail), or nil if neither region has n
// contiguous free bytes.
//
// Must only be called by the producer. A release must follow each accepted
// acquire before the next acquire call, or the wrap decision recorded by
// this call will be overwritten and the invalidate mark will desync from
// the actual wrap.
func (b *Buffer) WriteAcquire(n uint64) []byte {
	w := b.w.Load()
	r := b.r.Load()

	free := freeSpace(w, r, b.size)
	if n > free {
		return nil
	}

	linearFree := min(free, b.size-w)

	if n <= linearFree {
		b.haveWriteAcquire = true
		b.lastAcquiredWrite = n
		return b.data[w : w+n : w+n]
	}

	if n <= free-linearFree {
		b.writeWrapped = true
		b.haveWriteAcquire = true
		b.lastAcquiredWrite = n
		return b.data[0:n:n]
	}

	return nil
}

// WriteRelease commits k bytes of the region most recently returned by
// WriteAcquire. k must be <= the n passed to that acquire call.
//
// Must only be called by the producer.
func (b *Buffer) WriteRelease(k uint64) {
	b.assertf(b.haveWriteAcquire, "write release without a matching acquire")
	b.assertf(k <= b.lastAcquiredWrite, "write release exceeds acquired region")

	w := b.w.Load()
	i := b.i.Load()

	if b.writeWrapped {
		b.writeWrapped = false
		i = w
		w = 0
	}

	w += k
	b.assertf(w <= b.size, "write index exceeds capacity")

	if w > i {
		i = w
	}

	if w == b.size {
		w = 0
	}

	b.i.Store(i)
	b.w.Store(w)

	b.haveWriteAcquire = false
	b.lastAcquiredWrite = 0
}

// ReadAcquire requests the next contiguous readable region. It returns the
// region and its length, or (nil, 0) if the buffer is currently empty.
// One exception: after a WriteRelease(0) that followed a wrapping
// WriteAcquire, it returns an empty, non-nil region at the start of the
// array with available 0; releasing that region moves the read index to the
// start of the array.
//
// Must only be called by the consumer. A release must follow each accepted
// acquire before the next acquire call.
func (b *Buffer) ReadAcquire() (region []byte, available uint64) {
	r := b.r.Load()
	w := b.w.Load()

	if r == w {
		return nil, 0
	}

	if r < w {
		available = w - r
		b.haveReadAcquire = true
		b.lastAcquiredRead = available
		return b.data[r : r+available : r+available], available
	}

	i := b.i.Load()
	if r == i {
		b.readWrapped = true
		available = w
		b.haveReadAcquire = true
		b.lastAcquiredRead = available
		return b.data[0:w:w], available
	}

	available = i - r
	b.haveReadAcquire = true
	b.lastAcquiredRead = available
	return b.data[r : r+available : r+available], available
}

// ReadRelease commits k bytes of the region most recently returned by
// ReadAcquire. k must be <= the available count that call returned.
//
// Must only be called by the consumer.
func (b *Buffer) ReadRelease(k uint64) {
	b.assertf(b.haveReadAcquire, "read release without a matching acquire")
	b.assertf(k <= b.lastAcquiredRead, "read release exceeds acquired region")

	var r uint64
	if b.readWrapped {
		b.readWrapped = false
		r = 0
	} else {
		r = b.r.Load()
	}

	r += k
	if r == b.size {
		r = 0
	}

	b.r.Store(r)

	b.haveReadAcquire = false
	b.lastAcquiredRead = 0
}

// TryWriteRelease is the error-returning counterpart of WriteRelease for
// callers (the demo CLI, tests) that would rather get a typed error back
// than trigger the assertion hook on misuse. It performs the same
// precondition checks as WriteRelease but returns an error instead of
// aborting, then performs the release only if the checks pass.
func (b *Buffer) TryWriteRelease(k uint64) error {
	if !b.haveWriteAcquire {
		return ErrNoActiveAcquire
	}
	if k > b.lastAcquiredWrite {
		return ErrReleaseExceedsAcquire
	}
	b.WriteRelease(k)
	return nil
}

// TryReadRelease is the error-returning counterpart of ReadRelease.
func (b *Buffer) TryReadRelease(k uint64) error {
	if !b.haveReadAcquire {
		return ErrNoActiveAcquire
	}
	if k > b.lastAcquiredRead {
		return ErrReleaseExceedsAcquire
	}
	b.ReadRelease(k)
	return nil
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// sharedIndex is one of the buffer's three cross-party indices (w, r, i).
// Go's atomic.Uint64 already gives every Load/Store full sequentially
// consistent ordering, which is at least as strong as the acquire/relaxed/
// release split the spec calls for on each access; sharedIndex exists so
// the padding decision (WithPadding/WithoutPadding) can be made once at
// construction time without branching on every access.
type sharedIndex interface {
	Load() uint64
	Store(uint64)
}

// indexPlain is an unpadded index: all three fit in as little as one cache
// line, the right choice for single-core embedded deployments where padding
// overhead would be pure waste.
type indexPlain struct {
	v atomic.Uint64
}

func (p *indexPlain) Load() uint64   { return p.v.Load() }
func (p *indexPlain) Store(v uint64) { p.v.Store(v) }

// index64 pads its index out to a 64-byte cache line so that concurrent
// producer and consumer access to neighboring indices never shares a line.
type index64 struct {
	v atomic.Uint64
	_ [56]byte // pad atomic.Uint64 (8 bytes) up to 64
}

func (p *index64) Load() uint64   { return p.v.Load() }
func (p *index64) Store(v uint64) { p.v.Store(v) }

// index128 pads its index out to a 128-byte line, for Apple-class cores
// that prefetch adjacent 64-byte lines together.
type index128 struct {
	v atomic.Uint64
	_ [120]byte // pad atomic.Uint64 (8 bytes) up to 128
}

func (p *index128) Load() uint64   { return p.v.Load() }
func (p *index128) Store(v uint64) { p.v.Store(v) }
