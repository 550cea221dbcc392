// Package arena implements the bump-allocation arena that owns every AST
// object and auxiliary value produced while a parser recognizes input. It
// mirrors the pool/big-chunk split and failure-counter block retirement of
// the original implementation's Arena: a geometrically growing small-chunk
// pool serves small, frequent allocations, and a big-chunk list serves
// allocations that don't fit the pool.
//
// Go's runtime already garbage-collects the values this package allocates;
// the arena's job is not to manage raw memory but to guarantee the ordering
// contract a caller can depend on: every destructor registered against it
// runs exactly once, in LIFO order, before the arena itself is considered
// destroyed. Regular Go values (not manually laid-out bytes) are what get
// registered, so block accounting tracks a *budget*, not a backing buffer.
package arena

import (
	"fmt"
)

const (
	// DefaultAlignment is the alignment, in bytes, every small-chunk
	// allocation is rounded up to.
	DefaultAlignment = 8

	// BigChunkThreshold is the allocation size above which a request is
	// served from the big-chunk list instead of the small-chunk pool.
	BigChunkThreshold = 2048

	// initialPoolBlockSize is the size of the first small-chunk pool block.
	initialPoolBlockSize = 4096

	// poolBlockGrowthFactor is the factor by which each new pool block's
	// budget grows over the last, capped at maximumPoolBlockSize.
	poolBlockGrowthFactor = 2

	// maximumPoolBlockSize caps how large a single pool block's budget can
	// grow to, matching the teacher's "capped at 16 pages" rule (here
	// expressed in bytes rather than pages).
	maximumPoolBlockSize = 16 * 4096

	// failureCounterThreshold is the remaining-budget floor under which a
	// failed allocation attempt against a block increments its failure
	// counter.
	failureCounterThreshold = 64

	// failureToleranceCount is the number of tolerated failures before a
	// block is retired from the current search path. Once retired, the
	// block is never re-probed: this preserves the original's simple
	// forward scan with no free-list re-entry (see Open Question (b)).
	failureToleranceCount = 8
)

// block is a budget-tracking node in either the small-chunk pool or the
// big-chunk list.
type block struct {
	next    *block
	size    int
	offset  int
	counter int
}

func newBlock(size int) *block {
	return &block{size: size}
}

func (b *block) available() int {
	return b.size - b.offset
}

// destructorEntry pairs a registered destructor with the id it was
// registered under. The id has no role in destruction order — that's
// strictly LIFO — but it lets a caller identify a specific registration,
// e.g. when diagnosing a double-registration bug.
type destructorEntry struct {
	id   int
	fn   func()
	what string
}

// Arena is a caller-owned, thread-affine allocation scope. A single arena
// must not be used by more than one parse concurrently; a constructed
// Parser itself is safe for concurrent use across arenas (see §5 of the
// governing specification).
type Arena struct {
	pooledHead    *block
	pooledCurrent *block
	nextBlockSize int

	bigHead *block

	destructors      []destructorEntry
	nextDestructorID int

	// budgetUsed and budgetCap are purely observational counters surfaced
	// by a construction report; they don't gate allocation (Go's allocator
	// does that) but they let callers detect pathological fragmentation
	// patterns that would matter in the original's raw-memory model.
	budgetUsed int
	budgetCap  int

	destroyed bool
}

// New returns a fresh, empty arena.
func New() *Arena {
	return &Arena{nextBlockSize: initialPoolBlockSize}
}

// Alloc accounts for a single allocation of sz bytes against the arena's
// block budget, on a small-chunk pool block or the big-chunk list. It
// exists so AST object construction can report its footprint through the
// same chunking rules as the original allocator; the Go value itself is
// always allocated by the runtime via the generic NewOf/NewSlice helpers
// below, never out of the accounted bytes.
func (a *Arena) Alloc(sz int) {
	if a.destroyed {
		panic("arena: Alloc after Destroy")
	}
	if sz%DefaultAlignment != 0 {
		sz += DefaultAlignment - sz%DefaultAlignment
	}
	a.budgetCap += sz
	if sz > BigChunkThreshold {
		a.allocBigChunk(sz)
		return
	}
	a.allocSmallChunk(sz)
}

func (a *Arena) allocSmallChunk(sz int) {
	if a.pooledCurrent == nil {
		a.pooledHead = a.newPoolBlock()
		a.pooledCurrent = a.pooledHead
	}

	cur := a.pooledCurrent
	for {
		if cur.available() >= sz {
			cur.offset += sz
			a.budgetUsed += sz
			return
		}

		if cur.available() < failureCounterThreshold {
			cur.counter++
		}

		if cur.next == nil {
			cur.next = a.newPoolBlock()
		}
		next := cur.next

		if cur.counter > failureToleranceCount {
			a.pooledCurrent = next
		}

		cur = next
	}
}

func (a *Arena) allocBigChunk(sz int) {
	b := newBlock(sz)
	b.offset = sz
	b.next = a.bigHead
	a.bigHead = b
	a.budgetUsed += sz
}

func (a *Arena) newPoolBlock() *block {
	size := a.nextBlockSize
	b := newBlock(size)
	a.nextBlockSize = size * poolBlockGrowthFactor
	if a.nextBlockSize > maximumPoolBlockSize {
		a.nextBlockSize = maximumPoolBlockSize
	}
	return b
}

// NewOf allocates a zero-valued T out of the arena's accounted budget and
// returns a pointer to it. The value is actually heap-allocated by the Go
// runtime; NewOf exists to charge the allocation against the arena's small or
// big chunk accounting so a construction report reflects the object graph
// the grammar's handles build.
func NewOf[T any](a *Arena) *T {
	var zero T
	a.Alloc(sizeofApprox(zero))
	v := new(T)
	return v
}

// NewSlice allocates a slice of T with the given length and capacity out of
// the arena's accounted budget.
func NewSlice[T any](a *Arena, length, capacity int) []T {
	var zero T
	if capacity < length {
		capacity = length
	}
	a.Alloc(sizeofApprox(zero) * capacity)
	return make([]T, length, capacity)
}

func sizeofApprox(v any) int {
	// A rough, intentionally conservative stand-in for sizeof(T): enough to
	// drive the pool's growth and retirement behavior without resorting to
	// unsafe.Sizeof against arbitrary type parameters.
	return 32
}

// RegisterDestructor records a destructor to run when the arena is
// destroyed. Destructors run in LIFO order: the most recently registered
// destructor runs first. what is a short, human-readable label surfaced by
// a construction report; it has no effect on behavior.
func (a *Arena) RegisterDestructor(what string, fn func()) int {
	if a.destroyed {
		panic("arena: RegisterDestructor after Destroy")
	}
	id := a.nextDestructorID
	a.nextDestructorID++
	a.destructors = append(a.destructors, destructorEntry{id: id, fn: fn, what: what})
	return id
}

// Destroy runs every registered destructor exactly once, in LIFO order, then
// marks the arena as destroyed. Destroy is idempotent: calling it again is a
// no-op.
func (a *Arena) Destroy() {
	if a.destroyed {
		return
	}
	for i := len(a.destructors) - 1; i >= 0; i-- {
		a.destructors[i].fn()
	}
	a.destructors = nil
	a.destroyed = true
}

// Destroyed reports whether Destroy has already run.
func (a *Arena) Destroyed() bool {
	return a.destroyed
}

// Usage returns the arena's accounted used and total budget, in bytes, for
// use in a construction/runtime report.
func (a *Arena) Usage() (used, cap int) {
	return a.budgetUsed, a.budgetCap
}

// String is for debugging; it's not part of the stable contract.
func (a *Arena) String() string {
	used, cap := a.Usage()
	return fmt.Sprintf("arena(used=%d, cap=%d, destructors=%d)", used, cap, len(a.destructors))
}
