package allocator

import (
	"fmt"
	"unsafe"

	"github.com/orizon-lang/heapcore/internal/allocator/sbrk"
)

// initialRegionSize is the byte count requested from the provider by Init:
// the class index, the alignment pad, the prologue, the first free block,
// and the epilogue.
const initialRegionSize = ClassIndexSize + HeaderPad + PrologueSize + FirstBlockSize + EpilogueSize

// Heap is a single-threaded segregated-fit coalescing allocator over a
// provider-supplied, monotonically-growable region. It is not safe for
// concurrent use: every entry point must run to completion before another
// begins, matching the model of the C allocator it replaces.
type Heap struct {
	provider sbrk.Provider
	base     uintptr
	hi       uintptr
	mem      []byte

	cfg         *Config
	tunables    *tunablesWatcher
	stats       Stats
	active      bool
	initialized bool
}

// Stats reports cumulative allocator activity. It is maintained only on
// the happy path (no locking, no atomics): per the single-threaded
// contract, nothing else can be observing it concurrently.
type Stats struct {
	Allocations    uint64
	Frees          uint64
	Resizes        uint64
	BytesRequested uint64
	HeapExtensions uint64
	HeapBytes      uintptr
}

// New creates and initializes a Heap over provider. It performs the
// initial sbrk(ClassIndexSize + HeaderPad + PrologueSize + FirstBlockSize +
// EpilogueSize) described by the spec's init entry point. New returns an
// error if that sbrk fails or if a configured tunables file cannot be
// watched.
func New(provider sbrk.Provider, opts ...Option) (*Heap, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	h := &Heap{provider: provider, cfg: cfg}

	if cfg.TunablesPath != "" {
		tw, err := newTunablesWatcher(cfg.TunablesPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("allocator: tunables watcher: %w", err)
		}

		h.tunables = tw
	}

	if err := h.init(); err != nil {
		return nil, err
	}

	return h, nil
}

// init lays out the class index, prologue, first free block and epilogue
// over a freshly granted region. It is called exactly once, from New; a
// second call on the same Heap is rejected rather than re-initializing an
// already-live heap out from under its callers.
func (h *Heap) init() error {
	if h.initialized {
		return ErrAlreadyInitialized
	}

	base, err := h.provider.Sbrk(uintptr(initialRegionSize))
	if err != nil {
		return fmt.Errorf("allocator: %w: %v", ErrHeapExhausted, err)
	}

	h.base = base
	h.refreshView()

	for c := 0; c < Classes; c++ {
		h.writeAddr(h.classHeadAddr(c), 0)
	}

	// HeaderPad shifts the prologue header off the class index's own
	// 8-byte boundary so that firstBp, four bytes later, lands on one.
	prologueHdrAddr := h.base + ClassIndexSize + HeaderPad
	h.writeWord(prologueHdrAddr, prologueWord)
	h.writeWord(prologueHdrAddr+HeaderSize, prologueWord)

	firstHdrAddr := prologueHdrAddr + PrologueSize
	firstBp := firstHdrAddr + HeaderSize

	word := packWord(FirstBlockSize, true, false)
	h.writeWord(firstHdrAddr, word)
	h.writeWord(footerAddr(firstBp, FirstBlockSize), word)
	h.writeAddr(successorPtrAddr(firstBp), 0)

	h.writeEpilogue(false)
	h.insert(firstBp)

	h.stats.HeapBytes = initialRegionSize
	h.initialized = true

	return nil
}

// chunkSize returns the current heap-extension chunk size, honoring a live
// tunables file if one is configured.
func (h *Heap) chunkSize() uint32 {
	if h.tunables != nil {
		return h.tunables.chunkSize.Load()
	}

	return h.cfg.ChunkSize
}

func (h *Heap) auditEnabled() bool {
	if h.tunables != nil {
		return h.tunables.enableAudit.Load()
	}

	return h.cfg.EnableAudit
}

// enter/leave guard against reentrant use. The allocator has no internal
// synchronization, so a reentrant call (e.g. from a signal handler or a
// second goroutine) would corrupt the heap silently; panicking surfaces
// the bug immediately instead.
func (h *Heap) enter() {
	if h.active {
		panic("allocator: reentrant call into a Heap")
	}

	h.active = true
}

func (h *Heap) leave() {
	h.active = false

	if h.auditEnabled() {
		if err := h.Audit(); err != nil {
			panic(err)
		}
	}
}

// Allocate reserves n payload bytes and returns an 8-byte-aligned pointer,
// or nil if n is zero or the heap cannot be grown to satisfy the request.
func (h *Heap) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}

	h.enter()
	defer h.leave()

	return h.allocateLocked(n)
}

// allocateLocked is Allocate's body without the reentrancy guard, for
// reuse by Resize's fallback path, which already holds the guard.
func (h *Heap) allocateLocked(n uintptr) unsafe.Pointer {
	req := blockSize(n)

	bp, ok := h.findFit(req)
	if !ok {
		bp, ok = h.extend(req)
		if !ok {
			return nil
		}
	}

	bp = h.split(bp, req)
	h.stats.Allocations++
	h.stats.BytesRequested += uint64(n)

	return unsafe.Pointer(bp) //nolint:govet // raw region outside Go's GC heap
}

// Release returns p to the heap. Releasing nil or an already-free pointer
// is a defensive no-op.
func (h *Heap) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	h.enter()
	defer h.leave()

	bp := uintptr(p)
	if !h.allocAt(bp) {
		return
	}

	h.writeBlock(bp, h.sizeAt(bp), false)

	merged := h.coalesce(bp)
	if h.sizeAt(merged) >= MinBlockSize {
		h.insert(merged)
	}

	h.stats.Frees++
}

// ZeroAlloc allocates k*n bytes and zeroes them, matching the semantics of
// the C allocator's calloc. It returns nil if k or n is zero, or if k*n
// overflows uintptr.
func (h *Heap) ZeroAlloc(k, n uintptr) unsafe.Pointer {
	if k == 0 || n == 0 {
		return nil
	}

	total := k * n
	if total/n != k {
		return nil // overflow
	}

	p := h.Allocate(total)
	if p == nil {
		return nil
	}

	bp := uintptr(p)
	i := h.idx(bp)
	clear(h.mem[i : i+int(total)])

	return p
}

// Stats returns a snapshot of cumulative allocator activity.
func (h *Heap) Stats() Stats {
	return h.stats
}

// Close releases resources the Heap holds outside the managed region
// itself (currently just a tunables file watcher, if one was configured).
// It does not touch the provider: the heap memory stays valid for as long
// as the provider does.
func (h *Heap) Close() error {
	if h.tunables != nil {
		return h.tunables.close()
	}

	return nil
}
