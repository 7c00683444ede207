package allocator

import (
	"testing"
	"unsafe"

	"github.com/orizon-lang/heapcore/internal/allocator/sbrk"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()

	provider, err := sbrk.NewStaticProvider(8 << 20)
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}

	h, err := New(provider, WithAudit(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return h
}

func assertAligned(t *testing.T, p unsafe.Pointer) {
	t.Helper()

	if p == nil {
		t.Fatalf("expected non-nil pointer")
	}

	if uintptr(p)&(Alignment-1) != 0 {
		t.Fatalf("pointer %#x is not %d-byte aligned", p, Alignment)
	}
}

// Scenario 1: init; p = allocate(1); release(p).
func TestScenarioAllocateRelease(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(1)
	assertAligned(t, p)

	h.Release(p)

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after release: %v", err)
	}
}

// Scenario 2: first-fit within a class reuses a hole.
func TestScenarioFirstFitReusesHole(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(100)
	b := h.Allocate(100)
	assertAligned(t, a)
	assertAligned(t, b)

	h.Release(a)

	c := h.Allocate(80)
	assertAligned(t, c)

	if c != a {
		t.Fatalf("expected allocation of size 80 to reuse freed block a (%#x), got %#x", a, c)
	}
}

// Scenario 3: coalescing fuses two adjacent released blocks.
func TestScenarioCoalescingFusesNeighbors(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(16)
	b := h.Allocate(16)

	aBp := uintptr(a)
	bBp := uintptr(b)

	h.Release(a)

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after first release: %v", err)
	}

	h.Release(b)

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after second release: %v", err)
	}

	// The two original blocks must now be a single free span: the block
	// at a is free and extends past the start of b.
	merged := aBp
	if h.allocAt(merged) {
		t.Fatalf("expected %#x to be free after coalescing", merged)
	}

	if next := h.nextBlockAddr(merged); next <= bBp {
		t.Fatalf("expected coalesced block to span past b (%#x), next block starts at %#x", bBp, next)
	}
}

// Scenario 4: resize preserves the original bytes and grows the block.
func TestScenarioResizeGrowsAndPreserves(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(40)
	assertAligned(t, a)

	data := unsafe.Slice((*byte)(a), 40)
	for i := range data {
		data[i] = byte(i + 1)
	}

	before := make([]byte, 40)
	copy(before, data)

	b := h.Resize(a, 4000)
	assertAligned(t, b)

	after := unsafe.Slice((*byte)(b), 40)
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("byte %d changed across resize: got %d want %d", i, after[i], before[i])
		}
	}

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after resize: %v", err)
	}
}

// Scenario 5: an 8-byte remnant from a split is never listed, but still
// satisfies the coalescing-related invariants.
func TestScenarioEightByteRemnantUnlisted(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(8)
	b := h.Allocate(8)
	assertAligned(t, a)
	assertAligned(t, b)

	h.Release(a)

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after release: %v", err)
	}

	// Carve a 96-byte block out of a 104-byte hole, leaving an 8-byte
	// remnant behind it.
	c := h.Allocate(100)
	d := h.Allocate(100)
	assertAligned(t, d)

	h.Release(c)

	e := h.Allocate(92)
	if e != c {
		t.Fatalf("expected Allocate(92) to reuse the hole at %#x, got %#x", c, e)
	}

	rem := uintptr(e) + uintptr(blockSize(92))
	if h.allocAt(rem) || h.sizeAt(rem) != 8 {
		t.Fatalf("expected a free 8-byte remnant at %#x", rem)
	}

	for class := 0; class < Classes; class++ {
		for cur := h.readAddr(h.classHeadAddr(class)); cur != 0; cur = h.readAddr(successorPtrAddr(cur)) {
			if cur == rem {
				t.Fatalf("8-byte remnant %#x is listed in class %d", rem, class)
			}
		}
	}

	if err := h.Audit(); err != nil {
		t.Fatalf("audit with 8-byte remnant: %v", err)
	}
}

// Scenario 6: after exhausting the heap, releasing a block makes that
// capacity available again.
func TestScenarioReleaseAfterExhaustionUnblocksAllocation(t *testing.T) {
	provider, err := sbrk.NewStaticProvider(initialRegionSize + 4096)
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}

	h, err := New(provider, WithAudit(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var survivors []unsafe.Pointer

	var firstFail bool

	var failedSize uintptr = 64

	for i := 0; i < 100000; i++ {
		p := h.Allocate(64)
		if p == nil {
			firstFail = true

			break
		}

		survivors = append(survivors, p)
	}

	if !firstFail {
		t.Fatalf("expected allocation to eventually fail against a bounded heap")
	}

	if len(survivors) == 0 {
		t.Fatalf("expected at least one successful allocation before exhaustion")
	}

	h.Release(survivors[0])

	if p := h.Allocate(failedSize); p == nil {
		t.Fatalf("expected allocation to succeed after releasing capacity")
	}
}

func TestAllocateZeroReturnsNil(t *testing.T) {
	h := newTestHeap(t)

	if p := h.Allocate(0); p != nil {
		t.Fatalf("Allocate(0) = %#x, want nil", p)
	}
}

func TestReleaseNilIsNoop(t *testing.T) {
	h := newTestHeap(t)
	h.Release(nil)
}

func TestReleaseAlreadyFreeIsNoop(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(32)
	h.Release(p)
	h.Release(p) // must not panic or corrupt the heap

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after double release: %v", err)
	}
}

func TestZeroAllocZeroesMemory(t *testing.T) {
	h := newTestHeap(t)

	p := h.ZeroAlloc(16, 8)
	assertAligned(t, p)

	data := unsafe.Slice((*byte)(p), 16*8)
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestZeroAllocZeroFactorReturnsNil(t *testing.T) {
	h := newTestHeap(t)

	if p := h.ZeroAlloc(0, 8); p != nil {
		t.Fatalf("ZeroAlloc(0, 8) = %#x, want nil", p)
	}

	if p := h.ZeroAlloc(8, 0); p != nil {
		t.Fatalf("ZeroAlloc(8, 0) = %#x, want nil", p)
	}
}

func TestResizeNilActsAsAllocate(t *testing.T) {
	h := newTestHeap(t)

	p := h.Resize(nil, 64)
	assertAligned(t, p)
}

func TestResizeZeroActsAsRelease(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(64)

	if got := h.Resize(p, 0); got != nil {
		t.Fatalf("Resize(p, 0) = %#x, want nil", got)
	}

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after resize-to-zero: %v", err)
	}
}

func TestResizeShrinkInPlace(t *testing.T) {
	h := newTestHeap(t)

	p := h.Allocate(2000)
	q := h.Resize(p, 8)

	if q != p {
		t.Fatalf("expected shrink-in-place to return the same pointer")
	}

	if err := h.Audit(); err != nil {
		t.Fatalf("audit after shrink: %v", err)
	}
}

func TestDisjointLiveAllocations(t *testing.T) {
	h := newTestHeap(t)

	sizes := []uintptr{1, 8, 17, 100, 256, 4000}
	ptrs := make([]unsafe.Pointer, len(sizes))

	for i, n := range sizes {
		ptrs[i] = h.Allocate(n)
		assertAligned(t, ptrs[i])
	}

	for i := range ptrs {
		data := unsafe.Slice((*byte)(ptrs[i]), int(sizes[i]))
		for j := range data {
			data[j] = byte(i + 1)
		}
	}

	for i := range ptrs {
		data := unsafe.Slice((*byte)(ptrs[i]), int(sizes[i]))
		for j := range data {
			if data[j] != byte(i+1) {
				t.Fatalf("allocation %d corrupted at byte %d: overlap with another live allocation", i, j)
			}
		}
	}
}

func TestAuditCatchesCorruptedFooter(t *testing.T) {
	h := newTestHeap(t)

	a := h.Allocate(64)
	b := h.Allocate(64)
	_ = b

	h.Release(a)

	bp := uintptr(a)
	size := h.sizeAt(bp)
	h.writeWord(footerAddr(bp, size), 0xDEADBEEF)

	if err := h.Audit(); err == nil {
		t.Fatalf("expected Audit to detect a corrupted footer")
	}
}
