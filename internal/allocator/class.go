package allocator

import "math/bits"

// classFor returns the smallest size-class index i with
// 1<<(i+3+ClassBias) >= s, clamped to the last class. Class 0 therefore
// holds every size up to 32 bytes, and class i >= 1 holds sizes in
// (1<<(i+2+ClassBias), 1<<(i+3+ClassBias)]; the last class also holds
// everything larger.
func classFor(s uint32) int {
	if s <= 1<<(3+ClassBias) {
		return 0
	}
	// e = ceil(log2(s)); the smallest i with 1<<(i+3+ClassBias) >= s is
	// i = e - (3+ClassBias).
	e := bits.Len32(s - 1)
	i := e - (3 + ClassBias)
	if i < 0 {
		i = 0
	}
	if i > Classes-1 {
		i = Classes - 1
	}
	return i
}

// insert prepends bp to the free list of its size class. No ordering is
// maintained within a class. Only blocks of size >= MinBlockSize may be
// listed; callers are responsible for not listing smaller remnants.
func (h *Heap) insert(bp uintptr) {
	class := classFor(h.sizeAt(bp))
	head := h.classHeadAddr(class)
	old := h.readAddr(head)
	h.writeAddr(successorPtrAddr(bp), old)
	h.writeAddr(head, bp)
}

// remove splices bp out of its size class's free list. It is an error to
// call remove on a block that is not currently listed; the search walks
// from the head until it finds bp or exhausts the list.
func (h *Heap) remove(bp uintptr) {
	class := classFor(h.sizeAt(bp))
	head := h.classHeadAddr(class)

	cur := h.readAddr(head)
	if cur == bp {
		h.writeAddr(head, h.readAddr(successorPtrAddr(bp)))
		return
	}

	for cur != 0 {
		next := h.readAddr(successorPtrAddr(cur))
		if next == bp {
			h.writeAddr(successorPtrAddr(cur), h.readAddr(successorPtrAddr(bp)))
			return
		}
		cur = next
	}
}

// findFit scans classes from classFor(size) upward, returning the first
// listed block whose size is >= the requested size (first-fit within the
// correct class, a.k.a. "good fit"). ok is false if no block satisfies.
func (h *Heap) findFit(size uint32) (bp uintptr, ok bool) {
	for class := classFor(size); class < Classes; class++ {
		cur := h.readAddr(h.classHeadAddr(class))
		for cur != 0 {
			if h.sizeAt(cur) >= size {
				return cur, true
			}
			cur = h.readAddr(successorPtrAddr(cur))
		}
	}
	return 0, false
}
