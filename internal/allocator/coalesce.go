package allocator

// coalesce fuses bp — a block that has just been freed or just been
// carved out of a heap extension — with its free neighbors. It performs
// up to two fusions (forward into the next block, backward into the
// predecessor) and returns the address of the resulting free block, which
// may be bp itself, its predecessor, or (after a forward fuse with no
// backward fuse) still bp.
//
// coalesce never inserts its result into a free list; the caller decides
// whether that is appropriate.
func (h *Heap) coalesce(bp uintptr) uintptr {
	next := h.nextBlockAddr(bp)
	if !h.isEpilogue(next) && !h.allocAt(next) {
		nextSize := h.sizeAt(next)
		if nextSize >= MinBlockSize {
			h.remove(next)
		}

		h.writeBlock(bp, h.sizeAt(bp)+nextSize, false)
	}

	if !h.prevAllocAt(bp) {
		prev := h.prevBlockAddr(bp)
		prevSize := h.sizeAt(prev)

		if prevSize >= MinBlockSize {
			h.remove(prev)
		}

		h.writeBlock(prev, prevSize+h.sizeAt(bp), false)
		bp = prev
	}

	// bp is now free and, by construction, bounded by allocated
	// neighbors: if its predecessor or successor had been free, the
	// fusions above would already have absorbed them.
	h.setPrevAlloc(bp, true)

	succ := h.nextBlockAddr(bp)
	if h.isEpilogue(succ) {
		h.writeEpilogue(false)
	} else {
		h.setPrevAlloc(succ, false)
	}

	return bp
}
