package allocator

// A block is addressed by its payload pointer bp, an absolute address into
// the heap's backing memory. Its header lives at bp-HeaderSize. Free
// blocks additionally carry a footer duplicating the header at the last
// word of the block; those of size >= MinBlockSize also carry a successor
// pointer (the free-list link) in the first 8 bytes of the payload.

func hdrAddr(bp uintptr) uintptr {
	return bp - HeaderSize
}

// footerAddr returns the address of a block's own footer, given its size.
func footerAddr(bp uintptr, size uint32) uintptr {
	return bp + uintptr(size) - 2*HeaderSize
}

// prevFooterAddr returns the address of the predecessor block's footer,
// which sits in the word immediately preceding bp's header.
func prevFooterAddr(bp uintptr) uintptr {
	return bp - 2*HeaderSize
}

func (h *Heap) sizeAt(bp uintptr) uint32 {
	return blockSizeOf(h.readWord(hdrAddr(bp)))
}

func (h *Heap) allocAt(bp uintptr) bool {
	return isAlloc(h.readWord(hdrAddr(bp)))
}

func (h *Heap) prevAllocAt(bp uintptr) bool {
	return isPrevAlloc(h.readWord(hdrAddr(bp)))
}

// epilogueBp returns the sentinel's pseudo payload address: one past the
// last addressable byte of the heap. Its header occupies the heap's final
// HeaderSize bytes.
func (h *Heap) epilogueBp() uintptr {
	return h.hi + 1
}

func (h *Heap) isEpilogue(bp uintptr) bool {
	return bp == h.epilogueBp()
}

// nextBlockAddr returns the payload address of bp's immediate successor in
// address order, found by walking past bp's own size.
func (h *Heap) nextBlockAddr(bp uintptr) uintptr {
	return bp + uintptr(h.sizeAt(bp))
}

// prevBlockAddr returns the payload address of bp's immediate predecessor,
// valid only when that predecessor is free (so its footer is present).
func (h *Heap) prevBlockAddr(bp uintptr) uintptr {
	prevSize := blockSizeOf(h.readWord(prevFooterAddr(bp)))
	return bp - uintptr(prevSize)
}

// writeBlock stamps a header (and, for free blocks, a footer) describing a
// block of the given size and allocation status, preserving whatever
// predecessor-allocated bit is already recorded at that header location.
func (h *Heap) writeBlock(bp uintptr, size uint32, alloc bool) {
	prev := isPrevAlloc(h.readWord(hdrAddr(bp)))
	word := packWord(size, prev, alloc)
	h.writeWord(hdrAddr(bp), word)
	if !alloc {
		h.writeWord(footerAddr(bp, size), word)
	}
}

// setPrevAlloc updates only the predecessor-allocated bit of bp's header
// (and footer, if bp is itself free).
func (h *Heap) setPrevAlloc(bp uintptr, flag bool) {
	old := h.readWord(hdrAddr(bp))
	size := blockSizeOf(old)
	word := packWord(size, flag, isAlloc(old))
	h.writeWord(hdrAddr(bp), word)
	if !isAlloc(old) {
		h.writeWord(footerAddr(bp, size), word)
	}
}

// writeEpilogue (re)writes the epilogue sentinel at the current top of
// heap, carrying forward the predecessor-allocated status of the block
// that now precedes it.
func (h *Heap) writeEpilogue(prevAlloc bool) {
	word := epilogueBaseWord
	if prevAlloc {
		word |= prevAllocBit
	}
	h.writeWord(hdrAddr(h.epilogueBp()), word)
}

// successorPtrAddr returns where a free block's free-list link is stored:
// the first 8 bytes of its payload. Only valid for blocks of size >=
// MinBlockSize.
func successorPtrAddr(bp uintptr) uintptr {
	return bp
}
