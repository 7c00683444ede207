package allocator

// split carves a block of exactly req bytes out of bp, which must have
// size >= req. If bp has a free remainder, the remainder is coalesced
// forward (it can never coalesce backward: its predecessor, bp, is
// allocated by construction) and, if it is still listable, inserted into
// the free list. An unlistable 8-byte remnant is left unlisted; it
// survives as a coalescing target for a future release. split returns bp,
// now marked allocated at size req.
func (h *Heap) split(bp uintptr, req uint32) uintptr {
	if !h.allocAt(bp) && h.sizeAt(bp) >= MinBlockSize {
		h.remove(bp)
	}

	orig := h.sizeAt(bp)
	h.writeBlock(bp, req, true)

	rem := orig - req
	if rem == 0 {
		succ := h.nextBlockAddr(bp)
		if h.isEpilogue(succ) {
			h.writeEpilogue(true)
		} else {
			h.setPrevAlloc(succ, true)
		}

		return bp
	}

	remBp := bp + uintptr(req)
	h.writeBlock(remBp, rem, false)
	h.setPrevAlloc(remBp, true)

	merged := h.coalesce(remBp)
	if h.sizeAt(merged) >= MinBlockSize {
		h.insert(merged)
	}

	return bp
}
