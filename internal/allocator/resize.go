package allocator

import "unsafe"

// Resize changes the block at p to hold n payload bytes, returning the
// (possibly different) payload pointer, or nil if n is zero (in which case
// p is released) or growth fails. Growth can only fail in the final
// fallback, which releases p before allocating the new block, so p has
// been released in that case too.
//
// Resize tries, in order: shrinking or growing in place, absorbing a free
// successor, sliding into a free predecessor, sliding into a free
// predecessor while also absorbing the successor, and finally a
// free-then-allocate-then-copy fallback. Earlier strategies avoid moving
// the payload at all; later ones move progressively more.
func (h *Heap) Resize(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	if p == nil {
		return h.Allocate(n)
	}

	if n == 0 {
		h.Release(p)
		return nil
	}

	h.enter()
	defer h.leave()

	h.stats.Resizes++

	bp := uintptr(p)
	req := blockSize(n)
	cur := h.sizeAt(bp)

	if cur >= req {
		return unsafe.Pointer(h.split(bp, req))
	}

	next := h.nextBlockAddr(bp)
	nextFree := !h.isEpilogue(next) && !h.allocAt(next)

	if nextFree {
		nsize := h.sizeAt(next)
		if cur+nsize >= req {
			if nsize >= MinBlockSize {
				h.remove(next)
			}

			h.writeBlock(bp, cur+nsize, true)

			return unsafe.Pointer(h.split(bp, req))
		}
	}

	if !h.prevAllocAt(bp) {
		prev := h.prevBlockAddr(bp)
		psize := h.sizeAt(prev)

		if psize+cur >= req {
			return unsafe.Pointer(h.slideIntoPredecessor(prev, bp, req, false))
		}

		if nextFree {
			nsize := h.sizeAt(next)
			if psize+cur+nsize >= req {
				return unsafe.Pointer(h.slideIntoPredecessor(prev, bp, req, true))
			}
		}
	}

	return h.resizeFallback(bp, n, cur)
}

// slideIntoPredecessor merges prev (free) with bp (allocated), optionally
// also absorbing bp's free successor, moves bp's live payload bytes down
// into prev's location, and splits the combined region to req bytes.
func (h *Heap) slideIntoPredecessor(prev, bp uintptr, req uint32, consumeNext bool) uintptr {
	psize := h.sizeAt(prev)
	cur := h.sizeAt(bp)
	total := psize + cur

	if psize >= MinBlockSize {
		h.remove(prev)
	}

	if consumeNext {
		next := h.nextBlockAddr(bp)
		nsize := h.sizeAt(next)

		if nsize >= MinBlockSize {
			h.remove(next)
		}

		total += nsize
	}

	liveBytes := cur - HeaderSize
	h.memmove(prev, bp, liveBytes)
	h.writeBlock(prev, total, true)

	return h.split(prev, req)
}

func (h *Heap) memmove(dst, src uintptr, n uint32) {
	copy(h.mem[h.idx(dst):h.idx(dst)+int(n)], h.mem[h.idx(src):h.idx(src)+int(n)])
}

// resizeFallback is the last resort: it copies the old payload into a
// scratch buffer, frees the old block, allocates a fresh one, and copies
// back whatever fits. This is the safer alternative the design explicitly
// allows in place of saving only the 12 bytes the free-list and footer
// writes would otherwise clobber.
func (h *Heap) resizeFallback(bp uintptr, n uintptr, cur uint32) unsafe.Pointer {
	payloadLen := cur - HeaderSize

	old := make([]byte, payloadLen)
	copy(old, h.mem[h.idx(bp):h.idx(bp)+int(payloadLen)])

	h.stats.Frees++
	h.writeBlock(bp, cur, false)

	merged := h.coalesce(bp)
	if h.sizeAt(merged) >= MinBlockSize {
		h.insert(merged)
	}

	newP := h.allocateLocked(n)
	if newP == nil {
		return nil
	}

	newBp := uintptr(newP)
	newPayloadLen := h.sizeAt(newBp) - HeaderSize

	copyLen := min(uintptr(payloadLen), n, uintptr(newPayloadLen))
	copy(h.mem[h.idx(newBp):h.idx(newBp)+int(copyLen)], old[:copyLen])

	return newP
}
