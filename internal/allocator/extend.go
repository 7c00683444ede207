package allocator

// extend grows the heap to satisfy a request that no free block could
// fill. It requests max(req, ChunkSize) bytes from the provider to
// amortize the cost of extension; if that fails it falls back to
// requesting exactly req. The newly granted region is written as a single
// free block reusing the old epilogue's header slot (which is why its
// predecessor-allocated bit is inherited for free by writeBlock), a fresh
// epilogue is installed at the new top, and the new block is coalesced
// with whatever free block preceded the old epilogue.
func (h *Heap) extend(req uint32) (uintptr, bool) {
	grow := req
	if cs := h.chunkSize(); cs > grow {
		grow = cs
	}

	base, err := h.provider.Sbrk(uintptr(grow))
	delta := grow

	if err != nil {
		base, err = h.provider.Sbrk(uintptr(req))
		if err != nil {
			return 0, false
		}

		delta = req
	}

	h.refreshView()
	h.stats.HeapExtensions++
	h.stats.HeapBytes += uintptr(delta)

	newBp := base
	h.writeBlock(newBp, delta, false)
	h.writeEpilogue(false)

	merged := h.coalesce(newBp)
	if h.sizeAt(merged) >= MinBlockSize {
		h.insert(merged)
	}

	return merged, true
}
