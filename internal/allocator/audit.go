package allocator

// Audit walks the entire heap and checks every invariant the allocator is
// required to maintain between top-level calls. It is not on the
// allocation fast path: callers enable it via Config.EnableAudit (or a
// live tunables file) for tests and debug builds, trading throughput for
// an authoritative consistency check.
func (h *Heap) Audit() error {
	listed, err := h.auditFreeLists()
	if err != nil {
		return err
	}

	payloadBase := h.base + ClassIndexSize + HeaderPad + PrologueSize
	bp := payloadBase + HeaderSize

	var sum uint32

	prevWasFree := false // the prologue precedes the first block and is always allocated

	for !h.isEpilogue(bp) {
		size := h.sizeAt(bp)
		if size == 0 {
			return &ErrInvariantViolation{Rule: "zero-size block before epilogue", Addr: bp}
		}

		alloc := h.allocAt(bp)
		prevAlloc := h.prevAllocAt(bp)

		if prevAlloc == prevWasFree {
			return &ErrInvariantViolation{Rule: "predecessor-allocated flag mismatch", Addr: bp}
		}

		if !alloc {
			if prevWasFree {
				return &ErrInvariantViolation{Rule: "two adjacent free blocks", Addr: bp}
			}

			hdr := h.readWord(hdrAddr(bp))
			foot := h.readWord(footerAddr(bp, size))

			if hdr != foot {
				return &ErrInvariantViolation{Rule: "free block header/footer mismatch", Addr: bp}
			}

			if size >= MinBlockSize {
				if _, ok := listed[bp]; !ok {
					return &ErrInvariantViolation{Rule: "free block missing from its free list", Addr: bp}
				}

				delete(listed, bp)
			}
		}

		sum += size
		prevWasFree = !alloc
		bp = h.nextBlockAddr(bp)
	}

	if len(listed) != 0 {
		for addr := range listed {
			return &ErrInvariantViolation{Rule: "free list entry unreachable by heap walk", Addr: addr}
		}
	}

	epilogueHdr := hdrAddr(h.epilogueBp())
	if expected := uint32(epilogueHdr - payloadBase); sum != expected {
		return &ErrInvariantViolation{Rule: "block size sum does not cover the payload region"}
	}

	if !isAlloc(h.readWord(hdrAddr(h.epilogueBp()))) {
		return &ErrInvariantViolation{Rule: "epilogue not marked allocated", Addr: h.epilogueBp()}
	}

	if blockSizeOf(h.readWord(hdrAddr(h.epilogueBp()))) != 0 {
		return &ErrInvariantViolation{Rule: "epilogue size is not zero", Addr: h.epilogueBp()}
	}

	if h.prevAllocAt(h.epilogueBp()) == prevWasFree {
		return &ErrInvariantViolation{Rule: "epilogue predecessor-allocated flag mismatch", Addr: h.epilogueBp()}
	}

	return nil
}

// auditFreeLists walks every size-class list once, checking for cycles,
// allocated entries, misclassified blocks, and duplicate listings, and
// returns the set of addresses it found (consumed by Audit as it walks
// the heap in address order to confirm every listed block is reachable
// and every reachable free block >= MinBlockSize is listed).
func (h *Heap) auditFreeLists() (map[uintptr]int, error) {
	listed := make(map[uintptr]int)

	for class := 0; class < Classes; class++ {
		seen := make(map[uintptr]bool)
		cur := h.readAddr(h.classHeadAddr(class))

		for cur != 0 {
			if seen[cur] {
				return nil, &ErrInvariantViolation{Rule: "free list cycle", Addr: cur}
			}

			seen[cur] = true

			if h.allocAt(cur) {
				return nil, &ErrInvariantViolation{Rule: "allocated block on a free list", Addr: cur}
			}

			if got := classFor(h.sizeAt(cur)); got != class {
				return nil, &ErrInvariantViolation{Rule: "block listed under the wrong class", Addr: cur}
			}

			if _, dup := listed[cur]; dup {
				return nil, &ErrInvariantViolation{Rule: "block listed on more than one free list", Addr: cur}
			}

			listed[cur] = class
			cur = h.readAddr(successorPtrAddr(cur))
		}
	}

	return listed, nil
}
