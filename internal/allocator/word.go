package allocator

// blockSizeOf extracts the size field from a header/footer word.
func blockSizeOf(word uint32) uint32 {
	return word & sizeMask
}

// isAlloc reports whether the self-allocated bit is set.
func isAlloc(word uint32) bool {
	return word&allocBit != 0
}

// isPrevAlloc reports whether the predecessor-allocated bit is set.
func isPrevAlloc(word uint32) bool {
	return word&prevAllocBit != 0
}

// packWord assembles a header/footer word from its three fields.
func packWord(size uint32, prevAlloc, alloc bool) uint32 {
	w := size & sizeMask
	if prevAlloc {
		w |= prevAllocBit
	}
	if alloc {
		w |= allocBit
	}
	return w
}
