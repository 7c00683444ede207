package allocator

import (
	"encoding/binary"
	"unsafe"
)

// refreshView resyncs the Heap's byte-level view of the backing memory
// after the provider's high-water mark has moved. The provider guarantees
// the base address never moves once established (see sbrk.Provider), so
// this is just a reslice, not a copy.
func (h *Heap) refreshView() {
	h.hi = h.provider.Hi()
	if h.hi < h.base {
		h.mem = nil
		return
	}
	n := int(h.hi - h.base + 1)
	h.mem = unsafe.Slice((*byte)(unsafe.Pointer(h.base)), n)
}

// idx converts an absolute address into an index into h.mem.
func (h *Heap) idx(addr uintptr) int {
	return int(addr - h.base)
}

func (h *Heap) readWord(addr uintptr) uint32 {
	i := h.idx(addr)
	return binary.LittleEndian.Uint32(h.mem[i : i+4])
}

func (h *Heap) writeWord(addr uintptr, word uint32) {
	i := h.idx(addr)
	binary.LittleEndian.PutUint32(h.mem[i:i+4], word)
}

// readAddr loads an 8-byte free-list link (a class-index head or a free
// block's successor pointer) as an absolute address. Zero means nil.
func (h *Heap) readAddr(at uintptr) uintptr {
	i := h.idx(at)
	return uintptr(binary.LittleEndian.Uint64(h.mem[i : i+8]))
}

func (h *Heap) writeAddr(at uintptr, addr uintptr) {
	i := h.idx(at)
	binary.LittleEndian.PutUint64(h.mem[i:i+8], uint64(addr))
}

// classHeadAddr returns the address of the free-list head slot for class i,
// which lives in the class index region at the very base of the heap.
func (h *Heap) classHeadAddr(class int) uintptr {
	return h.base + uintptr(class*ClassIndexEntrySize)
}
