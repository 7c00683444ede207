// Package allocator implements a single-threaded segregated-fit coalescing
// heap allocator on top of a growable sbrk-style memory region. It exposes
// the four classic allocation primitives (allocate, release, resize,
// zero-alloc) with semantics modeled on the standard C allocator.
package allocator

// Tunables. These mirror the fixed layout constants a malloc lab allocator
// is built against; they are not meant to be changed at runtime except
// through Config (see config.go) for the handful that are safe to retune.
const (
	// Alignment is the byte alignment guaranteed for every payload pointer.
	Alignment = 8

	// HeaderSize is the width in bytes of a block header or footer word.
	HeaderSize = 4

	// MinBlockSize is the smallest block size that may be listed on a free
	// list. Free blocks smaller than this (i.e. exactly 8 bytes) have no
	// room for a successor pointer and participate only in coalescing.
	MinBlockSize = 16

	// Classes is the number of segregated size classes.
	Classes = 26

	// ClassBias is the exponent offset that puts the first class boundary
	// at 32 bytes: class 0 holds sizes up to 32, class i >= 1 holds sizes
	// in (1<<(i+2+ClassBias), 1<<(i+3+ClassBias)] (see classFor).
	ClassBias = 2

	// ClassIndexEntrySize is the width in bytes of a single free-list head
	// slot inside the class index region.
	ClassIndexEntrySize = 8

	// ClassIndexSize is the total size in bytes of the class index region
	// that sits at the very base of the heap.
	ClassIndexSize = Classes * ClassIndexEntrySize

	// HeaderPad is 4 bytes of padding inserted between the class index and
	// the prologue. ClassIndexSize is already a multiple of 8, which would
	// put every block header at offset 0 mod 8 and, since a header is 4
	// bytes, every payload at offset 4 mod 8. This pad shifts headers to 4
	// mod 8 so payloads land on an 8-byte boundary, satisfying the
	// alignment guarantee every entry point promises its caller.
	HeaderPad = 4

	// PrologueSize is the size in bytes of the prologue sentinel block
	// (header + footer, no payload).
	PrologueSize = 8

	// EpilogueSize is the size in bytes of the epilogue sentinel (header
	// only; it is a zero-sized block).
	EpilogueSize = HeaderSize

	// ChunkSize is the default amount the heap is extended by when no
	// free block satisfies a request, chosen to amortize the cost of the
	// underlying sbrk call without committing excessive memory up front.
	ChunkSize = 2112

	// FirstBlockSize is the size of the initial payload region carved out
	// of the heap at Init time.
	FirstBlockSize = 1504
)

// Bit layout of a header/footer word (32-bit little-endian):
//
//	bits 3..31: size in bytes (always a multiple of 8)
//	bit 1:      predecessor-allocated flag
//	bit 0:      self-allocated flag
const (
	allocBit     = 0x1
	prevAllocBit = 0x2
	sizeMask     = ^uint32(0x7)
)

// prologueWord is the literal header/footer word written for the prologue
// sentinel: size 8, self-allocated. Its own predecessor-allocated bit is
// meaningless (nothing precedes it) and is left clear.
const prologueWord uint32 = 0x00000009

// epilogueBaseWord is the epilogue header with size 0 and self-allocated
// set; its predecessor-allocated bit is ORed in at write time to track the
// real last block of the heap.
const epilogueBaseWord uint32 = 0x00000001
