//go:build unix

package sbrk

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapProvider is a Provider backed by a single large anonymous mapping
// reserved with PROT_NONE up front and committed incrementally via
// mprotect as the heap grows. This mirrors real sbrk/brk behavior far more
// closely than StaticProvider: pages are not backed by physical memory
// until the allocator actually asks for them, while the reservation's base
// address — and therefore every pointer handed out — never moves.
type MmapProvider struct {
	mem       []byte
	pageSize  uintptr
	reserved  uintptr
	committed uintptr
	lo        uintptr
	hi        uintptr
	grown     bool
}

// NewMmapProvider reserves a maxSize-byte virtual address range. maxSize is
// rounded up to a whole number of pages.
func NewMmapProvider(maxSize uintptr) (*MmapProvider, error) {
	pageSize := uintptr(unix.Getpagesize())
	reserved := alignUp(maxSize, pageSize)

	mem, err := unix.Mmap(-1, 0, int(reserved), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("sbrk: reserve %d bytes: %w", reserved, err)
	}

	return &MmapProvider{
		mem:      mem,
		pageSize: pageSize,
		reserved: reserved,
		lo:       baseAddr(mem),
	}, nil
}

func (p *MmapProvider) Lo() uintptr {
	return p.lo
}

func (p *MmapProvider) Hi() uintptr {
	return p.hi
}

func (p *MmapProvider) Sbrk(delta uintptr) (uintptr, error) {
	if delta == 0 {
		return 0, fmt.Errorf("sbrk: delta must be > 0")
	}

	needed := p.committed + delta
	if needed > p.reserved {
		return 0, ErrOutOfMemory
	}

	newCommittedPages := alignUp(needed, p.pageSize)
	oldCommittedPages := alignUp(p.committed, p.pageSize)

	if newCommittedPages > oldCommittedPages {
		region := p.mem[oldCommittedPages:newCommittedPages]
		if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, fmt.Errorf("sbrk: commit pages: %w", err)
		}
	}

	base := p.lo + p.committed
	p.committed = needed

	if !p.grown {
		p.hi = base + delta - 1
		p.grown = true
	} else {
		p.hi += delta
	}

	return base, nil
}

// Close releases the virtual address reservation. It is not part of the
// Provider interface since the allocator core never shrinks or tears down
// a heap mid-lifetime; callers that own an *MmapProvider directly may call
// it at process shutdown.
func (p *MmapProvider) Close() error {
	return unix.Munmap(p.mem)
}

func alignUp(x, a uintptr) uintptr {
	return (x + a - 1) &^ (a - 1)
}
