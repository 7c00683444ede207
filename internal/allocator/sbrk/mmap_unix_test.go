//go:build unix

package sbrk

import (
	"errors"
	"testing"
)

func TestMmapProviderCommitsIncrementally(t *testing.T) {
	p, err := NewMmapProvider(1 << 20)
	if err != nil {
		t.Fatalf("NewMmapProvider: %v", err)
	}
	defer p.Close()

	base, err := p.Sbrk(128)
	if err != nil {
		t.Fatalf("Sbrk: %v", err)
	}

	if p.Lo() != base {
		t.Errorf("Lo() = %#x, want %#x", p.Lo(), base)
	}

	if p.Hi() != base+127 {
		t.Errorf("Hi() = %#x, want %#x", p.Hi(), base+127)
	}
}

func TestMmapProviderRefusesBeyondReservation(t *testing.T) {
	p, err := NewMmapProvider(4096)
	if err != nil {
		t.Fatalf("NewMmapProvider: %v", err)
	}
	defer p.Close()

	if _, err := p.Sbrk(8192); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Sbrk beyond reservation error = %v, want ErrOutOfMemory", err)
	}
}

func TestMmapProviderPagesAreWritableOnceCommitted(t *testing.T) {
	p, err := NewMmapProvider(1 << 20)
	if err != nil {
		t.Fatalf("NewMmapProvider: %v", err)
	}
	defer p.Close()

	base, err := p.Sbrk(4096)
	if err != nil {
		t.Fatalf("Sbrk: %v", err)
	}

	offset := base - p.Lo()
	p.mem[offset] = 0x42

	if p.mem[offset] != 0x42 {
		t.Fatalf("committed page did not accept a write")
	}
}
