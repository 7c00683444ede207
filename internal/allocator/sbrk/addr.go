package sbrk

import "unsafe"

// baseAddr returns the address of a slice's first byte. Confined to this
// one call site so the rest of the package can reason about addresses as
// plain uintptr arithmetic.
func baseAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
