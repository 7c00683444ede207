package allocator

import "testing"

func TestBlockSizeFloorsAtMinBlockSize(t *testing.T) {
	for n := uintptr(0); n <= 8; n++ {
		if got := blockSize(n); got != MinBlockSize {
			t.Errorf("blockSize(%d) = %d, want %d", n, got, MinBlockSize)
		}
	}
}

func TestBlockSizeIsEightByteAligned(t *testing.T) {
	for n := uintptr(1); n < 4096; n++ {
		got := blockSize(n)
		if got%Alignment != 0 {
			t.Fatalf("blockSize(%d) = %d is not %d-byte aligned", n, got, Alignment)
		}

		if uintptr(got) < n+HeaderSize {
			t.Fatalf("blockSize(%d) = %d does not leave room for the payload plus header", n, got)
		}
	}
}

func TestAlignUp8(t *testing.T) {
	cases := map[uintptr]uintptr{
		0:  0,
		1:  8,
		7:  8,
		8:  8,
		9:  16,
		16: 16,
	}

	for in, want := range cases {
		if got := alignUp8(in); got != want {
			t.Errorf("alignUp8(%d) = %d, want %d", in, got, want)
		}
	}
}
