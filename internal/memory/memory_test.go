package memory

import "testing"

// Property 3: reads wrap modulo the region size, so an address one past
// the end reads back what was written to address 0.
func TestRAM_ReadWrapsModuloRegionSize(t *testing.T) {
	r := NewRAM(1024)
	r.Write8(0, 0x42)

	if got := r.Read8(1024); got != 0x42 {
		t.Fatalf("Read8(len) = %#x, want 0x42 (wrapped to address 0)", got)
	}
}

func TestRAM_WriteReadRoundTrip(t *testing.T) {
	r := NewRAM(256)
	r.Write8(100, 0x99)

	if got := r.Read8(100); got != 0x99 {
		t.Fatalf("Read8(100) = %#x, want 0x99", got)
	}
}

func TestEWRAM_SizeAndZeroFilled(t *testing.T) {
	e := NewEWRAM()
	if e.Len() != EWRAMSize {
		t.Fatalf("EWRAM size = %d, want %d", e.Len(), EWRAMSize)
	}
	if got := e.Read8(0); got != 0 {
		t.Fatalf("fresh EWRAM byte = %#x, want 0", got)
	}
}

func TestIWRAM_SizeAndZeroFilled(t *testing.T) {
	i := NewIWRAM()
	if i.Len() != IWRAMSize {
		t.Fatalf("IWRAM size = %d, want %d", i.Len(), IWRAMSize)
	}
}

func TestBIOS_OutOfRangeReadsAsZero(t *testing.T) {
	b := NewBIOS()
	if got := b.Read8(BiosSize + 1); got != 0 {
		t.Fatalf("out-of-range BIOS read = %#x, want 0", got)
	}
}

func TestBIOS_WriteIsNoOp(t *testing.T) {
	b := NewBIOS()
	b.Write8(0, 0xFF)
	if got := b.Read8(0); got != 0 {
		t.Fatalf("BIOS write was not discarded, read back %#x", got)
	}
}

func TestBIOS_LoadImageTruncatesAndZeroFillsRemainder(t *testing.T) {
	b := NewBIOS()
	img := make([]byte, BiosSize+100)
	for i := range img {
		img[i] = 0xAB
	}
	b.LoadImage(img)
	if got := b.Read8(BiosSize - 1); got != 0xAB {
		t.Fatalf("last in-range byte = %#x, want 0xAB", got)
	}

	b2 := NewBIOS()
	short := []byte{0x11, 0x22, 0x33}
	b2.LoadImage(short)
	if got := b2.Read8(0); got != 0x11 {
		t.Fatalf("LoadImage did not install short image byte 0")
	}
	if got := b2.Read8(10); got != 0 {
		t.Fatalf("byte beyond short image = %#x, want 0 (zero-filled remainder)", got)
	}
}
