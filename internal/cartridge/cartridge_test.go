package cartridge

import "testing"

func TestNewCartridge_DetectsBackendFromMarker(t *testing.T) {
	rom := romWithMarker("SRAM_V113", 1024)
	c := NewCartridge(rom)

	if c.SaveKind != KindSRAM {
		t.Fatalf("SaveKind = %v, want KindSRAM", c.SaveKind)
	}
	if _, ok := c.Save.(*SRAM); !ok {
		t.Fatalf("Save backend is %T, want *SRAM", c.Save)
	}
}

func TestReadROM8_OutOfRangeReadsAsOpenBus(t *testing.T) {
	c := NewCartridge(make([]byte, 16))
	if got := c.ReadROM8(1000); got != 0xFF {
		t.Fatalf("ReadROM8 beyond image = %#x, want 0xFF", got)
	}
}

func TestWriteROM8_IsNoOp(t *testing.T) {
	rom := make([]byte, 16)
	c := NewCartridge(rom)
	c.WriteROM8(0, 0xAB)

	if c.ReadROM8(0) == 0xAB {
		t.Fatalf("WriteROM8 modified the ROM image")
	}
}

func TestWriteSRAM8_MarksModified(t *testing.T) {
	c := NewCartridge(romWithMarker("SRAM_V113", 1024))

	if c.Modified() {
		t.Fatalf("fresh cartridge reports modified")
	}
	c.WriteSRAM8(0, 0x12)
	if !c.Modified() {
		t.Fatalf("WriteSRAM8 did not mark the cartridge modified")
	}

	c.ClearModified()
	if c.Modified() {
		t.Fatalf("ClearModified did not reset the modified flag")
	}
}

func TestSaveBytesLoadSave_RoundTrip(t *testing.T) {
	c := NewCartridge(romWithMarker("SRAM_V113", 1024))
	c.WriteSRAM8(10, 0x99)

	saved := append([]byte(nil), c.SaveBytes()...)

	c2 := NewCartridge(romWithMarker("SRAM_V113", 1024))
	c2.LoadSave(saved)

	if got := c2.ReadSRAM8(10); got != 0x99 {
		t.Fatalf("ReadSRAM8(10) after LoadSave = %#x, want 0x99", got)
	}
}
