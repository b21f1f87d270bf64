package ppu

import "testing"

func newTestPPU() *PPU {
	p := NewPPU()
	p.WriteIORegister8(0x0000, 0x00) // clear forced blank
	return p
}

// S8: with forced blank cleared and nothing else enabled, a scanline
// renders the backdrop color (BG palette entry 0) at every column, and
// the VBlank flag/event fires exactly on the transition into line 160.
func TestScenario_BackdropRenderAndVBlankTiming(t *testing.T) {
	p := newTestPPU()
	// Palette entry 0, RGB555 0x001F = pure red.
	p.WritePaletteRAM8(0, 0x1F)
	p.WritePaletteRAM8(1, 0x00)

	p.Step(cyclesPerLine)

	want := rgb555ToRGBA(0x001F)
	got := p.Frame.At(0, 0)
	r, g, b, a := got.RGBA()
	wr, wg, wb, wa := want.RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Fatalf("pixel(0,0) = %v, want %v", got, want)
	}

	if p.Regs.VBlankFlag() {
		t.Fatalf("VBlank flag set after the first scanline")
	}

	var sawVBlankEvent bool
	for i := 0; i < 159; i++ {
		ev := p.Step(cyclesPerLine)
		if ev.EnteredVBlank {
			sawVBlankEvent = true
		}
	}

	if !sawVBlankEvent {
		t.Fatalf("EnteredVBlank never fired across lines 1-159")
	}
	if !p.Regs.VBlankFlag() {
		t.Fatalf("VBlank flag not set once VCOUNT reaches 160")
	}
	if p.Regs.VCountTarget() != 0 {
		t.Fatalf("VCountTarget = %d, want 0 (default)", p.Regs.VCountTarget())
	}
}

// Forced blank (the post-reset default) renders white instead of the
// backdrop color.
func TestForcedBlank_RendersWhite(t *testing.T) {
	p := NewPPU()
	if !p.Regs.ForcedBlank() {
		t.Fatalf("NewPPU did not default to forced blank")
	}

	p.Step(cyclesPerLine)

	got := p.Frame.At(0, 0)
	r, g, b, a := got.RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Fatalf("forced-blank pixel = %v, want opaque white", got)
	}
}

// VBlank flag clears again once VCOUNT wraps back to line 0.
func TestVBlankFlag_ClearsAtFrameWrap(t *testing.T) {
	p := newTestPPU()
	for i := 0; i < totalLines; i++ {
		p.Step(cyclesPerLine)
	}
	if p.Regs.VBlankFlag() {
		t.Fatalf("VBlank flag still set after wrapping back to line 0")
	}
}

// IsFrameReady/ResetFrameReady track one frame-completion pulse.
func TestFrameReady_SetOnceAtVBlankAndResettable(t *testing.T) {
	p := newTestPPU()
	for i := 0; i < ScreenHeight; i++ {
		p.Step(cyclesPerLine)
	}
	if !p.IsFrameReady() {
		t.Fatalf("IsFrameReady false after reaching VBlank")
	}
	p.ResetFrameReady()
	if p.IsFrameReady() {
		t.Fatalf("ResetFrameReady did not clear the flag")
	}
}

// A regular (non-affine) 4bpp sprite placed at the origin composites
// over the backdrop using its OBJ-palette color.
func TestRenderSprites_RegularSpriteOverBackdrop(t *testing.T) {
	p := newTestPPU()
	p.WriteIORegister8(0x0001, 0x10) // OBJ enable is DISPCNT bit 12 (high byte bit 4)

	// OBJ palette bank 0, index 1 -> RGB555 pure green (0x03E0).
	objPalOffset := uint32(0x200) + 1*2
	p.WritePaletteRAM8(objPalOffset, 0xE0)
	p.WritePaletteRAM8(objPalOffset+1, 0x03)

	// Tile 0 in OBJ VRAM (0x10000), 4bpp: every pixel is palette index 1.
	for i := uint32(0); i < 32; i++ {
		p.WriteVRAM8(0x10000+i, 0x11)
	}

	// OAM entry 0: regular 8x8 sprite at (0,0), tile 0, priority 0.
	p.WriteOAM8(0, 0x00) // attr0 lo: Y=0
	p.WriteOAM8(1, 0x00) // attr0 hi: square shape, not affine
	p.WriteOAM8(2, 0x00) // attr1 lo: X=0
	p.WriteOAM8(3, 0x00) // attr1 hi: size=0 (8x8), not flipped
	p.WriteOAM8(4, 0x00) // attr2 lo: tile 0
	p.WriteOAM8(5, 0x00) // attr2 hi: priority 0, palette bank 0

	p.Step(cyclesPerLine)

	want := rgb555ToRGBA(0x03E0)
	got := p.Frame.At(0, 0)
	r, g, b, a := got.RGBA()
	wr, wg, wb, wa := want.RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Fatalf("sprite pixel(0,0) = %v, want %v", got, want)
	}
}

// DISPCNT's BG-enable bits and mode field round-trip through the 8-bit
// I/O register interface.
func TestWriteIORegister8_DispcntRoundTrip(t *testing.T) {
	p := NewPPU()
	p.WriteIORegister8(0x0000, 0x01) // mode 1, low byte
	p.WriteIORegister8(0x0001, 0x01) // BG0 enable bit (bit 8), high byte

	if p.Regs.BGMode() != 1 {
		t.Fatalf("BGMode() = %d, want 1", p.Regs.BGMode())
	}
	if !p.Regs.BGEnabled(0) {
		t.Fatalf("BG0 not reported enabled after setting DISPCNT bit 8")
	}
}
