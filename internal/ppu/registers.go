package ppu

// BGControl decodes one BGxCNT register (spec.md §4.3).
type BGControl struct {
	raw uint16
}

func (c BGControl) Priority() int      { return int(c.raw & 0x3) }
func (c BGControl) CharBase() uint32   { return uint32((c.raw>>2)&0x3) * 0x4000 }
func (c BGControl) Mosaic() bool       { return c.raw&(1<<6) != 0 }
func (c BGControl) Palette256() bool   { return c.raw&(1<<7) != 0 }
func (c BGControl) ScreenBase() uint32 { return uint32((c.raw>>8)&0x1F) * 0x800 }
func (c BGControl) WrapAround() bool   { return c.raw&(1<<13) != 0 }
func (c BGControl) ScreenSize() int    { return int((c.raw >> 14) & 0x3) }

// textSizePixels returns the tile-map width/height in pixels for a
// regular (non-affine) background, indexed by ScreenSize().
func textSizePixels(size int) (w, h int) {
	switch size {
	case 0:
		return 256, 256
	case 1:
		return 512, 256
	case 2:
		return 256, 512
	default:
		return 512, 512
	}
}

// affineSizePixels returns the map size for an affine background (BG2/3
// in modes 1-2), indexed by ScreenSize().
func affineSizePixels(size int) int {
	return 128 << uint(size)
}

// bgRegs holds the per-background scroll and, for BG2/3, affine
// parameters.
type bgRegs struct {
	ctrl BGControl
	hofs uint16
	vofs uint16

	// Affine-only (BG2/BG3): reference point and 2x2 transform matrix.
	pa, pb, pc, pd int16
	refX, refY     int32 // 20.8 fixed point, latched at VBlank/line 0
	curX, curY     int32
}

// Registers is the full PPU-owned register block: DISPCNT/DISPSTAT/
// VCOUNT, four BGxCNT+scroll sets, window, mosaic and blend registers.
type Registers struct {
	dispcnt uint16
	dispstat uint16
	vcount  uint16

	bg [4]bgRegs

	win0h, win0v uint16
	win1h, win1v uint16
	winin, winout uint16

	mosaic uint16

	bldcnt  uint16
	bldalpha uint16
	bldy    uint16
}

func (r *Registers) BGMode() int       { return int(r.dispcnt & 0x7) }
func (r *Registers) FrameSelect() int  { return int((r.dispcnt >> 4) & 1) }
func (r *Registers) OBJCharMapping1D() bool { return r.dispcnt&(1<<6) != 0 }
func (r *Registers) ForcedBlank() bool { return r.dispcnt&(1<<7) != 0 }
func (r *Registers) BGEnabled(n int) bool { return r.dispcnt&(1<<(8+uint(n))) != 0 }
func (r *Registers) OBJEnabled() bool  { return r.dispcnt&(1<<12) != 0 }
func (r *Registers) Win0Enabled() bool { return r.dispcnt&(1<<13) != 0 }
func (r *Registers) Win1Enabled() bool { return r.dispcnt&(1<<14) != 0 }
func (r *Registers) WinOBJEnabled() bool { return r.dispcnt&(1<<15) != 0 }
func (r *Registers) AnyWindowEnabled() bool {
	return r.Win0Enabled() || r.Win1Enabled() || r.WinOBJEnabled()
}

func (r *Registers) VBlankFlag() bool   { return r.dispstat&(1<<0) != 0 }
func (r *Registers) HBlankFlag() bool   { return r.dispstat&(1<<1) != 0 }
func (r *Registers) VCountFlag() bool   { return r.dispstat&(1<<2) != 0 }
func (r *Registers) VBlankIRQEnabled() bool { return r.dispstat&(1<<3) != 0 }
func (r *Registers) HBlankIRQEnabled() bool { return r.dispstat&(1<<4) != 0 }
func (r *Registers) VCountIRQEnabled() bool { return r.dispstat&(1<<5) != 0 }
func (r *Registers) VCountTarget() uint16   { return (r.dispstat >> 8) & 0xFF }

// BlendMode returns BLDCNT's mode field: 0 none, 1 alpha, 2 brighten, 3 darken.
func (r *Registers) BlendMode() int { return int((r.bldcnt >> 6) & 0x3) }

// blendBitForLayer maps a compositing layer id (0-3 BG, 4 OBJ, backdropLayer BD)
// to its bit position within BLDCNT's first/second-target field.
func blendBitForLayer(id int) uint16 {
	switch id {
	case 4:
		return 4 // OBJ
	case backdropLayer:
		return 5 // BD
	default:
		return uint16(id) // BG0-3
	}
}

func (r *Registers) IsFirstTarget(layerID int) bool {
	return r.bldcnt&(1<<blendBitForLayer(layerID)) != 0
}
func (r *Registers) IsSecondTarget(layerID int) bool {
	return r.bldcnt&(1<<(blendBitForLayer(layerID)+8)) != 0
}

func clampEV(v uint16) int {
	ev := int(v & 0x1F)
	if ev > 16 {
		ev = 16
	}
	return ev
}

func (r *Registers) EVA() int { return clampEV(r.bldalpha) }
func (r *Registers) EVB() int { return clampEV(r.bldalpha >> 8) }
func (r *Registers) EVY() int { return clampEV(r.bldy) }

func (r *Registers) setFlag(bit uint16, set bool) {
	if set {
		r.dispstat |= bit
	} else {
		r.dispstat &^= bit
	}
}
