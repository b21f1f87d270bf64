// Package ppu implements the GBA's scanline-based picture processing
// unit: background modes 0-5, sprite compositing, windowing and alpha
// blending (spec.md §4.3/§4.4). Rendering happens one scanline at a
// time, matching how the real hardware (and every cycle-accurate
// emulator in its lineage) produces a frame.
package ppu

import (
	"image"
	"image/color"

	"GoBA/util/dbg"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	cyclesPerDot    = 4
	dotsPerLine     = 308
	cyclesPerLine   = dotsPerLine * cyclesPerDot // 1232
	totalLines      = 228
	visibleDotWidth = 240

	PaletteSize = 1024
	VRAMSize    = 96 * 1024
	OAMSize     = 1024
)

// Events reports what happened during a Step call, so the bus can
// forward IRQ requests and fire DMA triggers without the PPU needing a
// reference to either.
type Events struct {
	IRQVBlank   bool
	IRQHBlank   bool
	IRQVCount   bool
	EnteredHBlank bool
	EnteredVBlank bool
}

// PPU owns PALRAM, VRAM, OAM and every PPU-mapped I/O register.
type PPU struct {
	palette [PaletteSize]byte
	vram    [VRAMSize]byte
	oam     [OAMSize]byte

	Regs Registers

	Frame      *image.RGBA
	frameReady bool

	lineCycle uint32
	hblanked  bool
}

// NewPPU returns a PPU with blanked VRAM/OAM/palette and DISPCNT forced
// blank, matching post-reset hardware state.
func NewPPU() *PPU {
	p := &PPU{Frame: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))}
	p.Regs.dispcnt = 0x0080
	return p
}

// IsPPUIORegister reports whether a main-block I/O offset belongs to
// the PPU (DISPCNT..BLDY, 0x0000-0x0055).
func (p *PPU) IsPPUIORegister(addr uint32) bool {
	return addr <= 0x0055
}

func (p *PPU) ReadIORegister8(addr uint32) uint8 {
	hi := addr&1 != 0
	word16 := func(v uint16) uint8 {
		if hi {
			return uint8(v >> 8)
		}
		return uint8(v)
	}
	switch addr &^ 1 {
	case 0x0000:
		return word16(p.Regs.dispcnt)
	case 0x0004:
		return word16(p.Regs.dispstat)
	case 0x0006:
		return word16(p.Regs.vcount)
	case 0x0008:
		return word16(p.Regs.bg[0].ctrl.raw)
	case 0x000A:
		return word16(p.Regs.bg[1].ctrl.raw)
	case 0x000C:
		return word16(p.Regs.bg[2].ctrl.raw)
	case 0x000E:
		return word16(p.Regs.bg[3].ctrl.raw)
	case 0x0048:
		return word16(p.Regs.winin)
	case 0x004A:
		return word16(p.Regs.winout)
	case 0x0050:
		return word16(p.Regs.bldcnt)
	case 0x0052:
		return word16(p.Regs.bldalpha)
	default:
		return 0
	}
}

func (p *PPU) WriteIORegister8(addr uint32, value uint8) {
	set16 := func(cur uint16) uint16 {
		if addr&1 != 0 {
			return (cur &^ 0xFF00) | uint16(value)<<8
		}
		return (cur &^ 0x00FF) | uint16(value)
	}
	base := addr &^ 1
	switch base {
	case 0x0000:
		p.Regs.dispcnt = set16(p.Regs.dispcnt)
	case 0x0004:
		// bits 0-2 are read-only status; only IRQ enables + VCount target are writable
		rw := set16(p.Regs.dispstat)
		p.Regs.dispstat = (p.Regs.dispstat & 0x0007) | (rw &^ 0x0007)
	case 0x0008:
		p.Regs.bg[0].ctrl.raw = set16(p.Regs.bg[0].ctrl.raw)
	case 0x000A:
		p.Regs.bg[1].ctrl.raw = set16(p.Regs.bg[1].ctrl.raw)
	case 0x000C:
		p.Regs.bg[2].ctrl.raw = set16(p.Regs.bg[2].ctrl.raw)
	case 0x000E:
		p.Regs.bg[3].ctrl.raw = set16(p.Regs.bg[3].ctrl.raw)
	case 0x0010:
		p.Regs.bg[0].hofs = set16(p.Regs.bg[0].hofs)
	case 0x0012:
		p.Regs.bg[0].vofs = set16(p.Regs.bg[0].vofs)
	case 0x0014:
		p.Regs.bg[1].hofs = set16(p.Regs.bg[1].hofs)
	case 0x0016:
		p.Regs.bg[1].vofs = set16(p.Regs.bg[1].vofs)
	case 0x0018:
		p.Regs.bg[2].hofs = set16(p.Regs.bg[2].hofs)
	case 0x001A:
		p.Regs.bg[2].vofs = set16(p.Regs.bg[2].vofs)
	case 0x001C:
		p.Regs.bg[3].hofs = set16(p.Regs.bg[3].hofs)
	case 0x001E:
		p.Regs.bg[3].vofs = set16(p.Regs.bg[3].vofs)
	case 0x0020:
		p.Regs.bg[2].pa = int16(set16(uint16(p.Regs.bg[2].pa)))
	case 0x0022:
		p.Regs.bg[2].pb = int16(set16(uint16(p.Regs.bg[2].pb)))
	case 0x0024:
		p.Regs.bg[2].pc = int16(set16(uint16(p.Regs.bg[2].pc)))
	case 0x0026:
		p.Regs.bg[2].pd = int16(set16(uint16(p.Regs.bg[2].pd)))
	case 0x0028, 0x002A:
		p.writeAffineRef(&p.Regs.bg[2].refX, addr, value)
	case 0x002C, 0x002E:
		p.writeAffineRef(&p.Regs.bg[2].refY, addr, value)
	case 0x0030:
		p.Regs.bg[3].pa = int16(set16(uint16(p.Regs.bg[3].pa)))
	case 0x0032:
		p.Regs.bg[3].pb = int16(set16(uint16(p.Regs.bg[3].pb)))
	case 0x0034:
		p.Regs.bg[3].pc = int16(set16(uint16(p.Regs.bg[3].pc)))
	case 0x0036:
		p.Regs.bg[3].pd = int16(set16(uint16(p.Regs.bg[3].pd)))
	case 0x0038, 0x003A:
		p.writeAffineRef(&p.Regs.bg[3].refX, addr, value)
	case 0x003C, 0x003E:
		p.writeAffineRef(&p.Regs.bg[3].refY, addr, value)
	case 0x0040:
		p.Regs.win0h = set16(p.Regs.win0h)
	case 0x0042:
		p.Regs.win1h = set16(p.Regs.win1h)
	case 0x0044:
		p.Regs.win0v = set16(p.Regs.win0v)
	case 0x0046:
		p.Regs.win1v = set16(p.Regs.win1v)
	case 0x0048:
		p.Regs.winin = set16(p.Regs.winin)
	case 0x004A:
		p.Regs.winout = set16(p.Regs.winout)
	case 0x004C:
		p.Regs.mosaic = set16(p.Regs.mosaic)
	case 0x0050:
		p.Regs.bldcnt = set16(p.Regs.bldcnt)
	case 0x0052:
		p.Regs.bldalpha = set16(p.Regs.bldalpha)
	case 0x0054:
		p.Regs.bldy = set16(p.Regs.bldy)
	default:
		dbg.Printf("ppu: unhandled io write %04X=%02X\n", addr, value)
	}
}

// writeAffineRef combines four byte writes (addr&3 selects which byte
// lane) into the 28-bit signed reference point, sign-extended to 32
// bits.
func (p *PPU) writeAffineRef(field *int32, addr uint32, value uint8) {
	raw := uint32(*field)
	shift := (addr & 3) * 8
	raw = (raw &^ (0xFF << shift)) | uint32(value)<<shift
	*field = signExtend28(raw)
}

func signExtend28(v uint32) int32 {
	v &= 0x0FFFFFFF
	if v&0x08000000 != 0 {
		return int32(v | 0xF0000000)
	}
	return int32(v)
}

func (p *PPU) ReadPaletteRAM8(addr uint32) uint8 {
	return p.palette[addr%PaletteSize]
}
func (p *PPU) WritePaletteRAM8(addr uint32, value uint8) {
	p.palette[addr%PaletteSize] = value
}
func (p *PPU) ReadVRAM8(addr uint32) uint8 {
	if int(addr) >= len(p.vram) {
		return 0
	}
	return p.vram[addr]
}
func (p *PPU) WriteVRAM8(addr uint32, value uint8) {
	if int(addr) >= len(p.vram) {
		return
	}
	p.vram[addr] = value
}
func (p *PPU) ReadOAM8(addr uint32) uint8 {
	return p.oam[addr%OAMSize]
}
func (p *PPU) WriteOAM8(addr uint32, value uint8) {
	p.oam[addr%OAMSize] = value
}

func (p *PPU) paletteColor16(offset uint32) uint16 {
	lo := uint16(p.palette[offset*2%PaletteSize])
	hi := uint16(p.palette[(offset*2+1)%PaletteSize])
	return lo | hi<<8
}

func rgb555ToRGBA(c uint16) color.RGBA {
	r := uint8(c&0x1F) << 3
	g := uint8((c>>5)&0x1F) << 3
	b := uint8((c>>10)&0x1F) << 3
	return color.RGBA{r, g, b, 255}
}

// Step advances the PPU's scanline/dot counter by cpuCycles and renders
// a scanline each time one finishes, returning which IRQ/DMA-trigger
// events occurred.
func (p *PPU) Step(cpuCycles uint32) Events {
	var ev Events
	p.lineCycle += cpuCycles

	if !p.hblanked && p.lineCycle >= uint32(visibleDotWidth*cyclesPerDot) && p.Regs.vcount < ScreenHeight {
		p.hblanked = true
		p.Regs.setFlag(1<<1, true)
		ev.EnteredHBlank = true
		if p.Regs.HBlankIRQEnabled() {
			ev.IRQHBlank = true
		}
		if p.Regs.vcount < ScreenHeight {
			p.renderScanline(int(p.Regs.vcount))
		}
	}

	if p.lineCycle >= cyclesPerLine {
		p.lineCycle -= cyclesPerLine
		p.hblanked = false
		p.Regs.setFlag(1<<1, false)
		p.Regs.vcount++
		if int(p.Regs.vcount) >= totalLines {
			p.Regs.vcount = 0
		}
		p.Regs.vcount %= totalLines

		if p.Regs.vcount == ScreenHeight {
			p.Regs.setFlag(1<<0, true)
			ev.EnteredVBlank = true
			p.frameReady = true
			if p.Regs.VBlankIRQEnabled() {
				ev.IRQVBlank = true
			}
			p.latchAffineRefs()
		}
		if p.Regs.vcount == 0 {
			p.Regs.setFlag(1<<0, false)
		}

		match := p.Regs.vcount == p.Regs.VCountTarget()
		p.Regs.setFlag(1<<2, match)
		if match && p.Regs.VCountIRQEnabled() {
			ev.IRQVCount = true
		}
	}
	return ev
}

// latchAffineRefs reloads BG2/3's running affine position from the
// reference-point registers; hardware does this once per frame at the
// start of VBlank (and whenever the reference registers are written).
func (p *PPU) latchAffineRefs() {
	for i := 2; i <= 3; i++ {
		p.Regs.bg[i].curX = p.Regs.bg[i].refX
		p.Regs.bg[i].curY = p.Regs.bg[i].refY
	}
}

// IsFrameReady/ResetFrameReady let the driver poll for a completed
// frame instead of threading a channel through the PPU.
func (p *PPU) IsFrameReady() bool { return p.frameReady }
func (p *PPU) ResetFrameReady()   { p.frameReady = false }
