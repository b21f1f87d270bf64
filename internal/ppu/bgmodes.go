package ppu

// renderTextBG renders one row of a tiled (mode 0/1 text) background,
// handling 4bpp/8bpp tiles and the 256x256..512x512 screen sizes.
func (p *PPU) renderTextBG(bg int, line int, out *[ScreenWidth]layerPixel) {
	r := &p.Regs.bg[bg]
	priority := r.ctrl.Priority()
	mapW, mapH := textSizePixels(r.ctrl.ScreenSize())

	y := (line + int(r.mosaicAdjustedVOFS(r.vofs))) % mapH
	tileRow := y / 8
	pixelRow := y % 8

	for x := 0; x < ScreenWidth; x++ {
		sx := (x + int(r.hofs)) % mapW
		tileCol := sx / 8
		pixelCol := sx % 8

		screenBlock, blockTileCol, blockTileRow := textScreenBlock(r.ctrl.ScreenSize(), tileCol, tileRow)
		mapOffset := r.ctrl.ScreenBase() + uint32(screenBlock)*0x800 + uint32(blockTileRow*32+blockTileCol)*2
		entry := uint16(p.vram[mapOffset]) | uint16(p.vram[mapOffset+1])<<8

		tileID := entry & 0x3FF
		hflip := entry&(1<<10) != 0
		vflip := entry&(1<<11) != 0
		palBank := uint8((entry >> 12) & 0xF)

		tx, ty := pixelCol, pixelRow
		if hflip {
			tx = 7 - tx
		}
		if vflip {
			ty = 7 - ty
		}

		var idx uint8
		if r.ctrl.Palette256() {
			tileBytes := uint32(64)
			base := r.ctrl.CharBase() + uint32(tileID)*tileBytes + uint32(ty*8+tx)
			idx = p.vram[base]
			out[x] = colorEntry(idx, 0, p.paletteColor16(uint32(idx)), priority)
		} else {
			tileBytes := uint32(32)
			base := r.ctrl.CharBase() + uint32(tileID)*tileBytes + uint32(ty*8+tx)/2
			b := p.vram[base]
			if tx%2 == 0 {
				idx = b & 0xF
			} else {
				idx = b >> 4
			}
			palOffset := uint32(palBank)*16 + uint32(idx)
			out[x] = colorEntry(idx, 0, p.paletteColor16(palOffset), priority)
		}
	}
}

func colorEntry(idx, reserved uint8, c uint16, priority int) layerPixel {
	return layerPixel{color: c, opaque: idx != 0, priority: priority}
}

// mosaicAdjustedVOFS exists so future mosaic support has one seam to
// hook into; mosaic itself (MOSAIC register) isn't applied yet.
func (r *bgRegs) mosaicAdjustedVOFS(v uint16) uint16 { return v }

// textScreenBlock maps a tile column/row (in the full, possibly
// multi-screen-block map) to which 32x32 screen block it falls in and
// the tile coordinates within that block.
func textScreenBlock(size int, tileCol, tileRow int) (block, col, row int) {
	switch size {
	case 0:
		return 0, tileCol, tileRow
	case 1:
		block = tileCol / 32
		return block, tileCol % 32, tileRow
	case 2:
		block = tileRow / 32
		return block, tileCol, tileRow % 32
	default:
		block = (tileRow/32)*2 + tileCol/32
		return block, tileCol % 32, tileRow % 32
	}
}

// renderAffineBG renders one row of an affine (rotate/scale) background
// used by BG2/BG3 in modes 1/2.
func (p *PPU) renderAffineBG(bg int, line int, out *[ScreenWidth]layerPixel) {
	r := &p.Regs.bg[bg]
	priority := r.ctrl.Priority()
	mapSize := affineSizePixels(r.ctrl.ScreenSize())

	px := r.curX
	py := r.curY

	for x := 0; x < ScreenWidth; x++ {
		tx := int(px >> 8)
		ty := int(py >> 8)
		px += int32(r.pa)
		py += int32(r.pc)

		if r.ctrl.WrapAround() {
			tx = ((tx % mapSize) + mapSize) % mapSize
			ty = ((ty % mapSize) + mapSize) % mapSize
		} else if tx < 0 || ty < 0 || tx >= mapSize || ty >= mapSize {
			out[x] = layerPixel{}
			continue
		}

		tileCol := tx / 8
		tileRow := ty / 8
		mapTilesPerRow := mapSize / 8
		mapOffset := r.ctrl.ScreenBase() + uint32(tileRow*mapTilesPerRow+tileCol)
		tileID := p.vram[mapOffset]

		tileBytes := uint32(64)
		base := r.ctrl.CharBase() + uint32(tileID)*tileBytes + uint32((ty%8)*8+(tx%8))
		idx := p.vram[base]
		out[x] = colorEntry(idx, 0, p.paletteColor16(uint32(idx)), priority)
	}

	r.curX += int32(r.pb)
	r.curY += int32(r.pd)
}

// renderMode3 renders the 16bpp direct-color bitmap mode.
func (p *PPU) renderMode3(line int, out *[ScreenWidth]layerPixel) {
	base := uint32(line * ScreenWidth * 2)
	for x := 0; x < ScreenWidth; x++ {
		off := base + uint32(x*2)
		c := uint16(p.vram[off]) | uint16(p.vram[off+1])<<8
		out[x] = layerPixel{color: c, opaque: true, priority: p.Regs.bg[2].ctrl.Priority()}
	}
}

// renderMode4 renders the 8bpp paletted bitmap mode, honoring the
// DISPCNT frame-select bit for the active 0xA000-byte page.
func (p *PPU) renderMode4(line int, out *[ScreenWidth]layerPixel) {
	frameBase := uint32(0)
	if p.Regs.FrameSelect() == 1 {
		frameBase = 0xA000
	}
	base := frameBase + uint32(line*ScreenWidth)
	priority := p.Regs.bg[2].ctrl.Priority()
	for x := 0; x < ScreenWidth; x++ {
		idx := p.vram[base+uint32(x)]
		out[x] = colorEntry(idx, 0, p.paletteColor16(uint32(idx)), priority)
	}
}

// renderMode5 renders the reduced-resolution (160x128) 16bpp bitmap
// mode; rows/columns outside that area show the backdrop.
func (p *PPU) renderMode5(line int, out *[ScreenWidth]layerPixel) {
	const w, h = 160, 128
	if line >= h {
		return
	}
	frameBase := uint32(0)
	if p.Regs.FrameSelect() == 1 {
		frameBase = 0xA000
	}
	base := frameBase + uint32(line*w*2)
	priority := p.Regs.bg[2].ctrl.Priority()
	for x := 0; x < w; x++ {
		off := base + uint32(x*2)
		c := uint16(p.vram[off]) | uint16(p.vram[off+1])<<8
		out[x] = layerPixel{color: c, opaque: true, priority: priority}
	}
}
