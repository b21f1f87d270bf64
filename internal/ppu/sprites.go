package ppu

// objSize maps (shape, size) from OAM attribute 0/1 to a sprite's pixel
// dimensions.
var objSize = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // wide
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // tall
}

type oamEntry struct {
	y, x         int
	shape, size  int
	tileID       int
	priority     int
	palBank      int
	palette256   bool
	hflip, vflip bool
	affine       bool
	doubleSize   bool
	affineIdx    int
	disabled     bool
}

func (p *PPU) readOAMEntry(i int) oamEntry {
	base := uint32(i * 8)
	attr0 := uint16(p.oam[base]) | uint16(p.oam[base+1])<<8
	attr1 := uint16(p.oam[base+2]) | uint16(p.oam[base+3])<<8
	attr2 := uint16(p.oam[base+4]) | uint16(p.oam[base+5])<<8

	e := oamEntry{
		y:          int(attr0 & 0xFF),
		affine:     attr0&(1<<8) != 0,
		doubleSize: attr0&(1<<9) != 0,
		shape:      int((attr0 >> 14) & 0x3),
		x:          int(attr1 & 0x1FF),
		size:       int((attr1 >> 14) & 0x3),
		tileID:     int(attr2 & 0x3FF),
		priority:   int((attr2 >> 10) & 0x3),
		palBank:    int((attr2 >> 12) & 0xF),
		palette256: attr0&(1<<13) != 0,
	}
	if e.y >= 160 {
		e.y -= 256
	}
	if e.x >= 256 {
		e.x -= 512
	}
	if e.affine {
		e.affineIdx = int((attr1 >> 9) & 0x1F)
	} else {
		e.disabled = attr0&(1<<9) != 0 // non-affine: bit 9 is the disable flag
		e.hflip = attr1&(1<<12) != 0
		e.vflip = attr1&(1<<13) != 0
	}
	return e
}

func (p *PPU) readAffineParams(idx int) (pa, pb, pc, pd int16) {
	base := uint32(idx*32 + 6)
	read := func(off uint32) int16 {
		return int16(uint16(p.oam[base+off]) | uint16(p.oam[base+off+1])<<8)
	}
	return read(0), read(8), read(16), read(24)
}

// renderSprites scans all 128 OAM entries and plots any that intersect
// line into out, respecting priority. Entries are drawn from 127 down
// to 0 and a later draw replaces an earlier pixel unless that pixel has
// a strictly lower priority value, so at equal priority the lower OAM
// index wins.
func (p *PPU) renderSprites(line int, out *[ScreenWidth]layerPixel) {
	oneD := p.Regs.OBJCharMapping1D()

	for i := 127; i >= 0; i-- {
		e := p.readOAMEntry(i)
		if !e.affine && e.disabled {
			continue
		}
		w, h := objSize[e.shape][e.size][0], objSize[e.shape][e.size][1]
		boundW, boundH := w, h
		if e.affine && e.doubleSize {
			boundW, boundH = w*2, h*2
		}
		if line < e.y || line >= e.y+boundH {
			continue
		}

		var pa, pb, pc, pd int16 = 256, 0, 0, 256
		if e.affine {
			pa, pb, pc, pd = p.readAffineParams(e.affineIdx)
		}

		cx, cy := boundW/2, boundH/2
		sy := line - e.y - cy

		for sx := 0; sx < boundW; sx++ {
			dx := sx - cx

			var tx, ty int
			if e.affine {
				fx := (int32(pa)*int32(dx) + int32(pb)*int32(sy)) >> 8
				fy := (int32(pc)*int32(dx) + int32(pd)*int32(sy)) >> 8
				tx = int(fx) + w/2
				ty = int(fy) + h/2
				if tx < 0 || ty < 0 || tx >= w || ty >= h {
					continue
				}
			} else {
				tx, ty = sx, sy+cy
				if e.hflip {
					tx = w - 1 - tx
				}
				if e.vflip {
					ty = h - 1 - ty
				}
			}

			screenX := e.x + sx
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}

			tileCol, pixCol := tx/8, tx%8
			tileRow, pixRow := ty/8, ty%8

			if out[screenX].opaque && e.priority > out[screenX].priority {
				continue
			}

			var idx uint8
			if e.palette256 {
				tileIndex := e.tileID/2 + tileRow*stride1D(oneD, 32, w/8) + tileCol
				base := uint32(0x10000) + uint32(tileIndex)*64 + uint32(pixRow*8+pixCol)
				idx = p.vram[base]
				if idx == 0 {
					continue
				}
				out[screenX] = colorEntry(idx, 0, p.paletteColor16(256+uint32(idx)), e.priority)
			} else {
				tileIndex := e.tileID + tileRow*stride1D(oneD, 32, w/8) + tileCol
				base := uint32(0x10000) + uint32(tileIndex)*32 + uint32(pixRow*8+pixCol)/2
				b := p.vram[base]
				if pixCol%2 == 0 {
					idx = b & 0xF
				} else {
					idx = b >> 4
				}
				if idx == 0 {
					continue
				}
				palOffset := 256 + uint32(e.palBank)*16 + uint32(idx)
				out[screenX] = colorEntry(idx, 0, p.paletteColor16(palOffset), e.priority)
			}
		}
	}
}

// stride1D returns how many tiles to advance per map row: the sprite's
// own width in 1D mapping, or the fixed 32-tile sheet width in 2D.
func stride1D(oneD bool, sheetStride, spriteWidthTiles int) int {
	if oneD {
		return spriteWidthTiles
	}
	return sheetStride
}
