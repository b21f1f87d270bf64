package ppu

// applyBlend resolves BLDCNT/BLDALPHA/BLDY against the already-composited
// top/second candidates for one column (spec.md §4.3). The window's bld
// flag gates whether blending may happen at this pixel at all; alpha mode
// additionally requires the second-place layer to be a declared second
// target, while brighten/darken only look at the top layer.
func (p *PPU) applyBlend(top uint16, topID int, second uint16, secondID int, enabled layerEnableMask) uint16 {
	if !enabled.bld {
		return top
	}
	mode := p.Regs.BlendMode()
	if mode == 0 || !p.Regs.IsFirstTarget(topID) {
		return top
	}
	switch mode {
	case 1:
		if !p.Regs.IsSecondTarget(secondID) {
			return top
		}
		return blendAlpha(top, second, p.Regs.EVA(), p.Regs.EVB())
	case 2:
		return blendChannels(top, func(c int) int { return c + (31-c)*p.Regs.EVY()/16 })
	case 3:
		return blendChannels(top, func(c int) int { return c - c*p.Regs.EVY()/16 })
	default:
		return top
	}
}

// blendAlpha mixes two RGB555 colors channel-by-channel: (top*EVA +
// bottom*EVB) / 16, clamped to [0, 31].
func blendAlpha(top, bottom uint16, eva, evb int) uint16 {
	mix := func(a, b int) int { return clamp31((a*eva + b*evb) / 16) }
	tr, tg, tb := splitRGB555(top)
	br, bg, bb := splitRGB555(bottom)
	return joinRGB555(mix(tr, br), mix(tg, bg), mix(tb, bb))
}

// blendChannels applies f independently to each of a color's three 5-bit
// channels, clamping the result to [0, 31].
func blendChannels(c uint16, f func(int) int) uint16 {
	r, g, b := splitRGB555(c)
	return joinRGB555(clamp31(f(r)), clamp31(f(g)), clamp31(f(b)))
}

func splitRGB555(c uint16) (r, g, b int) {
	return int(c & 0x1F), int((c >> 5) & 0x1F), int((c >> 10) & 0x1F)
}

func joinRGB555(r, g, b int) uint16 {
	return uint16(r&0x1F) | uint16(g&0x1F)<<5 | uint16(b&0x1F)<<10
}

func clamp31(v int) int {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return v
}
