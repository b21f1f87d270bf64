package ppu

import "image/color"

// layerPixel is one background or sprite's contribution to a single
// screen column before priority/blend compositing.
type layerPixel struct {
	color    uint16
	opaque   bool
	priority int
}

const backdropLayer = 5 // sentinel priority source id for the backdrop color, used by blend target selection

// renderScanline renders one visible line (0-159) into p.Frame.
func (p *PPU) renderScanline(line int) {
	if p.Regs.ForcedBlank() {
		for x := 0; x < ScreenWidth; x++ {
			p.Frame.SetRGBA(x, line, color.RGBA{255, 255, 255, 255})
		}
		return
	}

	var bgLines [4][ScreenWidth]layerPixel
	mode := p.Regs.BGMode()

	switch mode {
	case 0:
		for bg := 0; bg < 4; bg++ {
			if p.Regs.BGEnabled(bg) {
				p.renderTextBG(bg, line, &bgLines[bg])
			}
		}
	case 1:
		if p.Regs.BGEnabled(0) {
			p.renderTextBG(0, line, &bgLines[0])
		}
		if p.Regs.BGEnabled(1) {
			p.renderTextBG(1, line, &bgLines[1])
		}
		if p.Regs.BGEnabled(2) {
			p.renderAffineBG(2, line, &bgLines[2])
		}
	case 2:
		if p.Regs.BGEnabled(2) {
			p.renderAffineBG(2, line, &bgLines[2])
		}
		if p.Regs.BGEnabled(3) {
			p.renderAffineBG(3, line, &bgLines[3])
		}
	case 3:
		if p.Regs.BGEnabled(2) {
			p.renderMode3(line, &bgLines[2])
		}
	case 4:
		if p.Regs.BGEnabled(2) {
			p.renderMode4(line, &bgLines[2])
		}
	case 5:
		if p.Regs.BGEnabled(2) {
			p.renderMode5(line, &bgLines[2])
		}
	}

	var sprites [ScreenWidth]layerPixel
	if p.Regs.OBJEnabled() {
		p.renderSprites(line, &sprites)
	}

	win := p.windowMaskForLine(line)

	backdrop := p.paletteColor16(0)
	order := bgRenderOrder(mode)

	for x := 0; x < ScreenWidth; x++ {
		enabledLayers := win.layerEnable(x)
		top, topID, second, secondID := compositeColumn(x, order, bgLines, sprites, enabledLayers, backdrop)
		final := p.applyBlend(top, topID, second, secondID, enabledLayers)
		p.Frame.SetRGBA(x, line, rgb555ToRGBA(final))
	}
}

// bgRenderOrder returns which background ids participate in a mode, in
// their fixed hardware order; priority among them is still resolved by
// each BGxCNT's priority field, not this order.
func bgRenderOrder(mode int) []int {
	switch mode {
	case 0:
		return []int{0, 1, 2, 3}
	case 1:
		return []int{0, 1, 2}
	case 2:
		return []int{2, 3}
	default:
		return []int{2}
	}
}

// candidate is one layer's opaque pixel competing for a screen column.
type candidate struct {
	color    uint16
	priority int
	id       int // 0-3 = bg, 4 = sprite
}

// above reports whether a should composite on top of b. Equal priority
// is broken by id, except a sprite (id 4) beats a background of equal
// priority (spec.md §4.4: "OBJ beating BG at equal priority").
func (a candidate) above(b candidate) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.id == 4 || b.id == 4 {
		return a.id == 4
	}
	return a.id < b.id
}

// compositeColumn resolves the topmost and second-topmost (for blend
// purposes) pixels at column x across backgrounds, sprites and the
// backdrop, honoring per-layer priority and window enable masks.
func compositeColumn(x int, order []int, bgLines [4][ScreenWidth]layerPixel, sprites [ScreenWidth]layerPixel, enabled layerEnableMask, backdrop uint16) (top uint16, topID int, second uint16, secondID int) {
	var cands []candidate

	if enabled.obj && sprites[x].opaque {
		cands = append(cands, candidate{sprites[x].color, sprites[x].priority, 4})
	}
	for _, bg := range order {
		if !enabled.bg[bg] {
			continue
		}
		px := bgLines[bg][x]
		if px.opaque {
			cands = append(cands, candidate{px.color, px.priority, bg})
		}
	}

	// stable insertion sort by priority (lower wins), sprites win ties
	// against backgrounds of equal priority per hardware behavior.
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].above(cands[j-1]); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}

	top, topID = backdrop, backdropLayer
	second, secondID = backdrop, backdropLayer
	if len(cands) > 0 {
		top, topID = cands[0].color, cands[0].id
	}
	if len(cands) > 1 {
		second, secondID = cands[1].color, cands[1].id
	}
	return
}
