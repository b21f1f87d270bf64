package ppu

import "testing"

func TestBlendAlpha_MixesTwoLayersPerChannel(t *testing.T) {
	top := joinRGB555(31, 0, 0)    // pure red
	bottom := joinRGB555(0, 0, 31) // pure blue
	got := blendAlpha(top, bottom, 8, 8)
	r, g, b := splitRGB555(got)
	if r != 15 || g != 0 || b != 15 {
		t.Fatalf("blendAlpha = (%d,%d,%d), want (15,0,15)", r, g, b)
	}
}

func TestBlendChannels_BrightenAndDarkenClampTo31(t *testing.T) {
	white := joinRGB555(31, 31, 31)
	brightened := blendChannels(white, func(c int) int { return c + (31-c)*16/16 })
	if brightened != white {
		t.Fatalf("brightening white at EVY=16 changed it: %#x", brightened)
	}
	black := uint16(0)
	darkened := blendChannels(joinRGB555(20, 20, 20), func(c int) int { return c - c*16/16 })
	if darkened != black {
		t.Fatalf("darkening at EVY=16 = %#x, want black", darkened)
	}
}

// applyBlend must leave the top color untouched whenever the window's
// blend flag is off, regardless of BLDCNT, since windows gate blending
// before BLDCNT's target bits are even consulted (spec.md §4.3).
func TestApplyBlend_WindowBldDisabledSkipsBlending(t *testing.T) {
	p := newTestPPU()
	p.WriteIORegister8(0x0050, 0x41) // BLDCNT lo: BG0 first target (bit0) + alpha mode (bit6)
	p.WriteIORegister8(0x0051, 0x10) // BLDCNT hi: OBJ second target (bit12 = hi-byte bit4)
	p.WriteIORegister8(0x0052, 0x08) // BLDALPHA EVA=8
	p.WriteIORegister8(0x0053, 0x08) // BLDALPHA EVB=8

	top := joinRGB555(31, 0, 0)
	second := joinRGB555(0, 0, 31)
	disabled := layerEnableMask{bg: [4]bool{true, true, true, true}, obj: true, bld: false}
	if got := p.applyBlend(top, 0, second, 4, disabled); got != top {
		t.Fatalf("applyBlend with bld disabled = %#x, want unchanged top %#x", got, top)
	}

	enabled := allEnabled()
	if got := p.applyBlend(top, 0, second, 4, enabled); got == top {
		t.Fatalf("applyBlend with bld enabled and matching targets left top unchanged")
	}
}
