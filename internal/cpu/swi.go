package cpu

import (
	"math"

	"GoBA/util/dbg"
)

// handleSWI implements the BIOS SWI functions high-level-emulation
// style: the effect documented in spec.md §4.9 is simulated directly
// against registers and the bus rather than executing a real BIOS
// image (internal/memory/bios.go never holds executable code, so this
// is the only policy available, and it is applied consistently for
// every comment byte rather than falling through to a real vector).
func (c *CPU) handleSWI(comment uint8) uint32 {
	dbg.Printf("cpu: swi %02X\n", comment)
	switch comment {
	case 0x00: // SoftReset
		for addr := uint32(0x03007F00); addr < 0x03008000; addr++ {
			c.bus.Write8(addr, 0)
		}
		c.registers.SetThumbState(false)
		c.registers.SetMode(SYSMode)
		c.registers.SetPC(0x08000000)
		return 4
	case 0x02, 0x03: // Halt, Stop
		c.Halt()
		return 4
	case 0x04, 0x05: // IntrWait, VBlankIntrWait
		c.Halt()
		return 4
	case 0x06, 0x07: // Div, DivArm
		c.swiDiv(comment == 0x07)
		return 6
	case 0x08: // Sqrt
		value := c.registers.GetReg(0)
		result := uint32(math.Sqrt(float64(value)))
		c.registers.SetReg(0, result)
		return 6
	case 0x09: // ArcTan
		c.swiArcTan()
		return 10
	case 0x0A: // ArcTan2
		c.swiArcTan2()
		return 10
	case 0x0B: // CpuSet
		c.swiCpuSet(false)
		return 2
	case 0x0C: // CpuFastSet
		c.swiCpuSet(true)
		return 2
	case 0x11, 0x12: // LZ77UnComp (0x11 to WRAM, 0x12 to VRAM: same algorithm, byte writes)
		c.swiLZ77UnComp()
		return 4
	case 0x14, 0x15: // RLUnComp
		c.swiRLUnComp()
		return 4
	default:
		return 2
	}
}

// swiDiv implements SWI 0x06/0x07. Div reads (number, denominator) from
// r0, r1; DivArm reads (denominator, number). Zero divisor yields the
// documented sentinel rather than panicking.
func (c *CPU) swiDiv(armOrder bool) {
	a := int32(c.registers.GetReg(0))
	b := int32(c.registers.GetReg(1))
	num, denom := a, b
	if armOrder {
		denom, num = a, b
	}

	if denom == 0 {
		sign := int32(1)
		if num < 0 {
			sign = -1
		}
		c.registers.SetReg(0, uint32(sign*math.MaxInt32))
		c.registers.SetReg(1, uint32(num))
		c.registers.SetReg(3, uint32(math.MaxInt32))
		return
	}

	quotient := num / denom
	remainder := num % denom
	abs := quotient
	if abs < 0 {
		abs = -abs
	}
	c.registers.SetReg(0, uint32(quotient))
	c.registers.SetReg(1, uint32(remainder))
	c.registers.SetReg(3, uint32(abs))
}

// gbaAngle converts a radian angle into the BIOS's 0000h-FFFFh
// representation of 0-2*pi.
func gbaAngle(radians float64) uint32 {
	turns := radians / (2 * math.Pi)
	for turns < 0 {
		turns += 1
	}
	for turns >= 1 {
		turns -= 1
	}
	return uint32(turns*65536) & 0xFFFF
}

func (c *CPU) swiArcTan() {
	x := fixed16_14ToFloat(int32(c.registers.GetReg(0)))
	angle := gbaAngle(math.Atan(x))
	c.registers.SetReg(0, angle)
}

func (c *CPU) swiArcTan2() {
	x := fixed16_14ToFloat(int32(c.registers.GetReg(0)))
	y := fixed16_14ToFloat(int32(c.registers.GetReg(1)))
	angle := gbaAngle(math.Atan2(y, x))
	c.registers.SetReg(0, angle)
}

func fixed16_14ToFloat(v int32) float64 {
	return float64(v) / (1 << 14)
}

// swiCpuSet implements SWI 0x0B/0x0C: copy or fill words/halfwords.
// r0=source, r1=dest, r2=count(0..20)+mode(bit24 fill, bit26 32-bit).
func (c *CPU) swiCpuSet(fast bool) {
	src := c.registers.GetReg(0)
	dst := c.registers.GetReg(1)
	ctrl := c.registers.GetReg(2)

	count := ctrl & 0x1FFFFF
	fill := ctrl&(1<<24) != 0
	width32 := ctrl&(1<<26) != 0 || fast

	unit := uint32(2)
	if width32 {
		unit = 4
	}

	for i := uint32(0); i < count; i++ {
		readAddr := src
		if !fill {
			readAddr = src + i*unit
		}
		if width32 {
			c.bus.Write32(dst+i*unit, c.bus.Read32(readAddr))
		} else {
			c.bus.Write16(dst+i*unit, c.bus.Read16(readAddr))
		}
	}
}

// swiLZ77UnComp implements SWI 0x11/0x12 per spec.md §4.9: a 4-byte
// header {signature, decompressed_size:24}, then a stream of 8-bit
// flag bytes whose bits (MSB first) select a literal byte or a
// {length, displacement} back-reference copy.
func (c *CPU) swiLZ77UnComp() {
	src := c.registers.GetReg(0)
	dst := c.registers.GetReg(1)

	header := c.bus.Read32(src)
	size := header >> 8
	src += 4

	written := uint32(0)
	for written < size {
		flags := c.bus.Read8(src)
		src++
		for bit := 7; bit >= 0 && written < size; bit-- {
			if flags&(1<<bit) == 0 {
				c.bus.Write8(dst+written, c.bus.Read8(src))
				src++
				written++
				continue
			}
			b0 := uint32(c.bus.Read8(src))
			b1 := uint32(c.bus.Read8(src + 1))
			src += 2
			length := (b0 >> 4) + 3
			displacement := ((b0 & 0xF) << 8) | b1
			for n := uint32(0); n < length && written < size; n++ {
				val := c.bus.Read8(dst + written - 1 - displacement)
				c.bus.Write8(dst+written, val)
				written++
			}
		}
	}
}

// swiRLUnComp implements SWI 0x14/0x15: same header as LZ77, then a
// stream of {flag byte, payload} records: flag bit7 set means a
// compressed run (bits6-0 + 3 repeats of the next byte), clear means
// an uncompressed run (bits6-0 + 1 literal bytes follow).
func (c *CPU) swiRLUnComp() {
	src := c.registers.GetReg(0)
	dst := c.registers.GetReg(1)

	header := c.bus.Read32(src)
	size := header >> 8
	src += 4

	written := uint32(0)
	for written < size {
		flag := c.bus.Read8(src)
		src++
		compressed := flag&0x80 != 0
		count := uint32(flag & 0x7F)
		if compressed {
			count += 3
			val := c.bus.Read8(src)
			src++
			for n := uint32(0); n < count && written < size; n++ {
				c.bus.Write8(dst+written, val)
				written++
			}
		} else {
			count += 1
			for n := uint32(0); n < count && written < size; n++ {
				c.bus.Write8(dst+written, c.bus.Read8(src))
				src++
				written++
			}
		}
	}
}
