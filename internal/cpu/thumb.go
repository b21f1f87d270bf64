package cpu

import "GoBA/util/dbg"

// executeThumb decodes and executes one 16-bit THUMB instruction,
// returning its cycle cost. THUMB has no per-instruction condition
// code (only format 16, conditional branch, tests CPSR), so decode and
// execute are combined here rather than split the way ARM's are: the
// formats are short enough that the combined form stays readable.
func (c *CPU) executeThumb(instr uint16) uint32 {
	instrAddr := c.registers.GetPC() - 2

	switch {
	case instr&0xF800 == 0x1800: // format 2: add/subtract
		return c.thumbAddSub(instr)
	case instr&0xE000 == 0x0000: // format 1: move shifted register
		return c.thumbShifted(instr)
	case instr&0xE000 == 0x2000: // format 3: mov/cmp/add/sub immediate
		return c.thumbImmediateOp(instr)
	case instr&0xFC00 == 0x4000: // format 4: ALU operations
		return c.thumbALU(instr)
	case instr&0xFC00 == 0x4400: // format 5: hi register ops / BX
		return c.thumbHiReg(instr)
	case instr&0xF800 == 0x4800: // format 6: PC-relative load
		return c.thumbPCRelLoad(instr, instrAddr)
	case instr&0xF200 == 0x5000: // format 7: load/store register offset
		return c.thumbLoadStoreReg(instr)
	case instr&0xF200 == 0x5200: // format 8: load/store sign-extended
		return c.thumbLoadStoreSignExt(instr)
	case instr&0xE000 == 0x6000: // format 9: load/store immediate offset
		return c.thumbLoadStoreImm(instr)
	case instr&0xF000 == 0x8000: // format 10: load/store halfword
		return c.thumbLoadStoreHalf(instr)
	case instr&0xF000 == 0x9000: // format 11: SP-relative load/store
		return c.thumbSPRelLoadStore(instr)
	case instr&0xF000 == 0xA000: // format 12: load address
		return c.thumbLoadAddress(instr, instrAddr)
	case instr&0xFF00 == 0xB000: // format 13: add offset to SP
		return c.thumbAddSP(instr)
	case instr&0xF600 == 0xB400: // format 14: push/pop
		return c.thumbPushPop(instr)
	case instr&0xFF00 == 0xDF00: // format 17: software interrupt
		return c.handleSWI(uint8(instr & 0xFF))
	case instr&0xF000 == 0xD000: // format 16: conditional branch
		return c.thumbCondBranch(instr, instrAddr)
	case instr&0xF800 == 0xE000: // format 18: unconditional branch
		return c.thumbBranch(instr, instrAddr)
	case instr&0xF000 == 0xC000: // format 15: multiple load/store
		return c.thumbMultipleLoadStore(instr)
	case instr&0xF000 == 0xF000: // format 19: long branch with link
		return c.thumbLongBranchLink(instr, instrAddr)
	default:
		return 1
	}
}

// --- Format 1: move shifted register ---

func (c *CPU) thumbShifted(instr uint16) uint32 {
	op := (instr >> 11) & 0x3
	offset := uint8((instr >> 6) & 0x1F)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	value := c.registers.GetReg(rs)
	var result uint32
	var carryOut bool
	switch op {
	case 0:
		result, carryOut = c.resolveImmediateShift(value, LSL, offset)
	case 1:
		result, carryOut = c.resolveImmediateShift(value, LSR, offset)
	case 2:
		result, carryOut = c.resolveImmediateShift(value, ASR, offset)
	default:
		result, carryOut = value, c.registers.GetFlagC()
	}
	c.registers.SetReg(rd, result)
	c.setLogicalFlags(result, carryOut)
	return 1
}

// --- Format 2: add/subtract ---

func (c *CPU) thumbAddSub(instr uint16) uint32 {
	immediate := (instr>>10)&0x1 != 0
	sub := (instr>>9)&0x1 != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	a := c.registers.GetReg(rs)
	var b uint32
	if immediate {
		b = rnOrImm
	} else {
		b = c.registers.GetReg(uint8(rnOrImm))
	}

	var result uint32
	var carryOut, overflow bool
	if sub {
		result = a - b
		carryOut = a >= b
		overflow = checkSubOverflow(a, b, result)
	} else {
		result = a + b
		carryOut = result < a
		overflow = checkAddOverflow(a, b, result)
	}
	c.registers.SetReg(rd, result)
	c.setFlags(result, carryOut, overflow)
	return 1
}

// --- Format 3: move/compare/add/subtract immediate ---

func (c *CPU) thumbImmediateOp(instr uint16) uint32 {
	op := (instr >> 11) & 0x3
	rd := uint8((instr >> 8) & 0x7)
	imm := uint32(instr & 0xFF)

	rn := c.registers.GetReg(rd)
	switch op {
	case 0: // MOV
		c.registers.SetReg(rd, imm)
		c.setLogicalFlags(imm, c.registers.GetFlagC())
	case 1: // CMP
		result := rn - imm
		c.setFlags(result, rn >= imm, checkSubOverflow(rn, imm, result))
	case 2: // ADD
		result := rn + imm
		c.registers.SetReg(rd, result)
		c.setFlags(result, result < rn, checkAddOverflow(rn, imm, result))
	case 3: // SUB
		result := rn - imm
		c.registers.SetReg(rd, result)
		c.setFlags(result, rn >= imm, checkSubOverflow(rn, imm, result))
	}
	return 1
}

// --- Format 4: ALU operations ---

func (c *CPU) thumbALU(instr uint16) uint32 {
	op := (instr >> 6) & 0xF
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	rdVal := c.registers.GetReg(rd)
	rsVal := c.registers.GetReg(rs)
	cycles := uint32(1)

	switch op {
	case 0x0: // AND
		result := rdVal & rsVal
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, c.registers.GetFlagC())
	case 0x1: // EOR
		result := rdVal ^ rsVal
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, c.registers.GetFlagC())
	case 0x2: // LSL
		result, carry := c.resolveImmediateShift(rdVal, LSL, uint8(rsVal&0xFF))
		if rsVal&0xFF == 0 {
			result, carry = rdVal, c.registers.GetFlagC()
		}
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 0x3: // LSR
		result, carry := c.thumbShiftByRegister(rdVal, LSR, rsVal)
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 0x4: // ASR
		result, carry := c.thumbShiftByRegister(rdVal, ASR, rsVal)
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 0x5: // ADC
		carryIn := uint32(0)
		if c.registers.GetFlagC() {
			carryIn = 1
		}
		wide := uint64(rdVal) + uint64(rsVal) + uint64(carryIn)
		result := uint32(wide)
		c.registers.SetReg(rd, result)
		c.setFlags(result, wide > 0xFFFFFFFF, checkAddOverflow(rdVal, rsVal, result))
	case 0x6: // SBC
		carryIn := uint32(1)
		if !c.registers.GetFlagC() {
			carryIn = 0
		}
		wide := uint64(rdVal) - uint64(rsVal) - uint64(1-carryIn)
		result := uint32(wide)
		c.registers.SetReg(rd, result)
		c.setFlags(result, uint64(rdVal) >= uint64(rsVal)+uint64(1-carryIn), checkSubOverflow(rdVal, rsVal, result))
	case 0x7: // ROR
		result, carry := c.thumbShiftByRegister(rdVal, ROR, rsVal)
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 0x8: // TST
		result := rdVal & rsVal
		c.setLogicalFlags(result, c.registers.GetFlagC())
	case 0x9: // NEG
		result := uint32(0) - rsVal
		c.registers.SetReg(rd, result)
		c.setFlags(result, rsVal == 0, checkSubOverflow(0, rsVal, result))
	case 0xA: // CMP
		result := rdVal - rsVal
		c.setFlags(result, rdVal >= rsVal, checkSubOverflow(rdVal, rsVal, result))
	case 0xB: // CMN
		result := rdVal + rsVal
		c.setFlags(result, result < rdVal, checkAddOverflow(rdVal, rsVal, result))
	case 0xC: // ORR
		result := rdVal | rsVal
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, c.registers.GetFlagC())
	case 0xD: // MUL
		result := rdVal * rsVal
		c.registers.SetReg(rd, result)
		c.registers.SetFlagN(result&0x80000000 != 0)
		c.registers.SetFlagZ(result == 0)
		cycles = 2
	case 0xE: // BIC
		result := rdVal &^ rsVal
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, c.registers.GetFlagC())
	case 0xF: // MVN
		result := ^rsVal
		c.registers.SetReg(rd, result)
		c.setLogicalFlags(result, c.registers.GetFlagC())
	}
	return cycles
}

// thumbShiftByRegister applies LSR/ASR/ROR where the shift amount comes
// from a full register's low byte, per Thumb ALU op semantics (0
// leaves the value/flags unchanged, >=32 hits the same boundary cases
// as the ARM register-shift path).
func (c *CPU) thumbShiftByRegister(value uint32, shiftType ARMShiftType, amountReg uint32) (uint32, bool) {
	amount := amountReg & 0xFF
	if amount == 0 {
		return value, c.registers.GetFlagC()
	}
	if amount >= 32 {
		return shiftByRegisterOverflow(value, shiftType, amount)
	}
	return applyShift(value, shiftType, amount), shiftCarryOut(value, shiftType, amount)
}

// --- Format 5: hi register operations / branch exchange ---

func (c *CPU) thumbHiReg(instr uint16) uint32 {
	op := (instr >> 8) & 0x3
	h1 := (instr>>7)&0x1 != 0
	h2 := (instr>>6)&0x1 != 0
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)
	if h2 {
		rs += 8
	}
	if h1 {
		rd += 8
	}

	switch op {
	case 0: // ADD
		result := c.readOperandReg(rd) + c.readOperandReg(rs)
		c.registers.SetReg(rd, result)
		if rd == 15 {
			c.registers.SetPC(result &^ uint32(1))
		}
		return 1
	case 1: // CMP
		rdVal := c.readOperandReg(rd)
		rsVal := c.readOperandReg(rs)
		result := rdVal - rsVal
		c.setFlags(result, rdVal >= rsVal, checkSubOverflow(rdVal, rsVal, result))
		return 1
	case 2: // MOV
		result := c.readOperandReg(rs)
		c.registers.SetReg(rd, result)
		if rd == 15 {
			c.registers.SetPC(result &^ uint32(1))
		}
		return 1
	default: // BX / BLX(reg, not present pre-v5, treat as BX)
		target := c.readOperandReg(rs)
		if target&0x1 != 0 {
			c.registers.SetThumbState(true)
			c.registers.SetPC(target &^ uint32(1))
		} else {
			c.registers.SetThumbState(false)
			c.registers.SetPC(target &^ uint32(3))
		}
		return 3
	}
}

// --- Format 6: PC-relative load ---

func (c *CPU) thumbPCRelLoad(instr uint16, instrAddr uint32) uint32 {
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) * 4
	base := (instrAddr + 4) &^ uint32(3)
	value := c.bus.Read32(base + word)
	c.registers.SetReg(rd, value)
	return 3
}

// --- Format 7: load/store with register offset ---

func (c *CPU) thumbLoadStoreReg(instr uint16) uint32 {
	l := (instr>>11)&0x1 != 0
	b := (instr>>10)&0x1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + c.registers.GetReg(ro)
	if l {
		var value uint32
		if b {
			value = uint32(c.bus.Read8(addr))
		} else {
			value = c.bus.Read32(addr &^ uint32(3))
		}
		c.registers.SetReg(rd, value)
	} else {
		value := c.registers.GetReg(rd)
		if b {
			c.bus.Write8(addr, uint8(value))
		} else {
			c.bus.Write32(addr&^uint32(3), value)
		}
	}
	return 1
}

// --- Format 8: load/store sign-extended byte/halfword ---

func (c *CPU) thumbLoadStoreSignExt(instr uint16) uint32 {
	h := (instr>>11)&0x1 != 0
	s := (instr>>10)&0x1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + c.registers.GetReg(ro)
	switch {
	case !s && !h: // STRH
		c.bus.Write16(addr&^uint32(1), uint16(c.registers.GetReg(rd)))
	case !s && h: // LDRH
		c.registers.SetReg(rd, uint32(c.bus.Read16(addr&^uint32(1))))
	case s && !h: // LDSB
		value := int32(int8(c.bus.Read8(addr)))
		c.registers.SetReg(rd, uint32(value))
	default: // LDSH
		value := int32(int16(c.bus.Read16(addr &^ uint32(1))))
		c.registers.SetReg(rd, uint32(value))
	}
	return 1
}

// --- Format 9: load/store with immediate offset ---

func (c *CPU) thumbLoadStoreImm(instr uint16) uint32 {
	b := (instr>>12)&0x1 != 0
	l := (instr>>11)&0x1 != 0
	offset := uint32((instr >> 6) & 0x1F)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	var addr uint32
	if b {
		addr = c.registers.GetReg(rb) + offset
	} else {
		addr = c.registers.GetReg(rb) + offset*4
	}

	if l {
		var value uint32
		if b {
			value = uint32(c.bus.Read8(addr))
		} else {
			value = c.bus.Read32(addr &^ uint32(3))
		}
		c.registers.SetReg(rd, value)
	} else {
		value := c.registers.GetReg(rd)
		if b {
			c.bus.Write8(addr, uint8(value))
		} else {
			c.bus.Write32(addr&^uint32(3), value)
		}
	}
	return 1
}

// --- Format 10: load/store halfword ---

func (c *CPU) thumbLoadStoreHalf(instr uint16) uint32 {
	l := (instr>>11)&0x1 != 0
	offset := uint32((instr>>6)&0x1F) * 2
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + offset
	if l {
		c.registers.SetReg(rd, uint32(c.bus.Read16(addr&^uint32(1))))
	} else {
		c.bus.Write16(addr&^uint32(1), uint16(c.registers.GetReg(rd)))
	}
	return 1
}

// --- Format 11: SP-relative load/store ---

func (c *CPU) thumbSPRelLoadStore(instr uint16) uint32 {
	l := (instr>>11)&0x1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) * 4

	addr := c.registers.GetReg(13) + word
	if l {
		c.registers.SetReg(rd, c.bus.Read32(addr&^uint32(3)))
	} else {
		c.bus.Write32(addr&^uint32(3), c.registers.GetReg(rd))
	}
	return 1
}

// --- Format 12: load address ---

func (c *CPU) thumbLoadAddress(instr uint16, instrAddr uint32) uint32 {
	sp := (instr>>11)&0x1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) * 4

	var base uint32
	if sp {
		base = c.registers.GetReg(13)
	} else {
		base = (instrAddr + 4) &^ uint32(3)
	}
	c.registers.SetReg(rd, base+word)
	return 1
}

// --- Format 13: add offset to SP ---

func (c *CPU) thumbAddSP(instr uint16) uint32 {
	negative := (instr>>7)&0x1 != 0
	offset := uint32(instr&0x7F) * 4
	sp := c.registers.GetReg(13)
	if negative {
		c.registers.SetReg(13, sp-offset)
	} else {
		c.registers.SetReg(13, sp+offset)
	}
	return 1
}

// --- Format 14: push/pop ---

func (c *CPU) thumbPushPop(instr uint16) uint32 {
	pop := (instr>>11)&0x1 != 0
	includePCorLR := (instr>>8)&0x1 != 0
	rlist := uint8(instr & 0xFF)

	count := 0
	for i := 0; i < 8; i++ {
		if rlist&(1<<i) != 0 {
			count++
		}
	}
	if includePCorLR {
		count++
	}

	sp := c.registers.GetReg(13)
	if pop {
		addr := sp
		for i := 0; i < 8; i++ {
			if rlist&(1<<i) != 0 {
				c.registers.SetReg(uint8(i), c.bus.Read32(addr))
				addr += 4
			}
		}
		if includePCorLR {
			value := c.bus.Read32(addr)
			addr += 4
			if value&0x1 != 0 {
				c.registers.SetThumbState(true)
				c.registers.SetPC(value &^ uint32(1))
			} else {
				c.registers.SetThumbState(false)
				c.registers.SetPC(value &^ uint32(3))
			}
		}
		c.registers.SetReg(13, addr)
	} else {
		addr := sp - uint32(count)*4
		c.registers.SetReg(13, addr)
		for i := 0; i < 8; i++ {
			if rlist&(1<<i) != 0 {
				c.bus.Write32(addr, c.registers.GetReg(uint8(i)))
				addr += 4
			}
		}
		if includePCorLR {
			c.bus.Write32(addr, c.registers.GetReg(14))
		}
	}
	return uint32(1 + count)
}

// --- Format 15: multiple load/store ---

func (c *CPU) thumbMultipleLoadStore(instr uint16) uint32 {
	l := (instr>>11)&0x1 != 0
	rb := uint8((instr >> 8) & 0x7)
	rlist := uint8(instr & 0xFF)

	addr := c.registers.GetReg(rb)
	count := 0
	for i := 0; i < 8; i++ {
		if rlist&(1<<i) == 0 {
			continue
		}
		count++
		if l {
			c.registers.SetReg(uint8(i), c.bus.Read32(addr))
		} else {
			c.bus.Write32(addr, c.registers.GetReg(uint8(i)))
		}
		addr += 4
	}
	c.registers.SetReg(rb, addr)
	return uint32(1 + count)
}

// --- Format 16: conditional branch ---

func (c *CPU) thumbCondBranch(instr uint16, instrAddr uint32) uint32 {
	cond := uint32((instr >> 8) & 0xF)
	if !c.checkCondition_Arm(cond) {
		return 1
	}
	offset := int32(int8(instr & 0xFF)) * 2
	target := uint32(int32(instrAddr+2) + offset)
	c.registers.SetPC(target)
	dbg.Printf("cpu: thumb cond branch -> %08X\n", target)
	return 3
}

// --- Format 18: unconditional branch ---

func (c *CPU) thumbBranch(instr uint16, instrAddr uint32) uint32 {
	offset := int32(instr&0x7FF) << 1
	if instr&0x0400 != 0 {
		offset |= ^int32(0xFFF) // sign-extend 12-bit
	}
	target := uint32(int32(instrAddr+2) + offset)
	c.registers.SetPC(target)
	return 3
}

// --- Format 19: long branch with link ---

// thumbLongBranchLink handles both halves of BL. The first half (H=0)
// stashes a PC-relative high offset in LR; the second half (H=1)
// computes the final target from LR+low offset and sets LR to the
// THUMB return address with its low bit set.
func (c *CPU) thumbLongBranchLink(instr uint16, instrAddr uint32) uint32 {
	high := (instr>>11)&0x1 != 0
	offset := uint32(instr & 0x7FF)

	if !high {
		signExtended := int32(offset << 21) >> 9 // sign-extend 11-bit into bits 22..12
		lr := uint32(int32(instrAddr+4) + signExtended)
		c.registers.SetReg(14, lr)
		return 1
	}

	lr := c.registers.GetReg(14)
	target := lr + (offset << 1)
	nextInstr := instrAddr + 2
	c.registers.SetReg(14, nextInstr|0x1)
	c.registers.SetPC(target)
	return 3
}
