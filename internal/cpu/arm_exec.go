package cpu

import (
	"GoBA/util/dbg"
)

// executeArm dispatches a single decoded ARM instruction word and
// returns its cycle cost. The condition code is checked here first; a
// failed condition retires the instruction as 1 cycle without decoding.
func (c *CPU) executeArm(instruction uint32) uint32 {
	cond := (instruction >> 28) & 0xF
	if !c.checkCondition_Arm(cond) {
		return 1
	}

	instrAddr := c.registers.GetPC() - 4
	decoded := DecodeInstruction_Arm(instruction)
	dbg.Printf("cpu: arm %08X @ %08X\n", instruction, instrAddr)

	switch inst := decoded.(type) {
	case ARMDataProcessingInstruction:
		return c.execDataProcessing(inst)
	case ARMLoadStoreInstruction:
		return c.execArm_LoadStore(inst, instrAddr)
	case ARMBranchInstruction:
		return c.execArm_Branch(inst, instrAddr)
	case ARMBranchExchangeInstruction:
		return c.execArm_Bx(inst)
	case ARMBlockDataTransferInstruction:
		return c.execArm_BlockDataTransfer(inst, instrAddr)
	case ARMMultiplyInstruction:
		return c.execArm_Multiply(inst)
	case ARMSWIInstruction:
		return c.execArm_SWI(inst)
	case ARMSwapInstruction:
		return c.execArm_Swap(inst)
	case ARMPSRTransferInstruction:
		return c.execArm_PSRTransfer(inst)
	case ARMHalfwordTransferInstruction:
		return c.execArm_HalfwordTransfer(inst, instrAddr)
	case ARMUndefinedInstruction:
		return 1
	default:
		return 1
	}
}

func (c *CPU) checkCondition_Arm(cond uint32) bool {
	n := c.registers.GetFlagN()
	z := c.registers.GetFlagZ()
	carry := c.registers.GetFlagC()
	v := c.registers.GetFlagV()

	switch ARMCondition(cond) {
	case EQ:
		return z
	case NE:
		return !z
	case CS:
		return carry
	case CC:
		return !carry
	case MI:
		return n
	case PL:
		return !n
	case VS:
		return v
	case VC:
		return !v
	case HI:
		return carry && !z
	case LS:
		return !carry || z
	case GE:
		return n == v
	case LT:
		return n != v
	case GT:
		return !z && (n == v)
	case LE:
		return z || (n != v)
	case AL:
		return true
	case NV:
		return false
	default:
		return false
	}
}

// ##################################################
// ARM Data Processing Instructions
// ##################################################

// execDataProcessing dispatches one of the 16 data-processing opcodes.
func (c *CPU) execDataProcessing(inst ARMDataProcessingInstruction) uint32 {
	op2, shiftCarry := c.calcOp2(inst)
	rn := c.readOperandReg(inst.Rn)

	switch inst.Opcode {
	case AND:
		result := rn & op2
		c.finishLogical(inst, result, shiftCarry)
	case EOR:
		result := rn ^ op2
		c.finishLogical(inst, result, shiftCarry)
	case SUB:
		result := rn - op2
		c.finishArithmetic(inst, result, rn >= op2, checkSubOverflow(rn, op2, result))
	case RSB:
		result := op2 - rn
		c.finishArithmetic(inst, result, op2 >= rn, checkSubOverflow(op2, rn, result))
	case ADD:
		result := rn + op2
		c.finishArithmetic(inst, result, result < rn, checkAddOverflow(rn, op2, result))
	case ADC:
		carryIn := uint32(0)
		if c.registers.GetFlagC() {
			carryIn = 1
		}
		wide := uint64(rn) + uint64(op2) + uint64(carryIn)
		result := uint32(wide)
		c.finishArithmetic(inst, result, wide > 0xFFFFFFFF, checkAddOverflow(rn, op2, result))
	case SBC:
		carryIn := uint32(1)
		if !c.registers.GetFlagC() {
			carryIn = 0
		}
		wide := uint64(rn) - uint64(op2) - uint64(1-carryIn)
		result := uint32(wide)
		carryOut := uint64(rn) >= uint64(op2)+uint64(1-carryIn)
		c.finishArithmetic(inst, result, carryOut, checkSubOverflow(rn, op2, result))
	case RSC:
		carryIn := uint32(1)
		if !c.registers.GetFlagC() {
			carryIn = 0
		}
		wide := uint64(op2) - uint64(rn) - uint64(1-carryIn)
		result := uint32(wide)
		carryOut := uint64(op2) >= uint64(rn)+uint64(1-carryIn)
		c.finishArithmetic(inst, result, carryOut, checkSubOverflow(op2, rn, result))
	case TST:
		result := rn & op2
		c.setLogicalFlags(result, shiftCarry)
	case TEQ:
		result := rn ^ op2
		c.setLogicalFlags(result, shiftCarry)
	case CMP:
		result := rn - op2
		c.setFlags(result, rn >= op2, checkSubOverflow(rn, op2, result))
	case CMN:
		result := rn + op2
		c.setFlags(result, result < rn, checkAddOverflow(rn, op2, result))
	case ORR:
		result := rn | op2
		c.finishLogical(inst, result, shiftCarry)
	case MOV:
		c.finishLogical(inst, op2, shiftCarry)
	case BIC:
		result := rn &^ op2
		c.finishLogical(inst, result, shiftCarry)
	case MVN:
		c.finishLogical(inst, ^op2, shiftCarry)
	}

	if inst.Rd == 15 {
		return 3
	}
	return 1
}

// finishLogical writes the result of a logical opcode (AND/EOR/ORR/MOV/
// BIC/MVN) to Rd, setting NZC from the shifter's carry-out when S=1.
func (c *CPU) finishLogical(inst ARMDataProcessingInstruction, result uint32, carryOut bool) {
	if inst.Rd == 15 {
		c.registers.SetPC(result &^ uint32(3))
		if inst.S {
			c.registers.SetCPSR(c.registers.GetSPSR())
		}
		return
	}
	c.registers.SetReg(inst.Rd, result)
	if inst.S {
		c.setLogicalFlags(result, carryOut)
	}
}

// finishArithmetic writes the result of an arithmetic opcode (ADD/ADC/
// SUB/SBC/RSB/RSC) to Rd, setting NZCV from the real carry/overflow
// when S=1.
func (c *CPU) finishArithmetic(inst ARMDataProcessingInstruction, result uint32, carryOut, overflow bool) {
	if inst.Rd == 15 {
		c.registers.SetPC(result &^ uint32(3))
		if inst.S {
			c.registers.SetCPSR(c.registers.GetSPSR())
		}
		return
	}
	c.registers.SetReg(inst.Rd, result)
	if inst.S {
		c.setFlags(result, carryOut, overflow)
	}
}

// calcOp2 resolves a data-processing instruction's operand2 through the
// barrel shifter, returning the shifted value and its carry-out.
func (c *CPU) calcOp2(instruction ARMDataProcessingInstruction) (uint32, bool) {
	if instruction.I {
		rotate := uint32(instruction.Is) * 2
		imm := uint32(instruction.Nn)
		if rotate == 0 {
			return imm, c.registers.GetFlagC()
		}
		result := applyShift(imm, ROR, rotate)
		return result, result&0x80000000 != 0
	}

	rm := c.readOperandReg(instruction.Rm)

	if instruction.R {
		shiftAmount := c.registers.GetReg(instruction.Rs) & 0xFF
		if shiftAmount == 0 {
			return rm, c.registers.GetFlagC()
		}
		if shiftAmount >= 32 {
			return shiftByRegisterOverflow(rm, instruction.ShiftType, shiftAmount)
		}
		return applyShift(rm, instruction.ShiftType, shiftAmount), shiftCarryOut(rm, instruction.ShiftType, shiftAmount)
	}

	return c.resolveImmediateShift(rm, instruction.ShiftType, instruction.Is)
}

// resolveImmediateShift applies a barrel-shifter operation whose amount
// is a 5-bit immediate, implementing the ARM special cases for an
// encoded amount of 0: LSL#0 is the identity (C unchanged), LSR#0 and
// ASR#0 mean "shift by 32", and ROR#0 means RRX (rotate right through
// carry by one bit). Property 7 of spec.md §8 covers the LSL#0 case.
func (c *CPU) resolveImmediateShift(value uint32, shiftType ARMShiftType, amount uint8) (uint32, bool) {
	if amount == 0 {
		switch shiftType {
		case LSL:
			return value, c.registers.GetFlagC()
		case LSR:
			return 0, value&0x80000000 != 0
		case ASR:
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		case ROR:
			carryIn := uint32(0)
			if c.registers.GetFlagC() {
				carryIn = 1
			}
			return (carryIn << 31) | (value >> 1), value&0x1 != 0
		}
	}
	return applyShift(value, shiftType, uint32(amount)), shiftCarryOut(value, shiftType, uint32(amount))
}

// shiftCarryOut is the barrel shifter's carry-out for a shift amount in
// [1, 32], given the pre-shift value.
func shiftCarryOut(value uint32, shiftType ARMShiftType, amount uint32) bool {
	switch shiftType {
	case LSL:
		if amount > 32 {
			return false
		}
		if amount == 32 {
			return value&0x1 != 0
		}
		return value&(1<<(32-amount)) != 0
	case LSR:
		if amount > 32 {
			return false
		}
		if amount == 32 {
			return value&0x80000000 != 0
		}
		return value&(1<<(amount-1)) != 0
	case ASR:
		if amount >= 32 {
			return value&0x80000000 != 0
		}
		return value&(1<<(amount-1)) != 0
	case ROR:
		amt := amount % 32
		if amt == 0 {
			return value&0x80000000 != 0
		}
		return value&(1<<(amt-1)) != 0
	}
	return false
}

// shiftByRegisterOverflow handles register-specified shift amounts of
// 32 or more, which the plain applyShift/shiftCarryOut pair can't
// express directly in Go (shifting a uint32 by >=32 is well-defined in
// Go but not what the ARM barrel shifter documents).
func shiftByRegisterOverflow(value uint32, shiftType ARMShiftType, amount uint32) (uint32, bool) {
	switch shiftType {
	case LSL:
		if amount == 32 {
			return 0, value&0x1 != 0
		}
		return 0, false
	case LSR:
		if amount == 32 {
			return 0, value&0x80000000 != 0
		}
		return 0, false
	case ASR:
		if value&0x80000000 != 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false
	case ROR:
		amt := amount % 32
		if amt == 0 {
			return value, value&0x80000000 != 0
		}
		return applyShift(value, ROR, amt), value&(1<<(amt-1)) != 0
	}
	return 0, false
}

// ##################################################
// ARM Multiply Instructions
// ##################################################

// execArm_Multiply implements MUL/MLA. Per spec.md §4.1, C is left
// architecturally unspecified and V is untouched; only NZ react to S.
func (c *CPU) execArm_Multiply(inst ARMMultiplyInstruction) uint32 {
	rm := c.registers.GetReg(inst.Rm)
	rs := c.registers.GetReg(inst.Rs)
	result := rm * rs
	if inst.A {
		result += c.registers.GetReg(inst.Rn)
	}
	c.registers.SetReg(inst.Rd, result)
	if inst.S {
		c.registers.SetFlagN(result&0x80000000 != 0)
		c.registers.SetFlagZ(result == 0)
	}
	dbg.Printf("cpu: mul r%d = r%d*r%d (acc=%t) = %08X\n", inst.Rd, inst.Rm, inst.Rs, inst.A, result)
	return 2
}

// #############################
// ARM Branch Instructions
// #############################

// execArm_Branch executes B/BL. instrAddr is the address of the branch
// instruction itself; PC has already been fetch-advanced to instrAddr+4
// by the time the offset is applied (spec.md §8 S3).
func (c *CPU) execArm_Branch(inst ARMBranchInstruction, instrAddr uint32) uint32 {
	if inst.Link {
		c.registers.SetReg(14, instrAddr+4)
	}
	target := instrAddr + 4 + inst.TargetAddr
	c.registers.SetPC(target)
	dbg.Printf("cpu: branch -> %08X (link=%t)\n", target, inst.Link)
	return 3
}

// execArm_Bx executes BX: branch to Rm, switching to THUMB state when
// its low bit is set.
func (c *CPU) execArm_Bx(inst ARMBranchExchangeInstruction) uint32 {
	target := c.registers.GetReg(inst.Rm)
	if target&0x1 != 0 {
		c.registers.SetThumbState(true)
		c.registers.SetPC(target &^ uint32(1))
	} else {
		c.registers.SetThumbState(false)
		c.registers.SetPC(target &^ uint32(3))
	}
	dbg.Printf("cpu: bx r%d -> %08X (thumb=%t)\n", inst.Rm, c.registers.GetPC(), c.registers.IsThumb())
	return 3
}

// #############################
// ARM Load/Store Instructions
// #############################

// execArm_LoadStore executes LDR/STR with either immediate or shifted
// register offset addressing.
func (c *CPU) execArm_LoadStore(inst ARMLoadStoreInstruction, instrAddr uint32) uint32 {
	baseAddr := c.readOperandReg(inst.Rn)

	var offset uint32
	if inst.I {
		rm := c.readOperandReg(inst.Rm)
		offset, _ = c.resolveImmediateShift(rm, inst.ShiftType, inst.ShiftAmt)
	} else {
		offset = inst.Offset
	}

	var transferAddr uint32
	if inst.U {
		transferAddr = baseAddr + offset
	} else {
		transferAddr = baseAddr - offset
	}

	var finalAddr uint32
	if inst.P {
		finalAddr = transferAddr
	} else {
		finalAddr = baseAddr
	}

	if inst.L {
		var loadedValue uint32
		if inst.B {
			loadedValue = uint32(c.bus.Read8(finalAddr))
		} else {
			loadedValue = c.bus.Read32(finalAddr &^ uint32(3))
			rotateBits := (finalAddr & 0x3) * 8
			if rotateBits != 0 {
				loadedValue = applyShift(loadedValue, ROR, rotateBits)
			}
		}

		if inst.Rd == 15 {
			if loadedValue&0x1 != 0 {
				c.registers.SetThumbState(true)
				c.registers.SetPC(loadedValue &^ uint32(1))
			} else {
				c.registers.SetThumbState(false)
				c.registers.SetPC(loadedValue &^ uint32(3))
			}
		} else {
			c.registers.SetReg(inst.Rd, loadedValue)
		}
		dbg.Printf("cpu: ldr%s r%d, [%08X] = %08X\n", byteSuffix(inst.B), inst.Rd, finalAddr, loadedValue)
	} else {
		valueToStore := c.registers.GetReg(inst.Rd)
		if inst.Rd == 15 {
			valueToStore = instrAddr + 12
		}
		if inst.B {
			c.bus.Write8(finalAddr, uint8(valueToStore))
		} else {
			c.bus.Write32(finalAddr&^uint32(3), valueToStore)
		}
		dbg.Printf("cpu: str%s r%d, [%08X] = %08X\n", byteSuffix(inst.B), inst.Rd, finalAddr, valueToStore)
	}

	if inst.W || !inst.P {
		c.registers.SetReg(inst.Rn, transferAddr)
	}

	if inst.Rd == 15 && inst.L {
		return 3
	}
	return 1
}

// execArm_Swap implements SWP/SWPB: an atomic read of [Rn] into Rd
// followed by a write of Rm to [Rn]. The core is single-threaded per
// spec.md §5, so "atomic" falls out for free from ordering.
func (c *CPU) execArm_Swap(inst ARMSwapInstruction) uint32 {
	addr := c.registers.GetReg(inst.Rn)
	if inst.B {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, uint8(c.registers.GetReg(inst.Rm)))
		c.registers.SetReg(inst.Rd, uint32(old))
	} else {
		aligned := addr &^ uint32(3)
		old := c.bus.Read32(aligned)
		if rotateBits := (addr & 0x3) * 8; rotateBits != 0 {
			old = applyShift(old, ROR, rotateBits)
		}
		c.bus.Write32(aligned, c.registers.GetReg(inst.Rm))
		c.registers.SetReg(inst.Rd, old)
	}
	dbg.Printf("cpu: swp%s r%d, r%d, [r%d]\n", byteSuffix(inst.B), inst.Rd, inst.Rm, inst.Rn)
	return 4
}

// execArm_PSRTransfer implements MRS (PSR -> register) and MSR
// (register/immediate -> PSR), honoring the field mask that selects
// which of the four PSR bytes (flags/status/extension/control) the
// write touches, and restricting User mode to the flags byte only.
func (c *CPU) execArm_PSRTransfer(inst ARMPSRTransferInstruction) uint32 {
	if inst.ToReg {
		if inst.SPSR {
			c.registers.SetReg(inst.Rd, c.registers.GetSPSR())
		} else {
			c.registers.SetReg(inst.Rd, c.registers.GetCPSR())
		}
		return 1
	}

	var operand uint32
	if inst.I {
		operand = inst.Imm
	} else {
		operand = c.registers.GetReg(inst.Rm)
	}

	fieldMask := inst.FieldMask
	if !inst.SPSR && c.registers.GetMode() == USRMode {
		fieldMask &= 0x8 // User mode may only write the flags field.
	}

	var mask uint32
	if fieldMask&0x1 != 0 {
		mask |= 0x000000FF // control
	}
	if fieldMask&0x2 != 0 {
		mask |= 0x0000FF00 // extension
	}
	if fieldMask&0x4 != 0 {
		mask |= 0x00FF0000 // status
	}
	if fieldMask&0x8 != 0 {
		mask |= 0xFF000000 // flags
	}

	if inst.SPSR {
		current := c.registers.GetSPSR()
		c.registers.SetSPSR((current &^ mask) | (operand & mask))
	} else {
		current := c.registers.GetCPSR()
		c.registers.SetCPSR((current &^ mask) | (operand & mask))
	}
	dbg.Printf("cpu: msr %s_<mode>, mask=%X val=%08X\n", psrName(inst.SPSR), mask, operand)
	return 1
}

func psrName(spsr bool) string {
	if spsr {
		return "SPSR"
	}
	return "CPSR"
}

// execArm_HalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH, the
// halfword and signed-byte/halfword single data transfer encoding
// (spec.md SUPPLEMENTED FEATURES).
func (c *CPU) execArm_HalfwordTransfer(inst ARMHalfwordTransferInstruction, instrAddr uint32) uint32 {
	baseAddr := c.readOperandReg(inst.Rn)

	var offset uint32
	if inst.I {
		offset = uint32(inst.Offset)
	} else {
		offset = c.readOperandReg(inst.Rm)
	}

	var transferAddr uint32
	if inst.U {
		transferAddr = baseAddr + offset
	} else {
		transferAddr = baseAddr - offset
	}

	var finalAddr uint32
	if inst.P {
		finalAddr = transferAddr
	} else {
		finalAddr = baseAddr
	}

	if inst.L {
		var value uint32
		switch {
		case inst.S && inst.H: // LDRSH
			half := c.bus.Read16(finalAddr &^ uint32(1))
			value = uint32(int32(int16(half)))
		case inst.S && !inst.H: // LDRSB
			value = uint32(int32(int8(c.bus.Read8(finalAddr))))
		default: // LDRH
			value = uint32(c.bus.Read16(finalAddr &^ uint32(1)))
		}
		if inst.Rd == 15 {
			c.registers.SetPC(value &^ uint32(1))
		} else {
			c.registers.SetReg(inst.Rd, value)
		}
		dbg.Printf("cpu: ldrh/sb/sh r%d, [%08X] = %08X\n", inst.Rd, finalAddr, value)
	} else {
		value := c.registers.GetReg(inst.Rd)
		if inst.Rd == 15 {
			value = instrAddr + 12
		}
		c.bus.Write16(finalAddr&^uint32(1), uint16(value))
		dbg.Printf("cpu: strh r%d, [%08X] = %04X\n", inst.Rd, finalAddr, uint16(value))
	}

	if inst.W || !inst.P {
		c.registers.SetReg(inst.Rn, transferAddr)
	}

	return 1
}

func byteSuffix(b bool) string {
	if b {
		return "b"
	}
	return ""
}

// #############################
// ARM Control Instructions
// #############################

func (c *CPU) execArm_SWI(inst ARMSWIInstruction) uint32 {
	comment := uint8((inst.Immediate >> 16) & 0xFF)
	return c.handleSWI(comment)
}

func (c *CPU) execArm_BlockDataTransfer(inst ARMBlockDataTransferInstruction, instrAddr uint32) uint32 {
	baseAddr := c.registers.GetReg(inst.Rn)
	numRegisters := 0
	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 != 0 {
			numRegisters++
		}
	}
	if numRegisters == 0 {
		return 1
	}

	var startAddr uint32
	var finalBaseAddr uint32
	if inst.U {
		startAddr = baseAddr
		finalBaseAddr = baseAddr + uint32(numRegisters)*4
	} else {
		startAddr = baseAddr - uint32(numRegisters)*4
		finalBaseAddr = startAddr
	}

	addr := startAddr
	if inst.P == inst.U {
		// pre-indexed ascending (IB), or post-indexed descending (DA)
		// whose startAddr already sits one word below the lowest
		// transfer: either way the first transfer address is one word
		// past startAddr.
		addr += 4
	}

	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 == 0 {
			continue
		}
		if inst.L {
			val := c.bus.Read32(addr)
			if i == 15 {
				c.registers.SetPC(val &^ uint32(3))
			} else {
				c.registers.SetReg(uint8(i), val)
			}
			dbg.Printf("cpu: ldm [%08X] -> r%d = %08X\n", addr, i, val)
		} else {
			var val uint32
			if i == 15 {
				val = instrAddr + 12
			} else {
				val = c.registers.GetReg(uint8(i))
			}
			c.bus.Write32(addr, val)
			dbg.Printf("cpu: stm r%d = %08X -> [%08X]\n", i, val, addr)
		}
		addr += 4
	}

	if inst.W {
		c.registers.SetReg(inst.Rn, finalBaseAddr)
	}

	if inst.S {
		dbg.Printf("cpu: block data transfer S-bit (user-bank registers) not emulated\n")
	}

	return uint32(1 + numRegisters)
}

// #############
// ### Utils ###
// #############

func applyShift(value uint32, shiftType ARMShiftType, shiftAmount uint32) uint32 {
	switch shiftType {
	case LSL:
		if shiftAmount >= 32 {
			return 0
		}
		return value << shiftAmount
	case LSR:
		if shiftAmount >= 32 {
			return 0
		}
		return value >> shiftAmount
	case ASR:
		if shiftAmount >= 32 {
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF
			}
			return 0
		}
		return uint32(int32(value) >> shiftAmount)
	case ROR:
		shiftAmount %= 32
		if shiftAmount == 0 {
			return value
		}
		return (value >> shiftAmount) | (value << (32 - shiftAmount))
	}
	return value
}
