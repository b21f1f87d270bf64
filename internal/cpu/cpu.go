package cpu

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/memory"
)

// CPU emulates the ARM7TDMI execution core: ARM and THUMB decode/execute,
// the banked register file, and IRQ/SWI exception entry. It holds no
// pipeline state beyond the registers themselves; the model in
// spec.md §4.1 is instruction-granular, not cycle-accurate below that.
type CPU struct {
	registers *Registers
	bus       interfaces.BusInterface

	cycles     uint64
	irqPending bool

	halted bool
}

var _ interfaces.CPUInterface = (*CPU)(nil)

func NewCPU(bus interfaces.BusInterface) *CPU {
	c := &CPU{
		registers: NewRegisters(),
		bus:       bus,
	}
	c.registers.SetPC(memory.BiosStart)
	return c
}

func (c *CPU) Registers() interfaces.RegistersInterface { return c.registers }

func (c *CPU) Bus() interfaces.BusInterface { return c.bus }

func (c *CPU) Reset() {
	c.registers = NewRegisters()
	c.registers.SetPC(memory.BiosStart)
	c.registers.SetMode(SVCMode)
	c.registers.SetIRQDisabled(true)
	c.registers.SetFIQDisabled(true)
	c.irqPending = false
	c.halted = false
}

// RequestInterrupt latches a pending IRQ. It is serviced at the top of
// the next Step call, provided CPSR.I is clear.
func (c *CPU) RequestInterrupt() {
	c.irqPending = true
	c.halted = false
}

// Halt parks the CPU until the next RequestInterrupt, per SWI Halt/Stop
// (spec.md §4.9). While halted, Step still costs cycles so the rest of
// the system keeps advancing.
func (c *CPU) Halt() {
	c.halted = true
}

// Step retires exactly one architectural instruction, or performs IRQ
// entry if an interrupt is pending and enabled, and returns the cycle
// cost of whichever it did.
func (c *CPU) Step() uint32 {
	if c.irqPending && !c.registers.IsIRQDisabled() {
		c.irqPending = false
		c.halted = false
		c.enterIRQ()
		return 3
	}

	if c.halted {
		return 1
	}

	c.cycles++

	if c.registers.IsThumb() {
		pc := c.registers.GetPC()
		instr := c.bus.Read16(pc)
		c.registers.SetPC(pc + 2)
		return c.executeThumb(instr)
	}

	pc := c.registers.GetPC()
	instr := c.bus.Read32(pc)
	c.registers.SetPC(pc + 4)
	return c.executeArm(instr)
}

// enterIRQ performs exception entry to IRQ mode: save CPSR to
// SPSR_irq, R14_irq <- PC+4, switch mode, clear T, set I, PC <- 0x18.
// GBA hardware offsets the saved return address by a fixed +4
// regardless of ARM/THUMB state; the BIOS IRQ epilogue is written with
// that quirk in mind, so this mirrors it rather than computing a
// state-dependent offset.
func (c *CPU) enterIRQ() {
	returnAddr := c.registers.GetPC() + 4
	savedCPSR := c.registers.GetCPSR()
	c.registers.SetMode(IRQMode)
	c.registers.SetSPSR(savedCPSR)
	c.registers.SetReg(14, returnAddr)
	c.registers.SetThumbState(false)
	c.registers.SetIRQDisabled(true)
	c.registers.SetPC(0x18)
}

// readOperandReg reads a register as an ALU/addressing operand, adding
// the PC-ahead adjustment spec.md §4.1 requires when the operand is
// R15: since Step() already advanced PC past the current instruction
// (+4 ARM, +2 THUMB), one further +4/+2 yields the architectural
// PC+8/PC+4 read value.
func (c *CPU) readOperandReg(n uint8) uint32 {
	v := c.registers.GetReg(n)
	if n == 15 {
		if c.registers.IsThumb() {
			v += 2
		} else {
			v += 4
		}
	}
	return v
}

func (c *CPU) setFlags(result uint32, carryOut bool, overflow bool) {
	c.registers.SetFlagN(result&0x80000000 != 0)
	c.registers.SetFlagZ(result == 0)
	c.registers.SetFlagC(carryOut)
	c.registers.SetFlagV(overflow)
}

func (c *CPU) setLogicalFlags(result uint32, carryOut bool) {
	c.registers.SetFlagN(result&0x80000000 != 0)
	c.registers.SetFlagZ(result == 0)
	c.registers.SetFlagC(carryOut)
}

// checkAddOverflow reports signed overflow for a+b==result.
func checkAddOverflow(a, b, result uint32) bool {
	return ((a ^ result) & (b ^ result) & 0x80000000) != 0
}

// checkSubOverflow reports signed overflow for a-b==result.
func checkSubOverflow(a, b, result uint32) bool {
	return ((a ^ b) & (a ^ result) & 0x80000000) != 0
}
