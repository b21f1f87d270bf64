package cpu

import "testing"

// S5: THUMB MOV immediate. MOV R0, #42 (format 3), CPSR.T set.
func TestScenario_ThumbMovImmediate(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetThumbState(true)
	c.registers.SetPC(0)
	bus.Write16(0, 0x202A)

	c.Step()

	if got := c.registers.GetReg(0); got != 42 {
		t.Fatalf("R0 = %d, want 42", got)
	}
	if c.registers.GetFlagZ() {
		t.Fatalf("Z flag set, want clear (result is non-zero)")
	}
	if c.registers.GetPC() != 2 {
		t.Fatalf("PC = %#x, want 2", c.registers.GetPC())
	}
}

// THUMB unconditional branch: offset 0x002 (*2 = +4) at PC=0. PC is
// fetch-advanced to 2 before the offset applies, so the target is 6.
func TestThumbBranch_OffsetRelativeToFetchAdvancedPC(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetThumbState(true)
	c.registers.SetPC(0)
	bus.Write16(0, 0xE002)

	c.Step()

	if got := c.registers.GetPC(); got != 6 {
		t.Fatalf("PC = %#x, want 6", got)
	}
}

// MOV #0 must set the Z flag.
func TestThumbMovImmediate_ZeroSetsZFlag(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetThumbState(true)
	c.registers.SetPC(0)
	bus.Write16(0, 0x2000) // MOV R0, #0

	c.Step()

	if !c.registers.GetFlagZ() {
		t.Fatalf("Z flag clear, want set for MOV R0, #0")
	}
}
