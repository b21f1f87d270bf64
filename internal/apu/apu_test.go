package apu

import "testing"

func TestFIFO_PushPopOrderedAndDropsOnOverrun(t *testing.T) {
	var f FIFO
	for i := 0; i < fifoDepth; i++ {
		f.Push(int8(i))
	}
	f.Push(99) // should be dropped, FIFO already full

	if got := f.Len(); got != fifoDepth {
		t.Fatalf("Len() = %d, want %d (overrun byte must be dropped)", got, fifoDepth)
	}
	if got := f.Pop(); got != 0 {
		t.Fatalf("first Pop() = %d, want 0 (FIFO order preserved)", got)
	}
}

func TestFIFO_PopEmptyReturnsZero(t *testing.T) {
	var f FIFO
	if got := f.Pop(); got != 0 {
		t.Fatalf("Pop() on empty FIFO = %d, want 0", got)
	}
}

func TestFIFO_ResetEmpties(t *testing.T) {
	var f FIFO
	f.Push(1)
	f.Push(2)
	f.Reset()
	if got := f.Len(); got != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", got)
	}
}

// Writing SOUNDCNT_H's reset bits must clear the matching FIFO immediately.
func TestSetSOUNDCNTH_ResetBitsClearFIFOs(t *testing.T) {
	a := NewAPU()
	a.PushFIFOA(5)
	a.PushFIFOB(6)

	a.SetSOUNDCNTH(1<<11 | 1<<15)

	if a.FIFOA.Len() != 0 {
		t.Fatalf("FIFO A not reset by bit 11")
	}
	if a.FIFOB.Len() != 0 {
		t.Fatalf("FIFO B not reset by bit 15")
	}
}

func TestFIFOTimerSelect_ReadsRespectiveBits(t *testing.T) {
	a := NewAPU()
	a.SetSOUNDCNTH(1 << 10) // FIFO A drained by timer 1
	if got := a.FIFOATimerSelect(); got != 1 {
		t.Fatalf("FIFOATimerSelect() = %d, want 1", got)
	}
	if got := a.FIFOBTimerSelect(); got != 0 {
		t.Fatalf("FIFOBTimerSelect() = %d, want 0", got)
	}
}

// SOUNDCNT_X only latches the master-enable bit; channel-active status
// bits are read-only and always report inactive.
func TestSetSOUNDCNTX_OnlyMasterEnableBitSticks(t *testing.T) {
	a := NewAPU()
	a.SetSOUNDCNTX(0xFF)

	if got := a.SOUNDCNTX(); got != 1<<7 {
		t.Fatalf("SOUNDCNTX() = %#x, want only bit 7 set", got)
	}
}

func TestNewAPU_DefaultSoundBias(t *testing.T) {
	a := NewAPU()
	if got := a.SOUNDBIAS(); got != 0x0200 {
		t.Fatalf("default SOUNDBIAS = %#x, want 0x0200", got)
	}
}
