// Package apu models the GBA sound hardware's register surface and the
// two Direct Sound FIFOs that DMA feeds (spec.md §4.10). It intentionally
// stops at the register/FIFO boundary: mixing FIFO samples with the four
// legacy channels into an audible stream is a host-frontend concern this
// core does not implement (spec.md §1 Non-goals).
package apu

// fifoDepth is the real hardware FIFO depth: 32 bytes, consumed 4 at a
// time on each DMA-triggered refill.
const fifoDepth = 32

// FIFO is one of the two Direct Sound sample queues (FIFO A/B), fed by
// DMA1/DMA2 on timer overflow and drained by the (unmodeled) mixer.
type FIFO struct {
	buf   [fifoDepth]int8
	count int
}

// Push appends a sample, dropping it if the FIFO is full (matching
// hardware: an overrun simply doesn't enqueue the new byte).
func (f *FIFO) Push(sample int8) {
	if f.count >= fifoDepth {
		return
	}
	f.buf[f.count] = sample
	f.count++
}

// Pop removes and returns the oldest sample, or 0 if empty.
func (f *FIFO) Pop() int8 {
	if f.count == 0 {
		return 0
	}
	s := f.buf[0]
	copy(f.buf[:f.count-1], f.buf[1:f.count])
	f.count--
	return s
}

// Len reports how many samples are queued.
func (f *FIFO) Len() int { return f.count }

// Reset empties the FIFO, matching the SOUNDCNT_H reset-FIFO control bit.
func (f *FIFO) Reset() { f.count = 0 }

// APU holds the PSG/mixer control registers (SOUNDCNT_L/H/X, SOUNDBIAS)
// and the two Direct Sound FIFOs. The four legacy square/wave/noise
// channels are out of scope; only the register bits DMA and the CPU
// observe are tracked.
type APU struct {
	soundcntL uint16 // PSG master volume / enables
	soundcntH uint16 // Direct Sound volume/enable/timer-select/reset
	soundcntX uint16 // master enable + (unmodeled) channel-active flags
	soundbias uint16

	FIFOA FIFO
	FIFOB FIFO
}

// NewAPU returns a powered-off APU (SOUNDCNT_X master enable clear).
func NewAPU() *APU {
	return &APU{soundbias: 0x0200}
}

func (a *APU) SetSOUNDCNTL(v uint16) { a.soundcntL = v }
func (a *APU) SOUNDCNTL() uint16     { return a.soundcntL }

// SetSOUNDCNTH decodes the Direct Sound control bits and resets a FIFO
// immediately if its reset bit is set, matching hardware's "reset takes
// effect on write" behavior.
func (a *APU) SetSOUNDCNTH(v uint16) {
	a.soundcntH = v
	if v&(1<<11) != 0 {
		a.FIFOA.Reset()
	}
	if v&(1<<15) != 0 {
		a.FIFOB.Reset()
	}
}
func (a *APU) SOUNDCNTH() uint16 { return a.soundcntH }

// SetSOUNDCNTX writes only the master-enable bit (bit 7); the PSG
// channel-active status bits (0-3) are read-only and this core reports
// them as always inactive since those channels aren't modeled.
func (a *APU) SetSOUNDCNTX(v uint16) { a.soundcntX = v & (1 << 7) }
func (a *APU) SOUNDCNTX() uint16     { return a.soundcntX }

func (a *APU) SetSOUNDBIAS(v uint16) { a.soundbias = v }
func (a *APU) SOUNDBIAS() uint16     { return a.soundbias }

// FIFOATimerSelect/FIFOBTimerSelect report which timer (0 or 1) drains
// each FIFO, per SOUNDCNT_H bits 10 and 14.
func (a *APU) FIFOATimerSelect() int {
	if a.soundcntH&(1<<10) != 0 {
		return 1
	}
	return 0
}
func (a *APU) FIFOBTimerSelect() int {
	if a.soundcntH&(1<<14) != 0 {
		return 1
	}
	return 0
}

// PushFIFOA/PushFIFOB feed a byte written to FIFO_A/FIFO_B (0x040000A0/
// 0x040000A4) into the corresponding queue, one byte at a time; DMA
// writes four bytes per trigger via repeated Write8 calls.
func (a *APU) PushFIFOA(sample int8) { a.FIFOA.Push(sample) }
func (a *APU) PushFIFOB(sample int8) { a.FIFOB.Push(sample) }
