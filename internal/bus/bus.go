// Package bus implements the GBA system bus: address decode and
// dispatch across BIOS, EWRAM, IWRAM, the I/O register block, PALRAM,
// VRAM, OAM and the Game Pak window (spec.md §4.2), plus the
// peripheral orchestration (spec.md §4.11) that turns a CPU cycle
// count into PPU/timer/DMA/APU steps and interrupt requests.
package bus

import (
	"log"

	"GoBA/internal/apu"
	"GoBA/internal/cartridge"
	"GoBA/internal/dma"
	"GoBA/internal/interfaces"
	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/joypad"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/timer"
	"GoBA/util/dbg"
)

// GBA Memory Map Constants
const (
	BIOSAddrStart = 0x00000000
	BIOSAddrEnd   = 0x00003FFF
	BIOSSize      = BIOSAddrEnd - BIOSAddrStart + 1 // 16KB

	EWRAMAddrStart = 0x02000000
	EWRAMAddrEnd   = 0x0203FFFF
	EWRAMSize      = EWRAMAddrEnd - EWRAMAddrStart + 1 // 256KB
	EWRAMMirrorEnd = 0x02FFFFFF                        // Mirrored up to 0x02FFFFFF

	IWRAMAddrStart = 0x03000000
	IWRAMAddrEnd   = 0x03007FFF
	IWRAMSize      = IWRAMAddrEnd - IWRAMAddrStart + 1 // 32KB
	IWRAMMirrorEnd = 0x03FFFFFF                        // Mirrored up to 0x03FFFFFF

	IOAddrStart = 0x04000000
	IOAddrEnd   = 0x040003FF // Main I/O registers block
	IOSize      = IOAddrEnd - IOAddrStart + 1
	IOMirrorEnd = 0x04FFFFFF // Mirrored up to 0x04FFFFFF

	PALRAMAddrStart = 0x05000000
	PALRAMAddrEnd   = 0x050003FF
	PALRAMSize      = PALRAMAddrEnd - PALRAMAddrStart + 1 // 1KB
	PALRAMMirrorEnd = 0x05FFFFFF                          // Mirrored

	VRAMAddrStart = 0x06000000
	VRAMAddrEnd   = 0x06017FFF
	VRAMSize      = VRAMAddrEnd - VRAMAddrStart + 1 // 96KB
	VRAMMirrorEnd = 0x06FFFFFF                      // Mirrored (partially, up to 0x0601FFFF for some mirrors)

	OAMAddrStart = 0x07000000
	OAMAddrEnd   = 0x070003FF
	OAMSize      = OAMAddrEnd - OAMAddrStart + 1 // 1KB
	OAMMirrorEnd = 0x07FFFFFF                    // Mirrored

	GamePakAddrStartWS0 = 0x08000000
	GamePakAddrEndWS0   = 0x09FFFFFF
	GamePakAddrStartWS1 = 0x0A000000
	GamePakAddrEndWS1   = 0x0BFFFFFF
	GamePakAddrStartWS2 = 0x0C000000
	GamePakAddrEndWS2   = 0x0DFFFFFF

	GamePakSRAMAddrStart = 0x0E000000
	GamePakSRAMAddrEnd   = 0x0E00FFFF // Max 64KB, often smaller
	GamePakSRAMSize      = GamePakSRAMAddrEnd - GamePakSRAMAddrStart + 1
)

// I/O register offsets (relative to IOAddrStart) this bus dispatches to
// a peripheral directly rather than through the io.Regs fallback.
const (
	regSoundCntL = 0x0080
	regSoundCntH = 0x0082
	regSoundCntX = 0x0084
	regSoundBias = 0x0088
	regFIFOA     = 0x00A0
	regFIFOAEnd  = 0x00A3
	regFIFOB     = 0x00A4
	regFIFOBEnd  = 0x00A7

	regDMABase = 0x00B0
	regDMAEnd  = 0x00DF

	regTimerBase = 0x0100
	regTimerEnd  = 0x010F

	regKeyInput = 0x0130
	regKeyCnt   = 0x0132

	regIE  = 0x0200
	regIF  = 0x0202
	regIME = 0x0208
)

// Bus connects the CPU to every memory-mapped component.
type Bus struct {
	BIOS  *memory.BIOS
	EWRAM *memory.EWRAM // On-board Work RAM
	IWRAM *memory.IWRAM // On-chip Work RAM

	// IORegs backs the corners of the I/O block spec.md doesn't assign to
	// a specific peripheral (WAITCNT, POSTFLG, HALTCNT, serial regs).
	IORegs *io.Regs

	PPU       *ppu.PPU             // Handles PALRAM, VRAM, OAM and PPU I/O regs
	Cartridge *cartridge.Cartridge // Handles Game Pak ROM and SRAM

	DMAController *dma.Controller
	Timers        *timer.Controller
	APU           *apu.APU
	Keypad        *joypad.Joypad
	Interrupt     *interrupt.Controller

	CycleCount uint64
}

var _ interfaces.BusInterface = (*Bus)(nil)

// NewBus wires every peripheral into a fresh Bus. All arguments are
// required; a missing component means addresses that should dispatch
// to it would otherwise nil-panic deep inside a read/write.
func NewBus(
	bios *memory.BIOS,
	ewram *memory.EWRAM,
	iwram *memory.IWRAM,
	ppu *ppu.PPU,
	cart *cartridge.Cartridge,
	ioRegs *io.Regs,
	dmaController *dma.Controller,
	timers *timer.Controller,
	apuDev *apu.APU,
	keypad *joypad.Joypad,
	irq *interrupt.Controller,
) *Bus {
	if bios == nil || ewram == nil || iwram == nil || ppu == nil || cart == nil ||
		ioRegs == nil || dmaController == nil || timers == nil || apuDev == nil ||
		keypad == nil || irq == nil {
		log.Fatalf("Bus: Cannot initialize with nil components")
	}
	return &Bus{
		BIOS:          bios,
		EWRAM:         ewram,
		IWRAM:         iwram,
		PPU:           ppu,
		Cartridge:     cart,
		IORegs:        ioRegs,
		DMAController: dmaController,
		Timers:        timers,
		APU:           apuDev,
		Keypad:        keypad,
		Interrupt:     irq,
	}
}

// Read8 reads a byte from the memory map.
func (b *Bus) Read8(addr uint32) uint8 {
	switch {
	case addr >= BIOSAddrStart && addr <= BIOSAddrEnd:
		return b.BIOS.Read8(addr - BIOSAddrStart)

	case addr >= EWRAMAddrStart && addr <= EWRAMMirrorEnd:
		return b.EWRAM.Read8((addr - EWRAMAddrStart) % EWRAMSize)

	case addr >= IWRAMAddrStart && addr <= IWRAMMirrorEnd:
		return b.IWRAM.Read8((addr - IWRAMAddrStart) % IWRAMSize)

	case addr >= IOAddrStart && addr <= IOMirrorEnd:
		return b.ioRead8((addr - IOAddrStart) % IOSize)

	case addr >= PALRAMAddrStart && addr <= PALRAMMirrorEnd:
		return b.PPU.ReadPaletteRAM8((addr - PALRAMAddrStart) % PALRAMSize)

	case addr >= VRAMAddrStart && addr <= VRAMMirrorEnd:
		return b.PPU.ReadVRAM8((addr - VRAMAddrStart) % VRAMSize)

	case addr >= OAMAddrStart && addr <= OAMMirrorEnd:
		return b.PPU.ReadOAM8((addr - OAMAddrStart) % OAMSize)

	case (addr >= GamePakAddrStartWS0 && addr <= GamePakAddrEndWS0) ||
		(addr >= GamePakAddrStartWS1 && addr <= GamePakAddrEndWS1) ||
		(addr >= GamePakAddrStartWS2 && addr <= GamePakAddrEndWS2):
		// All three wait-state windows are 32 MiB and mirror the same
		// Game Pak image, so the offset within the image is just the
		// low 25 bits regardless of which window matched.
		return b.Cartridge.ReadROM8(addr & (GamePakAddrEndWS0 - GamePakAddrStartWS0))

	case addr >= GamePakSRAMAddrStart && addr <= GamePakSRAMAddrEnd:
		return b.Cartridge.ReadSRAM8(addr - GamePakSRAMAddrStart)

	default:
		return 0xFF
	}
}

// ioRead8 dispatches a byte read within the I/O block to whichever
// peripheral owns that register, falling back to the plain register
// file for anything not modeled by a specific component.
func (b *Bus) ioRead8(off uint32) uint8 {
	if b.PPU.IsPPUIORegister(off) {
		return b.PPU.ReadIORegister8(off)
	}
	switch {
	case off == regSoundCntL:
		return uint8(b.APU.SOUNDCNTL())
	case off == regSoundCntL+1:
		return uint8(b.APU.SOUNDCNTL() >> 8)
	case off == regSoundCntH:
		return uint8(b.APU.SOUNDCNTH())
	case off == regSoundCntH+1:
		return uint8(b.APU.SOUNDCNTH() >> 8)
	case off == regSoundCntX:
		return uint8(b.APU.SOUNDCNTX())
	case off == regSoundCntX+1:
		return uint8(b.APU.SOUNDCNTX() >> 8)
	case off == regSoundBias:
		return uint8(b.APU.SOUNDBIAS())
	case off == regSoundBias+1:
		return uint8(b.APU.SOUNDBIAS() >> 8)

	case off >= regDMABase && off <= regDMAEnd:
		return b.dmaRead8(off - regDMABase)

	case off >= regTimerBase && off <= regTimerEnd:
		return b.timerRead8(off - regTimerBase)

	case off == regKeyInput:
		return b.Keypad.ReadKEYINPUTLo()
	case off == regKeyInput+1:
		return b.Keypad.ReadKEYINPUTHi()
	case off == regKeyCnt:
		return b.Keypad.ReadKEYCNTLo()
	case off == regKeyCnt+1:
		return b.Keypad.ReadKEYCNTHi()

	case off == regIE:
		return b.Interrupt.ReadIELo()
	case off == regIE+1:
		return b.Interrupt.ReadIEHi()
	case off == regIF:
		return b.Interrupt.ReadIFLo()
	case off == regIF+1:
		return b.Interrupt.ReadIFHi()
	case off == regIME:
		return b.Interrupt.ReadIMELo()

	default:
		return b.IORegs.Read8(off)
	}
}

func (b *Bus) dmaRead8(rel uint32) uint8 {
	ch := int(rel / 12)
	if ch > 3 {
		return 0
	}
	field := rel % 12
	c := &b.DMAController.Channels[ch]
	switch {
	case field <= 3:
		return uint8(c.Source >> (8 * field))
	case field <= 7:
		return uint8(c.Dest >> (8 * (field - 4)))
	case field == 8:
		return uint8(c.Count)
	case field == 9:
		return uint8(c.Count >> 8)
	case field == 10:
		return uint8(c.Control())
	case field == 11:
		return uint8(c.Control() >> 8)
	default:
		return 0
	}
}

func (b *Bus) timerRead8(rel uint32) uint8 {
	ch := int(rel / 4)
	if ch > 3 {
		return 0
	}
	switch rel % 4 {
	case 0:
		return uint8(b.Timers.Counter(ch))
	case 1:
		return uint8(b.Timers.Counter(ch) >> 8)
	case 2:
		return b.Timers.Control(ch)
	default:
		return 0
	}
}

// Write8 writes a byte to the specified memory address.
func (b *Bus) Write8(addr uint32, value uint8) {
	switch {
	case addr <= BIOSAddrEnd:
		dbg.Printf("WARN: Attempted write to Read-Only BIOS at %08X\n", addr)
	case addr >= EWRAMAddrStart && addr <= EWRAMMirrorEnd:
		b.EWRAM.Write8((addr-EWRAMAddrStart)%EWRAMSize, value)
	case addr >= IWRAMAddrStart && addr <= IWRAMMirrorEnd:
		b.IWRAM.Write8((addr-IWRAMAddrStart)%IWRAMSize, value)
	case addr >= IOAddrStart && addr <= IOMirrorEnd:
		b.ioWrite8((addr-IOAddrStart)%IOSize, value)
	case addr >= PALRAMAddrStart && addr <= PALRAMMirrorEnd:
		b.PPU.WritePaletteRAM8((addr-PALRAMAddrStart)%PALRAMSize, value)
	case addr >= VRAMAddrStart && addr <= VRAMMirrorEnd:
		b.PPU.WriteVRAM8((addr-VRAMAddrStart)%VRAMSize, value)
	case addr >= OAMAddrStart && addr <= OAMMirrorEnd:
		b.PPU.WriteOAM8((addr-OAMAddrStart)%OAMSize, value)
	case addr >= GamePakAddrStartWS0 && addr <= GamePakAddrEndWS2:
		dbg.Printf("WARN: Attempted write to Read-Only ROM at %08X\n", addr)
	case addr >= GamePakSRAMAddrStart && addr <= GamePakSRAMAddrEnd:
		b.Cartridge.WriteSRAM8(addr-GamePakSRAMAddrStart, value)
	default:
		dbg.Printf("Bus: Unhandled 8-bit write to address %08X\n", addr)
	}
}

func (b *Bus) ioWrite8(off uint32, value uint8) {
	if b.PPU.IsPPUIORegister(off) {
		b.PPU.WriteIORegister8(off, value)
		return
	}
	switch {
	case off == regSoundCntL:
		b.APU.SetSOUNDCNTL(setLo(b.APU.SOUNDCNTL(), value))
	case off == regSoundCntL+1:
		b.APU.SetSOUNDCNTL(setHi(b.APU.SOUNDCNTL(), value))
	case off == regSoundCntH:
		b.APU.SetSOUNDCNTH(setLo(b.APU.SOUNDCNTH(), value))
	case off == regSoundCntH+1:
		b.APU.SetSOUNDCNTH(setHi(b.APU.SOUNDCNTH(), value))
	case off == regSoundCntX:
		b.APU.SetSOUNDCNTX(setLo(b.APU.SOUNDCNTX(), value))
	case off == regSoundCntX+1:
		b.APU.SetSOUNDCNTX(setHi(b.APU.SOUNDCNTX(), value))
	case off == regSoundBias:
		b.APU.SetSOUNDBIAS(setLo(b.APU.SOUNDBIAS(), value))
	case off == regSoundBias+1:
		b.APU.SetSOUNDBIAS(setHi(b.APU.SOUNDBIAS(), value))
	case off >= regFIFOA && off <= regFIFOAEnd:
		b.APU.PushFIFOA(int8(value))
	case off >= regFIFOB && off <= regFIFOBEnd:
		b.APU.PushFIFOB(int8(value))

	case off >= regDMABase && off <= regDMAEnd:
		b.dmaWrite8(off-regDMABase, value)

	case off >= regTimerBase && off <= regTimerEnd:
		b.timerWrite8(off-regTimerBase, value)

	case off == regKeyCnt:
		b.Keypad.WriteKEYCNTLo(value)
	case off == regKeyCnt+1:
		b.Keypad.WriteKEYCNTHi(value)

	case off == regIE:
		b.Interrupt.WriteIELo(value)
	case off == regIE+1:
		b.Interrupt.WriteIEHi(value)
	case off == regIF:
		b.Interrupt.WriteIFLo(value)
	case off == regIF+1:
		b.Interrupt.WriteIFHi(value)
	case off == regIME:
		b.Interrupt.WriteIMELo(value)

	default:
		b.IORegs.Write8(off, value)
	}
}

func (b *Bus) dmaWrite8(rel uint32, value uint8) {
	ch := int(rel / 12)
	if ch > 3 {
		return
	}
	field := rel % 12
	c := &b.DMAController.Channels[ch]
	switch {
	case field <= 3:
		c.SetSource(ch, setByte32(c.Source, field, value))
	case field <= 7:
		c.SetDest(ch, setByte32(c.Dest, field-4, value))
	case field == 8:
		c.Count = setLo(c.Count, value)
	case field == 9:
		c.Count = setHi(c.Count, value)
	case field == 10:
		c.SetControl(ch, setLo(c.Control(), value))
		b.triggerIfImmediate(ch, c)
	case field == 11:
		c.SetControl(ch, setHi(c.Control(), value))
		b.triggerIfImmediate(ch, c)
	}
}

// triggerIfImmediate activates ch's channel right away when the write
// that just landed left it enabled with immediate timing: per spec.md
// §4.7 "immediate (enable itself triggers)", there is no external event
// to wait for, so the bus must fire it itself instead of relying on the
// VBlank/HBlank/special trigger points in StepPeripherals.
func (b *Bus) triggerIfImmediate(ch int, c *dma.Channel) {
	if c.Enabled && c.Timing == dma.TimingImmediate {
		b.DMAController.Trigger(dma.TimingImmediate)
	}
}

func (b *Bus) timerWrite8(rel uint32, value uint8) {
	ch := int(rel / 4)
	if ch > 3 {
		return
	}
	// TMxCNT_L writes target the reload register, not the live counter;
	// merging against the running Counter would let whatever it happens
	// to hold at that instant leak into the next reload.
	switch rel % 4 {
	case 0:
		b.Timers.SetReload(ch, setLo(b.Timers.Timers[ch].Reload, value))
	case 1:
		b.Timers.SetReload(ch, setHi(b.Timers.Timers[ch].Reload, value))
	case 2:
		b.Timers.SetControl(ch, value)
	}
}

func setLo(cur uint16, v uint8) uint16 { return (cur &^ 0x00FF) | uint16(v) }
func setHi(cur uint16, v uint8) uint16 { return (cur &^ 0xFF00) | uint16(v)<<8 }

func setByte32(cur uint32, lane uint32, v uint8) uint32 {
	shift := 8 * lane
	return (cur &^ (0xFF << shift)) | uint32(v)<<shift
}

// Read16 reads a 16-bit value (little-endian).
func (b *Bus) Read16(addr uint32) uint16 {
	lo := uint16(b.Read8(addr))
	hi := uint16(b.Read8(addr + 1))
	return (hi << 8) | lo
}

// Write16 writes a 16-bit value (little-endian).
func (b *Bus) Write16(addr uint32, value uint16) {
	b.Write8(addr, uint8(value&0xFF))
	b.Write8(addr+1, uint8((value>>8)&0xFF))
}

// Read32 reads a 32-bit value (little-endian).
func (b *Bus) Read32(addr uint32) uint32 {
	b0 := uint32(b.Read8(addr))
	b1 := uint32(b.Read8(addr + 1))
	b2 := uint32(b.Read8(addr + 2))
	b3 := uint32(b.Read8(addr + 3))
	return (b3 << 24) | (b2 << 16) | (b1 << 8) | b0
}

// Write32 writes a 32-bit value (little-endian).
func (b *Bus) Write32(addr uint32, value uint32) {
	b.Write8(addr, uint8(value&0xFF))
	b.Write8(addr+1, uint8((value>>8)&0xFF))
	b.Write8(addr+2, uint8((value>>16)&0xFF))
	b.Write8(addr+3, uint8((value>>24)&0xFF))
}

// dmaTransferUnit moves one halfword or word from src to dst through
// the bus's own Read/Write path, so a DMA into an I/O register (e.g.
// the sound FIFOs) gets the same side effects a CPU store would.
func (b *Bus) dmaTransferUnit(dst, src uint32, width32 bool) {
	if width32 {
		b.Write32(dst, b.Read32(src))
	} else {
		b.Write16(dst, b.Read16(src))
	}
}

// StepPeripherals advances every peripheral by cpuCycles, the cost
// returned from the CPU's last Step, and wires cross-component events
// exactly as spec.md §4.11 describes: PPU blank edges trigger matching
// DMA channels, PPU/timer/DMA/keypad conditions raise IRQ lines, and a
// FIFO-driving timer overflow drains one sample and re-arms its DMA
// channel.
func (b *Bus) StepPeripherals(cpuCycles uint32) {
	b.CycleCount += uint64(cpuCycles)

	events := b.PPU.Step(cpuCycles)
	if events.EnteredHBlank {
		b.DMAController.Trigger(dma.TimingHBlank)
	}
	if events.EnteredVBlank {
		b.DMAController.Trigger(dma.TimingVBlank)
	}
	if events.IRQVBlank {
		b.Interrupt.Request(interrupt.VBlank)
	}
	if events.IRQHBlank {
		b.Interrupt.Request(interrupt.HBlank)
	}
	if events.IRQVCount {
		b.Interrupt.Request(interrupt.VCountMatch)
	}

	timerFlags := b.Timers.Step(cpuCycles)
	timerIRQs := [4]interrupt.Flag{interrupt.Timer0, interrupt.Timer1, interrupt.Timer2, interrupt.Timer3}
	for i := 0; i < 4; i++ {
		if timerFlags&(1<<uint(i)) == 0 {
			continue
		}
		b.Interrupt.Request(timerIRQs[i])
		if i == b.APU.FIFOATimerSelect() {
			b.APU.FIFOA.Pop()
			b.DMAController.Trigger(dma.TimingSpecial)
		}
		if i == b.APU.FIFOBTimerSelect() {
			b.APU.FIFOB.Pop()
			b.DMAController.Trigger(dma.TimingSpecial)
		}
	}

	if dmaIRQs := b.DMAController.Step(b.dmaTransferUnit); dmaIRQs != 0 {
		dmaFlags := [4]interrupt.Flag{interrupt.DMA0, interrupt.DMA1, interrupt.DMA2, interrupt.DMA3}
		for i := 0; i < 4; i++ {
			if dmaIRQs&(1<<uint(8+i)) != 0 {
				b.Interrupt.Request(dmaFlags[i])
			}
		}
	}

	if b.Keypad.IRQPending() {
		b.Interrupt.Request(interrupt.Keypad)
	}
}
