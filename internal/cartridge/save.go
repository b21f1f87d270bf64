package cartridge

// Backend is a cartridge save back-end: SRAM, Flash or EEPROM, mapped
// into the 0x0E000000 save window (or, for EEPROM, bit-serial accessed
// via DMA on small-ROM carts per spec.md §4.8).
type Backend interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	// Bytes returns the backend's persisted contents for writing out to
	// a save file; Load installs previously persisted contents.
	Bytes() []byte
	Load(data []byte)
}

// Kind identifies which save back-end a ROM uses.
type Kind int

const (
	KindNone Kind = iota
	KindSRAM
	KindFlash64K
	KindFlash128K
	KindEEPROM512
	KindEEPROM8K
)

func (k Kind) String() string {
	switch k {
	case KindSRAM:
		return "SRAM"
	case KindFlash64K:
		return "FLASH64K"
	case KindFlash128K:
		return "FLASH128K"
	case KindEEPROM512:
		return "EEPROM512"
	case KindEEPROM8K:
		return "EEPROM8K"
	default:
		return "NONE"
	}
}

// NewBackend constructs the Backend for a detected save Kind.
func NewBackend(k Kind) Backend {
	switch k {
	case KindSRAM:
		return NewSRAM()
	case KindFlash64K:
		return NewFlash(FlashSize64K)
	case KindFlash128K:
		return NewFlash(FlashSize128K)
	case KindEEPROM512:
		return NewEEPROM(EEPROMAddr6Bit)
	case KindEEPROM8K:
		return NewEEPROM(EEPROMAddr14Bit)
	default:
		return NewSRAM()
	}
}
