package interfaces

// BusInterface is the address space the CPU executes against. All reads
// and writes, including the CPU's own fetches, go through here so that
// region decoding and peripheral side effects live in one place.
type BusInterface interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}
