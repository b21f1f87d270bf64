package interfaces

// MemoryDevice represents a flat byte-addressable region owned by the bus
// (BIOS, EWRAM, IWRAM, save back-ends). The bus composes halfword/word
// accesses out of Read8/Write8 itself, so a region only has to implement
// byte addressing.
type MemoryDevice interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
}
