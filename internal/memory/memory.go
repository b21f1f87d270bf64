// Package memory implements the GBA's flat, process-wide RAM regions:
// the BIOS boot ROM, on-board Work RAM (EWRAM) and on-chip Work RAM
// (IWRAM). Palette RAM, VRAM and OAM live with the PPU instead, since
// reads/writes to them carry PPU-specific side effects (see internal/ppu).
package memory

const (
	BiosStart = 0x00000000
	BiosSize  = 16 * 1024

	EWRAMStart = 0x02000000
	EWRAMSize  = 256 * 1024

	IWRAMStart = 0x03000000
	IWRAMSize  = 32 * 1024
)

// RAM is a flat, wrap-addressed read/write byte region. EWRAM and IWRAM
// are both plain instances of it; only their size differs.
type RAM struct {
	data []byte
}

// NewRAM allocates a zero-filled region of the given size.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Read8 returns the byte at addr, wrapping modulo the region size.
func (r *RAM) Read8(addr uint32) uint8 {
	return r.data[int(addr)%len(r.data)]
}

// Write8 stores value at addr, wrapping modulo the region size.
func (r *RAM) Write8(addr uint32, value uint8) {
	r.data[int(addr)%len(r.data)] = value
}

// Len reports the region's byte size.
func (r *RAM) Len() int {
	return len(r.data)
}
