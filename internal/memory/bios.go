package memory

// BIOS is the GBA's 16 KiB internal Boot ROM at 0x00000000. The real
// console ships a proprietary BIOS image; this core does not embed one
// (see SPEC_FULL.md) and instead starts BIOS memory zero-filled. A
// frontend that owns a legitimately dumped image may install it with
// LoadImage before the first CPU step. Since SWI dispatch is handled at
// the high level (internal/cpu.handleSWI), the BIOS program bytes
// themselves are never executed by this core; only the 16 KiB address
// range needs to behave like read-only memory.
type BIOS struct {
	data [BiosSize]byte
}

// NewBIOS returns a zero-filled BIOS region.
func NewBIOS() *BIOS {
	return &BIOS{}
}

// LoadImage installs a BIOS dump. Images longer than BiosSize are
// truncated; shorter ones leave the remainder zero-filled.
func (b *BIOS) LoadImage(data []byte) {
	n := copy(b.data[:], data)
	for i := n; i < len(b.data); i++ {
		b.data[i] = 0
	}
}

// Read8 returns the byte at addr. Addresses beyond the 16 KiB region
// read as 0, matching the bus's unmapped-read contract (spec.md §4.2).
func (b *BIOS) Read8(addr uint32) uint8 {
	if int(addr) >= len(b.data) {
		return 0
	}
	return b.data[addr]
}

// Write8 is a no-op: BIOS is read-only, and writes to it are silently
// discarded rather than treated as an error (spec.md §7).
func (b *BIOS) Write8(addr uint32, value uint8) {}
