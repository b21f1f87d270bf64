package memory

// EWRAM is the GBA's 256 KiB external Work RAM at 0x02000000.
type EWRAM struct {
	*RAM
}

// NewEWRAM allocates a zero-filled EWRAM region.
func NewEWRAM() *EWRAM {
	return &EWRAM{RAM: NewRAM(EWRAMSize)}
}
