// Package cartridge models the Game Pak: ROM mirrored across the three
// wait-state windows (0x08000000-0x0DFFFFFF) plus whichever save
// back-end (spec.md §4.8) the ROM was built for.
package cartridge

// Cartridge is the ROM image plus its detected save back-end.
type Cartridge struct {
	ROM      []byte
	Save     Backend
	SaveKind Kind

	modified bool
}

// NewCartridge wraps romData and auto-detects its save back-end by
// scanning for the marker strings real ROMs embed.
func NewCartridge(romData []byte) *Cartridge {
	kind := DetectSave(romData)
	return &Cartridge{
		ROM:      romData,
		Save:     NewBackend(kind),
		SaveKind: kind,
	}
}

// ReadROM8 reads a byte from the Game Pak ROM window. Addresses beyond
// the image size read as 0xFF (open bus), matching real carts whose
// image is smaller than the 32 MiB window.
func (c *Cartridge) ReadROM8(addr uint32) uint8 {
	if int(addr) >= len(c.ROM) {
		return 0xFF
	}
	return c.ROM[addr]
}

// WriteROM8 is a no-op: Game Pak ROM is read-only. Flash command
// sequences are written through the save window instead, never ROM.
func (c *Cartridge) WriteROM8(addr uint32, value uint8) {}

func (c *Cartridge) ReadSRAM8(addr uint32) uint8 {
	return c.Save.Read8(addr)
}

func (c *Cartridge) WriteSRAM8(addr uint32, value uint8) {
	c.Save.Write8(addr, value)
	c.modified = true
}

// LoadSave installs previously persisted save-file contents.
func (c *Cartridge) LoadSave(data []byte) {
	c.Save.Load(data)
}

// SaveBytes returns the save back-end's current contents for
// persisting to a save file.
func (c *Cartridge) SaveBytes() []byte {
	return c.Save.Bytes()
}

// Modified reports whether the save back-end has been written to since
// the last ClearModified, so an auto-save controller can skip the
// write entirely when nothing changed (spec.md §4.11/§5).
func (c *Cartridge) Modified() bool { return c.modified }

// ClearModified acknowledges a completed auto-save.
func (c *Cartridge) ClearModified() { c.modified = false }
