package cartridge

import "bytes"

// eepromSizeThreshold is the ROM-size cutoff spec.md §4.8 uses to pick
// between the two EEPROM variants when only the marker string, not the
// address width, is visible in ROM: >16 MiB carts use the 8 KiB part
// (14-bit addressing), everything else the 512 B part (6-bit).
const eepromSizeThreshold = 16 * 1024 * 1024

// DetectSave scans romData for the marker strings real GBA ROMs embed
// and returns the save back-end kind to instantiate, trying markers in
// the most-specific-first order spec.md §4.8 documents so e.g.
// FLASH1M_V wins over a coincidental FLASH_V-prefix match.
func DetectSave(romData []byte) Kind {
	switch {
	case bytes.Contains(romData, []byte("FLASH1M_V")):
		return KindFlash128K
	case bytes.Contains(romData, []byte("FLASH512_V")):
		return KindFlash64K
	case bytes.Contains(romData, []byte("FLASH_V")):
		return KindFlash64K
	case bytes.Contains(romData, []byte("EEPROM_V")):
		if len(romData) > eepromSizeThreshold {
			return KindEEPROM8K
		}
		return KindEEPROM512
	case bytes.Contains(romData, []byte("SRAM_V")):
		return KindSRAM
	case bytes.Contains(romData, []byte("SIIRTC_V")):
		// RTC carts also carry plain SRAM; no RTC emulation (Non-goal).
		return KindSRAM
	default:
		return KindNone
	}
}
