package cartridge

import "testing"

func romWithMarker(marker string, size int) []byte {
	rom := make([]byte, size)
	copy(rom, []byte(marker))
	return rom
}

func TestDetectSave_PriorityOrder(t *testing.T) {
	cases := []struct {
		name   string
		marker string
		want   Kind
	}{
		{"flash1m", "FLASH1M_V110", KindFlash128K},
		{"flash512", "FLASH512_V130", KindFlash64K},
		{"flash", "FLASH_V124", KindFlash64K},
		{"sram", "SRAM_V113", KindSRAM},
		{"rtc", "SIIRTC_V100", KindSRAM},
		{"none", "NOTHING_HERE", KindNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectSave(romWithMarker(tc.marker, 1024))
			if got != tc.want {
				t.Fatalf("DetectSave(%q) = %v, want %v", tc.marker, got, tc.want)
			}
		})
	}
}

// FLASH1M_V must win even when a ROM also happens to contain a
// plain FLASH_V substring elsewhere in the image.
func TestDetectSave_MostSpecificMarkerWins(t *testing.T) {
	rom := make([]byte, 2048)
	copy(rom[0:], []byte("FLASH_V124"))
	copy(rom[512:], []byte("FLASH1M_V110"))

	if got := DetectSave(rom); got != KindFlash128K {
		t.Fatalf("DetectSave = %v, want KindFlash128K", got)
	}
}

// EEPROM_V picks the 8 KiB (14-bit) variant for large ROMs and the
// 512 B (6-bit) variant otherwise.
func TestDetectSave_EEPROMSizeSplit(t *testing.T) {
	small := romWithMarker("EEPROM_V120", 1024)
	if got := DetectSave(small); got != KindEEPROM512 {
		t.Fatalf("small ROM DetectSave = %v, want KindEEPROM512", got)
	}

	large := romWithMarker("EEPROM_V120", eepromSizeThreshold+1024)
	if got := DetectSave(large); got != KindEEPROM8K {
		t.Fatalf("large ROM DetectSave = %v, want KindEEPROM8K", got)
	}
}
