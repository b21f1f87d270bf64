// Package rom parses the GBA cartridge header (spec.md §6): a flat
// byte image with a fixed-offset header at 0xA0, no length prefix or
// magic number beyond what that header contains.
package rom

import (
	"bytes"
	"fmt"

	"GoBA/util/dbg"
)

const (
	// HeaderSize is the minimum size a ROM image must have for its
	// header fields to be addressable at all.
	HeaderSize = 0xC0

	titleOffset     = 0xA0
	titleSize       = 12
	gameCodeOffset  = 0xAC
	gameCodeSize    = 4
	makerCodeOffset = 0xB0
	makerCodeSize   = 2
	versionOffset   = 0xBC

	checksumRangeStart = 0xA0
	checksumRangeEnd   = 0xBD // exclusive
	checksumOffset     = 0xBD
)

// Header holds the fields of the cartridge header a frontend or save
// auto-detector cares about.
type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	Version   uint8

	// Checksum is the header checksum byte this module computed from
	// the ROM image itself (not the byte stored at 0xBD).
	Checksum uint8
}

// headerChecksum reproduces the BIOS boot check: the one-byte
// complement of the sum of header bytes 0xA0..0xBC, minus 0x19.
func headerChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data[checksumRangeStart:checksumRangeEnd] {
		sum -= b
	}
	return sum - 0x19
}

// Parse reads the header out of a ROM image. It returns an error if
// the image is too short to contain one (spec.md §6/§7: "ROM load
// failures ... surface as a single error kind to the frontend").
//
// A checksum mismatch is not an error: real emulators boot plenty of
// ROM hacks and prototypes with a bad checksum byte, so this only logs
// a warning for diagnostics rather than rejecting the load.
func Parse(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("rom: image is %d bytes, need at least %d for a header", len(data), HeaderSize)
	}
	title := data[titleOffset : titleOffset+titleSize]
	gameCode := data[gameCodeOffset : gameCodeOffset+gameCodeSize]
	makerCode := data[makerCodeOffset : makerCodeOffset+makerCodeSize]

	checksum := headerChecksum(data)
	if stored := data[checksumOffset]; stored != checksum {
		dbg.Printf("rom: header checksum mismatch: computed %#02x, stored %#02x\n", checksum, stored)
	}

	return Header{
		Title:     string(bytes.TrimRight(title, "\x00")),
		GameCode:  string(gameCode),
		MakerCode: string(makerCode),
		Version:   data[versionOffset],
		Checksum:  checksum,
	}, nil
}
