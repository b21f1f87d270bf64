package rom

import "testing"

func makeROM(title, gameCode, makerCode string, version uint8) []byte {
	data := make([]byte, HeaderSize)
	copy(data[titleOffset:], title)
	copy(data[gameCodeOffset:], gameCode)
	copy(data[makerCodeOffset:], makerCode)
	data[versionOffset] = version
	data[checksumOffset] = headerChecksum(data)
	return data
}

func TestParse_FieldsAndChecksum(t *testing.T) {
	data := makeROM("MYGAME", "ABCD", "01", 0)
	h, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if h.Title != "MYGAME" {
		t.Fatalf("Title = %q, want %q", h.Title, "MYGAME")
	}
	if h.GameCode != "ABCD" {
		t.Fatalf("GameCode = %q, want %q", h.GameCode, "ABCD")
	}
	if h.MakerCode != "01" {
		t.Fatalf("MakerCode = %q, want %q", h.MakerCode, "01")
	}
	if h.Checksum != data[checksumOffset] {
		t.Fatalf("Checksum = %#x, want stored byte %#x", h.Checksum, data[checksumOffset])
	}
}

func TestParse_TooShortReturnsError(t *testing.T) {
	_, err := Parse(make([]byte, HeaderSize-1))
	if err == nil {
		t.Fatalf("expected an error for a too-short image")
	}
}

// A bad checksum byte does not prevent parsing from succeeding; the
// computed value is exposed separately.
func TestParse_BadChecksumStillParses(t *testing.T) {
	data := makeROM("BADSUM", "EFGH", "02", 1)
	data[checksumOffset] ^= 0xFF

	h, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error on bad checksum: %v", err)
	}
	if h.Checksum == data[checksumOffset] {
		t.Fatalf("computed checksum unexpectedly matches the corrupted stored byte")
	}
}

func TestParse_TitleTrimsTrailingNulls(t *testing.T) {
	data := makeROM("SHORT", "IJKL", "03", 2)
	h, _ := Parse(data)
	if h.Title != "SHORT" {
		t.Fatalf("Title = %q, want %q (trailing NULs trimmed)", h.Title, "SHORT")
	}
}
