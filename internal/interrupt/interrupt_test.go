package interrupt

import "testing"

func TestPending_RequiresIMEAndUnmaskedSource(t *testing.T) {
	c := NewController()
	c.Request(VBlank)

	if c.Pending() {
		t.Fatalf("Pending() true before IME or IE are set")
	}

	c.SetIE(uint16(VBlank))
	if c.Pending() {
		t.Fatalf("Pending() true before IME is set")
	}

	c.SetIME(true)
	if !c.Pending() {
		t.Fatalf("Pending() false with IME set, IE and IF matching on VBlank")
	}
}

func TestPending_MaskedSourceDoesNotCountEvenIfPending(t *testing.T) {
	c := NewController()
	c.SetIME(true)
	c.SetIE(uint16(Timer0))
	c.Request(VBlank)

	if c.Pending() {
		t.Fatalf("Pending() true for a source not enabled in IE")
	}
}

// Request latches IF unconditionally, regardless of IE/IME.
func TestRequest_LatchesRegardlessOfMaskState(t *testing.T) {
	c := NewController()
	c.Request(DMA2)

	if c.IF()&uint16(DMA2) == 0 {
		t.Fatalf("IF did not latch DMA2 request")
	}
}

// SetIF (and WriteIFLo/Hi) use write-1-to-clear: a 0 bit leaves the
// corresponding pending flag untouched.
func TestSetIF_WriteOneToClear(t *testing.T) {
	c := NewController()
	c.Request(VBlank)
	c.Request(HBlank)

	c.SetIF(uint16(VBlank))

	if c.IF()&uint16(VBlank) != 0 {
		t.Fatalf("VBlank still pending after acknowledging it")
	}
	if c.IF()&uint16(HBlank) == 0 {
		t.Fatalf("HBlank cleared by an ack that didn't target it")
	}
}

func TestWriteIFLoHi_AcknowledgeByByte(t *testing.T) {
	c := NewController()
	c.Request(Keypad) // bit 12, in the high byte

	c.WriteIFHi(uint8(uint16(Keypad) >> 8))

	if c.IF() != 0 {
		t.Fatalf("IF = %#x, want 0 after acking the high byte", c.IF())
	}
}

func TestWriteIELoHi_RoundTrip(t *testing.T) {
	c := NewController()
	c.WriteIELo(0xAA)
	c.WriteIEHi(0x01)

	if c.IE() != 0x01AA {
		t.Fatalf("IE = %#x, want 0x01AA", c.IE())
	}
	if c.ReadIELo() != 0xAA || c.ReadIEHi() != 0x01 {
		t.Fatalf("ReadIELo/Hi = %#x/%#x, want 0xAA/0x01", c.ReadIELo(), c.ReadIEHi())
	}
}

func TestWriteIMELo_OnlyBit0Matters(t *testing.T) {
	c := NewController()
	c.WriteIMELo(0xFE) // bit 0 clear

	if c.ReadIMELo() != 0 {
		t.Fatalf("IME set by a write with bit 0 clear")
	}

	c.WriteIMELo(0x01)
	if c.ReadIMELo() != 1 {
		t.Fatalf("IME not set by a write with bit 0 set")
	}
}
