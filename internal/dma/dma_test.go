package dma

import "testing"

// S6: channel 0, immediate timing, 10 halfwords, source/dest increment,
// IRQ on completion. Step should drain the whole transfer in one call,
// report completion via the IRQ mask, and leave the channel disabled
// (repeat not set).
func TestScenario_ImmediateHalfwordCopy(t *testing.T) {
	c := NewController()
	ch := &c.Channels[0]

	ch.SetSource(0, 0x02000000)
	ch.SetDest(0, 0x02001000)
	ch.Count = 10
	// DestCtl=Inc(0), SrcCtl=Inc(0), Repeat=0, Width32=0, Timing=Immediate(0), IRQ=1, Enabled=1
	ch.SetControl(0, 1<<14|1<<15)

	src := make(map[uint32]uint16)
	for i := uint32(0); i < 10; i++ {
		src[0x02000000+i*2] = uint16(0x1000 + i)
	}
	dst := make(map[uint32]uint16)
	transferCount := 0
	transfer := func(d, s uint32, width32 bool) {
		transferCount++
		if width32 {
			t.Fatalf("expected halfword transfer, got word")
		}
		dst[d] = src[s]
	}

	c.Trigger(TimingImmediate)
	irq := c.Step(transfer)

	if transferCount != 10 {
		t.Fatalf("transferCount = %d, want 10", transferCount)
	}
	for i := uint32(0); i < 10; i++ {
		addr := 0x02001000 + i*2
		if dst[addr] != uint16(0x1000+i) {
			t.Fatalf("dst[%#x] = %#x, want %#x", addr, dst[addr], 0x1000+i)
		}
	}
	if irq != 1<<8 {
		t.Fatalf("irq mask = %#x, want bit 8 set", irq)
	}
	if ch.Enabled {
		t.Fatalf("channel still enabled after a non-repeat transfer")
	}
	if ch.active {
		t.Fatalf("channel still active after completion")
	}
}

// A channel whose timing doesn't match the trigger stays inactive and
// Step is a no-op.
func TestTrigger_TimingMismatchDoesNotActivate(t *testing.T) {
	c := NewController()
	ch := &c.Channels[1]
	ch.SetSource(1, 0x02000000)
	ch.SetDest(1, 0x02001000)
	ch.Count = 4
	ch.SetControl(1, 2<<12|1<<15) // Timing=HBlank, Enabled

	c.Trigger(TimingVBlank)

	called := false
	irq := c.Step(func(dst, src uint32, width32 bool) { called = true })

	if called {
		t.Fatalf("transfer ran for a channel whose timing does not match the trigger")
	}
	if irq != 0 {
		t.Fatalf("irq = %#x, want 0", irq)
	}
}

// Channel 0-2 addresses are masked to 0x07FFFFFF; channel 3 to 0x0FFFFFFF.
func TestSetSource_AddressMaskingPerChannel(t *testing.T) {
	c := NewController()

	c.Channels[0].SetSource(0, 0x09000000)
	if c.Channels[0].Source != 0x09000000&0x07FFFFFF {
		t.Fatalf("channel 0 source = %#x, want masked to 0x07FFFFFF", c.Channels[0].Source)
	}

	c.Channels[3].SetSource(3, 0x09000000)
	if c.Channels[3].Source != 0x09000000&0x0FFFFFFF {
		t.Fatalf("channel 3 source = %#x, want masked to 0x0FFFFFFF", c.Channels[3].Source)
	}
}

// A count of 0 on enable means max count (0x4000 for channels 0-2,
// 0x10000 for channel 3).
func TestSetControl_ZeroCountMeansMax(t *testing.T) {
	c := NewController()
	ch := &c.Channels[1]
	ch.Count = 0
	ch.SetControl(1, 1<<15)
	if ch.internalCount != 0x4000 {
		t.Fatalf("internalCount = %#x, want 0x4000", ch.internalCount)
	}

	ch3 := &c.Channels[3]
	ch3.Count = 0
	ch3.SetControl(3, 1<<15)
	if ch3.internalCount != 0x10000 {
		t.Fatalf("internalCount = %#x, want 0x10000", ch3.internalCount)
	}
}

// Repeat transfers reload the count (and, for DestIncReload, the
// destination) instead of disabling the channel.
func TestRunChannel_RepeatReloadsCount(t *testing.T) {
	c := NewController()
	ch := &c.Channels[2]
	ch.SetSource(2, 0x02000000)
	ch.SetDest(2, 0x06000000)
	ch.Count = 4
	// DestCtl=IncReload(3), Repeat=1, Enabled=1
	v := uint16(3)<<5 | 1<<9 | 1<<15
	ch.SetControl(2, v)

	c.Trigger(TimingImmediate)
	c.Step(func(dst, src uint32, width32 bool) {})

	if !ch.Enabled {
		t.Fatalf("repeat channel was disabled after completion")
	}
	if ch.internalCount != 4 {
		t.Fatalf("internalCount = %d, want reloaded to 4", ch.internalCount)
	}
	if ch.internalDest != 0x06000000 {
		t.Fatalf("internalDest = %#x, want reloaded to 0x06000000", ch.internalDest)
	}
}
