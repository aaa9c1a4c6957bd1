package bus

import "testing"

func newTestBus() *Bus {
	return New(nil)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus()
	b.Write(0x0000, 0x42)
	if got := b.Read(0x0800); got != 0x42 {
		t.Errorf("expected $0800 to mirror $0000, got %#02x", got)
	}
	if got := b.Read(0x1800); got != 0x42 {
		t.Errorf("expected $1800 to mirror $0000, got %#02x", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b := newTestBus()
	// $2003/$2004 are OAMADDR/OAMDATA; $300B/$300C are the same two
	// registers mirrored ($300B%8==3, $300C%8==4).
	b.Write(0x300B, 0x05) // OAMADDR = 5, via the mirror
	b.Write(0x300C, 0x77) // OAMDATA, via the mirror

	b.Write(0x2003, 0x05) // OAMADDR = 5 again, direct address
	if got := b.Read(0x2004); got != 0x77 {
		t.Errorf("expected mirrored OAMADDR/OAMDATA writes to reach the real registers, got %#02x", got)
	}
}

func TestOAMDMAStallsCPUForCorrectCycleCount(t *testing.T) {
	b := newTestBus()
	b.Reset()

	start := b.CPU.TotalCycles()
	b.TriggerOAMDMA(0x02)
	if b.dmaCycles != 513 && b.dmaCycles != 514 {
		t.Fatalf("expected 513 or 514 stall cycles, got %d", b.dmaCycles)
	}
	stall := b.dmaCycles

	for i := 0; i < stall*3; i++ {
		b.Tick()
	}
	if got := b.CPU.TotalCycles(); got != start {
		t.Errorf("expected CPU cycle count unchanged during DMA stall, start=%d got=%d", start, got)
	}

	// One more master-tick triple should resume normal CPU ticking.
	b.Tick()
	b.Tick()
	b.Tick()
	if got := b.CPU.TotalCycles(); got == start {
		t.Error("expected CPU to resume ticking once the DMA stall elapsed")
	}
}

func TestOAMDMACopiesFromRAMPage(t *testing.T) {
	b := newTestBus()
	b.Reset()
	for i := 0; i < 256; i++ {
		b.Write(0x0200+uint16(i), uint8(i))
	}
	b.TriggerOAMDMA(0x02)

	b.Write(0x2003, 0x00) // OAMADDR = 0
	if got := b.Read(0x2004); got != 0 {
		t.Errorf("expected OAM[0]=0x00, got %#02x", got)
	}
	b.Write(0x2003, 0x10)
	if got := b.Read(0x2004); got != 0x10 {
		t.Errorf("expected OAM[0x10]=0x10, got %#02x", got)
	}
}

func TestControllerStrobeLatchesBothPorts(t *testing.T) {
	b := newTestBus()
	b.Controller1.SetButton(1, true) // ButtonA
	b.Controller2.SetButton(1, true) // ButtonA
	b.Write(0x4016, 0x01)            // strobe high: latch live state
	b.Write(0x4016, 0x00)            // strobe low: reset shift index

	if got := b.Read(0x4016); got != 1 {
		t.Errorf("expected first controller read to return pressed A button, got %#02x", got)
	}
	if got := b.Read(0x4017); got != 1 {
		t.Errorf("expected first controller 2 read to return pressed A button, got %#02x", got)
	}
}
