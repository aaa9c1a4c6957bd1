package ppu

import "testing"

func stepN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

func TestVBlankSetsAtScanline241Dot1(t *testing.T) {
	p := New(nil, nil)
	p.ctrl.NMIEnable = true

	var nmiEvents []bool
	p.SetNMICallback(func(asserted bool) { nmiEvents = append(nmiEvents, asserted) })

	// Advance to scanline 241, dot 1: 241 full scanlines (0..240) of 341
	// dots each, plus one more dot.
	stepN(p, 241*341+1)

	if !p.status.VBlank {
		t.Fatal("expected VBlank flag set at scanline 241 dot 1")
	}
	if len(nmiEvents) != 1 || !nmiEvents[0] {
		t.Fatalf("expected a single NMI assertion event, got %v", nmiEvents)
	}
}

func TestVBlankClearsAtPreRenderDot1(t *testing.T) {
	p := New(nil, nil)
	stepN(p, 241*341+1)
	if !p.status.VBlank {
		t.Fatal("setup: expected VBlank set")
	}
	// From scanline 241 dot 1 to scanline 261 dot 1 is 20 full scanlines.
	stepN(p, 20*341)
	if p.status.VBlank {
		t.Fatal("expected VBlank cleared at pre-render dot 1")
	}
}

func TestPPUSTATUSReadAtDot0SuppressesVBlankAndNMI(t *testing.T) {
	p := New(nil, nil)
	p.ctrl.NMIEnable = true
	var nmiEvents []bool
	p.SetNMICallback(func(asserted bool) { nmiEvents = append(nmiEvents, asserted) })

	// Land exactly on scanline 241, dot 0.
	stepN(p, 241*341)
	if p.scanline != 241 || p.dot != 0 {
		t.Fatalf("setup: expected scanline 241 dot 0, got scanline=%d dot=%d", p.scanline, p.dot)
	}

	result := p.ReadRegister(2)
	if result&0x80 != 0 {
		t.Error("expected vblank bit forced to 0 on the race read")
	}

	// Advance past dot 1, where VBlank would normally be set.
	stepN(p, 2)
	if p.status.VBlank {
		t.Error("expected VBlank to stay suppressed for the rest of the frame")
	}
	for _, asserted := range nmiEvents {
		if asserted {
			t.Error("expected no NMI assertion this frame after the dot-0 race read")
		}
	}
}

func TestPPUSTATUSReadAtDot1ReadsSetButSuppressesNMI(t *testing.T) {
	p := New(nil, nil)
	p.ctrl.NMIEnable = true
	var nmiEvents []bool
	p.SetNMICallback(func(asserted bool) { nmiEvents = append(nmiEvents, asserted) })

	stepN(p, 241*341+1) // land on scanline 241 dot 1
	if !p.status.VBlank {
		t.Fatal("setup: expected VBlank already set at dot 1")
	}

	result := p.ReadRegister(2)
	if result&0x80 == 0 {
		t.Error("expected the read at dot 1 to still observe VBlank set")
	}
	if len(nmiEvents) < 2 || nmiEvents[len(nmiEvents)-1] != false {
		t.Errorf("expected the race read to retract the NMI assertion, events=%v", nmiEvents)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := New(nil, nil)
	p.paletteWrite(0x3F00, 0x10)
	if got := p.paletteRead(0x3F10); got != 0x10 {
		t.Errorf("expected $3F10 to mirror $3F00, got %02x", got)
	}
	p.paletteWrite(0x3F15, 0x22)
	if got := p.paletteRead(0x3F15); got != 0x22 {
		t.Errorf("expected non-mirrored sprite palette entry to hold its own value, got %02x", got)
	}
	if got := p.paletteRead(0x3F05); got == 0x22 {
		t.Error("expected sprite sub-index 1 palette entry not to alias the background entry")
	}
}

func TestIncrementCoarseXWrapsAndTogglesNametable(t *testing.T) {
	v := uint16(31) // coarse X at max, nametable-X bit clear
	v = incCoarseX(v)
	if v&0x001F != 0 {
		t.Errorf("expected coarse X to wrap to 0, got %d", v&0x1F)
	}
	if v&0x0400 == 0 {
		t.Error("expected nametable-X bit to toggle on coarse-X wrap")
	}
}

func TestOddFrameSkipsIdleDot(t *testing.T) {
	p := New(nil, nil)
	p.mask.BackgroundEnable = true
	// Advance to the end of the first (even) frame, scanline 261 dot 340.
	stepN(p, 262*341-1)
	if p.scanline != 261 || p.dot != 340 {
		t.Fatalf("setup: expected scanline 261 dot 340, got scanline=%d dot=%d", p.scanline, p.dot)
	}
	p.Step() // wraps into the new frame; previous frame was even, no skip
	if p.scanline != 0 || p.dot != 0 {
		t.Fatalf("expected even-frame wrap to land on dot 0, got scanline=%d dot=%d", p.scanline, p.dot)
	}

	// Run through an entire odd frame and check the wrap at its end skips dot 0.
	stepN(p, 262*341-1)
	if p.scanline != 261 || p.dot != 340 {
		t.Fatalf("setup2: expected scanline 261 dot 340, got scanline=%d dot=%d", p.scanline, p.dot)
	}
	p.Step()
	if p.scanline != 0 || p.dot != 1 {
		t.Fatalf("expected odd-frame wrap to skip dot 0, got scanline=%d dot=%d", p.scanline, p.dot)
	}
}
