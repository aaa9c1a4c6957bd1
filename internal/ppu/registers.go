package ppu

// Ctrl holds the PPUCTRL ($2000) bits unpacked into named fields rather
// than a raw byte, so the scroll-nametable-select and pattern-table
// selections read as what they mean instead of a bit mask at every call
// site.
type Ctrl struct {
	NametableSelect   uint8 // 0-3, also mirrored into t bits 10-11 on write
	VRAMIncrement32   bool  // false: +1 per $2007 access, true: +32
	SpritePatternTable uint8 // 0 or 1, ignored in 8x16 sprite mode
	BackgroundPatternTable uint8 // 0 or 1
	SpriteHeight16    bool
	NMIEnable         bool
}

func (c *Ctrl) Unpack(v uint8) {
	c.NametableSelect = v & 0x03
	c.VRAMIncrement32 = v&0x04 != 0
	c.SpritePatternTable = (v >> 3) & 1
	c.BackgroundPatternTable = (v >> 4) & 1
	c.SpriteHeight16 = v&0x20 != 0
	c.NMIEnable = v&0x80 != 0
}

func (c *Ctrl) Pack() uint8 {
	var v uint8
	v |= c.NametableSelect & 0x03
	if c.VRAMIncrement32 {
		v |= 0x04
	}
	v |= c.SpritePatternTable << 3
	v |= c.BackgroundPatternTable << 4
	if c.SpriteHeight16 {
		v |= 0x20
	}
	if c.NMIEnable {
		v |= 0x80
	}
	return v
}

// Mask holds the PPUMASK ($2001) bits.
type Mask struct {
	Greyscale              bool
	BackgroundLeftColumnEnable bool
	SpriteLeftColumnEnable bool
	BackgroundEnable       bool
	SpriteEnable           bool
	EmphasizeRed           bool
	EmphasizeGreen         bool
	EmphasizeBlue          bool
}

func (m *Mask) Unpack(v uint8) {
	m.Greyscale = v&0x01 != 0
	m.BackgroundLeftColumnEnable = v&0x02 != 0
	m.SpriteLeftColumnEnable = v&0x04 != 0
	m.BackgroundEnable = v&0x08 != 0
	m.SpriteEnable = v&0x10 != 0
	m.EmphasizeRed = v&0x20 != 0
	m.EmphasizeGreen = v&0x40 != 0
	m.EmphasizeBlue = v&0x80 != 0
}

func (m *Mask) Pack() uint8 {
	var v uint8
	if m.Greyscale {
		v |= 0x01
	}
	if m.BackgroundLeftColumnEnable {
		v |= 0x02
	}
	if m.SpriteLeftColumnEnable {
		v |= 0x04
	}
	if m.BackgroundEnable {
		v |= 0x08
	}
	if m.SpriteEnable {
		v |= 0x10
	}
	if m.EmphasizeRed {
		v |= 0x20
	}
	if m.EmphasizeGreen {
		v |= 0x40
	}
	if m.EmphasizeBlue {
		v |= 0x80
	}
	return v
}

func (m *Mask) RenderingEnabled() bool {
	return m.BackgroundEnable || m.SpriteEnable
}

// Status holds the PPUSTATUS ($2002) bits. Bits 0-4 are open bus on real
// hardware; this core treats them as always 0 rather than modeling a
// floating data bus.
type Status struct {
	SpriteOverflow bool
	Sprite0Hit     bool
	VBlank         bool
}

func (s *Status) Pack() uint8 {
	var v uint8
	if s.SpriteOverflow {
		v |= 0x20
	}
	if s.Sprite0Hit {
		v |= 0x40
	}
	if s.VBlank {
		v |= 0x80
	}
	return v
}
