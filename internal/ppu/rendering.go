package ppu

import "nesgo/internal/cartridge"

// backgroundPixel computes the background pixel at screen column
// screenX using the current v/t/fine-x scroll state directly, rather
// than a hardware-style shift-register pipeline. When fine-x scroll
// pushes the sample past the current tile's 8 columns, a local copy of
// v is advanced to the next tile instead of mutating p.v itself -
// mutating the real scroll register here would desynchronize it from
// the dot-driven coarse-X increments that happen elsewhere in Step.
func (p *PPU) backgroundPixel(screenX int) (colorIndex uint8, paletteIndex uint8, opaque bool) {
	if !p.mask.BackgroundEnable {
		return 0, 0, false
	}

	col := screenX%8 + int(p.fineX)
	useV := p.v
	if col >= 8 {
		col -= 8
		useV = incCoarseX(p.v)
	}

	tileAddr := 0x2000 | (useV & 0x0FFF)
	tileIndex := p.busRead(tileAddr)

	coarseX := useV & 0x001F
	coarseY := (useV >> 5) & 0x001F
	attrAddr := 0x23C0 | (useV & 0x0C00) | ((useV >> 4) & 0x38) | ((useV >> 2) & 0x07)
	attrByte := p.busRead(attrAddr)
	shift := ((coarseY & 0x02) << 1) | (coarseX & 0x02)
	palIdx := (attrByte >> shift) & 0x03

	fineY := (useV >> 12) & 0x07
	var base uint16
	if p.ctrl.BackgroundPatternTable == 1 {
		base = 0x1000
	}
	patAddr := base + uint16(tileIndex)*16 + fineY
	lo := p.busRead(patAddr)
	hi := p.busRead(patAddr + 8)

	bit := 7 - col
	c := (hi>>uint(bit))&1<<1 | (lo>>uint(bit))&1
	return c, uint8(palIdx), c != 0
}

// renderPixel composes the background and sprite layers for screenX on
// the current scanline, applies the left-column clipping masks and
// sprite-0-hit detection, and writes the resolved palette-RAM entry to
// the frame sink.
func (p *PPU) renderPixel(screenX int) {
	bgColor, bgPal, bgOpaqueRaw := p.backgroundPixel(screenX)
	spColor, spAttr, spIsZero, spFoundRaw := p.spritePixel(screenX)
	if !p.mask.SpriteEnable {
		spFoundRaw = false
	}

	clippedColumn := screenX < 8
	bgClipped := clippedColumn && !p.mask.BackgroundLeftColumnEnable
	spClipped := clippedColumn && !p.mask.SpriteLeftColumnEnable

	bgOpaque := bgOpaqueRaw && !bgClipped
	spFound := spFoundRaw && !spClipped

	if spFoundRaw && bgOpaqueRaw && spIsZero && p.mask.BackgroundEnable && p.mask.SpriteEnable &&
		screenX != 255 && p.scanline < 239 && !bgClipped && !spClipped {
		p.status.Sprite0Hit = true
	}

	var addr uint16
	switch {
	case spFound && bgOpaque:
		if spAttr&0x20 == 0 { // priority: 0 = sprite in front of background
			addr = 0x3F10 + uint16(spAttr&0x03)*4 + uint16(spColor)
		} else {
			addr = 0x3F00 + uint16(bgPal)*4 + uint16(bgColor)
		}
	case spFound:
		addr = 0x3F10 + uint16(spAttr&0x03)*4 + uint16(spColor)
	case bgOpaque:
		addr = 0x3F00 + uint16(bgPal)*4 + uint16(bgColor)
	default:
		addr = 0x3F00
	}

	if p.sink != nil {
		p.sink.PutPixel(screenX, p.scanline, p.paletteRead(addr)&0x3F)
	}
}

func paletteIndex(addr uint16) int {
	a := int(addr) & 0x1F
	if a >= 0x10 && a%4 == 0 {
		a -= 0x10
	}
	return a
}

func (p *PPU) paletteRead(addr uint16) uint8  { return p.palette[paletteIndex(addr)] }
func (p *PPU) paletteWrite(addr uint16, v uint8) { p.palette[paletteIndex(addr)] = v }

// mirrorNametableAddr resolves a $2000-$3EFF PPU-bus address into an
// offset within the 2KiB of on-console nametable RAM, honoring the
// cartridge's mirroring mode.
func (p *PPU) mirrorNametableAddr(addr uint16) int {
	local := int(addr-0x2000) % 0x1000
	table := local / 0x400
	offset := local % 0x400

	mirror := cartridge.MirrorHorizontal
	if p.chrBus != nil {
		mirror = p.chrBus.Mirror()
	}

	var physical int
	switch mirror {
	case cartridge.MirrorHorizontal:
		physical = table / 2
	case cartridge.MirrorVertical:
		physical = table % 2
	case cartridge.MirrorSingleScreen0:
		physical = 0
	case cartridge.MirrorSingleScreen1:
		physical = 1
	}
	return physical*0x400 + offset
}

func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.chrBus == nil {
			return 0
		}
		return p.chrBus.PPURead(addr)
	case addr < 0x3F00:
		return p.nametable[p.mirrorNametableAddr(addr)]
	default:
		return p.paletteRead(addr)
	}
}

func (p *PPU) busWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.chrBus != nil {
			p.chrBus.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		p.nametable[p.mirrorNametableAddr(addr)] = value
	default:
		p.paletteWrite(addr, value)
	}
}
