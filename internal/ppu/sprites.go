package ppu

// spriteEntry is a secondary-OAM sprite latched for rendering on the
// upcoming scanline.
type spriteEntry struct {
	x         uint8
	y         uint8
	tile      uint8
	attr      uint8
	oamIndex  int // index into primary OAM, used for sprite-0 detection
}

const maxSpritesPerScanline = 8

// clearSecondaryOAM fills secondary OAM with $FF, matching the hardware
// behavior at dots 1-64 of each visible/pre-render scanline.
func (p *PPU) clearSecondaryOAM() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	p.renderSpriteCount = 0
	p.spriteOverflowFound = false
}

// evaluateSprites reproduces the end state of the per-dot sprite
// evaluation that real hardware spreads across dots 65-256: it scans
// primary OAM for sprites whose Y range covers the scanline about to be
// drawn, copies up to eight of them into secondary OAM, and reproduces
// the documented overflow-detection bug where the diagonal scan
// increments both the sprite index and the in-sprite field index
// together even on a miss once eight sprites have already been found.
func (p *PPU) evaluateSprites() {
	targetScanline := p.scanline + 1
	if p.scanline == 261 {
		targetScanline = 0
	}

	height := 8
	if p.ctrl.SpriteHeight16 {
		height = 16
	}

	n := 0
	m := 0 // in-sprite field index; only the overflow search moves it off 0
	found := 0
	for n < 64 {
		y := p.oam[n*4+m]
		row := targetScanline - int(y) - 1
		if row >= 0 && row < height {
			if found < maxSpritesPerScanline {
				base := found * 4
				p.secondaryOAM[base+0] = p.oam[n*4+0]
				p.secondaryOAM[base+1] = p.oam[n*4+1]
				p.secondaryOAM[base+2] = p.oam[n*4+2]
				p.secondaryOAM[base+3] = p.oam[n*4+3]
				p.spriteIndices[found] = uint8(n)
				found++
				n++
				continue
			}
			// Ninth in-range sprite: set the overflow flag.
			p.spriteOverflowFound = true
			break
		}
		n++
		if found == maxSpritesPerScanline {
			// Hardware bug: once eight sprites are found, a miss
			// increments the in-sprite field index along with the
			// sprite index instead of leaving it on the Y byte.
			m = (m + 1) & 3
		}
	}
	p.renderSpriteCount = found
}

// latchSprites converts the raw secondary-OAM bytes gathered by
// evaluateSprites into the renderSprites slice used during pixel
// composition, and applies the sprite-overflow flag gathered this
// evaluation pass.
func (p *PPU) latchSprites() {
	for i := 0; i < p.renderSpriteCount; i++ {
		base := i * 4
		p.renderSprites[i] = spriteEntry{
			y:        p.secondaryOAM[base+0],
			tile:     p.secondaryOAM[base+1],
			attr:     p.secondaryOAM[base+2],
			x:        p.secondaryOAM[base+3],
			oamIndex: int(p.spriteIndices[i]),
		}
	}
	if p.spriteOverflowFound {
		p.status.SpriteOverflow = true
	}
}

// spritePixel returns the first (highest-priority) opaque sprite pixel
// covering screenX on the current scanline, if any.
func (p *PPU) spritePixel(screenX int) (colorIndex uint8, attr uint8, isSpriteZero bool, opaque bool) {
	height := 8
	if p.ctrl.SpriteHeight16 {
		height = 16
	}
	for i := 0; i < p.renderSpriteCount; i++ {
		s := p.renderSprites[i]
		spriteX := int(s.x)
		if screenX < spriteX || screenX >= spriteX+8 {
			continue
		}
		col := screenX - spriteX
		flipH := s.attr&0x40 != 0
		flipV := s.attr&0x80 != 0

		row := p.scanline - int(s.y) - 1
		if row < 0 || row >= height {
			continue
		}
		if flipV {
			row = height - 1 - row
		}

		var patternBase uint16
		var tileIndex uint16
		if height == 16 {
			patternBase = uint16(s.tile&1) * 0x1000
			tileIndex = uint16(s.tile &^ 1)
			if row >= 8 {
				tileIndex++
				row -= 8
			}
		} else {
			if p.ctrl.SpritePatternTable == 1 {
				patternBase = 0x1000
			}
			tileIndex = uint16(s.tile)
		}

		patAddr := patternBase + tileIndex*16 + uint16(row)
		lo := p.busRead(patAddr)
		hi := p.busRead(patAddr + 8)

		bit := 7 - col
		if flipH {
			bit = col
		}
		c := (hi>>bit)&1<<1 | (lo>>bit)&1
		if c == 0 {
			continue
		}
		return c, s.attr, s.oamIndex == 0, true
	}
	return 0, 0, false, false
}
