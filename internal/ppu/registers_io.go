package ppu

// WriteRegister services a CPU write to one of the eight PPU registers
// mirrored across $2000-$2007 (reg is already addr%8, resolved by the
// bus's address decoder).
func (p *PPU) WriteRegister(reg uint8, value uint8) {
	p.trace.Tracef("reg=%d value=%#02x scanline=%d dot=%d", reg, value, p.scanline, p.dot)
	switch reg {
	case 0: // PPUCTRL
		p.ctrl.Unpack(value)
		p.t = (p.t &^ 0x0C00) | (uint16(value&0x03) << 10)
	case 1: // PPUMASK
		p.mask.Unpack(value)
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		if !p.w {
			p.fineX = value & 0x07
			p.t = (p.t &^ 0x001F) | uint16(value>>3)
		} else {
			p.t = (p.t &^ 0x73E0) | (uint16(value&0x07) << 12) | (uint16(value&0xF8) << 2)
		}
		p.w = !p.w
	case 6: // PPUADDR
		if !p.w {
			p.t = (p.t &^ 0x7F00) | (uint16(value&0x3F) << 8)
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(value)
			p.v = p.t
		}
		p.w = !p.w
	case 7: // PPUDATA
		p.busWrite(p.v, value)
		p.v += p.vramIncrement()
	}
}

// ReadRegister services a CPU read of one of the eight PPU registers.
func (p *PPU) ReadRegister(reg uint8) uint8 {
	switch reg {
	case 2: // PPUSTATUS
		return p.readStatus()
	case 4: // OAMDATA
		return p.oam[p.oamAddr]
	case 7: // PPUDATA
		return p.readData()
	}
	return 0
}

// readStatus implements the documented PPUSTATUS read-vblank race: a
// read landing on the dot just before the flag would be set (scanline 241,
// dot 0) forces the returned bit to 0 and suppresses NMI for the rest
// of the frame; a read one or two dots later still sees the flag set
// but still suppresses the NMI that would otherwise fire this frame.
func (p *PPU) readStatus() uint8 {
	result := p.status.Pack()
	if p.scanline == 241 {
		switch p.dot {
		case 0:
			result &^= 0x80
			p.vblankSuppressedThisFrame = true
			p.setNMILine(false)
		case 1, 2:
			p.setNMILine(false)
		}
	}
	p.status.VBlank = false
	p.w = false
	return result
}

func (p *PPU) readData() uint8 {
	var result uint8
	if p.v < 0x3F00 {
		result = p.readBuffer
		p.readBuffer = p.busRead(p.v)
	} else {
		result = p.paletteRead(p.v)
		p.readBuffer = p.busRead(p.v - 0x1000)
	}
	p.v += p.vramIncrement()
	return result
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl.VRAMIncrement32 {
		return 32
	}
	return 1
}

// WriteOAMByte services a direct $4014 OAM-DMA byte write at the PPU's
// current oamAddr, advancing oamAddr as OAMDATA writes do.
func (p *PPU) WriteOAMByte(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}
