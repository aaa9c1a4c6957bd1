// Package ppu implements the NES Picture Processing Unit (2C02): the
// 262x341 scanline/dot state machine, the v/t/fine-x scroll internals,
// sprite evaluation, and background+sprite pixel composition.
package ppu

import (
	"nesgo/internal/cartridge"
	"nesgo/internal/logging"
	"nesgo/internal/video"
)

// CHRBus is the PPU's view of the cartridge: pattern-table access and
// the active nametable mirroring mode. Routing through an interface
// rather than a concrete *cartridge.Cartridge keeps this package from
// depending on cartridge construction details, mirroring the way the
// CPU package only knows about its Bus interface.
type CHRBus interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	Mirror() cartridge.MirrorMode
}

// PPU is the NES picture processing unit. Scanlines run 0-261 (240 is
// the post-render line, 241 the first vblank line, 261 is pre-render) and
// dots run 0-340,
// matching the numbering spec'd by the hardware rather than the
// signed -1-based indexing some emulators use for the pre-render line.
type PPU struct {
	ctrl   Ctrl
	mask   Mask
	status Status

	oamAddr uint8

	v, t uint16
	fineX uint8
	w     bool

	readBuffer uint8

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	nametable [0x800]uint8
	palette   [32]uint8
	oam       [256]uint8

	secondaryOAM         [32]uint8
	spriteIndices        [8]uint8
	renderSpriteCount    int
	renderSprites        [8]spriteEntry
	spriteOverflowFound  bool

	vblankSuppressedThisFrame bool

	chrBus CHRBus
	sink   video.FrameSink

	nmiCallback func(asserted bool)

	trace *logging.Logger
}

// New creates a PPU wired to the given cartridge CHR/mirroring view and
// frame sink. chrBus and sink may be nil for unit tests that only
// exercise register/timing logic.
func New(chrBus CHRBus, sink video.FrameSink) *PPU {
	return &PPU{
		chrBus:   chrBus,
		sink:     sink,
		scanline: 0,
		dot:      0,
	}
}

// SetTraceLogger attaches an optional register-write trace logger; nil
// disables tracing.
func (p *PPU) SetTraceLogger(l *logging.Logger) {
	p.trace = l
}

// SetNMICallback registers the function invoked whenever the PPU's NMI
// output line changes. Called with true when the line asserts (entering
// vblank with PPUCTRL.NMIEnable set), false when it deasserts (leaving
// vblank, or a PPUSTATUS-read race suppressing the current frame).
func (p *PPU) SetNMICallback(cb func(asserted bool)) {
	p.nmiCallback = cb
}

// Reset returns the PPU to its power-on state.
func (p *PPU) Reset() {
	p.ctrl = Ctrl{}
	p.mask = Mask{}
	p.status = Status{}
	p.oamAddr = 0
	p.v, p.t, p.fineX, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.scanline, p.dot, p.frame, p.oddFrame = 0, 0, 0, false
	p.vblankSuppressedThisFrame = false
	p.renderSpriteCount = 0
}

// Frame reports the number of frames completed so far.
func (p *PPU) Frame() uint64 { return p.frame }

// Step advances the PPU by exactly one dot and then performs that dot's
// work, so once Step returns the scanline/dot position names a dot whose
// effects (e.g. setting VBlank at scanline 241 dot 1) have already happened.
func (p *PPU) Step() {
	p.advance()
	p.processDot()
}

func (p *PPU) processDot() {
	visible := p.scanline >= 0 && p.scanline <= 239
	preRender := p.scanline == 261
	rendering := p.mask.RenderingEnabled()

	if visible || preRender {
		if rendering {
			if (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336) {
				if p.dot%8 == 0 {
					p.incrementCoarseX()
				}
			}
			if p.dot == 256 {
				p.incrementY()
			}
			if p.dot == 257 {
				p.copyHorizontalBits()
			}
			if preRender && p.dot >= 280 && p.dot <= 304 {
				p.copyVerticalBits()
			}
		}

		if p.dot == 1 {
			p.clearSecondaryOAM()
		}
		if p.dot == 65 {
			p.evaluateSprites()
		}
		if p.dot == 257 {
			p.latchSprites()
			p.oamAddr = 0
		}
	}

	if visible && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel(p.dot - 1)
	}

	if p.scanline == 241 && p.dot == 1 {
		if !p.vblankSuppressedThisFrame {
			p.status.VBlank = true
			if p.ctrl.NMIEnable {
				p.setNMILine(true)
			}
		}
	}
	if preRender && p.dot == 1 {
		p.status.VBlank = false
		p.status.Sprite0Hit = false
		p.status.SpriteOverflow = false
		p.setNMILine(false)
		p.vblankSuppressedThisFrame = false
	}

	if p.scanline == 260 && p.dot == 340 && p.sink != nil {
		p.sink.Present()
	}
}

func (p *PPU) setNMILine(asserted bool) {
	if p.nmiCallback != nil {
		p.nmiCallback(asserted)
	}
}

func (p *PPU) advance() {
	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			wasOdd := p.oddFrame
			p.oddFrame = !p.oddFrame
			p.frame++
			if wasOdd && p.mask.RenderingEnabled() {
				p.dot = 1 // skip the idle dot on odd frames once rendering is on
			}
		}
	}
}

// incrementCoarseX wraps v's coarse-X field, toggling the horizontal
// nametable-select bit on overflow.
func (p *PPU) incrementCoarseX() {
	p.v = incCoarseX(p.v)
}

func incCoarseX(v uint16) uint16 {
	if v&0x001F == 31 {
		return (v &^ 0x001F) ^ 0x0400
	}
	return v + 1
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v >> 5) & 0x1F
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}
