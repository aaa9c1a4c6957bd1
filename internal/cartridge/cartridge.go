// Package cartridge parses iNES ROM images and exposes the in-memory
// cartridge object the core operates on: PRG-ROM/PRG-RAM/CHR-ROM-or-RAM
// arrays, nametable mirroring mode, and the selected Mapper.
//
// ROM file parsing is, per spec.md §1, an external collaborator's job in
// the abstract — but the teacher's own package boundary folds the iNES
// header decode into the same package that owns the resulting arrays, so
// Load stays here rather than behind a second package.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"nesgo/internal/logging"
)

// MirrorMode selects how the PPU's 2KiB nametable RAM is mapped across
// the logical 4-screen $2000-$2FFF window.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
)

var errFourScreenMirroring = errors.New("cartridge: four-screen mirroring is unsupported")
var errTrainerPresent = errors.New("cartridge: trainer regions are unsupported")
var errUnsupportedMapper = errors.New("cartridge: unsupported mapper")
var errBadHeader = errors.New("cartridge: not an iNES file")
var errZeroPRG = errors.New("cartridge: PRG-ROM size cannot be zero")

const inesMagic = "NES\x1A"

type inesHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // x16KiB
	CHRROMSize uint8 // x8KiB, 0 => CHR-RAM
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8 // x8KiB, 0 => treated as 1 bank when PRG-RAM is supported
	_          [7]uint8
}

// Cartridge holds a loaded ROM's storage and its selected Mapper.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8 // empty iff CHR-RAM is in use
	chrRAM []uint8 // empty iff CHR-ROM is in use
	prgRAM []uint8

	mirror MirrorMode
	mapper Mapper
}

// Load parses an iNES image from r and builds the Cartridge plus its
// Mapper. It rejects four-screen mirroring, trainers, and mapper numbers
// other than 0 and 1, per spec.md §7.
func Load(r io.Reader) (*Cartridge, error) {
	var hdr inesHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("cartridge: reading header: %w", err)
	}
	if string(hdr.Magic[:]) != inesMagic {
		return nil, errBadHeader
	}
	if hdr.PRGROMSize == 0 {
		return nil, errZeroPRG
	}
	if hdr.Flags6&0x08 != 0 {
		return nil, errFourScreenMirroring
	}
	if hdr.Flags6&0x04 != 0 {
		return nil, errTrainerPresent
	}

	mapperID := (hdr.Flags7 & 0xF0) | (hdr.Flags6 >> 4)

	cart := &Cartridge{}
	if hdr.Flags6&0x01 != 0 {
		cart.mirror = MirrorVertical
	} else {
		cart.mirror = MirrorHorizontal
	}

	cart.prgROM = make([]uint8, int(hdr.PRGROMSize)*0x4000)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, fmt.Errorf("cartridge: reading PRG-ROM: %w", err)
	}

	if hdr.CHRROMSize == 0 {
		cart.chrRAM = make([]uint8, 0x2000)
	} else {
		cart.chrROM = make([]uint8, int(hdr.CHRROMSize)*0x2000)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, fmt.Errorf("cartridge: reading CHR-ROM: %w", err)
		}
	}

	prgRAMBanks := int(hdr.PRGRAMSize)
	if prgRAMBanks == 0 {
		prgRAMBanks = 1
	}
	cart.prgRAM = make([]uint8, prgRAMBanks*0x2000)

	switch mapperID {
	case 0:
		cart.mapper = NewMapper000(len(cart.prgROM))
	case 1:
		cart.mapper = NewMapper001(len(cart.prgROM), len(cart.prgRAM))
	default:
		return nil, fmt.Errorf("%w: mapper %d", errUnsupportedMapper, mapperID)
	}

	return cart, nil
}

// traceableMapper is implemented by mappers with bank-switch state worth
// tracing (Mapper001). Mapper000 has a fixed mapping and doesn't need it.
type traceableMapper interface {
	SetTraceLogger(l *logging.Logger)
}

// SetTraceLogger attaches an optional mapper bank-switch trace logger;
// nil disables tracing. It is a no-op for mappers with nothing to trace.
func (c *Cartridge) SetTraceLogger(l *logging.Logger) {
	if tm, ok := c.mapper.(traceableMapper); ok {
		tm.SetTraceLogger(l)
	}
}

// Mirror reports the active nametable mirroring mode: the mapper's
// runtime override when it has one (MMC1), else the header's fixed mode.
func (c *Cartridge) Mirror() MirrorMode {
	if mode, ok := c.mapper.MirrorOverride(); ok {
		return mode
	}
	return c.mirror
}

// CPURead services a CPU-space cartridge read ($4020-$FFFF), resolving
// the mapper's decode against the PRG-ROM/PRG-RAM arrays.
func (c *Cartridge) CPURead(addr uint16) uint8 {
	res, handled := c.mapper.CPURead(addr)
	if !handled {
		return 0
	}
	switch res.Target {
	case TargetPRGROM:
		return c.prgROM[res.Offset%len(c.prgROM)]
	case TargetPRGRAM:
		if len(c.prgRAM) == 0 {
			return 0
		}
		return c.prgRAM[res.Offset%len(c.prgRAM)]
	}
	return 0
}

// CPUWrite services a CPU-space cartridge write.
func (c *Cartridge) CPUWrite(addr uint16, value uint8) {
	res, handled := c.mapper.CPUWrite(addr, value)
	if !handled {
		return
	}
	if res.Target == TargetPRGRAM && len(c.prgRAM) > 0 {
		c.prgRAM[res.Offset%len(c.prgRAM)] = value
	}
}

// PPURead services a PPU-space pattern-table read ($0000-$1FFF).
func (c *Cartridge) PPURead(addr uint16) uint8 {
	res, handled := c.mapper.PPURead(addr)
	if !handled {
		return 0
	}
	if res.Target != TargetCHR {
		return 0
	}
	if len(c.chrRAM) > 0 {
		return c.chrRAM[res.Offset%len(c.chrRAM)]
	}
	if len(c.chrROM) == 0 {
		return 0
	}
	return c.chrROM[res.Offset%len(c.chrROM)]
}

// PPUWrite services a PPU-space pattern-table write. Writes are only
// retained when the cartridge uses CHR-RAM; CHR-ROM writes are discarded.
func (c *Cartridge) PPUWrite(addr uint16, value uint8) {
	res, handled := c.mapper.PPUWrite(addr, value)
	if !handled || res.Target != TargetCHR {
		return
	}
	if len(c.chrRAM) > 0 {
		c.chrRAM[res.Offset%len(c.chrRAM)] = value
	}
}
