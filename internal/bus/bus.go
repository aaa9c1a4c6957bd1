// Package bus wires the CPU, PPU, APU, cartridge, and controllers into a
// single system clock and central address decoder.
package bus

import (
	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/logging"
	"nesgo/internal/ppu"
	"nesgo/internal/video"
)

// ramSize is the size of the NES's 2KiB of internal work RAM, mirrored every 0x800 bytes
// across $0000-$1FFF.
const ramSize = 0x800

// Bus is the system's central address decoder and master clock. It owns
// the CPU, PPU, APU, controllers, and the currently loaded cartridge, and
// is the cpu.Bus and ppu.CHRBus implementation both components talk
// through.
type Bus struct {
	ram [ramSize]uint8

	CPU         *cpu.CPU
	PPU         *ppu.PPU
	APU         *apu.APU
	Controller1 *input.Controller
	Controller2 *input.Controller

	cart *cartridge.Cartridge

	masterTick uint64 // master ticks since Reset; CPU/APU tick when it is a multiple of 3
	dmaCycles  int    // remaining stall cycles; CPU/APU do not tick while > 0

	trace       *logging.Logger
	mapperTrace *logging.Logger
}

// New creates a Bus with no cartridge loaded. LoadCartridge must be
// called before Reset for CPU fetches to find anything but open bus.
func New(sink video.FrameSink) *Bus {
	b := &Bus{
		Controller1: input.New(),
		Controller2: input.New(),
		APU:         apu.New(),
	}
	b.PPU = ppu.New(b, sink)
	b.PPU.SetNMICallback(b.onNMILine)
	b.CPU = cpu.New(b)
	return b
}

// SetTraceLogger attaches an optional CPU instruction trace logger; nil
// disables tracing.
func (b *Bus) SetTraceLogger(l *logging.Logger) {
	b.trace = l
	b.CPU.SetTraceLogger(l)
}

// SetPPUTraceLogger attaches an optional PPU register-write trace logger;
// nil disables tracing.
func (b *Bus) SetPPUTraceLogger(l *logging.Logger) {
	b.PPU.SetTraceLogger(l)
}

// SetMapperTraceLogger attaches an optional mapper bank-switch trace
// logger; nil disables tracing. It is remembered and reapplied to any
// cartridge loaded afterward, since the logger is normally configured
// before a ROM is picked.
func (b *Bus) SetMapperTraceLogger(l *logging.Logger) {
	b.mapperTrace = l
	if b.cart != nil {
		b.cart.SetTraceLogger(l)
	}
}

// LoadCartridge installs a parsed cartridge. Callers should Reset after
// loading so the CPU's PC is fetched from the new cartridge's reset vector.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	if b.mapperTrace != nil {
		b.cart.SetTraceLogger(b.mapperTrace)
	}
}

// Reset restores CPU, PPU, APU, and controller state to power-up and
// clears DMA/clock bookkeeping.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Controller1.Reset()
	b.Controller2.Reset()
	b.masterTick = 0
	b.dmaCycles = 0
}

// onNMILine is the PPU's NMI callback. A false transition always retracts
// any NMI latched earlier in the same processing step, reproducing the
// PPUSTATUS read race's ability to cancel a same-frame NMI after the fact.
func (b *Bus) onNMILine(asserted bool) {
	b.CPU.SetNMI(asserted)
	if !asserted {
		b.CPU.ClearPendingNMI()
	}
}

// Tick advances the system by one master clock (one PPU dot). The CPU and
// APU advance by one cycle every third master tick, reproducing the
// NES's fixed 3:1 PPU:CPU clock ratio. During an OAM DMA stall the CPU is
// not ticked at all; the PPU keeps running. A non-nil error means the CPU
// hit a fatal EmulationError and halted; the caller should stop driving
// the system.
func (b *Bus) Tick() error {
	b.PPU.Step()

	b.masterTick++
	if b.masterTick%3 != 0 {
		return nil
	}

	if b.dmaCycles > 0 {
		b.stepDMA()
		return nil
	}

	if err := b.CPU.Tick(); err != nil {
		return err
	}
	b.APU.Tick()
	return nil
}

// stepDMA burns one CPU-cycle's worth of the OAM DMA stall. The actual
// 256-byte copy happens instantaneously when the DMA is triggered (real
// hardware interleaves the copy across the stall, but nothing observable
// depends on which stall cycle a given byte moves on); this only needs to
// account for the 513/514 cycle cost of suspending the CPU.
func (b *Bus) stepDMA() {
	b.dmaCycles--
}

// TriggerOAMDMA starts an OAM DMA transfer from the given CPU page. The
// 256-byte copy is performed immediately; the CPU is then held idle for
// 513 cycles, or 514 if the triggering write landed on an odd CPU cycle.
func (b *Bus) TriggerOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAMByte(b.Read(base + uint16(i)))
	}

	cycles := 513
	if b.CPU.TotalCycles()%2 == 1 {
		cycles = 514
	}
	b.dmaCycles = cycles
}

// Read implements cpu.Bus: the CPU-visible address decode.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr%ramSize]
	case addr < 0x4000:
		return b.PPU.ReadRegister(uint8(addr % 8))
	case addr == 0x4015:
		return b.APU.ReadStatus()
	case addr == 0x4016:
		return b.Controller1.Read()
	case addr == 0x4017:
		return b.Controller2.Read()
	case addr < 0x4020:
		return 0
	default:
		if b.cart == nil {
			return 0
		}
		return b.cart.CPURead(addr)
	}
}

// Write implements cpu.Bus: the CPU-visible address decode.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr%ramSize] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(uint8(addr%8), value)
	case addr == 0x4014:
		b.TriggerOAMDMA(value)
	case addr == 0x4016:
		strobe := value&0x01 != 0
		b.Controller1.SetStrobe(strobe)
		b.Controller2.SetStrobe(strobe)
	case addr < 0x4020:
		b.APU.WriteRegister(addr, value)
	default:
		if b.cart != nil {
			b.cart.CPUWrite(addr, value)
		}
	}
}

// PPURead implements ppu.CHRBus: the PPU-visible pattern-table read.
func (b *Bus) PPURead(addr uint16) uint8 {
	if b.cart == nil {
		return 0
	}
	return b.cart.PPURead(addr)
}

// PPUWrite implements ppu.CHRBus: the PPU-visible pattern-table write.
func (b *Bus) PPUWrite(addr uint16, value uint8) {
	if b.cart != nil {
		b.cart.PPUWrite(addr, value)
	}
}

// Mirror implements ppu.CHRBus.
func (b *Bus) Mirror() cartridge.MirrorMode {
	if b.cart == nil {
		return cartridge.MirrorHorizontal
	}
	return b.cart.Mirror()
}

// RunFrame advances the system until the PPU has presented exactly one
// more frame than when this call started, or until the CPU halts on a
// fatal EmulationError.
func (b *Bus) RunFrame() error {
	target := b.PPU.Frame() + 1
	for b.PPU.Frame() < target {
		if err := b.Tick(); err != nil {
			return err
		}
	}
	return nil
}
