// Package cpu implements the MOS 6502 CPU used by the NES, including
// the documented unofficial opcodes software commonly relies on.
package cpu

import (
	"fmt"

	"nesgo/internal/logging"
)

// AddressingMode identifies how an instruction's operand address is
// computed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// EmulationError reports a fatal CPU condition: an opcode with no entry
// in the instruction table, which on real hardware is either an
// undefined instruction or one of the documented JAM/halt opcodes
// ($02,$12,$22,$32,$42,$52,$62,$72,$92,$B2,$D2,$F2) that lock up the
// 6502's instruction fetch logic. The CPU halts rather than silently
// treating it as a no-op.
type EmulationError struct {
	Opcode uint8
	PC     uint16
}

func (e *EmulationError) Error() string {
	return fmt.Sprintf("cpu: halt opcode %#02x at PC=%#04x", e.Opcode, e.PC)
}

// Instruction describes one opcode's encoding: its mnemonic (for
// tracing), byte length, base cycle count, and addressing mode.
type Instruction struct {
	Name   string
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// Bus is the CPU's view of system memory: the 16-bit address space the
// 6502 sees, spanning RAM, PPU/APU registers, and cartridge space.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is a MOS 6502 core. It exposes a single Tick method representing
// one CPU clock cycle: on the first cycle of an instruction it fetches
// and executes the whole instruction atomically, then idles for the
// instruction's remaining cycles. All of an instruction's flag and memory
// side effects therefore happen on its first cycle rather than on the
// sub-instruction cycle a real 6502 would use, while the bus still gets a
// uniform one-tick-at-a-time interface to interleave against the PPU.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	bus Bus

	cyclesRemaining int
	totalCycles     uint64

	instructions [256]*Instruction

	nmiLine    bool
	nmiPending bool
	irqLine    bool

	halted  bool
	haltErr *EmulationError
	trace   *logging.Logger
}

// New creates a CPU wired to bus. Call Reset before running it.
func New(bus Bus) *CPU {
	cpu := &CPU{bus: bus, SP: 0xFD}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502 reset sequence: registers to their power-on
// state, five dummy bus reads, then the PC loaded from the reset
// vector. The sequence costs 7 cycles, matching real hardware and the
// BRK/IRQ/NMI sequences below.
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true

	for i := 0; i < 5; i++ {
		cpu.bus.Read(cpu.PC)
	}
	lo := uint16(cpu.bus.Read(resetVector))
	hi := uint16(cpu.bus.Read(resetVector + 1))
	cpu.PC = (hi << 8) | lo

	cpu.totalCycles += 7
	cpu.cyclesRemaining = 0
	cpu.nmiPending = false
}

// SetNMI reports the PPU's current NMI line level. A low-to-high
// transition latches a pending NMI, serviced at the next instruction
// boundary.
func (cpu *CPU) SetNMI(level bool) {
	if !cpu.nmiLine && level {
		cpu.nmiPending = true
	}
	cpu.nmiLine = level
}

// ClearPendingNMI cancels a latched-but-not-yet-serviced NMI. Used by
// the bus to retract an assertion that a PPUSTATUS read race
// suppressed in the same cycle it was latched.
func (cpu *CPU) ClearPendingNMI() {
	cpu.nmiPending = false
}

// SetIRQ reports the current level of the (unused by any implemented
// mapper or APU feature today) IRQ line, kept for mappers/peripherals
// that assert it.
func (cpu *CPU) SetIRQ(level bool) {
	cpu.irqLine = level
}

// TotalCycles reports the number of CPU cycles executed since the CPU was
// created, including the 7 cycles each Reset adds.
func (cpu *CPU) TotalCycles() uint64 { return cpu.totalCycles }

// SetTraceLogger attaches an optional per-instruction trace logger; nil
// disables tracing.
func (cpu *CPU) SetTraceLogger(l *logging.Logger) {
	cpu.trace = l
}

// Halted reports whether the CPU has hit a fatal EmulationError and
// stopped executing.
func (cpu *CPU) Halted() bool { return cpu.halted }

// HaltError returns the error that halted the CPU, or nil if it is
// still running.
func (cpu *CPU) HaltError() error {
	if cpu.haltErr == nil {
		return nil
	}
	return cpu.haltErr
}

// Tick advances the CPU by one cycle. On the cycle an instruction (or
// interrupt service routine) begins, the whole operation executes
// immediately and the returned cycle cost is banked into
// cyclesRemaining for the Tick calls that follow. Once halted by an
// EmulationError, Tick keeps returning that same error without
// executing anything further, matching the lockup a real 6502 suffers
// on a JAM opcode.
func (cpu *CPU) Tick() error {
	if cpu.halted {
		return cpu.haltErr
	}

	if cpu.cyclesRemaining > 0 {
		cpu.cyclesRemaining--
		cpu.totalCycles++
		return nil
	}

	var cycles uint8
	switch {
	case cpu.nmiPending:
		cpu.nmiPending = false
		cpu.serviceInterrupt(nmiVector, false)
		cycles = 7
	case cpu.irqLine && !cpu.I:
		cpu.serviceInterrupt(irqVector, false)
		cycles = 7
	default:
		var err *EmulationError
		cycles, err = cpu.step()
		if err != nil {
			cpu.halted = true
			cpu.haltErr = err
			return err
		}
	}

	cpu.cyclesRemaining = int(cycles) - 1
	cpu.totalCycles++
	return nil
}

// serviceInterrupt pushes PC and status, sets I, and loads PC from
// vector. brk selects whether the pushed status has the B flag set
// (software BRK) or clear (hardware NMI/IRQ).
func (cpu *CPU) serviceInterrupt(vector uint16, brk bool) {
	cpu.pushWord(cpu.PC)
	status := cpu.statusByte() &^ bFlagMask
	if brk {
		status |= bFlagMask
	}
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	lo := uint16(cpu.bus.Read(vector))
	hi := uint16(cpu.bus.Read(vector + 1))
	cpu.PC = (hi << 8) | lo
}

// step fetches, decodes, and executes one instruction, returning its
// total cycle cost including any addressing-mode page-crossing penalty.
// An opcode absent from the instruction table (an undefined opcode or
// one of the documented JAM/halt opcodes) is a fatal EmulationError:
// the PC is left pointing at the offending opcode rather than advanced,
// matching the real CPU's lockup.
func (cpu *CPU) step() (uint8, *EmulationError) {
	opcode := cpu.bus.Read(cpu.PC)
	inst := cpu.instructions[opcode]
	if inst == nil {
		return 0, &EmulationError{Opcode: opcode, PC: cpu.PC}
	}

	cpu.trace.Tracef("pc=%#04x op=%#02x %s", cpu.PC, opcode, inst.Name)

	address, pageCrossed := cpu.operandAddress(inst.Mode)
	extra := cpu.execute(opcode, address, pageCrossed)

	if pageCrossed {
		extra += cpu.pageCrossPenalty(opcode)
	}
	return inst.Cycles + extra, nil
}

func (cpu *CPU) pageCrossPenalty(opcode uint8) uint8 {
	switch opcode {
	case 0x9D, 0x99, 0x91: // STA absolute,X / absolute,Y / (zp),Y always pay it,
		return 0 // so their base cost in the table already includes it
	}
	switch opcode {
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC, 0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
		0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51, 0xDD, 0xD9, 0xD1,
		0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC,
		0xBF, 0xB3, 0xD3, 0xD7, 0xDF, 0xF3, 0xF7, 0xFF, 0x13, 0x17, 0x1F,
		0x33, 0x37, 0x3F, 0x53, 0x57, 0x5F, 0x73, 0x77, 0x7F:
		return 1
	}
	return 0
}

// operandAddress returns the effective address for mode and whether
// resolving it crossed a page boundary (relevant for cycle timing on
// indexed reads and relative branches).
func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		addr := cpu.PC + 1
		cpu.PC += 2
		return addr, false

	case ZeroPage:
		addr := uint16(cpu.bus.Read(cpu.PC + 1))
		cpu.PC += 2
		return addr, false

	case ZeroPageX:
		base := cpu.bus.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.X) & zeroPageMask), false

	case ZeroPageY:
		base := cpu.bus.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.Y) & zeroPageMask), false

	case Relative:
		offset := int8(cpu.bus.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		return newPC, (oldPC & pageMask) != (newPC & pageMask)

	case Absolute:
		lo := uint16(cpu.bus.Read(cpu.PC + 1))
		hi := uint16(cpu.bus.Read(cpu.PC + 2))
		cpu.PC += 3
		return (hi << 8) | lo, false

	case AbsoluteX:
		lo := uint16(cpu.bus.Read(cpu.PC + 1))
		hi := uint16(cpu.bus.Read(cpu.PC + 2))
		base := (hi << 8) | lo
		addr := base + uint16(cpu.X)
		cpu.PC += 3
		return addr, (base & pageMask) != (addr & pageMask)

	case AbsoluteY:
		lo := uint16(cpu.bus.Read(cpu.PC + 1))
		hi := uint16(cpu.bus.Read(cpu.PC + 2))
		base := (hi << 8) | lo
		addr := base + uint16(cpu.Y)
		cpu.PC += 3
		return addr, (base & pageMask) != (addr & pageMask)

	case Indirect: // JMP only; reproduces the page-wrap fetch bug
		loPtr := uint16(cpu.bus.Read(cpu.PC + 1))
		hiPtr := uint16(cpu.bus.Read(cpu.PC + 2))
		ptr := (hiPtr << 8) | loPtr
		cpu.PC += 3

		var lo, hi uint16
		if ptr&zeroPageMask == zeroPageMask {
			lo = uint16(cpu.bus.Read(ptr))
			hi = uint16(cpu.bus.Read(ptr & pageMask))
		} else {
			lo = uint16(cpu.bus.Read(ptr))
			hi = uint16(cpu.bus.Read(ptr + 1))
		}
		return (hi << 8) | lo, false

	case IndexedIndirect:
		base := cpu.bus.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		lo := uint16(cpu.bus.Read(uint16(ptr)))
		hi := uint16(cpu.bus.Read(uint16((ptr + 1) & zeroPageMask)))
		cpu.PC += 2
		return (hi << 8) | lo, false

	case IndirectIndexed:
		ptr := uint16(cpu.bus.Read(cpu.PC + 1))
		lo := uint16(cpu.bus.Read(ptr))
		hi := uint16(cpu.bus.Read((ptr + 1) & zeroPageMask))
		base := (hi << 8) | lo
		addr := base + uint16(cpu.Y)
		cpu.PC += 2
		return addr, (base & pageMask) != (addr & pageMask)
	}
	return 0, false
}

func (cpu *CPU) push(value uint8) {
	cpu.bus.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.bus.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	lo := uint16(cpu.pop())
	hi := uint16(cpu.pop())
	return (hi << 8) | lo
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

func (cpu *CPU) statusByte() uint8 {
	var s uint8
	if cpu.N {
		s |= nFlagMask
	}
	if cpu.V {
		s |= vFlagMask
	}
	s |= unusedMask
	if cpu.B {
		s |= bFlagMask
	}
	if cpu.D {
		s |= dFlagMask
	}
	if cpu.I {
		s |= iFlagMask
	}
	if cpu.Z {
		s |= zFlagMask
	}
	if cpu.C {
		s |= cFlagMask
	}
	return s
}

func (cpu *CPU) setStatusByte(s uint8) {
	cpu.N = s&nFlagMask != 0
	cpu.V = s&vFlagMask != 0
	cpu.B = s&bFlagMask != 0
	cpu.D = s&dFlagMask != 0
	cpu.I = s&iFlagMask != 0
	cpu.Z = s&zFlagMask != 0
	cpu.C = s&cFlagMask != 0
}
