package cpu

func (cpu *CPU) lda(address uint16) { cpu.A = cpu.bus.Read(address); cpu.setZN(cpu.A) }
func (cpu *CPU) ldx(address uint16) { cpu.X = cpu.bus.Read(address); cpu.setZN(cpu.X) }
func (cpu *CPU) ldy(address uint16) { cpu.Y = cpu.bus.Read(address); cpu.setZN(cpu.Y) }

func (cpu *CPU) sta(address uint16) { cpu.bus.Write(address, cpu.A) }
func (cpu *CPU) stx(address uint16) { cpu.bus.Write(address, cpu.X) }
func (cpu *CPU) sty(address uint16) { cpu.bus.Write(address, cpu.Y) }

func (cpu *CPU) adc(address uint16) {
	value := cpu.bus.Read(address)
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(address uint16) {
	value := cpu.bus.Read(address) ^ 0xFF
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) and(address uint16) { cpu.A &= cpu.bus.Read(address); cpu.setZN(cpu.A) }
func (cpu *CPU) ora(address uint16) { cpu.A |= cpu.bus.Read(address); cpu.setZN(cpu.A) }
func (cpu *CPU) eor(address uint16) { cpu.A ^= cpu.bus.Read(address); cpu.setZN(cpu.A) }

func (cpu *CPU) asl(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.bus.Write(address, v)
	cpu.setZN(v)
}

func (cpu *CPU) lsr(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.bus.Write(address, v)
	cpu.setZN(v)
}

func (cpu *CPU) rol(address uint16) {
	v := cpu.bus.Read(address)
	oldCarry := cpu.C
	cpu.C = v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 0x01
	}
	cpu.bus.Write(address, v)
	cpu.setZN(v)
}

func (cpu *CPU) ror(address uint16) {
	v := cpu.bus.Read(address)
	oldCarry := cpu.C
	cpu.C = v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	cpu.bus.Write(address, v)
	cpu.setZN(v)
}

func (cpu *CPU) cmp(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = cpu.A >= v
	cpu.setZN(cpu.A - v)
}

func (cpu *CPU) cpx(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = cpu.X >= v
	cpu.setZN(cpu.X - v)
}

func (cpu *CPU) cpy(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = cpu.Y >= v
	cpu.setZN(cpu.Y - v)
}

func (cpu *CPU) inc(address uint16) { v := cpu.bus.Read(address) + 1; cpu.bus.Write(address, v); cpu.setZN(v) }
func (cpu *CPU) dec(address uint16) { v := cpu.bus.Read(address) - 1; cpu.bus.Write(address, v); cpu.setZN(v) }
func (cpu *CPU) inx() { cpu.X++; cpu.setZN(cpu.X) }
func (cpu *CPU) dex() { cpu.X--; cpu.setZN(cpu.X) }
func (cpu *CPU) iny() { cpu.Y++; cpu.setZN(cpu.Y) }
func (cpu *CPU) dey() { cpu.Y--; cpu.setZN(cpu.Y) }

func (cpu *CPU) tax() { cpu.X = cpu.A; cpu.setZN(cpu.X) }
func (cpu *CPU) txa() { cpu.A = cpu.X; cpu.setZN(cpu.A) }
func (cpu *CPU) tay() { cpu.Y = cpu.A; cpu.setZN(cpu.Y) }
func (cpu *CPU) tya() { cpu.A = cpu.Y; cpu.setZN(cpu.A) }
func (cpu *CPU) tsx() { cpu.X = cpu.SP; cpu.setZN(cpu.X) }
func (cpu *CPU) txs() { cpu.SP = cpu.X }

func (cpu *CPU) pha() { cpu.push(cpu.A) }
func (cpu *CPU) pla() { cpu.A = cpu.pop(); cpu.setZN(cpu.A) }
func (cpu *CPU) php() { cpu.push(cpu.statusByte() | bFlagMask) }
func (cpu *CPU) plp() { cpu.setStatusByte(cpu.pop()) }

func (cpu *CPU) clc() { cpu.C = false }
func (cpu *CPU) sec() { cpu.C = true }
func (cpu *CPU) cli() { cpu.I = false }
func (cpu *CPU) sei() { cpu.I = true }
func (cpu *CPU) clv() { cpu.V = false }
func (cpu *CPU) cld() { cpu.D = false }
func (cpu *CPU) sed() { cpu.D = true }

func (cpu *CPU) jmp(address uint16) { cpu.PC = address }

func (cpu *CPU) jsr(address uint16) {
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = address
}

func (cpu *CPU) rts() { cpu.PC = cpu.popWord() + 1 }

func (cpu *CPU) rti() {
	cpu.setStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
}

// branch evaluates a conditional branch and returns the extra cycles
// (1 for a taken branch, +1 more if it crosses a page) to add to the
// instruction's base cost.
func (cpu *CPU) branch(taken bool, address uint16, pageCrossed bool) uint8 {
	if !taken {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bit(address uint16) {
	v := cpu.bus.Read(address)
	cpu.N = v&nFlagMask != 0
	cpu.V = v&vFlagMask != 0
	cpu.Z = cpu.A&v == 0
}

// brk implements the software-interrupt BRK: a two-byte instruction
// (the second byte is a padding operand), pushing PC+2 and a status
// byte with B set, then loading the IRQ vector.
func (cpu *CPU) brk() {
	cpu.PC++
	cpu.serviceInterrupt(irqVector, true)
}

func (cpu *CPU) lax(address uint16) { cpu.A = cpu.bus.Read(address); cpu.X = cpu.A; cpu.setZN(cpu.A) }
func (cpu *CPU) sax(address uint16) { cpu.bus.Write(address, cpu.A&cpu.X) }

func (cpu *CPU) dcp(address uint16) {
	v := cpu.bus.Read(address) - 1
	cpu.bus.Write(address, v)
	cpu.C = cpu.A >= v
	cpu.setZN(cpu.A - v)
}

func (cpu *CPU) isb(address uint16) {
	v := cpu.bus.Read(address) + 1
	cpu.bus.Write(address, v)
	cpu.sbc(address)
}

func (cpu *CPU) slo(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.bus.Write(address, v)
	cpu.A |= v
	cpu.setZN(cpu.A)
}

func (cpu *CPU) rla(address uint16) {
	v := cpu.bus.Read(address)
	oldCarry := cpu.C
	cpu.C = v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 0x01
	}
	cpu.bus.Write(address, v)
	cpu.A &= v
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sre(address uint16) {
	v := cpu.bus.Read(address)
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.bus.Write(address, v)
	cpu.A ^= v
	cpu.setZN(cpu.A)
}

func (cpu *CPU) rra(address uint16) {
	v := cpu.bus.Read(address)
	oldCarry := cpu.C
	cpu.C = v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	cpu.bus.Write(address, v)
	cpu.adc(address)
}

// execute dispatches opcode to its implementation and returns any
// extra cycles beyond the instruction's base cost (before the
// page-crossing penalty, applied separately by the caller).
func (cpu *CPU) execute(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(address)
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.eor(address)

	case 0x0A:
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E:
		cpu.asl(address)
	case 0x4A:
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E:
		cpu.lsr(address)
	case 0x2A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		if oldCarry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E:
		cpu.rol(address)
	case 0x6A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		if oldCarry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E:
		cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		cpu.cpy(address)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		cpu.dec(address)
	case 0xE8:
		cpu.inx()
	case 0xCA:
		cpu.dex()
	case 0xC8:
		cpu.iny()
	case 0x88:
		cpu.dey()

	case 0xAA:
		cpu.tax()
	case 0x8A:
		cpu.txa()
	case 0xA8:
		cpu.tay()
	case 0x98:
		cpu.tya()
	case 0xBA:
		cpu.tsx()
	case 0x9A:
		cpu.txs()

	case 0x48:
		cpu.pha()
	case 0x68:
		cpu.pla()
	case 0x08:
		cpu.php()
	case 0x28:
		cpu.plp()

	case 0x18:
		cpu.clc()
	case 0x38:
		cpu.sec()
	case 0x58:
		cpu.cli()
	case 0x78:
		cpu.sei()
	case 0xB8:
		cpu.clv()
	case 0xD8:
		cpu.cld()
	case 0xF8:
		cpu.sed()

	case 0x4C, 0x6C:
		cpu.jmp(address)
	case 0x20:
		cpu.jsr(address)
	case 0x60:
		cpu.rts()
	case 0x40:
		cpu.rti()

	case 0x90:
		return cpu.branch(!cpu.C, address, pageCrossed)
	case 0xB0:
		return cpu.branch(cpu.C, address, pageCrossed)
	case 0xD0:
		return cpu.branch(!cpu.Z, address, pageCrossed)
	case 0xF0:
		return cpu.branch(cpu.Z, address, pageCrossed)
	case 0x10:
		return cpu.branch(!cpu.N, address, pageCrossed)
	case 0x30:
		return cpu.branch(cpu.N, address, pageCrossed)
	case 0x50:
		return cpu.branch(!cpu.V, address, pageCrossed)
	case 0x70:
		return cpu.branch(cpu.V, address, pageCrossed)

	case 0x24, 0x2C:
		cpu.bit(address)
	case 0x00:
		cpu.brk()

	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA, 0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		// NOP and its unofficial variants; several read and discard
		// an operand for correct cycle/addressing behavior.

	case 0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF:
		cpu.lax(address)
	case 0x83, 0x87, 0x8F, 0x97:
		cpu.sax(address)
	case 0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDF, 0xDB:
		cpu.dcp(address)
	case 0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFF, 0xFB:
		cpu.isb(address)
	case 0x03, 0x07, 0x0F, 0x13, 0x17, 0x1F, 0x1B:
		cpu.slo(address)
	case 0x23, 0x27, 0x2F, 0x33, 0x37, 0x3F, 0x3B:
		cpu.rla(address)
	case 0x43, 0x47, 0x4F, 0x53, 0x57, 0x5F, 0x5B:
		cpu.sre(address)
	case 0x63, 0x67, 0x6F, 0x73, 0x77, 0x7F, 0x7B:
		cpu.rra(address)
	}
	return 0
}
