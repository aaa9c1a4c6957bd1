package cartridge

import "testing"

func writeMMC1(m *Mapper001, addr uint16, bits uint8) {
	for i := 0; i < 5; i++ {
		bit := (bits >> i) & 1
		m.CPUWrite(addr, bit)
	}
}

func TestMapper001PRGSwitchFixLast(t *testing.T) {
	// 4 banks of 16KiB = 64KiB PRG-ROM, so bank 3 exists.
	m := NewMapper001(4*0x4000, 0x2000)

	// Five writes to $E000 with LSB-first bits of 0b00011 select PRG bank 3;
	// default control register is fix-last (mode 3).
	writeMMC1(m, 0xE000, 0b00011)

	res, handled := m.CPURead(0x8000)
	if !handled {
		t.Fatal("expected $8000 read to be handled")
	}
	if res.Target != TargetPRGROM || res.Offset != 3*0x4000 {
		t.Errorf("expected PRG bank 3 offset 0, got target=%v offset=%d", res.Target, res.Offset)
	}
}

func TestMapper001ResetBitClearsShiftAndFixesHighBank(t *testing.T) {
	m := NewMapper001(2*0x4000, 0x2000)
	m.CPUWrite(0x8000, 0x80) // bit 7 set: reset
	if m.shiftCount != 0 || m.shift != 0 {
		t.Fatalf("expected shift register reset, got shift=%05b count=%d", m.shift, m.shiftCount)
	}
	if m.prgMode() != prgModeFixHigh {
		t.Errorf("expected control to OR in fix-last PRG mode, got mode=%d", m.prgMode())
	}
}

func TestMapper0018KCHRMode(t *testing.T) {
	m := NewMapper001(2*0x4000, 0x2000)
	// control bits: prgMode=3 (fix-last), chrMode=0 (8K) -> value 0b01100 = 0x0C
	writeMMC1(m, 0x8000, 0x0C)
	writeMMC1(m, 0xA000, 0b00010) // chr bank 0 = 2 (8K mode ignores low bit -> effectively bank 2)

	res, _ := m.PPURead(0x0000)
	if res.Offset != 2*0x1000 {
		t.Errorf("expected CHR offset for bank 2, got %d", res.Offset)
	}
	res2, _ := m.PPURead(0x1000)
	if res2.Offset != 2*0x1000+0x1000 {
		t.Errorf("expected second half of 8K CHR window, got %d", res2.Offset)
	}
}

func TestMapper001PRGRAMGatedByEnable(t *testing.T) {
	m := NewMapper001(2*0x4000, 0x2000)
	writeMMC1(m, 0xE000, 0b10000) // bit4 set -> PRG-RAM disabled
	if _, handled := m.CPUWrite(0x6000, 0x11); handled {
		t.Error("expected PRG-RAM write to be rejected while disabled")
	}
}
