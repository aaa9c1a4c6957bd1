package cpu

import "testing"

type testBus struct {
	ram [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8       { return b.ram[addr] }
func (b *testBus) Write(addr uint16, v uint8)   { b.ram[addr] = v }

func newTestCPU() (*CPU, *testBus) {
	bus := &testBus{}
	bus.ram[resetVector] = 0x00
	bus.ram[resetVector+1] = 0x80
	c := New(bus)
	c.Reset()
	return c, bus
}

func runUntilFetch(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func TestADCSetsOverflowWithoutCarry(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x50
	bus.ram[0x8000] = 0x69 // ADC #imm
	bus.ram[0x8001] = 0x50
	runUntilFetch(c, 2)

	if c.A != 0xA0 {
		t.Errorf("expected A=0xA0, got %#x", c.A)
	}
	if !c.V {
		t.Error("expected overflow flag set (0x50+0x50 overflows signed)")
	}
	if c.C {
		t.Error("expected no carry out of 0x50+0x50")
	}
}

func TestADCCarryOut(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0xFF
	c.C = false
	bus.ram[0x8000] = 0x69
	bus.ram[0x8001] = 0x02
	runUntilFetch(c, 2)

	if c.A != 0x01 {
		t.Errorf("expected A=0x01, got %#x", c.A)
	}
	if !c.C {
		t.Error("expected carry out of 0xFF+0x02")
	}
}

func TestSBCBorrow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x00
	c.C = true // no borrow going in
	bus.ram[0x8000] = 0xE9
	bus.ram[0x8001] = 0x01
	runUntilFetch(c, 2)

	if c.A != 0xFF {
		t.Errorf("expected A=0xFF after 0-1, got %#x", c.A)
	}
	if c.C {
		t.Error("expected carry clear (borrow occurred)")
	}
}

func TestIndirectJMPPageBoundaryBug(t *testing.T) {
	c, bus := newTestCPU()
	bus.ram[0x8000] = 0x6C // JMP (indirect)
	bus.ram[0x8001] = 0xFF
	bus.ram[0x8002] = 0x30 // pointer = $30FF

	bus.ram[0x30FF] = 0x80
	bus.ram[0x3000] = 0x12 // high byte incorrectly fetched from $3000, not $3100
	bus.ram[0x3100] = 0x99 // would be correct high byte if the bug weren't reproduced

	runUntilFetch(c, 5)

	if c.PC != 0x1280 {
		t.Errorf("expected PC=0x1280 reproducing the page-wrap fetch bug, got %#04x", c.PC)
	}
}

func TestNMILatchedMidInstructionServicedAtNextBoundary(t *testing.T) {
	c, bus := newTestCPU()
	bus.ram[0x8000] = 0xEA // NOP, 2 cycles
	bus.ram[nmiVector] = 0x00
	bus.ram[nmiVector+1] = 0x90

	c.Tick()           // NOP fetched and executed; one cycle left to idle
	c.SetNMI(true)      // NMI requested mid-instruction
	c.Tick()           // idles out the NOP's remaining cycle; not serviced yet
	if c.PC != 0x8001 {
		t.Fatalf("expected PC past the NOP before NMI service, got %#04x", c.PC)
	}

	c.Tick() // instruction boundary reached: pending NMI services now
	if c.PC != 0x9000 {
		t.Errorf("expected PC to jump to NMI vector 0x9000, got %#04x", c.PC)
	}
	if !c.I {
		t.Error("expected interrupt-disable flag set after NMI service")
	}
}

func TestClearPendingNMICancelsService(t *testing.T) {
	c, bus := newTestCPU()
	bus.ram[0x8000] = 0xEA
	bus.ram[0x8001] = 0xEA

	c.SetNMI(true)
	c.ClearPendingNMI()
	runUntilFetch(c, 2) // first NOP
	runUntilFetch(c, 2) // second NOP, not an NMI service

	if c.PC != 0x8002 {
		t.Errorf("expected ordinary NOP execution, PC=%#04x", c.PC)
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	c, bus := newTestCPU()
	bus.ram[0x8000] = 0x02 // documented JAM opcode

	err := c.Tick()
	if err == nil {
		t.Fatal("expected Tick to return an error on a halt opcode")
	}
	var emuErr *EmulationError
	if ee, ok := err.(*EmulationError); ok {
		emuErr = ee
	} else {
		t.Fatalf("expected *EmulationError, got %T", err)
	}
	if emuErr.Opcode != 0x02 || emuErr.PC != 0x8000 {
		t.Errorf("expected opcode=0x02 pc=0x8000, got opcode=%#02x pc=%#04x", emuErr.Opcode, emuErr.PC)
	}

	if !c.Halted() {
		t.Error("expected CPU to report halted")
	}
	if c.HaltError() == nil {
		t.Error("expected HaltError to report the halt")
	}

	pc := c.PC
	if err := c.Tick(); err == nil {
		t.Error("expected Tick to keep returning an error once halted")
	}
	if c.PC != pc {
		t.Error("expected halted CPU to stop advancing PC")
	}
}

func TestBRKThenRTIRoundTrips(t *testing.T) {
	c, bus := newTestCPU()
	bus.ram[0x8000] = 0x00 // BRK
	bus.ram[0x8001] = 0x00 // padding byte
	bus.ram[irqVector] = 0x00
	bus.ram[irqVector+1] = 0x90
	bus.ram[0x9000] = 0x40 // RTI

	runUntilFetch(c, 7) // BRK
	if c.PC != 0x9000 {
		t.Fatalf("expected BRK to jump to IRQ vector, got %#04x", c.PC)
	}
	runUntilFetch(c, 6) // RTI
	if c.PC != 0x8002 {
		t.Errorf("expected RTI to resume after BRK's padding byte, got %#04x", c.PC)
	}
}
