package cartridge

import (
	"bytes"
	"testing"
)

func buildINES(prgBanks, chrBanks uint8, flags6, flags7 uint8) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, int(prgBanks)*0x4000)
	for i := range prg {
		prg[i] = uint8(i)
	}
	chr := make([]byte, int(chrBanks)*0x2000)
	buf := append(header, prg...)
	buf = append(buf, chr...)
	return buf
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte("not an ines file at all"))); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestLoadRejectsFourScreenMirroring(t *testing.T) {
	data := buildINES(1, 1, 0x08, 0)
	if _, err := Load(bytes.NewReader(data)); err != errFourScreenMirroring {
		t.Fatalf("expected four-screen mirroring error, got %v", err)
	}
}

func TestLoadRejectsTrainer(t *testing.T) {
	data := buildINES(1, 1, 0x04, 0)
	if _, err := Load(bytes.NewReader(data)); err != errTrainerPresent {
		t.Fatalf("expected trainer error, got %v", err)
	}
}

func TestLoadRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 0x20, 0) // mapper 2
	if _, err := Load(bytes.NewReader(data)); err == nil {
		t.Fatal("expected unsupported mapper error")
	}
}

func TestMapper000SingleBankMirrors(t *testing.T) {
	data := buildINES(1, 1, 0, 0)
	cart, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cart.CPURead(0x8000), cart.CPURead(0xC000); got != want {
		t.Errorf("expected $C000 to mirror $8000, got %02x vs %02x", want, got)
	}
}

func TestMapper000PRGRAM(t *testing.T) {
	data := buildINES(1, 1, 0, 0)
	cart, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	cart.CPUWrite(0x6000, 0x42)
	if got := cart.CPURead(0x6000); got != 0x42 {
		t.Errorf("PRG-RAM round trip failed: got %02x", got)
	}
}

func TestCHRRAMWhenNoCHRROM(t *testing.T) {
	data := buildINES(1, 0, 0, 0)
	cart, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	cart.PPUWrite(0x0010, 0x77)
	if got := cart.PPURead(0x0010); got != 0x77 {
		t.Errorf("CHR-RAM round trip failed: got %02x", got)
	}
}

func TestMirrorDefaultsFromHeader(t *testing.T) {
	data := buildINES(1, 1, 0x01, 0) // vertical
	cart, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cart.Mirror() != MirrorVertical {
		t.Errorf("expected vertical mirroring, got %v", cart.Mirror())
	}
}
