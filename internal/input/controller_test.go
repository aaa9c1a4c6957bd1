package input

import "testing"

func TestNewControllerHasNoButtonsPressed(t *testing.T) {
	c := New()
	if c.buttons != 0 {
		t.Errorf("expected initial buttons state 0, got %d", c.buttons)
	}
	if c.strobe {
		t.Error("expected initial strobe false")
	}
}

func TestSetButtonTracksIndividualButtons(t *testing.T) {
	c := New()
	buttons := []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}

	for _, b := range buttons {
		c.SetButton(b, true)
		if c.buttons != uint8(b) {
			t.Errorf("expected only button %d set, got state %#02x", b, c.buttons)
		}
		c.SetButton(b, false)
		if c.buttons != 0 {
			t.Errorf("expected button %d cleared, got state %#02x", b, c.buttons)
		}
	}
}

func TestStrobeLatchesAndShiftsOutInOrder(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, false, true, false, false, false, true}) // A, Start, Right

	c.SetStrobe(true)
	c.SetStrobe(false)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Errorf("bit %d: expected %d, got %d", i, w, got)
		}
	}

	// Reads past the 8th latched bit return 1, matching open-bus behavior.
	if got := c.Read(); got != 1 {
		t.Errorf("expected read past bit 8 to return 1, got %d", got)
	}
}

func TestStrobeHighContinuouslyRelatchesLiveState(t *testing.T) {
	c := New()
	c.SetStrobe(true)
	if got := c.Read(); got != 0 {
		t.Errorf("expected A released while strobing, got %d", got)
	}
	c.SetButton(ButtonA, true)
	if got := c.Read(); got != 1 {
		t.Errorf("expected strobe-high read to reflect the live A state, got %d", got)
	}
}

func TestResetClearsState(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetStrobe(true)
	c.SetStrobe(false)
	c.Read()

	c.Reset()
	if c.buttons != 0 || c.strobe || c.latch != 0 || c.index != 0 {
		t.Error("expected Reset to clear all controller state")
	}
}
