// Package input implements the NES standard controller's serial
// shift-register protocol.
package input

// Button identifies one of the eight buttons of a standard controller,
// in the hardware's latch order.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a single NES controller port: an 8-bit latch plus a serial
// shift register read one bit at a time through $4016/$4017.
type Controller struct {
	buttons uint8 // live button state, set by the embedder

	strobe bool
	latch  uint8 // snapshot of buttons taken on each strobe-high write
	index  uint8 // next bit to shift out
}

// New creates a Controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button's live state.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces the entire live button state at once, in
// A,B,Select,Start,Up,Down,Left,Right order.
func (c *Controller) SetButtons(pressed [8]bool) {
	var b uint8
	buttons := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, down := range pressed {
		if down {
			b |= uint8(buttons[i])
		}
	}
	c.buttons = b
}

// SetStrobe implements the $4016 write-side protocol. Each call with
// strobe high latches the live button state (while strobe stays high,
// Read reports the live A button); on the falling edge the shift index
// resets to 0 so the next 8 reads walk the latched snapshot from bit 0
// (A) to bit 7 (Right). Button changes made after the last strobe-high
// call are not in the snapshot.
func (c *Controller) SetStrobe(on bool) {
	if on {
		c.latch = c.buttons
	} else if c.strobe && !on {
		c.index = 0
	}
	c.strobe = on
}

// Read implements the $4016/$4017 read-side protocol: while strobing,
// always returns the current A-button state; otherwise returns the next
// latched bit and advances the shift index. Reads past the 8th bit return
// 1, matching open-bus behavior on real hardware.
func (c *Controller) Read() uint8 {
	if c.strobe {
		return c.buttons & uint8(ButtonA)
	}
	if c.index >= 8 {
		return 1
	}
	bit := (c.latch >> c.index) & 1
	c.index++
	return bit
}

// Reset restores power-up state: no buttons pressed, strobe low, shift
// index at 0.
func (c *Controller) Reset() {
	c.buttons = 0
	c.strobe = false
	c.latch = 0
	c.index = 0
}
