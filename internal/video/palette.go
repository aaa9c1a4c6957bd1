// Package video defines the frame sink boundary between the PPU and an
// embedder, and the fixed master palette the PPU's palette RAM indexes into.
package video

// FrameSink is the write-only surface the PPU presents completed frames to.
// It is the spec's one externally-visible rendering contract: the core
// never touches a window, a framebuffer format, or a display API directly.
type FrameSink interface {
	// PutPixel sets pixel (x,y) to the given master-palette entry, an
	// index in [0,63].
	PutPixel(x, y int, paletteEntry uint8)
	// Present is called once per frame, at scanline 260 dot 340, after the
	// last visible pixel of the frame has been written.
	Present()
}

// RGB is a 24-bit master-palette color.
type RGB struct {
	R, G, B uint8
}

// MasterPalette is the NES PPU's fixed 64-entry NTSC RGB palette. Palette
// RAM never stores RGB directly; it stores an index into this table.
var MasterPalette = [64]RGB{
	{84, 84, 84}, {0, 30, 116}, {8, 16, 144}, {48, 0, 136},
	{68, 0, 100}, {92, 0, 48}, {84, 4, 0}, {60, 24, 0},
	{32, 42, 0}, {8, 58, 0}, {0, 64, 0}, {0, 60, 0},
	{0, 50, 60}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},

	{152, 150, 152}, {8, 76, 196}, {48, 50, 236}, {92, 30, 228},
	{136, 20, 176}, {160, 20, 100}, {152, 34, 32}, {120, 60, 0},
	{84, 90, 0}, {40, 114, 0}, {8, 124, 0}, {0, 118, 40},
	{0, 102, 120}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},

	{236, 238, 236}, {76, 154, 236}, {120, 124, 236}, {176, 98, 236},
	{228, 84, 236}, {236, 88, 180}, {236, 106, 100}, {212, 136, 32},
	{160, 170, 0}, {116, 196, 0}, {76, 208, 32}, {56, 204, 108},
	{56, 180, 204}, {60, 60, 60}, {0, 0, 0}, {0, 0, 0},

	{236, 238, 236}, {168, 204, 236}, {188, 188, 236}, {212, 178, 236},
	{236, 174, 236}, {236, 174, 212}, {236, 180, 176}, {228, 196, 144},
	{204, 210, 120}, {180, 222, 120}, {168, 226, 144}, {152, 226, 180},
	{160, 214, 228}, {160, 162, 160}, {0, 0, 0}, {0, 0, 0},
}

// FrameBuffer is a minimal in-memory FrameSink usable by tests and by
// headless embedders that do not need a windowing library.
type FrameBuffer struct {
	pixels    [256 * 240]uint8
	Presented int
}

// NewFrameBuffer creates an empty 256x240 palette-indexed frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// PutPixel implements FrameSink.
func (f *FrameBuffer) PutPixel(x, y int, paletteEntry uint8) {
	if x < 0 || x >= 256 || y < 0 || y >= 240 {
		return
	}
	f.pixels[y*256+x] = paletteEntry
}

// Present implements FrameSink.
func (f *FrameBuffer) Present() {
	f.Presented++
}

// At returns the palette entry most recently written at (x,y).
func (f *FrameBuffer) At(x, y int) uint8 {
	if x < 0 || x >= 256 || y < 0 || y >= 240 {
		return 0
	}
	return f.pixels[y*256+x]
}

// RGB resolves the pixel at (x,y) through MasterPalette.
func (f *FrameBuffer) RGB(x, y int) RGB {
	return MasterPalette[f.At(x, y)&0x3F]
}
