// Command gones is the reference ebiten-backed embedder for the core.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/config"
	"nesgo/internal/input"
	"nesgo/internal/logging"
	"nesgo/internal/video"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// keyMap binds ebiten keys to controller buttons, one NES pad mapped onto
// the keyboard.
var keyMap = map[ebiten.Key]input.Button{
	ebiten.KeyZ:          input.ButtonA,
	ebiten.KeyX:          input.ButtonB,
	ebiten.KeyBackslash:  input.ButtonSelect,
	ebiten.KeyEnter:      input.ButtonStart,
	ebiten.KeyArrowUp:    input.ButtonUp,
	ebiten.KeyArrowDown:  input.ButtonDown,
	ebiten.KeyArrowLeft:  input.ButtonLeft,
	ebiten.KeyArrowRight: input.ButtonRight,
}

// game implements ebiten.Game, driving the Bus one frame at a time and
// blitting its FrameSink buffer through the master palette.
type game struct {
	bus     *bus.Bus
	fb      *video.FrameBuffer
	img     *ebiten.Image
	cfg     config.Config
	pixels  []byte // RGBA scratch buffer reused every Draw call
}

func newGame(b *bus.Bus, fb *video.FrameBuffer, cfg config.Config) *game {
	return &game{
		bus:    b,
		fb:     fb,
		img:    ebiten.NewImage(nesWidth, nesHeight),
		cfg:    cfg,
		pixels: make([]byte, nesWidth*nesHeight*4),
	}
}

func (g *game) Update() error {
	for key, button := range keyMap {
		if ebiten.IsKeyPressed(key) {
			g.bus.Controller1.SetButton(button, true)
		} else {
			g.bus.Controller1.SetButton(button, false)
		}
	}

	return g.bus.RunFrame()
}

func (g *game) Draw(screen *ebiten.Image) {
	for y := 0; y < nesHeight; y++ {
		for x := 0; x < nesWidth; x++ {
			rgb := g.fb.RGB(x, y)
			idx := (y*nesWidth + x) * 4
			g.pixels[idx+0] = rgb.R
			g.pixels[idx+1] = rgb.G
			g.pixels[idx+2] = rgb.B
			g.pixels[idx+3] = 0xFF
		}
	}
	g.img.WritePixels(g.pixels)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.img, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return nesWidth * g.cfg.Scale, nesHeight * g.cfg.Scale
}

func main() {
	romPath := flag.String("rom", "", "path to an iNES ROM file")
	scale := flag.Int("scale", 3, "integer window scale factor")
	headless := flag.Bool("headless", false, "run without opening a window")
	traceCPU := flag.Bool("trace-cpu", false, "enable CPU instruction trace logging")
	tracePPU := flag.Bool("trace-ppu", false, "enable PPU register write trace logging")
	traceMapper := flag.Bool("trace-mapper", false, "enable mapper bank-switch trace logging")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "gones: -rom is required")
		os.Exit(1)
	}

	f, err := os.Open(*romPath)
	if err != nil {
		log.Fatalf("gones: opening ROM: %v", err)
	}
	defer f.Close()

	cart, err := cartridge.Load(f)
	if err != nil {
		log.Fatalf("gones: loading cartridge: %v", err)
	}

	cfg := config.New(
		config.WithHeadless(*headless),
		config.WithScale(*scale),
		config.WithTraceCPU(*traceCPU),
		config.WithTracePPU(*tracePPU),
		config.WithTraceMapper(*traceMapper),
	)

	fb := video.NewFrameBuffer()
	b := bus.New(fb)
	b.LoadCartridge(cart)
	b.Reset()

	if cfg.TraceCPU {
		l := logging.New("cpu: ")
		l.SetEnabled(true)
		b.SetTraceLogger(l)
	}
	if cfg.TracePPU {
		l := logging.New("ppu: ")
		l.SetEnabled(true)
		b.SetPPUTraceLogger(l)
	}
	if cfg.TraceMapper {
		l := logging.New("mapper: ")
		l.SetEnabled(true)
		b.SetMapperTraceLogger(l)
	}

	if cfg.Headless {
		for i := 0; i < 60; i++ {
			if err := b.RunFrame(); err != nil {
				log.Fatalf("gones: %v", err)
			}
		}
		fmt.Printf("gones: ran %d frames headless\n", fb.Presented)
		return
	}

	g := newGame(b, fb, cfg)
	ebiten.SetWindowSize(nesWidth*cfg.Scale, nesHeight*cfg.Scale)
	ebiten.SetWindowTitle("gones")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("gones: %v", err)
	}
}
