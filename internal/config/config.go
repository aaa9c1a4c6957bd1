// Package config holds emulator run options.
//
// These never reach the core's cycle-exact behavior; they only steer the
// embedder (cmd/gones) and the amount of trace logging the core emits.
package config

// Option mutates a Config during construction.
type Option func(*Config)

// Config controls embedder-level and trace behavior. None of these fields
// affect CPU/PPU/Bus timing semantics.
type Config struct {
	// Headless disables the ebiten window and just runs the core.
	Headless bool
	// Scale is the integer window scale factor applied to the 256x240
	// frame buffer by cmd/gones.
	Scale int
	// TraceCPU enables per-instruction CPU trace logging.
	TraceCPU bool
	// TracePPU enables PPU register write trace logging.
	TracePPU bool
	// TraceMapper enables mapper bank-switch trace logging.
	TraceMapper bool
}

// Default returns the baseline configuration used when the embedder is
// given no explicit options.
func Default() Config {
	return Config{
		Headless: false,
		Scale:    3,
	}
}

// New builds a Config from Default with the given options applied.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithHeadless sets whether the embedder should skip window creation.
func WithHeadless(headless bool) Option {
	return func(c *Config) { c.Headless = headless }
}

// WithScale sets the integer window scale factor.
func WithScale(scale int) Option {
	return func(c *Config) {
		if scale > 0 {
			c.Scale = scale
		}
	}
}

// WithTraceCPU toggles CPU instruction tracing.
func WithTraceCPU(enabled bool) Option {
	return func(c *Config) { c.TraceCPU = enabled }
}

// WithTracePPU toggles PPU register write tracing.
func WithTracePPU(enabled bool) Option {
	return func(c *Config) { c.TracePPU = enabled }
}

// WithTraceMapper toggles mapper bank-switch tracing.
func WithTraceMapper(enabled bool) Option {
	return func(c *Config) { c.TraceMapper = enabled }
}
