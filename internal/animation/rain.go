package animation

import (
	"math/rand/v2"
	"time"
)

// Variant names a rain style.
type Variant string

const (
	VariantMatrix  Variant = "matrix"
	VariantDigital Variant = "digital"
)

// MatrixGlyphs is the katakana and alphanumeric set used by the matrix rain.
const MatrixGlyphs = "アァカサタナハマヤャラワガザダバパイィキシチニヒミリヰギジヂビピウゥクスツヌフムユュルグズブヅプエェケセテネヘメレヱゲゼデベペオォコソトノホモヨョロヲゴゾドボポヴッン0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RainOptions configures a Rain.
type RainOptions struct {
	Variant Variant
	// FontSize is the column width and row height in pixels.
	FontSize int
	// Speed is how many rows a drop advances per frame.
	Speed float64
	// FrameDelay is the pause between frames.
	FrameDelay time.Duration
	// Density is the probability that a drop past the bottom keeps falling
	// instead of restarting, per frame.
	Density float64
	// Glyphs to pick from. Empty means a random code point below 128.
	Glyphs []rune
}

// MatrixOptions returns the matrix rain defaults.
func MatrixOptions() RainOptions {
	return RainOptions{
		Variant:    VariantMatrix,
		FontSize:   16,
		Speed:      1,
		FrameDelay: time.Second / 60,
		Density:    0.95,
		Glyphs:     []rune(MatrixGlyphs),
	}
}

// DigitalOptions returns the digital rain defaults.
func DigitalOptions() RainOptions {
	return RainOptions{
		Variant:    VariantDigital,
		FontSize:   14,
		Speed:      1,
		FrameDelay: 50 * time.Millisecond,
		Density:    0.98,
	}
}

// OptionsFor returns the defaults for v, falling back to the matrix style.
func OptionsFor(v Variant) RainOptions {
	if v == VariantDigital {
		return DigitalOptions()
	}
	return MatrixOptions()
}

// Rain draws falling glyph columns. Every drop starts at row 1.
type Rain struct {
	opts    RainOptions
	surface Surface
	rng     *rand.Rand
	height  int
	drops   []float64
}

// NewRain creates a rain sized to surface. A nil surface yields a Rain whose
// methods do nothing. rng may be nil.
func NewRain(surface Surface, opts RainOptions, rng *rand.Rand) *Rain {
	if opts.FontSize <= 0 {
		opts.FontSize = MatrixOptions().FontSize
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	r := &Rain{opts: opts, surface: surface, rng: rng}
	if surface != nil {
		w, h := surface.Size()
		r.height = h
		r.drops = newDrops(w / opts.FontSize)
	}
	return r
}

func newDrops(columns int) []float64 {
	drops := make([]float64, max(columns, 0))
	for i := range drops {
		drops[i] = 1
	}
	return drops
}

// Options returns the effective options.
func (r *Rain) Options() RainOptions {
	return r.opts
}

// Columns returns the current column count.
func (r *Rain) Columns() int {
	return len(r.drops)
}

// Drops returns a copy of the drop positions, in rows.
func (r *Rain) Drops() []float64 {
	return append([]float64(nil), r.drops...)
}

// Resize adapts the rain to a new surface size. The matrix style keeps its
// drops unless the column count changes; the digital style always restarts.
func (r *Rain) Resize(width, height int) {
	if r.surface == nil {
		return
	}
	r.height = height
	columns := width / r.opts.FontSize
	if r.opts.Variant == VariantDigital || columns != len(r.drops) {
		r.drops = newDrops(columns)
	}
}

// Step draws one frame and advances every drop.
func (r *Rain) Step() {
	if r.surface == nil {
		return
	}

	r.surface.Fade()
	fs := float64(r.opts.FontSize)
	for i := range r.drops {
		r.surface.DrawGlyph(i*r.opts.FontSize, int(r.drops[i]*fs), r.glyph())

		if r.drops[i]*fs > float64(r.height) && r.rng.Float64() > r.opts.Density {
			r.drops[i] = 0
		}
		r.drops[i] += r.opts.Speed
	}
}

func (r *Rain) glyph() rune {
	if len(r.opts.Glyphs) == 0 {
		return rune(r.rng.IntN(128))
	}
	return r.opts.Glyphs[r.rng.IntN(len(r.opts.Glyphs))]
}
