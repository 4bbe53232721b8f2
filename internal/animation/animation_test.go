package animation

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type glyphCall struct {
	x, y  int
	glyph rune
}

// fakeSurface records draw calls.
type fakeSurface struct {
	mu     sync.Mutex
	width  int
	height int
	fades  int
	clears int
	glyphs []glyphCall
	dots   int
}

func (s *fakeSurface) Size() (int, int) { return s.width, s.height }

func (s *fakeSurface) Fade() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fades++
}

func (s *fakeSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *fakeSurface) DrawGlyph(x, y int, glyph rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glyphs = append(s.glyphs, glyphCall{x, y, glyph})
}

func (s *fakeSurface) DrawDot(float64, float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dots++
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// ---------------------------------------------------------------------------
// Rain
// ---------------------------------------------------------------------------

func TestMatrixOptions(t *testing.T) {
	o := MatrixOptions()
	assert.Equal(t, 16, o.FontSize)
	assert.Equal(t, 1.0, o.Speed)
	assert.Equal(t, 0.95, o.Density)
	assert.Contains(t, string(o.Glyphs), "ア")
	assert.Contains(t, string(o.Glyphs), "Z")
}

func TestDigitalOptions(t *testing.T) {
	o := DigitalOptions()
	assert.Equal(t, 14, o.FontSize)
	assert.Equal(t, 50*time.Millisecond, o.FrameDelay)
	assert.Equal(t, 0.98, o.Density)
	assert.Empty(t, o.Glyphs)
	assert.Equal(t, VariantDigital, OptionsFor(VariantDigital).Variant)
	assert.Equal(t, VariantMatrix, OptionsFor("bogus").Variant)
}

func TestRain_StepDrawsOneGlyphPerColumn(t *testing.T) {
	surface := &fakeSurface{width: 160, height: 320}
	rain := NewRain(surface, MatrixOptions(), testRand())

	require.Equal(t, 10, rain.Columns())
	rain.Step()

	assert.Equal(t, 1, surface.fades)
	require.Len(t, surface.glyphs, 10)
	for i, g := range surface.glyphs {
		assert.Equal(t, i*16, g.x)
		assert.Equal(t, 16, g.y)
		assert.Contains(t, MatrixGlyphs, string(g.glyph))
	}
	for _, d := range rain.Drops() {
		assert.Equal(t, 2.0, d)
	}
}

func TestRain_DigitalGlyphsAreASCII(t *testing.T) {
	surface := &fakeSurface{width: 140, height: 140}
	rain := NewRain(surface, DigitalOptions(), testRand())

	for i := 0; i < 5; i++ {
		rain.Step()
	}
	for _, g := range surface.glyphs {
		assert.Less(t, g.glyph, rune(128))
	}
}

func TestRain_DropRestartsBelowSurface(t *testing.T) {
	opts := MatrixOptions()
	opts.Density = 0
	surface := &fakeSurface{width: 32, height: 16}
	rain := NewRain(surface, opts, testRand())

	rain.Step() // 1*16 is not below 16
	assert.Equal(t, []float64{2, 2}, rain.Drops())

	rain.Step() // 2*16 > 16, restart at 0 then advance
	assert.Equal(t, []float64{1, 1}, rain.Drops())
}

func TestRain_FullDensityNeverRestarts(t *testing.T) {
	opts := MatrixOptions()
	opts.Density = 1
	surface := &fakeSurface{width: 16, height: 16}
	rain := NewRain(surface, opts, testRand())

	for i := 0; i < 10; i++ {
		rain.Step()
	}
	assert.Equal(t, []float64{11}, rain.Drops())
}

func TestRain_MatrixResizeKeepsDropsForSameColumns(t *testing.T) {
	surface := &fakeSurface{width: 64, height: 320}
	rain := NewRain(surface, MatrixOptions(), testRand())
	rain.Step()

	rain.Resize(70, 100)
	assert.Equal(t, []float64{2, 2, 2, 2}, rain.Drops())

	rain.Resize(96, 100)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, rain.Drops())
}

func TestRain_DigitalResizeAlwaysResets(t *testing.T) {
	surface := &fakeSurface{width: 28, height: 280}
	rain := NewRain(surface, DigitalOptions(), testRand())
	rain.Step()

	rain.Resize(28, 280)
	assert.Equal(t, []float64{1, 1}, rain.Drops())
}

func TestRain_NilSurfaceIsNoop(t *testing.T) {
	rain := NewRain(nil, MatrixOptions(), nil)

	assert.NotPanics(t, func() {
		rain.Step()
		rain.Resize(100, 100)
	})
	assert.Equal(t, 0, rain.Columns())
}

// ---------------------------------------------------------------------------
// Particles
// ---------------------------------------------------------------------------

func TestParticles_Init(t *testing.T) {
	surface := &fakeSurface{width: 200, height: 100}
	opts := DefaultParticleOptions()
	field := NewParticles(surface, opts, testRand())

	ps := field.Particles()
	require.Len(t, ps, 50)
	for _, p := range ps {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.Less(t, p.X, 200.0)
		assert.GreaterOrEqual(t, p.VX, -0.25)
		assert.Less(t, p.VX, 0.25)
		assert.GreaterOrEqual(t, p.Radius, 1.0)
		assert.Less(t, p.Radius, 3.0)
	}
}

func TestParticles_StepWrapsAtEdges(t *testing.T) {
	surface := &fakeSurface{width: 10, height: 10}
	field := NewParticles(surface, ParticleOptions{}, testRand())
	field.particles = []Particle{
		{X: 9.9, Y: 5, VX: 0.5},
		{X: 0.1, Y: 5, VX: -0.5},
		{X: 5, Y: 9.9, VY: 0.5},
		{X: 5, Y: 0.1, VY: -0.5},
	}

	field.Step()

	ps := field.Particles()
	assert.Equal(t, 0.0, ps[0].X)
	assert.Equal(t, 10.0, ps[1].X)
	assert.Equal(t, 0.0, ps[2].Y)
	assert.Equal(t, 10.0, ps[3].Y)
	assert.Equal(t, 1, surface.clears)
	assert.Equal(t, 4, surface.dots)
}

func TestParticles_NilSurfaceIsNoop(t *testing.T) {
	field := NewParticles(nil, DefaultParticleOptions(), nil)
	assert.NotPanics(t, func() {
		field.Step()
		field.Resize(10, 10)
	})
	assert.Empty(t, field.Particles())
}

// ---------------------------------------------------------------------------
// Loop
// ---------------------------------------------------------------------------

type countingAnimation struct {
	steps atomic.Int64
}

func (a *countingAnimation) Step() { a.steps.Add(1) }

func TestLoop_FrameLimit(t *testing.T) {
	anim := &countingAnimation{}
	var frames []int
	loop := NewLoop("test", anim, time.Millisecond).
		WithFrameLimit(5).
		OnFrame(func(n int) { frames = append(frames, n) })

	loop.Start(context.Background())
	loop.Wait()

	assert.Equal(t, int64(5), anim.steps.Load())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, frames)
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	anim := &countingAnimation{}
	loop := NewLoop("test", anim, time.Millisecond)

	loop.Stop()
	loop.Start(context.Background())
	require.Eventually(t, func() bool { return anim.steps.Load() > 0 }, time.Second, time.Millisecond)

	loop.Stop()
	loop.Stop()

	after := anim.steps.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, anim.steps.Load())
}

func TestLoop_ContextCancelStops(t *testing.T) {
	anim := &countingAnimation{}
	loop := NewLoop("test", anim, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	loop.Start(ctx)
	cancel()
	loop.Wait()

	after := anim.steps.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, anim.steps.Load())
}

func TestLoop_StartWhileRunningIsNoop(t *testing.T) {
	anim := &countingAnimation{}
	loop := NewLoop("test", anim, time.Millisecond).WithFrameLimit(3)

	loop.Start(context.Background())
	loop.Start(context.Background())
	loop.Wait()

	assert.Equal(t, int64(3), anim.steps.Load())
}

func TestLoop_NilAnimation(t *testing.T) {
	loop := NewLoop("test", nil, time.Millisecond)
	assert.NotPanics(t, func() {
		loop.Start(context.Background())
		loop.Wait()
		loop.Stop()
	})
}

// ---------------------------------------------------------------------------
// TextSurface
// ---------------------------------------------------------------------------

func TestTextSurface_GlyphAboveBaseline(t *testing.T) {
	s := NewTextSurface(3, 2, 16)

	w, h := s.Size()
	assert.Equal(t, 48, w)
	assert.Equal(t, 32, h)

	s.DrawGlyph(16, 16, 'A')
	s.DrawGlyph(32, 32, 'B')
	s.DrawGlyph(0, 0, 'X')   // above the top row
	s.DrawGlyph(48, 16, 'Y') // right of the last column

	assert.Equal(t, " A \n  B\n", s.String())
}

func TestTextSurface_TrailFades(t *testing.T) {
	s := NewTextSurface(1, 1, 1)
	s.DrawGlyph(0, 1, 'Z')

	for i := 0; i < DefaultTrail-1; i++ {
		s.Fade()
	}
	assert.Equal(t, "Z\n", s.String())

	s.Fade()
	assert.Equal(t, " \n", s.String())
}

func TestTextSurface_ClearAndDots(t *testing.T) {
	s := NewTextSurface(2, 1, 1)
	s.DrawDot(0, 0, 1)
	s.DrawDot(1, 0, 3)
	assert.Equal(t, ".o\n", s.String())

	s.Clear()
	assert.Equal(t, "  \n", s.String())
}

func TestTextSurface_RenderAndRain(t *testing.T) {
	s := NewTextSurface(10, 5, 16)
	rain := NewRain(s, DigitalOptions(), testRand())
	rain.Resize(s.Size())
	rain.Step()

	var b strings.Builder
	require.NoError(t, s.Render(&b, true))
	assert.True(t, strings.HasPrefix(b.String(), "\033[H"))
	assert.Equal(t, 5, strings.Count(b.String(), "\n"))
}

func TestTextSurface_NonPrintableBecomesSpace(t *testing.T) {
	s := NewTextSurface(1, 1, 1)
	s.DrawGlyph(0, 1, '\x07')
	assert.Equal(t, " \n", s.String())
}
