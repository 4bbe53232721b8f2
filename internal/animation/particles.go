package animation

import "math/rand/v2"

// ParticleOptions configures a particle field.
type ParticleOptions struct {
	Count int
	// Size is the maximum extra radius added to a 1px base.
	Size float64
	// Speed bounds each velocity component to [-Speed/2, Speed/2).
	Speed float64
}

// DefaultParticleOptions returns the particle field defaults.
func DefaultParticleOptions() ParticleOptions {
	return ParticleOptions{Count: 50, Size: 2, Speed: 0.5}
}

// Particle is one drifting dot.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
}

// Particles is a field of dots drifting at constant velocity and wrapping at
// the edges.
type Particles struct {
	surface   Surface
	width     float64
	height    float64
	particles []Particle
}

// NewParticles scatters opts.Count particles over surface. A nil surface
// yields a field whose methods do nothing. rng may be nil.
func NewParticles(surface Surface, opts ParticleOptions, rng *rand.Rand) *Particles {
	p := &Particles{surface: surface}
	if surface == nil {
		return p
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	w, h := surface.Size()
	p.width, p.height = float64(w), float64(h)
	p.particles = make([]Particle, opts.Count)
	for i := range p.particles {
		p.particles[i] = Particle{
			X:      rng.Float64() * p.width,
			Y:      rng.Float64() * p.height,
			VX:     (rng.Float64() - 0.5) * opts.Speed,
			VY:     (rng.Float64() - 0.5) * opts.Speed,
			Radius: rng.Float64()*opts.Size + 1,
		}
	}
	return p
}

// Particles returns a copy of the current particle state.
func (p *Particles) Particles() []Particle {
	return append([]Particle(nil), p.particles...)
}

// Resize changes the wrapping bounds. Particles keep their positions.
func (p *Particles) Resize(width, height int) {
	if p.surface == nil {
		return
	}
	p.width, p.height = float64(width), float64(height)
}

// Step redraws the field and moves every particle.
func (p *Particles) Step() {
	if p.surface == nil {
		return
	}

	p.surface.Clear()
	for i := range p.particles {
		pt := &p.particles[i]
		p.surface.DrawDot(pt.X, pt.Y, pt.Radius)

		pt.X += pt.VX
		pt.Y += pt.VY

		if pt.X < 0 {
			pt.X = p.width
		}
		if pt.X > p.width {
			pt.X = 0
		}
		if pt.Y < 0 {
			pt.Y = p.height
		}
		if pt.Y > p.height {
			pt.Y = 0
		}
	}
}
