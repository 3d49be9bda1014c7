package nbody

import (
	"time"

	"github.com/san-kum/nbodysim/internal/compute"
)

// Simulation owns one particle store and its scalar state. It is not safe
// for concurrent use; ticks parallelise internally through the backend.
type Simulation struct {
	backend compute.Backend

	// params holds the values the current array was generated with.
	params    Params
	particles []Particle

	dt          float64
	tickCount   int
	elapsedTime float64

	kineticEnergy   float64
	potentialEnergy float64
	totalEnergy     float64
	initialEnergy   float64

	computeTime time.Duration
}

type Option func(*Simulation)

// WithBackend sets the parallel backend used by ticks and energy passes.
func WithBackend(b compute.Backend) Option {
	return func(s *Simulation) {
		if b != nil {
			s.backend = b
		}
	}
}

// New returns an empty simulation. Call Init or Load to populate it.
func New(opts ...Option) *Simulation {
	p := DefaultParams()
	s := &Simulation{
		backend: compute.Default(),
		params:  p,
		dt:      p.Dt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init validates p, generates a fresh particle array and resets every
// counter. The previous array is released; on error nothing changes.
func (s *Simulation) Init(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	particles := generate(p)

	s.params = p
	s.particles = particles
	s.dt = p.Dt
	s.tickCount = 0
	s.elapsedTime = 0
	s.computeTime = 0

	s.UpdateEnergy()
	s.initialEnergy = s.totalEnergy
	return nil
}

// Destroy releases the particle array and clears run state. Generation
// parameters and dt are kept so Init can be called again.
func (s *Simulation) Destroy() {
	s.particles = nil
	s.tickCount = 0
	s.elapsedTime = 0
	s.kineticEnergy = 0
	s.potentialEnergy = 0
	s.totalEnergy = 0
	s.initialEnergy = 0
	s.computeTime = 0
}

// Particles returns the live particle array for reading or editing
// between ticks.
func (s *Simulation) Particles() []Particle { return s.particles }

// Recolor recomputes every display colour from the current masses and the
// max mass the array was generated with.
func (s *Simulation) Recolor() {
	recolor(s.particles, s.params.MaxMass)
}

// RecolorWith sets the max mass used for colouring and recolours. A loaded
// array keeps the max mass of the previous Init, so callers that know the
// generation value should pass it here.
func (s *Simulation) RecolorWith(maxMass float64) error {
	if err := validateMaxMass(maxMass); err != nil {
		return err
	}
	s.params.MaxMass = maxMass
	s.Recolor()
	return nil
}

// SetDt changes the step size for subsequent ticks.
func (s *Simulation) SetDt(dt float64) error {
	if err := validateDt(dt); err != nil {
		return err
	}
	s.dt = dt
	return nil
}

func (s *Simulation) Backend() compute.Backend { return s.backend }
func (s *Simulation) Params() Params           { return s.params }
func (s *Simulation) Count() int               { return len(s.particles) }
func (s *Simulation) Seed() int64              { return s.params.Seed }
func (s *Simulation) MaxMass() float64         { return s.params.MaxMass }
func (s *Simulation) MaxVel() float64          { return s.params.MaxVel }
func (s *Simulation) MaxAcc() float64          { return s.params.MaxAcc }
func (s *Simulation) Dt() float64              { return s.dt }
func (s *Simulation) TickCount() int           { return s.tickCount }
func (s *Simulation) ElapsedTime() float64     { return s.elapsedTime }
func (s *Simulation) KineticEnergy() float64   { return s.kineticEnergy }
func (s *Simulation) PotentialEnergy() float64 { return s.potentialEnergy }
func (s *Simulation) TotalEnergy() float64     { return s.totalEnergy }
func (s *Simulation) InitialEnergy() float64   { return s.initialEnergy }

// ComputeTime is the wall-clock duration of the last TickTimed call.
func (s *Simulation) ComputeTime() time.Duration { return s.computeTime }
