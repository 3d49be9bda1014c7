package nbody_test

import (
	"context"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/nbody"
	"github.com/san-kum/nbodysim/internal/snapshot"
)

func smallParams(count int) nbody.Params {
	p := nbody.DefaultParams()
	p.Count = count
	p.MaxVel = 0.1
	p.MaxAcc = 0.05
	return p
}

func newSim(p nbody.Params) *nbody.Simulation {
	s := nbody.New(nbody.WithBackend(compute.NewCPUBackend(4)))
	Expect(s.Init(p)).To(Succeed())
	return s
}

func expectFinite(s *nbody.Simulation) {
	for i, p := range s.Particles() {
		for _, v := range []float64{
			p.Pos.X, p.Pos.Y, p.Pos.Z,
			p.Vel.X, p.Vel.Y, p.Vel.Z,
			p.Acc.X, p.Acc.Y, p.Acc.Z,
			p.KineticEnergy, p.PotentialEnergy,
		} {
			Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse(), "particle %d has non-finite field", i)
		}
	}
	Expect(math.IsNaN(s.TotalEnergy())).To(BeFalse())
}

func kinematics(ps []nbody.Particle) []nbody.Particle {
	out := make([]nbody.Particle, len(ps))
	for i, p := range ps {
		out[i] = nbody.Particle{Pos: p.Pos, Vel: p.Vel, Acc: p.Acc, Mass: p.Mass, Color: p.Color}
	}
	return out
}

var _ = Describe("Simulation", func() {
	Describe("Init", func() {
		It("generates identical arrays for identical params", func() {
			a := newSim(smallParams(64))
			b := newSim(smallParams(64))

			Expect(a.Particles()).To(Equal(b.Particles()))
			Expect(a.TotalEnergy()).To(Equal(b.TotalEnergy()))
		})

		It("generates different arrays for different seeds", func() {
			p := smallParams(16)
			a := newSim(p)
			p.Seed++
			b := newSim(p)

			Expect(a.Particles()[0].Pos).NotTo(Equal(b.Particles()[0].Pos))
		})

		It("draws values within the configured bounds", func() {
			p := smallParams(200)
			p.MaxMass = 3
			s := newSim(p)

			for _, q := range s.Particles() {
				for _, c := range []float64{q.Pos.X, q.Pos.Y, q.Pos.Z} {
					Expect(c).To(BeNumerically(">=", 0))
					Expect(c).To(BeNumerically("<", 1))
				}
				for _, c := range []float64{q.Vel.X, q.Vel.Y, q.Vel.Z} {
					Expect(math.Abs(c)).To(BeNumerically("<=", p.MaxVel))
				}
				for _, c := range []float64{q.Acc.X, q.Acc.Y, q.Acc.Z} {
					Expect(math.Abs(c)).To(BeNumerically("<=", p.MaxAcc))
				}
				Expect(q.Mass).To(BeNumerically(">=", 0))
				Expect(q.Mass).To(BeNumerically("<", p.MaxMass))
			}
		})

		It("leaves velocity and acceleration zero when their bounds are zero", func() {
			p := smallParams(8)
			p.MaxVel = 0
			p.MaxAcc = 0
			s := newSim(p)

			for _, q := range s.Particles() {
				Expect(q.Vel.X).To(BeZero())
				Expect(q.Vel.Y).To(BeZero())
				Expect(q.Vel.Z).To(BeZero())
				Expect(q.Acc.X).To(BeZero())
			}
			Expect(s.KineticEnergy()).To(BeZero())
		})

		It("resets counters and captures the baseline", func() {
			s := newSim(smallParams(16))
			s.TickN(3)

			Expect(s.Init(smallParams(16))).To(Succeed())
			Expect(s.TickCount()).To(BeZero())
			Expect(s.ElapsedTime()).To(BeZero())
			Expect(s.InitialEnergy()).To(Equal(s.TotalEnergy()))
			Expect(s.Count()).To(Equal(16))
		})

		DescribeTable("rejects out-of-range params without touching state",
			func(mutate func(*nbody.Params)) {
				s := newSim(smallParams(8))
				before := append([]nbody.Particle(nil), s.Particles()...)

				p := smallParams(8)
				mutate(&p)
				Expect(s.Init(p)).To(MatchError(nbody.ErrParameterBounds))
				Expect(s.Particles()).To(Equal(before))
				Expect(s.Params()).To(Equal(smallParams(8)))
			},
			Entry("zero count", func(p *nbody.Params) { p.Count = 0 }),
			Entry("negative count", func(p *nbody.Params) { p.Count = -5 }),
			Entry("zero dt", func(p *nbody.Params) { p.Dt = 0 }),
			Entry("NaN dt", func(p *nbody.Params) { p.Dt = math.NaN() }),
			Entry("zero max mass", func(p *nbody.Params) { p.MaxMass = 0 }),
			Entry("negative max velocity", func(p *nbody.Params) { p.MaxVel = -1 }),
			Entry("infinite max acceleration", func(p *nbody.Params) { p.MaxAcc = math.Inf(1) }),
		)
	})

	Describe("Tick", func() {
		It("does nothing on an empty simulation", func() {
			s := nbody.New()
			s.Tick()

			Expect(s.TickCount()).To(BeZero())
			Expect(s.ElapsedTime()).To(BeZero())
			Expect(s.TotalEnergy()).To(BeZero())
		})

		It("advances counters exactly once per tick", func() {
			s := newSim(smallParams(32))
			for i := 1; i <= 10; i++ {
				s.Tick()
				Expect(s.TickCount()).To(Equal(i))
				Expect(s.ElapsedTime()).To(BeNumerically("~", float64(i)*s.Dt(), 1e-12))
			}
		})

		It("keeps total energy equal to kinetic plus potential", func() {
			s := newSim(smallParams(48))
			for i := 0; i < 5; i++ {
				s.Tick()
				Expect(s.TotalEnergy()).To(Equal(s.KineticEnergy() + s.PotentialEnergy()))
			}
		})

		It("leaves a lone particle drifting under its own state", func() {
			p := smallParams(1)
			p.MaxVel = 0
			p.MaxAcc = 0
			s := newSim(p)
			start := s.Particles()[0].Pos

			s.TickN(4)

			q := s.Particles()[0]
			Expect(q.Pos).To(Equal(start))
			Expect(q.Acc.X).To(BeZero())
			Expect(s.PotentialEnergy()).To(BeZero())
			Expect(s.KineticEnergy()).To(BeZero())
		})

		It("moves a lone particle uniformly under its initial velocity", func() {
			p := smallParams(1)
			p.MaxVel = 0.3
			p.MaxAcc = 0
			s := newSim(p)
			start := s.Particles()[0]
			Expect(r3.Norm2(start.Vel)).To(BeNumerically(">", 0))

			const ticks = 5
			s.TickN(ticks)

			q := s.Particles()[0]
			want := r3.Add(start.Pos, r3.Scale(ticks*s.Dt()*nbody.DriftCoefficient, start.Vel))
			Expect(q.Pos.X).To(BeNumerically("~", want.X, 1e-12))
			Expect(q.Pos.Y).To(BeNumerically("~", want.Y, 1e-12))
			Expect(q.Pos.Z).To(BeNumerically("~", want.Z, 1e-12))
			Expect(q.Vel).To(Equal(start.Vel))
			Expect(q.Acc).To(Equal(r3.Vec{}))
			Expect(s.PotentialEnergy()).To(BeZero())
			Expect(s.KineticEnergy()).To(BeNumerically("~", 0.5*start.Mass*r3.Norm2(start.Vel), 1e-15))
		})

		It("stays finite for coincident particles", func() {
			p := smallParams(2)
			p.MaxVel = 0
			p.MaxAcc = 0
			s := newSim(p)
			ps := s.Particles()
			ps[1].Pos = ps[0].Pos

			s.TickN(3)

			expectFinite(s)
			Expect(s.Particles()[0].Acc.X).To(BeZero())
		})

		It("attracts a resting pair", func() {
			p := smallParams(2)
			p.MaxVel = 0
			p.MaxAcc = 0
			s := newSim(p)
			Expect(s.KineticEnergy()).To(BeZero())

			s.Tick()
			Expect(s.PotentialEnergy()).To(BeNumerically("<", 0))

			// the first kick uses the zero initial acceleration
			Expect(s.KineticEnergy()).To(BeZero())
			a, b := s.Particles()[0], s.Particles()[1]
			Expect(a.Acc).NotTo(Equal(b.Acc))

			// acceleration points from each particle towards the other
			d := r3.Sub(b.Pos, a.Pos)
			Expect(r3.Dot(a.Acc, d)).To(BeNumerically(">", 0))
			Expect(r3.Dot(b.Acc, d)).To(BeNumerically("<", 0))

			s.Tick()
			Expect(s.KineticEnergy()).To(BeNumerically(">", 0))
		})

		It("produces the same particles on every backend", func() {
			p := smallParams(64)
			serial := nbody.New(nbody.WithBackend(compute.NewSerialBackend()))
			Expect(serial.Init(p)).To(Succeed())
			parallel := nbody.New(nbody.WithBackend(compute.NewCPUBackend(7)))
			Expect(parallel.Init(p)).To(Succeed())

			serial.TickN(3)
			parallel.TickN(3)

			Expect(parallel.Particles()).To(Equal(serial.Particles()))
			Expect(parallel.TotalEnergy()).To(BeNumerically("~", serial.TotalEnergy(), 1e-18))
		})

		It("records compute time for timed ticks", func() {
			s := newSim(smallParams(64))
			d := s.TickTimed()

			Expect(d).To(BeNumerically(">", 0))
			Expect(s.ComputeTime()).To(Equal(d))
		})
	})

	Describe("Run", func() {
		It("runs the requested number of ticks", func() {
			s := newSim(smallParams(16))
			calls := 0

			err := s.Run(context.Background(), 6, func(*nbody.Simulation) bool {
				calls++
				return true
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(6))
			Expect(s.TickCount()).To(Equal(6))
		})

		It("stops when the observer returns false", func() {
			s := newSim(smallParams(16))

			err := s.Run(context.Background(), 100, func(s *nbody.Simulation) bool {
				return s.TickCount() < 3
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(s.TickCount()).To(Equal(3))
		})

		It("stops on a cancelled context", func() {
			s := newSim(smallParams(16))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(s.Run(ctx, 10, nil)).To(MatchError(context.Canceled))
			Expect(s.TickCount()).To(BeZero())
		})
	})

	Describe("Energy", func() {
		It("recomputes without advancing time or moving particles", func() {
			s := newSim(smallParams(32))
			s.TickN(2)
			before := kinematics(s.Particles())
			tick, elapsed := s.TickCount(), s.ElapsedTime()

			s.UpdateEnergy()

			Expect(kinematics(s.Particles())).To(Equal(before))
			Expect(s.TickCount()).To(Equal(tick))
			Expect(s.ElapsedTime()).To(Equal(elapsed))
			Expect(s.TotalEnergy()).To(Equal(s.KineticEnergy() + s.PotentialEnergy()))
		})

		It("reports zero deviation right after a rebaseline", func() {
			s := newSim(smallParams(32))
			s.TickN(5)
			s.RebaselineEnergy()

			dev, err := s.EnergyDeviation()
			Expect(err).NotTo(HaveOccurred())
			Expect(dev).To(BeZero())
		})

		It("reports a finite non-negative deviation after ticking", func() {
			s := newSim(smallParams(32))
			s.TickN(5)

			dev, err := s.EnergyDeviation()
			Expect(err).NotTo(HaveOccurred())
			Expect(dev).To(BeNumerically(">=", 0))
			Expect(math.IsInf(dev, 0)).To(BeFalse())
		})

		It("refuses a deviation against a zero baseline", func() {
			p := smallParams(1)
			p.MaxVel = 0
			p.MaxAcc = 0
			s := newSim(p)
			Expect(s.InitialEnergy()).To(BeZero())

			_, err := s.EnergyDeviation()
			Expect(err).To(MatchError(nbody.ErrZeroBaseline))
			Expect(math.IsNaN(s.Report().Deviation())).To(BeTrue())
		})

		It("reports the scalar state", func() {
			s := newSim(smallParams(16))
			s.TickN(2)

			r := s.Report()
			Expect(r.Tick).To(Equal(2))
			Expect(r.Time).To(Equal(s.ElapsedTime()))
			Expect(r.Total).To(Equal(s.TotalEnergy()))
			Expect(r.Initial).To(Equal(s.InitialEnergy()))

			dev, err := s.EnergyDeviation()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Deviation()).To(Equal(dev))
		})
	})

	Describe("SetDt", func() {
		It("changes the step for later ticks", func() {
			s := newSim(smallParams(4))
			Expect(s.SetDt(0.5)).To(Succeed())
			s.Tick()

			Expect(s.Dt()).To(Equal(0.5))
			Expect(s.ElapsedTime()).To(Equal(0.5))
		})

		It("rejects non-positive steps", func() {
			s := newSim(smallParams(4))
			for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
				Expect(s.SetDt(dt)).To(MatchError(nbody.ErrParameterBounds))
			}
			Expect(s.Dt()).To(Equal(nbody.DefaultDt))
		})
	})

	Describe("Recolor", func() {
		It("follows edited masses", func() {
			s := newSim(smallParams(4))
			ps := s.Particles()
			ps[0].Mass = 0
			s.Recolor()

			// index 0 is hue 0; a massless particle is at full value
			Expect(ps[0].Color).To(Equal(nbody.HSVToRGB(0, 1, 1)))
		})

		It("uses an explicit max mass after a load", func() {
			p := smallParams(4)
			p.MaxMass = 10
			src := newSim(p)
			path := filepath.Join(GinkgoT().TempDir(), "state.bin")
			Expect(src.Save(path)).To(Succeed())

			dst := nbody.New()
			Expect(dst.Load(path)).To(Succeed())
			Expect(dst.MaxMass()).To(Equal(nbody.DefaultMaxMass))

			Expect(dst.RecolorWith(10)).To(Succeed())
			Expect(dst.MaxMass()).To(Equal(10.0))
			Expect(dst.Particles()).To(Equal(src.Particles()))
		})

		It("rejects a non-positive max mass", func() {
			s := newSim(smallParams(4))
			before := append([]nbody.Particle(nil), s.Particles()...)

			Expect(s.RecolorWith(0)).To(MatchError(nbody.ErrParameterBounds))
			Expect(s.RecolorWith(math.Inf(1))).To(MatchError(nbody.ErrParameterBounds))
			Expect(s.Particles()).To(Equal(before))
		})
	})

	Describe("Destroy", func() {
		It("releases the particles and clears state", func() {
			s := newSim(smallParams(8))
			s.TickN(2)
			s.Destroy()

			Expect(s.Count()).To(BeZero())
			Expect(s.TickCount()).To(BeZero())
			Expect(s.TotalEnergy()).To(BeZero())

			s.Tick()
			Expect(s.TickCount()).To(BeZero())
		})
	})

	Describe("Save and Load", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "state.bin")
		})

		It("restores a fresh simulation exactly", func() {
			src := newSim(smallParams(50))
			Expect(src.Save(path)).To(Succeed())

			dst := nbody.New(nbody.WithBackend(compute.NewCPUBackend(4)))
			Expect(dst.Load(path)).To(Succeed())

			Expect(dst.Particles()).To(Equal(src.Particles()))
			Expect(dst.Count()).To(Equal(50))
			Expect(dst.TickCount()).To(BeZero())
			Expect(dst.TotalEnergy()).To(Equal(src.TotalEnergy()))
			Expect(dst.InitialEnergy()).To(Equal(src.InitialEnergy()))
		})

		It("restores kinematics and counters after ticking", func() {
			src := newSim(smallParams(40))
			src.TickN(7)
			Expect(src.Save(path)).To(Succeed())

			dst := newSim(smallParams(3))
			Expect(dst.Load(path)).To(Succeed())

			Expect(kinematics(dst.Particles())).To(Equal(kinematics(src.Particles())))
			Expect(dst.Count()).To(Equal(40))
			Expect(dst.TickCount()).To(Equal(7))
			Expect(dst.ElapsedTime()).To(Equal(src.ElapsedTime()))

			// the loaded state becomes the new baseline
			Expect(dst.InitialEnergy()).To(Equal(dst.TotalEnergy()))
			dev, err := dst.EnergyDeviation()
			Expect(err).NotTo(HaveOccurred())
			Expect(dev).To(BeZero())
		})

		It("continues identically after a reload", func() {
			a := newSim(smallParams(24))
			a.TickN(3)
			Expect(a.Save(path)).To(Succeed())

			b := nbody.New(nbody.WithBackend(compute.NewCPUBackend(4)))
			Expect(b.Load(path)).To(Succeed())

			a.TickN(2)
			b.TickN(2)
			Expect(kinematics(b.Particles())).To(Equal(kinematics(a.Particles())))
		})

		It("leaves state unchanged when the file is missing", func() {
			s := newSim(smallParams(8))
			s.TickN(2)
			before := append([]nbody.Particle(nil), s.Particles()...)

			err := s.Load(filepath.Join(filepath.Dir(path), "missing.bin"))
			Expect(err).To(MatchError(os.ErrNotExist))

			Expect(s.Particles()).To(Equal(before))
			Expect(s.TickCount()).To(Equal(2))
		})

		It("leaves state unchanged when the file is truncated", func() {
			s := newSim(smallParams(8))
			Expect(s.Save(path)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, data[:len(data)-10], 0644)).To(Succeed())

			other := newSim(smallParams(4))
			before := append([]nbody.Particle(nil), other.Particles()...)
			Expect(other.Load(path)).To(MatchError(snapshot.ErrFormat))
			Expect(other.Particles()).To(Equal(before))
		})

		DescribeTable("rejects malformed headers without changing state",
			func(h snapshot.Header) {
				recs := make([]snapshot.Record, h.Count)
				for i := range recs {
					recs[i].Mass = 1
				}
				Expect(snapshot.WriteFile(path, h, recs)).To(Succeed())

				s := newSim(smallParams(4))
				s.TickN(2)
				before := append([]nbody.Particle(nil), s.Particles()...)

				Expect(s.Load(path)).To(MatchError(snapshot.ErrFormat))
				Expect(s.Particles()).To(Equal(before))
				Expect(s.TickCount()).To(Equal(2))
			},
			Entry("negative tick count", snapshot.Header{Count: 1, TickCount: -7}),
			Entry("negative elapsed time", snapshot.Header{Count: 1, ElapsedTime: -1}),
			Entry("no particles", snapshot.Header{TickCount: 5}),
		)

		It("rejects a header claiming more particles than the file holds", func() {
			Expect(snapshot.WriteFile(path, snapshot.Header{TickCount: 1}, nil)).To(Succeed())
			f, err := os.OpenFile(path, os.O_WRONLY, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteAt([]byte{0, 0, 0, 1}, 0) // count = 1<<24
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			s := newSim(smallParams(4))
			Expect(s.Load(path)).To(MatchError(snapshot.ErrFormat))
			Expect(s.Count()).To(Equal(4))
		})

		It("refuses to save an empty simulation", func() {
			s := newSim(smallParams(4))
			s.Destroy()
			Expect(s.Save(path)).To(MatchError(nbody.ErrEmpty))
			_, err := os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("fails to save into a missing directory", func() {
			s := newSim(smallParams(4))
			Expect(s.Save(filepath.Join(filepath.Dir(path), "no", "state.bin"))).NotTo(Succeed())
		})
	})
})
