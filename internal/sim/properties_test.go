package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func newBody(name string, p, v r2.Vec, m float64, anchor bool) *physics.Body {
	b, err := physics.NewBody(physics.Params{Name: name, Position: p, Velocity: v, Mass: m, Anchor: anchor})
	Expect(err).NotTo(HaveOccurred())
	return b
}

func innerSystem() []*physics.Body {
	return []*physics.Body{
		newBody("sun", r2.Vec{}, r2.Vec{}, physics.SunMass, true),
		newBody("mercury", r2.Vec{X: 0.387 * physics.AU}, r2.Vec{Y: -47400}, 3.30e23, false),
		newBody("venus", r2.Vec{X: 0.723 * physics.AU}, r2.Vec{Y: -35020}, 4.8685e24, false),
		newBody("earth", r2.Vec{X: -physics.AU}, r2.Vec{Y: 29783}, 5.9742e24, false),
		newBody("mars", r2.Vec{X: -1.524 * physics.AU}, r2.Vec{Y: 24077}, 6.39e23, false),
	}
}

func totalMomentum(bodies []*physics.Body) (r2.Vec, float64) {
	var p r2.Vec
	var scale float64
	for _, b := range bodies {
		m := b.Momentum()
		p = r2.Add(p, m)
		scale += r2.Norm(m)
	}
	return p, scale
}

func runSteps(s *sim.Simulator, n int) {
	for i := 0; i < n; i++ {
		Expect(s.Step()).To(Succeed())
	}
}

var _ = Describe("Simulator", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Describe("pairwise forces", func() {
		It("are equal and opposite for every pair", func() {
			bodies := innerSystem()
			g := physics.DefaultGravity()
			for i := range bodies {
				for j := range bodies {
					if i == j {
						continue
					}
					fij, err := bodies[i].Attraction(bodies[j], g)
					Expect(err).NotTo(HaveOccurred())
					fji, err := bodies[j].Attraction(bodies[i], g)
					Expect(err).NotTo(HaveOccurred())
					Expect(fij.X).To(BeNumerically("~", -fji.X, 1e-12*r2.Norm(fij)))
					Expect(fij.Y).To(BeNumerically("~", -fji.Y, 1e-12*r2.Norm(fij)))
				}
			}
		})
	})

	Describe("momentum", func() {
		It("is conserved to round-off under snapshot ordering", func() {
			bodies := innerSystem()
			s, err := sim.New(bodies, cfg)
			Expect(err).NotTo(HaveOccurred())

			p0, scale := totalMomentum(bodies)
			runSteps(s, 1000)
			p1, _ := totalMomentum(bodies)

			Expect(r2.Norm(r2.Sub(p1, p0))).To(BeNumerically("<", 1e-10*scale))
		})

		It("produces a different trajectory under sequential ordering", func() {
			snap := innerSystem()
			seq := innerSystem()
			s1, err := sim.New(snap, cfg)
			Expect(err).NotTo(HaveOccurred())
			cfg.Ordering = sim.OrderingSequential
			s2, err := sim.New(seq, cfg)
			Expect(err).NotTo(HaveOccurred())

			runSteps(s1, 100)
			runSteps(s2, 100)

			Expect(seq[3].Position).NotTo(Equal(snap[3].Position))
			p0, scale := totalMomentum(innerSystem())
			p1, _ := totalMomentum(seq)
			Expect(r2.Norm(r2.Sub(p1, p0))).To(BeNumerically("<", 1e-3*scale))
		})
	})

	Describe("trails", func() {
		It("grow by one per step and never exceed capacity", func() {
			b, err := physics.NewBody(physics.Params{Name: "earth", Mass: 5.9742e24,
				Position: r2.Vec{X: -physics.AU}, Velocity: r2.Vec{Y: 29783}, TrailCapacity: 50})
			Expect(err).NotTo(HaveOccurred())
			sun := newBody("sun", r2.Vec{}, r2.Vec{}, physics.SunMass, true)

			s, err := sim.New([]*physics.Body{sun, b}, cfg)
			Expect(err).NotTo(HaveOccurred())

			runSteps(s, 30)
			Expect(b.TrailLen()).To(Equal(30))
			runSteps(s, 100)
			Expect(b.TrailLen()).To(Equal(50))
			Expect(b.TrailBuffer().Pushed()).To(Equal(130))
		})
	})

	Describe("degenerate separation", func() {
		It("never yields NaN forces", func() {
			a := newBody("a", r2.Vec{X: 7}, r2.Vec{}, 1e25, false)
			b := newBody("b", r2.Vec{X: 7}, r2.Vec{}, 1e25, false)
			s, err := sim.New([]*physics.Body{a, b}, cfg)
			Expect(err).NotTo(HaveOccurred())

			err = s.Step()
			Expect(err).To(MatchError(physics.ErrDegenerateSeparation))
			Expect(a.IsValid()).To(BeTrue())
			Expect(b.IsValid()).To(BeTrue())
		})
	})

	Describe("a sun and earth analog", func() {
		It("returns close to its starting point after 365 days", func() {
			sun := newBody("sun", r2.Vec{}, r2.Vec{}, physics.SunMass, true)
			earth := newBody("earth", r2.Vec{X: -physics.AU}, r2.Vec{Y: 29783}, 5.9742e24, false)

			s, err := sim.New([]*physics.Body{sun, earth}, cfg)
			Expect(err).NotTo(HaveOccurred())
			runSteps(s, 365)

			Expect(earth.Position.X).To(BeNumerically("~", -physics.AU, 0.01*physics.AU))
			Expect(earth.Position.Y).To(BeNumerically("~", 0, 0.05*physics.AU))
			Expect(earth.DistanceToAnchor()).To(BeNumerically("~", physics.AU, 0.02*physics.AU))
		})
	})
})
