package storage

import (
	"github.com/san-kum/orbitsim/internal/physics"
)

// Sample is one body's state at one recorded step.
type Sample struct {
	Step             int     `json:"step"`
	Time             float64 `json:"time"`
	Body             string  `json:"body"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	VX               float64 `json:"vx"`
	VY               float64 `json:"vy"`
	DistanceToAnchor float64 `json:"distance_to_anchor"`
}

// Recorder collects samples every stride steps. It satisfies sim.Observer.
type Recorder struct {
	stride  int
	samples []Sample
}

func NewRecorder(stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{stride: stride}
}

func (r *Recorder) OnStep(step int, t float64, bodies []*physics.Body) {
	if step%r.stride != 0 {
		return
	}
	for _, b := range bodies {
		r.samples = append(r.samples, Sample{
			Step:             step,
			Time:             t,
			Body:             b.Name,
			X:                b.Position.X,
			Y:                b.Position.Y,
			VX:               b.Velocity.X,
			VY:               b.Velocity.Y,
			DistanceToAnchor: b.DistanceToAnchor(),
		})
	}
}

func (r *Recorder) Samples() []Sample { return r.samples }
func (r *Recorder) Stride() int       { return r.stride }

func (r *Recorder) Reset() {
	r.samples = r.samples[:0]
}

// ByBody groups samples per body, keeping step order.
func ByBody(samples []Sample) (map[string][]Sample, []string) {
	groups := make(map[string][]Sample)
	var order []string
	for _, s := range samples {
		if _, ok := groups[s.Body]; !ok {
			order = append(order, s.Body)
		}
		groups[s.Body] = append(groups[s.Body], s)
	}
	return groups, order
}
