package analysis

import (
	"math"

	"github.com/san-kum/orbitsim/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Body         string
	Samples      int
	Perihelion   float64
	Aphelion     float64
	MeanDistance float64
	StdDistance  float64
	Eccentricity float64
	// ClosureError is the gap between the first and last relative
	// positions, as a fraction of the mean distance.
	ClosureError float64
	// Period is measured from the swept angle. When less than one
	// revolution was recorded it is extrapolated and Complete is false.
	Period         float64
	Complete       bool
	SpectralPeriod float64
}

// Summarize computes an orbit summary for every body except the anchor,
// using positions relative to the anchor at the same step.
func Summarize(samples []storage.Sample, anchor string) []Summary {
	groups, order := storage.ByBody(samples)
	ref, ok := groups[anchor]
	if !ok {
		return nil
	}
	anchorAt := make(map[int]r2.Vec, len(ref))
	for _, s := range ref {
		anchorAt[s.Step] = r2.Vec{X: s.X, Y: s.Y}
	}

	var out []Summary
	for _, name := range order {
		if name == anchor {
			continue
		}
		var rel []r2.Vec
		var times []float64
		for _, s := range groups[name] {
			a, ok := anchorAt[s.Step]
			if !ok {
				continue
			}
			rel = append(rel, r2.Sub(r2.Vec{X: s.X, Y: s.Y}, a))
			times = append(times, s.Time)
		}
		if len(rel) < 2 {
			continue
		}
		out = append(out, summarize(name, rel, times))
	}
	return out
}

func summarize(name string, rel []r2.Vec, times []float64) Summary {
	dist := make([]float64, len(rel))
	for i, p := range rel {
		dist[i] = r2.Norm(p)
	}

	s := Summary{
		Body:         name,
		Samples:      len(rel),
		Perihelion:   floats.Min(dist),
		Aphelion:     floats.Max(dist),
		MeanDistance: stat.Mean(dist, nil),
		StdDistance:  stat.StdDev(dist, nil),
	}
	if s.Aphelion+s.Perihelion > 0 {
		s.Eccentricity = (s.Aphelion - s.Perihelion) / (s.Aphelion + s.Perihelion)
	}
	if s.MeanDistance > 0 {
		s.ClosureError = r2.Norm(r2.Sub(rel[len(rel)-1], rel[0])) / s.MeanDistance
	}
	s.Period, s.Complete = sweptPeriod(rel, times)
	if len(times) > 1 {
		s.SpectralPeriod = SpectralPeriod(dist, times[1]-times[0])
	}
	return s
}

// sweptPeriod unwraps the polar angle and returns the time at which one
// full revolution was first completed, interpolating between samples.
func sweptPeriod(rel []r2.Vec, times []float64) (float64, bool) {
	var swept float64
	prev := math.Atan2(rel[0].Y, rel[0].X)
	for i := 1; i < len(rel); i++ {
		cur := math.Atan2(rel[i].Y, rel[i].X)
		d := cur - prev
		if d > math.Pi {
			d -= 2 * math.Pi
		} else if d < -math.Pi {
			d += 2 * math.Pi
		}
		before := math.Abs(swept)
		swept += d
		prev = cur

		if after := math.Abs(swept); after >= 2*math.Pi {
			frac := (2*math.Pi - before) / (after - before)
			return times[i-1] + frac*(times[i]-times[i-1]) - times[0], true
		}
	}

	elapsed := times[len(times)-1] - times[0]
	if swept == 0 || elapsed == 0 {
		return 0, false
	}
	return elapsed * 2 * math.Pi / math.Abs(swept), false
}
