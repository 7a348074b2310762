package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitudes of the first n/2 bins of the
// mean-removed signal.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spec := fft.FFTReal(centered)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// SpectralPeriod estimates the dominant period of data sampled every dt.
// It returns 0 when no bin other than DC carries energy.
func SpectralPeriod(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	peak, best := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			peak, best = k, ps[k]
		}
	}
	if peak == 0 || best < 1e-12 {
		return 0
	}
	return float64(len(data)) * dt / float64(peak)
}
