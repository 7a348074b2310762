// Package analysis summarises recorded orbits.
//
//   - [Summarize]: perihelion, aphelion, eccentricity, closure error and
//     period of every body relative to the anchor
//   - [SpectralPeriod]: dominant period of a sampled signal
//   - [PowerSpectrum]: one-sided magnitude spectrum
//
// Distances come from the recorded samples, so the accuracy of a summary
// is bounded by the recording stride:
//
//	samples, _ := store.LoadSamples(runID)
//	for _, s := range analysis.Summarize(samples, "sun") {
//	    fmt.Println(s.Body, s.Period/physics.Day)
//	}
package analysis
