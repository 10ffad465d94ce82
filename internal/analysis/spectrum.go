package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT is the discrete Fourier transform of a real series of any length.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum returns magnitudes for bins 0 through len(data)/2.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	if len(f) == 0 {
		return nil
	}
	ps := make([]float64, len(f)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantPeriod estimates the oscillation period of a series sampled every
// dt. The mean is removed first; ok is false for a flat series.
func DominantPeriod(series []float64, dt float64) (period float64, ok bool) {
	if len(series) < 4 || dt <= 0 {
		return 0, false
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 || bestPower < 1e-12 {
		return 0, false
	}
	return float64(len(series)) * dt / float64(best), true
}
