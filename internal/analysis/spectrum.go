package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the first n/2+1 Fourier
// coefficients of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// Peak is the strongest non-constant component of a spectrum.
type Peak struct {
	Index int
	// Frequency in cycles per unit of simulated time.
	Frequency float64
	Power     float64
}

// Dominant finds the strongest component of a series sampled every
// spacing units of simulated time. It reports false when the series is too
// short or flat.
func Dominant(data []float64, spacing float64) (Peak, bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || spacing <= 0 {
		return Peak{}, false
	}

	best := Peak{}
	for i := 1; i < len(ps); i++ {
		if ps[i] > best.Power {
			best = Peak{Index: i, Power: ps[i]}
		}
	}
	if best.Power == 0 {
		return Peak{}, false
	}

	fft := fourier.NewFFT(len(data))
	best.Frequency = fft.Freq(best.Index) / spacing
	return best, true
}
