// Package analysis extracts frequency content from sampled energy traces.
//
// Energy in a bound n-body system oscillates as kinetic and potential
// energy exchange. [PowerSpectrum] and [Dominant] expose the strongest of
// those oscillations.
package analysis
