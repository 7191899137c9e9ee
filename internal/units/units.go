// Package units converts between the canonical SI units used by every
// calculation (metres, radians, watts) and the units people read and write:
// millimetres and micrometres on plots and reports, degrees in configuration.
// Conversions always return new values; traces are never rescaled in place.
package units

import "math"

// ToMillimetres converts metres to millimetres.
func ToMillimetres(m float64) float64 { return m * 1e3 }

// ToMicrometres converts metres to micrometres.
func ToMicrometres(m float64) float64 { return m * 1e6 }

// FromMillimetres converts millimetres to metres.
func FromMillimetres(mm float64) float64 { return mm * 1e-3 }

// FromMicrometres converts micrometres to metres.
func FromMicrometres(um float64) float64 { return um * 1e-6 }

// ToMilliwatts converts watts to milliwatts.
func ToMilliwatts(w float64) float64 { return w * 1e3 }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Scale returns a copy of vs with f applied to every element.
func Scale(vs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = f(v)
	}
	return out
}
