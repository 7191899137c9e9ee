package propagate

import (
	"sort"

	"github.com/roach88/resonator/internal/optics"
)

// Axis selects a polarization axis.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Sample is the beam radius at position Z along the path, both in metres.
type Sample struct {
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

// Trace is the ordered record of one walk. Horizontal and Vertical have the
// same length and the same Z sequence.
type Trace struct {
	Horizontal []Sample `json:"horizontal"`
	Vertical   []Sample `json:"vertical"`

	QH     optics.Q `json:"-"`
	QV     optics.Q `json:"-"`
	Length float64  `json:"length"`
}

// Samples returns the samples of one axis.
func (t *Trace) Samples(axis Axis) []Sample {
	if axis == Vertical {
		return t.Vertical
	}
	return t.Horizontal
}

// Len returns the number of samples per axis.
func (t *Trace) Len() int {
	return len(t.Horizontal)
}

// Positions returns the Z values of the trace.
func (t *Trace) Positions() []float64 {
	out := make([]float64, len(t.Horizontal))
	for i, s := range t.Horizontal {
		out[i] = s.Z
	}
	return out
}

// Radii returns the radii of one axis.
func (t *Trace) Radii(axis Axis) []float64 {
	samples := t.Samples(axis)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Radius
	}
	return out
}

// At returns the first sample of one axis at or beyond z. Interfaces and
// mirrors repeat a position, so the sample before the boundary wins.
func (t *Trace) At(axis Axis, z float64) (Sample, bool) {
	samples := t.Samples(axis)
	i := sort.Search(len(samples), func(i int) bool { return samples[i].Z >= z })
	if i == len(samples) {
		return Sample{}, false
	}
	return samples[i], true
}

// Extremes holds the smallest and largest radius seen on one axis.
type Extremes struct {
	Min Sample `json:"min"`
	Max Sample `json:"max"`
}

// Extremes returns the extremes of one axis. The zero value is returned for
// an empty trace.
func (t *Trace) Extremes(axis Axis) Extremes {
	samples := t.Samples(axis)
	if len(samples) == 0 {
		return Extremes{}
	}
	e := Extremes{Min: samples[0], Max: samples[0]}
	for _, s := range samples[1:] {
		if s.Radius < e.Min.Radius {
			e.Min = s
		}
		if s.Radius > e.Max.Radius {
			e.Max = s
		}
	}
	return e
}
