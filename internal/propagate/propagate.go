// Package propagate walks a Gaussian beam along an ordered list of optical
// segments and records the beam radius of both polarization axes.
//
// The walk keeps one q-parameter per axis. Propagation segments are sampled
// every Step metres (endpoints included) without disturbing q; q is advanced
// by the full length afterwards. Interfaces and mirrors transform q in place
// and contribute a single sample at the current position.
package propagate

import (
	"math"

	"github.com/roach88/resonator/internal/optics"
)

// DefaultStep is the sampling interval in metres used when Params.Step is zero.
const DefaultStep = 1e-4

// Params holds the beam at the start of the path.
type Params struct {
	Wavelength float64 // vacuum wavelength
	WaistH     float64 // horizontal waist radius at the start plane
	WaistV     float64 // vertical waist radius at the start plane
	StartIndex float64 // refractive index of the medium at the start plane
	Step       float64 // sampling interval; DefaultStep when zero
}

// Validate checks the beam preconditions.
func (p Params) Validate() error {
	for _, check := range []error{
		optics.Positive("wavelength", p.Wavelength),
		optics.Positive("waist_h", p.WaistH),
		optics.Positive("waist_v", p.WaistV),
		optics.Positive("start_index", p.StartIndex),
	} {
		if check != nil {
			return check
		}
	}
	if p.Step != 0 {
		return optics.Positive("step", p.Step)
	}
	return nil
}

func (p Params) step() float64 {
	if p.Step == 0 {
		return DefaultStep
	}
	return p.Step
}

// Run propagates the beam described by p along segments. All preconditions
// are checked before any sampling; on error no trace is returned.
func Run(p Params, segments []Segment) (*Trace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := Validate(segments); err != nil {
		return nil, err
	}

	w := &walker{
		lambda: p.Wavelength,
		dz:     p.step(),
		n:      p.StartIndex,
		qh:     optics.QFromWaist(p.WaistH, p.StartIndex, p.Wavelength),
		qv:     optics.QFromWaist(p.WaistV, p.StartIndex, p.Wavelength),
		trace:  &Trace{},
	}
	for _, s := range segments {
		switch s := s.(type) {
		case Propagation:
			w.propagate(s)
		case Interface:
			w.refract(s)
		case Mirror:
			w.reflect(s)
		}
	}

	w.trace.QH, w.trace.QV = w.qh, w.qv
	w.trace.Length = w.z
	return w.trace, nil
}

type walker struct {
	lambda float64
	dz     float64
	n      float64 // index of the current medium
	z      float64 // position of the current plane along the path
	qh, qv optics.Q
	trace  *Trace
}

func (w *walker) record(z float64, qh, qv optics.Q) {
	w.trace.Horizontal = append(w.trace.Horizontal, Sample{Z: z, Radius: qh.Radius(w.n, w.lambda)})
	w.trace.Vertical = append(w.trace.Vertical, Sample{Z: z, Radius: qv.Radius(w.n, w.lambda)})
}

func (w *walker) propagate(s Propagation) {
	w.n = s.Index

	// The tolerance keeps L/dz = 59.999999 from dropping the last grid point
	// and snaps it onto L.
	steps := int(math.Floor(s.Length/w.dz + 1e-9))
	last := 0.0
	for k := 0; k <= steps; k++ {
		d := float64(k) * w.dz
		if s.Length-d <= w.dz*1e-9 {
			d = s.Length
		}
		w.record(w.z+d, w.qh.Advance(d), w.qv.Advance(d))
		last = d
	}
	if last < s.Length {
		w.record(w.z+s.Length, w.qh.Advance(s.Length), w.qv.Advance(s.Length))
	}

	w.qh = w.qh.Advance(s.Length)
	w.qv = w.qv.Advance(s.Length)
	w.z += s.Length
}

func (w *walker) refract(s Interface) {
	w.qh = w.qh.Scale(s.Ratio)
	w.qv = w.qv.Scale(s.Ratio)
	if s.Index != 0 {
		w.n = s.Index
	}
	w.record(w.z, w.qh, w.qv)
}

func (w *walker) reflect(s Mirror) {
	w.qh = w.qh.Reflect(s.RadiusH)
	w.qv = w.qv.Reflect(s.RadiusV)
	w.record(w.z, w.qh, w.qv)
}
