// Package config holds the physical parameters of every calculation.
//
// Default returns the design values of the IR/VIS cavity and the cluster
// absorption study. Load overlays a CUE or YAML file on top of those defaults,
// so a file only needs to name the values it changes. Lengths are metres,
// angles degrees, masses daltons, velocities metres per second.
package config

import (
	"fmt"
	"math"

	"github.com/roach88/resonator/internal/absorption"
	"github.com/roach88/resonator/internal/optics"
	"github.com/roach88/resonator/internal/propagate"
	"github.com/roach88/resonator/internal/units"
)

// Config is the complete parameter set.
type Config struct {
	RoundTrip   RoundTrip   `json:"roundtrip" yaml:"roundtrip"`
	Incoupling  Incoupling  `json:"incoupling" yaml:"incoupling"`
	Propagation Propagation `json:"propagation" yaml:"propagation"`
	Absorption  Absorption  `json:"absorption" yaml:"absorption"`
}

// RoundTrip configures the crystal-centre self-consistency check.
type RoundTrip struct {
	CrystalLength    float64 `json:"crystal_length" yaml:"crystal_length"`
	CrystalIndex     float64 `json:"crystal_index" yaml:"crystal_index"`
	MirrorSeparation float64 `json:"mirror_separation" yaml:"mirror_separation"`
	LongArm          float64 `json:"long_arm" yaml:"long_arm"`
	MirrorRadius     float64 `json:"mirror_radius" yaml:"mirror_radius"`
	Wavelength       float64 `json:"wavelength" yaml:"wavelength"`
	CrystalWaist     float64 `json:"crystal_waist" yaml:"crystal_waist"`
	Tolerance        float64 `json:"tolerance" yaml:"tolerance"`
}

// Params converts to the optics parameter record.
func (r RoundTrip) Params() optics.RoundTripParams {
	return optics.RoundTripParams{
		CrystalLength:    r.CrystalLength,
		CrystalIndex:     r.CrystalIndex,
		MirrorSeparation: r.MirrorSeparation,
		LongArm:          r.LongArm,
		MirrorRadius:     r.MirrorRadius,
		Wavelength:       r.Wavelength,
		CrystalWaist:     r.CrystalWaist,
	}
}

// Incoupling configures the incoupling-to-crystal-centre calculation.
type Incoupling struct {
	CrystalLength    float64 `json:"crystal_length" yaml:"crystal_length"`
	CrystalIndex     float64 `json:"crystal_index" yaml:"crystal_index"`
	TotalLength      float64 `json:"total_length" yaml:"total_length"`
	MirrorSeparation float64 `json:"mirror_separation" yaml:"mirror_separation"`
	MirrorRadius     float64 `json:"mirror_radius" yaml:"mirror_radius"`
	FoldAngle        float64 `json:"fold_angle" yaml:"fold_angle"` // degrees, full angle
	Wavelength       float64 `json:"wavelength" yaml:"wavelength"`
	IncouplingWaist  float64 `json:"incoupling_waist" yaml:"incoupling_waist"`
}

// Params converts to the optics parameter record.
func (c Incoupling) Params() optics.IncouplingParams {
	return optics.IncouplingParams{
		CrystalLength:    c.CrystalLength,
		CrystalIndex:     c.CrystalIndex,
		TotalLength:      c.TotalLength,
		MirrorSeparation: c.MirrorSeparation,
		MirrorRadius:     c.MirrorRadius,
		FoldAngle:        units.Radians(c.FoldAngle),
		Wavelength:       c.Wavelength,
		IncouplingWaist:  c.IncouplingWaist,
	}
}

// Propagation configures the beam walk around the cavity. When Segments is
// empty the standard round trip is built from the cavity dimensions.
type Propagation struct {
	Wavelength   float64   `json:"wavelength" yaml:"wavelength"`
	WaistH       float64   `json:"waist_h" yaml:"waist_h"`
	WaistV       float64   `json:"waist_v" yaml:"waist_v"`
	CrystalIndex float64   `json:"crystal_index" yaml:"crystal_index"`
	AirIndex     float64   `json:"air_index" yaml:"air_index"`
	CrystalHalf  float64   `json:"crystal_half" yaml:"crystal_half"`
	MirrorGap    float64   `json:"mirror_gap" yaml:"mirror_gap"`
	LongArm      float64   `json:"long_arm" yaml:"long_arm"`
	MirrorRadius float64   `json:"mirror_radius" yaml:"mirror_radius"`
	FoldAngle    float64   `json:"fold_angle" yaml:"fold_angle"` // degrees, full angle
	Step         float64   `json:"step" yaml:"step"`
	Segments     []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Segment is one explicit path element. Mirrors without radii use the
// tilted cavity mirror.
type Segment struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Length  float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Index   float64 `json:"index,omitempty" yaml:"index,omitempty"`
	Ratio   float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	RadiusH float64 `json:"radius_h,omitempty" yaml:"radius_h,omitempty"`
	RadiusV float64 `json:"radius_v,omitempty" yaml:"radius_v,omitempty"`
}

// Beam returns the start-plane beam. The walk starts at the crystal centre.
func (p Propagation) Beam() propagate.Params {
	return propagate.Params{
		Wavelength: p.Wavelength,
		WaistH:     p.WaistH,
		WaistV:     p.WaistV,
		StartIndex: p.CrystalIndex,
		Step:       p.Step,
	}
}

// Path returns the segments to walk.
func (p Propagation) Path() ([]propagate.Segment, error) {
	mirror := propagate.TiltedMirror(p.MirrorRadius, units.Radians(p.FoldAngle)/2)
	if len(p.Segments) == 0 {
		return propagate.CavitySegments(propagate.CavityParams{
			CrystalIndex: p.CrystalIndex,
			AirIndex:     p.AirIndex,
			CrystalHalf:  p.CrystalHalf,
			MirrorGap:    p.MirrorGap,
			LongArm:      p.LongArm,
			MirrorRadius: p.MirrorRadius,
			FoldAngle:    units.Radians(p.FoldAngle),
		}), nil
	}

	out := make([]propagate.Segment, 0, len(p.Segments))
	for i, s := range p.Segments {
		switch propagate.Kind(s.Kind) {
		case propagate.KindPropagation:
			out = append(out, propagate.Propagation{Length: s.Length, Index: s.Index})
		case propagate.KindInterface:
			out = append(out, propagate.Interface{Ratio: s.Ratio, Index: s.Index})
		case propagate.KindMirror:
			m := mirror
			if s.RadiusH != 0 {
				m.RadiusH = s.RadiusH
			}
			if s.RadiusV != 0 {
				m.RadiusV = s.RadiusV
			}
			out = append(out, m)
		default:
			return nil, &Error{Field: fmt.Sprintf("propagation.segments[%d].kind", i), Message: fmt.Sprintf("unknown segment kind %q", s.Kind)}
		}
	}
	return out, nil
}

// Absorption configures the cluster absorption study.
type Absorption struct {
	Wavelength  float64    `json:"wavelength" yaml:"wavelength"`
	Photons     float64    `json:"photons" yaml:"photons"`
	WaistMin    float64    `json:"waist_min" yaml:"waist_min"`
	WaistMax    float64    `json:"waist_max" yaml:"waist_max"`
	WaistPoints int        `json:"waist_points" yaml:"waist_points"`
	Materials   []Material `json:"materials" yaml:"materials"`
	Scenarios   []Scenario `json:"scenarios" yaml:"scenarios"`
}

// Material is a cluster material with its complex permittivity at the
// study wavelength.
type Material struct {
	Name           string  `json:"name" yaml:"name"`
	PermittivityRe float64 `json:"permittivity_re" yaml:"permittivity_re"`
	PermittivityIm float64 `json:"permittivity_im" yaml:"permittivity_im"`
	Density        float64 `json:"density" yaml:"density"`
	Color          string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Scenario is a cluster mass and velocity.
type Scenario struct {
	Name     string  `json:"name" yaml:"name"`
	Mass     float64 `json:"mass" yaml:"mass"` // daltons
	Velocity float64 `json:"velocity" yaml:"velocity"`
}

// Params converts to the absorption parameter record.
func (a Absorption) Params() absorption.Params {
	p := absorption.Params{
		Wavelength:  a.Wavelength,
		Photons:     a.Photons,
		WaistMin:    a.WaistMin,
		WaistMax:    a.WaistMax,
		WaistPoints: a.WaistPoints,
	}
	for _, m := range a.Materials {
		p.Materials = append(p.Materials, absorption.Material{
			Name:         m.Name,
			Permittivity: complex(m.PermittivityRe, m.PermittivityIm),
			Density:      m.Density,
			Color:        m.Color,
		})
	}
	for _, s := range a.Scenarios {
		p.Scenarios = append(p.Scenarios, absorption.Scenario{
			Name:     s.Name,
			Mass:     s.Mass * absorption.AtomicMassUnit,
			Velocity: s.Velocity,
		})
	}
	return p
}

// Validate checks every section against the preconditions of its
// calculation. The returned error names the section and the field.
func (c *Config) Validate() error {
	if err := c.RoundTrip.Params().Validate(); err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	if err := optics.Positive("tolerance", c.RoundTrip.Tolerance); err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	if err := c.Incoupling.Params().Validate(); err != nil {
		return fmt.Errorf("incoupling: %w", err)
	}
	if err := c.Propagation.Beam().Validate(); err != nil {
		return fmt.Errorf("propagation: %w", err)
	}
	if err := foldAngle(c.Propagation.FoldAngle); err != nil {
		return fmt.Errorf("propagation: %w", err)
	}
	path, err := c.Propagation.Path()
	if err != nil {
		return err
	}
	if err := propagate.Validate(path); err != nil {
		return fmt.Errorf("propagation: %w", err)
	}
	if err := c.Absorption.Params().Validate(); err != nil {
		return fmt.Errorf("absorption: %w", err)
	}
	return nil
}

// foldAngle applies the schema's fold_angle bounds to values decoded from
// YAML, which bypass the CUE schema.
func foldAngle(deg float64) error {
	if deg < 0 || deg >= 180 || math.IsNaN(deg) {
		return &optics.ParamError{Field: "fold_angle", Value: deg, Reason: "must be in [0, 180) degrees"}
	}
	return nil
}
