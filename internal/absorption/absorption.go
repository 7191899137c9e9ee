// Package absorption estimates how much laser power a standing-wave beam
// needs so that a metal nanoparticle cluster flying through it absorbs a
// given number of photons.
//
// The cluster is a sphere of radius r with r^3 = 3m/(4*pi*rho). Its
// absorption cross section in the quasi-static limit is
//
//	sigma = 8*pi^2*r^3/lambda * Im((eps-1)/(eps+2))
//
// and the power needed to absorb n photons during the transit time w0/v is
//
//	P = n*h*nu/sigma * pi*w0/sqrt(pi) * v
//
// The standing-wave factor of 4 cancels against the three depletion gratings
// plus one ionization beam, so it does not appear.
package absorption

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/unit/constant"

	"github.com/roach88/resonator/internal/optics"
)

// Physical constants in SI units, CODATA 2018.
const (
	Planck         = float64(constant.Planck)             // J s
	SpeedOfLight   = float64(constant.LightSpeedInVacuum) // m/s
	AtomicMassUnit = float64(constant.AtomicMass)         // kg
)

// CrossSection returns the absorption cross section in m^2 of a cluster of
// the given mass (kg) made of a material with complex permittivity eps and
// density (kg/m^3), at vacuum wavelength lambda (m).
func CrossSection(eps complex128, density, mass, lambda float64) float64 {
	r3 := 3.0 / 4.0 * mass / (math.Pi * density)
	return 8 * math.Pi * math.Pi * r3 / lambda * imag((eps-1)/(eps+2))
}

// RequiredPower returns the laser power in watts needed for a cluster with
// cross section sigma moving at velocity through a waist w0 to absorb photons
// photons of frequency nu. A zero cross section yields +Inf.
func RequiredPower(sigma, velocity, w0, photons, nu float64) float64 {
	return photons * Planck * nu / sigma * math.Pi * w0 / math.Sqrt(math.Pi) * velocity
}

// Frequency returns c/lambda.
func Frequency(lambda float64) float64 {
	return SpeedOfLight / lambda
}

// Material is a cluster material.
type Material struct {
	Name         string
	Permittivity complex128
	Density      float64 // kg/m^3
	Color        string  // plot colour, hex
}

// Scenario is a cluster mass with its beam velocity.
type Scenario struct {
	Name     string
	Mass     float64 // kg
	Velocity float64 // m/s
}

// Params configures Evaluate.
type Params struct {
	Wavelength  float64
	Photons     float64
	WaistMin    float64
	WaistMax    float64
	WaistPoints int
	Materials   []Material
	Scenarios   []Scenario
}

// Validate checks the preconditions of Evaluate.
func (p Params) Validate() error {
	for _, err := range []error{
		optics.Positive("wavelength", p.Wavelength),
		optics.Positive("photons", p.Photons),
		optics.Positive("waist_min", p.WaistMin),
		optics.Positive("waist_max", p.WaistMax),
	} {
		if err != nil {
			return err
		}
	}
	if p.WaistMax < p.WaistMin {
		return &optics.ParamError{Field: "waist_max", Value: p.WaistMax, Reason: "must not be below waist_min"}
	}
	if p.WaistPoints < 2 {
		return &optics.ParamError{Field: "waist_points", Value: float64(p.WaistPoints), Reason: "must be at least 2"}
	}
	for _, m := range p.Materials {
		if err := optics.Positive("materials."+m.Name+".density", m.Density); err != nil {
			return err
		}
	}
	for _, s := range p.Scenarios {
		if err := optics.Positive("scenarios."+s.Name+".mass", s.Mass); err != nil {
			return err
		}
		if err := optics.Positive("scenarios."+s.Name+".velocity", s.Velocity); err != nil {
			return err
		}
	}
	return nil
}

// Entry is the cross section of one material in one scenario.
type Entry struct {
	Material     string  `json:"material"`
	Scenario     string  `json:"scenario"`
	CrossSection float64 `json:"cross_section"`
}

// Curve is the required power over the waist grid for one material in one
// scenario.
type Curve struct {
	Material string    `json:"material"`
	Scenario string    `json:"scenario"`
	Color    string    `json:"-"`
	Waists   []float64 `json:"waists"`
	Powers   []float64 `json:"powers"`
}

// Report is the result of Evaluate. Entries and Curves are ordered by
// scenario, then material.
type Report struct {
	Frequency float64 `json:"frequency"`
	Entries   []Entry `json:"entries"`
	Curves    []Curve `json:"curves"`
}

// CurvesFor returns the curves of one scenario.
func (r *Report) CurvesFor(scenario string) []Curve {
	var out []Curve
	for _, c := range r.Curves {
		if c.Scenario == scenario {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate computes cross sections and power curves for every material in
// every scenario.
func Evaluate(p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	nu := Frequency(p.Wavelength)
	waists := Linspace(p.WaistMin, p.WaistMax, p.WaistPoints)
	report := &Report{Frequency: nu}

	for _, s := range p.Scenarios {
		for _, m := range p.Materials {
			sigma := CrossSection(m.Permittivity, m.Density, s.Mass, p.Wavelength)
			report.Entries = append(report.Entries, Entry{Material: m.Name, Scenario: s.Name, CrossSection: sigma})

			powers := make([]float64, len(waists))
			for i, w := range waists {
				powers[i] = RequiredPower(sigma, s.Velocity, w, p.Photons, nu)
			}
			report.Curves = append(report.Curves, Curve{
				Material: m.Name,
				Scenario: s.Name,
				Color:    m.Color,
				Waists:   append([]float64(nil), waists...),
				Powers:   powers,
			})
		}
	}
	return report, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	out := floats.Span(make([]float64, n), start, stop)
	out[n-1] = stop
	return out
}
