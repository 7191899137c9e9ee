package absorption

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resonator/internal/optics"
)

const (
	uvWavelength = 226e-9
	mass100kDa   = 100e3 * AtomicMassUnit
	mass1MDa     = 1e6 * AtomicMassUnit
)

var gold = Material{Name: "Au", Permittivity: complex(-0.39802, 3.7963), Density: 1.932e4, Color: "#228B22"}

func TestCrossSection(t *testing.T) {
	tests := []struct {
		name    string
		eps     complex128
		density float64
		mass    float64
		want    float64
	}{
		{"Na_100kDa", complex(-1.01, 0.09899), 9.7e2, mass100kDa, 4.283430569295682e-18},
		{"Hf_100kDa", complex(0.516, 3.3082), 1.3281e4, mass100kDa, 5.991284707639821e-19},
		{"Au_100kDa", gold.Permittivity, gold.Density, mass100kDa, 4.808658483251269e-19},
		{"Si_1MDa", complex(-9.0691, 8.7624), 2.33e3, mass1MDa, 1.2327526829623694e-17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CrossSection(tt.eps, tt.density, tt.mass, uvWavelength)
			assert.InEpsilon(t, tt.want, got, 1e-9)
		})
	}
}

func TestCrossSectionScalesWithMass(t *testing.T) {
	small := CrossSection(gold.Permittivity, gold.Density, mass100kDa, uvWavelength)
	large := CrossSection(gold.Permittivity, gold.Density, mass1MDa, uvWavelength)
	assert.InEpsilon(t, 10*small, large, 1e-12)
}

func TestRequiredPower(t *testing.T) {
	nu := Frequency(uvWavelength)
	sigma := CrossSection(gold.Permittivity, gold.Density, mass100kDa, uvWavelength)

	assert.InEpsilon(t, 0.42117506137069644, RequiredPower(sigma, 130, 100e-6, 10, nu), 1e-9)
	// Linear in waist, velocity and photon number.
	assert.InEpsilon(t, 3*RequiredPower(sigma, 130, 100e-6, 10, nu), RequiredPower(sigma, 130, 300e-6, 10, nu), 1e-12)
	assert.InEpsilon(t, 2*RequiredPower(sigma, 30, 100e-6, 10, nu), RequiredPower(sigma, 60, 100e-6, 10, nu), 1e-12)
	assert.InEpsilon(t, 0.5*RequiredPower(sigma, 30, 100e-6, 10, nu), RequiredPower(sigma, 30, 100e-6, 5, nu), 1e-12)
}

func TestRequiredPowerZeroCrossSection(t *testing.T) {
	assert.True(t, math.IsInf(RequiredPower(0, 130, 100e-6, 10, Frequency(uvWavelength)), 1))
}

func TestFrequency(t *testing.T) {
	assert.InEpsilon(t, 1.3265153008849558e15, Frequency(uvWavelength), 1e-12)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 6.62607015e-34, Planck)
	assert.Equal(t, 299792458.0, SpeedOfLight)
	assert.InEpsilon(t, 1.66053906660e-27, AtomicMassUnit, 1e-12)
}

func TestLinspace(t *testing.T) {
	assert.InDeltaSlice(t, []float64{100e-6, 150e-6, 200e-6, 250e-6, 300e-6}, Linspace(100e-6, 300e-6, 5), 1e-18)
	assert.Equal(t, []float64{100e-6, 300e-6}, Linspace(100e-6, 300e-6, 2))
	assert.Equal(t, []float64{1}, Linspace(1, 2, 1))
	assert.Nil(t, Linspace(1, 2, 0))
}

func testParams() Params {
	return Params{
		Wavelength:  uvWavelength,
		Photons:     10,
		WaistMin:    100e-6,
		WaistMax:    300e-6,
		WaistPoints: 2,
		Materials: []Material{
			{Name: "Na", Permittivity: complex(-1.01, 0.09899), Density: 9.7e2},
			gold,
		},
		Scenarios: []Scenario{
			{Name: "100 kDa", Mass: mass100kDa, Velocity: 130},
			{Name: "1 MDa", Mass: mass1MDa, Velocity: 30},
		},
	}
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate(testParams())
	require.NoError(t, err)

	require.Len(t, report.Entries, 4)
	require.Len(t, report.Curves, 4)
	assert.Equal(t, Entry{Material: "Na", Scenario: "100 kDa", CrossSection: report.Entries[0].CrossSection}, report.Entries[0])
	assert.Equal(t, "1 MDa", report.Entries[3].Scenario)

	heavy := report.CurvesFor("1 MDa")
	require.Len(t, heavy, 2)
	assert.Equal(t, "Au", heavy[1].Material)
	assert.Equal(t, "#228B22", heavy[1].Color)
	assert.Equal(t, []float64{100e-6, 300e-6}, heavy[1].Waists)
	assert.InEpsilon(t, 0.029158273479509743, heavy[1].Powers[1], 1e-9)

	light := report.CurvesFor("100 kDa")
	assert.InEpsilon(t, 0.04728189237644369, light[0].Powers[0], 1e-9)
	assert.Empty(t, report.CurvesFor("missing"))
}

func TestEvaluateCurvesDoNotShareWaists(t *testing.T) {
	report, err := Evaluate(testParams())
	require.NoError(t, err)

	report.Curves[0].Waists[0] = -1
	assert.Equal(t, 100e-6, report.Curves[1].Waists[0])
}

func TestEvaluateRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Params)
		field string
	}{
		{"zero_wavelength", func(p *Params) { p.Wavelength = 0 }, "wavelength"},
		{"inverted_range", func(p *Params) { p.WaistMax = 50e-6 }, "waist_max"},
		{"single_point", func(p *Params) { p.WaistPoints = 1 }, "waist_points"},
		{"negative_mass", func(p *Params) { p.Scenarios[0].Mass = -1 }, "scenarios.100 kDa.mass"},
		{"zero_density", func(p *Params) { p.Materials[1].Density = 0 }, "materials.Au.density"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.edit(&p)

			_, err := Evaluate(p)
			var pe *optics.ParamError
			require.True(t, errors.As(err, &pe), "error %v", err)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}
