package config

// Default returns the design values of the cavity and the absorption study.
func Default() *Config {
	return &Config{
		RoundTrip: RoundTrip{
			CrystalLength:    12e-3,
			CrystalIndex:     1.66,
			MirrorSeparation: 60.8e-3,
			LongArm:          345.2e-3,
			MirrorRadius:     50e-3,
			Wavelength:       902e-9,
			CrystalWaist:     23.5e-6,
			Tolerance:        1e-9,
		},
		Incoupling: Incoupling{
			CrystalLength:    12e-3,
			CrystalIndex:     1.66,
			TotalLength:      406e-3,
			MirrorSeparation: 61.5e-3,
			MirrorRadius:     50e-3,
			FoldAngle:        13.5,
			Wavelength:       902e-9,
			IncouplingWaist:  206e-6,
		},
		Propagation: Propagation{
			Wavelength:   902e-9,
			WaistH:       24.3e-6,
			WaistV:       25.7e-6,
			CrystalIndex: 1.66,
			AirIndex:     1,
			CrystalHalf:  6e-3,
			MirrorGap:    24.4e-3,
			LongArm:      345.2e-3,
			MirrorRadius: 50e-3,
			FoldAngle:    13.5,
			Step:         1e-4,
		},
		Absorption: Absorption{
			Wavelength:  226e-9,
			Photons:     10,
			WaistMin:    100e-6,
			WaistMax:    300e-6,
			WaistPoints: 2,
			// Permittivities from refractiveindex.info.
			Materials: []Material{
				{Name: "Na", PermittivityRe: -1.01, PermittivityIm: 0.09899, Density: 9.7e2, Color: "#FFD700"},
				{Name: "Hf", PermittivityRe: 0.516, PermittivityIm: 3.3082, Density: 1.3281e4, Color: "#1E90FF"},
				{Name: "Au", PermittivityRe: -0.39802, PermittivityIm: 3.7963, Density: 1.932e4, Color: "#228B22"},
				{Name: "Si", PermittivityRe: -9.0691, PermittivityIm: 8.7624, Density: 2.33e3, Color: "#B22222"},
			},
			Scenarios: []Scenario{
				{Name: "100 kDa", Mass: 100e3, Velocity: 130},
				{Name: "1 MDa", Mass: 1e6, Velocity: 30},
			},
		},
	}
}
