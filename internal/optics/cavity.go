package optics

import (
	"fmt"
	"math"
)

// ParamError reports a physical parameter that violates its precondition.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s = %g: %s", e.Field, e.Value, e.Reason)
}

// Positive returns a ParamError unless v > 0.
func Positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &ParamError{Field: field, Value: v, Reason: "must be a positive finite number"}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RoundTripParams describes the symmetric ring cavity evaluated from the
// crystal centre back to the crystal centre.
type RoundTripParams struct {
	CrystalLength    float64 // full crystal length
	CrystalIndex     float64
	MirrorSeparation float64 // distance between the curved mirrors
	LongArm          float64 // remaining path through the flat mirrors
	MirrorRadius     float64
	Wavelength       float64
	CrystalWaist     float64 // assumed waist at the crystal centre
}

// Validate checks the preconditions of RoundTripPath.
func (p RoundTripParams) Validate() error {
	if err := firstError(
		Positive("crystal_length", p.CrystalLength),
		Positive("crystal_index", p.CrystalIndex),
		Positive("mirror_separation", p.MirrorSeparation),
		Positive("long_arm", p.LongArm),
		Positive("mirror_radius", p.MirrorRadius),
		Positive("wavelength", p.Wavelength),
		Positive("crystal_waist", p.CrystalWaist),
	); err != nil {
		return err
	}
	if p.MirrorSeparation <= p.CrystalLength {
		return &ParamError{Field: "mirror_separation", Value: p.MirrorSeparation, Reason: "must exceed crystal_length"}
	}
	return nil
}

// RoundTripPath returns the element matrices of one round trip starting and
// ending at the crystal centre, in composition order.
func RoundTripPath(p RoundTripParams) []Matrix {
	crystal := Slab(p.CrystalLength/2, p.CrystalIndex)
	short := FreeSpace((p.MirrorSeparation - p.CrystalLength) / 2)
	mirror := CurvedMirror(p.MirrorRadius)
	long := FreeSpace(p.LongArm)
	return []Matrix{crystal, short, mirror, long, mirror, short, crystal}
}

// RoundTripReport is the result of the crystal-centre self-consistency check.
type RoundTripReport struct {
	Matrix     Matrix
	Check      RoundTripResult
	Stability  float64
	Stable     bool
	EigenQ     Q
	EigenWaist float64 // zero when the cavity is unstable
}

// RoundTrip composes the round-trip matrix and checks that the beam parameter
// of the assumed crystal waist maps onto itself within tol.
func RoundTrip(p RoundTripParams, tol float64) (*RoundTripReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := Compose(RoundTripPath(p)...)
	// Inside the crystal the path uses reduced distances, so q carries n = 1.
	q := QFromWaist(p.CrystalWaist, 1, p.Wavelength)

	report := &RoundTripReport{
		Matrix:    m,
		Check:     CheckRoundTrip(m, q, tol),
		Stability: m.Stability(),
		Stable:    m.Stable(),
	}
	if eq, err := EigenMode(m); err == nil {
		report.EigenQ = eq
		report.EigenWaist = eq.WaistRadius(1, p.Wavelength)
	}
	return report, nil
}

// IncouplingParams describes the path from the incoupling plane on the long
// arm to the crystal centre.
type IncouplingParams struct {
	CrystalLength    float64
	CrystalIndex     float64
	TotalLength      float64 // full round-trip length
	MirrorSeparation float64
	MirrorRadius     float64
	FoldAngle        float64 // full fold angle at the curved mirror, radians
	Wavelength       float64
	IncouplingWaist  float64 // waist at the incoupling plane
}

// Validate checks the preconditions of IncouplingPath.
func (p IncouplingParams) Validate() error {
	if err := firstError(
		Positive("crystal_length", p.CrystalLength),
		Positive("crystal_index", p.CrystalIndex),
		Positive("total_length", p.TotalLength),
		Positive("mirror_separation", p.MirrorSeparation),
		Positive("mirror_radius", p.MirrorRadius),
		Positive("wavelength", p.Wavelength),
		Positive("incoupling_waist", p.IncouplingWaist),
	); err != nil {
		return err
	}
	if p.FoldAngle < 0 || p.FoldAngle >= math.Pi {
		return &ParamError{Field: "fold_angle", Value: p.FoldAngle, Reason: "must be in [0, pi)"}
	}
	if p.MirrorSeparation <= p.CrystalLength {
		return &ParamError{Field: "mirror_separation", Value: p.MirrorSeparation, Reason: "must exceed crystal_length"}
	}
	if p.TotalLength <= p.CrystalLength {
		return &ParamError{Field: "total_length", Value: p.TotalLength, Reason: "must exceed crystal_length"}
	}
	return nil
}

// IncouplingPath returns crystal half, short leg, tilted mirror and long leg
// in composition order; the beam enters through the long leg.
func IncouplingPath(p IncouplingParams) []Matrix {
	crystal := Slab(p.CrystalLength/2, p.CrystalIndex)
	short := FreeSpace((p.MirrorSeparation - p.CrystalLength) / 2)
	mirror := CurvedMirror(TangentialRadius(p.MirrorRadius, p.FoldAngle/2))
	long := FreeSpace((p.TotalLength - p.CrystalLength) / 2)
	return []Matrix{crystal, short, mirror, long}
}

// IncouplingReport describes the beam at the crystal centre.
type IncouplingReport struct {
	Matrix      Matrix
	QIn         Q
	QOut        Q
	BeamRadius  float64 // radius at the crystal centre
	WaistRadius float64 // radius of the nearest waist
	WaistOffset float64 // distance from that waist to the crystal centre

	ModulusRadius float64 // |sqrt(-i*lambda*q/pi)| of QOut
}

// Incoupling maps the incoupling waist to the crystal centre.
func Incoupling(p IncouplingParams) (*IncouplingReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := Compose(IncouplingPath(p)...)
	qIn := QFromWaist(p.IncouplingWaist, 1, p.Wavelength)
	qOut := m.Apply(qIn)

	return &IncouplingReport{
		Matrix:      m,
		QIn:         qIn,
		QOut:        qOut,
		BeamRadius:  qOut.Radius(1, p.Wavelength),
		WaistRadius: qOut.WaistRadius(1, p.Wavelength),
		WaistOffset: qOut.WaistOffset(),

		ModulusRadius: qOut.ModulusRadius(p.Wavelength),
	}, nil
}
