package propagate

import (
	"fmt"
	"math"

	"github.com/roach88/resonator/internal/optics"
)

// Kind names a segment variant.
type Kind string

const (
	KindPropagation Kind = "propagation"
	KindInterface   Kind = "interface"
	KindMirror      Kind = "mirror"
)

// Segment is one element of an optical path. The set of implementations is
// closed: Propagation, Interface and Mirror.
type Segment interface {
	Kind() Kind
	validate() error
}

// Propagation is free travel over Length metres in a medium of Index.
type Propagation struct {
	Length float64
	Index  float64
}

// Interface is a planar boundary of zero thickness. Ratio multiplies q
// (n_after/n_before); Index is the refractive index after the boundary and
// may be left zero to keep the current medium.
type Interface struct {
	Ratio float64
	Index float64
}

// Mirror is a curved mirror with an effective radius of curvature per axis.
// Negative radii describe convex mirrors.
type Mirror struct {
	RadiusH float64
	RadiusV float64
}

// TiltedMirror returns the mirror seen by a beam hitting a spherical mirror of
// radius r at angle theta (half the fold angle, radians) from the normal.
func TiltedMirror(r, theta float64) Mirror {
	return Mirror{
		RadiusH: optics.TangentialRadius(r, theta),
		RadiusV: optics.SagittalRadius(r, theta),
	}
}

func (Propagation) Kind() Kind { return KindPropagation }
func (Interface) Kind() Kind   { return KindInterface }
func (Mirror) Kind() Kind      { return KindMirror }

func (s Propagation) validate() error {
	if err := optics.Positive("length", s.Length); err != nil {
		return err
	}
	return optics.Positive("index", s.Index)
}

func (s Interface) validate() error {
	if err := optics.Positive("ratio", s.Ratio); err != nil {
		return err
	}
	if s.Index != 0 {
		return optics.Positive("index", s.Index)
	}
	return nil
}

func (s Mirror) validate() error {
	if err := nonzero("radius_h", s.RadiusH); err != nil {
		return err
	}
	return nonzero("radius_v", s.RadiusV)
}

func nonzero(field string, v float64) error {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &optics.ParamError{Field: field, Value: v, Reason: "must be a nonzero finite number"}
	}
	return nil
}

// SegmentError reports the segment that violates its preconditions.
type SegmentError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Validate checks every segment and returns the first violation.
func Validate(segments []Segment) error {
	for i, s := range segments {
		switch s.(type) {
		case Propagation, Interface, Mirror:
		default:
			return &SegmentError{Index: i, Kind: "unknown", Err: fmt.Errorf("unsupported segment type %T", s)}
		}
		if err := s.validate(); err != nil {
			return &SegmentError{Index: i, Kind: s.Kind(), Err: err}
		}
	}
	return nil
}

// CavityParams describes the ring resonator walked from the crystal centre
// around to the crystal centre.
type CavityParams struct {
	CrystalIndex float64
	AirIndex     float64
	CrystalHalf  float64 // half the crystal length
	MirrorGap    float64 // crystal face to curved mirror
	LongArm      float64 // curved mirror to curved mirror the long way round
	MirrorRadius float64
	FoldAngle    float64 // full fold angle at the curved mirrors, radians
}

// CavitySegments returns the round-trip path: crystal half, exit face, gap,
// curved mirror, long arm, curved mirror, gap, entry face, crystal half.
func CavitySegments(p CavityParams) []Segment {
	mirror := TiltedMirror(p.MirrorRadius, p.FoldAngle/2)
	return []Segment{
		Propagation{Length: p.CrystalHalf, Index: p.CrystalIndex},
		Interface{Ratio: p.AirIndex / p.CrystalIndex, Index: p.AirIndex},
		Propagation{Length: p.MirrorGap, Index: p.AirIndex},
		mirror,
		Propagation{Length: p.LongArm, Index: p.AirIndex},
		mirror,
		Propagation{Length: p.MirrorGap, Index: p.AirIndex},
		Interface{Ratio: p.CrystalIndex / p.AirIndex, Index: p.CrystalIndex},
		Propagation{Length: p.CrystalHalf, Index: p.CrystalIndex},
	}
}
