package optics

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrUnstable is returned when a round-trip matrix has |(A+D)/2| >= 1
	// and therefore no self-reproducing Gaussian mode.
	ErrUnstable = errors.New("round trip is not stable")

	// ErrDegenerate is returned when B = 0, where the mode is undefined.
	ErrDegenerate = errors.New("round trip has B = 0")
)

// Q is the complex beam parameter of a Gaussian beam at one plane.
// Re(q) is the distance past the waist, Im(q) the Rayleigh range.
type Q complex128

// QFromWaist returns the beam parameter at a waist of radius w0 in a medium
// of index n for vacuum wavelength lambda: q = i*pi*n*w0^2/lambda.
func QFromWaist(w0, n, lambda float64) Q {
	return QFromRayleigh(RayleighRange(w0, n, lambda))
}

// QFromRayleigh returns the beam parameter at a waist with Rayleigh range zR.
func QFromRayleigh(zR float64) Q {
	return Q(complex(0, zR))
}

// RayleighRange returns zR = pi*n*w0^2/lambda.
func RayleighRange(w0, n, lambda float64) float64 {
	return math.Pi * n * w0 * w0 / lambda
}

// Advance returns the parameter after free propagation over d.
func (q Q) Advance(d float64) Q {
	return q + Q(complex(d, 0))
}

// Scale multiplies q by a real factor, as a planar interface does.
func (q Q) Scale(f float64) Q {
	return q * Q(complex(f, 0))
}

// Reflect applies the thin-lens equivalent of a mirror with effective radius
// r: q' = q / (1 - (2/r)*q).
func (q Q) Reflect(r float64) Q {
	qc := complex128(q)
	return Q(qc / (1 - complex(2/r, 0)*qc))
}

// Radius returns the 1/e^2 beam radius w = sqrt(lambda / (pi*n*|Im(1/q)|)).
func (q Q) Radius(n, lambda float64) float64 {
	inv := 1 / complex128(q)
	return math.Sqrt(lambda / (math.Pi * n * math.Abs(imag(inv))))
}

// RayleighRange returns Im(q).
func (q Q) RayleighRange() float64 {
	return imag(complex128(q))
}

// WaistOffset returns Re(q), the distance from the waist to this plane.
// It is negative before the waist.
func (q Q) WaistOffset() float64 {
	return real(complex128(q))
}

// WaistRadius returns the radius of the waist this beam belongs to.
func (q Q) WaistRadius(n, lambda float64) float64 {
	return math.Sqrt(lambda * math.Abs(q.RayleighRange()) / (math.Pi * n))
}

// ModulusRadius returns |sqrt(-i*lambda*q/pi)|. At a waist in vacuum it is
// the waist radius; elsewhere it mixes curvature into the size and matches
// neither BeamRadius nor WaistRadius.
func (q Q) ModulusRadius(lambda float64) float64 {
	return cmplx.Abs(cmplx.Sqrt(complex(0, -lambda/math.Pi) * complex128(q)))
}

// CurvatureRadius returns the wavefront radius of curvature, +Inf at a waist.
func (q Q) CurvatureRadius() float64 {
	re := real(1 / complex128(q))
	if re == 0 {
		return math.Inf(1)
	}
	return 1 / re
}

func (q Q) String() string {
	return fmt.Sprintf("(%g%+gi)", real(complex128(q)), imag(complex128(q)))
}

// RoundTripResult is the outcome of mapping a beam parameter once around a path.
type RoundTripResult struct {
	QIn           Q
	QOut          Q
	RelativeError float64
	Consistent    bool
}

// CheckRoundTrip applies m to q and reports whether q is reproduced within
// tol, measured as |q_out - q_in| / |q_in|.
func CheckRoundTrip(m Matrix, q Q, tol float64) RoundTripResult {
	out := m.Apply(q)
	rel := cmplx.Abs(complex128(out-q)) / cmplx.Abs(complex128(q))
	return RoundTripResult{
		QIn:           q,
		QOut:          out,
		RelativeError: rel,
		Consistent:    rel < tol,
	}
}

// EigenMode returns the self-reproducing beam parameter of a round-trip matrix
// with unit determinant:
//
//	1/q = (D-A)/(2B) - i*sqrt(1 - ((A+D)/2)^2)/|B|
func EigenMode(m Matrix) (Q, error) {
	if m.B == 0 {
		return 0, ErrDegenerate
	}
	s := m.Stability()
	if math.Abs(s) >= 1 {
		return 0, fmt.Errorf("%w: (A+D)/2 = %g", ErrUnstable, s)
	}
	inv := complex((m.D-m.A)/(2*m.B), -math.Sqrt(1-s*s)/math.Abs(m.B))
	return Q(1 / inv), nil
}
