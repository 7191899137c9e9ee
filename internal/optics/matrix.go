package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a 2x2 ray-transfer (ABCD) matrix:
//
//	| A  B |
//	| C  D |
type Matrix struct {
	A, B float64
	C, D float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1}
}

// FreeSpace returns the matrix of a propagation over distance d.
func FreeSpace(d float64) Matrix {
	return Matrix{A: 1, B: d, C: 0, D: 1}
}

// Slab returns a propagation through a medium of the given length and
// refractive index, expressed as the reduced distance length/n.
func Slab(length, n float64) Matrix {
	return FreeSpace(length / n)
}

// CurvedMirror returns the matrix of a mirror with radius of curvature r.
// r is the effective radius; see TangentialRadius and SagittalRadius for
// mirrors hit at an angle.
func CurvedMirror(r float64) Matrix {
	return Matrix{A: 1, B: 0, C: -2 / r, D: 1}
}

// ThinLens returns the matrix of a thin lens with focal length f.
func ThinLens(f float64) Matrix {
	return Matrix{A: 1, B: 0, C: -1 / f, D: 1}
}

// FlatInterface returns the matrix of a planar boundary from index n1 to n2.
func FlatInterface(n1, n2 float64) Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: n1 / n2}
}

// TangentialRadius is the effective ROC in the plane of incidence of a mirror
// hit at angle theta (radians) from the normal.
func TangentialRadius(r, theta float64) float64 {
	return r * math.Cos(theta)
}

// SagittalRadius is the effective ROC perpendicular to the plane of incidence.
func SagittalRadius(r, theta float64) float64 {
	return r / math.Cos(theta)
}

// Mul returns m*o. The result acts as o first, then m.
func (m Matrix) Mul(o Matrix) Matrix {
	var p mat.Dense
	p.Mul(m.dense(), o.dense())
	return fromDense(&p)
}

func (m Matrix) dense() *mat.Dense {
	return mat.NewDense(2, 2, []float64{m.A, m.B, m.C, m.D})
}

func fromDense(d mat.Matrix) Matrix {
	return Matrix{A: d.At(0, 0), B: d.At(0, 1), C: d.At(1, 0), D: d.At(1, 1)}
}

// Det returns the determinant. It is 1 for any path that starts and ends in
// the same medium.
func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Trace returns A + D.
func (m Matrix) Trace() float64 {
	return m.A + m.D
}

// Stability returns the resonator stability parameter (A+D)/2 of a round-trip
// matrix. The cavity supports a Gaussian mode when its magnitude is below 1.
func (m Matrix) Stability() float64 {
	return m.Trace() / 2
}

// Stable reports whether the round-trip matrix supports a confined mode.
func (m Matrix) Stable() bool {
	return math.Abs(m.Stability()) < 1
}

// Equal reports whether every element of m and o differs by at most tol.
func (m Matrix) Equal(o Matrix, tol float64) bool {
	return math.Abs(m.A-o.A) <= tol &&
		math.Abs(m.B-o.B) <= tol &&
		math.Abs(m.C-o.C) <= tol &&
		math.Abs(m.D-o.D) <= tol
}

// Apply maps the beam parameter q through the element:
// q' = (A*q + B) / (C*q + D).
func (m Matrix) Apply(q Q) Q {
	qc := complex128(q)
	return Q((complex(m.A, 0)*qc + complex(m.B, 0)) / (complex(m.C, 0)*qc + complex(m.D, 0)))
}

// Rows returns the matrix as a row-major array.
func (m Matrix) Rows() [2][2]float64 {
	return [2][2]float64{{m.A, m.B}, {m.C, m.D}}
}

func (m Matrix) String() string {
	return fmt.Sprintf("[[%g %g] [%g %g]]", m.A, m.B, m.C, m.D)
}

// Compose multiplies the matrices in the order given: Compose(m1, m2, m3)
// returns m1*m2*m3. The beam meets the last matrix first. An empty list
// yields the identity.
func Compose(ms ...Matrix) Matrix {
	if len(ms) == 0 {
		return Identity()
	}
	factors := make([]mat.Matrix, len(ms))
	for i, m := range ms {
		factors[i] = m.dense()
	}
	var p mat.Dense
	p.Product(factors...)
	return fromDense(&p)
}
