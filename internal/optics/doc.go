// Package optics implements paraxial Gaussian-beam algebra.
//
// Two building blocks cover every calculation in resonator:
//
// Ray-transfer matrices:
// A Matrix is the 2x2 ABCD matrix of one optical element acting on the ray
// vector [position; angle]. Compose multiplies matrices in the order given,
// so the leftmost matrix is the LAST element the beam meets:
//
//	m := Compose(crystalHalf, shortLeg, mirror, longLeg)
//	// the beam travels longLeg -> mirror -> shortLeg -> crystalHalf
//
// Complex beam parameter:
// Q is the q-parameter of a Gaussian beam at one plane. Matrix.Apply maps it
// through an element with q' = (A*q + B) / (C*q + D). At a waist q is purely
// imaginary, q = i*zR with zR = pi*n*w0^2/lambda.
//
// All lengths are metres. Conversions to millimetres or micrometres belong to
// the presentation layer (see package units).
package optics
