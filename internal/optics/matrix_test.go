package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeEmptyIsIdentity(t *testing.T) {
	assert.Equal(t, Identity(), Compose())
}

func TestComposeSingle(t *testing.T) {
	m := CurvedMirror(0.05)
	assert.Equal(t, m, Compose(m))
}

func TestComposeOrder(t *testing.T) {
	// Compose(F, M) = F*M: the beam meets the mirror first.
	f := FreeSpace(1)
	m := CurvedMirror(2)

	got := Compose(f, m)
	assert.True(t, got.Equal(Matrix{A: 0, B: 1, C: -1, D: 1}, 1e-12), "got %v", got)

	reversed := Compose(m, f)
	assert.True(t, reversed.Equal(Matrix{A: 1, B: 1, C: -1, D: 0}, 1e-12), "got %v", reversed)

	assert.False(t, got.Equal(reversed, 1e-9), "ABCD multiplication must not commute")
}

func TestComposeReversedPathDiffers(t *testing.T) {
	p := defaultRoundTrip()
	path := RoundTripPath(p)[:4] // crystal, short, mirror, long: not symmetric

	forward := Compose(path...)
	rev := make([]Matrix, len(path))
	for i, m := range path {
		rev[len(path)-1-i] = m
	}
	backward := Compose(rev...)

	assert.False(t, forward.Equal(backward, 1e-9))
}

func TestComposeAssociative(t *testing.T) {
	a, b, c := FreeSpace(0.1), CurvedMirror(0.05), Slab(0.012, 1.66)
	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	assert.True(t, left.Equal(right, 1e-12))
	assert.True(t, Compose(a, b, c).Equal(left, 1e-12))
}

func TestElementMatrices(t *testing.T) {
	tests := []struct {
		name string
		got  Matrix
		want Matrix
	}{
		{"free_space", FreeSpace(0.3), Matrix{A: 1, B: 0.3, C: 0, D: 1}},
		{"slab", Slab(0.012, 2), Matrix{A: 1, B: 0.006, C: 0, D: 1}},
		{"mirror", CurvedMirror(0.05), Matrix{A: 1, B: 0, C: -40, D: 1}},
		{"lens", ThinLens(0.1), Matrix{A: 1, B: 0, C: -10, D: 1}},
		{"interface", FlatInterface(1, 1.5), Matrix{A: 1, B: 0, C: 0, D: 1 / 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.got.Equal(tt.want, 1e-12), "got %v want %v", tt.got, tt.want)
		})
	}
}

func TestDeterminantOfLosslessPath(t *testing.T) {
	m := Compose(RoundTripPath(defaultRoundTrip())...)
	assert.InDelta(t, 1.0, m.Det(), 1e-12)
}

func TestMirrorEffectiveRadii(t *testing.T) {
	theta := 13.5 / 2 * math.Pi / 180
	assert.InDelta(t, 0.05*math.Cos(theta), TangentialRadius(0.05, theta), 1e-15)
	assert.InDelta(t, 0.05/math.Cos(theta), SagittalRadius(0.05, theta), 1e-15)
	assert.Less(t, TangentialRadius(0.05, theta), SagittalRadius(0.05, theta))
}

func TestMatrixStability(t *testing.T) {
	stable := Matrix{A: 0.4, B: -0.0017, C: 470, D: 0.4}
	assert.True(t, stable.Stable())

	unstable := Compose(FreeSpace(1), CurvedMirror(-1))
	require.Greater(t, math.Abs(unstable.Stability()), 1.0)
	assert.False(t, unstable.Stable())
}

func TestMatrixString(t *testing.T) {
	assert.Equal(t, "[[1 0.5] [0 1]]", FreeSpace(0.5).String())
	assert.Equal(t, [2][2]float64{{1, 0.5}, {0, 1}}, FreeSpace(0.5).Rows())
}

func TestComposeMatchesPairwiseProduct(t *testing.T) {
	path := RoundTripPath(defaultRoundTrip())

	want := Identity()
	for _, m := range path {
		want = want.Mul(m)
	}
	got := Compose(path...)
	assert.True(t, got.Equal(want, 1e-12), "got %v, want %v", got, want)
	assert.InDelta(t, 1, got.Det(), 1e-12)
}
