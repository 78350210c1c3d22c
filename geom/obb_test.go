package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func randomOBB(rng *rand.Rand) OBB {
	center := mgl64.Vec3{rng.Float64()*6 - 3, rng.Float64()*6 - 3, rng.Float64()*6 - 3}
	axis := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}.Normalize()
	rot := mgl64.HomogRotate3D(rng.Float64()*math.Pi, axis)
	half := mgl64.Vec3{rng.Float64() + 0.1, rng.Float64() + 0.1, rng.Float64() + 0.1}
	return NewAABB(half.Mul(-1), half).Transform(mgl64.Translate3D(center[0], center[1], center[2]).Mul4(rot))
}

func TestIntersectCuboidsBoolean_Symmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	hits := 0
	for i := 0; i < 2000; i++ {
		a := randomOBB(rng)
		b := randomOBB(rng)
		ab := IntersectCuboidsBoolean(a, b)
		ba := IntersectCuboidsBoolean(b, a)
		if ab != ba {
			t.Fatalf("asymmetric result for %v / %v", a, b)
		}
		if ab {
			hits++
		}
	}
	// both outcomes must be exercised
	assert.Greater(t, hits, 0)
	assert.Less(t, hits, 2000)
}

func TestIntersectCuboidsBoolean_Cases(t *testing.T) {
	unit := NewAABB(mgl64.Vec3{-0.5, -0.5, -0.5}, mgl64.Vec3{0.5, 0.5, 0.5})

	tests := []struct {
		name string
		m    mgl64.Mat4
		want bool
	}{
		{"identical", mgl64.Ident4(), true},
		{"half overlap on X", mgl64.Translate3D(0.5, 0, 0), true},
		{"touching faces", mgl64.Translate3D(1, 0, 0), true},
		{"separated on Y", mgl64.Translate3D(0, 1.5, 0), false},
		{"rotated 45 degrees near corner", mgl64.Translate3D(1.1, 0, 0).Mul4(mgl64.HomogRotate3DY(math.Pi / 4)), true},
		{"rotated 45 degrees far", mgl64.Translate3D(1.3, 0, 0).Mul4(mgl64.HomogRotate3DY(math.Pi / 4)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := unit.Transform(tt.m)
			assert.Equal(t, tt.want, IntersectCuboidsBoolean(unit, other))
			assert.Equal(t, tt.want, IntersectCuboidsBoolean(other, unit), "symmetry")
		})
	}
}

func TestOBB_TransformAndProjection(t *testing.T) {
	box := NewAABB(mgl64.Vec3{-1, -2, -3}, mgl64.Vec3{1, 2, 3})
	moved := box.Transform(mgl64.Translate3D(10, 0, 0).Mul4(mgl64.Scale3D(2, 1, 1)))

	assert.InDelta(t, 10, moved.Center.X(), 1e-12)
	lens := moved.HalfLengths()
	assert.InDelta(t, 2, lens[0], 1e-12)
	assert.InDelta(t, 2, lens[1], 1e-12)
	assert.InDelta(t, 3, lens[2], 1e-12)

	lo, hi := moved.MinMaxProjection(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 8, lo, 1e-12)
	assert.InDelta(t, 12, hi, 1e-12)

	// surface of a 4x4x6 box
	assert.InDelta(t, 2*(16+24+24), moved.SurfaceArea(), 1e-9)
}

func TestOBB_CornersAndContains(t *testing.T) {
	box := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}).Transform(mgl64.HomogRotate3DZ(0.3))
	for _, c := range box.Corners() {
		assert.True(t, box.Contains(c), "corner %v should be contained", c)
		assert.True(t, box.Contains(c.Sub(box.Center).Mul(0.5).Add(box.Center)))
		assert.False(t, box.Contains(c.Sub(box.Center).Mul(1.1).Add(box.Center)))
	}
}

func TestNewAABB_DegenerateExtent(t *testing.T) {
	box := NewAABB(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1})
	for _, l := range box.HalfLengths() {
		assert.GreaterOrEqual(t, l, MinExtent)
	}
	assert.True(t, IntersectCuboidsBoolean(box, box))
}

func TestNewOBB(t *testing.T) {
	box := NewOBB(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, 0, 1})
	assert.Equal(t, [3]float64{2, 0.5, 1}, box.HalfLengths())
	lo, hi := box.MinMaxProjection(mgl64.Vec3{1, 0, 0})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)
	assert.True(t, box.Contains(mgl64.Vec3{2.9, 0.4, -0.9}))
	assert.False(t, box.Contains(mgl64.Vec3{1, 0.6, 0}))
}
