package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRay_IntersectParalgram(t *testing.T) {
	box := NewAABB(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})

	hit, tMin, tMax := NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}).IntersectParalgram(box)
	require.True(t, hit)
	assert.InDelta(t, 4, tMin, 1e-9)
	assert.InDelta(t, 6, tMax, 1e-9)

	// origin inside
	hit, tMin, tMax = NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}).IntersectParalgram(box)
	require.True(t, hit)
	assert.Less(t, tMin, 0.0)
	assert.InDelta(t, 0.5, tMax, 1e-9)

	// box behind the ray
	hit, _, _ = NewRay(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0}).IntersectParalgram(box)
	assert.False(t, hit)

	// parallel to a slab, outside of it
	hit, _, _ = NewRay(mgl64.Vec3{-5, 2, 0}, mgl64.Vec3{1, 0, 0}).IntersectParalgram(box)
	assert.False(t, hit)

	// parallel to a slab, inside of it
	hit, _, _ = NewRay(mgl64.Vec3{-5, 0.5, 0}, mgl64.Vec3{1, 0, 0}).IntersectParalgram(box)
	assert.True(t, hit)
}

func TestRay_IntersectParalgramSheared(t *testing.T) {
	shear := mgl64.Ident4()
	shear.Set(0, 1, 1) // x += y
	box := NewAABB(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1}).Transform(shear)

	// the top face is shifted to x in [0, 2]
	hit, _, _ := NewRay(mgl64.Vec3{1.5, 5, 0}, mgl64.Vec3{0, -1, 0}).IntersectParalgram(box)
	assert.True(t, hit)
	hit, tMin, _ := NewRay(mgl64.Vec3{-1.5, 5, 0}, mgl64.Vec3{0, -1, 0}).IntersectParalgram(box)
	require.True(t, hit)
	// enters through the slanted face x - y = -1 at y = -0.5
	assert.InDelta(t, 5.5, tMin, 1e-9)
}

func TestRay_IntersectTriangle(t *testing.T) {
	tri := NewTriangle(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})

	front := NewRay(mgl64.Vec3{0.25, 0.25, 2}, mgl64.Vec3{0, 0, -1}).IntersectTriangle(tri)
	require.True(t, front.Hit)
	assert.False(t, front.BackFace)
	assert.InDelta(t, 2, front.Distance, 1e-12)
	assert.InDelta(t, 0.25, front.U, 1e-12)
	assert.InDelta(t, 0.25, front.V, 1e-12)

	back := NewRay(mgl64.Vec3{0.25, 0.25, -3}, mgl64.Vec3{0, 0, 1}).IntersectTriangle(tri)
	require.True(t, back.Hit)
	assert.True(t, back.BackFace)
	assert.InDelta(t, 3, back.Distance, 1e-12)

	behind := NewRay(mgl64.Vec3{0.25, 0.25, 2}, mgl64.Vec3{0, 0, 1}).IntersectTriangle(tri)
	require.True(t, behind.Hit)
	assert.Less(t, behind.Distance, 0.0)

	miss := NewRay(mgl64.Vec3{2, 2, 1}, mgl64.Vec3{0, 0, -1}).IntersectTriangle(tri)
	assert.False(t, miss.Hit)

	parallel := NewRay(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}).IntersectTriangle(tri)
	assert.False(t, parallel.Hit)

	zero := NewRay(mgl64.Vec3{0.2, 0.2, 1}, mgl64.Vec3{}).IntersectTriangle(tri)
	assert.False(t, zero.Hit)
}

func TestReflect(t *testing.T) {
	d := mgl64.Vec3{1, -1, 0}
	r := Reflect(d, mgl64.Vec3{0, 1, 0})
	assert.True(t, r.ApproxEqual(mgl64.Vec3{1, 1, 0}))
}
