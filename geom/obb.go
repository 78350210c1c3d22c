package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Epsilon guards divisions and sign tests in the predicates.
	Epsilon = 1e-9
	// MinExtent is the smallest half-length an OBB axis may have.
	MinExtent = 1e-6
)

// OBB is an oriented box given by its center and three half-extent vectors.
// The axes are not normalized: their length is the half-extent along that axis.
// After a sheared transform the axes need not be orthogonal (a parallelepiped).
type OBB struct {
	Center mgl64.Vec3
	Axes   [3]mgl64.Vec3
}

// NewOBB builds a box from its center and three half-axis vectors.
func NewOBB(center, u, v, w mgl64.Vec3) OBB {
	return OBB{Center: center, Axes: [3]mgl64.Vec3{u, v, w}}
}

// NewAABB builds an axis-aligned box from its corners.
func NewAABB(min, max mgl64.Vec3) OBB {
	half := max.Sub(min).Mul(0.5)
	for i := 0; i < 3; i++ {
		if half[i] < MinExtent {
			half[i] = MinExtent
		}
	}
	return OBB{
		Center: min.Add(max).Mul(0.5),
		Axes: [3]mgl64.Vec3{
			{half[0], 0, 0},
			{0, half[1], 0},
			{0, 0, half[2]},
		},
	}
}

// Transform maps the box through an affine matrix. Axes are transformed as
// directions so that the result still encloses the transformed contents.
func (b OBB) Transform(m mgl64.Mat4) OBB {
	m3 := m.Mat3()
	return OBB{
		Center: mgl64.TransformCoordinate(b.Center, m),
		Axes: [3]mgl64.Vec3{
			m3.Mul3x1(b.Axes[0]),
			m3.Mul3x1(b.Axes[1]),
			m3.Mul3x1(b.Axes[2]),
		},
	}
}

func (b OBB) HalfLengths() [3]float64 {
	return [3]float64{b.Axes[0].Len(), b.Axes[1].Len(), b.Axes[2].Len()}
}

// SurfaceArea of the parallelepiped spanned by the full axes.
func (b OBB) SurfaceArea() float64 {
	u, v, w := b.Axes[0], b.Axes[1], b.Axes[2]
	return 8 * (u.Cross(v).Len() + v.Cross(w).Len() + w.Cross(u).Len())
}

func (b OBB) Corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		p := b.Center
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				p = p.Add(b.Axes[a])
			} else {
				p = p.Sub(b.Axes[a])
			}
		}
		out[i] = p
	}
	return out
}

// MinMaxProjection projects the box onto axis. The axis does not need to be
// normalized; the interval is in units of axis length.
func (b OBB) MinMaxProjection(axis mgl64.Vec3) (float64, float64) {
	c := b.Center.Dot(axis)
	r := math.Abs(b.Axes[0].Dot(axis)) + math.Abs(b.Axes[1].Dot(axis)) + math.Abs(b.Axes[2].Dot(axis))
	return c - r, c + r
}

// FaceNormals returns the (unnormalized) normals of the three face pairs.
// Face i is the pair of faces crossed by axis i. A degenerate cross product
// falls back to the axis itself.
func (b OBB) FaceNormals() [3]mgl64.Vec3 {
	var n [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3
		c := b.Axes[j].Cross(b.Axes[k])
		if c.Dot(b.Axes[i]) < 0 {
			c = c.Mul(-1)
		}
		if c.Len() < Epsilon {
			c = b.Axes[i]
		}
		n[i] = c
	}
	return n
}

// Contains reports whether p lies inside the box (boundary included).
func (b OBB) Contains(p mgl64.Vec3) bool {
	d := p.Sub(b.Center)
	normals := b.FaceNormals()
	for i := 0; i < 3; i++ {
		h := math.Abs(normals[i].Dot(b.Axes[i]))
		if math.Abs(normals[i].Dot(d)) > h*(1+Epsilon)+Epsilon {
			return false
		}
	}
	return true
}

// IntersectCuboidsBoolean is a separating-axis test over the three face
// normals of each box. Edge-edge axes are not tested, so the test is
// conservative: it never misses an overlap but may report a near miss.
func IntersectCuboidsBoolean(a, b OBB) bool {
	for _, box := range [2]OBB{a, b} {
		for _, axis := range box.FaceNormals() {
			aMin, aMax := a.MinMaxProjection(axis)
			bMin, bMax := b.MinMaxProjection(axis)
			if aMax < bMin || bMax < aMin {
				return false
			}
		}
	}
	return true
}
