package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is a mesh face with per-vertex normals and the indices of its
// vertices in the source mesh. It is a small value type and copied freely.
type Triangle struct {
	Positions [3]mgl64.Vec3
	Normals   [3]mgl64.Vec3
	Indices   [3]uint32
}

// NewTriangle builds a triangle whose vertex normals all equal the face normal.
func NewTriangle(p0, p1, p2 mgl64.Vec3) Triangle {
	t := Triangle{Positions: [3]mgl64.Vec3{p0, p1, p2}}
	n := t.FaceNormal()
	t.Normals = [3]mgl64.Vec3{n, n, n}
	return t
}

func (t Triangle) Center() mgl64.Vec3 {
	return t.Positions[0].Add(t.Positions[1]).Add(t.Positions[2]).Mul(1.0 / 3.0)
}

// FaceNormal is the unit normal following counter-clockwise winding, or the
// zero vector for a degenerate triangle.
func (t Triangle) FaceNormal() mgl64.Vec3 {
	n := t.Positions[1].Sub(t.Positions[0]).Cross(t.Positions[2].Sub(t.Positions[0]))
	l := n.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

func (t Triangle) Area() float64 {
	return 0.5 * t.Positions[1].Sub(t.Positions[0]).Cross(t.Positions[2].Sub(t.Positions[0])).Len()
}

// Transform maps positions through m and normals through normalMatrix,
// renormalizing the result. Use NormalMatrix(m) to get the corrected matrix
// for non-uniform scale.
func (t Triangle) Transform(m mgl64.Mat4, normalMatrix mgl64.Mat3) Triangle {
	out := Triangle{Indices: t.Indices}
	for i := 0; i < 3; i++ {
		out.Positions[i] = mgl64.TransformCoordinate(t.Positions[i], m)
		out.Normals[i] = SafeNormalize(normalMatrix.Mul3x1(t.Normals[i]))
	}
	return out
}

// NormalMatrix is the inverse transpose of m's upper 3x3. Singular matrices
// fall back to the plain 3x3 part.
func NormalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	m3 := m.Mat3()
	if math.Abs(m3.Det()) < Epsilon {
		return m3
	}
	return m3.Inv().Transpose()
}

// SignedDistance of p to the triangle's plane along the face normal.
func (t Triangle) SignedDistance(p mgl64.Vec3) float64 {
	return p.Sub(t.Positions[0]).Dot(t.FaceNormal())
}

// SafeNormalize returns v scaled to unit length, or zero for tiny vectors.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
