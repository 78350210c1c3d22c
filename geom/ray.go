package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform maps the ray through an affine matrix. The direction is not
// renormalized, so ray parameters stay comparable across spaces.
func (r Ray) Transform(m mgl64.Mat4) Ray {
	return Ray{
		Origin:    mgl64.TransformCoordinate(r.Origin, m),
		Direction: m.Mat3().Mul3x1(r.Direction),
	}
}

// IntersectParalgram clips the ray against the three slabs of a box whose
// axes may be non-orthogonal. It returns the parameter interval inside the
// box; tMin is negative when the origin is inside. An axis nearly parallel to
// the ray is handled by a containment check on the origin.
func (r Ray) IntersectParalgram(b OBB) (bool, float64, float64) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	rel := r.Origin.Sub(b.Center)
	normals := b.FaceNormals()
	dirLen := r.Direction.Len()

	for i := 0; i < 3; i++ {
		n := normals[i]
		h := math.Abs(n.Dot(b.Axes[i]))
		o := n.Dot(rel)
		denom := n.Dot(r.Direction)

		if math.Abs(denom) < Epsilon*n.Len()*dirLen {
			if o < -h || o > h {
				return false, 0, 0
			}
			continue
		}

		t1 := (-h - o) / denom
		t2 := (h - o) / denom
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false, 0, 0
		}
	}

	if tMax < 0 {
		return false, 0, 0
	}
	return true, tMin, tMax
}

// RayTriangleHit describes a ray/triangle intersection. Distance is the ray
// parameter and may be negative (hit behind the origin). U and V are the
// barycentric weights of the second and third vertex.
type RayTriangleHit struct {
	Hit      bool
	Distance float64
	U, V     float64
	BackFace bool
}

// IntersectTriangle is a two-sided Möller-Trumbore test. BackFace is set when
// the ray travels along the triangle's normal, i.e. it hits the face from
// behind.
func (r Ray) IntersectTriangle(t Triangle) RayTriangleHit {
	e1 := t.Positions[1].Sub(t.Positions[0])
	e2 := t.Positions[2].Sub(t.Positions[0])
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)

	scale := e1.Len() * e2.Len() * r.Direction.Len()
	if math.Abs(det) <= Epsilon*scale || scale == 0 {
		return RayTriangleHit{}
	}
	inv := 1 / det

	s := r.Origin.Sub(t.Positions[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return RayTriangleHit{}
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return RayTriangleHit{}
	}

	return RayTriangleHit{
		Hit:      true,
		Distance: e2.Dot(q) * inv,
		U:        u,
		V:        v,
		BackFace: det < 0,
	}
}

// Reflect mirrors d off a surface with unit normal n.
func Reflect(d, n mgl64.Vec3) mgl64.Vec3 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}
