package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TriangleIntersection is the result of IntersectTriangles. Start and End
// are only meaningful for a non-coplanar intersection.
type TriangleIntersection struct {
	Intersect bool
	Coplanar  bool
	Start     mgl64.Vec3
	End       mgl64.Vec3
}

// Length of the intersection segment.
func (r TriangleIntersection) Length() float64 {
	return r.End.Sub(r.Start).Len()
}

func (r TriangleIntersection) Midpoint() mgl64.Vec3 {
	return r.Start.Add(r.End).Mul(0.5)
}

// IntersectTriangles is Möller's interval overlap test, extended to return
// the segment where the two triangles cross. Coplanar triangles are tested
// in 2D on the plane that drops the dominant normal axis.
func IntersectTriangles(a, b Triangle) TriangleIntersection {
	v0, v1, v2 := a.Positions[0], a.Positions[1], a.Positions[2]
	u0, u1, u2 := b.Positions[0], b.Positions[1], b.Positions[2]

	// plane of a
	n1 := v1.Sub(v0).Cross(v2.Sub(v0))
	d1 := -n1.Dot(v0)
	du0 := snapZero(n1.Dot(u0)+d1, n1)
	du1 := snapZero(n1.Dot(u1)+d1, n1)
	du2 := snapZero(n1.Dot(u2)+d1, n1)
	du0du1 := du0 * du1
	du0du2 := du0 * du2
	if du0du1 > 0 && du0du2 > 0 {
		return TriangleIntersection{}
	}

	// plane of b
	n2 := u1.Sub(u0).Cross(u2.Sub(u0))
	d2 := -n2.Dot(u0)
	dv0 := snapZero(n2.Dot(v0)+d2, n2)
	dv1 := snapZero(n2.Dot(v1)+d2, n2)
	dv2 := snapZero(n2.Dot(v2)+d2, n2)
	dv0dv1 := dv0 * dv1
	dv0dv2 := dv0 * dv2
	if dv0dv1 > 0 && dv0dv2 > 0 {
		return TriangleIntersection{}
	}

	// project onto the largest component of the intersection line direction
	dir := n1.Cross(n2)
	index := dominantAxis(dir)

	vp := [3]float64{v0[index], v1[index], v2[index]}
	up := [3]float64{u0[index], u1[index], u2[index]}

	ia, coplanar := computeIntervals(a.Positions, vp, [3]float64{dv0, dv1, dv2}, dv0dv1, dv0dv2)
	if coplanar {
		if coplanarTriangles(n1, a.Positions, b.Positions) {
			return TriangleIntersection{Intersect: true, Coplanar: true}
		}
		return TriangleIntersection{Coplanar: true}
	}
	ib, coplanar := computeIntervals(b.Positions, up, [3]float64{du0, du1, du2}, du0du1, du0du2)
	if coplanar {
		if coplanarTriangles(n1, a.Positions, b.Positions) {
			return TriangleIntersection{Intersect: true, Coplanar: true}
		}
		return TriangleIntersection{Coplanar: true}
	}

	smallest1 := ia.sort()
	smallest2 := ib.sort()

	if ia.t[1] < ib.t[0] || ib.t[1] < ia.t[0] {
		return TriangleIntersection{}
	}

	var start, end mgl64.Vec3
	if ib.t[0] < ia.t[0] {
		start = ia.p[smallest1]
		if ib.t[1] < ia.t[1] {
			end = ib.p[1-smallest2]
		} else {
			end = ia.p[1-smallest1]
		}
	} else {
		start = ib.p[smallest2]
		if ib.t[1] > ia.t[1] {
			end = ia.p[1-smallest1]
		} else {
			end = ib.p[1-smallest2]
		}
	}
	return TriangleIntersection{Intersect: true, Start: start, End: end}
}

// interval is one triangle's overlap with the intersection line, as line
// parameters t and the matching 3D points p.
type interval struct {
	t [2]float64
	p [2]mgl64.Vec3
}

// sort orders t ascending and returns the index the smaller value came from.
// Points are left in place so callers can pick them by the returned index.
func (iv *interval) sort() int {
	if iv.t[0] > iv.t[1] {
		iv.t[0], iv.t[1] = iv.t[1], iv.t[0]
		return 1
	}
	return 0
}

func computeIntervals(verts [3]mgl64.Vec3, proj [3]float64, d [3]float64, d0d1, d0d2 float64) (interval, bool) {
	switch {
	case d0d1 > 0:
		// d0 and d1 on the same side, d2 on the other or on the plane
		return isect2(verts[2], verts[0], verts[1], proj[2], proj[0], proj[1], d[2], d[0], d[1]), false
	case d0d2 > 0:
		return isect2(verts[1], verts[0], verts[2], proj[1], proj[0], proj[2], d[1], d[0], d[2]), false
	case d[1]*d[2] > 0 || d[0] != 0:
		return isect2(verts[0], verts[1], verts[2], proj[0], proj[1], proj[2], d[0], d[1], d[2]), false
	case d[1] != 0:
		return isect2(verts[1], verts[0], verts[2], proj[1], proj[0], proj[2], d[1], d[0], d[2]), false
	case d[2] != 0:
		return isect2(verts[2], verts[0], verts[1], proj[2], proj[0], proj[1], d[2], d[0], d[1]), false
	default:
		return interval{}, true
	}
}

func isect2(vtx0, vtx1, vtx2 mgl64.Vec3, vv0, vv1, vv2, d0, d1, d2 float64) interval {
	var iv interval
	tmp := d0 / (d0 - d1)
	iv.t[0] = vv0 + (vv1-vv0)*tmp
	iv.p[0] = vtx0.Add(vtx1.Sub(vtx0).Mul(tmp))

	tmp = d0 / (d0 - d2)
	iv.t[1] = vv0 + (vv2-vv0)*tmp
	iv.p[1] = vtx0.Add(vtx2.Sub(vtx0).Mul(tmp))
	return iv
}

// snapZero treats plane distances below a scale-relative epsilon as on-plane.
func snapZero(d float64, n mgl64.Vec3) float64 {
	if math.Abs(d) < Epsilon*math.Max(1, n.Len()) {
		return 0
	}
	return d
}

func dominantAxis(v mgl64.Vec3) int {
	ax, ay, az := math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])
	index := 0
	max := ax
	if ay > max {
		max = ay
		index = 1
	}
	if az > max {
		index = 2
	}
	return index
}

// coplanarTriangles runs the 2D overlap test after dropping the axis where
// the shared normal is largest.
func coplanarTriangles(n mgl64.Vec3, a, b [3]mgl64.Vec3) bool {
	i0, i1 := 1, 2
	switch dominantAxis(n) {
	case 1:
		i0, i1 = 0, 2
	case 2:
		i0, i1 = 0, 1
	}

	// edges of a against b
	for e := 0; e < 3; e++ {
		if edgeAgainstTriangleEdges(a[e], a[(e+1)%3], b, i0, i1) {
			return true
		}
	}

	// one triangle fully inside the other
	if pointInTriangle2D(a[0], b, i0, i1) || pointInTriangle2D(b[0], a, i0, i1) {
		return true
	}
	return false
}

func edgeAgainstTriangleEdges(v0, v1 mgl64.Vec3, u [3]mgl64.Vec3, i0, i1 int) bool {
	ax := v1[i0] - v0[i0]
	ay := v1[i1] - v0[i1]
	for e := 0; e < 3; e++ {
		if edgeEdge(v0, ax, ay, u[e], u[(e+1)%3], i0, i1) {
			return true
		}
	}
	return false
}

// edgeEdge is the segment overlap test from Franklin Antonio's Graphics Gems III
// routine, as used by Möller.
func edgeEdge(v0 mgl64.Vec3, ax, ay float64, u0, u1 mgl64.Vec3, i0, i1 int) bool {
	bx := u0[i0] - u1[i0]
	by := u0[i1] - u1[i1]
	cx := v0[i0] - u0[i0]
	cy := v0[i1] - u0[i1]
	f := ay*bx - ax*by
	d := by*cx - bx*cy
	if (f > 0 && d >= 0 && d <= f) || (f < 0 && d <= 0 && d >= f) {
		e := ax*cy - ay*cx
		if f > 0 {
			if e >= 0 && e <= f {
				return true
			}
		} else if e <= 0 && e >= f {
			return true
		}
	}
	return false
}

func pointInTriangle2D(p mgl64.Vec3, u [3]mgl64.Vec3, i0, i1 int) bool {
	side := func(a, b mgl64.Vec3) float64 {
		ea := b[i1] - a[i1]
		eb := -(b[i0] - a[i0])
		ec := -ea*a[i0] - eb*a[i1]
		return ea*p[i0] + eb*p[i1] + ec
	}
	d0 := side(u[0], u[1])
	d1 := side(u[1], u[2])
	d2 := side(u[2], u[0])
	return d0*d1 > 0 && d0*d2 > 0
}
