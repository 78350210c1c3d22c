package obbtree

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// LeafPair names two leaves, one per tree, whose world boxes overlap.
type LeafPair struct {
	A, B int32
}

// IntersectTrees descends both trees under their world matrices and calls
// visit for every pair of leaves whose boxes overlap. When both current
// nodes are internal the one with the larger surface area is split first.
func IntersectTrees(a *Tree, ma mgl64.Mat4, b *Tree, mb mgl64.Mat4, visit func(LeafPair)) {
	w := treeWalk{a: a, b: b, ma: ma, mb: mb, visit: visit}
	w.descend(0, a.nodes[0].Box.Transform(ma), 0, b.nodes[0].Box.Transform(mb))
}

type treeWalk struct {
	a, b   *Tree
	ma, mb mgl64.Mat4
	visit  func(LeafPair)
}

func (w *treeWalk) descend(ia int32, boxA geom.OBB, ib int32, boxB geom.OBB) {
	if !geom.IntersectCuboidsBoolean(boxA, boxB) {
		return
	}
	na := &w.a.nodes[ia]
	nb := &w.b.nodes[ib]

	splitA := false
	switch {
	case na.IsLeaf() && nb.IsLeaf():
		w.visit(LeafPair{A: ia, B: ib})
		return
	case nb.IsLeaf():
		splitA = true
	case na.IsLeaf():
		splitA = false
	default:
		splitA = boxA.SurfaceArea() >= boxB.SurfaceArea()
	}

	if splitA {
		for _, c := range [2]int32{na.Left, na.Right} {
			w.descend(c, w.a.nodes[c].Box.Transform(w.ma), ib, boxB)
		}
		return
	}
	for _, c := range [2]int32{nb.Left, nb.Right} {
		w.descend(ia, boxA, c, w.b.nodes[c].Box.Transform(w.mb))
	}
}

// RayHit is the nearest triangle hit of a ray cast against a tree. Point and
// the normals are in world space; Distance is in the ray's parameter space.
// Normal is the face normal, SmoothNormal interpolates the vertex normals.
type RayHit struct {
	Hit          bool
	Distance     float64
	Triangle     int32
	Point        mgl64.Vec3
	Normal       mgl64.Vec3
	SmoothNormal mgl64.Vec3
	BackFace     bool
}

// IntersectRay returns the nearest hit with Distance > minDistance for a
// ray given in world space against the tree placed by m. Children whose box
// starts beyond the best hit so far are skipped.
func (t *Tree) IntersectRay(ray geom.Ray, m mgl64.Mat4, minDistance float64) RayHit {
	if math.Abs(m.Det()) < geom.Epsilon {
		return RayHit{}
	}
	local := ray.Transform(m.Inv())
	if local.Direction.Len() < geom.Epsilon {
		return RayHit{}
	}

	c := rayCast{tree: t, ray: local, minDistance: minDistance, best: math.Inf(1), triangle: -1}
	c.visit(0)
	if c.triangle < 0 {
		return RayHit{}
	}

	tri := &t.triangles[c.triangle]
	nm := geom.NormalMatrix(m)
	normal := geom.SafeNormalize(nm.Mul3x1(tri.FaceNormal()))
	smooth := tri.Normals[0].Mul(1 - c.u - c.v).Add(tri.Normals[1].Mul(c.u)).Add(tri.Normals[2].Mul(c.v))
	smooth = geom.SafeNormalize(nm.Mul3x1(smooth))
	if smooth == (mgl64.Vec3{}) {
		smooth = normal
	}
	return RayHit{
		Hit:          true,
		Distance:     c.best,
		Triangle:     c.triangle,
		Point:        ray.At(c.best),
		Normal:       normal,
		SmoothNormal: smooth,
		BackFace:     ray.Direction.Dot(normal) > 0,
	}
}

type rayCast struct {
	tree        *Tree
	ray         geom.Ray
	minDistance float64
	best        float64
	u, v        float64
	triangle    int32
}

func (c *rayCast) visit(i int32) {
	n := &c.tree.nodes[i]
	hit, tMin, tMax := c.ray.IntersectParalgram(n.Box)
	if !hit || tMin > c.best || tMax < c.minDistance {
		return
	}

	if n.IsLeaf() {
		for k := n.LeafFirst; k < n.LeafFirst+n.LeafCount; k++ {
			h := c.ray.IntersectTriangle(c.tree.triangles[k])
			if h.Hit && h.Distance > c.minDistance && h.Distance < c.best {
				c.best = h.Distance
				c.u, c.v = h.U, h.V
				c.triangle = k
			}
		}
		return
	}

	first, second := n.Left, n.Right
	if c.tree.nodes[second].Box.SurfaceArea() > c.tree.nodes[first].Box.SurfaceArea() {
		first, second = second, first
	}
	c.visit(first)
	c.visit(second)
}
