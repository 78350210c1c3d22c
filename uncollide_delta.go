package collide

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// previousPosition maps a current world point back through the entry's
// motion to where the same body point was last frame.
func previousPosition(e *Entry, p mgl64.Vec3) mgl64.Vec3 {
	if math.Abs(e.Current.Det()) < geom.Epsilon {
		return p
	}
	return mgl64.TransformCoordinate(p, e.Previous.Mul4(e.Current.Inv()))
}

// motion returns how far the body point under p moved since last frame, for
// both sides of the pair.
func motion(pair EntryPair, p mgl64.Vec3) (moveA, moveB mgl64.Vec3) {
	return p.Sub(previousPosition(pair.A, p)), p.Sub(previousPosition(pair.B, p))
}

// splitDisplacement shares a displacement of A relative to B between the two
// bodies in proportion to how far each moved. Bodies that did not move share
// it evenly.
func splitDisplacement(pair EntryPair, p, disp mgl64.Vec3) Resolution {
	moveA, moveB := motion(pair, p)
	la, lb := moveA.Len(), moveB.Len()
	wA := 0.5
	if total := la + lb; total > geom.Epsilon {
		wA = la / total
	}
	return Resolution{
		EntityA:       pair.A.Entity,
		EntityB:       pair.B.Entity,
		Displacement:  disp,
		DisplacementA: disp.Mul(wA),
		DisplacementB: disp.Mul(wA - 1),
	}
}

// RayDeltaUncollide estimates the penetration depth at the collision point
// along A's motion relative to B. Two rays start bias behind the point, one
// forward into B and one backward into A; the depth is what is left of the
// 2*bias span once both hit distances are removed. A collision without
// weight, bodies that did not move relative to each other, or a ray that
// misses all give a zero resolution.
func RayDeltaUncollide(col Collision, biasMultiplier float64) Resolution {
	pair := col.EntryPair
	if pair.A == nil || pair.B == nil || col.Weight <= 0 {
		return Resolution{}
	}
	zero := Resolution{EntityA: pair.A.Entity, EntityB: pair.B.Entity}

	moveA, moveB := motion(pair, col.Point)
	rel := moveA.Sub(moveB)
	separation := rel.Len()
	if separation < geom.Epsilon*math.Max(1, col.Point.Len()) {
		return zero
	}
	dir := rel.Mul(1 / separation)
	bias := biasMultiplier * separation

	intoB := pair.B.Tree.IntersectRay(geom.NewRay(col.Point.Sub(dir.Mul(bias)), dir), pair.B.Current, 0)
	if !intoB.Hit {
		return zero
	}
	intoA := pair.A.Tree.IntersectRay(geom.NewRay(col.Point.Add(dir.Mul(bias)), dir.Mul(-1)), pair.A.Current, 0)
	if !intoA.Hit {
		return zero
	}

	delta := 2*bias - (intoA.Distance + intoB.Distance)
	if delta < 0 {
		delta = 0
	}
	if delta > 2*bias {
		delta = bias
	}
	if delta == 0 {
		return zero
	}
	return splitDisplacement(pair, col.Point, dir.Mul(-delta))
}
