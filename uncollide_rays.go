package collide

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// planeTolerance is how far a vertex may sit outside a plane and still count
// as inside, relative to the scene scale at that vertex.
const planeTolerance = 1e-6

// UncollideRay starts on a body's surface and points into that body, i.e.
// out of the other body of the pair.
type UncollideRay struct {
	geom.Ray
	Vertex   uint32
	Fallback bool
}

// UncollideRays holds the uncollide rays for both sides of one collision. A rays
// start on A and are shot against B, and the reverse for B.
type UncollideRays struct {
	Collision Collision
	A, B      []UncollideRay
}

func (r UncollideRays) Empty() bool {
	return len(r.A) == 0 && len(r.B) == 0
}

// CreateUncollideRays builds the uncollide rays for col. Every vertex of a
// contact triangle that lies inside all planes of the other side's triangles
// crossing it yields one ray along its negated vertex normal. A side without
// such a vertex gets one ray from the collision point along the negated mean
// normal of its contact triangles.
func CreateUncollideRays(col Collision) UncollideRays {
	out := UncollideRays{Collision: col}
	if len(col.Contacts) == 0 {
		return out
	}
	out.A = sideRays(col, contactsBySide(col.Contacts, true))
	out.B = sideRays(col, contactsBySide(col.Contacts, false))
	return out
}

// sideContacts is one side's contact triangle with every triangle of the
// other side it was found crossing.
type sideContacts struct {
	own    geom.Triangle
	others []geom.Triangle
}

func contactsBySide(contacts []TriangleContact, sideA bool) []sideContacts {
	var out []sideContacts
	index := make(map[int32]int)
	for _, c := range contacts {
		id, own, other := c.TriA, c.A, c.B
		if !sideA {
			id, own, other = c.TriB, c.B, c.A
		}
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, sideContacts{own: own})
		}
		out[i].others = append(out[i].others, other)
	}
	return out
}

func sideRays(col Collision, contacts []sideContacts) []UncollideRay {
	var rays []UncollideRay
	added := make(map[uint32]bool)
	for _, sc := range contacts {
		for k := 0; k < 3; k++ {
			idx := sc.own.Indices[k]
			if added[idx] {
				continue
			}
			p := sc.own.Positions[k]
			if !insideAll(p, sc.others) {
				continue
			}
			n := sc.own.Normals[k]
			if n == (mgl64.Vec3{}) {
				n = sc.own.FaceNormal()
			}
			if n == (mgl64.Vec3{}) {
				continue
			}
			added[idx] = true
			rays = append(rays, UncollideRay{Ray: geom.NewRay(p, n.Mul(-1)), Vertex: idx})
		}
	}
	if len(rays) > 0 {
		return rays
	}

	var mean mgl64.Vec3
	for _, sc := range contacts {
		mean = mean.Add(sc.own.FaceNormal())
	}
	mean = geom.SafeNormalize(mean)
	if mean == (mgl64.Vec3{}) {
		return nil
	}
	return []UncollideRay{{Ray: geom.NewRay(col.Point, mean.Mul(-1)), Fallback: true}}
}

func insideAll(p mgl64.Vec3, planes []geom.Triangle) bool {
	tol := planeTolerance * math.Max(1, p.Len())
	for _, t := range planes {
		if t.SignedDistance(p) > tol {
			return false
		}
	}
	return true
}
