package collide

import (
	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/obbtree"
	"github.com/go-gl/mathgl/mgl64"
)

// worldTriangles transforms a tree's triangles lazily, each at most once.
type worldTriangles struct {
	tree   *obbtree.Tree
	m      mgl64.Mat4
	normal mgl64.Mat3
	tris   map[int32]geom.Triangle
}

func newWorldTriangles(tree *obbtree.Tree, m mgl64.Mat4) *worldTriangles {
	return &worldTriangles{
		tree:   tree,
		m:      m,
		normal: geom.NormalMatrix(m),
		tris:   make(map[int32]geom.Triangle),
	}
}

func (w *worldTriangles) get(i int32) geom.Triangle {
	if t, ok := w.tris[i]; ok {
		return t
	}
	t := w.tree.Triangle(i).Transform(w.m, w.normal)
	w.tris[i] = t
	return t
}

// TrianglesVsTriangles runs the exact triangle test over every candidate
// leaf pair in world space. Coplanar intersections are skipped. The result
// point is the segment midpoints averaged by segment length; ok is false
// when the total length is zero.
func TrianglesVsTriangles(mp MidPhasePair) (Collision, bool) {
	ta, tb := mp.A.Tree, mp.B.Tree
	wa := newWorldTriangles(ta, mp.A.Current)
	wb := newWorldTriangles(tb, mp.B.Current)

	col := Collision{EntryPair: mp.EntryPair}
	var sum mgl64.Vec3
	for _, lp := range mp.Leaves {
		na, nb := ta.Node(lp.A), tb.Node(lp.B)
		for i := na.LeafFirst; i < na.LeafFirst+na.LeafCount; i++ {
			a := wa.get(i)
			for j := nb.LeafFirst; j < nb.LeafFirst+nb.LeafCount; j++ {
				b := wb.get(j)
				res := geom.IntersectTriangles(a, b)
				if !res.Intersect || res.Coplanar {
					continue
				}
				l := res.Length()
				sum = sum.Add(res.Midpoint().Mul(l))
				col.Weight += l
				col.Contacts = append(col.Contacts, TriangleContact{TriA: i, TriB: j, A: a, B: b, Segment: res})
			}
		}
	}

	if col.Weight <= 0 {
		return Collision{}, false
	}
	col.Point = sum.Mul(1 / col.Weight)
	return col, true
}
