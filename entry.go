package collide

import (
	"errors"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/obbtree"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilTree         = errors.New("collide: entry has no tree")
	ErrDuplicateEntity = errors.New("collide: duplicate entity id")
)

type EntityId uint64

// Entry is one collidable entity for one frame. Tree is shared and must not
// be mutated; Current and Previous are world matrices.
type Entry struct {
	Current        mgl64.Mat4
	Previous       mgl64.Mat4
	Tree           *obbtree.Tree
	ShouldCallback bool
	Entity         EntityId
}

// WorldBox is the tree's root box under the current matrix.
func (e *Entry) WorldBox() geom.OBB {
	return e.Tree.Root().Box.Transform(e.Current)
}

// EntryPair is an unordered pair stored with the smaller entity id in A.
type EntryPair struct {
	A, B *Entry
}

func NewEntryPair(a, b *Entry) EntryPair {
	if b.Entity < a.Entity {
		a, b = b, a
	}
	return EntryPair{A: a, B: b}
}

// Key is the pair's canonical identity.
func (p EntryPair) Key() [2]EntityId {
	return [2]EntityId{p.A.Entity, p.B.Entity}
}

// MidPhasePair is a broad phase pair with the overlapping leaf pairs of the
// two trees. Leaves[i].A indexes p.A.Tree, Leaves[i].B indexes p.B.Tree.
type MidPhasePair struct {
	EntryPair
	Leaves []obbtree.LeafPair
}

// TriangleContact is one non-coplanar intersecting triangle pair in world
// space. TriA and TriB are arena indices into the respective trees.
type TriangleContact struct {
	TriA, TriB int32
	A, B       geom.Triangle
	Segment    geom.TriangleIntersection
}

// Collision is a narrow phase result: the length weighted average of the
// intersection segment midpoints, in world space.
type Collision struct {
	EntryPair
	Point    mgl64.Vec3
	Weight   float64
	Contacts []TriangleContact
}

// Resolution is the correction for one colliding pair. Displacement moves A
// relative to B; DisplacementA and DisplacementB split it between the two
// bodies so that DisplacementA - DisplacementB == Displacement.
type Resolution struct {
	EntityA, EntityB EntityId
	Displacement     mgl64.Vec3
	DisplacementA    mgl64.Vec3
	DisplacementB    mgl64.Vec3
}

func (r Resolution) IsZero() bool {
	return r.Displacement == (mgl64.Vec3{})
}
