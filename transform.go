package collide

import (
	"github.com/gekko3d/collide/obbtree"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a convenience for building entry matrices.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

func TransformAt(x, y, z float64) Transform {
	t := NewTransform()
	t.Position = mgl64.Vec3{x, y, z}
	return t
}

func (t Transform) ObjectToWorld() mgl64.Mat4 {
	// M = T * R * S
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Normalize().Mat4()
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

func (t Transform) WorldToObject() mgl64.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl64.Scale3D(1/t.Scale.X(), 1/t.Scale.Y(), 1/t.Scale.Z())
	invRotate := t.Rotation.Normalize().Conjugate().Mat4()
	invTranslate := mgl64.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// Entry builds a frame entry moving from prev to t.
func (t Transform) Entry(id EntityId, prev Transform, tree *obbtree.Tree, callback bool) Entry {
	return Entry{
		Current:        t.ObjectToWorld(),
		Previous:       prev.ObjectToWorld(),
		Tree:           tree,
		ShouldCallback: callback,
		Entity:         id,
	}
}
