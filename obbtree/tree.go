package obbtree

import (
	"github.com/gekko3d/collide/geom"
)

// Node is one entry of the flattened hierarchy. Internal nodes reference
// their children by index; leaves reference a contiguous triangle range.
type Node struct {
	Box       geom.OBB
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is an immutable OBB hierarchy over one mesh. The root is node 0.
// A Tree is safe for concurrent readers and is shared by every entity that
// uses the mesh.
type Tree struct {
	nodes     []Node
	triangles []geom.Triangle
}

func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

func (t *Tree) Node(i int32) *Node {
	return &t.nodes[i]
}

func (t *Tree) Left(i int32) int32 {
	return t.nodes[i].Left
}

func (t *Tree) Right(i int32) int32 {
	return t.nodes[i].Right
}

// LeafTriangles returns the triangles of leaf i. The slice aliases the tree
// and must not be modified.
func (t *Tree) LeafTriangles(i int32) []geom.Triangle {
	n := &t.nodes[i]
	if !n.IsLeaf() {
		return nil
	}
	return t.triangles[n.LeafFirst : n.LeafFirst+n.LeafCount]
}

// Triangle returns the triangle at arena index i.
func (t *Tree) Triangle(i int32) geom.Triangle {
	return t.triangles[i]
}

// Triangles returns every triangle in leaf order.
func (t *Tree) Triangles() []geom.Triangle {
	return t.triangles
}

// Len is the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) TriangleCount() int {
	return len(t.triangles)
}

func (t *Tree) LeafCount() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// Depth is the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int32) int
	walk = func(i int32) int {
		n := &t.nodes[i]
		if n.IsLeaf() {
			return 1
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}
