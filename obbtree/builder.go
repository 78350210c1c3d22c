package obbtree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gekko3d/collide/geom"
)

// LeafCap is the largest number of triangles a leaf may hold.
const LeafCap = 4

var ErrNoTriangles = errors.New("obbtree: no triangles")

// buildNode is the owned recursive form used only while building. It is
// flattened into the Tree arena and then dropped.
type buildNode struct {
	box         geom.OBB
	left, right *buildNode
	tris        []geom.Triangle
}

// Build fits an OBB hierarchy over tris. The slice is not retained.
func Build(tris []geom.Triangle) (*Tree, error) {
	if len(tris) == 0 {
		return nil, ErrNoTriangles
	}
	work := make([]geom.Triangle, len(tris))
	copy(work, tris)

	root := buildRecursive(work)

	t := &Tree{
		nodes:     make([]Node, 0, 2*len(tris)/LeafCap+1),
		triangles: make([]geom.Triangle, 0, len(tris)),
	}
	t.flatten(root)
	return t, nil
}

// MustBuild is Build for load-time code where an empty mesh is a bug.
func MustBuild(tris []geom.Triangle) *Tree {
	t, err := Build(tris)
	if err != nil {
		panic(fmt.Errorf("building tree over %d triangles: %w", len(tris), err))
	}
	return t
}

func buildRecursive(tris []geom.Triangle) *buildNode {
	node := &buildNode{box: geom.FitOBBTriangles(tris)}
	if len(tris) <= LeafCap {
		node.tris = tris
		return node
	}

	left, right := splitTriangles(node.box, tris)
	node.left = buildRecursive(left)
	node.right = buildRecursive(right)
	return node
}

// splitTriangles partitions by the side of the box center each triangle
// center falls on, trying the box axes from longest to shortest. When no axis
// separates the set it falls back to halving in index order.
func splitTriangles(box geom.OBB, tris []geom.Triangle) ([]geom.Triangle, []geom.Triangle) {
	lens := box.HalfLengths()
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool {
		return lens[order[i]] > lens[order[j]]
	})

	for _, axis := range order {
		dir := box.Axes[axis]
		pivot := box.Center.Dot(dir)

		var left, right []geom.Triangle
		for i := range tris {
			if tris[i].Center().Dot(dir)-pivot > 0 {
				right = append(right, tris[i])
			} else {
				left = append(left, tris[i])
			}
		}
		if len(left) > 0 && len(right) > 0 {
			return left, right
		}
	}

	mid := len(tris) / 2
	return tris[:mid], tris[mid:]
}

func (t *Tree) flatten(n *buildNode) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, Node{Box: n.box, Left: -1, Right: -1, LeafFirst: -1})

	if n.left == nil {
		t.nodes[idx].LeafFirst = int32(len(t.triangles))
		t.nodes[idx].LeafCount = int32(len(n.tris))
		t.triangles = append(t.triangles, n.tris...)
		return idx
	}

	left := t.flatten(n.left)
	right := t.flatten(n.right)
	t.nodes[idx].Left = left
	t.nodes[idx].Right = right
	return idx
}
