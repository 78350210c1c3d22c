package collide

import (
	"github.com/gekko3d/collide/obbtree"
)

// OBBtreesCollision descends both trees under the pair's current matrices
// and collects every leaf pair whose world boxes overlap. ok is false when
// there are none.
func OBBtreesCollision(pair EntryPair) (MidPhasePair, bool) {
	mp := MidPhasePair{EntryPair: pair}
	obbtree.IntersectTrees(pair.A.Tree, pair.A.Current, pair.B.Tree, pair.B.Current, func(lp obbtree.LeafPair) {
		mp.Leaves = append(mp.Leaves, lp)
	})
	return mp, len(mp.Leaves) > 0
}
