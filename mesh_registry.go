package collide

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/obbtree"
	"github.com/google/uuid"
)

var ErrUnknownMesh = errors.New("collide: unknown mesh")

type MeshId string

func makeMeshId() MeshId {
	return MeshId(uuid.NewString())
}

type meshAsset struct {
	name string
	tree *obbtree.Tree
}

// MeshRegistry owns one OBB-tree per loaded mesh. Trees are shared by every
// entry that uses the mesh and live until Unload.
type MeshRegistry struct {
	mu     sync.RWMutex
	meshes map[MeshId]meshAsset
}

func NewMeshRegistry() *MeshRegistry {
	return &MeshRegistry{meshes: make(map[MeshId]meshAsset)}
}

// Register builds the tree for a finished triangle list.
func (r *MeshRegistry) Register(name string, tris []geom.Triangle) (MeshId, error) {
	tree, err := obbtree.Build(tris)
	if err != nil {
		return "", fmt.Errorf("registering mesh %q: %w", name, err)
	}
	id := makeMeshId()
	r.mu.Lock()
	r.meshes[id] = meshAsset{name: name, tree: tree}
	r.mu.Unlock()
	return id, nil
}

func (r *MeshRegistry) Tree(id MeshId) (*obbtree.Tree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMesh, id)
	}
	return m.tree, nil
}

func (r *MeshRegistry) MustTree(id MeshId) *obbtree.Tree {
	tree, err := r.Tree(id)
	if err != nil {
		panic(err)
	}
	return tree
}

func (r *MeshRegistry) Name(id MeshId) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meshes[id].name
}

// Unload drops the registry's reference. Entries still holding the tree keep
// it alive until they are gone.
func (r *MeshRegistry) Unload(id MeshId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meshes[id]; !ok {
		return false
	}
	delete(r.meshes, id)
	return true
}

func (r *MeshRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes)
}
