package collide

import (
	"fmt"
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func hadamard(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// CubeTriangles is a box centered at the origin with 24 vertices, so every
// face has its own flat normals. Triangles wind counter-clockwise seen from
// outside.
func CubeTriangles(half mgl64.Vec3) []geom.Triangle {
	// normal, u, v with u x v == normal
	faces := [6][3]mgl64.Vec3{
		{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
	}
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	tris := make([]geom.Triangle, 0, 12)
	for f, face := range faces {
		n := face[0]
		center := hadamard(n, half)
		u, v := hadamard(face[1], half), hadamard(face[2], half)

		var p [4]mgl64.Vec3
		for i, c := range corners {
			p[i] = center.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
		}
		base := uint32(f * 4)
		for _, t := range [2][3]uint32{{0, 1, 2}, {0, 2, 3}} {
			tris = append(tris, geom.Triangle{
				Positions: [3]mgl64.Vec3{p[t[0]], p[t[1]], p[t[2]]},
				Normals:   [3]mgl64.Vec3{n, n, n},
				Indices:   [3]uint32{base + t[0], base + t[1], base + t[2]},
			})
		}
	}
	return tris
}

// UVSphereTriangles tessellates a sphere with poles on +Y and -Y. rings is
// the number of latitude bands and segments the number of longitude slices.
// Normals are radial.
func UVSphereTriangles(radius float64, rings, segments int) []geom.Triangle {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	var pos, nrm []mgl64.Vec3
	add := func(n mgl64.Vec3) uint32 {
		pos = append(pos, n.Mul(radius))
		nrm = append(nrm, n)
		return uint32(len(pos) - 1)
	}

	north := add(mgl64.Vec3{0, 1, 0})
	ring := make([][]uint32, rings-1)
	for i := 1; i < rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			ring[i-1] = append(ring[i-1], add(mgl64.Vec3{
				math.Sin(theta) * math.Cos(phi),
				math.Cos(theta),
				math.Sin(theta) * math.Sin(phi),
			}))
		}
	}
	south := add(mgl64.Vec3{0, -1, 0})

	var tris []geom.Triangle
	tri := func(a, b, c uint32) {
		tris = append(tris, geom.Triangle{
			Positions: [3]mgl64.Vec3{pos[a], pos[b], pos[c]},
			Normals:   [3]mgl64.Vec3{nrm[a], nrm[b], nrm[c]},
			Indices:   [3]uint32{a, b, c},
		})
	}

	for j := 0; j < segments; j++ {
		k := (j + 1) % segments
		tri(north, ring[0][k], ring[0][j])
		for i := 0; i+1 < len(ring); i++ {
			up, low := ring[i], ring[i+1]
			tri(up[j], up[k], low[k])
			tri(up[j], low[k], low[j])
		}
		last := ring[len(ring)-1]
		tri(south, last[j], last[k])
	}
	return tris
}

// PlaneTriangles is a square in the XZ plane facing +Y.
func PlaneTriangles(halfSize float64) []geom.Triangle {
	h := halfSize
	p := [4]mgl64.Vec3{{-h, 0, -h}, {-h, 0, h}, {h, 0, h}, {h, 0, -h}}
	n := mgl64.Vec3{0, 1, 0}
	return []geom.Triangle{
		{Positions: [3]mgl64.Vec3{p[0], p[1], p[2]}, Normals: [3]mgl64.Vec3{n, n, n}, Indices: [3]uint32{0, 1, 2}},
		{Positions: [3]mgl64.Vec3{p[0], p[2], p[3]}, Normals: [3]mgl64.Vec3{n, n, n}, Indices: [3]uint32{0, 2, 3}},
	}
}

func (r *MeshRegistry) CreateCubeMesh(half mgl64.Vec3) (MeshId, error) {
	return r.Register(fmt.Sprintf("cube %v", half), CubeTriangles(half))
}

func (r *MeshRegistry) CreateSphereMesh(radius float64, rings, segments int) (MeshId, error) {
	return r.Register(fmt.Sprintf("sphere r=%g %dx%d", radius, rings, segments), UVSphereTriangles(radius, rings, segments))
}

func (r *MeshRegistry) CreatePlaneMesh(halfSize float64) (MeshId, error) {
	return r.Register(fmt.Sprintf("plane %g", halfSize), PlaneTriangles(halfSize))
}
