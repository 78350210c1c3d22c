package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// FitOBB returns a tight oriented box around points using principal
// component analysis of their covariance matrix. Degenerate sets (a single
// point, duplicates, collinear or coplanar points) still produce a valid box:
// flat directions get MinExtent half-lengths.
func FitOBB(points []mgl64.Vec3) OBB {
	if len(points) == 0 {
		return NewAABB(mgl64.Vec3{}, mgl64.Vec3{})
	}

	var mean mgl64.Vec3
	for _, p := range points {
		mean = mean.Add(p)
	}
	mean = mean.Mul(1 / float64(len(points)))

	var cov [6]float64 // xx, xy, xz, yy, yz, zz
	for _, p := range points {
		d := p.Sub(mean)
		cov[0] += d[0] * d[0]
		cov[1] += d[0] * d[1]
		cov[2] += d[0] * d[2]
		cov[3] += d[1] * d[1]
		cov[4] += d[1] * d[2]
		cov[5] += d[2] * d[2]
	}
	n := float64(len(points))
	sym := mat.NewSymDense(3, []float64{
		cov[0] / n, cov[1] / n, cov[2] / n,
		cov[1] / n, cov[3] / n, cov[4] / n,
		cov[2] / n, cov[4] / n, cov[5] / n,
	})

	axes, ok := principalAxes(sym)
	if !ok {
		return boundsAABB(points)
	}
	return fitAlongAxes(points, axes)
}

// FitOBBTriangles fits a box around every vertex of tris.
func FitOBBTriangles(tris []Triangle) OBB {
	points := make([]mgl64.Vec3, 0, len(tris)*3)
	for i := range tris {
		points = append(points, tris[i].Positions[:]...)
	}
	return FitOBB(points)
}

func principalAxes(sym *mat.SymDense) ([3]mgl64.Vec3, bool) {
	var axes [3]mgl64.Vec3
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return axes, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	for i := 0; i < 3; i++ {
		v := mgl64.Vec3{vecs.At(0, i), vecs.At(1, i), vecs.At(2, i)}
		l := v.Len()
		if l < Epsilon || math.IsNaN(l) {
			return axes, false
		}
		axes[i] = v.Mul(1 / l)
	}
	// Re-orthogonalize the third axis so the frame is right handed even when
	// eigenvalues repeat.
	axes[2] = axes[0].Cross(axes[1])
	if axes[2].Len() < Epsilon {
		return axes, false
	}
	axes[2] = axes[2].Normalize()
	axes[1] = axes[2].Cross(axes[0])
	return axes, true
}

func fitAlongAxes(points []mgl64.Vec3, axes [3]mgl64.Vec3) OBB {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for a := 0; a < 3; a++ {
			d := p.Dot(axes[a])
			lo[a] = math.Min(lo[a], d)
			hi[a] = math.Max(hi[a], d)
		}
	}
	var center mgl64.Vec3
	var half [3]mgl64.Vec3
	for a := 0; a < 3; a++ {
		center = center.Add(axes[a].Mul((lo[a] + hi[a]) * 0.5))
		// pad so surface points stay inside despite rounding in the axes
		half[a] = axes[a].Mul((hi[a]-lo[a])*0.5 + MinExtent)
	}
	return NewOBB(center, half[0], half[1], half[2])
}

func boundsAABB(points []mgl64.Vec3) OBB {
	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}
	return NewAABB(min, max)
}
