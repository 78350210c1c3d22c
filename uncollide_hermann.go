package collide

import (
	"math"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// rayEpsilon is the relative nudge and minimum hit distance for uncollide rays.
const rayEpsilon = 1e-7

type rayResponse struct {
	response mgl64.Vec3
	force    mgl64.Vec3
}

// ShootUncollideRays runs the Hermann pass over every uncollide ray and returns
// the displacement that moves A out of B. start and finish are the force
// smoothing angles in radians. When no ray succeeds, or their forces cancel,
// the result is zero.
func ShootUncollideRays(rays UncollideRays, start, finish float64) mgl64.Vec3 {
	pair := rays.Collision.EntryPair
	if pair.A == nil || pair.B == nil || rays.Empty() {
		return mgl64.Vec3{}
	}

	var responses []rayResponse
	shoot := func(r UncollideRay, other, own *Entry, sign float64) {
		dir := geom.SafeNormalize(r.Direction)
		if dir == (mgl64.Vec3{}) {
			return
		}
		res, normal, ok := hermannPass(geom.NewRay(r.Origin, dir), other, own)
		if !ok {
			return
		}
		responses = append(responses, res.scaled(sign))

		mirrored := geom.Reflect(dir, normal).Mul(-1)
		if mirrored = geom.SafeNormalize(mirrored); mirrored == (mgl64.Vec3{}) {
			return
		}
		if res, _, ok := hermannPass(geom.NewRay(r.Origin, mirrored), other, own); ok {
			responses = append(responses, res.scaled(sign))
		}
	}
	for _, r := range rays.A {
		shoot(r, pair.B, pair.A, 1)
	}
	// B's rays push B out of A; flip them to get A relative to B.
	for _, r := range rays.B {
		shoot(r, pair.A, pair.B, -1)
	}

	var sum mgl64.Vec3
	for _, r := range responses {
		sum = sum.Add(r.force)
	}
	consensus := geom.SafeNormalize(sum)
	if consensus == (mgl64.Vec3{}) {
		return mgl64.Vec3{}
	}
	return consensus.Mul(pushOutMagnitude(responses, consensus, start, finish))
}

// hermannPass casts ray against other. The first hit must be a back face,
// meaning the origin is inside other, and it must not be further than the
// exit from own, meaning the origin is in the overlap. The normal used for
// the force weight and the mirrored sample is other's smooth normal.
func hermannPass(ray geom.Ray, other, own *Entry) (rayResponse, mgl64.Vec3, bool) {
	eps := rayEpsilon * math.Max(1, ray.Origin.Len())

	hit := other.Tree.IntersectRay(ray, other.Current, eps)
	if !hit.Hit || !hit.BackFace {
		return rayResponse{}, mgl64.Vec3{}, false
	}

	nudged := geom.NewRay(ray.At(eps), ray.Direction)
	if ownHit := own.Tree.IntersectRay(nudged, own.Current, eps); ownHit.Hit {
		if hit.Distance > ownHit.Distance+2*eps {
			return rayResponse{}, mgl64.Vec3{}, false
		}
	}

	response := ray.Direction.Mul(hit.Distance)
	cos := ray.Direction.Dot(hit.SmoothNormal)
	return rayResponse{
		response: response,
		force:    ray.Direction.Mul(cos * cos * hit.Distance),
	}, hit.SmoothNormal, true
}

func (r rayResponse) scaled(s float64) rayResponse {
	return rayResponse{response: r.response.Mul(s), force: r.force.Mul(s)}
}

// pushOutMagnitude is the largest response projected back onto the
// consensus direction, faded out between start and finish degrees of
// deviation from it.
func pushOutMagnitude(responses []rayResponse, consensus mgl64.Vec3, start, finish float64) float64 {
	best := 0.0
	for _, r := range responses {
		l := r.response.Len()
		if l < geom.Epsilon {
			continue
		}
		cos := mgl64.Clamp(r.response.Dot(consensus)/l, -1, 1)
		if cos <= 0 {
			continue
		}
		angle := math.Acos(cos)
		if angle >= finish {
			continue
		}
		w := 1 - smootherstep((angle-start)/(finish-start))
		if m := l / cos * w; m > best {
			best = m
		}
	}
	return best
}

// smootherstep is Perlin's quintic 6x^5 - 15x^4 + 10x^3 on [0, 1].
func smootherstep(x float64) float64 {
	x = mgl64.Clamp(x, 0, 1)
	return x * x * x * (x*(x*6-15) + 10)
}
