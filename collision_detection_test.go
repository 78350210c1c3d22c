package collide

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gekko3d/collide/geom"
	"github.com/gekko3d/collide/obbtree"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDetector(t *testing.T, mutate func(*Config)) *CollisionDetection {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := New(cfg, NewNopLogger())
	require.NoError(t, err)
	return d
}

func unitCube(t *testing.T, reg *MeshRegistry) *obbtree.Tree {
	t.Helper()
	id, err := reg.CreateCubeMesh(mgl64.Vec3{0.5, 0.5, 0.5})
	require.NoError(t, err)
	return reg.MustTree(id)
}

// cubeScene is two unit cubes, B moved from (2,0,0) to (0.5,0,0) this frame.
func cubeScene(t *testing.T) []Entry {
	reg := NewMeshRegistry()
	cube := unitCube(t, reg)
	return []Entry{
		TransformAt(0, 0, 0).Entry(1, TransformAt(0, 0, 0), cube, true),
		TransformAt(0.5, 0, 0).Entry(2, TransformAt(2, 0, 0), cube, true),
	}
}

func TestDetect_CubesEndToEnd(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.Resolver = ResolverRayDelta })
	res := d.Detect(cubeScene(t))

	require.Len(t, res.BroadPairs, 1)
	assert.Equal(t, [2]EntityId{1, 2}, res.BroadPairs[0].Key())

	require.Len(t, res.MidPairs, 1)
	assert.NotEmpty(t, res.MidPairs[0].Leaves)

	require.Len(t, res.Collisions, 1)
	col := res.Collisions[0]
	assert.Greater(t, col.Weight, 0.0)
	assert.InDelta(t, 0.25, col.Point.X(), 0.05)
	assert.InDelta(t, 0, col.Point.Y(), 1e-6)
	assert.InDelta(t, 0, col.Point.Z(), 1e-6)

	require.Len(t, res.Resolutions, 1)
	r := res.Resolutions[0]
	assert.Equal(t, EntityId(1), r.EntityA)
	assert.Equal(t, EntityId(2), r.EntityB)
	assert.Less(t, r.Displacement.X(), 0.0, "A must be pushed away from B")
	assert.InDelta(t, -0.5, r.Displacement.X(), 1e-6)
	// only B moved, so B takes the whole correction
	assert.True(t, r.DisplacementA.ApproxEqualThreshold(mgl64.Vec3{}, 1e-9))
	assert.InDelta(t, 0.5, r.DisplacementB.X(), 1e-6)
	assert.True(t, r.DisplacementA.Sub(r.DisplacementB).ApproxEqualThreshold(r.Displacement, 1e-9))
}

func TestDetect_CubesEndToEndHermann(t *testing.T) {
	d := newTestDetector(t, nil)
	res := d.Detect(cubeScene(t))
	require.Len(t, res.Collisions, 1)
	require.Len(t, res.Resolutions, 1)
	r := res.Resolutions[0]
	assert.Equal(t, [2]EntityId{1, 2}, [2]EntityId{r.EntityA, r.EntityB})
	assert.Less(t, r.Displacement.X(), 0.0, "A must be pushed away from B")
	assert.InDelta(t, -0.5, r.Displacement.X(), 1e-4)
	assert.InDelta(t, 0, r.Displacement.Y(), 1e-4)
	assert.InDelta(t, 0, r.Displacement.Z(), 1e-4)
}

func TestDetect_EmptyFrame(t *testing.T) {
	d := newTestDetector(t, nil)
	reg := NewMeshRegistry()
	single := []Entry{TransformAt(0, 0, 0).Entry(7, NewTransform(), unitCube(t, reg), true)}

	for _, entries := range [][]Entry{nil, single} {
		res := d.Detect(entries)
		require.NotNil(t, res.BroadPairs)
		require.NotNil(t, res.MidPairs)
		require.NotNil(t, res.Collisions)
		require.NotNil(t, res.Resolutions)
		assert.Empty(t, res.BroadPairs)
		assert.Empty(t, res.Collisions)
	}
}

func TestDetect_SeparatedBodiesProduceNothing(t *testing.T) {
	reg := NewMeshRegistry()
	cube := unitCube(t, reg)
	entries := []Entry{
		TransformAt(0, 0, 0).Entry(1, NewTransform(), cube, true),
		TransformAt(3, 0, 0).Entry(2, TransformAt(4, 0, 0), cube, true),
	}
	for _, kind := range []ResolverKind{ResolverHermann, ResolverRayDelta} {
		d := newTestDetector(t, func(c *Config) { c.Resolver = kind })
		res := d.Detect(entries)
		assert.Empty(t, res.BroadPairs)
		assert.Empty(t, res.Collisions)
		assert.Empty(t, res.Resolutions)
	}
}

func TestDetect_CallbackFlagFiltersPairs(t *testing.T) {
	reg := NewMeshRegistry()
	cube := unitCube(t, reg)
	d := newTestDetector(t, nil)

	quiet := []Entry{
		TransformAt(0, 0, 0).Entry(1, NewTransform(), cube, false),
		TransformAt(0.5, 0, 0).Entry(2, NewTransform(), cube, false),
	}
	assert.Empty(t, d.Detect(quiet).BroadPairs)

	quiet[1].ShouldCallback = true
	assert.Len(t, d.Detect(quiet).BroadPairs, 1)
}

func TestDetect_CoplanarSurfacesDoNotCollide(t *testing.T) {
	reg := NewMeshRegistry()
	id, err := reg.CreatePlaneMesh(2)
	require.NoError(t, err)
	plane := reg.MustTree(id)

	d := newTestDetector(t, nil)
	res := d.Detect([]Entry{
		TransformAt(0, 0, 0).Entry(1, NewTransform(), plane, true),
		TransformAt(1, 0, 0.5).Entry(2, NewTransform(), plane, true),
	})
	require.Len(t, res.MidPairs, 1)
	assert.Empty(t, res.Collisions)
}

func randomScene(t *testing.T, rng *rand.Rand, n int) []Entry {
	reg := NewMeshRegistry()
	cube := unitCube(t, reg)
	sid, err := reg.CreateSphereMesh(0.7, 6, 10)
	require.NoError(t, err)
	sphere := reg.MustTree(sid)

	entries := make([]Entry, n)
	for i := range entries {
		tr := NewTransform()
		tr.Position = mgl64.Vec3{rng.Float64() * 6, rng.Float64() * 6, rng.Float64() * 6}
		tr.Rotation = mgl64.QuatRotate(rng.Float64()*math.Pi, mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64() + 0.1}.Normalize())
		prev := tr
		prev.Position = tr.Position.Sub(mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5})
		tree := cube
		if i%2 == 1 {
			tree = sphere
		}
		entries[i] = tr.Entry(EntityId(100-i), prev, tree, rng.Intn(4) != 0)
	}
	return entries
}

func TestDetect_BroadPhaseHasNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	entries := randomScene(t, rng, 40)
	d := newTestDetector(t, nil)
	res := d.Detect(entries)

	found := make(map[[2]EntityId]bool)
	for _, p := range res.BroadPairs {
		require.Less(t, p.A.Entity, p.B.Entity)
		found[p.Key()] = true
	}
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := &entries[i], &entries[j]
			if !a.ShouldCallback && !b.ShouldCallback {
				continue
			}
			if geom.IntersectCuboidsBoolean(a.WorldBox(), b.WorldBox()) {
				assert.True(t, found[NewEntryPair(a, b).Key()], "missed %d-%d", a.Entity, b.Entity)
			}
		}
	}
}

func TestDetect_MidPhaseIsSubsetOfBroadPhase(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	d := newTestDetector(t, nil)
	res := d.Detect(randomScene(t, rng, 40))

	broad := make(map[[2]EntityId]bool)
	for _, p := range res.BroadPairs {
		broad[p.Key()] = true
	}
	require.NotEmpty(t, res.MidPairs)
	for _, mp := range res.MidPairs {
		assert.True(t, broad[mp.Key()])
		for _, lp := range mp.Leaves {
			boxA := mp.A.Tree.Node(lp.A).Box.Transform(mp.A.Current)
			boxB := mp.B.Tree.Node(lp.B).Box.Transform(mp.B.Current)
			assert.True(t, geom.IntersectCuboidsBoolean(boxA, boxB))
		}
	}

	mids := make(map[[2]EntityId]bool)
	for _, mp := range res.MidPairs {
		mids[mp.Key()] = true
	}
	for _, c := range res.Collisions {
		assert.True(t, mids[c.Key()])
		assert.Greater(t, c.Weight, 0.0)
		assert.NotEmpty(t, c.Contacts)
	}
}

func TestDetect_ParallelMatchesSequential(t *testing.T) {
	entries := randomScene(t, rand.New(rand.NewSource(12)), 60)
	seq := newTestDetector(t, nil).Detect(entries)
	par := newTestDetector(t, func(c *Config) { c.Workers = 4 }).Detect(entries)

	require.Equal(t, len(seq.MidPairs), len(par.MidPairs))
	require.Equal(t, len(seq.Collisions), len(par.Collisions))
	for i := range seq.Collisions {
		assert.Equal(t, seq.Collisions[i].Key(), par.Collisions[i].Key())
		assert.Equal(t, seq.Collisions[i].Point, par.Collisions[i].Point)
	}
	require.Equal(t, len(seq.Resolutions), len(par.Resolutions))
	for i := range seq.Resolutions {
		assert.Equal(t, seq.Resolutions[i], par.Resolutions[i])
	}
}

func TestDetect_OnCollisionHandlers(t *testing.T) {
	d := newTestDetector(t, nil)
	var got []Collision
	d.OnCollision(func(c Collision) { got = append(got, c) })

	res := d.Detect(cubeScene(t))
	require.Len(t, got, len(res.Collisions))
	assert.Equal(t, [2]EntityId{1, 2}, got[0].Key())
}

func TestDetect_MalformedEntries(t *testing.T) {
	reg := NewMeshRegistry()
	cube := unitCube(t, reg)
	entries := []Entry{
		TransformAt(0, 0, 0).Entry(1, NewTransform(), cube, true),
		TransformAt(0.5, 0, 0).Entry(2, NewTransform(), cube, true),
		{Current: mgl64.Ident4(), Previous: mgl64.Ident4(), Entity: 3, ShouldCallback: true},
		TransformAt(0.2, 0, 0).Entry(2, NewTransform(), cube, true),
	}

	core, logs := observer.New(zapcore.DebugLevel)
	d, err := New(DefaultConfig(), NewZapLogger(zap.New(core)))
	require.NoError(t, err)
	res := d.Detect(entries)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Entries, 2)
	assert.Len(t, res.BroadPairs, 1)
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 2, d.Profiler().Count(countSkipped))

	strict := newTestDetector(t, func(c *Config) { c.Strict = true })
	assert.PanicsWithError(t, "entity 3: collide: entry has no tree", func() {
		strict.Detect(entries)
	})
}

func TestDetect_Profiler(t *testing.T) {
	d := newTestDetector(t, nil)
	d.Detect(cubeScene(t))

	p := d.Profiler()
	assert.Equal(t, 2, p.Count(countEntries))
	assert.Equal(t, 1, p.Count(countBroadPairs))
	assert.Equal(t, 1, p.Count(countMidPairs))
	assert.Equal(t, 1, p.Count(countCollisions))

	stats := d.StatsString()
	for _, name := range []string{scopeBroad, scopeMid, scopeNarrow, scopeResolve, countCollisions} {
		assert.Contains(t, stats, name)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BiasMultiplier = 0
	_, err := New(cfg, NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEntryPair_Canonical(t *testing.T) {
	a := &Entry{Entity: 9}
	b := &Entry{Entity: 4}
	p := NewEntryPair(a, b)
	assert.Equal(t, EntityId(4), p.A.Entity)
	assert.Equal(t, p, NewEntryPair(b, a))
}
