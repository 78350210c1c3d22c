// Package collide finds and resolves penetrations between animated triangle
// mesh bodies. Each frame runs a sweep-and-prune broad phase, an OBB-tree
// mid phase, an exact triangle narrow phase and an uncollide resolver.
package collide

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gekko3d/collide/sweep"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// FrameResult holds every stage's output for one frame. Slices are never
// nil. Pairs point at entries owned by the result, so they stay valid after
// the next Detect.
type FrameResult struct {
	Entries     []Entry
	BroadPairs  []EntryPair
	MidPairs    []MidPhasePair
	Collisions  []Collision
	Resolutions []Resolution
	Skipped     int
}

type CollisionDetection struct {
	cfg      Config
	logger   Logger
	sap      *sweep.SweepAndPrune
	profiler *Profiler
	handlers []func(Collision)
}

// New validates cfg. A nil logger gets one built from cfg.Logging.
func New(cfg Config, logger Logger) (*CollisionDetection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewLogger(cfg.Logging)
	}
	return &CollisionDetection{
		cfg:      cfg,
		logger:   logger,
		sap:      sweep.New(cfg.SweepAxes),
		profiler: NewProfiler(),
	}, nil
}

func (d *CollisionDetection) Config() Config      { return d.cfg }
func (d *CollisionDetection) Profiler() *Profiler { return d.profiler }
func (d *CollisionDetection) StatsString() string { return d.profiler.StatsString() }
func (d *CollisionDetection) Logger() Logger      { return d.logger }

// OnCollision registers a handler called synchronously from Detect for
// every narrow phase collision.
func (d *CollisionDetection) OnCollision(fn func(Collision)) {
	d.handlers = append(d.handlers, fn)
}

// Detect runs the whole pipeline over one frame's entries.
func (d *CollisionDetection) Detect(entries []Entry) FrameResult {
	d.profiler.Reset()
	res := FrameResult{
		BroadPairs:  []EntryPair{},
		MidPairs:    []MidPhasePair{},
		Collisions:  []Collision{},
		Resolutions: []Resolution{},
	}
	res.Entries, res.Skipped = d.acceptEntries(entries)
	d.profiler.SetCount(countEntries, len(res.Entries))
	d.profiler.SetCount(countSkipped, res.Skipped)

	d.profiler.BeginScope(scopeBroad)
	res.BroadPairs = d.BroadPhase(res.Entries)
	d.profiler.EndScope(scopeBroad)

	res.MidPairs, res.Collisions = d.pairPhases(res.BroadPairs)

	for _, col := range res.Collisions {
		for _, fn := range d.handlers {
			fn(col)
		}
	}

	d.profiler.BeginScope(scopeResolve)
	for _, col := range res.Collisions {
		if r, ok := d.resolve(col); ok {
			res.Resolutions = append(res.Resolutions, r)
		}
	}
	d.profiler.EndScope(scopeResolve)

	d.profiler.SetCount(countBroadPairs, len(res.BroadPairs))
	d.profiler.SetCount(countMidPairs, len(res.MidPairs))
	d.profiler.SetCount(countCollisions, len(res.Collisions))
	d.profiler.SetCount(countResolutions, len(res.Resolutions))
	if d.logger.DebugEnabled() {
		d.logger.Debugf("collide frame: entries=%d skipped=%d broad=%d mid=%d collisions=%d resolutions=%d",
			len(res.Entries), res.Skipped, len(res.BroadPairs), len(res.MidPairs), len(res.Collisions), len(res.Resolutions))
	}
	return res
}

// acceptEntries copies the frame's entries, dropping those that break the
// entry contract. In strict mode a violation panics instead.
func (d *CollisionDetection) acceptEntries(entries []Entry) ([]Entry, int) {
	out := make([]Entry, 0, len(entries))
	seen := make(map[EntityId]bool, len(entries))
	skipped := 0
	for _, e := range entries {
		var err error
		switch {
		case e.Tree == nil:
			err = fmt.Errorf("entity %d: %w", e.Entity, ErrNilTree)
		case seen[e.Entity]:
			err = fmt.Errorf("entity %d: %w", e.Entity, ErrDuplicateEntity)
		}
		if err != nil {
			if d.cfg.Strict {
				panic(err)
			}
			d.logger.Warnf("skipping collision entry: %v", err)
			skipped++
			continue
		}
		seen[e.Entity] = true
		out = append(out, e)
	}
	return out, skipped
}

// BroadPhase returns the canonical pairs whose world boxes overlap on all
// three sweep axes and where at least one side wants callbacks.
func (d *CollisionDetection) BroadPhase(entries []Entry) []EntryPair {
	pairs := []EntryPair{}
	if len(entries) < 2 {
		return pairs
	}
	items := make([]sweep.Item, len(entries))
	for i := range entries {
		items[i] = sweep.Item{
			Box:      entries[i].WorldBox(),
			Index:    i,
			Callback: entries[i].ShouldCallback,
		}
	}
	for _, p := range d.sap.Pairs(items) {
		pairs = append(pairs, NewEntryPair(&entries[p.A], &entries[p.B]))
	}
	return pairs
}

type pairResult struct {
	mid      MidPhasePair
	midOK    bool
	col      Collision
	colOK    bool
	midTime  time.Duration
	narrTime time.Duration
}

func (d *CollisionDetection) workers() int {
	if d.cfg.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return d.cfg.Workers
}

// pairPhases runs the mid and narrow phase for every broad pair. Pairs are
// independent, so with more than one worker they fan out over an errgroup.
// Output order follows the broad pairs either way.
func (d *CollisionDetection) pairPhases(pairs []EntryPair) ([]MidPhasePair, []Collision) {
	results := make([]pairResult, len(pairs))
	run := func(i int) {
		r := &results[i]
		start := time.Now()
		r.mid, r.midOK = OBBtreesCollision(pairs[i])
		r.midTime = time.Since(start)
		if !r.midOK {
			return
		}
		start = time.Now()
		r.col, r.colOK = TrianglesVsTriangles(r.mid)
		r.narrTime = time.Since(start)
	}

	if w := d.workers(); w > 1 && len(pairs) > 1 {
		var g errgroup.Group
		g.SetLimit(w)
		for i := range pairs {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range pairs {
			run(i)
		}
	}

	mids := []MidPhasePair{}
	cols := []Collision{}
	var midTime, narrTime time.Duration
	for _, r := range results {
		midTime += r.midTime
		narrTime += r.narrTime
		if r.midOK {
			mids = append(mids, r.mid)
		}
		if r.colOK {
			cols = append(cols, r.col)
		}
	}
	d.profiler.AddScope(scopeMid, midTime)
	d.profiler.AddScope(scopeNarrow, narrTime)
	return mids, cols
}

func (d *CollisionDetection) resolve(col Collision) (Resolution, bool) {
	switch d.cfg.Resolver {
	case ResolverHermann:
		start, finish := d.cfg.forceSmoothing()
		rays := CreateUncollideRays(col)
		disp := ShootUncollideRays(rays, start, finish)
		if disp == (mgl64.Vec3{}) {
			d.logger.Debugf("hermann pass found no push-out for %d/%d (%d+%d rays)",
				col.A.Entity, col.B.Entity, len(rays.A), len(rays.B))
			return Resolution{}, false
		}
		return splitDisplacement(col.EntryPair, col.Point, disp), true
	case ResolverRayDelta:
		r := RayDeltaUncollide(col, d.cfg.BiasMultiplier)
		if r.IsZero() {
			d.logger.Debugf("ray delta found no depth for %d/%d", col.A.Entity, col.B.Entity)
			return Resolution{}, false
		}
		return r, true
	default:
		return Resolution{}, false
	}
}
