package collide

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	scopeBroad   = "broad"
	scopeMid     = "mid"
	scopeNarrow  = "narrow"
	scopeResolve = "resolve"

	countEntries     = "entries"
	countBroadPairs  = "broad_pairs"
	countMidPairs    = "mid_pairs"
	countCollisions  = "collisions"
	countResolutions = "resolutions"
	countSkipped     = "skipped"
)

// Profiler keeps the timings and counters of the last frame.
type Profiler struct {
	mu         sync.Mutex
	scopes     map[string]time.Duration
	startTimes map[string]time.Time
	counts     map[string]int
	order      []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes:     make(map[string]time.Duration),
		startTimes: make(map[string]time.Time),
		counts:     make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTimes[name] = time.Now()
	p.track(name)
}

// track keeps insertion order for a stable display.
func (p *Profiler) track(name string) {
	for _, n := range p.order {
		if n == name {
			return
		}
	}
	p.order = append(p.order, name)
}

func (p *Profiler) EndScope(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if start, ok := p.startTimes[name]; ok {
		p.scopes[name] = time.Since(start)
	}
}

// AddScope accumulates d into name, for work timed outside Begin/EndScope.
func (p *Profiler) AddScope(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scopes[name] += d
	p.track(name)
}

func (p *Profiler) SetCount(name string, count int) {
	p.mu.Lock()
	p.counts[name] = count
	p.mu.Unlock()
}

func (p *Profiler) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

func (p *Profiler) Scope(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scopes[name]
}

// Reset zeroes the timings and keeps the display order.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

func (p *Profiler) StatsString() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.counts[k]))
	}
	return sb.String()
}
