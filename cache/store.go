package cache

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/internal/singleflight"
)

// store is one direction's mapping: Key -> Plan, unbounded, guarded by mu.
// Misses for the same key are coalesced through sf so at most one engine
// build per key is in flight.
type store struct {
	dir engine.Direction

	// ---- guarded by mu ----
	mu  sync.RWMutex
	m   map[Key]engine.Plan
	gen uint64 // bumped by clear; builds started in an older gen are not inserted

	sf singleflight.Group[Key, engine.Plan]

	hits     atomic.Int64
	misses   atomic.Int64
	builds   atomic.Int64
	failures atomic.Int64

	opt *Options
}

func newStore(dir engine.Direction, opt *Options) *store {
	return &store{
		dir: dir,
		m:   make(map[Key]engine.Plan),
		opt: opt,
	}
}

// get returns the plan for k and counts a hit or a miss.
func (s *store) get(k Key) (engine.Plan, bool) {
	s.mu.RLock()
	p, ok := s.m[k]
	s.mu.RUnlock()

	if ok {
		s.hits.Add(1)
		s.opt.Metrics.Hit(s.dir)
	} else {
		s.misses.Add(1)
		s.opt.Metrics.Miss(s.dir)
	}
	return p, ok
}

// getOrBuild returns the cached plan for k, building it with the engine on
// a miss. Build errors are returned as *BuildError and never cached.
func (s *store) getOrBuild(ctx context.Context, k Key) (engine.Plan, error) {
	if p, ok := s.get(k); ok {
		return p, nil
	}

	p, _, err := s.sf.Do(ctx, k, func() (engine.Plan, error) {
		// Double-check after joining: a previous flight may have just inserted.
		s.mu.RLock()
		p, ok := s.m[k]
		gen := s.gen
		s.mu.RUnlock()
		if ok {
			return p, nil
		}
		return s.build(k, gen)
	})
	return p, err
}

func (s *store) build(k Key, gen uint64) (engine.Plan, error) {
	start := time.Now()
	p, err := s.opt.Engine.NewPlan(k.N, k.In, k.Out)
	took := time.Since(start)
	s.opt.Metrics.Build(s.dir, took, err)

	if err != nil {
		s.failures.Add(1)
		s.opt.Logger.Debug("plan build failed", "cache", s.opt.Name, "direction", s.dir.String(), "key", k.String(), "err", err)
		return nil, &BuildError{Direction: s.dir, Key: k, Err: err}
	}
	s.builds.Add(1)

	s.mu.Lock()
	if s.gen != gen {
		// Cleared while building: the plan belongs to a context that is gone.
		s.mu.Unlock()
		closePlan(p)
		s.opt.Logger.Debug("plan build invalidated by clear", "cache", s.opt.Name, "direction", s.dir.String(), "key", k.String())
		return nil, fmt.Errorf("cache: %s plan %s invalidated by clear: %w", s.dir, k, engine.ErrPlanClosed)
	}
	s.m[k] = p
	s.opt.Metrics.Size(s.dir, len(s.m))
	s.mu.Unlock()

	s.opt.Logger.Debug("plan built", "cache", s.opt.Name, "direction", s.dir.String(), "key", k.String(), "took", took)
	return p, nil
}

// clear drops every plan, closes the ones that are io.Closers and returns
// how many were dropped. In-flight builds are detached: their plans are
// closed on arrival and their callers get engine.ErrPlanClosed.
func (s *store) clear() int {
	s.mu.Lock()
	old := s.m
	s.m = make(map[Key]engine.Plan)
	s.gen++
	s.sf.ForgetAll()
	s.opt.Metrics.Size(s.dir, 0)
	s.mu.Unlock()

	for k, p := range old {
		if err := closePlan(p); err != nil {
			s.opt.Logger.Warn("plan close failed", "cache", s.opt.Name, "direction", s.dir.String(), "key", k.String(), "err", err)
		}
	}
	return len(old)
}

// closePlan releases p if it holds resources.
func closePlan(p engine.Plan) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// keys returns the resident keys ordered by (In, Out, N).
func (s *store) keys() []Key {
	s.mu.RLock()
	out := make([]Key, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.In != b.In {
			return a.In < b.In
		}
		if a.Out != b.Out {
			return a.Out < b.Out
		}
		return a.N < b.N
	})
	return out
}

func (s *store) stats() DirStats {
	return DirStats{
		Entries:  s.len(),
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Builds:   s.builds.Load(),
		Failures: s.failures.Load(),
		Inflight: s.sf.Inflight(),
	}
}
