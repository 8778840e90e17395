// Package enginetest provides a recording engine.Engine for tests.
package enginetest

import (
	"sync"

	"github.com/IvanBrykalov/fftplan/engine"
)

// Build records one NewPlan call.
type Build struct {
	N       int
	In, Out engine.DType
}

// Exec records one Plan.Execute call.
type Exec struct {
	PlanID  int
	Dir     engine.Direction
	In, Out any
}

// Engine records builds and executions. Its plans do not compute anything.
// Safe for concurrent use.
type Engine struct {
	// Err, if set, is returned by every NewPlan call (and recorded).
	Err error
	// Gate, if set, blocks NewPlan until it is closed or receives a value.
	Gate chan struct{}
	// Started, if set, receives one value when a NewPlan call begins.
	Started chan struct{}

	mu     sync.Mutex
	builds []Build
	execs  []Exec
	closed int
}

// New returns an empty recording engine.
func New() *Engine { return &Engine{} }

// NewPlan implements engine.Engine.
func (e *Engine) NewPlan(n int, in, out engine.DType) (engine.Plan, error) {
	if e.Started != nil {
		e.Started <- struct{}{}
	}
	if e.Gate != nil {
		<-e.Gate
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.builds = append(e.builds, Build{N: n, In: in, Out: out})
	if e.Err != nil {
		return nil, e.Err
	}
	return &Plan{ID: len(e.builds), N: n, In: in, Out: out, eng: e}, nil
}

// Builds returns a copy of the recorded NewPlan calls.
func (e *Engine) Builds() []Build {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Build(nil), e.builds...)
}

// BuildCount returns the number of NewPlan calls.
func (e *Engine) BuildCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.builds)
}

// Execs returns a copy of the recorded Execute calls.
func (e *Engine) Execs() []Exec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Exec(nil), e.execs...)
}

// Closed returns how many plans were closed.
func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Plan is a recording plan.
type Plan struct {
	ID      int
	N       int
	In, Out engine.DType

	eng *Engine
}

// Execute records the call and returns nil.
func (p *Plan) Execute(dir engine.Direction, in, out any) error {
	p.eng.mu.Lock()
	p.eng.execs = append(p.eng.execs, Exec{PlanID: p.ID, Dir: dir, In: in, Out: out})
	p.eng.mu.Unlock()
	return nil
}

// Close counts the release.
func (p *Plan) Close() error {
	p.eng.mu.Lock()
	p.eng.closed++
	p.eng.mu.Unlock()
	return nil
}

var _ engine.Engine = (*Engine)(nil)
