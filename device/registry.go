// Package device tracks the lifecycle of the active compute context.
//
// Anything that holds context-bound resources (plan caches, device buffers)
// registers a teardown callback. The host environment calls Teardown right
// before it destroys the context; after that, every callback has released
// its context-bound state.
package device

import (
	"io"
	"log/slog"
	"sync"
)

type hook struct {
	id   uint64
	name string
	fn   func()
}

// Registry holds teardown callbacks. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	hooks  []hook // registration order

	log *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{log: logger}
}

// OnTeardown registers fn to run on every Teardown until deregistered.
// The returned function removes the callback; calling it more than once is a no-op.
func (r *Registry) OnTeardown(name string, fn func()) (deregister func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.hooks = append(r.hooks, hook{id: id, name: name, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

// Teardown runs every registered callback in registration order.
// Callbacks run outside the registry lock, so they may register or
// deregister. A panicking callback is logged and does not stop the others.
func (r *Registry) Teardown() {
	r.mu.Lock()
	hooks := append([]hook(nil), r.hooks...)
	r.mu.Unlock()

	r.log.Debug("device teardown", "callbacks", len(hooks))
	for _, h := range hooks {
		r.run(h)
	}
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hooks)
}

func (r *Registry) run(h hook) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Warn("teardown callback panicked", "name", h.name, "panic", v)
		}
	}()
	h.fn()
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, h := range r.hooks {
		if h.id == id {
			r.hooks = append(r.hooks[:i], r.hooks[i+1:]...)
			return
		}
	}
}

var defaultRegistry = NewRegistry(slog.Default())

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// OnTeardown registers fn on the process-wide registry.
func OnTeardown(name string, fn func()) (deregister func()) {
	return defaultRegistry.OnTeardown(name, fn)
}

// Teardown notifies every callback on the process-wide registry.
func Teardown() { defaultRegistry.Teardown() }
