package services

import (
	"context"
	"sync"

	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
)

// EngineFactory builds a fully wired Engine for a connection string.
type EngineFactory func(ctx context.Context, connString string) (*Engine, error)

// Registry holds one Engine per normalized connection identity.
// Concurrent requests for the same connection share an engine; the
// double-checked create keeps slow discovery out of the registry lock's
// critical path for other connections.
type Registry struct {
	factory EngineFactory

	mu      sync.Mutex
	engines map[datasource.Identity]*engineSlot
}

type engineSlot struct {
	once   sync.Once
	engine *Engine
	err    error
}

// NewRegistry creates a registry using the given factory.
func NewRegistry(factory EngineFactory) *Registry {
	return &Registry{
		factory: factory,
		engines: make(map[datasource.Identity]*engineSlot),
	}
}

// GetOrCreate returns the engine for connString, creating it on first
// use. Concurrent callers with equivalent connection strings get the same
// engine; only one runs discovery. A failed create is not cached.
func (r *Registry) GetOrCreate(ctx context.Context, connString string) (*Engine, error) {
	identity, err := datasource.NormalizeIdentity(connString)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	slot, ok := r.engines[identity]
	if !ok {
		slot = &engineSlot{}
		r.engines[identity] = slot
	}
	r.mu.Unlock()

	slot.once.Do(func() {
		slot.engine, slot.err = r.factory(ctx, connString)
	})

	if slot.err != nil {
		r.mu.Lock()
		if r.engines[identity] == slot {
			delete(r.engines, identity)
		}
		r.mu.Unlock()
		return nil, slot.err
	}

	return slot.engine, nil
}

// Get returns the engine for connString if it exists.
func (r *Registry) Get(connString string) (*Engine, bool) {
	identity, err := datasource.NormalizeIdentity(connString)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.engines[identity]
	if !ok || slot.engine == nil {
		return nil, false
	}
	return slot.engine, true
}

// Drop removes and closes the engine for connString, if any.
func (r *Registry) Drop(connString string) {
	identity, err := datasource.NormalizeIdentity(connString)
	if err != nil {
		return
	}

	r.mu.Lock()
	slot, ok := r.engines[identity]
	delete(r.engines, identity)
	r.mu.Unlock()

	if ok && slot.engine != nil {
		_ = slot.engine.Close()
	}
}

// Close releases every engine.
func (r *Registry) Close() {
	r.mu.Lock()
	slots := make([]*engineSlot, 0, len(r.engines))
	for _, slot := range r.engines {
		slots = append(slots, slot)
	}
	r.engines = make(map[datasource.Identity]*engineSlot)
	r.mu.Unlock()

	for _, slot := range slots {
		if slot.engine != nil {
			_ = slot.engine.Close()
		}
	}
}
