package store

import (
	"context"
	"sync"
)

// MemoryEngine is a map-backed Engine for local development and tests. It
// honors the same contract as the Redis engine.
type MemoryEngine struct {
	mu       sync.Mutex
	entities map[string]Entity
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{entities: make(map[string]Entity)}
}

func (e *MemoryEngine) Get(_ context.Context, id string) (*Entity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entity, ok := e.entities[id]
	if !ok {
		return nil, nil
	}
	return &entity, nil
}

func (e *MemoryEngine) Put(_ context.Context, id string, entity *Entity) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entities[id] = *entity
	return nil
}

func (e *MemoryEngine) Values(_ context.Context) ([]Entity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	values := make([]Entity, 0, len(e.entities))
	for _, entity := range e.entities {
		values = append(values, entity)
	}
	return values, nil
}

func (e *MemoryEngine) Remove(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.entities, id)
	return nil
}

func (e *MemoryEngine) Len(_ context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int64(len(e.entities)), nil
}

func (e *MemoryEngine) Has(_ context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.entities[id]
	return ok, nil
}
