package session

import (
	"context"
	"time"
)

// Manager opens and commits session Contexts against a Store.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Open loads the session for id. An empty, unknown or expired id yields a
// fresh Context with a new identifier.
func (m *Manager) Open(ctx context.Context, id string) (*Context, error) {
	if id == "" {
		return NewContext(NewID(), nil), nil
	}

	values, found, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewContext(NewID(), nil), nil
	}
	return NewContext(id, values), nil
}

// Commit persists sc, or removes it from the store once destroyed.
// Clean sessions are only refreshed so their TTL slides.
func (m *Manager) Commit(ctx context.Context, sc *Context) error {
	if sc.Destroyed() {
		return m.store.Delete(ctx, sc.ID())
	}
	if len(sc.values) == 0 && !sc.Dirty() {
		return nil
	}
	return m.store.Save(ctx, sc.ID(), sc.values, m.ttl)
}

// Regenerate moves the session to a fresh identifier, dropping the old one.
// Called after login to prevent fixation.
func (m *Manager) Regenerate(ctx context.Context, sc *Context) (*Context, error) {
	if err := m.store.Delete(ctx, sc.ID()); err != nil {
		return nil, err
	}
	next := NewContext(NewID(), sc.values)
	next.dirty = true
	return next, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}
