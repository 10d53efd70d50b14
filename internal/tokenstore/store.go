// Package tokenstore persists the session token between process runs.
package tokenstore

import (
	"context"
	"sync"
)

// TokenKey is the fixed key under which the session token is kept.
const TokenKey = "token"

// Store is a session-scoped key-value store. A missing key reads as "".
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Token binds a Store to TokenKey.
type Token struct {
	store Store
}

// NewToken wraps store.
func NewToken(store Store) *Token {
	return &Token{store: store}
}

// Load returns the persisted token, or "" when none is set.
func (t *Token) Load(ctx context.Context) (string, error) {
	return t.store.Get(ctx, TokenKey)
}

// Save persists token.
func (t *Token) Save(ctx context.Context, token string) error {
	return t.store.Set(ctx, TokenKey, token)
}

// Clear removes the persisted token.
func (t *Token) Clear(ctx context.Context) error {
	return t.store.Clear(ctx, TokenKey)
}
