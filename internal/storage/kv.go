// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// KV is a durable string-keyed byte store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Apply performs every write in the batch atomically.
	Apply(ctx context.Context, b *Batch) error
	Close() error
}

// =============================================================================
// BATCH
// =============================================================================

type opKind int

const (
	opSet opKind = iota
	opDelete
)

type op struct {
	kind  opKind
	key   string
	value []byte
}

// Batch collects writes to be applied together. The zero value is ready
// to use.
type Batch struct {
	ops []op
}

// Set queues a write of value under key.
func (b *Batch) Set(key string, value []byte) {
	b.ops = append(b.ops, op{kind: opSet, key: key, value: cloneBytes(value)})
}

// Delete queues removal of key.
func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, op{kind: opDelete, key: key})
}

// Len returns the number of queued writes.
func (b *Batch) Len() int {
	return len(b.ops)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps values in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	return cloneBytes(v), ok, nil
}

// Set implements KV.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	var b Batch
	b.Set(key, value)
	return m.Apply(ctx, &b)
}

// Delete implements KV.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	var b Batch
	b.Delete(key)
	return m.Apply(ctx, &b)
}

// Apply implements KV.
func (m *MemoryStore) Apply(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, o := range b.ops {
		switch o.kind {
		case opSet:
			m.data[o.key] = cloneBytes(o.value)
		case opDelete:
			delete(m.data, o.key)
		}
	}
	return nil
}

// Close implements KV. Closing twice is a no-op.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
