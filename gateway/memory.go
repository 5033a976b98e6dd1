// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory [Gateway] for tests and ephemeral sessions.
// The id source and clock are injectable for deterministic tests.
type Memory struct {
	mu    sync.Mutex
	data  map[scopeKey]map[string]*Stored
	newID func() string
	nowFn func() time.Time

	notifier
}

// MemoryOption configures a [Memory].
type MemoryOption func(m *Memory)

// WithMemoryIDSource sets the record id generator.
func WithMemoryIDSource(fn func() string) MemoryOption {
	return func(m *Memory) {
		m.newID = fn
	}
}

// WithMemoryClock sets the timestamp source.
func WithMemoryClock(fn func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.nowFn = fn
	}
}

// NewMemory returns an empty in-memory gateway.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		data:  map[scopeKey]map[string]*Stored{},
		newID: uuid.NewString,
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new record and returns its assigned id.
func (m *Memory) Create(ctx context.Context, sc Scope, coll Collection, doc Doc) (string, error) {
	key := scopeKey{sc: sc, coll: coll}
	m.mu.Lock()
	if m.data[key] == nil {
		m.data[key] = map[string]*Stored{}
	}
	now := m.nowFn()
	rec := &Stored{
		ID:        m.newID(),
		Doc:       doc.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.data[key][rec.ID] = rec
	recs := m.list(key)
	m.mu.Unlock()
	m.publish(key, recs)
	return rec.ID, nil
}

// Update merges the given fields into an existing record's doc.
func (m *Memory) Update(ctx context.Context, sc Scope, coll Collection, id string, fields Doc) error {
	key := scopeKey{sc: sc, coll: coll}
	m.mu.Lock()
	rec, ok := m.data[key][id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s/%s: %w", coll, id, ErrNotFound)
	}
	doc := rec.Doc.Clone()
	if doc == nil {
		doc = Doc{}
	}
	for k, v := range fields {
		doc[k] = v
	}
	rec.Doc = doc
	rec.UpdatedAt = m.nowFn()
	recs := m.list(key)
	m.mu.Unlock()
	m.publish(key, recs)
	return nil
}

// Delete removes a record.
func (m *Memory) Delete(ctx context.Context, sc Scope, coll Collection, id string) error {
	key := scopeKey{sc: sc, coll: coll}
	m.mu.Lock()
	if _, ok := m.data[key][id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", coll, id, ErrNotFound)
	}
	delete(m.data[key], id)
	recs := m.list(key)
	m.mu.Unlock()
	m.publish(key, recs)
	return nil
}

// List returns the scoped collection sorted by creation time
// descending.
func (m *Memory) List(ctx context.Context, sc Scope, coll Collection) ([]Stored, error) {
	key := scopeKey{sc: sc, coll: coll}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(key), nil
}

// Subscribe delivers the current snapshot immediately, then after
// every change to the scoped collection.
func (m *Memory) Subscribe(ctx context.Context, sc Scope, coll Collection, fn SnapshotFunc) (func(), error) {
	key := scopeKey{sc: sc, coll: coll}
	off := m.subscribe(key, fn)
	m.mu.Lock()
	recs := m.list(key)
	m.mu.Unlock()
	fn(recs)
	return off, nil
}

// Close releases nothing; it exists to satisfy [Gateway].
func (m *Memory) Close() error {
	return nil
}

// list snapshots the collection under the lock, newest first.
func (m *Memory) list(key scopeKey) []Stored {
	recs := make([]Stored, 0, len(m.data[key]))
	for _, rec := range m.data[key] {
		cp := *rec
		cp.Doc = rec.Doc.Clone()
		recs = append(recs, cp)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
	return recs
}
