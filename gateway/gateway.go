// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gateway defines the persistence boundary: scoped document
// collections with create/update/delete/list plus snapshot
// subscriptions.  Two backends are provided, an in-memory store for
// tests and ephemeral sessions and a SQLite store for durable local
// documents.
package gateway

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Collection names one persisted record set within a scope.
type Collection string

const (
	Objects Collection = "objects"
	Groups  Collection = "groups"
	Lights  Collection = "lights"
	Scenes  Collection = "scenes"
)

// Collections lists every known collection.
var Collections = []Collection{Objects, Groups, Lights, Scenes}

// Scope partitions records by owner and project.  Every call operates
// within exactly one scope.
type Scope struct {
	OwnerID   string
	ProjectID string
}

// Doc is one record's fields.  Values must be JSON-representable.
type Doc map[string]any

// Clone returns a shallow copy of the doc.  Nested buffers are treated
// as immutable by convention: codecs always build fresh slices.
func (d Doc) Clone() Doc {
	if d == nil {
		return nil
	}
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Stored is one persisted record with its gateway-assigned id and
// timestamps.
type Stored struct {
	ID        string
	Doc       Doc
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrNotFound is returned by Update and Delete for unknown record ids.
var ErrNotFound = errors.New("gateway: record not found")

// SnapshotFunc receives the full current record slice of a collection,
// sorted by creation time descending.
type SnapshotFunc func(recs []Stored)

// Gateway is the persistence boundary.  Implementations must be safe
// for concurrent use.  List returns records sorted by creation time
// descending; Subscribe delivers an initial snapshot and then the full
// slice after every change to the scoped collection, until the
// returned unsubscribe func is called.
type Gateway interface {
	Create(ctx context.Context, sc Scope, coll Collection, doc Doc) (string, error)
	Update(ctx context.Context, sc Scope, coll Collection, id string, fields Doc) error
	Delete(ctx context.Context, sc Scope, coll Collection, id string) error
	List(ctx context.Context, sc Scope, coll Collection) ([]Stored, error)
	Subscribe(ctx context.Context, sc Scope, coll Collection, fn SnapshotFunc) (func(), error)
	Close() error
}

// scopeKey keys the per-collection fanout and storage maps.
type scopeKey struct {
	sc   Scope
	coll Collection
}

// notifier fans full-collection snapshots out to subscribers.  Both
// backends run in a single process, so change notification is local.
type notifier struct {
	mu   sync.Mutex
	subs map[scopeKey]map[int]SnapshotFunc
	next int
}

// subscribe registers fn for the given scope and collection and
// returns its remover.
func (nt *notifier) subscribe(key scopeKey, fn SnapshotFunc) func() {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	if nt.subs == nil {
		nt.subs = map[scopeKey]map[int]SnapshotFunc{}
	}
	if nt.subs[key] == nil {
		nt.subs[key] = map[int]SnapshotFunc{}
	}
	id := nt.next
	nt.next++
	nt.subs[key][id] = fn
	return func() {
		nt.mu.Lock()
		defer nt.mu.Unlock()
		delete(nt.subs[key], id)
	}
}

// publish delivers the snapshot to every subscriber of the key.
func (nt *notifier) publish(key scopeKey, recs []Stored) {
	nt.mu.Lock()
	fns := make([]SnapshotFunc, 0, len(nt.subs[key]))
	for _, fn := range nt.subs[key] {
		fns = append(fns, fn)
	}
	nt.mu.Unlock()
	for _, fn := range fns {
		fn(recs)
	}
}
