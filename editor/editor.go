// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package editor assembles the scene store, history engine, sync
// controller and persistence gateway into one editing session.  It
// owns the history commit policy: every committed (non-transient)
// store mutation schedules a coalescing commit on the next tick, so a
// burst of field updates from one gesture lands as one snapshot.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sceneforge/config"
	"sceneforge/gateway"
	"sceneforge/history"
	"sceneforge/scene"
	"sceneforge/syncer"
)

// commitDelay coalesces the mutations of one gesture into one
// history snapshot.
const commitDelay = 10 * time.Millisecond

// Editor is one editing session over a scoped project.
type Editor struct {
	Store *scene.Store
	Hist  *history.History
	Sync  *syncer.Controller

	gw      gateway.Gateway
	ownGw   bool
	offSt   func()

	mu      sync.Mutex
	pending *time.Timer
}

// Option configures an [Editor].
type Option func(ed *Editor)

// Open builds a session from configuration: gateway per the store
// backend, scene store, history stack and sync controller, all wired
// and started.  The baseline snapshot is committed so undo always has
// a floor.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var gw gateway.Gateway
	switch cfg.Store {
	case config.BackendSQLite:
		sq, err := gateway.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open gateway: %w", err)
		}
		gw = sq
	default:
		gw = gateway.NewMemory()
	}
	ed, err := New(ctx, gw, gateway.Scope{OwnerID: cfg.Owner, ProjectID: cfg.Project}, cfg.HistoryDepth, opts...)
	if err != nil {
		gw.Close()
		return nil, err
	}
	ed.ownGw = true
	return ed, nil
}

// New builds a session over an existing gateway.  The caller keeps
// ownership of the gateway; [Editor.Close] will not close it.
func New(ctx context.Context, gw gateway.Gateway, scope gateway.Scope, histDepth int, opts ...Option) (*Editor, error) {
	ed := &Editor{
		Store: scene.NewStore(),
		Hist:  history.New(histDepth),
		gw:    gw,
	}
	for _, opt := range opts {
		opt(ed)
	}
	ed.Sync = syncer.New(ed.Store, gw, scope)
	if err := ed.Sync.Start(ctx); err != nil {
		return nil, fmt.Errorf("start sync: %w", err)
	}

	// baseline: the state loaded from the gateway (possibly empty)
	ed.Commit()
	ed.offSt = ed.Store.OnChange(ed.onChange)
	return ed, nil
}

// Close flushes any pending commit and tears the session down.  The
// gateway is closed only if [Open] created it.
func (ed *Editor) Close() {
	if ed.offSt != nil {
		ed.offSt()
		ed.offSt = nil
	}
	ed.Flush()
	ed.Sync.Close()
	if ed.ownGw {
		ed.gw.Close()
	}
}

// onChange schedules a history commit for committed local mutations.
// Remote snapshot application, selection moves, and history restores
// themselves never commit.
func (ed *Editor) onChange(ev scene.Event) {
	if ev.Remote {
		return
	}
	switch ev.Kind {
	case scene.SelectionChanged, scene.Restored:
		return
	}
	ed.CommitSoon()
}

// Commit records the current scene state as a history snapshot, now.
func (ed *Editor) Commit() {
	ed.Hist.Commit(ed.Store.Objects(), ed.Store.Groups(), ed.Store.Lights())
}

// CommitSoon schedules a commit on the next tick, coalescing with any
// other mutations that land before it fires.
func (ed *Editor) CommitSoon() {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.pending != nil {
		return
	}
	ed.pending = time.AfterFunc(commitDelay, func() {
		ed.mu.Lock()
		ed.pending = nil
		ed.mu.Unlock()
		ed.Commit()
	})
}

// Flush commits a scheduled snapshot immediately instead of waiting
// for the tick.  No-op if nothing is pending.
func (ed *Editor) Flush() {
	ed.mu.Lock()
	tm := ed.pending
	ed.pending = nil
	ed.mu.Unlock()
	if tm != nil && tm.Stop() {
		ed.Commit()
	}
}

// Undo restores the previous snapshot, reporting whether there was
// one.  A pending coalesced commit is flushed first so the current
// state is redoable.
func (ed *Editor) Undo() bool {
	ed.Flush()
	sn := ed.Hist.Undo()
	if sn == nil {
		return false
	}
	ed.Store.Restore(sn.Objects, sn.Groups, sn.Lights)
	return true
}

// Redo restores the next snapshot, reporting whether there was one.
func (ed *Editor) Redo() bool {
	ed.Flush()
	sn := ed.Hist.Redo()
	if sn == nil {
		return false
	}
	ed.Store.Restore(sn.Objects, sn.Groups, sn.Lights)
	return true
}
