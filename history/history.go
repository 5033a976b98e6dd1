// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history provides a bounded undo / redo stack of full scene
// snapshots.  The model is a list of snapshots with an index pointing
// at the current one: committing truncates everything after the index
// and appends, undo and redo just move the index.  Snapshots are deep
// copies, so later edits to the live scene never alter history, and
// restoring hands the caller an owned copy it may mutate freely.
package history

import (
	"sync"

	"github.com/jinzhu/copier"

	"sceneforge/scene"
)

// DefaultDepth is the number of snapshots kept when no depth is given.
const DefaultDepth = 50

// Snapshot is one recorded scene state.  Light handles are not
// captured; they are rebuilt on restore.
type Snapshot struct {
	Objects []*scene.Object
	Groups  []*scene.Group
	Lights  []*scene.Light
}

// History is a bounded undo / redo stack of scene snapshots.  All
// methods are safe for concurrent use.
type History struct {
	mu sync.Mutex

	// snaps[idx] is the snapshot of the current state.
	snaps []*Snapshot
	idx   int

	depth int
}

// New returns an empty history keeping at most depth snapshots.
// Depth values below 1 fall back to [DefaultDepth].
func New(depth int) *History {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &History{depth: depth, idx: -1}
}

// Commit records the given scene state as the new current snapshot.
// Any snapshots ahead of the current index (the redo range) are
// discarded, and the oldest snapshot is evicted once the stack is
// full.
func (hs *History) Commit(objs []*scene.Object, gps []*scene.Group, lts []*scene.Light) {
	sn := capture(objs, gps, lts)
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.snaps = append(hs.snaps[:hs.idx+1], sn)
	hs.idx++
	if len(hs.snaps) > hs.depth {
		over := len(hs.snaps) - hs.depth
		hs.snaps = append(hs.snaps[:0], hs.snaps[over:]...)
		hs.idx -= over
	}
}

// CanUndo reports whether a snapshot exists before the current one.
func (hs *History) CanUndo() bool {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.idx > 0
}

// CanRedo reports whether a snapshot exists after the current one.
func (hs *History) CanRedo() bool {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.idx >= 0 && hs.idx < len(hs.snaps)-1
}

// Undo steps back one snapshot and returns an owned deep copy of it,
// or nil if there is nothing to undo.
func (hs *History) Undo() *Snapshot {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.idx <= 0 {
		return nil
	}
	hs.idx--
	return hs.snaps[hs.idx].clone()
}

// Redo steps forward one snapshot and returns an owned deep copy of
// it, or nil if there is nothing to redo.
func (hs *History) Redo() *Snapshot {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.idx < 0 || hs.idx >= len(hs.snaps)-1 {
		return nil
	}
	hs.idx++
	return hs.snaps[hs.idx].clone()
}

// Len returns the number of snapshots currently held.
func (hs *History) Len() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return len(hs.snaps)
}

// Reset drops all snapshots.
func (hs *History) Reset() {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.snaps = nil
	hs.idx = -1
}

// capture deep copies the given scene state into a snapshot.
func capture(objs []*scene.Object, gps []*scene.Group, lts []*scene.Light) *Snapshot {
	sn := &Snapshot{
		Objects: make([]*scene.Object, 0, len(objs)),
		Groups:  make([]*scene.Group, 0, len(gps)),
		Lights:  make([]*scene.Light, 0, len(lts)),
	}
	for _, ob := range objs {
		sn.Objects = append(sn.Objects, cloneObject(ob))
	}
	for _, gp := range gps {
		sn.Groups = append(sn.Groups, cloneGroup(gp))
	}
	for _, lt := range lts {
		sn.Lights = append(sn.Lights, cloneLight(lt))
	}
	return sn
}

func (sn *Snapshot) clone() *Snapshot {
	return capture(sn.Objects, sn.Groups, sn.Lights)
}

func cloneObject(src *scene.Object) *scene.Object {
	dst := &scene.Object{}
	copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
	if src.Mesh != nil {
		dst.Mesh = src.Mesh.Clone()
	}
	return dst
}

func cloneGroup(src *scene.Group) *scene.Group {
	dst := &scene.Group{}
	copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
	return dst
}

// cloneLight copies the light's parameters; the copier tag on Handle
// keeps derived live state out of snapshots.
func cloneLight(src *scene.Light) *scene.Light {
	dst := &scene.Light{}
	copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
	dst.Handle = nil
	return dst
}
