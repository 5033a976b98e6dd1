// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene holds the canonical in-memory scene state: objects,
// groups and lights, current selection and edit mode.  All mutation goes
// through the [Store] API, which enforces the lock cascade and notifies
// registered listeners of every change.
package scene

import (
	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// Object is one mesh solid in the scene.  ID is the ephemeral local
// identifier, assigned at creation and never persisted; RemoteID is the
// gateway-assigned persisted id, empty until the first successful create
// write-back resolves.
type Object struct {

	// ID is the process-lifetime local identifier.
	ID string

	// RemoteID is the persisted id; empty while unsynchronized.
	RemoteID string

	// Name is the display name.
	Name string

	// Mesh is the live geometry, owned exclusively by this object.
	Mesh *mesh.Mesh

	// Pos, Rot, Scale are the object transform.  Rot is Euler angles in
	// degrees.
	Pos, Rot, Scale mat32.Vec3

	Visible bool
	Locked  bool

	// GroupID is the local id of the containing group, empty if ungrouped.
	// It is kept bidirectionally consistent with [Group.ObjectIDs].
	GroupID string
}

// Group is a named collection of objects with shared visibility and lock
// toggles.  ObjectIDs holds member local ids in insertion order and is
// kept bidirectionally consistent with each member's GroupID.
type Group struct {
	ID       string
	RemoteID string
	Name     string

	Expanded bool
	Visible  bool
	Locked   bool

	ObjectIDs []string
}

// HasObject reports whether the group contains the given object id.
func (gp *Group) HasObject(id string) bool {
	for _, oid := range gp.ObjectIDs {
		if oid == id {
			return true
		}
	}
	return false
}
