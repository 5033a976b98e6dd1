// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// EditModes are the sub-object editing modes available while an object
// is selected.
type EditModes int32

const (
	// EditNone is plain object-level selection.
	EditNone EditModes = iota

	// EditVertex exposes individual vertices for dragging.
	EditVertex

	// EditEdge exposes edges for dragging.
	EditEdge

	EditModesN
)

var editModeNames = [EditModesN]string{"none", "vertex", "edge"}

func (em EditModes) String() string {
	if em < 0 || em >= EditModesN {
		return "none"
	}
	return editModeNames[em]
}

// Store is the canonical in-memory scene state.  All reads and mutations
// are safe for concurrent use.  Mutations that are blocked by the lock
// cascade return false and change nothing.
type Store struct {
	mu sync.Mutex

	objects []*Object
	groups  []*Group
	lights  []*Light

	// selected is the local id of the selected object, empty for none.
	selected string

	// editMode is the mode in effect for the current selection.
	editMode EditModes

	// editPref is the sticky mode preference that survives deselection.
	// It only takes effect once set explicitly via [Store.SetEditMode].
	editPref    EditModes
	editPrefSet bool

	place placement

	newID func() string

	listeners    map[int]Listener
	nextListener int
}

// Option configures a [Store].
type Option func(st *Store)

// WithIDSource sets the local id generator, for deterministic tests.
func WithIDSource(fn func() string) Option {
	return func(st *Store) {
		st.newID = fn
	}
}

// NewStore returns an empty scene store.  Local ids come from
// [uuid.NewString] unless overridden with [WithIDSource].
func NewStore(opts ...Option) *Store {
	st := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

//////////////////////////////////////////////////////////////////
//  Lookup

// Objects returns the objects in insertion order.  The slice is a copy;
// the pointers are live.
func (st *Store) Objects() []*Object {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]*Object{}, st.objects...)
}

// Groups returns the groups in insertion order, as a copied slice of
// live pointers.
func (st *Store) Groups() []*Group {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]*Group{}, st.groups...)
}

// Lights returns the lights in insertion order, as a copied slice of
// live pointers.
func (st *Store) Lights() []*Light {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]*Light{}, st.lights...)
}

// ObjectByID returns the object with the given local id, or nil.
func (st *Store) ObjectByID(id string) *Object {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.object(id)
}

// GroupByID returns the group with the given local id, or nil.
func (st *Store) GroupByID(id string) *Group {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.group(id)
}

// LightByID returns the light with the given local id, or nil.
func (st *Store) LightByID(id string) *Light {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.light(id)
}

func (st *Store) object(id string) *Object {
	for _, ob := range st.objects {
		if ob.ID == id {
			return ob
		}
	}
	return nil
}

func (st *Store) group(id string) *Group {
	for _, gp := range st.groups {
		if gp.ID == id {
			return gp
		}
	}
	return nil
}

func (st *Store) light(id string) *Light {
	for _, lt := range st.lights {
		if lt.ID == id {
			return lt
		}
	}
	return nil
}

// locked reports whether the object is blocked by the lock cascade:
// its own lock, or the lock of its containing group.
func (st *Store) locked(ob *Object) bool {
	if ob.Locked {
		return true
	}
	if ob.GroupID == "" {
		return false
	}
	if gp := st.group(ob.GroupID); gp != nil && gp.Locked {
		return true
	}
	return false
}

// ObjectLocked reports whether the object is blocked by the lock
// cascade.  Unknown ids report true.
func (st *Store) ObjectLocked(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	ob := st.object(id)
	if ob == nil {
		return true
	}
	return st.locked(ob)
}

//////////////////////////////////////////////////////////////////
//  Objects

// AddObject adds an object with the given name and mesh at the given
// position, returning its local id.  The object takes ownership of the
// mesh.
func (st *Store) AddObject(name string, ms *mesh.Mesh, pos mat32.Vec3) string {
	st.mu.Lock()
	ob := &Object{
		ID:      st.newID(),
		Name:    name,
		Mesh:    ms,
		Pos:     pos,
		Scale:   mat32.V3(1, 1, 1),
		Visible: true,
	}
	st.objects = append(st.objects, ob)
	st.mu.Unlock()
	st.notify(Event{Kind: ObjectAdded, LocalID: ob.ID})
	return ob.ID
}

// RemoveObject deletes the object, unlinking it from its group and
// clearing the selection if it was selected.  Locked objects are not
// removed and false is returned.
func (st *Store) RemoveObject(id string) bool {
	st.mu.Lock()
	ob := st.object(id)
	if ob == nil || st.locked(ob) {
		st.mu.Unlock()
		return false
	}
	st.unlinkFromGroup(ob)
	st.objects = deleteByID(st.objects, id, func(ob *Object) string { return ob.ID })
	evs := []Event{{Kind: ObjectRemoved, LocalID: id}}
	if st.selected == id {
		st.selected = ""
		st.editMode = EditNone
		evs = append(evs, Event{Kind: SelectionChanged})
	}
	st.mu.Unlock()
	st.notify(evs...)
	return true
}

// RenameObject sets the object's display name.
func (st *Store) RenameObject(id, name string) bool {
	return st.updateObject(id, func(ob *Object) {
		ob.Name = name
	})
}

// ToggleObjectVisible flips the object's visibility.
func (st *Store) ToggleObjectVisible(id string) bool {
	return st.updateObject(id, func(ob *Object) {
		ob.Visible = !ob.Visible
	})
}

// ToggleObjectLock flips the object's own lock.  The object's own lock
// does not block this (a locked object could never be unlocked
// otherwise), but a locked containing group does.
func (st *Store) ToggleObjectLock(id string) bool {
	st.mu.Lock()
	ob := st.object(id)
	if ob == nil {
		st.mu.Unlock()
		return false
	}
	if ob.GroupID != "" {
		if gp := st.group(ob.GroupID); gp != nil && gp.Locked {
			st.mu.Unlock()
			return false
		}
	}
	ob.Locked = !ob.Locked
	st.mu.Unlock()
	st.notify(Event{Kind: ObjectChanged, LocalID: id})
	return true
}

// SetObjectTransform sets the object's position, rotation (Euler
// degrees) and scale.
func (st *Store) SetObjectTransform(id string, pos, rot, scale mat32.Vec3) bool {
	return st.updateObject(id, func(ob *Object) {
		ob.Pos = pos
		ob.Rot = rot
		ob.Scale = scale
	})
}

// UpdateObject applies fn to the object under the store lock, honoring
// the lock cascade, and notifies listeners.  fn must not call back into
// the store.
func (st *Store) UpdateObject(id string, fn func(ob *Object)) bool {
	return st.updateObject(id, fn)
}

func (st *Store) updateObject(id string, fn func(ob *Object)) bool {
	st.mu.Lock()
	ob := st.object(id)
	if ob == nil || st.locked(ob) {
		st.mu.Unlock()
		return false
	}
	fn(ob)
	st.mu.Unlock()
	st.notify(Event{Kind: ObjectChanged, LocalID: id})
	return true
}

// DuplicateObject adds a deep copy of the object alongside the
// original, returning the copy's local id.  The copy gets a fresh local
// id, no remote id, " copy" appended to its name, and joins the same
// group.  Duplicating a locked object is allowed; the copy starts
// unlocked.
func (st *Store) DuplicateObject(id string) string {
	st.mu.Lock()
	src := st.object(id)
	if src == nil {
		st.mu.Unlock()
		return ""
	}
	dup := &Object{
		ID:      st.newID(),
		Name:    src.Name + " copy",
		Mesh:    src.Mesh.Clone(),
		Pos:     src.Pos,
		Rot:     src.Rot,
		Scale:   src.Scale,
		Visible: src.Visible,
	}
	st.objects = append(st.objects, dup)
	evs := []Event{{Kind: ObjectAdded, LocalID: dup.ID}}
	if src.GroupID != "" {
		if gp := st.group(src.GroupID); gp != nil && !gp.Locked {
			dup.GroupID = gp.ID
			gp.ObjectIDs = append(gp.ObjectIDs, dup.ID)
			evs = append(evs, Event{Kind: GroupChanged, LocalID: gp.ID})
		}
	}
	st.mu.Unlock()
	st.notify(evs...)
	return dup.ID
}

// MirrorObject reflects the object's geometry in place across the given
// local axis.  The triangle winding is reversed so faces stay
// outward, normals are recomputed, and the mesh is marked edited.
func (st *Store) MirrorObject(id string, axis mat32.Dims) bool {
	return st.updateObject(id, func(ob *Object) {
		ms := ob.Mesh
		nv := ms.NumVertex()
		for i := 0; i < nv; i++ {
			v := ms.Vertex(i)
			v.SetDim(axis, -v.Dim(axis))
			ms.SetVertex(i, v)
		}
		for i := 0; i+2 < len(ms.Idx); i += 3 {
			ms.Idx[i+1], ms.Idx[i+2] = ms.Idx[i+2], ms.Idx[i+1]
		}
		ms.ComputeNorms()
		ms.Edited = true
	})
}

//////////////////////////////////////////////////////////////////
//  Lights

// AddLight adds a light and returns its local id.  The live handle is
// built immediately.
func (st *Store) AddLight(lt *Light) string {
	st.mu.Lock()
	lt.ID = st.newID()
	if lt.Name == "" {
		lt.Name = lt.Kind.String() + " light"
	}
	lt.Rebuild()
	st.lights = append(st.lights, lt)
	st.mu.Unlock()
	st.notify(Event{Kind: LightAdded, LocalID: lt.ID})
	return lt.ID
}

// RemoveLight deletes the light.
func (st *Store) RemoveLight(id string) bool {
	st.mu.Lock()
	if st.light(id) == nil {
		st.mu.Unlock()
		return false
	}
	st.lights = deleteByID(st.lights, id, func(lt *Light) string { return lt.ID })
	st.mu.Unlock()
	st.notify(Event{Kind: LightRemoved, LocalID: id})
	return true
}

// UpdateLight applies fn to the light's parameters under the store
// lock, then rebuilds its live handle.
func (st *Store) UpdateLight(id string, fn func(lt *Light)) bool {
	st.mu.Lock()
	lt := st.light(id)
	if lt == nil {
		st.mu.Unlock()
		return false
	}
	fn(lt)
	lt.Rebuild()
	st.mu.Unlock()
	st.notify(Event{Kind: LightChanged, LocalID: id})
	return true
}

// ToggleLightVisible flips the light's visibility.
func (st *Store) ToggleLightVisible(id string) bool {
	return st.UpdateLight(id, func(lt *Light) {
		lt.Visible = !lt.Visible
	})
}

//////////////////////////////////////////////////////////////////
//  Selection and edit mode

// Selected returns the local id of the selected object, empty for none.
func (st *Store) Selected() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.selected
}

// SelectedObject returns the selected object, or nil.
func (st *Store) SelectedObject() *Object {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.selected == "" {
		return nil
	}
	return st.object(st.selected)
}

// EditMode returns the edit mode in effect for the current selection.
func (st *Store) EditMode() EditModes {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.editMode
}

// SelectObject makes the object the selection.  The edit mode comes
// from the sticky preference if one was set; otherwise curved solids
// (sphere, cylinder, cone, torus) start in vertex mode and everything
// else in none.  Selecting an unknown id clears the selection.
func (st *Store) SelectObject(id string) {
	st.mu.Lock()
	ob := st.object(id)
	if ob == nil {
		id = ""
	}
	if st.selected == id {
		st.mu.Unlock()
		return
	}
	st.selected = id
	switch {
	case id == "":
		st.editMode = EditNone
	case st.editPrefSet:
		st.editMode = st.editPref
	case curvedKind(ob.Mesh.Kind):
		st.editMode = EditVertex
	default:
		st.editMode = EditNone
	}
	st.mu.Unlock()
	st.notify(Event{Kind: SelectionChanged, LocalID: id})
}

// Deselect clears the selection and the in-effect edit mode.  The
// sticky mode preference is kept.
func (st *Store) Deselect() {
	st.SelectObject("")
}

// SetEditMode sets the edit mode for the current selection and records
// it as the sticky preference applied to future selections.
func (st *Store) SetEditMode(em EditModes) {
	st.mu.Lock()
	st.editPref = em
	st.editPrefSet = true
	changed := false
	if st.selected != "" && st.editMode != em {
		st.editMode = em
		changed = true
	}
	id := st.selected
	st.mu.Unlock()
	if changed {
		st.notify(Event{Kind: SelectionChanged, LocalID: id})
	}
}

func curvedKind(k mesh.Kind) bool {
	switch k {
	case mesh.Sphere, mesh.Cylinder, mesh.Cone, mesh.Torus:
		return true
	}
	return false
}

//////////////////////////////////////////////////////////////////
//  Snapshot replacement

// ReplaceObjects swaps in a new object slice from an inbound remote
// snapshot.  Group membership links are rebuilt against the current
// groups, and the selection is kept if the selected id survives.
func (st *Store) ReplaceObjects(objs []*Object) {
	st.mu.Lock()
	st.objects = objs
	st.relinkGroups()
	evs := []Event{{Kind: ObjectsReplaced, Remote: true}}
	if st.selected != "" && st.object(st.selected) == nil {
		st.selected = ""
		st.editMode = EditNone
		evs = append(evs, Event{Kind: SelectionChanged, Remote: true})
	}
	st.mu.Unlock()
	st.notify(evs...)
}

// ReplaceGroups swaps in a new group slice from an inbound remote
// snapshot and rebuilds membership links.
func (st *Store) ReplaceGroups(gps []*Group) {
	st.mu.Lock()
	st.groups = gps
	st.relinkGroups()
	st.mu.Unlock()
	st.notify(Event{Kind: GroupsReplaced, Remote: true})
}

// ReplaceLights swaps in a new light slice from an inbound remote
// snapshot, rebuilding each light's live handle.
func (st *Store) ReplaceLights(lts []*Light) {
	st.mu.Lock()
	for _, lt := range lts {
		lt.Rebuild()
	}
	st.lights = lts
	st.mu.Unlock()
	st.notify(Event{Kind: LightsReplaced, Remote: true})
}

// Restore replaces the entire scene content from a history snapshot.
// Light handles are rebuilt (snapshots exclude them), membership links
// are rebuilt, and the selection is dropped if its object is gone.
func (st *Store) Restore(objs []*Object, gps []*Group, lts []*Light) {
	st.mu.Lock()
	st.objects = objs
	st.groups = gps
	for _, lt := range lts {
		lt.Rebuild()
	}
	st.lights = lts
	st.relinkGroups()
	evs := []Event{{Kind: Restored}}
	if st.selected != "" && st.object(st.selected) == nil {
		st.selected = ""
		st.editMode = EditNone
		evs = append(evs, Event{Kind: SelectionChanged})
	}
	st.mu.Unlock()
	st.notify(evs...)
}

// relinkGroups rebuilds the bidirectional membership links: member ids
// that no longer resolve are dropped from groups, and each object's
// GroupID is set from the group that lists it.
func (st *Store) relinkGroups() {
	for _, ob := range st.objects {
		ob.GroupID = ""
	}
	for _, gp := range st.groups {
		kept := gp.ObjectIDs[:0]
		for _, oid := range gp.ObjectIDs {
			ob := st.object(oid)
			if ob == nil {
				continue
			}
			ob.GroupID = gp.ID
			kept = append(kept, oid)
		}
		gp.ObjectIDs = kept
	}
}

// SetObjectRemoteID attaches the persisted id to the object.  Remote
// id attachment is bookkeeping, not an edit: no event fires and the
// lock cascade does not apply.
func (st *Store) SetObjectRemoteID(id, remoteID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if ob := st.object(id); ob != nil {
		ob.RemoteID = remoteID
	}
}

// SetGroupRemoteID attaches the persisted id to the group.
func (st *Store) SetGroupRemoteID(id, remoteID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if gp := st.group(id); gp != nil {
		gp.RemoteID = remoteID
	}
}

// SetLightRemoteID attaches the persisted id to the light.
func (st *Store) SetLightRemoteID(id, remoteID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if lt := st.light(id); lt != nil {
		lt.RemoteID = remoteID
	}
}

// NextName returns base if unused, else the first "base N" (N >= 2)
// not taken by an existing object.
func (st *Store) NextName(base string) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	used := map[string]bool{}
	for _, ob := range st.objects {
		used[strings.ToLower(ob.Name)] = true
	}
	if !used[strings.ToLower(base)] {
		return base
	}
	for n := 2; ; n++ {
		nm := fmt.Sprintf("%s %d", base, n)
		if !used[strings.ToLower(nm)] {
			return nm
		}
	}
}

// deleteByID removes the element with the given id, preserving order.
func deleteByID[T any](sl []T, id string, idOf func(T) string) []T {
	for i, el := range sl {
		if idOf(el) == id {
			return append(sl[:i], sl[i+1:]...)
		}
	}
	return sl
}
