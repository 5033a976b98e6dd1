// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// testStore returns a store with a deterministic id sequence.
func testStore() *Store {
	n := 0
	return NewStore(WithIDSource(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
}

func addBox(st *Store, name string) string {
	return st.AddObject(name, mesh.NewBox(1, 1, 1), mat32.V3(0, 0, 0))
}

func TestAddRemoveObject(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	require.Len(t, st.Objects(), 1)
	ob := st.ObjectByID(id)
	require.NotNil(t, ob)
	assert.Equal(t, "box", ob.Name)
	assert.True(t, ob.Visible)
	assert.Equal(t, mat32.V3(1, 1, 1), ob.Scale)

	assert.True(t, st.RemoveObject(id))
	assert.Len(t, st.Objects(), 0)
	assert.False(t, st.RemoveObject(id))
}

func TestLockBlocksMutation(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	require.True(t, st.ToggleObjectLock(id))

	assert.False(t, st.RenameObject(id, "nope"))
	assert.False(t, st.SetObjectTransform(id, mat32.V3(1, 0, 0), mat32.Vec3{}, mat32.V3(1, 1, 1)))
	assert.False(t, st.ToggleObjectVisible(id))
	assert.False(t, st.RemoveObject(id))
	assert.Equal(t, "box", st.ObjectByID(id).Name)

	// the object's own lock never blocks unlocking it
	assert.True(t, st.ToggleObjectLock(id))
	assert.True(t, st.RenameObject(id, "renamed"))
}

func TestGroupLockCascade(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	gid := st.AddGroup("grp")
	require.True(t, st.AddObjectToGroup(id, gid))
	require.True(t, st.ToggleGroupLock(gid))

	assert.True(t, st.ObjectLocked(id))
	assert.False(t, st.RenameObject(id, "nope"))
	// a locked group also blocks toggling a member's own lock
	assert.False(t, st.ToggleObjectLock(id))
	assert.False(t, st.RemoveObjectFromGroup(id))

	require.True(t, st.ToggleGroupLock(gid))
	assert.False(t, st.ObjectLocked(id))
	assert.True(t, st.RenameObject(id, "renamed"))
}

func TestGroupMembershipBidirectional(t *testing.T) {
	st := testStore()
	a := addBox(st, "a")
	b := addBox(st, "b")
	g1 := st.AddGroup("g1")
	g2 := st.AddGroup("g2")

	require.True(t, st.AddObjectToGroup(a, g1))
	require.True(t, st.AddObjectToGroup(b, g1))
	assert.Equal(t, []string{a, b}, st.GroupByID(g1).ObjectIDs)
	assert.Equal(t, g1, st.ObjectByID(a).GroupID)

	// moving to another group unlinks from the first
	require.True(t, st.AddObjectToGroup(a, g2))
	assert.Equal(t, []string{b}, st.GroupByID(g1).ObjectIDs)
	assert.Equal(t, []string{a}, st.GroupByID(g2).ObjectIDs)
	assert.Equal(t, g2, st.ObjectByID(a).GroupID)

	// removing an object unlinks it from its group
	require.True(t, st.RemoveObject(b))
	assert.Empty(t, st.GroupByID(g1).ObjectIDs)

	// removing a group orphans, not deletes, its members
	require.True(t, st.RemoveGroup(g2))
	require.NotNil(t, st.ObjectByID(a))
	assert.Equal(t, "", st.ObjectByID(a).GroupID)
}

func TestMoveObjectsToGroup(t *testing.T) {
	st := testStore()
	a := addBox(st, "a")
	b := addBox(st, "b")
	c := addBox(st, "c")
	gid := st.AddGroup("grp")
	require.True(t, st.ToggleObjectLock(b))

	assert.Equal(t, 2, st.MoveObjectsToGroup([]string{a, b, c}, gid))
	assert.Equal(t, []string{a, c}, st.GroupByID(gid).ObjectIDs)
	assert.Equal(t, "", st.ObjectByID(b).GroupID)

	// empty group id ungroups
	assert.Equal(t, 2, st.MoveObjectsToGroup([]string{a, c}, ""))
	assert.Empty(t, st.GroupByID(gid).ObjectIDs)
}

func TestGroupVisibilityCascade(t *testing.T) {
	st := testStore()
	a := addBox(st, "a")
	b := addBox(st, "b")
	gid := st.AddGroup("grp")
	st.AddObjectToGroup(a, gid)
	st.AddObjectToGroup(b, gid)
	require.True(t, st.ToggleObjectLock(b)) // locked members still follow

	require.True(t, st.ToggleGroupVisible(gid))
	assert.False(t, st.GroupByID(gid).Visible)
	assert.False(t, st.ObjectByID(a).Visible)
	assert.False(t, st.ObjectByID(b).Visible)

	require.True(t, st.ToggleGroupVisible(gid))
	assert.True(t, st.ObjectByID(a).Visible)
	assert.True(t, st.ObjectByID(b).Visible)
}

func TestSelectionEditMode(t *testing.T) {
	st := testStore()
	box := addBox(st, "box")
	sph := st.AddObject("sphere", mesh.NewSphere(0.5, 16, 8), mat32.V3(0, 0, 0))

	st.SelectObject(box)
	assert.Equal(t, EditNone, st.EditMode())

	// curved solids default to vertex mode
	st.SelectObject(sph)
	assert.Equal(t, EditVertex, st.EditMode())

	// explicit choice becomes the sticky preference
	st.SetEditMode(EditEdge)
	assert.Equal(t, EditEdge, st.EditMode())
	st.Deselect()
	assert.Equal(t, "", st.Selected())
	assert.Equal(t, EditNone, st.EditMode())
	st.SelectObject(box)
	assert.Equal(t, EditEdge, st.EditMode())
}

func TestSelectionClearedOnRemove(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	st.SelectObject(id)
	require.Equal(t, id, st.Selected())
	require.True(t, st.RemoveObject(id))
	assert.Equal(t, "", st.Selected())
}

func TestPlacement(t *testing.T) {
	st := testStore()
	assert.Equal(t, PlaceIdle, st.PlaceState())
	assert.Equal(t, "", st.CompletePlacement(mat32.V3(1, 2, 3)))

	st.StartPlacement(mesh.Box)
	assert.Equal(t, Placing, st.PlaceState())
	st.CancelPlacement()
	assert.Equal(t, PlaceIdle, st.PlaceState())
	assert.Empty(t, st.Objects())

	st.StartPlacement(mesh.Box)
	id := st.CompletePlacement(mat32.V3(1, 2, 3))
	require.NotEqual(t, "", id)
	assert.Equal(t, Placed, st.PlaceState())
	ob := st.ObjectByID(id)
	require.NotNil(t, ob)
	assert.Equal(t, mat32.V3(1, 2, 3), ob.Pos)
	assert.Equal(t, mesh.Box, ob.Mesh.Kind)
	assert.Equal(t, id, st.Selected())

	// names uniquify against existing objects
	st.StartPlacement(mesh.Box)
	id2 := st.CompletePlacement(mat32.V3(0, 0, 0))
	assert.Equal(t, "box 2", st.ObjectByID(id2).Name)
}

func TestDuplicateObject(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	gid := st.AddGroup("grp")
	st.AddObjectToGroup(id, gid)
	st.SetObjectTransform(id, mat32.V3(1, 2, 3), mat32.Vec3{}, mat32.V3(2, 2, 2))

	dupID := st.DuplicateObject(id)
	require.NotEqual(t, "", dupID)
	dup := st.ObjectByID(dupID)
	require.NotNil(t, dup)
	assert.Equal(t, "box copy", dup.Name)
	assert.Equal(t, mat32.V3(1, 2, 3), dup.Pos)
	assert.Equal(t, gid, dup.GroupID)
	assert.True(t, st.GroupByID(gid).HasObject(dupID))
	assert.Equal(t, "", dup.RemoteID)

	// deep copy: editing the duplicate leaves the original alone
	orig := st.ObjectByID(id).Mesh.Vertex(0)
	dup.Mesh.SetVertex(0, mat32.V3(9, 9, 9))
	assert.Equal(t, orig, st.ObjectByID(id).Mesh.Vertex(0))
}

func TestMirrorObject(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	before := st.ObjectByID(id).Mesh.Vertex(0)
	require.True(t, st.MirrorObject(id, mat32.X))
	ms := st.ObjectByID(id).Mesh
	assert.InDelta(t, -before.X, ms.Vertex(0).X, 1e-6)
	assert.Equal(t, before.Y, ms.Vertex(0).Y)
	assert.True(t, ms.Edited)
	// winding was flipped, so normals still have unit length
	n := ms.Normal(0)
	assert.InDelta(t, 1, n.Length(), 1e-4)
}

func TestLights(t *testing.T) {
	st := testStore()
	tgt := mat32.V3(0, 0, 0)
	id := st.AddLight(&Light{
		Kind:      Spot,
		Pos:       mat32.V3(0, 4, 0),
		Target:    &tgt,
		Intensity: 1,
		Angle:     45,
	})
	lt := st.LightByID(id)
	require.NotNil(t, lt)
	require.NotNil(t, lt.Handle)
	assert.Equal(t, mat32.V3(0, -1, 0), lt.Handle.Dir)
	assert.InDelta(t, mat32.Cos(mat32.DegToRad(45)), lt.Handle.CosAngle, 1e-6)
	assert.Equal(t, "spot light", lt.Name)

	require.True(t, st.UpdateLight(id, func(lt *Light) {
		lt.Angle = 30
	}))
	assert.InDelta(t, mat32.Cos(mat32.DegToRad(30)), st.LightByID(id).Handle.CosAngle, 1e-6)

	require.True(t, st.ToggleLightVisible(id))
	assert.False(t, st.LightByID(id).Visible)
	require.True(t, st.RemoveLight(id))
	assert.Empty(t, st.Lights())
}

func TestRestoreRelinksAndRebuilds(t *testing.T) {
	st := testStore()
	id := addBox(st, "box")
	st.SelectObject(id)

	objs := []*Object{{ID: "o1", Name: "a", Mesh: mesh.NewBox(1, 1, 1), Visible: true}}
	gps := []*Group{{ID: "g1", Name: "g", Visible: true, ObjectIDs: []string{"o1", "gone"}}}
	lts := []*Light{{ID: "l1", Kind: Point, Pos: mat32.V3(1, 1, 1), Intensity: 1}}
	st.Restore(objs, gps, lts)

	// stale member ids drop, surviving links rebuild both ways
	assert.Equal(t, []string{"o1"}, st.GroupByID("g1").ObjectIDs)
	assert.Equal(t, "g1", st.ObjectByID("o1").GroupID)
	assert.NotNil(t, st.LightByID("l1").Handle)
	// the old selection no longer resolves
	assert.Equal(t, "", st.Selected())
}

func TestChangeEvents(t *testing.T) {
	st := testStore()
	var got []Event
	off := st.OnChange(func(ev Event) {
		got = append(got, ev)
	})

	id := addBox(st, "box")
	require.Len(t, got, 1)
	assert.Equal(t, Event{Kind: ObjectAdded, LocalID: id}, got[0])

	st.ReplaceLights(nil)
	require.Len(t, got, 2)
	assert.True(t, got[1].Remote)
	assert.Equal(t, LightsReplaced, got[1].Kind)

	off()
	st.RenameObject(id, "renamed")
	assert.Len(t, got, 2)
}
