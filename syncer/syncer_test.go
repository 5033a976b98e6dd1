// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goki.dev/mat32/v2"

	"sceneforge/gateway"
	"sceneforge/mesh"
	"sceneforge/scene"
)

var testScope = gateway.Scope{OwnerID: "alice", ProjectID: "proj"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startController wires a fresh store and controller over the given
// gateway.
func startController(t *testing.T, gw gateway.Gateway) (*scene.Store, *Controller) {
	t.Helper()
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("local-%d", n)
	}
	st := scene.NewStore(scene.WithIDSource(ids))
	co := New(st, gw, testScope, WithLogger(quietLogger()), WithIDSource(ids))
	require.NoError(t, co.Start(context.Background()))
	t.Cleanup(co.Close)
	return st, co
}

func TestCreateWriteBack(t *testing.T) {
	gw := gateway.NewMemory()
	st, co := startController(t, gw)

	id := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.V3(1, 2, 3))
	co.Wait()

	recs, err := gw.List(context.Background(), testScope, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "box", recs[0].Doc["name"])
	geom, ok := recs[0].Doc["geometry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "box", geom["kind"])

	ob := st.ObjectByID(id)
	require.NotNil(t, ob)
	assert.Equal(t, recs[0].ID, ob.RemoteID)
	assert.Equal(t, mat32.V3(1, 2, 3), ob.Pos)
}

func TestUpdateAndDeleteWriteBack(t *testing.T) {
	gw := gateway.NewMemory()
	st, co := startController(t, gw)
	ctx := context.Background()

	id := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.Vec3{})
	co.Wait()
	require.True(t, st.RenameObject(id, "crate"))
	co.Wait()

	recs, err := gw.List(ctx, testScope, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "crate", recs[0].Doc["name"])

	require.True(t, st.RemoveObject(id))
	co.Wait()
	recs, err = gw.List(ctx, testScope, gateway.Objects)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGroupAndLightWriteBack(t *testing.T) {
	gw := gateway.NewMemory()
	st, co := startController(t, gw)
	ctx := context.Background()

	oid := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.Vec3{})
	gid := st.AddGroup("grp")
	co.Wait()
	require.True(t, st.AddObjectToGroup(oid, gid))
	co.Wait()

	grecs, err := gw.List(ctx, testScope, gateway.Groups)
	require.NoError(t, err)
	require.Len(t, grecs, 1)
	members, ok := grecs[0].Doc["objectIds"].([]any)
	require.True(t, ok)
	require.Len(t, members, 1)
	// membership persists by remote id, not local id
	assert.Equal(t, st.ObjectByID(oid).RemoteID, members[0])

	st.AddLight(&scene.Light{Kind: scene.Point, Pos: mat32.V3(0, 3, 0), Intensity: 1})
	co.Wait()
	lrecs, err := gw.List(ctx, testScope, gateway.Lights)
	require.NoError(t, err)
	require.Len(t, lrecs, 1)
	assert.Equal(t, "point", lrecs[0].Doc["kind"])
}

// failGateway wraps a gateway and fails all writes.
type failGateway struct {
	gateway.Gateway
}

var errDown = errors.New("backend down")

func (fg *failGateway) Create(ctx context.Context, sc gateway.Scope, coll gateway.Collection, doc gateway.Doc) (string, error) {
	return "", errDown
}

func (fg *failGateway) Update(ctx context.Context, sc gateway.Scope, coll gateway.Collection, id string, fields gateway.Doc) error {
	return errDown
}

func (fg *failGateway) Delete(ctx context.Context, sc gateway.Scope, coll gateway.Collection, id string) error {
	return errDown
}

func TestWriteBackFailureKeepsLocalState(t *testing.T) {
	gw := &failGateway{Gateway: gateway.NewMemory()}
	st, co := startController(t, gw)

	id := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.Vec3{})
	require.True(t, st.RenameObject(id, "crate"))
	co.Wait()

	// local state stands, unrolled-back, just unsynchronized
	ob := st.ObjectByID(id)
	require.NotNil(t, ob)
	assert.Equal(t, "crate", ob.Name)
	assert.Equal(t, "", ob.RemoteID)

	recs, err := gw.List(context.Background(), testScope, gateway.Objects)
	require.NoError(t, err)
	assert.Empty(t, recs)

	stat := co.Status()
	assert.Equal(t, 0, stat.Pending)
	assert.Equal(t, 1, stat.Failures) // rename never reached the gateway: create failed
	assert.ErrorIs(t, stat.LastErr, errDown)
}

// gatedGateway blocks every write until a token arrives, so the
// write-back queue can be filled deterministically.
type gatedGateway struct {
	gateway.Gateway
	gate chan struct{}
}

func (g *gatedGateway) Create(ctx context.Context, sc gateway.Scope, coll gateway.Collection, doc gateway.Doc) (string, error) {
	<-g.gate
	return g.Gateway.Create(ctx, sc, coll, doc)
}

func (g *gatedGateway) Update(ctx context.Context, sc gateway.Scope, coll gateway.Collection, id string, fields gateway.Doc) error {
	<-g.gate
	return g.Gateway.Update(ctx, sc, coll, id, fields)
}

func TestFullQueuePreservesEditOrder(t *testing.T) {
	gw := &gatedGateway{Gateway: gateway.NewMemory(), gate: make(chan struct{})}
	st := scene.NewStore()
	co := New(st, gw, testScope, WithLogger(quietLogger()))
	co.work = make(chan func(ctx context.Context), 1)
	require.NoError(t, co.Start(context.Background()))
	t.Cleanup(co.Close)

	const renames = 8
	edited := make(chan string)
	go func() {
		// with the worker gated and a one-slot queue these sends have
		// to block rather than bypass the serial worker
		id := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.Vec3{})
		for i := 0; i < renames; i++ {
			st.RenameObject(id, fmt.Sprintf("crate %d", i))
		}
		edited <- id
	}()
	for i := 0; i < renames+1; i++ {
		gw.gate <- struct{}{}
	}
	id := <-edited
	co.Wait()

	recs, err := gw.List(context.Background(), testScope, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// the last rename is the last write to land
	assert.Equal(t, fmt.Sprintf("crate %d", renames-1), recs[0].Doc["name"])
	assert.Equal(t, recs[0].ID, st.ObjectByID(id).RemoteID)
	assert.Equal(t, 0, co.Status().Pending)
}

func TestInboundSnapshotReplacesSlice(t *testing.T) {
	gw := gateway.NewMemory()
	st, _ := startController(t, gw)
	ctx := context.Background()

	rid, err := gw.Create(ctx, testScope, gateway.Objects, gateway.Doc{
		"ownerId":   testScope.OwnerID,
		"projectId": testScope.ProjectID,
		"name":      "remote box",
		"visible":   true,
		"position":  []any{1.0, 2.0, 3.0},
		"scale":     []any{1.0, 1.0, 1.0},
		"geometry":  map[string]any{"kind": "box"},
	})
	require.NoError(t, err)

	objs := st.Objects()
	require.Len(t, objs, 1)
	assert.Equal(t, "remote box", objs[0].Name)
	assert.Equal(t, rid, objs[0].RemoteID)
	assert.Equal(t, mesh.Box, objs[0].Mesh.Kind)
	localID := objs[0].ID

	// a later inbound update keeps the same local id
	require.NoError(t, gw.Update(ctx, testScope, gateway.Objects, rid, gateway.Doc{"name": "renamed"}))
	objs = st.Objects()
	require.Len(t, objs, 1)
	assert.Equal(t, "renamed", objs[0].Name)
	assert.Equal(t, localID, objs[0].ID)
}

func TestInboundScopeIsolation(t *testing.T) {
	gw := gateway.NewMemory()
	st, _ := startController(t, gw)

	other := gateway.Scope{OwnerID: "bob", ProjectID: "proj"}
	_, err := gw.Create(context.Background(), other, gateway.Objects, gateway.Doc{
		"name": "not ours", "geometry": map[string]any{"kind": "box"},
	})
	require.NoError(t, err)
	assert.Empty(t, st.Objects())
}

func TestRestoreReattachesRemoteID(t *testing.T) {
	gw := gateway.NewMemory()
	st, co := startController(t, gw)
	ctx := context.Background()

	id := st.AddObject("box", mesh.NewBox(1, 1, 1), mat32.Vec3{})
	co.Wait()
	rid := st.ObjectByID(id).RemoteID
	require.NotEqual(t, "", rid)

	// a restored snapshot predates id resolution: no remote id on it
	st.Restore([]*scene.Object{{
		ID:      id,
		Name:    "box",
		Mesh:    mesh.NewBox(1, 1, 1),
		Scale:   mat32.V3(1, 1, 1),
		Visible: true,
	}}, nil, nil)
	co.Wait()

	// the binding map re-attached the persisted id: same record,
	// updated in place, no second create
	ob := st.ObjectByID(id)
	require.NotNil(t, ob)
	assert.Equal(t, rid, ob.RemoteID)
	recs, err := gw.List(ctx, testScope, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rid, recs[0].ID)
}

func TestClearProject(t *testing.T) {
	gw := gateway.NewMemory()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := gw.Create(ctx, testScope, gateway.Objects, gateway.Doc{"name": fmt.Sprintf("o%d", i)})
		require.NoError(t, err)
	}
	_, err := gw.Create(ctx, testScope, gateway.Lights, gateway.Doc{"name": "sun"})
	require.NoError(t, err)

	require.NoError(t, ClearProject(ctx, gw, testScope))
	for _, coll := range gateway.Collections {
		recs, err := gw.List(ctx, testScope, coll)
		require.NoError(t, err)
		assert.Empty(t, recs)
	}
}

func TestCopyProject(t *testing.T) {
	gw := gateway.NewMemory()
	ctx := context.Background()
	src := testScope
	dst := gateway.Scope{OwnerID: "alice", ProjectID: "proj-copy"}

	srcID, err := gw.Create(ctx, src, gateway.Objects, gateway.Doc{
		"ownerId": src.OwnerID, "projectId": src.ProjectID, "name": "box",
	})
	require.NoError(t, err)

	require.NoError(t, CopyProject(ctx, gw, src, dst))

	recs, err := gw.List(ctx, dst, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// fresh record in the destination scope, rewritten scoping fields
	assert.NotEqual(t, srcID, recs[0].ID)
	assert.Equal(t, "box", recs[0].Doc["name"])
	assert.Equal(t, dst.ProjectID, recs[0].Doc["projectId"])

	// source untouched
	srcRecs, err := gw.List(ctx, src, gateway.Objects)
	require.NoError(t, err)
	require.Len(t, srcRecs, 1)
	assert.Equal(t, srcID, srcRecs[0].ID)
}
