// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// PlaceStates are the object placement interaction states.
type PlaceStates int32

const (
	// PlaceIdle means no placement is in progress.
	PlaceIdle PlaceStates = iota

	// Placing means a shape is armed and waiting for a target position.
	Placing

	// Placed is the transient state right after a completed placement,
	// cleared when the next placement starts.
	Placed

	PlaceStatesN
)

var placeStateNames = [PlaceStatesN]string{"idle", "placing", "placed"}

func (ps PlaceStates) String() string {
	if ps < 0 || ps >= PlaceStatesN {
		return "idle"
	}
	return placeStateNames[ps]
}

// placement holds the pending placement, if any.  Guarded by the store
// lock.
type placement struct {
	state   PlaceStates
	baseNm  string
	factory func() *mesh.Mesh
}

// PlaceState returns the current placement interaction state.
func (st *Store) PlaceState() PlaceStates {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.place.state
}

// StartPlacement arms placement of a parametric shape with default
// parameters.  A placement already in progress is replaced.
func (st *Store) StartPlacement(k mesh.Kind) {
	st.StartPlacementOf(k.String(), func() *mesh.Mesh {
		return mesh.New(k, mesh.DefaultParam(k))
	})
}

// StartPlacementOf arms placement of an arbitrary mesh.  The factory is
// called once, on completion, so canceling never builds geometry.
// baseName seeds the new object's name, uniquified against the scene.
func (st *Store) StartPlacementOf(baseName string, factory func() *mesh.Mesh) {
	st.mu.Lock()
	st.place = placement{state: Placing, baseNm: baseName, factory: factory}
	st.mu.Unlock()
}

// CompletePlacement creates the armed object at the given position,
// selects it, and returns its local id.  It returns "" if no placement
// is in progress.
func (st *Store) CompletePlacement(pos mat32.Vec3) string {
	st.mu.Lock()
	if st.place.state != Placing {
		st.mu.Unlock()
		return ""
	}
	pl := st.place
	st.place = placement{state: Placed}
	st.mu.Unlock()

	id := st.AddObject(st.NextName(pl.baseNm), pl.factory(), pos)
	st.SelectObject(id)
	return id
}

// CancelPlacement abandons a placement in progress.
func (st *Store) CancelPlacement() {
	st.mu.Lock()
	if st.place.state == Placing {
		st.place = placement{}
	}
	st.mu.Unlock()
}
