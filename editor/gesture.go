// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"errors"
	"fmt"

	"goki.dev/mat32/v2"

	"sceneforge/mesh"
	"sceneforge/meshedit"
	"sceneforge/scene"
)

var (
	// ErrNoSelection is returned when a gesture needs a selected object.
	ErrNoSelection = errors.New("editor: no object selected")

	// ErrLocked is returned when the selected object is blocked by the
	// lock cascade.
	ErrLocked = errors.New("editor: object is locked")
)

// dragger is the common finishing behavior of both drag kinds.
type dragger interface {
	MoveTo(p mat32.Vec3)
	End()
	Cancel()
}

// Gesture is one in-progress drag on the selected object.  Moves
// mutate geometry directly; only [Gesture.End] commits history and
// triggers the write-back.  An abandoned gesture is cancelled with
// [Gesture.Cancel]: geometry reverts and nothing is committed.
type Gesture struct {
	ed    *Editor
	objID string
	dr    dragger
	done  bool
}

// selectedEditable returns the selected object if a gesture may edit
// it.
func (ed *Editor) selectedEditable() (*scene.Object, error) {
	ob := ed.Store.SelectedObject()
	if ob == nil {
		return nil, ErrNoSelection
	}
	if ed.Store.ObjectLocked(ob.ID) {
		return nil, ErrLocked
	}
	return ob, nil
}

// StartVertexDrag begins dragging vertex vi of the selected object.
func (ed *Editor) StartVertexDrag(vi int) (*Gesture, error) {
	ob, err := ed.selectedEditable()
	if err != nil {
		return nil, err
	}
	ws := meshedit.BuildWelds(ob.Mesh)
	dr, err := meshedit.StartVertexDrag(ob.Mesh, ws, vi)
	if err != nil {
		return nil, err
	}
	return &Gesture{ed: ed, objID: ob.ID, dr: dr}, nil
}

// StartEdgeDrag begins dragging the edge between vertices va and vb
// of the selected object.
func (ed *Editor) StartEdgeDrag(va, vb int) (*Gesture, error) {
	ob, err := ed.selectedEditable()
	if err != nil {
		return nil, err
	}
	ws := meshedit.BuildWelds(ob.Mesh)
	dr, err := meshedit.StartEdgeDrag(ob.Mesh, ws, va, vb)
	if err != nil {
		return nil, err
	}
	return &Gesture{ed: ed, objID: ob.ID, dr: dr}, nil
}

// MoveTo updates the drag target position.
func (gs *Gesture) MoveTo(p mat32.Vec3) {
	if gs.done {
		return
	}
	gs.dr.MoveTo(p)
}

// End completes the gesture: normals recompute, the object change
// event fires (driving the write-back), and a history commit is
// scheduled.
func (gs *Gesture) End() {
	if gs.done {
		return
	}
	gs.done = true
	gs.dr.End()
	// empty update: geometry was mutated in place, this publishes it
	gs.ed.Store.UpdateObject(gs.objID, func(ob *scene.Object) {})
}

// Cancel abandons the gesture: geometry reverts and no commit or
// write-back happens.
func (gs *Gesture) Cancel() {
	if gs.done {
		return
	}
	gs.done = true
	gs.dr.Cancel()
}

// Reparameterize regenerates the selected object's parametric
// geometry at a new parameter set, discarding any freeform edits, and
// commits.  Custom geometry cannot be regenerated.
func (ed *Editor) Reparameterize(p mesh.Param) error {
	ob, err := ed.selectedEditable()
	if err != nil {
		return err
	}
	if ob.Mesh.Kind == mesh.Custom {
		return fmt.Errorf("editor: %s geometry has no parameters", ob.Mesh.Kind)
	}
	ed.Store.UpdateObject(ob.ID, func(ob *scene.Object) {
		meshedit.Reparameterize(ob.Mesh, p)
	})
	return nil
}
