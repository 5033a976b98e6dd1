// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syncer

import (
	"encoding/json"
	"fmt"
	"image/color"

	"goki.dev/mat32/v2"

	"sceneforge/gateway"
	"sceneforge/geomio"
	"sceneforge/scene"
)

// objectDoc is the persisted object schema.
type objectDoc struct {
	OwnerID   string         `json:"ownerId"`
	ProjectID string         `json:"projectId"`
	Name      string         `json:"name"`
	Visible   bool           `json:"visible"`
	Locked    bool           `json:"locked"`
	GroupID   string         `json:"groupId,omitempty"`
	Position  [3]float32     `json:"position"`
	Rotation  [3]float32     `json:"rotation"`
	Scale     [3]float32     `json:"scale"`
	Geometry  *geomio.Record `json:"geometry"`
}

// groupDoc is the persisted group schema.  ObjectIDs holds member
// persisted ids; members without one yet are simply absent until their
// create write-back resolves.
type groupDoc struct {
	OwnerID   string   `json:"ownerId"`
	ProjectID string   `json:"projectId"`
	Name      string   `json:"name"`
	Visible   bool     `json:"visible"`
	Locked    bool     `json:"locked"`
	Expanded  bool     `json:"expanded"`
	ObjectIDs []string `json:"objectIds"`
}

// lightDoc is the persisted light schema.
type lightDoc struct {
	OwnerID    string      `json:"ownerId"`
	ProjectID  string      `json:"projectId"`
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Position   [3]float32  `json:"position"`
	Target     *[3]float32 `json:"target,omitempty"`
	Intensity  float32     `json:"intensity"`
	Color      [4]uint8    `json:"color"`
	Distance   float32     `json:"distance,omitempty"`
	Decay      float32     `json:"decay,omitempty"`
	Angle      float32     `json:"angle,omitempty"`
	Penumbra   float32     `json:"penumbra,omitempty"`
	Visible    bool        `json:"visible"`
	CastShadow bool        `json:"castShadow"`
}

// toDoc converts a JSON-tagged schema struct into a gateway doc.
func toDoc(v any) (gateway.Doc, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode doc: %w", err)
	}
	doc := gateway.Doc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode doc: %w", err)
	}
	return doc, nil
}

// fromDoc converts a gateway doc back into a schema struct.
func fromDoc(doc gateway.Doc, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode doc: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode doc: %w", err)
	}
	return nil
}

func vecArr(v mat32.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func arrVec(a [3]float32) mat32.Vec3 {
	return mat32.V3(a[0], a[1], a[2])
}

// encodeObject builds the persisted doc for an object.  Member group
// linkage is persisted by remote id, resolved through the binding map.
func (co *Controller) encodeObject(ob *scene.Object) (gateway.Doc, error) {
	rec := geomio.Encode(ob.Mesh, ob.Name)
	return toDoc(objectDoc{
		OwnerID:   co.scope.OwnerID,
		ProjectID: co.scope.ProjectID,
		Name:      ob.Name,
		Visible:   ob.Visible,
		Locked:    ob.Locked,
		GroupID:   co.remoteID(gateway.Groups, ob.GroupID),
		Position:  vecArr(ob.Pos),
		Rotation:  vecArr(ob.Rot),
		Scale:     vecArr(ob.Scale),
		Geometry:  &rec,
	})
}

// decodeObject rebuilds an object from its persisted record.  The
// local id comes from the binding map when the record is already
// known, so selection and history references survive inbound
// snapshots.
func (co *Controller) decodeObject(rec gateway.Stored) (*scene.Object, error) {
	var doc objectDoc
	if err := fromDoc(rec.Doc, &doc); err != nil {
		return nil, err
	}
	ms := geomio.Decode(geomio.Record{})
	if doc.Geometry != nil {
		ms = geomio.Decode(*doc.Geometry)
	}
	ob := &scene.Object{
		ID:       co.bindInbound(gateway.Objects, rec.ID),
		RemoteID: rec.ID,
		Name:     doc.Name,
		Mesh:     ms,
		Pos:      arrVec(doc.Position),
		Rot:      arrVec(doc.Rotation),
		Scale:    arrVec(doc.Scale),
		Visible:  doc.Visible,
		Locked:   doc.Locked,
		GroupID:  co.localID(gateway.Groups, doc.GroupID),
	}
	if ob.Scale == (mat32.Vec3{}) {
		ob.Scale = mat32.V3(1, 1, 1)
	}
	return ob, nil
}

func (co *Controller) encodeGroup(gp *scene.Group) (gateway.Doc, error) {
	var members []string
	for _, oid := range gp.ObjectIDs {
		if rid := co.remoteID(gateway.Objects, oid); rid != "" {
			members = append(members, rid)
		}
	}
	return toDoc(groupDoc{
		OwnerID:   co.scope.OwnerID,
		ProjectID: co.scope.ProjectID,
		Name:      gp.Name,
		Visible:   gp.Visible,
		Locked:    gp.Locked,
		Expanded:  gp.Expanded,
		ObjectIDs: members,
	})
}

func (co *Controller) decodeGroup(rec gateway.Stored) (*scene.Group, error) {
	var doc groupDoc
	if err := fromDoc(rec.Doc, &doc); err != nil {
		return nil, err
	}
	gp := &scene.Group{
		ID:       co.bindInbound(gateway.Groups, rec.ID),
		RemoteID: rec.ID,
		Name:     doc.Name,
		Visible:  doc.Visible,
		Locked:   doc.Locked,
		Expanded: doc.Expanded,
	}
	for _, rid := range doc.ObjectIDs {
		if lid := co.localID(gateway.Objects, rid); lid != "" {
			gp.ObjectIDs = append(gp.ObjectIDs, lid)
		}
	}
	return gp, nil
}

func (co *Controller) encodeLight(lt *scene.Light) (gateway.Doc, error) {
	doc := lightDoc{
		OwnerID:    co.scope.OwnerID,
		ProjectID:  co.scope.ProjectID,
		Name:       lt.Name,
		Kind:       lt.Kind.String(),
		Position:   vecArr(lt.Pos),
		Intensity:  lt.Intensity,
		Color:      [4]uint8{lt.Color.R, lt.Color.G, lt.Color.B, lt.Color.A},
		Distance:   lt.Distance,
		Decay:      lt.Decay,
		Angle:      lt.Angle,
		Penumbra:   lt.Penumbra,
		Visible:    lt.Visible,
		CastShadow: lt.CastShadow,
	}
	if lt.Target != nil {
		arr := vecArr(*lt.Target)
		doc.Target = &arr
	}
	return toDoc(doc)
}

func (co *Controller) decodeLight(rec gateway.Stored) (*scene.Light, error) {
	var doc lightDoc
	if err := fromDoc(rec.Doc, &doc); err != nil {
		return nil, err
	}
	lt := &scene.Light{
		ID:         co.bindInbound(gateway.Lights, rec.ID),
		RemoteID:   rec.ID,
		Name:       doc.Name,
		Kind:       scene.LightKindByName(doc.Kind),
		Pos:        arrVec(doc.Position),
		Intensity:  doc.Intensity,
		Color:      color.RGBA{R: doc.Color[0], G: doc.Color[1], B: doc.Color[2], A: doc.Color[3]},
		Distance:   doc.Distance,
		Decay:      doc.Decay,
		Angle:      doc.Angle,
		Penumbra:   doc.Penumbra,
		Visible:    doc.Visible,
		CastShadow: doc.CastShadow,
	}
	if doc.Target != nil {
		tgt := arrVec(*doc.Target)
		lt.Target = &tgt
	}
	return lt, nil
}
