// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meshedit

import (
	"fmt"

	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// VertexDrag is an in-progress drag of one logical vertex.  All
// vertices welded to the grabbed one move together.  Normals are left
// stale during the drag and recomputed once on [VertexDrag.End].
type VertexDrag struct {
	ms      *mesh.Mesh
	members []int

	// start is the grabbed logical vertex's position at drag start.
	start mat32.Vec3
}

// StartVertexDrag begins dragging vertex vi of the mesh.
func StartVertexDrag(ms *mesh.Mesh, ws *Welds, vi int) (*VertexDrag, error) {
	if vi < 0 || vi >= ms.NumVertex() {
		return nil, fmt.Errorf("meshedit: vertex index %d out of range [0,%d)", vi, ms.NumVertex())
	}
	return &VertexDrag{
		ms:      ms,
		members: ws.Members(ws.GroupOf(vi)),
		start:   ms.Vertex(vi),
	}, nil
}

// MoveTo places the dragged logical vertex at p.  Welded duplicates
// are coincident, so every member lands exactly on p and the weld
// never splits.
func (dr *VertexDrag) MoveTo(p mat32.Vec3) {
	for _, vi := range dr.members {
		dr.ms.SetVertex(vi, p)
	}
}

// End finishes the drag, recomputing normals and marking the mesh
// edited.
func (dr *VertexDrag) End() {
	dr.ms.ComputeNorms()
	dr.ms.Edited = true
}

// Cancel abandons the drag, putting the logical vertex back where it
// started.  Normals were never recomputed, so the mesh is exactly as
// it was.
func (dr *VertexDrag) Cancel() {
	dr.MoveTo(dr.start)
}

// Edge is one logical mesh edge, identified by the weld group ids of
// its two endpoints with A < B.
type Edge struct {
	A, B int
}

// Edges enumerates the unique logical edges of the mesh: every
// triangle side, collapsed across welded duplicates.
func Edges(ms *mesh.Mesh, ws *Welds) []Edge {
	seen := map[Edge]bool{}
	var out []Edge
	add := func(a, b int) {
		ga, gb := ws.GroupOf(a), ws.GroupOf(b)
		if ga == gb {
			return
		}
		if ga > gb {
			ga, gb = gb, ga
		}
		e := Edge{A: ga, B: gb}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for i := 0; i+2 < len(ms.Idx); i += 3 {
		a, b, c := int(ms.Idx[i]), int(ms.Idx[i+1]), int(ms.Idx[i+2])
		add(a, b)
		add(b, c)
		add(c, a)
	}
	return out
}

// EdgeDrag is an in-progress drag of one logical edge.  The union of
// both endpoint weld groups translates rigidly: moving the edge
// midpoint to a target offsets every member by the same delta, so the
// edge keeps its length and direction.
type EdgeDrag struct {
	ms      *mesh.Mesh
	members []int

	// start holds each member's position at drag start, parallel to
	// members.
	start []mat32.Vec3

	// startMid is the edge midpoint at drag start.
	startMid mat32.Vec3
}

// StartEdgeDrag begins dragging the edge between vertices va and vb.
// The two vertices must belong to different weld groups.
func StartEdgeDrag(ms *mesh.Mesh, ws *Welds, va, vb int) (*EdgeDrag, error) {
	nv := ms.NumVertex()
	if va < 0 || va >= nv || vb < 0 || vb >= nv {
		return nil, fmt.Errorf("meshedit: edge vertices %d,%d out of range [0,%d)", va, vb, nv)
	}
	ga, gb := ws.GroupOf(va), ws.GroupOf(vb)
	if ga == gb {
		return nil, fmt.Errorf("meshedit: vertices %d and %d are welded, not an edge", va, vb)
	}
	dr := &EdgeDrag{ms: ms}
	for _, vi := range ws.Members(ga) {
		dr.members = append(dr.members, vi)
	}
	for _, vi := range ws.Members(gb) {
		dr.members = append(dr.members, vi)
	}
	for _, vi := range dr.members {
		dr.start = append(dr.start, ms.Vertex(vi))
	}
	dr.startMid = ms.Vertex(va).Add(ms.Vertex(vb)).MulScalar(0.5)
	return dr, nil
}

// MoveTo places the edge midpoint at p, translating every member
// vertex from its start position by the same delta.
func (dr *EdgeDrag) MoveTo(p mat32.Vec3) {
	delta := p.Sub(dr.startMid)
	for i, vi := range dr.members {
		dr.ms.SetVertex(vi, dr.start[i].Add(delta))
	}
}

// End finishes the drag, recomputing normals and marking the mesh
// edited.
func (dr *EdgeDrag) End() {
	dr.ms.ComputeNorms()
	dr.ms.Edited = true
}

// Cancel abandons the drag, restoring every member vertex to its
// start position.
func (dr *EdgeDrag) Cancel() {
	dr.MoveTo(dr.startMid)
}

// Reparameterize regenerates a parametric mesh in place with new
// parameters.  This is destructive: any vertex or edge edits are
// discarded and the edited flag clears.  Custom meshes have no
// parameters to regenerate and report false.
func Reparameterize(ms *mesh.Mesh, p mesh.Param) bool {
	if ms.Kind == mesh.Custom {
		return false
	}
	*ms = *mesh.New(ms.Kind, p)
	return true
}
