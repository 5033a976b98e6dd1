// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geomio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/mesh"
)

// parametric round-trip: Encode(Decode(rec)) must reproduce rec exactly,
// with documented defaults filled for missing fields.
func TestParametricRoundTrip(t *testing.T) {
	recs := []Record{
		{Kind: "box", Width: ptr[float32](2), Height: ptr[float32](1), Depth: ptr[float32](3)},
		{Kind: "sphere", Radius: ptr[float32](0.75), WidthSegments: ptr(16), HeightSegments: ptr(12)},
		{Kind: "cylinder", RadiusTop: ptr[float32](0.25), RadiusBottom: ptr[float32](0.5), Height: ptr[float32](2), RadialSegments: ptr(12)},
		{Kind: "cone", Radius: ptr[float32](0.5), Height: ptr[float32](1.5), RadialSegments: ptr(16)},
	}
	for _, rec := range recs {
		ms := Decode(rec)
		out := Encode(ms, "solid")
		assert.Equal(t, rec, out, "kind %s", rec.Kind)
	}
}

func TestDecodeDefaults(t *testing.T) {
	ms := Decode(Record{Kind: "box"})
	assert.Equal(t, mesh.Box, ms.Kind)
	assert.Equal(t, float32(1), ms.Param.Size.X)

	sp := Decode(Record{Kind: "sphere"})
	assert.Equal(t, float32(0.5), sp.Param.Radius)
	assert.Equal(t, 32, sp.Param.WidthSegs)
	assert.Equal(t, 16, sp.Param.HeightSegs)

	cy := Decode(Record{Kind: "cylinder"})
	assert.Equal(t, float32(0.5), cy.Param.RadiusTop)
	assert.Equal(t, float32(0.5), cy.Param.RadiusBottom)
	assert.Equal(t, float32(1), cy.Param.Height)
	assert.Equal(t, 32, cy.Param.RadialSegs)

	co := Decode(Record{Kind: "cone"})
	assert.Equal(t, float32(0.5), co.Param.Radius)
	assert.Equal(t, float32(1), co.Param.Height)
}

// encode of a zero-parameter mesh emits explicit defaults
func TestEncodeFillsDefaults(t *testing.T) {
	ms := &mesh.Mesh{Kind: mesh.Sphere}
	rec := Encode(ms, "ball")
	require.NotNil(t, rec.Radius)
	assert.Equal(t, float32(0.5), *rec.Radius)
	assert.Equal(t, 32, *rec.WidthSegments)
	assert.Equal(t, 16, *rec.HeightSegments)
}

func TestCustomRoundTrip(t *testing.T) {
	vtx := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0}
	idx := []uint32{0, 1, 2, 1, 3, 2}
	ms := mesh.NewCustom(vtx, idx, nil, nil)
	rec := Encode(ms, "blob")
	assert.Equal(t, "custom", rec.Kind)
	assert.Equal(t, vtx, rec.Vertices)
	assert.Equal(t, idx, rec.Indices)

	out := Decode(rec)
	assert.Equal(t, mesh.Custom, out.Kind)
	assert.Equal(t, vtx, []float32(out.Vtx))
	assert.Equal(t, idx, []uint32(out.Idx))
	assert.NotEmpty(t, out.Norm)
}

// normals absent from the record are recomputed on decode
func TestDecodeComputesMissingNormals(t *testing.T) {
	rec := Record{Kind: "custom", Vertices: []float32{0, 0, 0, 0, 0, 1, 1, 0, 0}, Indices: []uint32{0, 1, 2}}
	ms := Decode(rec)
	require.Equal(t, 9, len(ms.Norm))
	assert.InDelta(t, 1, ms.Normal(0).Y, 1e-6)
}

func TestTorusAuxBag(t *testing.T) {
	tr := mesh.NewTorus(0.6, 0.15, 24, 12)
	rec := Encode(tr, "ring")
	assert.Equal(t, "custom", rec.Kind)
	assert.Equal(t, "torus", rec.AuxKind)

	out := Decode(rec)
	assert.Equal(t, mesh.Torus, out.Kind)
	assert.Equal(t, float32(0.6), out.Param.Radius)
	assert.Equal(t, float32(0.15), out.Param.Tube)
	assert.Equal(t, 24, out.Param.RadialSegs)
	assert.Equal(t, 12, out.Param.TubeSegs)
}

func TestEditedMeshGoesCustom(t *testing.T) {
	bx := mesh.NewBox(1, 1, 1)
	bx.Edited = true
	rec := Encode(bx, "box")
	assert.Equal(t, "custom", rec.Kind)
	assert.Equal(t, len(bx.Vtx), len(rec.Vertices))
}

func TestNameHeuristic(t *testing.T) {
	bx := mesh.NewBox(1, 1, 1)
	assert.False(t, IsCustom(bx, "Crate"))
	assert.True(t, IsCustom(bx, "My Edited Crate"))
	assert.True(t, IsCustom(bx, "FREEFORM thing"))
}
