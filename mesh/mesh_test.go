// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goki.dev/mat32/v2"
)

func TestNewBox(t *testing.T) {
	ms := NewBox(1, 2, 3)
	assert.Equal(t, Box, ms.Kind)
	assert.Equal(t, 24, ms.NumVertex()) // 6 faces x 4 verts
	assert.Equal(t, 12, ms.NumTris())
	assert.Equal(t, mat32.V3(1, 2, 3), ms.Param.Size)

	bb := ms.BBox()
	assert.Equal(t, mat32.V3(-0.5, -1, -1.5), bb.Min)
	assert.Equal(t, mat32.V3(0.5, 1, 1.5), bb.Max)
}

func TestBBoxEmptyMesh(t *testing.T) {
	var ms Mesh
	bb := ms.BBox()
	// no vertices: min stays above max
	assert.Greater(t, bb.Min.X, bb.Max.X)
	assert.Greater(t, bb.Min.Y, bb.Max.Y)
	assert.Greater(t, bb.Min.Z, bb.Max.Z)
}

func TestNewSphere(t *testing.T) {
	ms := NewSphere(0.5, 8, 6)
	assert.Equal(t, Sphere, ms.Kind)
	assert.Equal(t, 9*7, ms.NumVertex())
	// pole rows contribute one triangle per column, middle rows two
	assert.Equal(t, 8+8+4*2*8, ms.NumTris())
	for i := 0; i < ms.NumVertex(); i++ {
		assert.InDelta(t, 0.5, ms.Vertex(i).Length(), 1e-5)
		assert.InDelta(t, 1, ms.Normal(i).Length(), 1e-5)
	}
}

func TestNewCylinderCone(t *testing.T) {
	cy := NewCylinder(0.5, 0.5, 1, 8)
	assert.Equal(t, Cylinder, cy.Kind)
	assert.True(t, cy.NumTris() > 0)
	bb := cy.BBox()
	assert.InDelta(t, -0.5, bb.Min.Y, 1e-6)
	assert.InDelta(t, 0.5, bb.Max.Y, 1e-6)

	co := NewCone(0.5, 1, 8)
	assert.Equal(t, Cone, co.Kind)
	// no top cap on a cone
	assert.True(t, co.NumVertex() < cy.NumVertex())
}

func TestNewTorus(t *testing.T) {
	tr := NewTorus(0.5, 0.1, 8, 6)
	assert.Equal(t, Torus, tr.Kind)
	assert.Equal(t, 9*7, tr.NumVertex())
	assert.Equal(t, 8*6*2, tr.NumTris())
}

func TestComputeNorms(t *testing.T) {
	// one triangle in the XZ plane faces +Y
	ms := NewCustom([]float32{0, 0, 0, 0, 0, 1, 1, 0, 0}, []uint32{0, 1, 2}, nil, nil)
	require.Equal(t, 9, len(ms.Norm))
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, ms.Normal(i).X, 1e-6)
		assert.InDelta(t, 1, ms.Normal(i).Y, 1e-6)
		assert.InDelta(t, 0, ms.Normal(i).Z, 1e-6)
	}
}

func TestCloneIndependence(t *testing.T) {
	ms := NewBox(1, 1, 1)
	cp := ms.Clone()
	cp.SetVertex(0, mat32.V3(9, 9, 9))
	assert.NotEqual(t, ms.Vertex(0), cp.Vertex(0))
	assert.Equal(t, ms.Kind, cp.Kind)
	assert.Equal(t, ms.Param, cp.Param)
}

func TestDefaultParam(t *testing.T) {
	assert.Equal(t, mat32.V3(1, 1, 1), DefaultParam(Box).Size)
	sp := DefaultParam(Sphere)
	assert.Equal(t, float32(0.5), sp.Radius)
	assert.Equal(t, 32, sp.WidthSegs)
	assert.Equal(t, 16, sp.HeightSegs)
	cy := DefaultParam(Cylinder)
	assert.Equal(t, float32(1), cy.Height)
	assert.Equal(t, 32, cy.RadialSegs)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "box", Box.String())
	assert.Equal(t, Box, KindByName("box"))
	assert.Equal(t, Custom, KindByName("wobbly"))
	assert.True(t, Cylinder.IsParametric())
	assert.False(t, Torus.IsParametric())
}
