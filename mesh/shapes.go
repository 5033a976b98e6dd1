// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "goki.dev/mat32/v2"

// addQuad appends one rectangular face as 4 vertices and 2 triangles,
// with the given shared face normal and corner uv coordinates.
// Corners a,b,c,d wind counter-clockwise as seen from the normal side.
func (ms *Mesh) addQuad(a, b, c, d, norm mat32.Vec3, uvs [4]mat32.Vec2) {
	stidx := uint32(ms.NumVertex())
	for i, pt := range [4]mat32.Vec3{a, b, c, d} {
		ms.Vtx = append(ms.Vtx, pt.X, pt.Y, pt.Z)
		ms.Norm = append(ms.Norm, norm.X, norm.Y, norm.Z)
		ms.Tex = append(ms.Tex, uvs[i].X, uvs[i].Y)
	}
	ms.Idx = append(ms.Idx, stidx, stidx+1, stidx+2, stidx, stidx+2, stidx+3)
}

// NewBox returns a box mesh of given size along each dimension, centered
// at the origin.  Each face has its own 4 vertices so face normals stay
// sharp; coincident corner vertices are deliberately duplicated.
func NewBox(width, height, depth float32) *Mesh {
	ms := &Mesh{Kind: Box}
	ms.Param.Size = mat32.V3(width, height, depth)
	hx, hy, hz := width/2, height/2, depth/2

	uv := [4]mat32.Vec2{mat32.V2(0, 0), mat32.V2(1, 0), mat32.V2(1, 1), mat32.V2(0, 1)}

	// +Z front
	ms.addQuad(mat32.V3(-hx, -hy, hz), mat32.V3(hx, -hy, hz), mat32.V3(hx, hy, hz), mat32.V3(-hx, hy, hz), mat32.V3(0, 0, 1), uv)
	// -Z back
	ms.addQuad(mat32.V3(hx, -hy, -hz), mat32.V3(-hx, -hy, -hz), mat32.V3(-hx, hy, -hz), mat32.V3(hx, hy, -hz), mat32.V3(0, 0, -1), uv)
	// +X right
	ms.addQuad(mat32.V3(hx, -hy, hz), mat32.V3(hx, -hy, -hz), mat32.V3(hx, hy, -hz), mat32.V3(hx, hy, hz), mat32.V3(1, 0, 0), uv)
	// -X left
	ms.addQuad(mat32.V3(-hx, -hy, -hz), mat32.V3(-hx, -hy, hz), mat32.V3(-hx, hy, hz), mat32.V3(-hx, hy, -hz), mat32.V3(-1, 0, 0), uv)
	// +Y top
	ms.addQuad(mat32.V3(-hx, hy, hz), mat32.V3(hx, hy, hz), mat32.V3(hx, hy, -hz), mat32.V3(-hx, hy, -hz), mat32.V3(0, 1, 0), uv)
	// -Y bottom
	ms.addQuad(mat32.V3(-hx, -hy, -hz), mat32.V3(hx, -hy, -hz), mat32.V3(hx, -hy, hz), mat32.V3(-hx, -hy, hz), mat32.V3(0, -1, 0), uv)
	return ms
}

// New returns a mesh of the given kind generated from the given
// parameter set; Custom yields an empty mesh.
func New(kind Kind, p Param) *Mesh {
	switch kind {
	case Box:
		return NewBox(p.Size.X, p.Size.Y, p.Size.Z)
	case Sphere:
		return NewSphere(p.Radius, p.WidthSegs, p.HeightSegs)
	case Cylinder:
		return NewCylinder(p.RadiusTop, p.RadiusBottom, p.Height, p.RadialSegs)
	case Cone:
		return NewCone(p.Radius, p.Height, p.RadialSegs)
	case Torus:
		return NewTorus(p.Radius, p.Tube, p.RadialSegs, p.TubeSegs)
	}
	return &Mesh{Kind: Custom}
}
