// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh provides the indexed triangle mesh representation used
// throughout the editor core, backed by flat position / normal / texture
// coordinate / index buffers, along with constructors for the standard
// parametric solids (box, sphere, cylinder, cone, torus).
// Only indexed triangle meshes are supported.
package mesh

import "goki.dev/mat32/v2"

// Kind is the geometry kind tag, decided once at construction time.
// Anything that is not one of the recognized parametric solids is Custom.
type Kind int32

const (
	// Custom is arbitrary geometry described only by its buffers.
	Custom Kind = iota

	// Box is a rectangular cuboid parameterized by Size.
	Box

	// Sphere is a full sphere parameterized by Radius and segment counts.
	Sphere

	// Cylinder is a cylinder (or truncated cone) with separate top and
	// bottom radii, parameterized by Height and RadialSegs.
	Cylinder

	// Cone is a cylinder with a zero top radius.
	Cone

	// Torus is the ring family, parameterized by ring Radius, Tube radius
	// and segment counts.  It persists through the auxiliary parameter bag
	// rather than the standard parametric schema.
	Torus

	KindN
)

var kindNames = [KindN]string{"custom", "box", "sphere", "cylinder", "cone", "torus"}

func (k Kind) String() string {
	if k < 0 || k >= KindN {
		return "custom"
	}
	return kindNames[k]
}

// KindByName returns the Kind with the given persisted name,
// defaulting to Custom for anything unrecognized.
func KindByName(name string) Kind {
	for k, nm := range kindNames {
		if nm == name {
			return Kind(k)
		}
	}
	return Custom
}

// IsParametric reports whether the kind is one of the standard parametric
// solids that round-trips through its parameter set alone.  The torus
// family is parametric-custom: reconstructible from parameters but not
// part of the standard persisted schema.
func (k Kind) IsParametric() bool {
	switch k {
	case Box, Sphere, Cylinder, Cone:
		return true
	}
	return false
}

// Param is the numeric parameter set for a parametric mesh.
// Only the fields relevant to the mesh's Kind are meaningful.
type Param struct {

	// Size is the box size along each dimension.
	Size mat32.Vec3

	// Radius is the sphere / cone / torus ring radius.
	Radius float32

	// RadiusTop and RadiusBottom are the cylinder end radii.
	RadiusTop, RadiusBottom float32

	// Height is the cylinder / cone height along Y.
	Height float32

	// Tube is the torus tube radius.
	Tube float32

	// WidthSegs, HeightSegs are sphere segment counts.
	WidthSegs, HeightSegs int

	// RadialSegs is the cylinder / cone / torus radial segment count.
	RadialSegs int

	// TubeSegs is the torus tube segment count.
	TubeSegs int
}

// DefaultParam returns the documented default parameter set for given kind:
// box 1x1x1; sphere radius 0.5, segs 32x16; cylinder radii 0.5, height 1,
// 32 radial segs; cone radius 0.5, height 1, 32 radial segs; torus ring
// radius 0.5, tube 0.2, segs 32x16.  Custom has no parameters.
func DefaultParam(k Kind) Param {
	switch k {
	case Box:
		return Param{Size: mat32.V3(1, 1, 1)}
	case Sphere:
		return Param{Radius: 0.5, WidthSegs: 32, HeightSegs: 16}
	case Cylinder:
		return Param{RadiusTop: 0.5, RadiusBottom: 0.5, Height: 1, RadialSegs: 32}
	case Cone:
		return Param{Radius: 0.5, Height: 1, RadialSegs: 32}
	case Torus:
		return Param{Radius: 0.5, Tube: 0.2, RadialSegs: 32, TubeSegs: 16}
	}
	return Param{}
}

// Mesh is an indexed triangle mesh with flat buffers: Vtx and Norm hold
// 3 floats per vertex, Tex 2 floats per vertex, Idx 3 indices per triangle.
// Kind and Param record how the buffers were generated; editing the
// buffers directly (vertex drags) does not change the Kind.
type Mesh struct {

	// Kind is the geometry kind tag.
	Kind Kind

	// Param is the generating parameter set; zero for Custom.
	Param Param

	// Edited is set when the buffers have been mutated at the vertex level
	// after generation, so the mesh no longer matches its Param and must
	// persist through its buffers.
	Edited bool

	// Vtx is the vertex position buffer, 3 floats per vertex.
	Vtx mat32.ArrayF32

	// Norm is the vertex normal buffer, 3 floats per vertex.
	Norm mat32.ArrayF32

	// Tex is the texture coordinate buffer, 2 floats per vertex.
	Tex mat32.ArrayF32

	// Idx is the triangle index buffer, 3 indices per triangle.
	Idx mat32.ArrayU32
}

// NumVertex returns the number of vertex points.
func (ms *Mesh) NumVertex() int {
	return len(ms.Vtx) / 3
}

// NumTris returns the number of triangles.
func (ms *Mesh) NumTris() int {
	return len(ms.Idx) / 3
}

// Vertex returns the position of vertex i.
func (ms *Mesh) Vertex(i int) mat32.Vec3 {
	var v mat32.Vec3
	v.FromArray(ms.Vtx, i*3)
	return v
}

// SetVertex sets the position of vertex i.
func (ms *Mesh) SetVertex(i int, v mat32.Vec3) {
	v.ToArray(ms.Vtx, i*3)
}

// Normal returns the normal of vertex i.
func (ms *Mesh) Normal(i int) mat32.Vec3 {
	var v mat32.Vec3
	v.FromArray(ms.Norm, i*3)
	return v
}

// Clone returns a deep copy that shares no buffer memory with the
// receiver, so edits to one never alias the other.
func (ms *Mesh) Clone() *Mesh {
	cp := &Mesh{Kind: ms.Kind, Param: ms.Param, Edited: ms.Edited}
	cp.Vtx = append(mat32.ArrayF32(nil), ms.Vtx...)
	cp.Norm = append(mat32.ArrayF32(nil), ms.Norm...)
	cp.Tex = append(mat32.ArrayF32(nil), ms.Tex...)
	cp.Idx = append(mat32.ArrayU32(nil), ms.Idx...)
	return cp
}

// BBox returns the axis-aligned bounding box of the vertex positions.
func (ms *Mesh) BBox() mat32.Box3 {
	bb := mat32.B3Empty()
	n := ms.NumVertex()
	for i := 0; i < n; i++ {
		bb.ExpandByPoint(ms.Vertex(i))
	}
	return bb
}

// ComputeNorms recomputes the Norm buffer from the current positions and
// triangle topology, accumulating area-weighted face normals per vertex
// and normalizing.  Vertices referenced by no triangle get a +Y normal.
func (ms *Mesh) ComputeNorms() {
	n := ms.NumVertex()
	ms.Norm = make(mat32.ArrayF32, n*3)
	for ti := 0; ti < len(ms.Idx); ti += 3 {
		a := ms.Vertex(int(ms.Idx[ti]))
		b := ms.Vertex(int(ms.Idx[ti+1]))
		c := ms.Vertex(int(ms.Idx[ti+2]))
		fn := b.Sub(a).Cross(c.Sub(a)) // length ~ 2x triangle area
		for k := 0; k < 3; k++ {
			vi := int(ms.Idx[ti+k]) * 3
			ms.Norm[vi] += fn.X
			ms.Norm[vi+1] += fn.Y
			ms.Norm[vi+2] += fn.Z
		}
	}
	for i := 0; i < n; i++ {
		var v mat32.Vec3
		v.FromArray(ms.Norm, i*3)
		if v.Length() == 0 {
			v = mat32.V3(0, 1, 0)
		} else {
			v = v.Normal()
		}
		v.ToArray(ms.Norm, i*3)
	}
}

// NewCustom returns a Custom mesh from raw buffers, copying all inputs.
// norm and tex may be nil or empty; missing normals are computed from
// the topology.
func NewCustom(vtx []float32, idx []uint32, norm, tex []float32) *Mesh {
	ms := &Mesh{Kind: Custom}
	ms.Vtx = append(mat32.ArrayF32(nil), vtx...)
	ms.Idx = append(mat32.ArrayU32(nil), idx...)
	if len(tex) > 0 {
		ms.Tex = append(mat32.ArrayF32(nil), tex...)
	}
	if len(norm) > 0 {
		ms.Norm = append(mat32.ArrayF32(nil), norm...)
	} else {
		ms.ComputeNorms()
	}
	return ms
}
