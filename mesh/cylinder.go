// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "goki.dev/mat32/v2"

// NewCylinder returns a generalized cylinder mesh with the given top and
// bottom radii (differing radii make a truncated cone) and height along
// the Y axis, with the given number of radial segments (clamped to at
// least 3) and end caps on any end with a non-zero radius.
func NewCylinder(radiusTop, radiusBottom, height float32, radialSegs int) *Mesh {
	ms := newCylinder(radiusTop, radiusBottom, height, radialSegs)
	ms.Kind = Cylinder
	ms.Param.RadiusTop = radiusTop
	ms.Param.RadiusBottom = radiusBottom
	ms.Param.Height = height
	return ms
}

// NewCone returns a cone mesh with the given base radius and height along
// the Y axis, with the given number of radial segments and a bottom cap.
func NewCone(radius, height float32, radialSegs int) *Mesh {
	ms := newCylinder(0, radius, height, radialSegs)
	ms.Kind = Cone
	ms.Param.Radius = radius
	ms.Param.Height = height
	return ms
}

func newCylinder(radiusTop, radiusBottom, height float32, radialSegs int) *Mesh {
	if radialSegs < 3 {
		radialSegs = 3
	}
	const heightSegs = 1
	ms := &Mesh{}
	ms.Param.RadialSegs = radialSegs
	hHt := height / 2

	angLen := mat32.DegToRad(360)

	vtxs := [][]uint32{}
	uvsOrig := [][]mat32.Vec2{}
	for y := 0; y <= heightSegs; y++ {
		var vtxsRow []uint32
		var uvsRow []mat32.Vec2
		v := float32(y) / float32(heightSegs)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		for x := 0; x <= radialSegs; x++ {
			u := float32(x) / float32(radialSegs)
			pt := mat32.V3(-radius*mat32.Cos(u*angLen), -v*height+hHt, radius*mat32.Sin(u*angLen))
			ms.Vtx = append(ms.Vtx, pt.X, pt.Y, pt.Z)
			vtxsRow = append(vtxsRow, uint32(len(ms.Vtx)/3-1))
			uvsRow = append(uvsRow, mat32.V2(u, 1-v))
		}
		vtxs = append(vtxs, vtxsRow)
		uvsOrig = append(uvsOrig, uvsRow)
	}

	// side normals lean by the taper angle
	tanTheta := (radiusBottom - radiusTop) / height
	norms := make(mat32.ArrayF32, len(ms.Vtx))
	uvs := make(mat32.ArrayF32, 2*len(ms.Vtx)/3)

	for x := 0; x < radialSegs; x++ {
		var na, nb mat32.Vec3
		if radiusTop != 0 {
			na.FromArray(ms.Vtx, 3*int(vtxs[0][x]))
			nb.FromArray(ms.Vtx, 3*int(vtxs[0][x+1]))
		} else {
			na.FromArray(ms.Vtx, 3*int(vtxs[1][x]))
			nb.FromArray(ms.Vtx, 3*int(vtxs[1][x+1]))
		}
		na.Y = mat32.Sqrt(na.X*na.X+na.Z*na.Z) * tanTheta
		na = na.Normal()
		nb.Y = mat32.Sqrt(nb.X*nb.X+nb.Z*nb.Z) * tanTheta
		nb = nb.Normal()

		for y := 0; y < heightSegs; y++ {
			v1 := vtxs[y][x]
			v2 := vtxs[y+1][x]
			v3 := vtxs[y+1][x+1]
			v4 := vtxs[y][x+1]

			ms.Idx = append(ms.Idx, v1, v2, v4)
			ms.Idx = append(ms.Idx, v2, v3, v4)

			na.ToArray(norms, 3*int(v1))
			na.ToArray(norms, 3*int(v2))
			nb.ToArray(norms, 3*int(v3))
			nb.ToArray(norms, 3*int(v4))

			uvsOrig[y][x].ToArray(uvs, 2*int(v1))
			uvsOrig[y+1][x].ToArray(uvs, 2*int(v2))
			uvsOrig[y+1][x+1].ToArray(uvs, 2*int(v3))
			uvsOrig[y][x+1].ToArray(uvs, 2*int(v4))
		}
	}
	ms.Norm = norms
	ms.Tex = uvs

	if radiusTop > 0 {
		ms.addCap(vtxs[0], hHt, 1, uvsOrig[0], 0)
	}
	if radiusBottom > 0 {
		ms.addCap(vtxs[heightSegs], -hHt, -1, uvsOrig[heightSegs], 1)
	}
	return ms
}

// addCap appends an end-cap disc at the given Y with the given normal
// direction (+1 up, -1 down), fanning triangles around a per-segment
// center vertex; rim vertices are duplicated so the cap normal stays flat.
func (ms *Mesh) addCap(rim []uint32, y, ny float32, rimUV []mat32.Vec2, vEdge float32) {
	segs := len(rim) - 1
	var ringIdx []uint32
	for x := 0; x <= segs; x++ {
		// center
		ms.Vtx = append(ms.Vtx, 0, y, 0)
		ms.Norm = append(ms.Norm, 0, ny, 0)
		ms.Tex = append(ms.Tex, rimUV[x].X, vEdge)
		// rim copy
		var pt mat32.Vec3
		pt.FromArray(ms.Vtx, 3*int(rim[x]))
		ms.Vtx = append(ms.Vtx, pt.X, pt.Y, pt.Z)
		ms.Norm = append(ms.Norm, 0, ny, 0)
		ms.Tex = append(ms.Tex, rimUV[x].X, rimUV[x].Y)
		ringIdx = append(ringIdx, uint32(len(ms.Vtx)/3-2), uint32(len(ms.Vtx)/3-1))
	}
	for x := 0; x < segs; x++ {
		c := ringIdx[2*x]
		r1 := ringIdx[2*x+1]
		r2 := ringIdx[2*x+3]
		if ny > 0 {
			ms.Idx = append(ms.Idx, c, r1, r2)
		} else {
			ms.Idx = append(ms.Idx, c, r2, r1)
		}
	}
}
