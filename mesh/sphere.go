// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "goki.dev/mat32/v2"

// NewSphere returns a full sphere mesh with the given radius and number
// of segments around the width (longitude) and height (latitude) of the
// sphere.  widthSegs and heightSegs are clamped to at least 3 and 2.
func NewSphere(radius float32, widthSegs, heightSegs int) *Mesh {
	if widthSegs < 3 {
		widthSegs = 3
	}
	if heightSegs < 2 {
		heightSegs = 2
	}
	ms := &Mesh{Kind: Sphere}
	ms.Param.Radius = radius
	ms.Param.WidthSegs = widthSegs
	ms.Param.HeightSegs = heightSegs

	nVtx := (widthSegs + 1) * (heightSegs + 1)
	ms.Vtx = make(mat32.ArrayF32, 0, nVtx*3)
	ms.Norm = make(mat32.ArrayF32, 0, nVtx*3)
	ms.Tex = make(mat32.ArrayF32, 0, nVtx*2)

	angLen := mat32.DegToRad(360)
	elevLen := mat32.DegToRad(180)

	idx := 0
	vtxs := make([][]uint32, 0, heightSegs+1)
	for y := 0; y <= heightSegs; y++ {
		vtxsRow := make([]uint32, 0, widthSegs+1)
		v := float32(y) / float32(heightSegs)
		for x := 0; x <= widthSegs; x++ {
			u := float32(x) / float32(widthSegs)
			px := -radius * mat32.Cos(u*angLen) * mat32.Sin(v*elevLen)
			py := radius * mat32.Cos(v*elevLen)
			pz := radius * mat32.Sin(u*angLen) * mat32.Sin(v*elevLen)
			pt := mat32.V3(px, py, pz)
			norm := pt.Normal()
			ms.Vtx = append(ms.Vtx, pt.X, pt.Y, pt.Z)
			ms.Norm = append(ms.Norm, norm.X, norm.Y, norm.Z)
			ms.Tex = append(ms.Tex, u, v)
			vtxsRow = append(vtxsRow, uint32(idx))
			idx++
		}
		vtxs = append(vtxs, vtxsRow)
	}

	for y := 0; y < heightSegs; y++ {
		for x := 0; x < widthSegs; x++ {
			v1 := vtxs[y][x+1]
			v2 := vtxs[y][x]
			v3 := vtxs[y+1][x]
			v4 := vtxs[y+1][x+1]
			if y != 0 {
				ms.Idx = append(ms.Idx, v1, v2, v4)
			}
			if y != heightSegs-1 {
				ms.Idx = append(ms.Idx, v2, v3, v4)
			}
		}
	}
	return ms
}
