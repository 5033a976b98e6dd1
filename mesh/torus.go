// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "goki.dev/mat32/v2"

// NewTorus returns a torus mesh with the given ring radius and solid tube
// radius, with the given number of segments around the ring and around
// the tube (each clamped to at least 3).  The ring lies in the XY plane.
func NewTorus(radius, tube float32, radialSegs, tubeSegs int) *Mesh {
	if radialSegs < 3 {
		radialSegs = 3
	}
	if tubeSegs < 3 {
		tubeSegs = 3
	}
	ms := &Mesh{Kind: Torus}
	ms.Param.Radius = radius
	ms.Param.Tube = tube
	ms.Param.RadialSegs = radialSegs
	ms.Param.TubeSegs = tubeSegs

	angLen := mat32.DegToRad(360)

	for j := 0; j <= radialSegs; j++ {
		for i := 0; i <= tubeSegs; i++ {
			u := float32(i) / float32(tubeSegs) * angLen
			v := float32(j) / float32(radialSegs) * angLen

			center := mat32.V3(radius*mat32.Cos(u), radius*mat32.Sin(u), 0)
			pt := mat32.V3(
				(radius+tube*mat32.Cos(v))*mat32.Cos(u),
				(radius+tube*mat32.Cos(v))*mat32.Sin(u),
				tube*mat32.Sin(v),
			)
			norm := pt.Sub(center).Normal()
			ms.Vtx = append(ms.Vtx, pt.X, pt.Y, pt.Z)
			ms.Norm = append(ms.Norm, norm.X, norm.Y, norm.Z)
			ms.Tex = append(ms.Tex, float32(i)/float32(tubeSegs), float32(j)/float32(radialSegs))
		}
	}

	for j := 1; j <= radialSegs; j++ {
		for i := 1; i <= tubeSegs; i++ {
			a := uint32((tubeSegs+1)*j + i - 1)
			b := uint32((tubeSegs+1)*(j-1) + i - 1)
			c := uint32((tubeSegs+1)*(j-1) + i)
			d := uint32((tubeSegs+1)*j + i)
			ms.Idx = append(ms.Idx, a, b, d, b, c, d)
		}
	}
	return ms
}
