// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geomio converts between live [mesh.Mesh] geometry and the
// schema-limited [Record] form that the persistence gateway stores.
// Standard parametric solids round-trip through their parameter set
// alone; everything else persists through raw buffers, with an auxiliary
// parameter bag allowing the ring family to be reconstructed procedurally.
package geomio

import (
	"strings"

	"sceneforge/mesh"
)

// Record is the persisted geometry representation.  Parametric fields
// are optional; a nil field decodes to its documented default
// (see [mesh.DefaultParam]), never to an error.
type Record struct {

	// Kind is the persisted kind name: box, sphere, cylinder, cone or custom.
	Kind string `json:"kind"`

	// box parameters, default 1 each
	Width  *float32 `json:"width,omitempty"`
	Height *float32 `json:"height,omitempty"`
	Depth  *float32 `json:"depth,omitempty"`

	// sphere / cone radius, default 0.5
	Radius *float32 `json:"radius,omitempty"`

	// sphere segments, defaults 32 and 16
	WidthSegments  *int `json:"widthSegments,omitempty"`
	HeightSegments *int `json:"heightSegments,omitempty"`

	// cylinder radii, default 0.5 each
	RadiusTop    *float32 `json:"radiusTop,omitempty"`
	RadiusBottom *float32 `json:"radiusBottom,omitempty"`

	// cylinder / cone radial segments, default 32
	RadialSegments *int `json:"radialSegments,omitempty"`

	// raw buffers for custom geometry
	Vertices []float32 `json:"vertices,omitempty"`
	Indices  []uint32  `json:"indices,omitempty"`
	Normals  []float32 `json:"normals,omitempty"`
	UVs      []float32 `json:"uvs,omitempty"`

	// AuxKind and Aux form the auxiliary parameter bag: a custom record
	// whose AuxKind names a known parametric-custom kind (the ring family)
	// is reconstructed procedurally from Aux instead of its buffers.
	AuxKind string             `json:"auxKind,omitempty"`
	Aux     map[string]float32 `json:"aux,omitempty"`
}

// customNameWords is the legacy name heuristic: a mesh whose display name
// contains one of these substrings (case-insensitive) is persisted as
// custom regardless of its kind tag.  Retained for records written before
// the explicit Edited flag existed.
var customNameWords = []string{"custom", "edited", "freeform", "imported"}

// IsCustom reports whether the given mesh must be persisted as custom
// geometry: it is tagged Custom, belongs to the ring family, has been
// edited at the vertex level, or matches the legacy name heuristic.
func IsCustom(ms *mesh.Mesh, name string) bool {
	if ms.Kind == mesh.Custom || ms.Kind == mesh.Torus || ms.Edited {
		return true
	}
	ln := strings.ToLower(name)
	for _, w := range customNameWords {
		if strings.Contains(ln, w) {
			return true
		}
	}
	return false
}

// Encode converts a live mesh into its persisted record.  Parametric
// kinds emit their canonical parameter set with explicit defaults filled
// in for any zero-valued parameter; custom geometry emits raw buffers,
// plus the auxiliary bag for the ring family.
func Encode(ms *mesh.Mesh, name string) Record {
	if IsCustom(ms, name) {
		return encodeCustom(ms)
	}
	def := mesh.DefaultParam(ms.Kind)
	p := ms.Param
	switch ms.Kind {
	case mesh.Box:
		return Record{
			Kind:   "box",
			Width:  ptr(orDefault(p.Size.X, def.Size.X)),
			Height: ptr(orDefault(p.Size.Y, def.Size.Y)),
			Depth:  ptr(orDefault(p.Size.Z, def.Size.Z)),
		}
	case mesh.Sphere:
		return Record{
			Kind:           "sphere",
			Radius:         ptr(orDefault(p.Radius, def.Radius)),
			WidthSegments:  ptr(orDefaultInt(p.WidthSegs, def.WidthSegs)),
			HeightSegments: ptr(orDefaultInt(p.HeightSegs, def.HeightSegs)),
		}
	case mesh.Cylinder:
		return Record{
			Kind:           "cylinder",
			RadiusTop:      ptr(orDefault(p.RadiusTop, def.RadiusTop)),
			RadiusBottom:   ptr(orDefault(p.RadiusBottom, def.RadiusBottom)),
			Height:         ptr(orDefault(p.Height, def.Height)),
			RadialSegments: ptr(orDefaultInt(p.RadialSegs, def.RadialSegs)),
		}
	case mesh.Cone:
		return Record{
			Kind:           "cone",
			Radius:         ptr(orDefault(p.Radius, def.Radius)),
			Height:         ptr(orDefault(p.Height, def.Height)),
			RadialSegments: ptr(orDefaultInt(p.RadialSegs, def.RadialSegs)),
		}
	}
	return encodeCustom(ms)
}

func encodeCustom(ms *mesh.Mesh) Record {
	rec := Record{
		Kind:     "custom",
		Vertices: append([]float32(nil), ms.Vtx...),
		Indices:  append([]uint32(nil), ms.Idx...),
	}
	if len(ms.Norm) > 0 {
		rec.Normals = append([]float32(nil), ms.Norm...)
	}
	if len(ms.Tex) > 0 {
		rec.UVs = append([]float32(nil), ms.Tex...)
	}
	if ms.Kind == mesh.Torus && !ms.Edited {
		rec.AuxKind = "torus"
		rec.Aux = map[string]float32{
			"radius":          ms.Param.Radius,
			"tube":            ms.Param.Tube,
			"radialSegments":  float32(ms.Param.RadialSegs),
			"tubularSegments": float32(ms.Param.TubeSegs),
		}
	}
	return rec
}

// Decode reconstructs a live mesh from its persisted record.  Missing
// parametric fields fall back to their documented defaults.  A custom
// record with a known auxiliary kind is rebuilt procedurally; otherwise
// buffers are restored directly, computing normals when absent.
func Decode(rec Record) *mesh.Mesh {
	kind := mesh.KindByName(rec.Kind)
	if kind.IsParametric() {
		def := mesh.DefaultParam(kind)
		switch kind {
		case mesh.Box:
			return mesh.NewBox(f32(rec.Width, def.Size.X), f32(rec.Height, def.Size.Y), f32(rec.Depth, def.Size.Z))
		case mesh.Sphere:
			return mesh.NewSphere(f32(rec.Radius, def.Radius),
				iv(rec.WidthSegments, def.WidthSegs), iv(rec.HeightSegments, def.HeightSegs))
		case mesh.Cylinder:
			return mesh.NewCylinder(f32(rec.RadiusTop, def.RadiusTop), f32(rec.RadiusBottom, def.RadiusBottom),
				f32(rec.Height, def.Height), iv(rec.RadialSegments, def.RadialSegs))
		case mesh.Cone:
			return mesh.NewCone(f32(rec.Radius, def.Radius), f32(rec.Height, def.Height),
				iv(rec.RadialSegments, def.RadialSegs))
		}
	}
	if rec.AuxKind == "torus" && rec.Aux != nil {
		def := mesh.DefaultParam(mesh.Torus)
		return mesh.NewTorus(
			auxF32(rec.Aux, "radius", def.Radius),
			auxF32(rec.Aux, "tube", def.Tube),
			int(auxF32(rec.Aux, "radialSegments", float32(def.RadialSegs))),
			int(auxF32(rec.Aux, "tubularSegments", float32(def.TubeSegs))),
		)
	}
	return mesh.NewCustom(rec.Vertices, rec.Indices, rec.Normals, rec.UVs)
}

func ptr[T any](v T) *T { return &v }

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func f32(v *float32, def float32) float32 {
	if v == nil {
		return def
	}
	return *v
}

func iv(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func auxF32(aux map[string]float32, key string, def float32) float32 {
	if v, ok := aux[key]; ok && v != 0 {
		return v
	}
	return def
}
