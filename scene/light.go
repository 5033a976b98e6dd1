// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"image/color"

	"goki.dev/mat32/v2"
)

// LightKinds are the supported light source types.
type LightKinds int32

const (
	// Directional light projects toward its target with no attenuation,
	// like the sun.
	Directional LightKinds = iota

	// Point light is omnidirectional with distance decay.
	Point

	// Spot light has a position, target, cone angle and penumbra.
	Spot

	LightKindsN
)

var lightKindNames = [LightKindsN]string{"directional", "point", "spot"}

func (lk LightKinds) String() string {
	if lk < 0 || lk >= LightKindsN {
		return "directional"
	}
	return lightKindNames[lk]
}

// LightKindByName returns the kind with the given persisted name,
// defaulting to Directional.
func LightKindByName(name string) LightKinds {
	for k, nm := range lightKindNames {
		if nm == name {
			return LightKinds(k)
		}
	}
	return Directional
}

// Light is one light source.  Handle is the live derived state used by a
// renderer; it is reconstructed from the photometric parameters and is
// neither persisted nor snapshotted.
type Light struct {
	ID       string
	RemoteID string
	Name     string

	Kind LightKinds

	// Pos is the light position in world coordinates.
	Pos mat32.Vec3

	// Target is the aim point for directional and spot lights; nil means
	// the origin.
	Target *mat32.Vec3

	// Intensity is the brightness multiplier.
	Intensity float32

	// Color is the light color at full intensity.
	Color color.RGBA

	// Distance and Decay control point/spot attenuation.
	Distance float32
	Decay    float32

	// Angle is the spot cone angle in degrees, Penumbra its soft fraction.
	Angle    float32
	Penumbra float32

	Visible    bool
	CastShadow bool

	// Handle is the live derived light state; rebuilt, never copied.
	Handle *LightHandle `copier:"-"`
}

// LightHandle is the derived live state of a light, reconstructed from
// its parameters by [Light.Rebuild].
type LightHandle struct {

	// Dir is the normalized direction from position to target.
	Dir mat32.Vec3

	// CosAngle is the cosine of the spot cutoff angle.
	CosAngle float32
}

// Rebuild reconstructs the live handle from the light's parameters.
// It is called after creation, parameter updates, and history restores
// (handles are excluded from snapshots).
func (lt *Light) Rebuild() {
	h := &LightHandle{}
	tgt := mat32.Vec3{}
	if lt.Target != nil {
		tgt = *lt.Target
	}
	dir := tgt.Sub(lt.Pos)
	if dir.Length() > 0 {
		h.Dir = dir.Normal()
	} else {
		h.Dir = mat32.V3(0, -1, 0)
	}
	if lt.Kind == Spot {
		h.CosAngle = mat32.Cos(mat32.DegToRad(lt.Angle))
	}
	lt.Handle = h
}
