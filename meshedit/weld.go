// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package meshedit implements direct vertex and edge editing of mesh
// geometry.  Generated meshes duplicate coincident vertices so faces
// keep sharp normals; editing treats vertices within [WeldEpsilon] of
// each other as one logical vertex, so dragging a box corner moves all
// three duplicates and the solid never tears open.
package meshedit

import (
	"goki.dev/mat32/v2"

	"sceneforge/mesh"
)

// WeldEpsilon is the coincidence distance: vertices closer than this
// along every axis belong to the same weld group.
const WeldEpsilon = 1e-4

// Welds partitions a mesh's vertices into groups of coincident
// vertices.  It indexes a fixed vertex snapshot; rebuild after any
// operation that changes the vertex count.
type Welds struct {

	// group[i] is the weld group id of vertex i.
	group []int

	// members[g] lists the vertex indices in group g, ascending.
	members [][]int
}

// BuildWelds computes the weld groups of the mesh's current vertices
// using a spatial hash on cells of [WeldEpsilon] size.
func BuildWelds(ms *mesh.Mesh) *Welds {
	nv := ms.NumVertex()
	uf := newUnionFind(nv)

	type cell struct{ x, y, z int32 }
	grid := make(map[cell][]int, nv)
	quant := func(v float32) int32 {
		return int32(mat32.Floor(v / WeldEpsilon))
	}
	for i := 0; i < nv; i++ {
		v := ms.Vertex(i)
		c := cell{quant(v.X), quant(v.Y), quant(v.Z)}
		// coincident vertices can straddle a cell boundary, so probe
		// the 27-cell neighborhood
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					nb := cell{c.x + dx, c.y + dy, c.z + dz}
					for _, j := range grid[nb] {
						if coincident(v, ms.Vertex(j)) {
							uf.union(i, j)
						}
					}
				}
			}
		}
		grid[c] = append(grid[c], i)
	}

	ws := &Welds{group: make([]int, nv)}
	gids := map[int]int{}
	for i := 0; i < nv; i++ {
		root := uf.find(i)
		g, ok := gids[root]
		if !ok {
			g = len(ws.members)
			gids[root] = g
			ws.members = append(ws.members, nil)
		}
		ws.group[i] = g
		ws.members[g] = append(ws.members[g], i)
	}
	return ws
}

// NumGroups returns the number of weld groups.
func (ws *Welds) NumGroups() int {
	return len(ws.members)
}

// GroupOf returns the weld group id of vertex vi.
func (ws *Welds) GroupOf(vi int) int {
	return ws.group[vi]
}

// Members returns the vertex indices in group g.  The slice is owned
// by the Welds and must not be modified.
func (ws *Welds) Members(g int) []int {
	return ws.members[g]
}

func coincident(a, b mat32.Vec3) bool {
	return mat32.Abs(a.X-b.X) < WeldEpsilon &&
		mat32.Abs(a.Y-b.Y) < WeldEpsilon &&
		mat32.Abs(a.Z-b.Z) < WeldEpsilon
}

// unionFind is a plain union-find with path halving.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri != rj {
		uf.parent[rj] = ri
	}
}
