// Package export turns an evaluated scene into triangle meshes and
// writes them to interchange formats. One mesh is produced per named
// solid.
package export

import (
	"github.com/chazu/treenail/pkg/engine"
	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
)

// Meshes tessellates every named solid in the scene. The scene is
// read-only and never mutated. If the scene names specific parts, only
// those are exported. A solid the backend cannot mesh is skipped with a
// warning; empty meshes are dropped silently.
func Meshes(k kernel.Kernel, scene *engine.Scene) ([]*kernel.Mesh, []joint.Warning) {
	if scene == nil {
		return nil, nil
	}

	selected := make(map[string]bool, len(scene.Parts))
	for _, p := range scene.Parts {
		selected[p] = true
	}

	var meshes []*kernel.Mesh
	var warnings []joint.Warning
	for i, ns := range scene.Solids {
		if len(selected) > 0 && !selected[ns.Name] {
			continue
		}
		mesh, err := k.ToMesh(ns.Solid)
		if err != nil {
			warnings = append(warnings, joint.Warning{Stage: "export", Index: i, Err: err})
			continue
		}
		if mesh.IsEmpty() {
			continue
		}
		mesh.PartName = ns.Name
		meshes = append(meshes, mesh)
	}
	return meshes, warnings
}
