// Package tessellate turns the visible results of a construction tree into
// triangle meshes using a geometry kernel. One mesh is produced per root.
package tessellate

import (
	"context"
	"fmt"

	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds how many roots are meshed at once.
const maxParallel = 4

// Tessellate meshes every visible root of g from its realized solid. Roots
// no other node consumes are the finished parts; hidden nodes are skipped.
// The tessellator is read-only and never mutates the graph.
func Tessellate(ctx context.Context, g *graph.DesignGraph, solids map[graph.NodeID]kernel.Solid, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var roots []graph.NodeID
	for _, n := range g.Roots() {
		if g.Visible(n.ID) {
			roots = append(roots, n.ID)
		}
	}
	return Nodes(ctx, g, roots, solids, k)
}

// Nodes meshes the given nodes of g in order, whether or not a later step
// consumed them. A host delivering an explicit part list uses it so every
// listed part gets a mesh.
func Nodes(ctx context.Context, g *graph.DesignGraph, ids []graph.NodeID, solids map[graph.NodeID]kernel.Solid, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil || len(ids) == 0 {
		return nil, nil
	}
	nodes := make([]*graph.Node, len(ids))
	for i, id := range ids {
		if nodes[i] = g.Get(id); nodes[i] == nil {
			return nil, fmt.Errorf("tessellate: node %s is not in the graph", id.Short())
		}
	}

	meshes := make([]*kernel.Mesh, len(nodes))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallel)
	for i, n := range nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := meshNode(k, n, solids[n.ID])
			if err != nil {
				return fmt.Errorf("tessellate: part %s: %w", partName(n), err)
			}
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

func meshNode(k kernel.Kernel, n *graph.Node, s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("node %s was not realized", n.ID.Short())
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.PartName = partName(n)
	return mesh, nil
}

// partName prefers the node's name and falls back to its short ID.
func partName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
