// Package host realizes finished constructions: it owns workspaces,
// replays their construction trees through the kernel and tessellates the
// parts they deliver.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/chazu/printparts/pkg/tessellate"
	"github.com/chazu/printparts/pkg/workspace"
	"github.com/google/uuid"
)

// ErrReplayMismatch reports a replayed solid whose edge enumeration or
// bounds differ from the eagerly built one.
var ErrReplayMismatch = errors.New("replay does not reproduce the construction")

// colorPalette assigns distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Host is the surface construction scripts hand their results to.
type Host interface {
	CreateOrResetWorkspace(name string) *workspace.Workspace
	Register(ws *workspace.Workspace, s *workspace.Solid) error
	Recompute(ctx context.Context, ws *workspace.Workspace) (*Document, error)
	FitView(ws *workspace.Workspace) geom.Box
}

// Part summarizes one delivered solid.
type Part struct {
	Name      string         `json:"name" yaml:"name"`
	Kind      string         `json:"kind" yaml:"kind"`
	Lineage   string         `json:"lineage" yaml:"lineage"`
	Edges     int            `json:"edges" yaml:"edges"`
	Bounds    geom.Box       `json:"bounds" yaml:"bounds"`
	Placement geom.Placement `json:"placement" yaml:"placement"`
}

// MeshData is a serializable mesh with its display color.
type MeshData struct {
	Vertices []float32 `json:"vertices" yaml:"-"`
	Normals  []float32 `json:"normals" yaml:"-"`
	Indices  []uint32  `json:"indices" yaml:"-"`
	PartName string    `json:"partName" yaml:"partName"`
	Color    string    `json:"color" yaml:"color"`
}

// Document is the realized result of one workspace.
type Document struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Workspace string     `json:"workspace" yaml:"workspace"`
	Parts     []Part     `json:"parts" yaml:"parts"`
	Meshes    []MeshData `json:"meshes,omitempty" yaml:"meshes,omitempty"`
	Bounds    geom.Box   `json:"bounds" yaml:"bounds"`
	Warnings  []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Headless is a Host without a display. It is safe for concurrent use;
// each workspace is still driven by one goroutine at a time.
type Headless struct {
	kernel kernel.Kernel
	logger *slog.Logger
	strict bool
	meshes bool

	mu         sync.Mutex
	workspaces map[string]*workspace.Workspace
	registered map[*workspace.Workspace][]*workspace.Solid
}

// Option configures a Headless host.
type Option func(*Headless)

// WithLogger sets the logger handed to every workspace.
func WithLogger(l *slog.Logger) Option {
	return func(h *Headless) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStrictNames makes name collisions fail in every workspace.
func WithStrictNames(strict bool) Option {
	return func(h *Headless) { h.strict = strict }
}

// WithMeshes controls whether Recompute tessellates. It is on by default.
func WithMeshes(on bool) Option {
	return func(h *Headless) { h.meshes = on }
}

// NewHeadless returns a host realizing geometry through k.
func NewHeadless(k kernel.Kernel, opts ...Option) *Headless {
	h := &Headless{
		kernel:     k,
		logger:     workspace.Logger(),
		meshes:     true,
		workspaces: make(map[string]*workspace.Workspace),
		registered: make(map[*workspace.Workspace][]*workspace.Solid),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Kernel returns the host's geometry kernel.
func (h *Headless) Kernel() kernel.Kernel { return h.kernel }

// CreateOrResetWorkspace returns the named workspace, emptied.
func (h *Headless) CreateOrResetWorkspace(name string) *workspace.Workspace {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ws, ok := h.workspaces[name]; ok {
		ws.Reset()
		delete(h.registered, ws)
		h.logger.Debug("workspace reset", "workspace", name)
		return ws
	}
	ws := workspace.New(name, h.kernel,
		workspace.WithLogger(h.logger),
		workspace.WithStrict(h.strict),
	)
	h.workspaces[name] = ws
	h.logger.Debug("workspace created", "workspace", name, "id", ws.ID())
	return ws
}

// Register marks s as a part the workspace delivers. Workspaces without
// registered parts deliver every visible solid.
func (h *Headless) Register(ws *workspace.Workspace, s *workspace.Solid) error {
	if s == nil || ws.Solid(s.ID()) != s {
		return fmt.Errorf("register: solid does not belong to workspace %q: %w", ws.Name(), workspace.ErrInvalidParameter)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.registered[ws] {
		if r == s {
			return nil
		}
	}
	h.registered[ws] = append(h.registered[ws], s)
	return nil
}

// parts returns the registered solids, or the visible ones.
func (h *Headless) parts(ws *workspace.Workspace) []*workspace.Solid {
	h.mu.Lock()
	reg := append([]*workspace.Solid(nil), h.registered[ws]...)
	h.mu.Unlock()
	if len(reg) > 0 {
		return reg
	}
	return ws.Visible()
}

// Recompute replays the workspace's construction tree, checks that every
// solid comes out with the same edge count and bounds, and tessellates
// the delivered parts.
func (h *Headless) Recompute(ctx context.Context, ws *workspace.Workspace) (*Document, error) {
	replayed, err := workspace.Replay(ctx, ws.Graph(), h.kernel)
	if err != nil {
		return nil, fmt.Errorf("recompute %q: %w", ws.Name(), err)
	}
	for _, s := range ws.Solids() {
		r := replayed[s.ID()]
		if r == nil {
			return nil, fmt.Errorf("recompute %q: %s missing: %w", ws.Name(), s.Name(), ErrReplayMismatch)
		}
		if got := r.Topology().EdgeCount(); got != s.EdgeCount() {
			return nil, fmt.Errorf("recompute %q: %s has %d edges, built with %d: %w",
				ws.Name(), s.Name(), got, s.EdgeCount(), ErrReplayMismatch)
		}
		if !r.BoundingBox().Near(s.BoundingBox(), 1e-6) {
			return nil, fmt.Errorf("recompute %q: %s bounds %v, built with %v: %w",
				ws.Name(), s.Name(), r.BoundingBox(), s.BoundingBox(), ErrReplayMismatch)
		}
	}

	doc := &Document{
		ID:        uuid.New(),
		Workspace: ws.Name(),
	}
	parts := h.parts(ws)
	if bb := boundsOf(parts); !bb.IsEmpty() {
		doc.Bounds = bb
	}
	ids := make([]graph.NodeID, len(parts))
	for i, s := range parts {
		ids[i] = s.ID()
		doc.Parts = append(doc.Parts, Part{
			Name:      s.Name(),
			Kind:      s.Kind(),
			Lineage:   s.Lineage(),
			Edges:     s.EdgeCount(),
			Bounds:    s.BoundingBox(),
			Placement: s.Placement(),
		})
	}
	for _, c := range ws.Collisions() {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("name %q was taken over by a later solid", c.Name))
	}

	if h.meshes {
		meshes, err := tessellate.Nodes(ctx, ws.Graph(), ids, replayed, h.kernel)
		if err != nil {
			return nil, fmt.Errorf("recompute %q: %w", ws.Name(), err)
		}
		for i, m := range meshes {
			doc.Meshes = append(doc.Meshes, MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				Indices:  m.Indices,
				PartName: m.PartName,
				Color:    colorPalette[i%len(colorPalette)],
			})
		}
	}

	h.logger.Info("recomputed",
		"workspace", ws.Name(),
		"parts", len(doc.Parts),
		"meshes", len(doc.Meshes),
	)
	return doc, nil
}

// FitView returns the bounds of the parts the workspace delivers: the
// registered solids, or every visible one. An empty workspace gives an
// empty box.
func (h *Headless) FitView(ws *workspace.Workspace) geom.Box {
	return boundsOf(h.parts(ws))
}

func boundsOf(solids []*workspace.Solid) geom.Box {
	bb := geom.EmptyBox()
	for _, s := range solids {
		bb = bb.Union(s.BoundingBox())
	}
	return bb
}

var _ Host = (*Headless)(nil)
