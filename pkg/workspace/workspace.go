// Package workspace is the construction pipeline: primitives, booleans,
// edge features and arrays built through an explicit Workspace handle.
//
// Every step validates its arguments, realizes its result through the
// geometry kernel and appends one node to the workspace's construction
// tree. Steps never modify their inputs.
package workspace

import (
	"fmt"
	"log/slog"

	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/google/uuid"
)

// Collision records a name taken over by a later solid.
type Collision struct {
	Name     string
	Previous graph.NodeID
	Current  graph.NodeID
}

// Workspace owns the solids of one construction run. It is not safe for
// concurrent use; independent workspaces share nothing.
type Workspace struct {
	id         uuid.UUID
	name       string
	kernel     kernel.Kernel
	graph      *graph.DesignGraph
	solids     map[graph.NodeID]*Solid
	logger     *slog.Logger
	seq        int
	strict     bool
	collisions []Collision
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the workspace logger. Without it the package logger is
// used.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithStrict makes name collisions fail with ErrNameCollision.
func WithStrict(strict bool) Option {
	return func(w *Workspace) { w.strict = strict }
}

// New creates an empty workspace realizing geometry through k.
func New(name string, k kernel.Kernel, opts ...Option) *Workspace {
	w := &Workspace{
		id:     uuid.New(),
		name:   name,
		kernel: k,
		graph:  graph.New(),
		solids: make(map[graph.NodeID]*Solid),
		logger: Logger(),
	}
	for _, o := range opts {
		o(w)
	}
	w.logger = w.logger.With("workspace", name)
	return w
}

// ID returns the workspace's unique id.
func (w *Workspace) ID() uuid.UUID { return w.id }

// Name returns the workspace name.
func (w *Workspace) Name() string { return w.name }

// Kernel returns the geometry kernel.
func (w *Workspace) Kernel() kernel.Kernel { return w.kernel }

// Graph returns the construction tree. Callers must not modify it.
func (w *Workspace) Graph() *graph.DesignGraph { return w.graph }

// Strict switches name collisions between warnings and errors.
func (w *Workspace) Strict(on bool) { w.strict = on }

// Collisions lists the names taken over by later solids.
func (w *Workspace) Collisions() []Collision {
	return append([]Collision(nil), w.collisions...)
}

// Lookup returns the solid currently holding name, or nil.
func (w *Workspace) Lookup(name string) *Solid {
	n := w.graph.Lookup(name)
	if n == nil {
		return nil
	}
	return w.solids[n.ID]
}

// Solid returns the solid built by the given node, or nil.
func (w *Workspace) Solid(id graph.NodeID) *Solid {
	return w.solids[id]
}

// Solids returns every solid in construction order.
func (w *Workspace) Solids() []*Solid {
	out := make([]*Solid, 0, len(w.solids))
	for _, n := range w.graph.Ordered() {
		out = append(out, w.solids[n.ID])
	}
	return out
}

// Visible returns the solids no later step consumed, in construction order.
func (w *Workspace) Visible() []*Solid {
	var out []*Solid
	for _, s := range w.Solids() {
		if s.Visible() {
			out = append(out, s)
		}
	}
	return out
}

// Reset discards every solid, keeping the workspace id and settings.
func (w *Workspace) Reset() {
	w.graph = graph.New()
	w.solids = make(map[graph.NodeID]*Solid)
	w.seq = 0
	w.collisions = nil
}

// own checks that every input is a live solid of this workspace.
func (w *Workspace) own(inputs ...*Solid) error {
	for _, s := range inputs {
		if s == nil {
			return invalidf("nil solid")
		}
		if s.ws != w || w.solids[s.id] != s {
			return invalidf("solid %q does not belong to workspace %q", s.name, w.name)
		}
	}
	return nil
}

// build realizes n from inputs and records it. kind names the step in
// generated names and errors.
func (w *Workspace) build(kind, name string, n *graph.Node, lineage string, inputs ...*Solid) (*Solid, error) {
	if err := w.own(inputs...); err != nil {
		return nil, NewOpError(kind, name, err)
	}
	if name == "" {
		name = w.autoName(kind)
	}
	if w.strict && w.graph.Lookup(name) != nil {
		return nil, NewOpError(kind, name, ErrNameCollision)
	}

	shapes := make([]kernel.Solid, len(inputs))
	for i, in := range inputs {
		shapes[i] = in.shape
		n.Inputs = append(n.Inputs, in.id)
	}
	shape, err := realizeNode(w.kernel, n, shapes)
	if err != nil {
		return nil, NewOpError(kind, name, err)
	}

	w.seq++
	n.ID = graph.NewNodeID(fmt.Sprintf("%s/%s/%s#%d", w.id, kind, name, w.seq))
	n.Name = name
	if prev, collided := w.graph.AddNode(n); collided {
		w.collisions = append(w.collisions, Collision{Name: name, Previous: prev, Current: n.ID})
		w.logger.Warn("name collision, later solid wins", "name", name, "previous", prev.Short())
	}
	for _, in := range inputs {
		w.graph.Hide(in.id)
	}

	s := &Solid{
		ws:        w,
		id:        n.ID,
		name:      name,
		kind:      kind,
		placement: n.Placement,
		lineage:   lineage,
		shape:     shape,
	}
	w.solids[n.ID] = s
	w.logger.Debug("construction step",
		"op", kind,
		"name", name,
		"edges", s.EdgeCount(),
		"lineage", lineage,
	)
	return s, nil
}

// autoName returns "<kind><n>" for the first n past the step count that no
// solid in the workspace already answers to.
func (w *Workspace) autoName(kind string) string {
	for n := w.seq + 1; ; n++ {
		name := fmt.Sprintf("%s%d", kind, n)
		if w.graph.Lookup(name) == nil {
			return name
		}
	}
}
