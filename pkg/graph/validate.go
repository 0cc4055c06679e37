package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks
// recomputation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks recomputation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all Tier 1 structural validation checks on the graph
// and returns a slice of validation findings. An empty slice means the
// graph is valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateOrder(g)...)
	errs = append(errs, validateNames(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	// Tier 1: structural validation.
	tier1 := Validate(g)

	// Tier 2: geometric validation.
	tier2Errs, tier2Warnings := validateGeometry(g)

	// Separate Tier 1 findings into errors and warnings.
	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, in := range node.Inputs {
			if visit(in) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for _, id := range g.Order {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every input NodeID points to a node that
// actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Ordered() {
		for _, in := range node.Inputs {
			if _, ok := g.Nodes[in]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("input reference %s does not exist", in.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Data == nil {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node has no data", node.Kind),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateArity checks each node's input count against its kind and that
// no node consumes the same input twice.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Ordered() {
		n := len(node.Inputs)
		want := node.Kind.arity()
		switch {
		case want < 0 && n < 2:
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s needs at least 2 inputs, has %d", node.Kind, n),
				Severity: SeverityError,
			})
		case want >= 0 && n != want:
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s needs %d inputs, has %d", node.Kind, want, n),
				Severity: SeverityError,
			})
		}

		seen := make(map[NodeID]bool, n)
		for _, in := range node.Inputs {
			if seen[in] {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("input %s used twice", in.Short()),
					Severity: SeverityError,
				})
			}
			seen[in] = true
		}
	}

	return errs
}

// validateOrder checks that every input was added before its consumer, so
// replaying nodes in insertion order always has its inputs ready.
func validateOrder(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	pos := make(map[NodeID]int, len(g.Order))
	for i, id := range g.Order {
		pos[id] = i
	}
	for i, id := range g.Order {
		node := g.Nodes[id]
		if node == nil {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "order entry has no node",
				Severity: SeverityError,
			})
			continue
		}
		for _, in := range node.Inputs {
			if p, ok := pos[in]; ok && p >= i {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("input %s is added after its consumer", in.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	if len(pos) != len(g.Nodes) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("order lists %d nodes, graph holds %d", len(pos), len(g.Nodes)),
			Severity: SeverityError,
		})
	}

	return errs
}

// validateNames checks that every entry in NameIndex points to an existing
// node carrying that name, and reports names that were taken over by a
// later node. A takeover is a warning: the later node wins.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		node, ok := g.Nodes[id]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if node.Name != name {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("name index entry %q points at node named %q", name, node.Name),
				Severity: SeverityError,
			})
		}
	}

	counts := make(map[string]int)
	for _, node := range g.Ordered() {
		if node.Name != "" {
			counts[node.Name]++
		}
	}
	for _, node := range g.Ordered() {
		if node.Name == "" || counts[node.Name] < 2 || g.NameIndex[node.Name] != node.ID {
			continue
		}
		errs = append(errs, ValidationError{
			NodeID:   node.ID,
			Message:  fmt.Sprintf("name %q is shared by %d nodes; the latest wins", node.Name, counts[node.Name]),
			Severity: SeverityWarning,
		})
	}

	return errs
}
