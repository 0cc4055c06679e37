package workspace

import (
	"errors"
	"fmt"

	"github.com/chazu/printparts/pkg/kernel"
)

var (
	// ErrInvalidParameter reports a non-positive dimension, too few sides,
	// an empty edge list or any other argument a step cannot accept.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEdgeIndexOutOfRange reports an edge index outside 1..EdgeCount.
	ErrEdgeIndexOutOfRange = errors.New("edge index out of range")

	// ErrGeometryInfeasible reports a feature the kernel cannot carry.
	ErrGeometryInfeasible = kernel.ErrGeometryInfeasible

	// ErrNameCollision reports a name already used in the workspace. It is
	// only returned in strict mode; otherwise the later solid wins.
	ErrNameCollision = errors.New("name collision")

	// ErrStaleEdgeTable reports an edge table applied to a solid built by a
	// different construction sequence than the table was written for.
	ErrStaleEdgeTable = errors.New("stale edge table")
)

// OpError records the workspace step that failed.
type OpError struct {
	Op   string // fillet, cut, box, ...
	Name string // requested solid name
	Err  error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new step error.
func NewOpError(op, name string, err error) *OpError {
	return &OpError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidParameter)...)
}
