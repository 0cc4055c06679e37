package parts

import (
	"fmt"

	"github.com/chazu/printparts/pkg/geom"
)

// FitError reports a plug that does not fit its slot with the required
// clearance.
type FitError struct {
	Axis      string
	Plug      float64
	Slot      float64
	Tolerance float64
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit along %s: plug %g + 2×%g exceeds slot %g", e.Axis, e.Plug, e.Tolerance, e.Slot)
}

// NewFitError creates a new fit error.
func NewFitError(axis string, plug, slot, tol float64) *FitError {
	return &FitError{
		Axis:      axis,
		Plug:      plug,
		Slot:      slot,
		Tolerance: tol,
	}
}

// CheckFit verifies plug + 2·tol <= slot on every mating axis. Axes where
// slot is zero do not mate and are skipped.
func CheckFit(plug, slot geom.Vec3, tol float64) error {
	axes := []struct {
		name       string
		plug, slot float64
	}{
		{"x", plug.X, slot.X},
		{"y", plug.Y, slot.Y},
		{"z", plug.Z, slot.Z},
	}
	for _, a := range axes {
		if a.slot == 0 {
			continue
		}
		if a.plug+2*tol > a.slot+geom.Eps {
			return NewFitError(a.name, a.plug, a.slot, tol)
		}
	}
	return nil
}
