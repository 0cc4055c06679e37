// Package parts holds the printable part scripts. Each script declares
// its default parameters and builds its solids in a caller-supplied
// workspace.
package parts

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/chazu/printparts/pkg/workspace"
)

// ErrUnknownPart reports a script name that is not registered.
var ErrUnknownPart = errors.New("unknown part")

// Params maps parameter names to values in millimetres (or plain counts).
type Params map[string]float64

// With returns a copy of p with overrides applied. Keys p does not
// declare and values that are not finite are rejected.
func (p Params) With(overrides map[string]float64) (Params, error) {
	out := maps.Clone(p)
	if out == nil {
		out = Params{}
	}
	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		v := overrides[k]
		if _, ok := p[k]; !ok {
			return nil, fmt.Errorf("parameter %q is not declared: %w", k, workspace.ErrInvalidParameter)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("parameter %q = %g: %w", k, v, workspace.ErrInvalidParameter)
		}
		out[k] = v
	}
	return out, nil
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Script is a named construction sequence.
type Script struct {
	Name        string
	Description string
	Defaults    Params
	Build       func(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error)
}

// Result is the output of one script run.
type Result struct {
	Part   string
	Params Params
	Solids []*workspace.Solid
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Script{}
)

// Register adds s to the registry. It panics on a duplicate name, which
// is a programming error.
func Register(s Script) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[s.Name]; dup {
		panic(fmt.Sprintf("parts: script %q registered twice", s.Name))
	}
	registry[s.Name] = s
}

// Lookup returns the script called name.
func Lookup(name string) (Script, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return Script{}, fmt.Errorf("%q: %w", name, ErrUnknownPart)
	}
	return s, nil
}

// Names returns every registered script name in order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// Build runs the named script in ws with overrides on top of its defaults.
func Build(ws *workspace.Workspace, name string, overrides map[string]float64) (*Result, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	p, err := s.Defaults.With(overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	solids, err := s.Build(ws, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Result{Part: name, Params: p, Solids: solids}, nil
}
