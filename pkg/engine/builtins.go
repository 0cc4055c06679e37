package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/workspace"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a workspace solid so it can be passed between builtins.
type sexpSolid struct {
	s *workspace.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %q)", s.s.Name())
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRotation wraps a geom.Rotation.
type sexpRotation struct {
	rot geom.Rotation
}

func (r *sexpRotation) SexpString(ps *zygo.PrintState) string {
	axis, deg := r.rot.AxisAngle()
	return fmt.Sprintf("(rot (vec3 %g %g %g) %g)", axis.X, axis.Y, axis.Z, deg)
}
func (r *sexpRotation) Type() *zygo.RegisteredType { return nil }

// sexpPlacement wraps a geom.Placement.
type sexpPlacement struct {
	pl geom.Placement
}

func (p *sexpPlacement) SexpString(ps *zygo.PrintState) string {
	b := p.pl.Base
	return fmt.Sprintf("(at %g %g %g)", b.X, b.Y, b.Z)
}
func (p *sexpPlacement) Type() *zygo.RegisteredType { return nil }

// sexpEdge wraps an edge selector built by `edge`.
type sexpEdge struct {
	sel graph.EdgeSelector
}

func (e *sexpEdge) SexpString(ps *zygo.PrintState) string {
	if e.sel.Size2 != 0 {
		return fmt.Sprintf("(edge %d %g %g)", e.sel.Index, e.sel.Size1, e.sel.Size2)
	}
	return fmt.Sprintf("(edge %d %g)", e.sel.Index, e.sel.Size1)
}
func (e *sexpEdge) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// name pops a leading string literal, the solid's name, off the
// positional arguments.
func (a *kwArgs) name() string {
	if len(a.positional) == 0 {
		return ""
	}
	if str, ok := a.positional[0].(*zygo.SexpStr); ok {
		a.positional = a.positional[1:]
		return str.S
	}
	return ""
}

// float returns keyword key as a number, or def when absent.
func (a kwArgs) float(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// placement returns the :at keyword, or the identity.
func (a kwArgs) placement() (geom.Placement, error) {
	v, ok := a.kw["at"]
	if !ok {
		return geom.Identity(), nil
	}
	pl, err := toPlacement(v)
	if err != nil {
		return geom.Placement{}, fmt.Errorf("at: %w", err)
	}
	return pl, nil
}

// floats converts the positional arguments to numbers.
func (a kwArgs) floats(op string, names ...string) ([]float64, error) {
	if len(a.positional) < len(names) {
		return nil, fmt.Errorf("%s requires %s", op, strings.Join(names, ", "))
	}
	out := make([]float64, len(names))
	for i, n := range names {
		f, err := toFloat64(a.positional[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, n, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats must be whole.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	return int(f), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a vec3, or a keyword :x, :y or :z, to a direction.
func toAxis(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("expected axis (:x, :y, :z or a vec3): %w", err)
	}
	switch name {
	case "x":
		return geom.XAxis, nil
	case "y":
		return geom.YAxis, nil
	case "z":
		return geom.ZAxis, nil
	}
	return geom.Vec3{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toSolid extracts a solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*workspace.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPlacement accepts a placement, or a vec3 meaning a pure translation.
func toPlacement(s zygo.Sexp) (geom.Placement, error) {
	switch v := s.(type) {
	case *sexpPlacement:
		return v.pl, nil
	case *sexpVec3:
		return geom.Translation(v.vec), nil
	}
	return geom.Placement{}, fmt.Errorf("expected placement, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands lists among args.
func flatten(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err == nil {
				out = append(out, flatten(items)...)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func toSolids(args []zygo.Sexp) ([]*workspace.Solid, error) {
	items := flatten(args)
	out := make([]*workspace.Solid, len(items))
	for i, a := range items {
		s, err := toSolid(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// session is the state one evaluation shares between builtins.
type session struct {
	ws     *workspace.Workspace
	params map[string]float64
	used   map[string]bool

	// failed is the last workspace error, kept so callers can match its
	// kind after zygomys flattens it into a message.
	failed error
}

func (ss *session) result(s *workspace.Solid, err error) (zygo.Sexp, error) {
	if err != nil {
		ss.failed = err
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: s}, nil
}

// registerBuiltins installs the construction builtins into a zygomys
// environment. The builtins build solids in the session's workspace.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ss *session) {
	ws := ss.ws

	// -----------------------------------------------------------------------
	// (param "wall" 1.2)
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("param requires a name and a default value")
		}
		key, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: name: %w", err)
		}
		def, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param %s: default: %w", key, err)
		}
		ss.used[key] = true
		if v, ok := ss.params[key]; ok {
			return &zygo.SexpFloat{Val: v}, nil
		}
		return &zygo.SexpFloat{Val: def}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		pa := kwArgs{positional: args}
		v, err := pa.floats("vec3", "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: geom.V3(v[0], v[1], v[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (rot :z 90) or (rot (vec3 1 1 0) 45)
	// -----------------------------------------------------------------------
	env.AddFunction("rot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rot requires an axis and an angle in degrees")
		}
		axis, err := toAxis(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: axis: %w", err)
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: angle: %w", err)
		}
		return &sexpRotation{rot: geom.NewRotation(axis, deg)}, nil
	})

	// -----------------------------------------------------------------------
	// (at 10 0 5 :rot (rot :x 90)) or (at (vec3 10 0 5))
	// -----------------------------------------------------------------------
	env.AddFunction("at", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var base geom.Vec3
		switch len(pa.positional) {
		case 0:
		case 1:
			v, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("at: %w", err)
			}
			base = v
		default:
			v, err := pa.floats("at", "x", "y", "z")
			if err != nil {
				return zygo.SexpNull, err
			}
			base = geom.V3(v[0], v[1], v[2])
		}
		pl := geom.Translation(base)
		if v, ok := pa.kw["rot"]; ok {
			r, ok := v.(*sexpRotation)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("at: rot: expected rotation, got %T", v)
			}
			pl.Rotation = r.rot
		}
		return &sexpPlacement{pl: pl}, nil
	})

	// -----------------------------------------------------------------------
	// (box "body" 90 70 22 :at (at 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		v, err := pa.floats("box", "length", "width", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return ss.result(ws.MakeBox(n, v[0], v[1], v[2], pl))
	})

	// -----------------------------------------------------------------------
	// (cylinder "peg" 3 10 :at (at 5 5 0))
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		v, err := pa.floats("cylinder", "radius", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return ss.result(ws.MakeCylinder(n, v[0], v[1], pl))
	})

	// -----------------------------------------------------------------------
	// (prism "hex" 6 3 1.2) or (prism "hex" 6 :inradius 2.6 :height 1.2)
	// -----------------------------------------------------------------------
	env.AddFunction("prism", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("prism requires a number of sides")
		}
		sides, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: sides: %w", err)
		}
		spec := workspace.PrismSpec{Sides: sides}
		if len(pa.positional) >= 3 {
			v, err := kwArgs{positional: pa.positional[1:]}.floats("prism", "circumradius", "height")
			if err != nil {
				return zygo.SexpNull, err
			}
			spec.Circumradius, spec.Height = v[0], v[1]
		}
		if spec.Circumradius, err = pa.float("r", spec.Circumradius); err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: %w", err)
		}
		if spec.Inradius, err = pa.float("inradius", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: %w", err)
		}
		if spec.Height, err = pa.float("height", spec.Height); err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: %w", err)
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: %w", err)
		}
		return ss.result(ws.MakePrism(n, spec, pl))
	})

	// -----------------------------------------------------------------------
	// (wedge "clip" :xmax 20 :ymax 3 :zmax 8.2 :x2min 0 :x2max 0 :z2max 8.2)
	// -----------------------------------------------------------------------
	env.AddFunction("wedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		spec := workspace.DefaultWedge()
		fields := []struct {
			key string
			dst *float64
		}{
			{"xmin", &spec.Xmin}, {"ymin", &spec.Ymin}, {"zmin", &spec.Zmin},
			{"z2min", &spec.Z2min}, {"x2min", &spec.X2min},
			{"xmax", &spec.Xmax}, {"ymax", &spec.Ymax}, {"zmax", &spec.Zmax},
			{"z2max", &spec.Z2max}, {"x2max", &spec.X2max},
		}
		for _, f := range fields {
			v, err := pa.float(f.key, *f.dst)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
			}
			*f.dst = v
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
		}
		return ss.result(ws.MakeWedge(n, spec, pl))
	})

	// -----------------------------------------------------------------------
	// (ellipsoid "dome" 2 4 3 :angle1 0)
	// -----------------------------------------------------------------------
	env.AddFunction("ellipsoid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		v, err := pa.floats("ellipsoid", "radius1", "radius2")
		if err != nil {
			return zygo.SexpNull, err
		}
		spec := workspace.DefaultEllipsoid(v[0], v[1], 0)
		if len(pa.positional) > 2 {
			if spec.R3, err = toFloat64(pa.positional[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipsoid: radius3: %w", err)
			}
		}
		for key, dst := range map[string]*float64{"angle1": &spec.Angle1, "angle2": &spec.Angle2, "angle3": &spec.Angle3} {
			if *dst, err = pa.float(key, *dst); err != nil {
				return zygo.SexpNull, fmt.Errorf("ellipsoid: %w", err)
			}
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ellipsoid: %w", err)
		}
		return ss.result(ws.MakeEllipsoid(n, spec, pl))
	})

	// -----------------------------------------------------------------------
	// (extrude "bar" (list 0 0 4 0 4 4 0 4) :distance 6 :dir (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires a profile")
		}
		coords := flatten(pa.positional[:1])
		if len(coords)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("extrude: profile needs x y pairs, got %d numbers", len(coords))
		}
		profile := workspace.Profile{Points: make([]geom.Vec2, 0, len(coords)/2)}
		for i := 0; i < len(coords); i += 2 {
			x, err := toFloat64(coords[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: profile: %w", err)
			}
			y, err := toFloat64(coords[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: profile: %w", err)
			}
			profile.Points = append(profile.Points, geom.V2(x, y))
		}
		dist, err := pa.float("distance", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		if profile.Placement, err = pa.placement(); err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		// Without :dir the profile is swept along its own normal.
		dir := profile.Placement.ApplyVector(geom.ZAxis)
		if v, ok := pa.kw["dir"]; ok {
			if dir, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: dir: %w", err)
			}
		}
		return ss.result(ws.Extrude(n, profile, dir, dist))
	})

	// -----------------------------------------------------------------------
	// (solid "body")
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a name argument")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: name: %w", err)
		}
		s := ws.Lookup(n)
		if s == nil {
			return zygo.SexpNull, fmt.Errorf("solid: no solid named %q", n)
		}
		return &sexpSolid{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (place "moved" body (at 0 0 19))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a solid")
		}
		src, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		pl, err := pa.placement()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if len(pa.positional) > 1 {
			if pl, err = toPlacement(pa.positional[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: %w", err)
			}
		}
		return ss.result(ws.Place(n, src, pl))
	})

	// -----------------------------------------------------------------------
	// (fuse "pattern" a b c) or (fuse "pattern" (list a b c))
	// -----------------------------------------------------------------------
	env.AddFunction("fuse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		solids, err := toSolids(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fuse: %w", err)
		}
		return ss.result(ws.Fuse(n, solids...))
	})

	// -----------------------------------------------------------------------
	// (cut "cup" body hole)
	// -----------------------------------------------------------------------
	env.AddFunction("cut", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("cut requires a base and a tool, got %d arguments", len(pa.positional))
		}
		solids, err := toSolids(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		return ss.result(ws.Cut(n, solids[0], solids[1]))
	})

	// -----------------------------------------------------------------------
	// (mirror "cap" src :plane (at 0 0 0 :rot (rot :z 90)))
	// -----------------------------------------------------------------------
	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("mirror requires one solid")
		}
		src, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mirror: %w", err)
		}
		plane := geom.Identity()
		if v, ok := pa.kw["plane"]; ok {
			if plane, err = toPlacement(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror: plane: %w", err)
			}
		}
		return ss.result(ws.Mirror(n, src, plane))
	})

	// -----------------------------------------------------------------------
	// (edge 3 1.5) or (edge 1 1 5)
	// -----------------------------------------------------------------------
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("edge requires an index and one or two sizes")
		}
		idx, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: index: %w", err)
		}
		sel := graph.EdgeSelector{Index: idx}
		if sel.Size1, err = toFloat64(args[1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: size: %w", err)
		}
		if len(args) == 3 {
			if sel.Size2, err = toFloat64(args[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("edge: size2: %w", err)
			}
		}
		return &sexpEdge{sel: sel}, nil
	})

	feature := func(op string, apply func(string, *workspace.Solid, []graph.EdgeSelector) (*workspace.Solid, error)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			n := pa.name()
			if len(pa.positional) < 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid", op)
			}
			base, err := toSolid(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			var edges []graph.EdgeSelector
			for _, a := range flatten(pa.positional[1:]) {
				e, ok := a.(*sexpEdge)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("%s: expected edge, got %T (%s)", op, a, a.SexpString(nil))
				}
				edges = append(edges, e.sel)
			}
			if v, ok := pa.kw["edges"]; ok {
				size, err := pa.float("size", 0)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
				}
				items, err := sexpListToSlice(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: edges: %w", op, err)
				}
				for _, it := range items {
					idx, err := toInt(it)
					if err != nil {
						return zygo.SexpNull, fmt.Errorf("%s: edges: %w", op, err)
					}
					edges = append(edges, workspace.Edge(idx, size))
				}
			}
			return ss.result(apply(n, base, edges))
		}
	}

	// (fillet "rounded" body :edges (list 1 3 5 7) :size 3)
	env.AddFunction("fillet", feature("fillet", ws.Fillet))
	// (chamfer "lid" rounded (edge 3 1) (edge 9 1))
	env.AddFunction("chamfer", feature("chamfer", ws.Chamfer))

	// -----------------------------------------------------------------------
	// (ortho-array "holes" hex :counts (list 3 4 1) :spacing (vec3 12 6 0))
	//
	// Registered as "ortho_array"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("ortho_array", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := pa.name()
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("ortho-array requires one solid")
		}
		src, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ortho-array: %w", err)
		}
		spec := workspace.ArraySpec{Counts: [3]int{1, 1, 1}}
		if v, ok := pa.kw["counts"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil || len(items) != 3 {
				return zygo.SexpNull, fmt.Errorf("ortho-array: counts needs three integers")
			}
			for i, it := range items {
				if spec.Counts[i], err = toInt(it); err != nil {
					return zygo.SexpNull, fmt.Errorf("ortho-array: counts: %w", err)
				}
			}
		}
		if v, ok := pa.kw["spacing"]; ok {
			sp, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ortho-array: spacing: %w", err)
			}
			spec.Spacing = workspace.GridSpacing(sp.X, sp.Y, sp.Z)
		}
		if v, ok := pa.kw["base"]; ok {
			if spec.Base, err = toPlacement(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ortho-array: base: %w", err)
			}
		}
		return ss.result(ws.OrthoArray(n, src, spec))
	})

	// -----------------------------------------------------------------------
	// (edge-count rounded)
	// -----------------------------------------------------------------------
	env.AddFunction("edge_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("edge-count requires one solid")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(s.EdgeCount())}, nil
	})
}
