package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"honnef.co/go/curve"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
	"github.com/chazu/treenail/pkg/layout"
	"github.com/chazu/treenail/pkg/profile"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Treenail Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: tenon-joint -> tenon_joint
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a scene solid so builtins can pass it around.
type sexpSolid struct {
	name  string
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %q)", s.name)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a geom.Plane for mirroring and projection arguments.
type sexpPlane struct {
	plane geom.Plane
	desc  string
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mirror-plane %s)", p.desc)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

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

// float extracts a required keyword number.
func (a kwArgs) float(op, name string) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return 0, fmt.Errorf("%s: missing :%s", op, name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return f, nil
}

// floatOr extracts an optional keyword number.
func (a kwArgs) floatOr(op, name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return f, nil
}

// intArg extracts a required keyword integer.
func (a kwArgs) intArg(op, name string) (int, error) {
	f, err := a.float(op, name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// str extracts a required keyword string.
func (a kwArgs) str(op, name string) (string, error) {
	v, ok := a.kw[name]
	if !ok {
		return "", fmt.Errorf("%s: missing :%s", op, name)
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return s, nil
}

// solidArg extracts a required keyword solid reference.
func (a kwArgs) solidArg(op, name string) (kernel.Solid, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, fmt.Errorf("%s: missing :%s", op, name)
	}
	s, err := toSolid(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return s, nil
}

// vecOr extracts an optional keyword vec3.
func (a kwArgs) vecOr(op, name string, def geom.Vec3) (geom.Vec3, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return vec, nil
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_x) and plain strings ("x").
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

// toBool extracts a bool from a Sexp. A bare trailing keyword flag
// (SexpNull from parseArgs) counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
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

// toPlane extracts a geom.Plane from a sexpPlane.
func toPlane(s zygo.Sexp) (geom.Plane, error) {
	if v, ok := s.(*sexpPlane); ok {
		return v.plane, nil
	}
	return geom.Plane{}, fmt.Errorf("expected mirror-plane, got %T (%s)", s, s.SexpString(nil))
}

// profilePoint maps a scene vec3 onto the profile plane, dropping Z.
func profilePoint(v geom.Vec3) curve.Point {
	return curve.Pt(v.X, v.Y)
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

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Treenail DSL builtins into a zygomys
// environment. The builtins run the joinery pipelines against the kernel
// and register their outputs in the scene.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable string
// literals and kebab-case operation names match their registered
// underscore forms.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, scene *Scene) {

	// -----------------------------------------------------------------------
	// (precision 0.01)
	// -----------------------------------------------------------------------
	env.AddFunction("precision", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("precision requires exactly 1 argument, got %d", len(args))
		}
		p, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("precision: %w", err)
		}
		if p <= 0 {
			return zygo.SexpNull, fmt.Errorf("precision: %g must be positive", p)
		}
		scene.Precision = p
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: geom.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (mirror-plane :axis :x :at (vec3 0 0 0))
	//
	// :axis names the plane normal; the default is the world YZ plane
	// through the origin.
	// -----------------------------------------------------------------------
	env.AddFunction("mirror_plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		at, err := pa.vecOr("mirror-plane", "at", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, err
		}
		axis := "x"
		if v, ok := pa.kw["axis"]; ok {
			axis, err = toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror-plane: axis: %w", err)
			}
		}

		var plane geom.Plane
		switch axis {
		case "x":
			plane = geom.YZPlane(at)
		case "y":
			plane = geom.XZPlane(at)
		case "z":
			plane = geom.XYPlane(at)
		default:
			return zygo.SexpNull, fmt.Errorf("mirror-plane: invalid axis %q, expected x, y, or z", axis)
		}
		return &sexpPlane{plane: plane, desc: ":axis :" + axis}, nil
	})

	// -----------------------------------------------------------------------
	// (board "name" :size (vec3 100 100 10) :at (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("board", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("board requires a name argument")
		}
		boardName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("board: name: %w", err)
		}

		sizeSexp, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("board: missing :size")
		}
		size, err := toVec3(sizeSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("board: size: %w", err)
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("board: size %s must be positive on every axis", sizeSexp.SexpString(nil))
		}
		at, err := pa.vecOr("board", "at", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, err
		}

		frame := geom.WorldFrame()
		frame.Origin = at
		solid := k.Box(geom.Box{Frame: frame, HalfExtent: size.Scale(0.5)})
		scene.addSolid(boardName, solid)
		return &sexpSolid{name: boardName, solid: solid}, nil
	})

	// -----------------------------------------------------------------------
	// (solid "name")
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a name argument")
		}
		solidName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: name: %w", err)
		}
		s := scene.Solid(solidName)
		if s == nil {
			return zygo.SexpNull, fmt.Errorf("solid: no solid named %q", solidName)
		}
		return &sexpSolid{name: solidName, solid: s}, nil
	})

	// -----------------------------------------------------------------------
	// (place s :by (vec3 10 0 0) :rotate :z :angle 90 :about (vec3 0 0 0))
	//
	// Returns a repositioned copy of the solid; the rotation, if any, is
	// applied before the translation. A named input is re-registered in
	// the scene under its name.
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a solid argument")
		}
		src, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		s := k.Duplicate(src)
		if v, ok := pa.kw["rotate"]; ok {
			axisName, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			var axis geom.Vec3
			switch axisName {
			case "x":
				axis = geom.UnitX
			case "y":
				axis = geom.UnitY
			case "z":
				axis = geom.UnitZ
			default:
				return zygo.SexpNull, fmt.Errorf("place: invalid rotate axis %q, expected x, y, or z", axisName)
			}
			angle, err := pa.float("place", "angle")
			if err != nil {
				return zygo.SexpNull, err
			}
			about, err := pa.vecOr("place", "about", geom.Vec3{})
			if err != nil {
				return zygo.SexpNull, err
			}
			s = k.RotateAbout(s, axis, angle, about)
		}
		if v, ok := pa.kw["by"]; ok {
			delta, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: by: %w", err)
			}
			s = k.Translate(s, delta)
		}

		placed := &sexpSolid{solid: s}
		if ss, ok := pa.positional[0].(*sexpSolid); ok && ss.name != "" {
			placed.name = ss.name
			scene.addSolid(ss.name, s)
		}
		return placed, nil
	})

	// -----------------------------------------------------------------------
	// (tenon-joint :name "leg" :vertical v :horizontal h :edge 8
	//              :thickness 5 :tolerance 0.1 :mirror (mirror-plane ...))
	//
	// Registers "<name>-tenon" and "<name>-mortise" in the scene and
	// returns the tenon.
	// -----------------------------------------------------------------------
	env.AddFunction("tenon_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		jointName, err := pa.str("tenon-joint", "name")
		if err != nil {
			return zygo.SexpNull, err
		}
		vertical, err := pa.solidArg("tenon-joint", "vertical")
		if err != nil {
			return zygo.SexpNull, err
		}
		horizontal, err := pa.solidArg("tenon-joint", "horizontal")
		if err != nil {
			return zygo.SexpNull, err
		}
		thickness, err := pa.float("tenon-joint", "thickness")
		if err != nil {
			return zygo.SexpNull, err
		}
		tolerance, err := pa.float("tenon-joint", "tolerance")
		if err != nil {
			return zygo.SexpNull, err
		}

		var edges []int
		if v, ok := pa.kw["edges"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tenon-joint: edges: %w", err)
			}
			for _, item := range items {
				f, err := toFloat64(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("tenon-joint: edges: %w", err)
				}
				edges = append(edges, int(f))
			}
		} else {
			e, err := pa.intArg("tenon-joint", "edge")
			if err != nil {
				return zygo.SexpNull, err
			}
			edges = []int{e}
		}

		mirrorSexp, ok := pa.kw["mirror"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tenon-joint: missing :mirror")
		}
		mirror, err := toPlane(mirrorSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tenon-joint: mirror: %w", err)
		}

		params := joint.MateParams{
			Vertical:   vertical,
			Horizontal: horizontal,
			Edges:      edges,
			Thickness:  thickness,
			Tolerance:  tolerance,
			Mirror:     mirror,
			Precision:  scene.Precision,
		}
		if v, ok := pa.kw["center"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tenon-joint: center: %w", err)
			}
			params.GrowthCenter = &c
		}

		pair, err := joint.Mate(k, params)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tenon-joint %q: %w", jointName, err)
		}

		scene.addSolid(jointName+"-tenon", pair.Tenon)
		scene.addSolid(jointName+"-mortise", pair.Mortise)
		return &sexpSolid{name: jointName + "-tenon", solid: pair.Tenon}, nil
	})

	// -----------------------------------------------------------------------
	// (lattice-joint :name "grid" :horizontal h
	//                :verticals (list v1 v2) :edge-a 8 :edge-b 9
	//                :thickness 5 :tolerance 0.1
	//                :mirror (mirror-plane ...) :centroid (vec3 0 0 2.5))
	//
	// Registers "<name>-tenon-<i>" per surviving strip and
	// "<name>-mortise"; per-strip failures become scene warnings.
	// -----------------------------------------------------------------------
	env.AddFunction("lattice_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		jointName, err := pa.str("lattice-joint", "name")
		if err != nil {
			return zygo.SexpNull, err
		}
		horizontal, err := pa.solidArg("lattice-joint", "horizontal")
		if err != nil {
			return zygo.SexpNull, err
		}
		vertSexp, ok := pa.kw["verticals"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("lattice-joint: missing :verticals")
		}
		items, err := sexpListToSlice(vertSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lattice-joint: verticals: %w", err)
		}
		verticals := make([]kernel.Solid, 0, len(items))
		for i, item := range items {
			s, err := toSolid(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("lattice-joint: vertical %d: %w", i, err)
			}
			verticals = append(verticals, s)
		}

		edgeA, err := pa.intArg("lattice-joint", "edge-a")
		if err != nil {
			return zygo.SexpNull, err
		}
		edgeB, err := pa.intArg("lattice-joint", "edge-b")
		if err != nil {
			return zygo.SexpNull, err
		}
		thickness, err := pa.float("lattice-joint", "thickness")
		if err != nil {
			return zygo.SexpNull, err
		}
		tolerance, err := pa.float("lattice-joint", "tolerance")
		if err != nil {
			return zygo.SexpNull, err
		}
		centroid, err := pa.vecOr("lattice-joint", "centroid", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, err
		}
		mirrorSexp, ok := pa.kw["mirror"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("lattice-joint: missing :mirror")
		}
		mirror, err := toPlane(mirrorSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lattice-joint: mirror: %w", err)
		}

		res, err := joint.MultiStrip(k, joint.MultiStripParams{
			Horizontal: horizontal,
			Verticals:  verticals,
			EdgeA:      edgeA,
			EdgeB:      edgeB,
			Thickness:  thickness,
			Tolerance:  tolerance,
			Mirror:     mirror,
			Centroid:   centroid,
			Precision:  scene.Precision,
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lattice-joint %q: %w", jointName, err)
		}

		for i, tenon := range res.Tenons {
			scene.addSolid(fmt.Sprintf("%s-tenon-%d", jointName, res.Strips[i]), tenon)
		}
		scene.addSolid(jointName+"-mortise", res.Mortise)
		scene.Warnings = append(scene.Warnings, res.Warnings...)
		return &sexpSolid{name: jointName + "-mortise", solid: res.Mortise}, nil
	})

	// -----------------------------------------------------------------------
	// (slit-joint :name "cross" :a s1 :b s2 :tolerance 0.1 :edge 8)
	//
	// Registers "<name>-a" and "<name>-b"; a failed side comes back
	// uncut with a warning.
	// -----------------------------------------------------------------------
	env.AddFunction("slit_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		jointName, err := pa.str("slit-joint", "name")
		if err != nil {
			return zygo.SexpNull, err
		}
		a, err := pa.solidArg("slit-joint", "a")
		if err != nil {
			return zygo.SexpNull, err
		}
		b, err := pa.solidArg("slit-joint", "b")
		if err != nil {
			return zygo.SexpNull, err
		}
		tolerance, err := pa.float("slit-joint", "tolerance")
		if err != nil {
			return zygo.SexpNull, err
		}
		edge, err := pa.intArg("slit-joint", "edge")
		if err != nil {
			return zygo.SexpNull, err
		}

		res, err := joint.CarveSlits(k, joint.SlitParams{
			A:         a,
			B:         b,
			Tolerance: tolerance,
			Edge:      edge,
			Precision: scene.Precision,
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slit-joint %q: %w", jointName, err)
		}

		scene.addSolid(jointName+"-a", res.A)
		scene.addSolid(jointName+"-b", res.B)
		scene.Warnings = append(scene.Warnings, res.Warnings...)
		return &sexpSolid{name: jointName + "-a", solid: res.A}, nil
	})

	// -----------------------------------------------------------------------
	// (layout :name "flat" :vertical v :horizontal h :at (vec3 0 0 0))
	//
	// Projects both strips onto the XY plane through :at and registers
	// "<name>-vertical" and "<name>-horizontal" curve sets.
	// -----------------------------------------------------------------------
	env.AddFunction("layout", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		layoutName, err := pa.str("layout", "name")
		if err != nil {
			return zygo.SexpNull, err
		}
		vertical, err := pa.solidArg("layout", "vertical")
		if err != nil {
			return zygo.SexpNull, err
		}
		horizontal, err := pa.solidArg("layout", "horizontal")
		if err != nil {
			return zygo.SexpNull, err
		}
		at, err := pa.vecOr("layout", "at", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, err
		}

		res, err := layout.Project(k, vertical, horizontal, geom.XYPlane(at), scene.Precision)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layout %q: %w", layoutName, err)
		}

		scene.addCurves(layoutName+"-vertical", res.Vertical.Closed, res.Vertical.Open)
		scene.addCurves(layoutName+"-horizontal", res.Horizontal.Closed, res.Horizontal.Open)
		scene.Warnings = append(scene.Warnings, res.Warnings...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (unroll :name "skin" :solid s :face 2)
	// -----------------------------------------------------------------------
	env.AddFunction("unroll", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		unrollName, err := pa.str("unroll", "name")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := pa.solidArg("unroll", "solid")
		if err != nil {
			return zygo.SexpNull, err
		}
		face, err := pa.intArg("unroll", "face")
		if err != nil {
			return zygo.SexpNull, err
		}

		outline, err := layout.UnrollFace(k, s, face, scene.Precision)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unroll %q: %w", unrollName, err)
		}

		scene.addCurves(unrollName, []kernel.Curve{outline}, nil)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (hook-profile :name "hanger" :width 40 :height 60
	//               :step-offset 5 :step-width 12 :step-height 20
	//               :slant-base (vec3 52 0 0) :slant-rise 15
	//               :mirror true)
	// -----------------------------------------------------------------------
	env.AddFunction("hook_profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		profName, err := pa.str("hook-profile", "name")
		if err != nil {
			return zygo.SexpNull, err
		}

		var base profile.BaseSource
		if v, ok := pa.kw["outline"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hook-profile: outline: %w", err)
			}
			loop := make(profile.Loop, 0, len(items))
			for i, item := range items {
				vec, err := toVec3(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("hook-profile: outline point %d: %w", i, err)
				}
				loop = append(loop, profilePoint(vec))
			}
			base = profile.ExplicitBase{Outline: loop}
		} else {
			width, err := pa.float("hook-profile", "width")
			if err != nil {
				return zygo.SexpNull, err
			}
			height, err := pa.float("hook-profile", "height")
			if err != nil {
				return zygo.SexpNull, err
			}
			base = profile.DefaultBase{Width: width, Height: height}
		}

		params := profile.Params{Base: base}
		if params.StepOffset, err = pa.floatOr("hook-profile", "step-offset", 0); err != nil {
			return zygo.SexpNull, err
		}
		if params.StepWidth, err = pa.float("hook-profile", "step-width"); err != nil {
			return zygo.SexpNull, err
		}
		if params.StepHeight, err = pa.float("hook-profile", "step-height"); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["slant-base"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hook-profile: slant-base: %w", err)
			}
			rise, err := pa.float("hook-profile", "slant-rise")
			if err != nil {
				return zygo.SexpNull, err
			}
			params.Slant = &profile.Slant{Base: profilePoint(vec), Rise: rise}
		}
		if v, ok := pa.kw["mirror"]; ok {
			params.Mirror, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hook-profile: mirror: %w", err)
			}
		}

		loops, err := profile.Build(params)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hook-profile %q: %w", profName, err)
		}
		scene.addProfile(profName, loops)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (write-stl "shelf.stl" :parts (list "joint-tenon" "joint-mortise"))
	//
	// Records the output file the script wants and, optionally, which
	// named solids to export. The host performs the actual write after
	// evaluation; evaluation itself never touches the filesystem.
	// -----------------------------------------------------------------------
	env.AddFunction("write_stl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("write-stl requires a path argument")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-stl: path: %w", err)
		}
		if path == "" {
			return zygo.SexpNull, fmt.Errorf("write-stl: path must not be empty")
		}

		var parts []string
		if v, ok := pa.kw["parts"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("write-stl: parts: %w", err)
			}
			for i, item := range items {
				part, err := toString(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("write-stl: part %d: %w", i, err)
				}
				if scene.Solid(part) == nil {
					return zygo.SexpNull, fmt.Errorf("write-stl: no solid named %q", part)
				}
				parts = append(parts, part)
			}
		}

		scene.Output = path
		scene.Parts = parts
		return zygo.SexpNull, nil
	})
}
