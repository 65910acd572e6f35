// Package ops describes the caller-facing operation surface as
// declarative metadata: named, typed parameters with access cardinality,
// kept apart from the geometry core so orchestration hosts can list and
// describe operations without running them.
package ops

import (
	"fmt"
	"sync"
)

// ParamType names the value type of a parameter or result.
type ParamType string

const (
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeString  ParamType = "string"
	TypeBool    ParamType = "bool"
	TypeVec3    ParamType = "vec3"
	TypePlane   ParamType = "plane"
	TypeSolid   ParamType = "solid"
	TypeCurve   ParamType = "curve"
	TypeProfile ParamType = "profile"
)

// Cardinality is the access cardinality of a parameter or result.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// ParamSpec describes one named input of an operation.
type ParamSpec struct {
	Name        string      `json:"name"`
	Type        ParamType   `json:"type"`
	Cardinality Cardinality `json:"cardinality"`
	Default     any         `json:"default,omitempty"`
	Optional    bool        `json:"optional,omitempty"`
}

// ResultSpec describes one named output of an operation.
type ResultSpec struct {
	Name        string      `json:"name"`
	Type        ParamType   `json:"type"`
	Cardinality Cardinality `json:"cardinality"`
}

// OpSpec is the declarative description of one operation.
type OpSpec struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Params      []ParamSpec  `json:"params"`
	Results     []ResultSpec `json:"results"`
}

// Registry holds operation specs by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]OpSpec
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]OpSpec)}
}

// Register adds a spec; duplicate names are an error.
func (r *Registry) Register(spec OpSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("op already registered: %s", spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Get returns the spec for a name.
func (r *Registry) Get(name string) (OpSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns all specs in registration order.
func (r *Registry) List() []OpSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]OpSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Builtin returns a registry populated with the scripting surface.
func Builtin() *Registry {
	r := NewRegistry()
	for _, spec := range builtinSpecs {
		// Names are unique by construction.
		_ = r.Register(spec)
	}
	return r
}

var builtinSpecs = []OpSpec{
	{
		Name:        "precision",
		Description: "Set the kernel evaluation precision for subsequent operations.",
		Params: []ParamSpec{
			{Name: "value", Type: TypeNumber, Cardinality: One, Default: 1e-3},
		},
	},
	{
		Name:        "board",
		Description: "Create an axis-aligned rectangular strip and register it by name.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "size", Type: TypeVec3, Cardinality: One},
			{Name: "at", Type: TypeVec3, Cardinality: One, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "solid", Type: TypeSolid, Cardinality: One},
		},
	},
	{
		Name:        "mirror-plane",
		Description: "Build a world-axis mirror plane through a point.",
		Params: []ParamSpec{
			{Name: "axis", Type: TypeString, Cardinality: One, Default: "x"},
			{Name: "at", Type: TypeVec3, Cardinality: One, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "plane", Type: TypePlane, Cardinality: One},
		},
	},
	{
		Name:        "place",
		Description: "Return a rotated and translated copy of a solid.",
		Params: []ParamSpec{
			{Name: "solid", Type: TypeSolid, Cardinality: One},
			{Name: "by", Type: TypeVec3, Cardinality: One, Optional: true},
			{Name: "rotate", Type: TypeString, Cardinality: One, Optional: true},
			{Name: "angle", Type: TypeNumber, Cardinality: One, Optional: true},
			{Name: "about", Type: TypeVec3, Cardinality: One, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "solid", Type: TypeSolid, Cardinality: One},
		},
	},
	{
		Name:        "tenon-joint",
		Description: "Carve a mated tenon/mortise pair from a vertical and a horizontal strip.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "vertical", Type: TypeSolid, Cardinality: One},
			{Name: "horizontal", Type: TypeSolid, Cardinality: One},
			{Name: "edge", Type: TypeInteger, Cardinality: One, Optional: true},
			{Name: "edges", Type: TypeInteger, Cardinality: Many, Optional: true},
			{Name: "thickness", Type: TypeNumber, Cardinality: One},
			{Name: "tolerance", Type: TypeNumber, Cardinality: One},
			{Name: "mirror", Type: TypePlane, Cardinality: One},
			{Name: "center", Type: TypeVec3, Cardinality: One, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "tenon", Type: TypeSolid, Cardinality: One},
			{Name: "mortise", Type: TypeSolid, Cardinality: One},
		},
	},
	{
		Name:        "lattice-joint",
		Description: "Carve several vertical strips into one shared horizontal mortise.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "horizontal", Type: TypeSolid, Cardinality: One},
			{Name: "verticals", Type: TypeSolid, Cardinality: Many},
			{Name: "edge-a", Type: TypeInteger, Cardinality: One},
			{Name: "edge-b", Type: TypeInteger, Cardinality: One},
			{Name: "thickness", Type: TypeNumber, Cardinality: One},
			{Name: "tolerance", Type: TypeNumber, Cardinality: One},
			{Name: "mirror", Type: TypePlane, Cardinality: One},
			{Name: "centroid", Type: TypeVec3, Cardinality: One},
		},
		Results: []ResultSpec{
			{Name: "tenons", Type: TypeSolid, Cardinality: Many},
			{Name: "mortise", Type: TypeSolid, Cardinality: One},
		},
	},
	{
		Name:        "slit-joint",
		Description: "Cut complementary offset slits into two overlapping curved strips.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "a", Type: TypeSolid, Cardinality: One},
			{Name: "b", Type: TypeSolid, Cardinality: One},
			{Name: "tolerance", Type: TypeNumber, Cardinality: One},
			{Name: "edge", Type: TypeInteger, Cardinality: One},
		},
		Results: []ResultSpec{
			{Name: "a", Type: TypeSolid, Cardinality: One},
			{Name: "b", Type: TypeSolid, Cardinality: One},
		},
	},
	{
		Name:        "layout",
		Description: "Lay a vertical strip flat and project both strips' edges onto a plane.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "vertical", Type: TypeSolid, Cardinality: One},
			{Name: "horizontal", Type: TypeSolid, Cardinality: One},
			{Name: "at", Type: TypeVec3, Cardinality: One, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "curves", Type: TypeCurve, Cardinality: Many},
		},
	},
	{
		Name:        "unroll",
		Description: "Flatten a developable face into a single closed outline.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "solid", Type: TypeSolid, Cardinality: One},
			{Name: "face", Type: TypeInteger, Cardinality: One},
		},
		Results: []ResultSpec{
			{Name: "outline", Type: TypeCurve, Cardinality: One},
		},
	},
	{
		Name:        "hook-profile",
		Description: "Build an ordered set of closed 2D hook profile loops.",
		Params: []ParamSpec{
			{Name: "name", Type: TypeString, Cardinality: One},
			{Name: "outline", Type: TypeVec3, Cardinality: Many, Optional: true},
			{Name: "width", Type: TypeNumber, Cardinality: One, Optional: true},
			{Name: "height", Type: TypeNumber, Cardinality: One, Optional: true},
			{Name: "step-offset", Type: TypeNumber, Cardinality: One, Default: 0.0, Optional: true},
			{Name: "step-width", Type: TypeNumber, Cardinality: One},
			{Name: "step-height", Type: TypeNumber, Cardinality: One},
			{Name: "slant-base", Type: TypeVec3, Cardinality: One, Optional: true},
			{Name: "slant-rise", Type: TypeNumber, Cardinality: One, Optional: true},
			{Name: "mirror", Type: TypeBool, Cardinality: One, Default: false, Optional: true},
		},
		Results: []ResultSpec{
			{Name: "loops", Type: TypeProfile, Cardinality: Many},
		},
	},
	{
		Name:        "write-stl",
		Description: "Record the STL file to write and which named solids to export.",
		Params: []ParamSpec{
			{Name: "path", Type: TypeString, Cardinality: One},
			{Name: "parts", Type: TypeString, Cardinality: Many, Optional: true},
		},
	},
}
