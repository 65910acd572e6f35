// Package engine provides the Lisp evaluation engine for Treenail.
// It wraps zygomys in a sandboxed environment and produces a Scene of
// named solids, fabrication curves and profiles from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
	"github.com/chazu/treenail/pkg/profile"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NamedSolid is a solid registered in the scene under a script-visible
// name.
type NamedSolid struct {
	Name  string
	Solid kernel.Solid
}

// NamedCurves holds a named set of fabrication curves, closed loops and
// open chains kept apart.
type NamedCurves struct {
	Name   string
	Closed []kernel.Curve
	Open   []kernel.Curve
}

// NamedProfile holds a named 2D profile as ordered closed loops.
type NamedProfile struct {
	Name  string
	Loops []profile.Loop
}

// Scene is the result of one evaluation: everything the script named,
// in registration order, plus warnings from degraded aggregate
// operations.
type Scene struct {
	Precision float64

	Solids   []NamedSolid
	Curves   []NamedCurves
	Profiles []NamedProfile

	// Output and Parts are set by (write-stl ...): the file the script
	// wants written and, when non-empty, the subset of solids to export.
	Output string
	Parts  []string

	Warnings []joint.Warning
}

// NewScene returns an empty scene at the default precision.
func NewScene() *Scene {
	return &Scene{Precision: kernel.DefaultPrecision}
}

// Solid returns the named solid, or nil.
func (s *Scene) Solid(name string) kernel.Solid {
	for _, ns := range s.Solids {
		if ns.Name == name {
			return ns.Solid
		}
	}
	return nil
}

// addSolid registers a solid, replacing any previous one with the same
// name.
func (s *Scene) addSolid(name string, solid kernel.Solid) {
	for i, ns := range s.Solids {
		if ns.Name == name {
			s.Solids[i].Solid = solid
			return
		}
	}
	s.Solids = append(s.Solids, NamedSolid{Name: name, Solid: solid})
}

func (s *Scene) addCurves(name string, closed, open []kernel.Curve) {
	s.Curves = append(s.Curves, NamedCurves{Name: name, Closed: closed, Open: open})
}

func (s *Scene) addProfile(name string, loops []profile.Loop) {
	s.Profiles = append(s.Profiles, NamedProfile{Name: name, Loops: loops})
}

func (s *Scene) warn(stage string, index int, err error) {
	s.Warnings = append(s.Warnings, joint.Warning{Stage: stage, Index: index, Err: err})
}

// Engine wraps the zygomys interpreter for Treenail evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	kernel kernel.Kernel

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine evaluating against the given kernel.
func NewEngine(k kernel.Kernel) *Engine {
	return &Engine{kernel: k}
}

// Evaluate takes Lisp source code and produces a Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		scene, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: scene, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	scene := NewScene()

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return scene, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, e.kernel, scene)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
