package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/chazu/treenail/pkg/kernel"
	"github.com/chazu/treenail/pkg/kernel/kerneltest"
)

func newTestEngine() *Engine {
	return NewEngine(kerneltest.New())
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := newTestEngine()

	scene, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if scene == nil {
		t.Fatal("expected non-nil scene")
	}
	if len(scene.Solids) != 0 || len(scene.Curves) != 0 || len(scene.Profiles) != 0 {
		t.Error("expected empty scene")
	}
	if scene.Precision != kernel.DefaultPrecision {
		t.Errorf("precision = %v, want default %v", scene.Precision, kernel.DefaultPrecision)
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := newTestEngine()

	scene, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if scene == nil {
		t.Fatal("expected non-nil scene")
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := newTestEngine()

	// Plain Lisp with no scene operations evaluates to an empty scene.
	scene, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if scene == nil {
		t.Fatal("expected non-nil scene")
	}
	if len(scene.Solids) != 0 {
		t.Errorf("expected no solids, got %d", len(scene.Solids))
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := newTestEngine()

	scene, evalErrs, err := eng.Evaluate("(board \"x\"")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if scene != nil {
		t.Error("expected nil scene on parse failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced source")
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := newTestEngine()

	scene, evalErrs, err := eng.Evaluate(`(board :size (vec3 1 1 1))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if scene != nil {
		t.Error("expected nil scene on runtime failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for board without a name")
	}
	if !strings.Contains(evalErrs[0].Message, "name") {
		t.Errorf("error message %q does not mention the missing name", evalErrs[0].Message)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := newTestEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scene, evalErrs, err := eng.Evaluate(`(board "b" :size (vec3 10 10 10))`)
			// Superseded evaluations may be discarded; everything else
			// must succeed cleanly.
			if err != nil && !strings.Contains(err.Error(), "superseded") {
				t.Errorf("unexpected fatal error: %v", err)
				return
			}
			if err == nil {
				if len(evalErrs) > 0 {
					t.Errorf("unexpected eval errors: %v", evalErrs)
				}
				if scene == nil || scene.Solid("b") == nil {
					t.Error("expected the board in the scene")
				}
			}
		}()
	}
	wg.Wait()
}

func TestPreprocessSource(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(f :size 1)`, `(f "__kw_size" 1)`},
		{"kebab call", `(tenon-joint :edge-a 8)`, `(tenon_joint "__kw_edge-a" 8)`},
		{"minus untouched", `(- 3 1)`, `(- 3 1)`},
		{"string untouched", `(f "tenon-joint :x")`, `(f "tenon-joint :x")`},
		{"comment converted", "; note\n(f)", "// note\n(f)"},
		{"assignment preserved", `x := 1`, `x := 1`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := preprocessSource(tc.in); got != tc.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
