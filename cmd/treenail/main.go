// Command treenail evaluates a joinery script and writes the resulting
// solids as a binary STL file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/treenail/pkg/engine"
	"github.com/chazu/treenail/pkg/export"
	"github.com/chazu/treenail/pkg/kernel/sdfx"
)

func main() {
	out := flag.String("o", "", "output STL path (overrides write-stl in the script)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: treenail [-o out.stl] <script.tnl>\n")
		fmt.Fprintf(os.Stderr, "reads from stdin when the script path is -\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	source, err := readSource(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "treenail: %v\n", err)
		os.Exit(1)
	}

	k := sdfx.New()
	scene, evalErrs, err := engine.NewEngine(k).Evaluate(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "treenail: %v\n", err)
		os.Exit(1)
	}
	for _, e := range evalErrs {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", flag.Arg(0), e.Line, e.Col, e.Message)
	}
	if len(evalErrs) > 0 {
		os.Exit(1)
	}

	for _, w := range scene.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	meshes, warnings := export.Meshes(k, scene)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(meshes) == 0 {
		fmt.Fprintln(os.Stderr, "treenail: scene has no solids, nothing written")
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = scene.Output
	}
	if path == "" {
		path = "out.stl"
	}
	if err := export.WriteSTLFile(path, meshes); err != nil {
		fmt.Fprintf(os.Stderr, "treenail: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d part(s) to %s\n", len(meshes), path)
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
