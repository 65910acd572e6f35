package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/kernel"
)

// PiecePolicy selects which piece of a multi-piece boolean result a
// carve keeps.
type PiecePolicy int

const (
	// FirstPiece keeps the first piece and discards the rest. This is a
	// deliberate simplification carried through the whole pipeline, not
	// a merge: disjoint offcuts are dropped, not reattached.
	FirstPiece PiecePolicy = iota
)

// pickPiece applies a piece policy to a non-empty boolean result.
func pickPiece(pieces []kernel.Solid, p PiecePolicy) kernel.Solid {
	// Only FirstPiece exists; the policy is named so the simplification
	// stays visible at call sites.
	return pieces[0]
}

// carve subtracts the union of tools from target and applies the piece
// policy. The target is duplicated first; the caller's solid is never
// mutated.
func carve(k kernel.Kernel, precision float64, target kernel.Solid, tools []kernel.Solid, stage string) (kernel.Solid, error) {
	if target == nil {
		return nil, fmt.Errorf("%s: target is nil: %w", stage, ErrInvalidInput)
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("%s: no cutting tools: %w", stage, ErrInvalidInput)
	}
	for i, t := range tools {
		if t == nil {
			return nil, fmt.Errorf("%s: tool %d is nil: %w", stage, i, ErrInvalidInput)
		}
	}

	operands := make([]kernel.Solid, 0, len(tools)+1)
	operands = append(operands, k.Duplicate(target))
	operands = append(operands, tools...)

	pieces, err := k.Boolean(kernel.Difference, precision, operands...)
	if err != nil {
		return nil, fmt.Errorf("%s: difference: %w: %v", stage, ErrKernelFailure, err)
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%s: difference produced nothing: %w", stage, ErrKernelFailure)
	}
	return pickPiece(pieces, FirstPiece), nil
}

// CarveTenon subtracts the cutting volumes from the strip, yielding the
// tenon.
func CarveTenon(k kernel.Kernel, precision float64, strip kernel.Solid, tools ...kernel.Solid) (kernel.Solid, error) {
	return carve(k, kernel.Precision(precision), strip, tools, "tenon")
}

// CarveMortise subtracts the grown tool volumes from the receiving
// solid, yielding the mortise.
func CarveMortise(k kernel.Kernel, precision float64, receiver kernel.Solid, tools ...kernel.Solid) (kernel.Solid, error) {
	return carve(k, kernel.Precision(precision), receiver, tools, "mortise")
}
