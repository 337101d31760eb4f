// Package roller is the boundary to the dice primitive: it evaluates a
// formula with named variable bindings and reports the total plus every
// raw die face, grouped by term. Formulas are always generated by this
// codebase, never user input, so the grammar stays deliberately small:
// terms joined by + or -, each term an NdS dice expression, a bound
// variable name, or an integer literal.
package roller

import (
	"context"
)

//go:generate mockgen -destination=mock/mock_roller.go -package=rollermock github.com/materialcontext/glog2d6-api/internal/roller Roller

// TermKind tells what produced a term's value.
type TermKind string

// Term kinds
const (
	TermDice     TermKind = "dice"
	TermVariable TermKind = "variable"
	TermConstant TermKind = "constant"
)

// Term is one evaluated formula term.
type Term struct {
	Expr  string
	Kind  TermKind
	Sign  int
	Value int
	Faces []int
}

// RollFormulaInput carries a formula and its variable bindings.
type RollFormulaInput struct {
	Formula   string
	Variables map[string]int
}

// RollFormulaOutput is the evaluated result.
type RollFormulaOutput struct {
	Formula string
	Total   int
	Terms   []Term
}

// Faces returns every rolled die face across all dice terms, in roll order.
func (o *RollFormulaOutput) Faces() []int {
	var faces []int
	for _, t := range o.Terms {
		faces = append(faces, t.Faces...)
	}
	return faces
}

// Roller evaluates dice formulas.
type Roller interface {
	RollFormula(ctx context.Context, input *RollFormulaInput) (*RollFormulaOutput, error)
}
