package roller_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/roller"
)

// scriptedDice returns queued faces in order, satisfying dice.Roller.
type scriptedDice struct {
	faces []int
	pos   int
}

func (s *scriptedDice) Roll(_ int) (int, error) {
	f := s.faces[s.pos]
	s.pos++
	return f, nil
}

func (s *scriptedDice) RollN(count, _ int) ([]int, error) {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		f, _ := s.Roll(0)
		out = append(out, f)
	}
	return out, nil
}

func newScripted(t *testing.T, faces ...int) roller.Roller {
	t.Helper()
	r, err := roller.New(&roller.Config{DiceRoller: &scriptedDice{faces: faces}})
	require.NoError(t, err)
	return r
}

func TestRollFormulaMixedTerms(t *testing.T) {
	r := newScripted(t, 3, 5)

	out, err := r.RollFormula(context.Background(), &roller.RollFormulaInput{
		Formula:   "2d6 + attack + 1",
		Variables: map[string]int{"attack": 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 13, out.Total)
	require.Len(t, out.Terms, 3)
	assert.Equal(t, roller.TermDice, out.Terms[0].Kind)
	assert.Equal(t, []int{3, 5}, out.Terms[0].Faces)
	assert.Equal(t, roller.TermVariable, out.Terms[1].Kind)
	assert.Equal(t, 4, out.Terms[1].Value)
	assert.Equal(t, roller.TermConstant, out.Terms[2].Kind)
	assert.Equal(t, []int{3, 5}, out.Faces())
}

func TestRollFormulaNegativeTerm(t *testing.T) {
	r := newScripted(t, 6, 6)

	out, err := r.RollFormula(context.Background(), &roller.RollFormulaInput{
		Formula:   "2d6 - penalty",
		Variables: map[string]int{"penalty": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, out.Total)
	assert.Equal(t, -1, out.Terms[1].Sign)
}

func TestRollFormulaUnboundVariable(t *testing.T) {
	r := newScripted(t, 1, 1)

	_, err := r.RollFormula(context.Background(), &roller.RollFormulaInput{
		Formula: "2d6 + attack",
	})
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "unbound variable")
}

func TestRollFormulaEmpty(t *testing.T) {
	r := newScripted(t)

	_, err := r.RollFormula(context.Background(), &roller.RollFormulaInput{Formula: "  "})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRollFormulaMalformed(t *testing.T) {
	r := newScripted(t)

	_, err := r.RollFormula(context.Background(), &roller.RollFormulaInput{Formula: "2d6 + + 3"})
	assert.Error(t, err)
}

func TestNewRequiresDiceRoller(t *testing.T) {
	_, err := roller.New(&roller.Config{})
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = roller.New(nil)
	assert.True(t, errors.IsInvalidArgument(err))
}
