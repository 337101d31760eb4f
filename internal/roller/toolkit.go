package roller

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/materialcontext/glog2d6-api/internal/errors"
)

var (
	diceTermRegex    = regexp.MustCompile(`^(\d+)d(\d+)$`)
	constantRegex    = regexp.MustCompile(`^\d+$`)
	variableRegex    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	termSplitPattern = regexp.MustCompile(`([+-])`)
)

type toolkitRoller struct {
	roller dice.Roller
}

// Config holds the dependencies for the toolkit-backed roller.
type Config struct {
	DiceRoller dice.Roller
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	if c.DiceRoller == nil {
		return errors.InvalidArgument("dice roller is required")
	}
	return nil
}

// New creates a Roller backed by rpg-toolkit dice.
func New(cfg *Config) (Roller, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &toolkitRoller{roller: cfg.DiceRoller}, nil
}

// NewDefault creates a Roller over the toolkit's default randomness source.
func NewDefault() Roller {
	return &toolkitRoller{roller: dice.DefaultRoller}
}

// RollFormula evaluates the formula against the bindings.
func (r *toolkitRoller) RollFormula(ctx context.Context, input *RollFormulaInput) (*RollFormulaOutput, error) {
	if input == nil || strings.TrimSpace(input.Formula) == "" {
		return nil, errors.InvalidArgument("formula is required")
	}

	terms, err := splitTerms(input.Formula)
	if err != nil {
		return nil, err
	}

	out := &RollFormulaOutput{Formula: input.Formula}
	for _, raw := range terms {
		term, err := r.evalTerm(raw, input.Variables)
		if err != nil {
			return nil, err
		}
		out.Terms = append(out.Terms, term)
		out.Total += term.Sign * term.Value
	}

	return out, nil
}

type rawTerm struct {
	expr string
	sign int
}

// splitTerms breaks "2d6 + attack - 1" into signed term expressions.
func splitTerms(formula string) ([]rawTerm, error) {
	cleaned := strings.ReplaceAll(formula, " ", "")
	if cleaned == "" {
		return nil, errors.InvalidArgument("formula is empty")
	}

	parts := termSplitPattern.Split(cleaned, -1)
	signs := termSplitPattern.FindAllString(cleaned, -1)

	// A leading sign produces an empty first part.
	firstSign := 1
	if parts[0] == "" {
		if len(signs) == 0 {
			return nil, errors.InvalidArgumentf("malformed formula %q", formula)
		}
		if signs[0] == "-" {
			firstSign = -1
		}
		parts = parts[1:]
		signs = signs[1:]
	}

	var terms []rawTerm
	for i, p := range parts {
		if p == "" {
			return nil, errors.InvalidArgumentf("malformed formula %q", formula)
		}
		sign := firstSign
		if i > 0 {
			if signs[i-1] == "-" {
				sign = -1
			} else {
				sign = 1
			}
		}
		terms = append(terms, rawTerm{expr: p, sign: sign})
	}
	return terms, nil
}

func (r *toolkitRoller) evalTerm(raw rawTerm, vars map[string]int) (Term, error) {
	term := Term{Expr: raw.expr, Sign: raw.sign}

	switch {
	case diceTermRegex.MatchString(raw.expr):
		m := diceTermRegex.FindStringSubmatch(raw.expr)
		count, _ := strconv.Atoi(m[1])
		sides, _ := strconv.Atoi(m[2])
		if count <= 0 || sides <= 0 {
			return term, errors.InvalidArgumentf("dice count and size must be positive: %s", raw.expr)
		}
		faces, err := r.roller.RollN(count, sides)
		if err != nil {
			return term, errors.Wrapf(err, "failed to roll %s", raw.expr)
		}
		total := 0
		for _, f := range faces {
			total += f
		}
		term.Kind = TermDice
		term.Value = total
		term.Faces = faces

	case constantRegex.MatchString(raw.expr):
		v, err := strconv.Atoi(raw.expr)
		if err != nil {
			return term, errors.InvalidArgumentf("bad constant %q", raw.expr)
		}
		term.Kind = TermConstant
		term.Value = v

	case variableRegex.MatchString(raw.expr):
		v, ok := vars[raw.expr]
		if !ok {
			return term, errors.InvalidArgumentf("unbound variable %q in formula", raw.expr)
		}
		term.Kind = TermVariable
		term.Value = v

	default:
		return term, errors.InvalidArgumentf("unrecognized term %q", raw.expr)
	}

	return term, nil
}
