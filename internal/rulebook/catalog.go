package rulebook

import (
	"fmt"
	"strings"
)

// Predicate gates a rule or category on the evaluation context.
type Predicate func(*Context) bool

// Calculate produces a rule's signed value for the context.
type Calculate func(*Context) int

// ReasonFormatter renders the human-readable provenance for a computed value.
type ReasonFormatter func(value int, ctx *Context) string

// RuleDefinition is one named calculation rule. A nil Enabled means always
// on; an empty AppliesTo matches every action type.
type RuleDefinition struct {
	Name      string
	Enabled   Predicate
	Calculate Calculate
	AppliesTo []string
	Reason    ReasonFormatter
}

// Matches applies the tag rules: exact tag equality, or a
// namespace:qualifier tag whose qualifier substring-matches the action
// type.
func (r RuleDefinition) Matches(actionType string) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}
	for _, tag := range r.AppliesTo {
		if tag == actionType {
			return true
		}
		if i := strings.IndexByte(tag, ':'); i >= 0 {
			if strings.Contains(actionType, tag[i+1:]) {
				return true
			}
		}
	}
	return false
}

// Category groups rules under a shared enabling condition.
type Category struct {
	Name    string
	Enabled Predicate
	Rules   []RuleDefinition
}

// DisplayRule produces one named visibility decision. Predicates may read
// the calculation results of the same invocation.
type DisplayRule struct {
	Name      string
	Predicate func(*Context, Results) bool
}

// Results is the invocation-scoped calculation cache, keyed category.rule.
// Last write wins within one invocation; the cache never survives past it.
type Results map[string]int

// AggregateMagnitude sums the absolute values of all cached results.
func (r Results) AggregateMagnitude() int {
	total := 0
	for _, v := range r {
		if v < 0 {
			total -= v
		} else {
			total += v
		}
	}
	return total
}

// HasPrefix reports whether any cached key starts with the given prefix.
func (r Results) HasPrefix(prefix string) bool {
	for k := range r {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Catalog is the full rule set: calculation categories plus display rules.
// Once built it is never mutated; overrides produce a new catalog.
type Catalog struct {
	Categories []Category
	Display    []DisplayRule
}

func (c *Catalog) clone() *Catalog {
	out := &Catalog{
		Categories: make([]Category, len(c.Categories)),
		Display:    make([]DisplayRule, len(c.Display)),
	}
	copy(out.Display, c.Display)
	for i, cat := range c.Categories {
		copied := cat
		copied.Rules = make([]RuleDefinition, len(cat.Rules))
		copy(copied.Rules, cat.Rules)
		out.Categories[i] = copied
	}
	return out
}

// Override fields addressable through a dotted path.
const (
	fieldEnabled   = "enabled"
	fieldCalculate = "calculate"
	fieldReason    = "reason"
)

// displayCategory is the pseudo-category overrides use to address display
// rule predicates ("display.<rule>").
const displayCategory = "display"

// Overrides maps dotted paths to replacement functions:
//
//	"<category>.<rule>.enabled"   -> Predicate
//	"<category>.<rule>.calculate" -> Calculate
//	"<category>.<rule>.reason"    -> ReasonFormatter
//	"display.<rule>"              -> func(*Context, Results) bool
//
// Replacement is wholesale: there is no per-rule versioning or rollback,
// only replace-or-default.
type Overrides map[string]interface{}

// applyOverrides builds a new catalog with every override patched in.
// Unknown paths and mistyped functions are construction-time errors.
func applyOverrides(base *Catalog, overrides Overrides) (*Catalog, error) {
	out := base.clone()
	for path, fn := range overrides {
		if err := out.patch(path, fn); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Catalog) patch(path string, fn interface{}) error {
	parts := strings.Split(path, ".")

	if len(parts) == 2 && parts[0] == displayCategory {
		pred, ok := fn.(func(*Context, Results) bool)
		if !ok {
			return fmt.Errorf("override %s: want func(*Context, Results) bool, got %T", path, fn)
		}
		for i := range c.Display {
			if c.Display[i].Name == parts[1] {
				c.Display[i].Predicate = pred
				return nil
			}
		}
		return fmt.Errorf("override %s: no such display rule", path)
	}

	if len(parts) != 3 {
		return fmt.Errorf("override %s: path must be category.rule.field", path)
	}

	rule := c.findRule(parts[0], parts[1])
	if rule == nil {
		return fmt.Errorf("override %s: no such rule", path)
	}

	switch parts[2] {
	case fieldEnabled:
		pred, ok := fn.(func(*Context) bool)
		if !ok {
			return fmt.Errorf("override %s: want func(*Context) bool, got %T", path, fn)
		}
		rule.Enabled = pred
	case fieldCalculate:
		calc, ok := fn.(func(*Context) int)
		if !ok {
			return fmt.Errorf("override %s: want func(*Context) int, got %T", path, fn)
		}
		rule.Calculate = calc
	case fieldReason:
		reason, ok := fn.(func(int, *Context) string)
		if !ok {
			return fmt.Errorf("override %s: want func(int, *Context) string, got %T", path, fn)
		}
		rule.Reason = reason
	default:
		return fmt.Errorf("override %s: unknown field %q", path, parts[2])
	}
	return nil
}

func (c *Catalog) findRule(category, rule string) *RuleDefinition {
	for i := range c.Categories {
		if c.Categories[i].Name != category {
			continue
		}
		for j := range c.Categories[i].Rules {
			if c.Categories[i].Rules[j].Name == rule {
				return &c.Categories[i].Rules[j]
			}
		}
	}
	return nil
}
