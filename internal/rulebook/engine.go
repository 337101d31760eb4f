package rulebook

import (
	"fmt"
	"log/slog"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
)

// Engine evaluates the rule catalog. It is safe for concurrent use: all
// mutable state is invocation-scoped.
type Engine struct {
	catalog *Catalog
}

// Config holds the dependencies for the rule engine.
type Config struct {
	// Catalog is the base rule set. Nil selects the built-in defaults.
	Catalog *Catalog
	// Overrides are patched into a copy of the catalog at construction.
	Overrides Overrides
	// LuaPath optionally names a Lua file whose override table is merged
	// in before Overrides (explicit Go overrides win on collision).
	LuaPath string
}

// New builds an engine from the base catalog plus overrides. The resulting
// catalog is never mutated afterwards.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	base := cfg.Catalog
	if base == nil {
		base = DefaultCatalog()
	}

	merged := Overrides{}
	if cfg.LuaPath != "" {
		luaOverrides, err := LoadLuaOverrides(cfg.LuaPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load lua overrides from %s", cfg.LuaPath)
		}
		for k, v := range luaOverrides {
			merged[k] = v
		}
	}
	for k, v := range cfg.Overrides {
		merged[k] = v
	}

	catalog, err := applyOverrides(base, merged)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid rule overrides")
	}

	return &Engine{catalog: catalog}, nil
}

// ApplyCalculationRules evaluates every enabled calculation rule matching
// the action type and returns the emitted modifiers in catalog order, plus
// the invocation-scoped result cache the display rules may read.
func (e *Engine) ApplyCalculationRules(actionType string, ctx *Context) ([]glog.Modifier, Results) {
	var mods []glog.Modifier
	results := Results{}

	for _, cat := range e.catalog.Categories {
		if cat.Enabled != nil && !cat.Enabled(ctx) {
			continue
		}
		for _, rule := range cat.Rules {
			if rule.Enabled != nil && !rule.Enabled(ctx) {
				continue
			}
			if !rule.Matches(actionType) {
				continue
			}
			if rule.Calculate == nil {
				continue
			}

			value := rule.Calculate(ctx)
			if value == 0 {
				continue
			}

			key := cat.Name + "." + rule.Name
			results[key] = value

			reason := fmt.Sprintf("%+d (%s)", value, rule.Name)
			if rule.Reason != nil {
				reason = rule.Reason(value, ctx)
			}

			mods = append(mods, glog.Modifier{
				Source:    key,
				Category:  cat.Name,
				Value:     value,
				Reason:    reason,
				AppliesTo: rule.AppliesTo,
			})
		}
	}

	return mods, results
}

// ApplyDisplayRules evaluates every display predicate and returns the
// decision map. A predicate that panics resolves to false: visibility
// fails closed, and one misbehaving rule cannot abort an action.
func (e *Engine) ApplyDisplayRules(ctx *Context, results Results) map[string]bool {
	decisions := make(map[string]bool, len(e.catalog.Display))
	for _, rule := range e.catalog.Display {
		decisions[rule.Name] = e.evalDisplay(rule, ctx, results)
	}
	return decisions
}

func (e *Engine) evalDisplay(rule DisplayRule, ctx *Context, results Results) (decision bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("display rule panicked, defaulting to hidden",
				"rule", rule.Name,
				"panic", r,
			)
			decision = false
		}
	}()

	if rule.Predicate == nil {
		return false
	}
	return rule.Predicate(ctx, results)
}
