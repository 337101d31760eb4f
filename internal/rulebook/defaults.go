package rulebook

import (
	"fmt"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// Display rule names. Consumers look decisions up by these keys.
const (
	DisplayShowDetails     = "showDetails"
	DisplayShowAudit       = "showAudit"
	DisplayShowEnvironment = "showEnvironment"
	DisplayShowTactical    = "showTactical"
	DisplayHighlightSwing  = "highlightLargeSwing"
)

// Calculation category names.
const (
	CategoryEnvironment = "environment"
	CategoryAttribute   = "attribute"
	CategoryWeapon      = "weapon"
	CategoryFeature     = "feature"
)

// swingHighlightThreshold is the aggregate modifier magnitude past which a
// result is worth calling out.
const swingHighlightThreshold = 4

// DefaultCatalog builds the built-in rule set. Every call returns a fresh
// value, so callers can never share mutable rule state.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Categories: []Category{
			environmentCategory(),
			attributeCategory(),
			weaponCategory(),
			featureCategory(),
		},
		Display: defaultDisplayRules(),
	}
}

func environmentCategory() Category {
	return Category{
		Name: CategoryEnvironment,
		Rules: []RuleDefinition{
			{
				Name:      "darkness",
				Enabled:   func(ctx *Context) bool { return ctx.Environment.Darkness },
				Calculate: func(*Context) int { return -2 },
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d fighting in darkness", v) },
			},
			{
				Name: "long_range",
				Enabled: func(ctx *Context) bool {
					return ctx.Environment.LongRange && ctx.Weapon != nil && ctx.Weapon.Category == glog.CategoryRanged
				},
				Calculate: func(*Context) int { return -2 },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d long range", v) },
			},
			{
				Name:      "cover",
				Enabled:   func(ctx *Context) bool { return ctx.Environment.Cover },
				Calculate: func(*Context) int { return -1 },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d target in cover", v) },
			},
			{
				Name:      "high_ground",
				Enabled:   func(ctx *Context) bool { return ctx.Environment.HighGround },
				Calculate: func(*Context) int { return 1 },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d high ground", v) },
			},
		},
	}
}

func attributeCategory() Category {
	return Category{
		Name: CategoryAttribute,
		Rules: []RuleDefinition{
			{
				// Sneaking in armor is harder the more you carry.
				Name:      "encumbered_stealth",
				Enabled:   func(ctx *Context) bool { return ctx.Actor.Encumbrance > 0 },
				Calculate: func(ctx *Context) int { return -ctx.Actor.Encumbrance },
				AppliesTo: []string{"skill:sneak", "skill:hide"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d encumbered", v) },
			},
			{
				Name: "oversized_weapon",
				Enabled: func(ctx *Context) bool {
					return ctx.Weapon != nil && ctx.Weapon.Size == glog.SizeHeavy &&
						ctx.Actor.Attribute(glog.AttributeStrength).EffectiveModifier <= 0
				},
				Calculate: func(*Context) int { return -1 },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d heavy weapon, weak grip", v) },
			},
		},
	}
}

func weaponCategory() Category {
	return Category{
		Name:    CategoryWeapon,
		Enabled: func(ctx *Context) bool { return ctx.Weapon != nil },
		Rules: []RuleDefinition{
			{
				Name:      "breakage",
				Enabled:   func(ctx *Context) bool { return ctx.Weapon.Breakage > glog.BreakageNone },
				Calculate: func(ctx *Context) int { return -ctx.Weapon.Breakage },
				AppliesTo: []string{"attack"},
				Reason: func(v int, ctx *Context) string {
					state := "notched"
					if ctx.Weapon.Breakage >= glog.BreakageBroken {
						state = "broken"
					}
					return fmt.Sprintf("%+d %s weapon", v, state)
				},
			},
			{
				Name:      "no_ammunition",
				Enabled:   func(ctx *Context) bool { return ctx.Weapon.Category == glog.CategoryRanged && !ctx.Weapon.HasAmmo },
				Calculate: func(*Context) int { return -2 },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d improvised ammunition", v) },
			},
		},
	}
}

func featureCategory() Category {
	return Category{
		Name: CategoryFeature,
		Rules: []RuleDefinition{
			{
				// The archery bonus is conditional on actually shooting, so
				// it lives here rather than in the flat attack total.
				Name: "archery_stance",
				Enabled: func(ctx *Context) bool {
					return ctx.Actor.HasFeature(glog.FeatureArcheryStance) &&
						ctx.Weapon != nil && ctx.Weapon.Category == glog.CategoryRanged
				},
				Calculate: func(ctx *Context) int { return ctx.Actor.ArcheryTotal },
				AppliesTo: []string{"attack"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d archery stance", v) },
			},
			{
				Name: "danger_sense",
				Enabled: func(ctx *Context) bool {
					return ctx.Actor.HasFeature(glog.FeatureDangerSense)
				},
				Calculate: func(*Context) int { return 1 },
				AppliesTo: []string{"skill:notice"},
				Reason:    func(v int, _ *Context) string { return fmt.Sprintf("%+d danger sense", v) },
			},
		},
	}
}

func defaultDisplayRules() []DisplayRule {
	return []DisplayRule{
		{
			Name:      DisplayShowDetails,
			Predicate: func(ctx *Context, _ Results) bool { return ctx.Options.ShowDetails },
		},
		{
			Name:      DisplayShowAudit,
			Predicate: func(ctx *Context, _ Results) bool { return ctx.Options.Debug },
		},
		{
			Name:      DisplayShowEnvironment,
			Predicate: func(_ *Context, results Results) bool { return results.HasPrefix(CategoryEnvironment + ".") },
		},
		{
			Name:      DisplayShowTactical,
			Predicate: func(ctx *Context, _ Results) bool { return ctx.InCombat },
		},
		{
			Name: DisplayHighlightSwing,
			Predicate: func(_ *Context, results Results) bool {
				return results.AggregateMagnitude() >= swingHighlightThreshold
			},
		},
	}
}
