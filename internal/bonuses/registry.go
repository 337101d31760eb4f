// Package bonuses turns a character's active features into numeric stat
// adjustments. Computation functions are keyed by the closed FeatureKind
// enum, so a feature whose kind is unknown fails at content-load time
// instead of silently contributing nothing.
package bonuses

import (
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// Bonus target paths. Dotted form matches the persistence layer's change
// paths.
const (
	TargetAttack       = "combat.attack"
	TargetArchery      = "combat.archery"
	TargetDefense      = "combat.defense"
	TargetStealth      = "skills.stealth"
	TargetSpellSlots   = "resources.spellSlots"
	TargetSlotCapacity = "inventory.slotCapacity"
)

// BonusType is carried on every contribution. Only "untyped" exists today;
// typed-bonus stacking suppression is deliberately deferred.
const BonusTypeUntyped = "untyped"

// Contribution is one signed adjustment a feature makes to a target.
type Contribution struct {
	Target string
	Value  int
	Type   string
}

// BonusFunc computes a feature's contributions from the character snapshot.
// Implementations must be pure: same inputs, same output, no mutation.
type BonusFunc func(c *glog.Character, f glog.Feature) []Contribution

// registry maps feature kinds to their bonus computations. Kinds with no
// entry (weapon tricks, danger sense) grant no passive numbers; they act
// through the rule engine or pair triggers instead.
var registry = map[glog.FeatureKind]BonusFunc{
	glog.FeatureCombatTraining:  combatTrainingBonus,
	glog.FeatureArcheryStance:   archeryStanceBonus,
	glog.FeatureStealthTraining: stealthTrainingBonus,
	glog.FeatureIronHide:        ironHideBonus,
	glog.FeatureArcaneReserve:   arcaneReserveBonus,
	glog.FeaturePackMule:        packMuleBonus,
}

// combatTrainingBonus scales with templates taken in the granting class:
// +1 at the first template, another +1 every two templates after.
func combatTrainingBonus(c *glog.Character, f glog.Feature) []Contribution {
	count := c.TemplateCount(f.Template)
	if count < 1 {
		count = 1
	}
	return []Contribution{{
		Target: TargetAttack,
		Value:  1 + (count-1)/2,
		Type:   BonusTypeUntyped,
	}}
}

func archeryStanceBonus(c *glog.Character, f glog.Feature) []Contribution {
	count := c.TemplateCount(f.Template)
	if count < 1 {
		count = 1
	}
	return []Contribution{{
		Target: TargetArchery,
		Value:  1 + (count-1)/2,
		Type:   BonusTypeUntyped,
	}}
}

// stealthTrainingBonus is suppressed entirely while encumbered: sneaking
// under a full pack earns nothing.
func stealthTrainingBonus(c *glog.Character, _ glog.Feature) []Contribution {
	if c.Encumbered() {
		return nil
	}
	return []Contribution{{
		Target: TargetStealth,
		Value:  2,
		Type:   BonusTypeUntyped,
	}}
}

// ironHideBonus grants the constitution modifier to defense, floored at
// zero so a sickly character is not punished for taking the feature.
func ironHideBonus(c *glog.Character, _ glog.Feature) []Contribution {
	mod := c.Attribute(glog.AttributeConstitution).Modifier()
	if mod < 0 {
		mod = 0
	}
	return []Contribution{{
		Target: TargetDefense,
		Value:  mod,
		Type:   BonusTypeUntyped,
	}}
}

func arcaneReserveBonus(c *glog.Character, f glog.Feature) []Contribution {
	count := c.TemplateCount(f.Template)
	if count < 1 {
		count = 1
	}
	return []Contribution{{
		Target: TargetSpellSlots,
		Value:  count,
		Type:   BonusTypeUntyped,
	}}
}

func packMuleBonus(*glog.Character, glog.Feature) []Contribution {
	return []Contribution{{
		Target: TargetSlotCapacity,
		Value:  2,
		Type:   BonusTypeUntyped,
	}}
}
