package action

import (
	"fmt"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/roller"
)

// actionKind is the per-variant capability set the pipeline composes in.
// Each phase hook receives the action and works on its execution state;
// there is no base implementation to override.
type actionKind interface {
	actionType(a *Action) string
	validate(a *Action, v *errors.ValidationErrors)
	gather(a *Action) error
	buildRoll(a *Action) (*roller.RollFormulaInput, []glog.Modifier)
	stateChanges(a *Action) []glog.StateChange
}

func kindFor(k Kind) (actionKind, error) {
	switch k {
	case KindAttack:
		return attackKind{}, nil
	case KindCheck:
		return checkKind{}, nil
	case KindCast:
		return castKind{}, nil
	default:
		return nil, errors.InvalidArgumentf("unknown action kind %q", k)
	}
}

// attackKind resolves a weapon and rolls 2d6 plus the attack stat.
type attackKind struct{}

func (attackKind) actionType(*Action) string { return "attack" }

func (attackKind) validate(a *Action, v *errors.ValidationErrors) {
	if a.input.WeaponID == "" {
		return
	}
	item := a.char.Item(a.input.WeaponID)
	switch {
	case item == nil:
		v.Addf("weapon %s not found", a.input.WeaponID)
	case !item.IsWeapon():
		v.Addf("item %s is not a weapon", a.input.WeaponID)
	case !item.Equipped:
		v.Addf("weapon %s is not equipped", a.input.WeaponID)
	}
}

func (attackKind) gather(a *Action) error {
	if a.input.WeaponID != "" {
		a.weapon = a.char.Item(a.input.WeaponID)
	} else {
		a.weapon = autoSelectWeapon(a.char)
	}
	if a.weapon == nil {
		a.weapon = glog.Unarmed()
		a.unarmed = true
	}
	a.tracker.RecordInput("weapon", a.weapon.Name, "equipment")

	// Soft checks only: a notched weapon or an empty quiver never blocks
	// the swing.
	switch a.weapon.Breakage {
	case glog.BreakageNotched:
		a.warn(fmt.Sprintf("%s is notched", a.weapon.Name))
	case glog.BreakageBroken:
		a.warn(fmt.Sprintf("%s is broken", a.weapon.Name))
	}
	if a.weapon.Category == glog.CategoryRanged {
		a.ammo = findAmmo(a.char)
		if a.ammo == nil {
			a.warn("no ammunition")
		}
	}
	return nil
}

func (attackKind) buildRoll(a *Action) (*roller.RollFormulaInput, []glog.Modifier) {
	input := &roller.RollFormulaInput{
		Formula:   "2d6 + attack",
		Variables: map[string]int{"attack": a.char.Combat.Attack.Total()},
	}
	return input, statModifiers(a.char.Combat.Attack, "combat.attack", "attack")
}

func (attackKind) stateChanges(a *Action) []glog.StateChange {
	if a.weapon == nil || a.weapon.Category != glog.CategoryRanged || a.ammo == nil {
		return nil
	}
	return []glog.StateChange{{
		Path:   "items." + a.ammo.ID + ".quantity",
		Value:  a.ammo.Quantity - 1,
		Reason: "ammunition spent",
	}}
}

// checkKind rolls 2d6 plus an attribute modifier and optional skill bonus.
type checkKind struct{}

func (checkKind) actionType(a *Action) string {
	if a.input.Skill != "" {
		return a.input.Skill
	}
	return "check"
}

func (checkKind) validate(a *Action, v *errors.ValidationErrors) {
	if a.input.Attribute == "" {
		v.Add("no attribute specified")
		return
	}
	for _, name := range glog.AttributeNames {
		if name == a.input.Attribute {
			return
		}
	}
	v.Addf("unknown attribute %s", a.input.Attribute)
}

func (checkKind) gather(a *Action) error {
	attr := a.char.EffectiveAttribute(a.input.Attribute)
	a.tracker.RecordInput("attribute", a.input.Attribute, "request")
	a.tracker.RecordInput("attribute_effective_value", attr.EffectiveValue(), "character")
	if a.input.Skill != "" {
		a.tracker.RecordInput("skill", a.input.Skill, "request")
	}
	return nil
}

func (checkKind) buildRoll(a *Action) (*roller.RollFormulaInput, []glog.Modifier) {
	attr := a.char.EffectiveAttribute(a.input.Attribute)
	mod := attr.EffectiveModifier()

	input := &roller.RollFormulaInput{
		Formula:   "2d6 + mod",
		Variables: map[string]int{"mod": mod},
	}
	mods := []glog.Modifier{{
		Source:   "attributes." + a.input.Attribute,
		Category: categoryBase,
		Value:    mod,
		Reason:   fmt.Sprintf("%+d %s modifier", mod, a.input.Attribute),
	}}

	if a.input.Skill != "" {
		skill := a.char.Skills[a.input.Skill]
		input.Formula = "2d6 + mod + skill"
		input.Variables["skill"] = skill.Bonus
		if skill.Bonus != 0 {
			mods = append(mods, glog.Modifier{
				Source:   "skills." + a.input.Skill,
				Category: categoryBase,
				Value:    skill.Bonus,
				Reason:   fmt.Sprintf("%+d %s", skill.Bonus, a.input.Skill),
			})
		}
	}
	return input, mods
}

func (checkKind) stateChanges(*Action) []glog.StateChange { return nil }

// castKind rolls the invested magic dice and spends them.
type castKind struct{}

func (castKind) actionType(*Action) string { return "cast" }

func (castKind) validate(a *Action, v *errors.ValidationErrors) {
	if a.input.SpellName == "" {
		v.Add("no spell specified")
	}
	if a.input.MagicDice < 1 {
		v.Add("at least one magic die must be invested")
	}
	if a.char.Resources.MagicDice.Remaining() == 0 {
		v.Add("no magic dice remaining")
	}
}

func (castKind) gather(a *Action) error {
	remaining := a.char.Resources.MagicDice.Remaining()
	a.tracker.RecordInput("spell", a.input.SpellName, "request")
	a.tracker.RecordInput("magic_dice_invested", a.input.MagicDice, "request")
	a.tracker.RecordInput("magic_dice_remaining", remaining, "character")
	if a.input.MagicDice > remaining {
		a.warn(fmt.Sprintf("only %d magic dice remaining", remaining))
	}
	return nil
}

func (castKind) buildRoll(a *Action) (*roller.RollFormulaInput, []glog.Modifier) {
	return &roller.RollFormulaInput{
		Formula: fmt.Sprintf("%dd%d", a.input.MagicDice, glog.CoreDieSides),
	}, nil
}

func (castKind) stateChanges(a *Action) []glog.StateChange {
	return []glog.StateChange{{
		Path:   "resources.magicDice.used",
		Value:  a.char.Resources.MagicDice.Used + a.input.MagicDice,
		Reason: fmt.Sprintf("cast %s", a.input.SpellName),
	}}
}

// autoSelectWeapon prefers the heavier size class, tie-broken by higher
// damage magnitude. Returns nil when nothing is equipped.
func autoSelectWeapon(char *glog.Character) *glog.Item {
	var best *glog.Item
	for _, w := range char.EquippedWeapons() {
		if best == nil {
			best = w
			continue
		}
		wp, bp := glog.SizePriority(w.Size), glog.SizePriority(best.Size)
		if wp > bp || (wp == bp && w.DamageMagnitude() > best.DamageMagnitude()) {
			best = w
		}
	}
	return best
}

// findAmmo returns the first gear item with any quantity left.
func findAmmo(char *glog.Character) *glog.Item {
	for i := range char.Items {
		item := &char.Items[i]
		if item.Kind == glog.ItemKindGear && item.Quantity > 0 {
			return item
		}
	}
	return nil
}

// statModifiers expands a combat stat into its base value plus the applied
// bonus breakdown, so the output itemizes where the number came from.
func statModifiers(stat glog.Stat, source, label string) []glog.Modifier {
	var mods []glog.Modifier
	if stat.Base != 0 {
		mods = append(mods, glog.Modifier{
			Source:   source,
			Category: categoryBase,
			Value:    stat.Base,
			Reason:   fmt.Sprintf("%+d %s", stat.Base, label),
		})
	}
	if len(stat.Breakdown) == 0 {
		if stat.Bonus != 0 {
			mods = append(mods, glog.Modifier{
				Source:   source + ".bonus",
				Category: categoryBase,
				Value:    stat.Bonus,
				Reason:   fmt.Sprintf("%+d feature bonuses", stat.Bonus),
			})
		}
		return mods
	}
	for _, p := range stat.Breakdown {
		mods = append(mods, glog.Modifier{
			Source:   p.Source,
			Category: categoryBase,
			Value:    p.Value,
			Reason:   fmt.Sprintf("%+d %s", p.Value, p.Source),
		})
	}
	return mods
}
