package glog

import (
	"regexp"
	"strconv"
	"strings"
)

// Breakage levels. A weapon at BreakageBroken still swings, just badly;
// the game is permissive about it.
const (
	BreakageNone    = 0
	BreakageNotched = 1
	BreakageBroken  = 2
)

// Item is one carried object. Equipped is the only field the equipment
// resolver mutates; everything else is read-only input to calculations.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Kind     ItemKind `json:"kind" yaml:"kind"`
	Equipped bool     `json:"equipped" yaml:"equipped"`

	// Weapon fields
	Size          ItemSize       `json:"size,omitempty" yaml:"size,omitempty"`
	Category      WeaponCategory `json:"category,omitempty" yaml:"category,omitempty"`
	DamageFormula string         `json:"damageFormula,omitempty" yaml:"damageFormula,omitempty"`
	Breakage      int            `json:"breakage,omitempty" yaml:"breakage,omitempty"`

	// Armor and shield fields
	ArmorBonus         int `json:"armorBonus,omitempty" yaml:"armorBonus,omitempty"`
	EncumbrancePenalty int `json:"encumbrancePenalty,omitempty" yaml:"encumbrancePenalty,omitempty"`

	// Gear fields (ammunition and the like)
	Quantity int `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// IsWeapon reports whether the item is a weapon.
func (i *Item) IsWeapon() bool { return i.Kind == ItemKindWeapon }

// IsHeavy reports whether the item is a heavy-size weapon.
func (i *Item) IsHeavy() bool { return i.Size == SizeHeavy }

var formulaTermRegex = regexp.MustCompile(`(\d+)d(\d+)|(\d+)`)

// DamageMagnitude estimates the mean result of the item's damage formula.
// Used only for ordering (auto-select, weakest-weapon tie-breaks), so halves
// are kept by working in doubled units.
func (i *Item) DamageMagnitude() int {
	doubled := 0
	for _, m := range formulaTermRegex.FindAllStringSubmatch(strings.ToLower(i.DamageFormula), -1) {
		if m[1] != "" {
			count, _ := strconv.Atoi(m[1])
			sides, _ := strconv.Atoi(m[2])
			doubled += count * (sides + 1)
		} else {
			flat, _ := strconv.Atoi(m[3])
			doubled += flat * 2
		}
	}
	return doubled
}

// Unarmed synthesizes the pseudo-weapon used when nothing is equipped.
func Unarmed() *Item {
	return &Item{
		ID:            "unarmed",
		Name:          "Unarmed",
		Kind:          ItemKindWeapon,
		Equipped:      true,
		Size:          SizeLight,
		Category:      CategoryMelee,
		DamageFormula: "1d6",
	}
}
