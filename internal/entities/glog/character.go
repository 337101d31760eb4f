// Package glog implements the GLOG 2d6 domain entities.
//
// These are data-only structs: derived numbers (modifiers, encumbrance,
// bonus totals) are produced by the bonuses and rulebook packages and
// written back as explicit changes, never accumulated in place.
package glog

import "github.com/KirkDiggler/rpg-toolkit/core"

// Compile-time check that Character satisfies the toolkit entity contract
var _ core.Entity = (*Character)(nil)

// Provenance names where one bonus contribution came from.
type Provenance struct {
	Source string `json:"source"`
	Value  int    `json:"value"`
	Type   string `json:"type,omitempty"`
}

// Attribute is one of the six core stats. Penalty is the temporary
// reduction current encumbrance imposes (dexterity only today); Bonus and
// Breakdown are the applied aggregator output.
type Attribute struct {
	Value     int          `json:"value" yaml:"value"`
	Bonus     int          `json:"bonus,omitempty" yaml:"bonus,omitempty"`
	Penalty   int          `json:"penalty,omitempty" yaml:"penalty,omitempty"`
	Breakdown []Provenance `json:"breakdown,omitempty" yaml:"-"`
}

// Modifier is the base modifier derived from Value alone.
func (a Attribute) Modifier() int { return AttributeModifier(a.Value) }

// EffectiveValue is the value after bonuses and temporary penalties,
// floored at zero.
func (a Attribute) EffectiveValue() int {
	v := a.Value + a.Bonus - a.Penalty
	if v < 0 {
		return 0
	}
	return v
}

// EffectiveModifier is the modifier recomputed from EffectiveValue. It must
// sit on the same curve as Modifier.
func (a Attribute) EffectiveModifier() int { return AttributeModifier(a.EffectiveValue()) }

// Stat is a combat number with an applied bonus and its provenance.
type Stat struct {
	Base      int          `json:"base" yaml:"base"`
	Bonus     int          `json:"bonus,omitempty" yaml:"bonus,omitempty"`
	Breakdown []Provenance `json:"breakdown,omitempty" yaml:"-"`
}

// Total is base plus applied bonus.
func (s Stat) Total() int { return s.Base + s.Bonus }

// Combat holds the character's combat stats.
type Combat struct {
	Attack  Stat `json:"attack" yaml:"attack"`
	Archery Stat `json:"archery" yaml:"archery"`
	Defense Stat `json:"defense" yaml:"defense"`
}

// Skill is a named learned skill.
type Skill struct {
	Bonus     int          `json:"bonus" yaml:"bonus"`
	Breakdown []Provenance `json:"breakdown,omitempty" yaml:"-"`
}

// Pool is an expendable resource with a derived maximum. Max is recomputed
// from Base plus capacity bonuses; Used counts expenditure since last rest.
type Pool struct {
	Base int `json:"base" yaml:"base"`
	Max  int `json:"max" yaml:"max"`
	Used int `json:"used" yaml:"used"`
}

// Remaining is how much of the pool is left.
func (p Pool) Remaining() int {
	r := p.Max - p.Used
	if r < 0 {
		return 0
	}
	return r
}

// Resources holds the character's expendable pools.
type Resources struct {
	MagicDice  Pool `json:"magicDice" yaml:"magicDice"`
	SpellSlots Pool `json:"spellSlots" yaml:"spellSlots"`
}

// Inventory tracks slot usage. Encumbrance is the sum of slot overflow and
// equipment penalties and feeds the dexterity effective value.
type Inventory struct {
	SlotsUsed        int `json:"slotsUsed" yaml:"slotsUsed"`
	SlotCapacityBase int `json:"slotCapacityBase" yaml:"slotCapacityBase"`
	SlotCapacity     int `json:"slotCapacity" yaml:"slotCapacity"`
	SlotPenalty      int `json:"slotPenalty" yaml:"slotPenalty"`
	EquipmentPenalty int `json:"equipmentPenalty" yaml:"equipmentPenalty"`
}

// Encumbrance is the total temporary penalty carried weight imposes.
func (inv Inventory) Encumbrance() int { return inv.SlotPenalty + inv.EquipmentPenalty }

// Character is the full character record. The persistence layer owns it;
// the core treats a loaded character as a read-mostly snapshot and emits
// StateChange batches instead of mutating in place.
type Character struct {
	ID             string               `json:"id" yaml:"id"`
	PlayerID       string               `json:"playerId" yaml:"playerId"`
	Name           string               `json:"name" yaml:"name"`
	Level          int                  `json:"level" yaml:"level"`
	ClassTemplates []string             `json:"classTemplates" yaml:"classTemplates"`
	Attributes     map[string]Attribute `json:"attributes" yaml:"attributes"`
	Combat         Combat               `json:"combat" yaml:"combat"`
	Skills         map[string]Skill     `json:"skills,omitempty" yaml:"skills,omitempty"`
	Resources      Resources            `json:"resources" yaml:"resources"`
	Inventory      Inventory            `json:"inventory" yaml:"inventory"`
	Items          []Item               `json:"items,omitempty" yaml:"items,omitempty"`
	Features       []Feature            `json:"features,omitempty" yaml:"features,omitempty"`
	CreatedAt      int64                `json:"createdAt" yaml:"-"`
	UpdatedAt      int64                `json:"updatedAt" yaml:"-"`
}

// GetID implements core.Entity.
func (c *Character) GetID() string { return c.ID }

// GetType implements core.Entity.
func (c *Character) GetType() string { return "character" }

// Attribute returns the named attribute, zero-valued if absent.
func (c *Character) Attribute(name string) Attribute {
	if c.Attributes == nil {
		return Attribute{}
	}
	return c.Attributes[name]
}

// EffectiveAttribute returns the named attribute with the live encumbrance
// penalty overlaid. Only dexterity is dampened by carried weight.
func (c *Character) EffectiveAttribute(name string) Attribute {
	a := c.Attribute(name)
	if name == AttributeDexterity {
		a.Penalty = c.Inventory.Encumbrance()
	}
	return a
}

// Encumbered reports whether any encumbrance penalty applies.
func (c *Character) Encumbered() bool { return c.Inventory.Encumbrance() > 0 }

// TemplateCount counts acquired templates of the given class.
func (c *Character) TemplateCount(class string) int {
	n := 0
	for _, t := range c.ClassTemplates {
		if t == class {
			n++
		}
	}
	return n
}

// Item returns the item with the given ID, or nil.
func (c *Character) Item(id string) *Item {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// EquippedItems returns pointers to every equipped item.
func (c *Character) EquippedItems() []*Item {
	var out []*Item
	for i := range c.Items {
		if c.Items[i].Equipped {
			out = append(out, &c.Items[i])
		}
	}
	return out
}

// EquippedWeapons returns equipped weapons only.
func (c *Character) EquippedWeapons() []*Item {
	var out []*Item
	for _, it := range c.EquippedItems() {
		if it.IsWeapon() {
			out = append(out, it)
		}
	}
	return out
}

// ActiveFeatures returns the features currently switched on.
func (c *Character) ActiveFeatures() []Feature {
	var out []Feature
	for _, f := range c.Features {
		if f.Active {
			out = append(out, f)
		}
	}
	return out
}

// ActiveFeatureNames returns the names of active features, in order.
func (c *Character) ActiveFeatureNames() []string {
	var out []string
	for _, f := range c.ActiveFeatures() {
		out = append(out, f.Name)
	}
	return out
}

// StateChange is one queued mutation against a character record, applied by
// the persistence layer as part of a batch.
type StateChange struct {
	Path   string      `json:"path"`
	Value  interface{} `json:"value"`
	Reason string      `json:"reason"`
}
