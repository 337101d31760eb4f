package glog

// Attribute names
const (
	AttributeStrength     = "strength"
	AttributeDexterity    = "dexterity"
	AttributeConstitution = "constitution"
	AttributeIntelligence = "intelligence"
	AttributeWisdom       = "wisdom"
	AttributeCharisma     = "charisma"
)

// AttributeNames lists the six attributes in display order.
var AttributeNames = []string{
	AttributeStrength,
	AttributeDexterity,
	AttributeConstitution,
	AttributeIntelligence,
	AttributeWisdom,
	AttributeCharisma,
}

// ItemKind identifies the broad item type an item belongs to.
type ItemKind string

// Item kinds
const (
	ItemKindWeapon ItemKind = "weapon"
	ItemKindArmor  ItemKind = "armor"
	ItemKindShield ItemKind = "shield"
	ItemKindGear   ItemKind = "gear"
)

// ItemSize is the size class of an item. Heavier weapons hit harder and
// demand both hands.
type ItemSize string

// Item sizes
const (
	SizeLight  ItemSize = "light"
	SizeMedium ItemSize = "medium"
	SizeHeavy  ItemSize = "heavy"
)

// SizePriority orders sizes for auto-selection and weakest-weapon
// tie-breaking. Higher wins.
func SizePriority(s ItemSize) int {
	switch s {
	case SizeHeavy:
		return 3
	case SizeMedium:
		return 2
	case SizeLight:
		return 1
	default:
		return 0
	}
}

// WeaponCategory places a weapon on the melee/ranged axis. Thrown weapons
// count as melee-compatible for dual wielding.
type WeaponCategory string

// Weapon categories
const (
	CategoryMelee  WeaponCategory = "melee"
	CategoryRanged WeaponCategory = "ranged"
	CategoryThrown WeaponCategory = "thrown"
)

// MeleeCompatible reports whether a weapon of this category can share hands
// with melee weapons.
func (c WeaponCategory) MeleeCompatible() bool {
	return c == CategoryMelee || c == CategoryThrown
}

// TwoWeaponCapacity is how many non-heavy weapons a character can hold at
// once.
const TwoWeaponCapacity = 2

// Die faces for the core resolution roll.
const (
	CoreDieSides = 6
	CoreDieCount = 2
)

// AttributeModifier converts an attribute value to its modifier on the 2d6
// curve: 0 at 7, stepping every two points away from it.
func AttributeModifier(value int) int {
	switch {
	case value == 7:
		return 0
	case value < 7:
		return -((8 - value) / 2)
	default:
		return (value - 6) / 2
	}
}
