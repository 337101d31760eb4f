package equipment

import (
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// EquipInput defines the input for equipping an item
type EquipInput struct {
	CharacterID string
	ItemID      string
}

// EquipOutput defines the output for equipping an item
type EquipOutput struct {
	Character *glog.Character
	// Unequipped lists the item IDs the resolver had to remove, in the
	// order they were considered.
	Unequipped []string
}

// UnequipInput defines the input for unequipping an item
type UnequipInput struct {
	CharacterID string
	ItemID      string
}

// UnequipOutput defines the output for unequipping an item
type UnequipOutput struct {
	Character *glog.Character
}
