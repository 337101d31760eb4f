// Package equipment implements the equipment orchestrator. Equipping an
// item first resolves which currently-equipped items conflict with it, then
// swaps the whole set in one batched write. Unequip requests bypass the
// resolver entirely.
package equipment

//go:generate mockgen -destination=mock/mock_service.go -package=equipmentmock github.com/materialcontext/glog2d6-api/internal/orchestrators/equipment Service

import (
	"context"
	"log/slog"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
)

// Service defines the interface for equipment operations
type Service interface {
	// Equip equips an item, unequipping whatever conflicts with it.
	// Returns errors.NotFound if the character or item is missing and
	// errors.InvalidArgument if the item cannot be equipped at all.
	Equip(ctx context.Context, input *EquipInput) (*EquipOutput, error)

	// Unequip clears an item's equipped flag. No conflict rules apply.
	Unequip(ctx context.Context, input *UnequipInput) (*UnequipOutput, error)
}

// Config holds the dependencies for the equipment orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	return vb.Build()
}

type orchestrator struct {
	characterRepo characterrepo.Repository
}

// NewOrchestrator creates a new equipment orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &orchestrator{characterRepo: cfg.CharacterRepo}, nil
}

func (o *orchestrator) Equip(ctx context.Context, input *EquipInput) (*EquipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	getOut, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := getOut.Character

	candidate := char.Item(input.ItemID)
	if candidate == nil {
		return nil, errors.NotFoundf("item %s not found on character %s", input.ItemID, input.CharacterID)
	}
	if candidate.Equipped {
		return &EquipOutput{Character: char}, nil
	}

	conflicts := conflictsFor(char, candidate)
	unequipIDs := make([]string, 0, len(conflicts))
	for _, item := range conflicts {
		unequipIDs = append(unequipIDs, item.ID)
	}

	slog.InfoContext(ctx, "equipping item",
		"character_id", char.ID,
		"item_id", candidate.ID,
		"item_kind", string(candidate.Kind),
		"unequipped", unequipIDs)

	setOut, err := o.characterRepo.SetEquipped(ctx, characterrepo.SetEquippedInput{
		CharacterID: char.ID,
		Equip:       []string{candidate.ID},
		Unequip:     unequipIDs,
	})
	if err != nil {
		return nil, err
	}

	return &EquipOutput{Character: setOut.Character, Unequipped: unequipIDs}, nil
}

func (o *orchestrator) Unequip(ctx context.Context, input *UnequipInput) (*UnequipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	setOut, err := o.characterRepo.SetEquipped(ctx, characterrepo.SetEquippedInput{
		CharacterID: input.CharacterID,
		Unequip:     []string{input.ItemID},
	})
	if err != nil {
		return nil, err
	}

	return &UnequipOutput{Character: setOut.Character}, nil
}

// conflictsFor selects a rule-set by the candidate's item kind and returns
// the equipped items that must come off before the candidate goes on.
// Unknown kinds conflict with nothing.
func conflictsFor(char *glog.Character, candidate *glog.Item) []*glog.Item {
	switch candidate.Kind {
	case glog.ItemKindWeapon:
		return weaponConflicts(char, candidate)
	case glog.ItemKindShield:
		return shieldConflicts(char, candidate)
	case glog.ItemKindArmor:
		return armorConflicts(char, candidate)
	default:
		return nil
	}
}

func weaponConflicts(char *glog.Character, candidate *glog.Item) []*glog.Item {
	equipped := char.EquippedItems()

	// A heavy weapon wants both hands: every weapon and shield comes off.
	if candidate.IsHeavy() {
		var out []*glog.Item
		for _, item := range equipped {
			if item.IsWeapon() || item.Kind == glog.ItemKindShield {
				out = append(out, item)
			}
		}
		return out
	}

	var out []*glog.Item
	var remaining []*glog.Item
	for _, item := range equipped {
		if !item.IsWeapon() {
			continue
		}
		switch {
		case item.IsHeavy():
			// Two-handed exclusivity cuts both ways.
			out = append(out, item)
		case item.Category.MeleeCompatible() != candidate.Category.MeleeCompatible():
			out = append(out, item)
		default:
			remaining = append(remaining, item)
		}
	}

	if len(remaining)+1 > glog.TwoWeaponCapacity {
		out = append(out, weakestWeapon(remaining))
	}
	return out
}

func shieldConflicts(char *glog.Character, candidate *glog.Item) []*glog.Item {
	var out []*glog.Item
	var weapons []*glog.Item
	for _, item := range char.EquippedItems() {
		switch {
		case item.Kind == glog.ItemKindShield && item.ID != candidate.ID:
			out = append(out, item)
		case item.IsWeapon() && item.IsHeavy():
			out = append(out, item)
		case item.IsWeapon():
			weapons = append(weapons, item)
		}
	}
	// A shield needs a free hand.
	if len(weapons) >= glog.TwoWeaponCapacity {
		out = append(out, weakestWeapon(weapons))
	}
	return out
}

func armorConflicts(char *glog.Character, candidate *glog.Item) []*glog.Item {
	var out []*glog.Item
	for _, item := range char.EquippedItems() {
		if item.Kind == glog.ItemKindArmor && item.ID != candidate.ID {
			out = append(out, item)
		}
	}
	return out
}

// weakestWeapon picks the weapon with the lowest size priority, tie-broken
// by lowest damage magnitude.
func weakestWeapon(weapons []*glog.Item) *glog.Item {
	weakest := weapons[0]
	for _, w := range weapons[1:] {
		wp, bp := glog.SizePriority(w.Size), glog.SizePriority(weakest.Size)
		if wp < bp || (wp == bp && w.DamageMagnitude() < weakest.DamageMagnitude()) {
			weakest = w
		}
	}
	return weakest
}
