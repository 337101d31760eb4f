// Package character implements the character orchestrator: importing sheets
// from YAML, reading them back, and recalculating the derived numbers the
// bonus aggregator owns.
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charorcmock github.com/materialcontext/glog2d6-api/internal/orchestrators/character Service

import (
	"context"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/materialcontext/glog2d6-api/internal/bonuses"
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/pkg/idgen"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
)

// defaultAttributeValue is the curve's neutral point, used when a sheet
// omits an attribute.
const defaultAttributeValue = 7

// Service defines the interface for character operations
type Service interface {
	// Import parses a YAML sheet, validates it, stores it, and runs the
	// first recalculation. Returns errors.InvalidArgument with the full
	// message list for an invalid sheet.
	Import(ctx context.Context, input *ImportInput) (*ImportOutput, error)

	// Get retrieves a character by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List retrieves all characters for a player
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Recalculate rebuilds every aggregator-owned derived value and
	// applies the resulting change batch.
	Recalculate(ctx context.Context, input *RecalculateInput) (*RecalculateOutput, error)

	// Delete removes a character
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	IDGenerator   idgen.Generator
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
	idGen         idgen.Generator
}

// NewOrchestrator creates a new character orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("char")
	}

	return &orchestrator{
		characterRepo: cfg.CharacterRepo,
		idGen:         gen,
	}, nil
}

func (o *orchestrator) Import(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if len(input.Sheet) == 0 {
		return nil, errors.InvalidArgument("sheet cannot be empty")
	}

	var char glog.Character
	if err := yaml.Unmarshal(input.Sheet, &char); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "sheet is not valid YAML")
	}

	if input.PlayerID != "" {
		char.PlayerID = input.PlayerID
	}
	if err := o.normalize(&char); err != nil {
		return nil, err
	}

	created, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: &char})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "character imported",
		"character_id", created.Character.ID,
		"name", created.Character.Name,
		"level", created.Character.Level)

	recalc, err := o.Recalculate(ctx, &RecalculateInput{CharacterID: created.Character.ID})
	if err != nil {
		return nil, err
	}

	return &ImportOutput{Character: recalc.Character}, nil
}

// normalize fills defaults and validates everything a sheet can get wrong,
// collecting all problems before failing.
func (o *orchestrator) normalize(char *glog.Character) error {
	v := errors.NewValidationErrors()

	if char.Name == "" {
		v.Add("character name is required")
	}
	if char.Level < 1 {
		char.Level = 1
	}
	if char.ID == "" {
		char.ID = o.idGen.Generate()
	}

	if char.Attributes == nil {
		char.Attributes = make(map[string]glog.Attribute, len(glog.AttributeNames))
	}
	for name := range char.Attributes {
		if !validAttribute(name) {
			v.Addf("unknown attribute %q", name)
		}
	}
	for _, name := range glog.AttributeNames {
		if _, ok := char.Attributes[name]; !ok {
			char.Attributes[name] = glog.Attribute{Value: defaultAttributeValue}
		}
	}

	for i := range char.Items {
		if char.Items[i].ID == "" {
			char.Items[i].ID = o.idGen.Generate()
		}
		if char.Items[i].Name == "" {
			v.Addf("item %s has no name", char.Items[i].ID)
		}
	}

	for i := range char.Features {
		f := &char.Features[i]
		if f.ID == "" {
			f.ID = o.idGen.Generate()
		}
		kind, err := glog.ParseFeatureKind(string(f.Kind))
		if err != nil {
			v.Addf("feature %q: %v", f.Name, err)
			continue
		}
		f.Kind = kind
	}

	if char.Inventory.SlotCapacityBase == 0 {
		char.Inventory.SlotCapacityBase = defaultSlotCapacity(char)
	}
	if char.Inventory.SlotCapacity == 0 {
		char.Inventory.SlotCapacity = char.Inventory.SlotCapacityBase
	}

	return v.ToError()
}

func validAttribute(name string) bool {
	for _, n := range glog.AttributeNames {
		if n == name {
			return true
		}
	}
	return false
}

// defaultSlotCapacity is strength value capped at a sane floor, the usual
// table ruling.
func defaultSlotCapacity(char *glog.Character) int {
	capacity := char.Attribute(glog.AttributeStrength).Value
	if capacity < defaultAttributeValue {
		capacity = defaultAttributeValue
	}
	return capacity
}

func (o *orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}
	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: out.Character}, nil
}

func (o *orchestrator) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	out, err := o.characterRepo.ListByPlayerID(ctx, characterrepo.ListByPlayerIDInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Characters: out.Characters}, nil
}

func (o *orchestrator) Recalculate(ctx context.Context, input *RecalculateInput) (*RecalculateOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}

	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := out.Character

	// Two passes: capacity bonuses (pack mule) move the encumbrance
	// threshold, and encumbrance in turn gates stealth bonuses. The first
	// pass settles capacity, the second computes everything on the
	// settled inventory.
	totals := bonuses.Calculate(char)
	char.Inventory.SlotCapacity = char.Inventory.SlotCapacityBase + totals[bonuses.TargetSlotCapacity].Total
	char.Inventory.SlotPenalty = slotPenalty(char)
	char.Inventory.EquipmentPenalty = equipmentPenalty(char)

	totals = bonuses.Calculate(char)
	changes := []glog.StateChange{
		{Path: "inventory.slotPenalty", Value: char.Inventory.SlotPenalty, Reason: "encumbrance recalculation"},
		{Path: "inventory.equipmentPenalty", Value: char.Inventory.EquipmentPenalty, Reason: "encumbrance recalculation"},
	}
	changes = append(changes, bonuses.BuildChanges(char, totals)...)

	applied, err := o.characterRepo.ApplyChanges(ctx, characterrepo.ApplyChangesInput{
		CharacterID: char.ID,
		Changes:     changes,
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "character recalculated",
		"character_id", char.ID,
		"changes", len(changes))

	return &RecalculateOutput{Character: applied.Character, Changes: changes}, nil
}

func (o *orchestrator) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}
	if _, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{ID: input.CharacterID}); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}

// slotPenalty is the overflow above carrying capacity.
func slotPenalty(char *glog.Character) int {
	over := char.Inventory.SlotsUsed - char.Inventory.SlotCapacity
	if over < 0 {
		return 0
	}
	return over
}

// equipmentPenalty sums the encumbrance penalties of equipped items.
func equipmentPenalty(char *glog.Character) int {
	total := 0
	for _, item := range char.EquippedItems() {
		total += item.EncumbrancePenalty
	}
	return total
}
