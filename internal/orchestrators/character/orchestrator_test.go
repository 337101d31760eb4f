package character_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	charorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/character"
	"github.com/materialcontext/glog2d6-api/internal/pkg/idgen"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
	charactermock "github.com/materialcontext/glog2d6-api/internal/repositories/character/mock"
)

type CharacterOrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *charactermock.MockRepository
	service  charorc.Service
	ctx      context.Context
}

func (s *CharacterOrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = charactermock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	svc, err := charorc.NewOrchestrator(&charorc.Config{
		CharacterRepo: s.mockRepo,
		IDGenerator:   idgen.NewSequential("id"),
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *CharacterOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

const validSheet = `
name: Grimnir
playerId: player-1
level: 3
classTemplates: [fighter, fighter]
attributes:
  strength:
    value: 10
  dexterity:
    value: 8
items:
  - name: Sword
    kind: weapon
    size: medium
    category: melee
    damageFormula: 1d6+1
    equipped: true
features:
  - kind: combat_training
    name: Combat Training
    template: fighter
    level: 1
    active: true
`

func (s *CharacterOrchestratorTestSuite) expectRecalculate(char *glog.Character, captured *characterrepo.ApplyChangesInput) {
	s.mockRepo.EXPECT().
		Get(s.ctx, characterrepo.GetInput{ID: char.ID}).
		Return(&characterrepo.GetOutput{Character: char}, nil)

	s.mockRepo.EXPECT().
		ApplyChanges(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.ApplyChangesInput) (*characterrepo.ApplyChangesOutput, error) {
			if captured != nil {
				*captured = input
			}
			return &characterrepo.ApplyChangesOutput{Character: char}, nil
		})
}

func (s *CharacterOrchestratorTestSuite) TestImportNormalizesSheet() {
	var created *glog.Character
	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.CreateInput) (*characterrepo.CreateOutput, error) {
			created = input.Character
			return &characterrepo.CreateOutput{Character: input.Character}, nil
		})

	var applied characterrepo.ApplyChangesInput
	s.mockRepo.EXPECT().
		Get(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.GetInput) (*characterrepo.GetOutput, error) {
			s.Equal("id_1", input.ID)
			return &characterrepo.GetOutput{Character: created}, nil
		})
	s.mockRepo.EXPECT().
		ApplyChanges(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.ApplyChangesInput) (*characterrepo.ApplyChangesOutput, error) {
			applied = input
			return &characterrepo.ApplyChangesOutput{Character: created}, nil
		})

	output, err := s.service.Import(s.ctx, &charorc.ImportInput{Sheet: []byte(validSheet)})
	s.Require().NoError(err)
	s.Require().NotNil(output.Character)

	s.Equal("id_1", created.ID)
	s.Equal("Grimnir", created.Name)
	s.Equal("id_2", created.Items[0].ID)
	s.Equal("id_3", created.Features[0].ID)
	s.Equal(glog.FeatureCombatTraining, created.Features[0].Kind)

	// Omitted attributes land on the neutral point of the curve.
	s.Equal(7, created.Attributes[glog.AttributeConstitution].Value)
	s.Equal(10, created.Attributes[glog.AttributeStrength].Value)

	// Capacity defaults to strength.
	s.Equal(10, created.Inventory.SlotCapacityBase)

	s.NotEmpty(applied.Changes)
}

func (s *CharacterOrchestratorTestSuite) TestImportCollectsAllProblems() {
	sheet := `
attributes:
  luck:
    value: 9
features:
  - kind: double_jump
    name: Double Jump
`
	_, err := s.service.Import(s.ctx, &charorc.ImportInput{Sheet: []byte(sheet)})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	messages := errors.ValidationMessages(err)
	s.Len(messages, 3)
	s.Contains(messages, "character name is required")
	s.Contains(messages, `unknown attribute "luck"`)
	s.Contains(messages, `feature "Double Jump": unknown feature kind "double_jump"`)
}

func (s *CharacterOrchestratorTestSuite) TestImportRejectsMalformedYAML() {
	_, err := s.service.Import(s.ctx, &charorc.ImportInput{Sheet: []byte("{not yaml: [")})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *CharacterOrchestratorTestSuite) TestImportRejectsEmptySheet() {
	_, err := s.service.Import(s.ctx, &charorc.ImportInput{Sheet: nil})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *CharacterOrchestratorTestSuite) TestImportPlayerIDOverride() {
	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.CreateInput) (*characterrepo.CreateOutput, error) {
			s.Equal("player-override", input.Character.PlayerID)
			return &characterrepo.CreateOutput{Character: input.Character}, nil
		})
	s.mockRepo.EXPECT().
		Get(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.GetInput) (*characterrepo.GetOutput, error) {
			char := &glog.Character{ID: input.ID, Name: "Grimnir"}
			return &characterrepo.GetOutput{Character: char}, nil
		})
	s.mockRepo.EXPECT().
		ApplyChanges(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.ApplyChangesInput) (*characterrepo.ApplyChangesOutput, error) {
			return &characterrepo.ApplyChangesOutput{Character: &glog.Character{ID: input.CharacterID}}, nil
		})

	_, err := s.service.Import(s.ctx, &charorc.ImportInput{
		Sheet:    []byte(validSheet),
		PlayerID: "player-override",
	})
	s.Require().NoError(err)
}

// A capacity bonus can lift a character out of encumbrance, and stealth
// bonuses key off the settled encumbrance. The recalculation has to order
// those correctly.
func (s *CharacterOrchestratorTestSuite) TestRecalculatePackMuleUnblocksStealth() {
	char := &glog.Character{
		ID:             "char-1",
		Name:           "Tamsin",
		ClassTemplates: []string{"thief"},
		Attributes: map[string]glog.Attribute{
			glog.AttributeDexterity: {Value: 12},
		},
		Inventory: glog.Inventory{
			SlotsUsed:        11,
			SlotCapacityBase: 10,
			SlotCapacity:     10,
		},
		Features: []glog.Feature{
			{ID: "feat-1", Kind: glog.FeaturePackMule, Name: "Pack Mule", Active: true},
			{ID: "feat-2", Kind: glog.FeatureStealthTraining, Name: "Stealth Training", Active: true},
		},
	}

	var applied characterrepo.ApplyChangesInput
	s.expectRecalculate(char, &applied)

	output, err := s.service.Recalculate(s.ctx, &charorc.RecalculateInput{CharacterID: "char-1"})
	s.Require().NoError(err)
	s.Require().NotNil(output.Character)
	s.Equal("char-1", applied.CharacterID)

	// Pack Mule lifts capacity to 12, so 11 slots used is no overflow.
	s.Equal(0, s.changeValue(applied.Changes, "inventory.slotPenalty"))
	s.Equal(12, s.changeValue(applied.Changes, "inventory.slotCapacity"))

	// Unencumbered, stealth training contributes.
	s.Equal(2, s.changeValue(applied.Changes, "skills.sneak.bonus"))
	s.Equal(0, s.changeValue(applied.Changes, "attributes.dexterity.penalty"))
}

func (s *CharacterOrchestratorTestSuite) TestRecalculateEncumbranceGatesStealth() {
	char := &glog.Character{
		ID:   "char-2",
		Name: "Tamsin",
		Attributes: map[string]glog.Attribute{
			glog.AttributeDexterity: {Value: 12},
		},
		Inventory: glog.Inventory{
			SlotsUsed:        11,
			SlotCapacityBase: 10,
			SlotCapacity:     10,
		},
		Items: []glog.Item{
			{ID: "itm-armor", Kind: glog.ItemKindArmor, Name: "Chain Shirt", Equipped: true, EncumbrancePenalty: 1},
		},
		Features: []glog.Feature{
			{ID: "feat-1", Kind: glog.FeatureStealthTraining, Name: "Stealth Training", Active: true},
		},
	}

	var applied characterrepo.ApplyChangesInput
	s.expectRecalculate(char, &applied)

	_, err := s.service.Recalculate(s.ctx, &charorc.RecalculateInput{CharacterID: "char-2"})
	s.Require().NoError(err)

	s.Equal(1, s.changeValue(applied.Changes, "inventory.slotPenalty"))
	s.Equal(1, s.changeValue(applied.Changes, "inventory.equipmentPenalty"))

	// Encumbered: stealth training is suppressed and the stale bonus is
	// overwritten with zero rather than left in place.
	s.Equal(0, s.changeValue(applied.Changes, "skills.sneak.bonus"))
	s.Equal(2, s.changeValue(applied.Changes, "attributes.dexterity.penalty"))
}

func (s *CharacterOrchestratorTestSuite) TestRecalculateRequiresCharacterID() {
	_, err := s.service.Recalculate(s.ctx, &charorc.RecalculateInput{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *CharacterOrchestratorTestSuite) TestGetPassthrough() {
	char := &glog.Character{ID: "char-1", Name: "Grimnir"}
	s.mockRepo.EXPECT().
		Get(s.ctx, characterrepo.GetInput{ID: "char-1"}).
		Return(&characterrepo.GetOutput{Character: char}, nil)

	output, err := s.service.Get(s.ctx, &charorc.GetInput{CharacterID: "char-1"})
	s.Require().NoError(err)
	s.Equal("Grimnir", output.Character.Name)
}

func (s *CharacterOrchestratorTestSuite) TestGetMissingCharacter() {
	s.mockRepo.EXPECT().
		Get(s.ctx, characterrepo.GetInput{ID: "nope"}).
		Return(nil, errors.NotFoundf("character %s not found", "nope"))

	_, err := s.service.Get(s.ctx, &charorc.GetInput{CharacterID: "nope"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *CharacterOrchestratorTestSuite) TestListPassthrough() {
	chars := []*glog.Character{
		{ID: "char-1", Name: "Grimnir"},
		{ID: "char-2", Name: "Tamsin"},
	}
	s.mockRepo.EXPECT().
		ListByPlayerID(s.ctx, characterrepo.ListByPlayerIDInput{PlayerID: "player-1"}).
		Return(&characterrepo.ListByPlayerIDOutput{Characters: chars}, nil)

	output, err := s.service.List(s.ctx, &charorc.ListInput{PlayerID: "player-1"})
	s.Require().NoError(err)
	s.Len(output.Characters, 2)
}

func (s *CharacterOrchestratorTestSuite) TestDeletePassthrough() {
	s.mockRepo.EXPECT().
		Delete(s.ctx, characterrepo.DeleteInput{ID: "char-1"}).
		Return(&characterrepo.DeleteOutput{}, nil)

	_, err := s.service.Delete(s.ctx, &charorc.DeleteInput{CharacterID: "char-1"})
	s.Require().NoError(err)
}

func (s *CharacterOrchestratorTestSuite) TestConfigRequiresRepo() {
	_, err := charorc.NewOrchestrator(&charorc.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *CharacterOrchestratorTestSuite) changeValue(changes []glog.StateChange, path string) int {
	s.T().Helper()
	for _, ch := range changes {
		if ch.Path == path {
			v, ok := ch.Value.(int)
			s.Require().True(ok, "change %s is not an int", path)
			return v
		}
	}
	s.Require().Failf("change not found", "no change for path %s", path)
	return 0
}

func TestCharacterOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(CharacterOrchestratorTestSuite))
}
