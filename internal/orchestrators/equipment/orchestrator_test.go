package equipment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/orchestrators/equipment"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
	charactermock "github.com/materialcontext/glog2d6-api/internal/repositories/character/mock"
)

const testCharID = "char_123"

type EquipmentOrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *charactermock.MockRepository
	service  equipment.Service
	ctx      context.Context
}

func (s *EquipmentOrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = charactermock.NewMockRepository(s.ctrl)

	service, err := equipment.NewOrchestrator(&equipment.Config{
		CharacterRepo: s.mockRepo,
	})
	s.Require().NoError(err)
	s.service = service
	s.ctx = context.Background()
}

func (s *EquipmentOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func weapon(id string, size glog.ItemSize, category glog.WeaponCategory, formula string, equipped bool) glog.Item {
	return glog.Item{
		ID: id, Name: id, Kind: glog.ItemKindWeapon, Equipped: equipped,
		Size: size, Category: category, DamageFormula: formula,
	}
}

func (s *EquipmentOrchestratorTestSuite) expectGet(char *glog.Character) {
	s.mockRepo.EXPECT().
		Get(s.ctx, characterrepo.GetInput{ID: testCharID}).
		Return(&characterrepo.GetOutput{Character: char}, nil)
}

// expectSetEquipped captures the batched write and answers with the input
// character so the suite can assert on the requested swap.
func (s *EquipmentOrchestratorTestSuite) expectSetEquipped(char *glog.Character, captured *characterrepo.SetEquippedInput) {
	s.mockRepo.EXPECT().
		SetEquipped(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.SetEquippedInput) (*characterrepo.SetEquippedOutput, error) {
			*captured = input
			return &characterrepo.SetEquippedOutput{Character: char}, nil
		})
}

func (s *EquipmentOrchestratorTestSuite) TestHeavyWeaponClearsShieldAndBothWeapons() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_dagger", glog.SizeLight, glog.CategoryMelee, "1d6", true),
			weapon("itm_club", glog.SizeLight, glog.CategoryMelee, "1d6", true),
			{ID: "itm_shield", Kind: glog.ItemKindShield, Equipped: true, ArmorBonus: 1},
			weapon("itm_maul", glog.SizeHeavy, glog.CategoryMelee, "2d6", false),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	out, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_maul"})
	s.Require().NoError(err)

	s.Equal([]string{"itm_maul"}, batch.Equip)
	s.ElementsMatch([]string{"itm_dagger", "itm_club", "itm_shield"}, batch.Unequip)
	s.ElementsMatch([]string{"itm_dagger", "itm_club", "itm_shield"}, out.Unequipped)
}

func (s *EquipmentOrchestratorTestSuite) TestRangedWeaponClearsMeleeWeapons() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
			weapon("itm_bow", glog.SizeMedium, glog.CategoryRanged, "1d6", false),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_bow"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_sword"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestThrownCountsAsMeleeCompatible() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
			weapon("itm_javelin", glog.SizeLight, glog.CategoryThrown, "1d6", false),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_javelin"})
	s.Require().NoError(err)
	s.Empty(batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestThirdWeaponEvictsWeakest() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
			weapon("itm_dagger", glog.SizeLight, glog.CategoryMelee, "1d6", true),
			weapon("itm_axe", glog.SizeMedium, glog.CategoryMelee, "1d6", false),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_axe"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_dagger"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestWeakestTieBreaksOnDamageMagnitude() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_club", glog.SizeLight, glog.CategoryMelee, "1d6", true),
			weapon("itm_knife", glog.SizeLight, glog.CategoryMelee, "1d4", true),
			weapon("itm_axe", glog.SizeMedium, glog.CategoryMelee, "1d6", false),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_axe"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_knife"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestShieldFreesAHand() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
			weapon("itm_dagger", glog.SizeLight, glog.CategoryMelee, "1d6", true),
			{ID: "itm_shield", Kind: glog.ItemKindShield, ArmorBonus: 1},
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_shield"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_dagger"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestSecondShieldReplacesFirst() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			{ID: "itm_shield_a", Kind: glog.ItemKindShield, Equipped: true, ArmorBonus: 1},
			{ID: "itm_shield_b", Kind: glog.ItemKindShield, ArmorBonus: 1},
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_shield_b"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_shield_a"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestArmorSwap() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			{ID: "itm_leather", Kind: glog.ItemKindArmor, Equipped: true, ArmorBonus: 1},
			{ID: "itm_plate", Kind: glog.ItemKindArmor, ArmorBonus: 3, EncumbrancePenalty: 2},
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
		},
	}
	s.expectGet(char)
	var batch characterrepo.SetEquippedInput
	s.expectSetEquipped(char, &batch)

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_plate"})
	s.Require().NoError(err)
	s.Equal([]string{"itm_leather"}, batch.Unequip)
}

func (s *EquipmentOrchestratorTestSuite) TestEquipAlreadyEquippedIsNoOp() {
	char := &glog.Character{
		ID: testCharID,
		Items: []glog.Item{
			weapon("itm_sword", glog.SizeMedium, glog.CategoryMelee, "1d6+1", true),
		},
	}
	s.expectGet(char)

	out, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_sword"})
	s.Require().NoError(err)
	s.Empty(out.Unequipped)
}

func (s *EquipmentOrchestratorTestSuite) TestEquipUnknownItemFails() {
	s.expectGet(&glog.Character{ID: testCharID})

	_, err := s.service.Equip(s.ctx, &equipment.EquipInput{CharacterID: testCharID, ItemID: "itm_ghost"})
	s.True(errors.IsNotFound(err))
}

func (s *EquipmentOrchestratorTestSuite) TestUnequipBypassesResolver() {
	char := &glog.Character{ID: testCharID}
	s.mockRepo.EXPECT().
		SetEquipped(s.ctx, characterrepo.SetEquippedInput{
			CharacterID: testCharID,
			Unequip:     []string{"itm_sword"},
		}).
		Return(&characterrepo.SetEquippedOutput{Character: char}, nil)

	out, err := s.service.Unequip(s.ctx, &equipment.UnequipInput{CharacterID: testCharID, ItemID: "itm_sword"})
	s.Require().NoError(err)
	s.Equal(char, out.Character)
}

func (s *EquipmentOrchestratorTestSuite) TestConfigRequiresRepo() {
	_, err := equipment.NewOrchestrator(&equipment.Config{})
	s.Error(err)
}

func TestEquipmentOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(EquipmentOrchestratorTestSuite))
}
