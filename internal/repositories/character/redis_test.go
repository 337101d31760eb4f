package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/pkg/clock"
	"github.com/materialcontext/glog2d6-api/internal/repositories/character"
	"github.com/materialcontext/glog2d6-api/internal/testutils"
)

const (
	testCharID   = "char_123"
	testPlayerID = "player_456"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    character.Repository
	clock   *clock.Fixed
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Unix(1700000000, 0))

	repo, err := character.NewRedis(&character.RedisConfig{
		Client: client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testCharacter() *glog.Character {
	return &glog.Character{
		ID:             testCharID,
		PlayerID:       testPlayerID,
		Name:           "Grimnir",
		Level:          2,
		ClassTemplates: []string{"fighter", "fighter"},
		Attributes: map[string]glog.Attribute{
			glog.AttributeStrength:  {Value: 9},
			glog.AttributeDexterity: {Value: 8},
		},
		Combat: glog.Combat{
			Attack:  glog.Stat{Base: 2},
			Defense: glog.Stat{Base: 1},
		},
		Resources: glog.Resources{
			MagicDice: glog.Pool{Base: 2, Max: 2},
		},
		Inventory: glog.Inventory{SlotCapacityBase: 8, SlotCapacity: 8},
		Items: []glog.Item{
			{ID: "itm_sword", Name: "Sword", Kind: glog.ItemKindWeapon, Size: glog.SizeMedium,
				Category: glog.CategoryMelee, DamageFormula: "1d6+1", Equipped: true},
			{ID: "itm_bow", Name: "Bow", Kind: glog.ItemKindWeapon, Size: glog.SizeMedium,
				Category: glog.CategoryRanged, DamageFormula: "1d6"},
		},
		Features: []glog.Feature{
			{ID: "feat_ct", Kind: glog.FeatureCombatTraining, Name: "Combat Training",
				Template: "fighter", Active: true},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	created, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)
	s.Equal(int64(1700000000), created.Character.CreatedAt)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal("Grimnir", got.Character.Name)
	s.Len(got.Character.Items, 2)
	s.Equal(9, got.Character.Attributes[glog.AttributeStrength].Value)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicateFails() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetMissingReturnsNotFound() {
	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_nope"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateStampsAndReindexes() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	updated := s.testCharacter()
	updated.PlayerID = "player_999"
	updated.Level = 3

	out, err := s.repo.Update(s.ctx, character.UpdateInput{Character: updated})
	s.Require().NoError(err)
	s.Equal(int64(1700000000), out.Character.CreatedAt)
	s.Equal(int64(1700003600), out.Character.UpdatedAt)

	old, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Empty(old.Characters)

	moved, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: "player_999"})
	s.Require().NoError(err)
	s.Require().Len(moved.Characters, 1)
	s.Equal(3, moved.Characters[0].Level)
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesRecordAndIndex() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: testCharID})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.True(errors.IsNotFound(err))

	list, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Empty(list.Characters)
}

func (s *RedisRepositoryTestSuite) TestApplyChangesPatchesNestedFields() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	out, err := s.repo.ApplyChanges(s.ctx, character.ApplyChangesInput{
		CharacterID: testCharID,
		Changes: []glog.StateChange{
			{Path: "combat.attack.bonus", Value: 2, Reason: "feature bonus recalculation"},
			{Path: "combat.attack.breakdown", Value: []glog.Provenance{
				{Source: "Combat Training", Value: 2, Type: "untyped"},
			}, Reason: "feature bonus recalculation"},
			{Path: "resources.magicDice.used", Value: 1, Reason: "spell cast"},
		},
	})
	s.Require().NoError(err)
	s.Equal(2, out.Character.Combat.Attack.Bonus)
	s.Require().Len(out.Character.Combat.Attack.Breakdown, 1)
	s.Equal("Combat Training", out.Character.Combat.Attack.Breakdown[0].Source)
	s.Equal(1, out.Character.Resources.MagicDice.Used)
	s.Equal(int64(1700000060), out.Character.UpdatedAt)

	// The patch is durable, not just reflected in the return value.
	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal(2, got.Character.Combat.Attack.Bonus)
}

func (s *RedisRepositoryTestSuite) TestApplyChangesAddressesItemsByID() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.ApplyChanges(s.ctx, character.ApplyChangesInput{
		CharacterID: testCharID,
		Changes: []glog.StateChange{
			{Path: "items.itm_sword.breakage", Value: glog.BreakageNotched, Reason: "matched low pair"},
		},
	})
	s.Require().NoError(err)
	s.Equal(glog.BreakageNotched, out.Character.Item("itm_sword").Breakage)
	s.Equal(glog.BreakageNone, out.Character.Item("itm_bow").Breakage)
}

func (s *RedisRepositoryTestSuite) TestApplyChangesCreatesMissingObjects() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.ApplyChanges(s.ctx, character.ApplyChangesInput{
		CharacterID: testCharID,
		Changes: []glog.StateChange{
			{Path: "skills.sneak.bonus", Value: 2, Reason: "feature bonus recalculation"},
		},
	})
	s.Require().NoError(err)
	s.Equal(2, out.Character.Skills["sneak"].Bonus)
}

func (s *RedisRepositoryTestSuite) TestApplyChangesEmptyBatchIsNoOp() {
	created, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	out, err := s.repo.ApplyChanges(s.ctx, character.ApplyChangesInput{CharacterID: testCharID})
	s.Require().NoError(err)
	s.Equal(created.Character.UpdatedAt, out.Character.UpdatedAt)
}

func (s *RedisRepositoryTestSuite) TestApplyChangesUnknownItemFails() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.ApplyChanges(s.ctx, character.ApplyChangesInput{
		CharacterID: testCharID,
		Changes: []glog.StateChange{
			{Path: "items.itm_ghost.breakage", Value: 1, Reason: "matched low pair"},
		},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestSetEquippedFlipsFlagsInOneWrite() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.SetEquipped(s.ctx, character.SetEquippedInput{
		CharacterID: testCharID,
		Equip:       []string{"itm_bow"},
		Unequip:     []string{"itm_sword"},
	})
	s.Require().NoError(err)
	s.False(out.Character.Item("itm_sword").Equipped)
	s.True(out.Character.Item("itm_bow").Equipped)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.True(got.Character.Item("itm_bow").Equipped)
}

func (s *RedisRepositoryTestSuite) TestSetEquippedUnknownItemFails() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.SetEquipped(s.ctx, character.SetEquippedInput{
		CharacterID: testCharID,
		Equip:       []string{"itm_ghost"},
	})
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
