package glog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

func TestAttributeModifierCurve(t *testing.T) {
	expected := map[int]int{
		1: -3, 2: -3, 3: -2, 4: -2, 5: -1, 6: -1,
		7: 0,
		8: 1, 9: 1, 10: 2, 11: 2, 12: 3, 13: 3, 14: 4,
	}
	for value, mod := range expected {
		assert.Equal(t, mod, glog.AttributeModifier(value), "value %d", value)
	}
}

// The effective modifier must sit on the same curve as the base modifier:
// recomputing from the effective value and looking up the shifted value
// directly have to agree for every value and penalty combination.
func TestEffectiveModifierMatchesCurve(t *testing.T) {
	for value := 1; value <= 18; value++ {
		for penalty := 0; penalty <= 5; penalty++ {
			a := glog.Attribute{Value: value, Penalty: penalty}
			assert.Equal(t, glog.AttributeModifier(a.EffectiveValue()), a.EffectiveModifier(),
				"value %d penalty %d", value, penalty)
		}
	}
}

func TestEncumbranceDampensDexterity(t *testing.T) {
	c := &glog.Character{
		Attributes: map[string]glog.Attribute{
			glog.AttributeDexterity: {Value: 12},
			glog.AttributeStrength:  {Value: 12},
		},
		Inventory: glog.Inventory{SlotPenalty: 1, EquipmentPenalty: 1},
	}

	dex := c.EffectiveAttribute(glog.AttributeDexterity)
	assert.Equal(t, 10, dex.EffectiveValue())
	assert.Equal(t, 2, dex.EffectiveModifier())
	assert.Equal(t, 3, dex.Modifier(), "base modifier still reads the raw value")

	str := c.EffectiveAttribute(glog.AttributeStrength)
	assert.Equal(t, 12, str.EffectiveValue(), "only dexterity carries the encumbrance penalty")
}

func TestEffectiveValueFloorsAtZero(t *testing.T) {
	a := glog.Attribute{Value: 2, Penalty: 5}
	assert.Equal(t, 0, a.EffectiveValue())
}

func TestDamageMagnitudeOrdersWeapons(t *testing.T) {
	greatsword := &glog.Item{Kind: glog.ItemKindWeapon, DamageFormula: "2d6"}
	sword := &glog.Item{Kind: glog.ItemKindWeapon, DamageFormula: "1d6+1"}
	dagger := &glog.Item{Kind: glog.ItemKindWeapon, DamageFormula: "1d4"}

	assert.Greater(t, greatsword.DamageMagnitude(), sword.DamageMagnitude())
	assert.Greater(t, sword.DamageMagnitude(), dagger.DamageMagnitude())
}

func TestTemplateCount(t *testing.T) {
	c := &glog.Character{ClassTemplates: []string{"fighter", "fighter", "wizard"}}
	assert.Equal(t, 2, c.TemplateCount("fighter"))
	assert.Equal(t, 1, c.TemplateCount("wizard"))
	assert.Equal(t, 0, c.TemplateCount("thief"))
}
