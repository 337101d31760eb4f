// Package rulebook holds the conditional rule engine: a catalog of named
// calculation rules (numeric modifiers) and display rules (visibility
// decisions), evaluated against a context snapshot built from the in-flight
// action. The base catalog is immutable; customization happens only through
// an override map applied at construction.
package rulebook

import (
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// AttributeSnapshot is one attribute as seen by the rules.
type AttributeSnapshot struct {
	Value             int `json:"value"`
	Modifier          int `json:"modifier"`
	EffectiveValue    int `json:"effectiveValue"`
	EffectiveModifier int `json:"effectiveModifier"`
}

// ActorSnapshot is the rule-visible slice of the acting character, frozen
// at GatheringData time.
type ActorSnapshot struct {
	ID                 string                       `json:"id"`
	Name               string                       `json:"name"`
	Level              int                          `json:"level"`
	Attributes         map[string]AttributeSnapshot `json:"attributes"`
	Encumbrance        int                          `json:"encumbrance"`
	AttackTotal        int                          `json:"attackTotal"`
	ArcheryTotal       int                          `json:"archeryTotal"`
	DefenseTotal       int                          `json:"defenseTotal"`
	ActiveFeatures     []string                     `json:"activeFeatures"`
	FeatureKinds       []glog.FeatureKind           `json:"featureKinds"`
	MagicDiceRemaining int                          `json:"magicDiceRemaining"`
}

// HasFeature reports whether a feature kind is active on the actor.
func (a ActorSnapshot) HasFeature(kind glog.FeatureKind) bool {
	for _, k := range a.FeatureKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Attribute returns the named attribute snapshot, zero-valued if absent.
func (a ActorSnapshot) Attribute(name string) AttributeSnapshot {
	if a.Attributes == nil {
		return AttributeSnapshot{}
	}
	return a.Attributes[name]
}

// WeaponSnapshot is the resolved weapon for an attack, if any.
type WeaponSnapshot struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Size          glog.ItemSize       `json:"size"`
	Category      glog.WeaponCategory `json:"category"`
	DamageFormula string              `json:"damageFormula"`
	Breakage      int                 `json:"breakage"`
	Unarmed       bool                `json:"unarmed"`
	HasAmmo       bool                `json:"hasAmmo"`
	AmmoRemaining int                 `json:"ammoRemaining"`
}

// Environment carries caller-supplied tactical and environmental flags.
type Environment struct {
	Darkness   bool `json:"darkness"`
	LongRange  bool `json:"longRange"`
	Cover      bool `json:"cover"`
	HighGround bool `json:"highGround"`
}

// Options carries caller preferences that influence display decisions.
type Options struct {
	ShowDetails bool `json:"showDetails"`
	Debug       bool `json:"debug"`
}

// Context is the merged evaluation context for one action invocation.
// Rules treat it as read-only.
type Context struct {
	ActionType  string          `json:"actionType"`
	Actor       ActorSnapshot   `json:"actor"`
	Weapon      *WeaponSnapshot `json:"weapon,omitempty"`
	Environment Environment     `json:"environment"`
	Options     Options         `json:"options"`
	InCombat    bool            `json:"inCombat"`
}
