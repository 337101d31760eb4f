package glog

import "fmt"

// FeatureKind is the closed set of capabilities a feature can grant.
// Bonus computations are keyed by kind, not by display name, so a typo in
// content data fails at load time instead of silently contributing nothing.
type FeatureKind string

// Feature kinds
const (
	FeatureCombatTraining  FeatureKind = "combat_training"
	FeatureArcheryStance   FeatureKind = "archery_stance"
	FeatureStealthTraining FeatureKind = "stealth_training"
	FeatureIronHide        FeatureKind = "iron_hide"
	FeatureArcaneReserve   FeatureKind = "arcane_reserve"
	FeaturePackMule        FeatureKind = "pack_mule"
	FeatureWeaponTrick     FeatureKind = "weapon_trick"
	FeatureDangerSense     FeatureKind = "danger_sense"
)

var featureKinds = map[FeatureKind]bool{
	FeatureCombatTraining:  true,
	FeatureArcheryStance:   true,
	FeatureStealthTraining: true,
	FeatureIronHide:        true,
	FeatureArcaneReserve:   true,
	FeaturePackMule:        true,
	FeatureWeaponTrick:     true,
	FeatureDangerSense:     true,
}

// ParseFeatureKind validates a raw kind string from content data.
func ParseFeatureKind(raw string) (FeatureKind, error) {
	kind := FeatureKind(raw)
	if !featureKinds[kind] {
		return "", fmt.Errorf("unknown feature kind %q", raw)
	}
	return kind, nil
}

// TriggersOnPair reports whether this kind reacts to a non-extreme matched
// pair on the core roll.
func (k FeatureKind) TriggersOnPair() bool {
	return k == FeatureWeaponTrick || k == FeatureDangerSense
}

// Feature is a named capability acquired from a class template. The core
// only ever reads Active; toggling is the player's business.
type Feature struct {
	ID       string      `json:"id" yaml:"id"`
	Kind     FeatureKind `json:"kind" yaml:"kind"`
	Name     string      `json:"name" yaml:"name"`
	Template string      `json:"template" yaml:"template"`
	Level    int         `json:"level" yaml:"level"`
	Active   bool        `json:"active" yaml:"active"`
}
