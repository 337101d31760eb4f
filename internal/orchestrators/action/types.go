package action

import (
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/rulebook"
	"github.com/materialcontext/glog2d6-api/internal/tracker"
)

// Phase is the pipeline state. Phases run strictly in order; any phase can
// transition to PhaseFailed and nothing runs after that.
type Phase string

// Pipeline phases
const (
	PhaseCreated              Phase = "created"
	PhaseValidating           Phase = "validating"
	PhaseGatheringData        Phase = "gathering_data"
	PhaseCalculating          Phase = "calculating"
	PhaseApplyingRules        Phase = "applying_rules"
	PhaseProducingOutput      Phase = "producing_output"
	PhaseApplyingStateChanges Phase = "applying_state_changes"
	PhaseCompleted            Phase = "completed"
	PhaseFailed               Phase = "failed"
)

// Kind selects the action variant.
type Kind string

// Action kinds
const (
	KindAttack Kind = "attack"
	KindCheck  Kind = "check"
	KindCast   Kind = "cast"
)

// ActionInput describes one resolution request.
type ActionInput struct {
	CharacterID string
	// UserID is the invoking user; when both it and the character's
	// player ID are set they must match.
	UserID string
	Kind   Kind

	// Attack fields. WeaponID empty means auto-select.
	WeaponID string

	// Check fields. Skill is optional; when set it names the action type
	// the rule catalog matches against.
	Attribute string
	Skill     string

	// Cast fields.
	SpellName string
	MagicDice int

	Environment rulebook.Environment
	Options     rulebook.Options
	InCombat    bool
}

// ModifierGroup is one ordered section of the modifier breakdown.
type ModifierGroup struct {
	Name      string          `json:"name"`
	Modifiers []glog.Modifier `json:"modifiers"`
	Subtotal  int             `json:"subtotal"`
}

// Result is the structured record handed to the output sink. It carries no
// markup; rendering is entirely the sink's concern.
type Result struct {
	ActionID      string `json:"actionId"`
	Kind          Kind   `json:"kind"`
	ActionType    string `json:"actionType"`
	CharacterID   string `json:"characterId"`
	CharacterName string `json:"characterName"`

	Outcome string `json:"outcome"`
	Total   int    `json:"total"`
	Formula string `json:"formula"`
	Faces   []int  `json:"faces"`

	ModifierGroups []ModifierGroup `json:"modifierGroups"`

	// Environment lists environmental-factor reasons, present only when
	// the display rules allow it.
	Environment []string `json:"environment,omitempty"`

	SecondaryEffects []string          `json:"secondaryEffects,omitempty"`
	Interactions     map[string]string `json:"interactions,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`

	Displays map[string]bool `json:"displays"`

	Audit tracker.Summary `json:"audit"`
	// AuditDump is populated only when the showAudit decision passes.
	AuditDump *tracker.Dump `json:"auditDump,omitempty"`
}

// Secondary effect labels.
const (
	EffectCriticalSuccess = "critical success"
	EffectCriticalFailure = "critical failure"
	EffectEquipmentDamage = "equipment damage"
	EffectSpellMishap     = "spell mishap"
	effectFeatureTrigger  = "feature trigger"
)

// InteractionDamage is the follow-up handle offered on a successful attack.
const InteractionDamage = "damage"

// EventActionResolved is published on the event bus after a pipeline
// completes. The result record rides in the event context under
// EventKeyResult; output sinks subscribe to this type.
const (
	EventActionResolved = "action.resolved"
	EventKeyResult      = "result"
)
