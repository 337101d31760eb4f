// Package action implements the action resolution pipeline: a per-request
// state machine that validates the request, snapshots character state, rolls
// the dice, applies the rule catalog, assembles a structured result record,
// and writes the queued state changes back in one batch.
package action

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/pkg/clock"
	"github.com/materialcontext/glog2d6-api/internal/pkg/idgen"
	characterrepo "github.com/materialcontext/glog2d6-api/internal/repositories/character"
	"github.com/materialcontext/glog2d6-api/internal/roller"
	"github.com/materialcontext/glog2d6-api/internal/rulebook"
	"github.com/materialcontext/glog2d6-api/internal/tracker"
)

// categoryBase groups the modifiers that come from the character sheet
// itself rather than from the rule catalog.
const categoryBase = "base"

// Config holds the dependencies for the action orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	Roller        roller.Roller
	Rulebook      *rulebook.Engine
	EventBus      events.EventBus
	Clock         clock.Clock
	IDGenerator   idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.Rulebook == nil {
		vb.RequiredField("Rulebook")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	return vb.Build()
}

// Orchestrator builds single-use actions bound to its dependencies.
type Orchestrator struct {
	characterRepo characterrepo.Repository
	roller        roller.Roller
	rulebook      *rulebook.Engine
	eventBus      events.EventBus
	clock         clock.Clock
	idGen         idgen.Generator
}

// NewOrchestrator creates a new action orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("action")
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		roller:        cfg.Roller,
		rulebook:      cfg.Rulebook,
		eventBus:      cfg.EventBus,
		clock:         c,
		idGen:         gen,
	}, nil
}

// NewAction constructs one resolution request. The returned action executes
// exactly once.
func (o *Orchestrator) NewAction(input *ActionInput) (*Action, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	kind, err := kindFor(input.Kind)
	if err != nil {
		return nil, err
	}

	return &Action{
		id:           o.idGen.Generate(),
		orch:         o,
		kind:         kind,
		input:        input,
		phase:        PhaseCreated,
		tracker:      tracker.New(o.clock),
		interactions: make(map[string]string),
	}, nil
}

// Resolve is the one-shot convenience: build an action and execute it.
func (o *Orchestrator) Resolve(ctx context.Context, input *ActionInput) (*Result, error) {
	a, err := o.NewAction(input)
	if err != nil {
		return nil, err
	}
	return a.Execute(ctx)
}

// Action is one in-flight resolution. All execution state lives here, not
// on the orchestrator, so concurrent actions never share mutable data. The
// character snapshot is read once in Validating and never refreshed.
type Action struct {
	id    string
	orch  *Orchestrator
	kind  actionKind
	input *ActionInput

	mu       sync.Mutex
	executed bool

	phase   Phase
	tracker *tracker.Tracker

	char      *glog.Character
	weapon    *glog.Item
	ammo      *glog.Item
	unarmed   bool
	rctx      *rulebook.Context
	roll      *roller.RollFormulaOutput
	baseMods  []glog.Modifier
	ruleMods  []glog.Modifier
	results   rulebook.Results
	displays  map[string]bool
	warnings  []string
	secondary []string

	interactions map[string]string
	changes      []glog.StateChange
}

// ID returns the action's unique identifier.
func (a *Action) ID() string { return a.id }

// Phase returns the current pipeline phase.
func (a *Action) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *Action) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

func (a *Action) actionType() string { return a.kind.actionType(a) }

func (a *Action) warn(msg string) {
	a.warnings = append(a.warnings, msg)
	a.tracker.RecordDecision("warning", map[string]interface{}{"message": msg})
}

// Execute runs the pipeline once. A second call fails with
// FailedPrecondition, which is a caller bug, not a validation failure.
func (a *Action) Execute(ctx context.Context) (*Result, error) {
	a.mu.Lock()
	if a.executed {
		a.mu.Unlock()
		return nil, errors.FailedPrecondition("action already executed")
	}
	a.executed = true
	a.mu.Unlock()

	steps := []struct {
		phase Phase
		fn    func(context.Context) error
	}{
		{PhaseValidating, a.validating},
		{PhaseGatheringData, a.gatheringData},
		{PhaseCalculating, a.calculating},
		{PhaseApplyingRules, a.applyingRules},
	}
	for _, step := range steps {
		a.setPhase(step.phase)
		if err := step.fn(ctx); err != nil {
			return nil, a.fail(ctx, step.phase, err)
		}
	}

	a.setPhase(PhaseProducingOutput)
	result := a.produceOutput()

	a.setPhase(PhaseApplyingStateChanges)
	if err := a.applyingStateChanges(ctx); err != nil {
		return nil, a.fail(ctx, PhaseApplyingStateChanges, err)
	}

	a.setPhase(PhaseCompleted)
	a.publishResolved(ctx, result)
	slog.InfoContext(ctx, "action resolved",
		"action_id", a.id,
		"action_type", a.actionType(),
		"character_id", a.input.CharacterID,
		"total", result.Total,
		"outcome", result.Outcome)
	return result, nil
}

// publishResolved hands the finished result record to the bus. The action
// has already completed and persisted its changes, so a misbehaving sink
// is logged and swallowed rather than failing the resolution.
func (a *Action) publishResolved(ctx context.Context, result *Result) {
	evt := events.NewGameEvent(EventActionResolved, a.char, nil)
	evt.Context().Set(EventKeyResult, result)
	if err := a.orch.eventBus.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "result event delivery failed",
			"action_id", a.id,
			"error", err.Error())
	}
}

// fail records the error, marks the pipeline failed, and decides how much
// to tell the user: validation failures carry their messages through, any
// other error is a system fault reduced to a generic notice.
func (a *Action) fail(ctx context.Context, phase Phase, err error) error {
	a.setPhase(PhaseFailed)
	a.tracker.RecordError(err.Error(), string(phase))

	if len(errors.ValidationMessages(err)) > 0 {
		return err
	}

	slog.ErrorContext(ctx, "action pipeline fault",
		"action_id", a.id,
		"phase", string(phase),
		"action_type", a.actionType(),
		"error", err.Error())
	return errors.Wrapf(err, "action %s failed during %s", a.id, phase)
}

func (a *Action) validating(ctx context.Context) error {
	v := errors.NewValidationErrors()

	if a.input.CharacterID == "" {
		v.Add("No actor selected")
		return v.ToError()
	}

	out, err := a.orch.characterRepo.Get(ctx, characterrepo.GetInput{ID: a.input.CharacterID})
	if err != nil {
		if errors.IsNotFound(err) {
			v.Add("No actor selected")
			return v.ToError()
		}
		return err
	}
	a.char = out.Character

	if a.input.UserID != "" && a.char.PlayerID != "" && a.input.UserID != a.char.PlayerID {
		v.Addf("you do not control %s", a.char.Name)
	}
	a.kind.validate(a, v)

	return v.ToError()
}

func (a *Action) gatheringData(_ context.Context) error {
	a.tracker.RecordInput("character", a.char.Name, "repository")
	a.tracker.RecordInput("level", a.char.Level, "character")
	a.tracker.RecordInput("action_type", a.actionType(), "request")

	if err := a.kind.gather(a); err != nil {
		return err
	}

	a.rctx = a.buildContext()
	return nil
}

func (a *Action) buildContext() *rulebook.Context {
	attrs := make(map[string]rulebook.AttributeSnapshot, len(glog.AttributeNames))
	for _, name := range glog.AttributeNames {
		attr := a.char.EffectiveAttribute(name)
		attrs[name] = rulebook.AttributeSnapshot{
			Value:             attr.Value,
			Modifier:          attr.Modifier(),
			EffectiveValue:    attr.EffectiveValue(),
			EffectiveModifier: attr.EffectiveModifier(),
		}
	}

	var kinds []glog.FeatureKind
	for _, f := range a.char.ActiveFeatures() {
		kinds = append(kinds, f.Kind)
	}

	rctx := &rulebook.Context{
		ActionType: a.actionType(),
		Actor: rulebook.ActorSnapshot{
			ID:                 a.char.ID,
			Name:               a.char.Name,
			Level:              a.char.Level,
			Attributes:         attrs,
			Encumbrance:        a.char.Inventory.Encumbrance(),
			AttackTotal:        a.char.Combat.Attack.Total(),
			ArcheryTotal:       a.char.Combat.Archery.Total(),
			DefenseTotal:       a.char.Combat.Defense.Total(),
			ActiveFeatures:     a.char.ActiveFeatureNames(),
			FeatureKinds:       kinds,
			MagicDiceRemaining: a.char.Resources.MagicDice.Remaining(),
		},
		Environment: a.input.Environment,
		Options:     a.input.Options,
		InCombat:    a.input.InCombat,
	}

	if a.weapon != nil {
		rctx.Weapon = &rulebook.WeaponSnapshot{
			ID:            a.weapon.ID,
			Name:          a.weapon.Name,
			Size:          a.weapon.Size,
			Category:      a.weapon.Category,
			DamageFormula: a.weapon.DamageFormula,
			Breakage:      a.weapon.Breakage,
			Unarmed:       a.unarmed,
			HasAmmo:       a.ammo != nil || a.weapon.Category != glog.CategoryRanged,
		}
		if a.ammo != nil {
			rctx.Weapon.AmmoRemaining = a.ammo.Quantity
		}
	}
	return rctx
}

func (a *Action) calculating(ctx context.Context) error {
	rollInput, baseMods := a.kind.buildRoll(a)
	a.baseMods = baseMods

	for name, value := range rollInput.Variables {
		a.tracker.RecordInput("formula."+name, value, "character")
	}

	out, err := a.orch.roller.RollFormula(ctx, rollInput)
	if err != nil {
		return err
	}
	a.roll = out
	a.tracker.RecordRoll(out.Formula, out.Faces(), out.Total)
	for _, m := range baseMods {
		a.tracker.RecordModifier(m)
	}

	a.detectPair()
	return nil
}

// detectPair classifies a matched pair on the core dice term: maximum face
// is the critical-success class, minimum face the equipment-damage class,
// anything else checks the actor's pair-triggered features.
func (a *Action) detectPair() {
	var faces []int
	for _, t := range a.roll.Terms {
		if t.Kind == roller.TermDice {
			faces = t.Faces
			break
		}
	}
	face, ok := matchedPair(faces)
	if !ok {
		return
	}
	a.tracker.RecordDecision("matched_pair", map[string]interface{}{"face": face})

	switch face {
	case glog.CoreDieSides:
		a.secondary = append(a.secondary, EffectCriticalSuccess)
		if a.weapon != nil {
			a.interactions[InteractionDamage] = a.weapon.DamageFormula
		}
	case 1:
		if a.input.Kind == KindCast {
			a.secondary = append(a.secondary, EffectSpellMishap)
			return
		}
		if a.weapon == nil {
			a.secondary = append(a.secondary, EffectCriticalFailure)
			return
		}
		a.secondary = append(a.secondary, EffectEquipmentDamage)
		if a.weapon != nil && !a.unarmed && a.weapon.Breakage < glog.BreakageBroken {
			a.changes = append(a.changes, glog.StateChange{
				Path:   "items." + a.weapon.ID + ".breakage",
				Value:  a.weapon.Breakage + 1,
				Reason: "matched low pair",
			})
		}
	default:
		for _, f := range a.char.ActiveFeatures() {
			if f.Kind.TriggersOnPair() {
				a.secondary = append(a.secondary, effectFeatureTrigger+": "+f.Name)
			}
		}
	}
}

// matchedPair returns the highest face value appearing at least twice.
func matchedPair(faces []int) (int, bool) {
	counts := make(map[int]int, len(faces))
	best := 0
	for _, f := range faces {
		counts[f]++
		if counts[f] >= 2 && f > best {
			best = f
		}
	}
	return best, best > 0
}

func (a *Action) applyingRules(_ context.Context) error {
	mods, results := a.orch.rulebook.ApplyCalculationRules(a.actionType(), a.rctx)
	a.ruleMods = mods
	a.results = results
	for _, m := range mods {
		a.tracker.RecordModifier(m)
	}

	a.displays = a.orch.rulebook.ApplyDisplayRules(a.rctx, results)
	payload := make(map[string]interface{}, len(a.displays))
	for name, allowed := range a.displays {
		payload[name] = allowed
	}
	a.tracker.RecordDecision("display", payload)
	return nil
}

func (a *Action) produceOutput() *Result {
	ruleTotal := 0
	for _, m := range a.ruleMods {
		ruleTotal += m.Value
	}
	total := a.roll.Total + ruleTotal

	critical := false
	for _, s := range a.secondary {
		if s == EffectCriticalSuccess {
			critical = true
		}
	}
	outcome := classifyOutcome(total, critical)

	if a.input.Kind == KindAttack && a.weapon != nil && (critical || total >= successThreshold) {
		a.interactions[InteractionDamage] = a.weapon.DamageFormula
	}

	result := &Result{
		ActionID:         a.id,
		Kind:             a.input.Kind,
		ActionType:       a.actionType(),
		CharacterID:      a.char.ID,
		CharacterName:    a.char.Name,
		Outcome:          outcome,
		Total:            total,
		Formula:          a.roll.Formula,
		Faces:            a.roll.Faces(),
		ModifierGroups:   a.modifierGroups(),
		SecondaryEffects: a.secondary,
		Warnings:         a.warnings,
		Displays:         a.displays,
		Audit:            a.tracker.Summary(),
	}
	if len(a.interactions) > 0 {
		result.Interactions = a.interactions
	}
	if a.displays[rulebook.DisplayShowEnvironment] {
		for _, m := range a.ruleMods {
			if m.Category == rulebook.CategoryEnvironment {
				result.Environment = append(result.Environment, m.Reason)
			}
		}
	}
	if a.displays[rulebook.DisplayShowAudit] {
		result.AuditDump = a.tracker.Dump()
	}
	return result
}

// modifierGroups orders the breakdown: sheet modifiers first, then one
// group per rule category in emission order.
func (a *Action) modifierGroups() []ModifierGroup {
	var groups []ModifierGroup
	if len(a.baseMods) > 0 {
		groups = append(groups, newGroup(categoryBase, a.baseMods))
	}

	byCategory := make(map[string][]glog.Modifier)
	var order []string
	for _, m := range a.ruleMods {
		if _, seen := byCategory[m.Category]; !seen {
			order = append(order, m.Category)
		}
		byCategory[m.Category] = append(byCategory[m.Category], m)
	}
	for _, cat := range order {
		groups = append(groups, newGroup(cat, byCategory[cat]))
	}
	return groups
}

func newGroup(name string, mods []glog.Modifier) ModifierGroup {
	subtotal := 0
	for _, m := range mods {
		subtotal += m.Value
	}
	return ModifierGroup{Name: name, Modifiers: mods, Subtotal: subtotal}
}

// Outcome thresholds on the 2d6 curve.
const (
	successThreshold = 10
	partialThreshold = 7
)

func classifyOutcome(total int, critical bool) string {
	switch {
	case critical:
		return EffectCriticalSuccess
	case total >= successThreshold:
		return "success"
	case total >= partialThreshold:
		return "partial success"
	default:
		return "failure"
	}
}

func (a *Action) applyingStateChanges(ctx context.Context) error {
	a.changes = append(a.changes, a.kind.stateChanges(a)...)
	if len(a.changes) == 0 {
		return nil
	}
	_, err := a.orch.characterRepo.ApplyChanges(ctx, characterrepo.ApplyChangesInput{
		CharacterID: a.char.ID,
		Changes:     a.changes,
	})
	return err
}
