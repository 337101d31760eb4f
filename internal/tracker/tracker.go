// Package tracker records the full audit trail of one action resolution.
//
// A Tracker is created per action and threaded explicitly through the
// pipeline phases; nothing reaches it through shared state. It is strictly
// append-only: entries are never mutated or removed once recorded. The
// condensed Summary rides on every result record, the full Dump only when
// the display rules say so.
package tracker

import (
	"time"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/pkg/clock"
)

// InputEntry is one gathered input value.
type InputEntry struct {
	Key    string        `json:"key"`
	Value  interface{}   `json:"value"`
	Source string        `json:"source"`
	Offset time.Duration `json:"offset"`
}

// ModifierEntry is one recorded modifier.
type ModifierEntry struct {
	Modifier glog.Modifier `json:"modifier"`
	Offset   time.Duration `json:"offset"`
}

// RollEntry is one dice roll.
type RollEntry struct {
	Formula string        `json:"formula"`
	Faces   []int         `json:"faces"`
	Total   int           `json:"total"`
	Offset  time.Duration `json:"offset"`
}

// DecisionEntry is one labeled decision payload.
type DecisionEntry struct {
	Label   string                 `json:"label"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Offset  time.Duration          `json:"offset"`
}

// ErrorEntry is one recorded error.
type ErrorEntry struct {
	Message string        `json:"message"`
	Phase   string        `json:"phase"`
	Offset  time.Duration `json:"offset"`
}

// Summary is the condensed view included in every output record.
type Summary struct {
	Inputs    int           `json:"inputs"`
	Modifiers int           `json:"modifiers"`
	Rolls     int           `json:"rolls"`
	Decisions int           `json:"decisions"`
	Errors    int           `json:"errors"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Dump is the full audit trail, gated behind a display decision.
type Dump struct {
	Inputs    []InputEntry    `json:"inputs"`
	Modifiers []ModifierEntry `json:"modifiers"`
	Rolls     []RollEntry     `json:"rolls"`
	Decisions []DecisionEntry `json:"decisions"`
	Errors    []ErrorEntry    `json:"errors"`
}

// Tracker is the per-action audit log.
type Tracker struct {
	clock clock.Clock
	start time.Time

	inputs    []InputEntry
	modifiers []ModifierEntry
	rolls     []RollEntry
	decisions []DecisionEntry
	errors    []ErrorEntry
}

// New creates a tracker whose offsets count from now.
func New(c clock.Clock) *Tracker {
	if c == nil {
		c = clock.New()
	}
	return &Tracker{clock: c, start: c.Now()}
}

func (t *Tracker) offset() time.Duration {
	return t.clock.Now().Sub(t.start)
}

// RecordInput appends a gathered input value.
func (t *Tracker) RecordInput(key string, value interface{}, source string) {
	t.inputs = append(t.inputs, InputEntry{Key: key, Value: value, Source: source, Offset: t.offset()})
}

// RecordModifier appends a modifier.
func (t *Tracker) RecordModifier(m glog.Modifier) {
	t.modifiers = append(t.modifiers, ModifierEntry{Modifier: m, Offset: t.offset()})
}

// RecordRoll appends a dice roll.
func (t *Tracker) RecordRoll(formula string, faces []int, total int) {
	copied := make([]int, len(faces))
	copy(copied, faces)
	t.rolls = append(t.rolls, RollEntry{Formula: formula, Faces: copied, Total: total, Offset: t.offset()})
}

// RecordDecision appends a labeled decision payload.
func (t *Tracker) RecordDecision(label string, payload map[string]interface{}) {
	t.decisions = append(t.decisions, DecisionEntry{Label: label, Payload: payload, Offset: t.offset()})
}

// RecordError appends an error with the phase it occurred in.
func (t *Tracker) RecordError(message, phase string) {
	t.errors = append(t.errors, ErrorEntry{Message: message, Phase: phase, Offset: t.offset()})
}

// Summary returns entry counts and the elapsed time so far.
func (t *Tracker) Summary() Summary {
	return Summary{
		Inputs:    len(t.inputs),
		Modifiers: len(t.modifiers),
		Rolls:     len(t.rolls),
		Decisions: len(t.decisions),
		Errors:    len(t.errors),
		Elapsed:   t.offset(),
	}
}

// Dump returns copies of every log. Callers cannot reach the tracker's
// internal slices through the returned value.
func (t *Tracker) Dump() *Dump {
	d := &Dump{
		Inputs:    make([]InputEntry, len(t.inputs)),
		Modifiers: make([]ModifierEntry, len(t.modifiers)),
		Rolls:     make([]RollEntry, len(t.rolls)),
		Decisions: make([]DecisionEntry, len(t.decisions)),
		Errors:    make([]ErrorEntry, len(t.errors)),
	}
	copy(d.Inputs, t.inputs)
	copy(d.Modifiers, t.modifiers)
	copy(d.Rolls, t.rolls)
	copy(d.Decisions, t.decisions)
	copy(d.Errors, t.errors)
	for i := range d.Rolls {
		faces := make([]int, len(d.Rolls[i].Faces))
		copy(faces, d.Rolls[i].Faces)
		d.Rolls[i].Faces = faces
	}
	return d
}
