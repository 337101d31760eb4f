package bonuses

import (
	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// TargetTotal is the aggregate for one bonus target: the summed value and
// the per-feature provenance behind it.
type TargetTotal struct {
	Total     int
	Breakdown []glog.Provenance
}

// managedTargets is every target the aggregator owns. BuildChanges emits a
// change for each one on every recalculation, so a target that lost all its
// contributors is reset rather than left holding a stale bonus.
var managedTargets = []string{
	TargetAttack,
	TargetArchery,
	TargetDefense,
	TargetStealth,
	TargetSpellSlots,
	TargetSlotCapacity,
}

// Calculate runs every active feature through the registry and sums
// contributions per target. Inactive features and zero-valued contributions
// never appear in a breakdown. The input character is not mutated.
func Calculate(c *glog.Character) map[string]TargetTotal {
	totals := make(map[string]TargetTotal)
	for _, f := range c.ActiveFeatures() {
		fn, ok := registry[f.Kind]
		if !ok {
			continue
		}
		for _, contrib := range fn(c, f) {
			if contrib.Value == 0 {
				continue
			}
			t := totals[contrib.Target]
			t.Total += contrib.Value
			t.Breakdown = append(t.Breakdown, glog.Provenance{
				Source: f.Name,
				Value:  contrib.Value,
				Type:   contrib.Type,
			})
			totals[contrib.Target] = t
		}
	}
	return totals
}

// stealthSkills is what the stealth target fans out into. The three skills
// always move together; they are distinct entries only so each can carry
// its own base training.
var stealthSkills = []string{"sneak", "hide", "disguise"}

// BuildChanges converts aggregate totals into a persistence change batch.
// Every managed target gets a change whether or not it has contributors;
// re-running on an unchanged character yields an identical batch.
func BuildChanges(c *glog.Character, totals map[string]TargetTotal) []glog.StateChange {
	var changes []glog.StateChange
	for _, target := range managedTargets {
		t := totals[target]
		reason := changeReason(t)
		switch target {
		case TargetStealth:
			for _, skill := range stealthSkills {
				changes = append(changes,
					glog.StateChange{Path: "skills." + skill + ".bonus", Value: t.Total, Reason: reason},
					glog.StateChange{Path: "skills." + skill + ".breakdown", Value: t.Breakdown, Reason: reason},
				)
			}
		case TargetSpellSlots:
			changes = append(changes, glog.StateChange{
				Path:   "resources.spellSlots.max",
				Value:  c.Resources.SpellSlots.Base + t.Total,
				Reason: reason,
			})
		case TargetSlotCapacity:
			changes = append(changes, glog.StateChange{
				Path:   "inventory.slotCapacity",
				Value:  c.Inventory.SlotCapacityBase + t.Total,
				Reason: reason,
			})
		default:
			changes = append(changes,
				glog.StateChange{Path: target + ".bonus", Value: t.Total, Reason: reason},
				glog.StateChange{Path: target + ".breakdown", Value: t.Breakdown, Reason: reason},
			)
		}
	}
	// Dexterity carries the live encumbrance penalty so stored effective
	// values match what the pipeline would compute.
	changes = append(changes, glog.StateChange{
		Path:   "attributes.dexterity.penalty",
		Value:  c.Inventory.Encumbrance(),
		Reason: "encumbrance",
	})
	return changes
}

func changeReason(t TargetTotal) string {
	if len(t.Breakdown) == 0 {
		return "feature bonus recalculation (no contributors)"
	}
	return "feature bonus recalculation"
}
