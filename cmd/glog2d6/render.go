package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/materialcontext/glog2d6-api/internal/errors"
	actionorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/action"
	"github.com/materialcontext/glog2d6-api/internal/rulebook"
)

// printResultEvent is the CLI's output sink. It subscribes to resolved
// actions on the bus and renders the result record they carry.
func printResultEvent(_ context.Context, evt events.Event) error {
	payload, ok := evt.Context().Get(actionorc.EventKeyResult)
	if !ok {
		return nil
	}
	result, ok := payload.(*actionorc.Result)
	if !ok {
		return nil
	}
	return renderResult(result)
}

// renderError surfaces validation messages verbatim instead of the wrapped
// error chain. Anything else passes through untouched.
func renderError(err error) error {
	if msgs := errors.ValidationMessages(err); len(msgs) > 0 {
		return fmt.Errorf("%s", strings.Join(msgs, "\n"))
	}
	return err
}

func renderResult(result *actionorc.Result) error {
	if flagJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s: %s, total %d (%s %v)\n",
		result.CharacterName, strings.ToUpper(result.Outcome), result.Total, result.Formula, result.Faces)

	if result.Displays[rulebook.DisplayShowDetails] {
		for _, group := range result.ModifierGroups {
			fmt.Printf("  %s (%+d)\n", group.Name, group.Subtotal)
			for _, mod := range group.Modifiers {
				fmt.Printf("    %s\n", mod.Reason)
			}
		}
	}

	for _, line := range result.Environment {
		fmt.Printf("  environment: %s\n", line)
	}
	for _, effect := range result.SecondaryEffects {
		fmt.Printf("  effect: %s\n", effect)
	}
	for interaction, handle := range result.Interactions {
		fmt.Printf("  follow up: %s %s\n", interaction, handle)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}

	if result.AuditDump != nil {
		data, err := json.MarshalIndent(result.AuditDump, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("audit:\n%s\n", string(data))
	}

	return nil
}
