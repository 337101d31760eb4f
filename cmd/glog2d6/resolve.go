package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	actionorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/action"
	"github.com/materialcontext/glog2d6-api/internal/rulebook"
)

var (
	flagWeapon     string
	flagSkill      string
	flagDarkness   bool
	flagLongRange  bool
	flagCover      bool
	flagHighGround bool
	flagInCombat   bool
	flagDetails    bool
	flagDebug      bool
	flagJSON       bool
)

var attackCmd = &cobra.Command{
	Use:   "attack <character-id>",
	Short: "Resolve an attack",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttack,
}

var checkCmd = &cobra.Command{
	Use:   "check <character-id> <attribute>",
	Short: "Resolve an attribute or skill check",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

var castCmd = &cobra.Command{
	Use:   "cast <character-id> <spell> <dice>",
	Short: "Cast a spell, investing magic dice",
	Args:  cobra.ExactArgs(3),
	RunE:  runCast,
}

func init() {
	attackCmd.Flags().StringVar(&flagWeapon, "weapon", "", "item ID of the weapon (default: best equipped)")
	checkCmd.Flags().StringVar(&flagSkill, "skill", "", "skill name to apply")

	for _, cmd := range []*cobra.Command{attackCmd, checkCmd, castCmd} {
		cmd.Flags().BoolVar(&flagDarkness, "darkness", false, "fighting in darkness")
		cmd.Flags().BoolVar(&flagLongRange, "long-range", false, "target at long range")
		cmd.Flags().BoolVar(&flagCover, "cover", false, "target in cover")
		cmd.Flags().BoolVar(&flagHighGround, "high-ground", false, "actor holds high ground")
		cmd.Flags().BoolVar(&flagInCombat, "combat", false, "resolve in combat time")
		cmd.Flags().BoolVar(&flagDetails, "details", false, "show the modifier breakdown")
		cmd.Flags().BoolVar(&flagDebug, "debug", false, "include the full audit trail")
		cmd.Flags().BoolVar(&flagJSON, "json", false, "emit the raw result as JSON")
	}
}

func (a *app) actionInput(characterID string, kind actionorc.Kind) *actionorc.ActionInput {
	return &actionorc.ActionInput{
		CharacterID: characterID,
		UserID:      a.cfg.UserID,
		Kind:        kind,
		Environment: rulebook.Environment{
			Darkness:   flagDarkness,
			LongRange:  flagLongRange,
			Cover:      flagCover,
			HighGround: flagHighGround,
		},
		Options: rulebook.Options{
			ShowDetails: flagDetails,
			Debug:       flagDebug || a.cfg.Debug,
		},
		InCombat: flagInCombat,
	}
}

func runAttack(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	input := a.actionInput(args[0], actionorc.KindAttack)
	input.WeaponID = flagWeapon

	a.bus.SubscribeFunc(actionorc.EventActionResolved, 0, printResultEvent)
	if _, err := a.actions.Resolve(cmd.Context(), input); err != nil {
		return renderError(err)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	input := a.actionInput(args[0], actionorc.KindCheck)
	input.Attribute = args[1]
	input.Skill = flagSkill

	a.bus.SubscribeFunc(actionorc.EventActionResolved, 0, printResultEvent)
	if _, err := a.actions.Resolve(cmd.Context(), input); err != nil {
		return renderError(err)
	}
	return nil
}

func runCast(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	dice, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("dice must be a number, got %q", args[2])
	}

	input := a.actionInput(args[0], actionorc.KindCast)
	input.SpellName = args[1]
	input.MagicDice = dice

	a.bus.SubscribeFunc(actionorc.EventActionResolved, 0, printResultEvent)
	if _, err := a.actions.Resolve(cmd.Context(), input); err != nil {
		return renderError(err)
	}
	return nil
}
