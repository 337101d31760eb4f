package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	charorc "github.com/materialcontext/glog2d6-api/internal/orchestrators/character"
)

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Manage stored characters",
}

var importPlayerID string

var characterImportCmd = &cobra.Command{
	Use:   "import <sheet.yaml>",
	Short: "Import a YAML character sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterImport,
}

var characterShowCmd = &cobra.Command{
	Use:   "show <character-id>",
	Short: "Print a character sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterShow,
}

var listPlayerID string

var characterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a player's characters",
	Args:  cobra.NoArgs,
	RunE:  runCharacterList,
}

var characterRecalcCmd = &cobra.Command{
	Use:   "recalc <character-id>",
	Short: "Recalculate derived bonuses and encumbrance",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterRecalc,
}

var characterDeleteCmd = &cobra.Command{
	Use:   "delete <character-id>",
	Short: "Delete a character",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterDelete,
}

func init() {
	characterImportCmd.Flags().StringVar(&importPlayerID, "player", "", "player ID to bind the character to (default GLOG_PLAYER_ID)")
	characterListCmd.Flags().StringVar(&listPlayerID, "player", "", "player ID to list (default GLOG_PLAYER_ID)")

	characterCmd.AddCommand(characterImportCmd)
	characterCmd.AddCommand(characterShowCmd)
	characterCmd.AddCommand(characterListCmd)
	characterCmd.AddCommand(characterRecalcCmd)
	characterCmd.AddCommand(characterDeleteCmd)
}

func runCharacterImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	sheet, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}

	playerID := importPlayerID
	if playerID == "" {
		playerID = a.cfg.PlayerID
	}

	output, err := a.characters.Import(cmd.Context(), &charorc.ImportInput{
		Sheet:    sheet,
		PlayerID: playerID,
	})
	if err != nil {
		return renderError(err)
	}

	fmt.Printf("Imported %s (%s)\n", output.Character.Name, output.Character.ID)
	return nil
}

func runCharacterShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	output, err := a.characters.Get(cmd.Context(), &charorc.GetInput{CharacterID: args[0]})
	if err != nil {
		return renderError(err)
	}

	data, err := yaml.Marshal(output.Character)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func runCharacterList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	playerID := listPlayerID
	if playerID == "" {
		playerID = a.cfg.PlayerID
	}

	output, err := a.characters.List(cmd.Context(), &charorc.ListInput{PlayerID: playerID})
	if err != nil {
		return renderError(err)
	}

	if len(output.Characters) == 0 {
		fmt.Println("No characters found.")
		return nil
	}
	for _, c := range output.Characters {
		fmt.Printf("%-24s  L%-2d  %s\n", c.ID, c.Level, c.Name)
	}
	return nil
}

func runCharacterRecalc(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	output, err := a.characters.Recalculate(cmd.Context(), &charorc.RecalculateInput{CharacterID: args[0]})
	if err != nil {
		return renderError(err)
	}

	fmt.Printf("Recalculated %s: %d values written\n", output.Character.Name, len(output.Changes))
	for _, ch := range output.Changes {
		fmt.Printf("  %s = %v (%s)\n", ch.Path, ch.Value, ch.Reason)
	}
	return nil
}

func runCharacterDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if _, err := a.characters.Delete(cmd.Context(), &charorc.DeleteInput{CharacterID: args[0]}); err != nil {
		return renderError(err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
