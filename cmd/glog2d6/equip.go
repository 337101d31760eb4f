package main

import (
	"fmt"

	"github.com/spf13/cobra"

	equiporc "github.com/materialcontext/glog2d6-api/internal/orchestrators/equipment"
)

var equipCmd = &cobra.Command{
	Use:   "equip <character-id> <item-id>",
	Short: "Equip an item, resolving slot conflicts",
	Args:  cobra.ExactArgs(2),
	RunE:  runEquip,
}

var unequipCmd = &cobra.Command{
	Use:   "unequip <character-id> <item-id>",
	Short: "Unequip an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnequip,
}

func runEquip(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	output, err := a.equipment.Equip(cmd.Context(), &equiporc.EquipInput{
		CharacterID: args[0],
		ItemID:      args[1],
	})
	if err != nil {
		return renderError(err)
	}

	item := output.Character.Item(args[1])
	fmt.Printf("Equipped %s\n", item.Name)
	for _, id := range output.Unequipped {
		if displaced := output.Character.Item(id); displaced != nil {
			fmt.Printf("  unequipped %s\n", displaced.Name)
		}
	}
	return nil
}

func runUnequip(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	output, err := a.equipment.Unequip(cmd.Context(), &equiporc.UnequipInput{
		CharacterID: args[0],
		ItemID:      args[1],
	})
	if err != nil {
		return renderError(err)
	}

	if item := output.Character.Item(args[1]); item != nil {
		fmt.Printf("Unequipped %s\n", item.Name)
	}
	return nil
}
