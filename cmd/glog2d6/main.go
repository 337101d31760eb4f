// Package main is the entry point for the glog2d6 command line tool
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glog2d6",
	Short: "GLOG 2d6 action resolution",
	Long: `glog2d6 resolves GLOG 2d6 tabletop actions: attacks, attribute and
skill checks, and spell casts. Characters live in Redis; import a YAML
sheet, equip gear, then resolve actions against it.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(equipCmd)
	rootCmd.AddCommand(unequipCmd)
	rootCmd.AddCommand(attackCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(castCmd)
}
