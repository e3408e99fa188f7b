package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available chat personas",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range persona.List() {
			fmt.Printf("%-12s  %s (%s)\n", p.ID, p.Name, p.Tagline)
		}
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
