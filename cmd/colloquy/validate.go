package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-id...]",
	Short: "Check graphs for consistency",
	Long:  `Reports dangling links, malformed branch nodes, disabled-node cycles and unreachable nodes. Without arguments every graph of the project is checked.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if err := cli.Validate(cmd.Context(), dir, args, os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graphs are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
