package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "colloquy",
	Short: "Colloquy runs branching dialogue graphs",
	Long:  `Colloquy plays dialogue graphs written in YAML: text, choices, conditions, sequences and parallel branches, with player profiles persisted between runs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the Colloquy project")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
}
