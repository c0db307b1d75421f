package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [graph-id]",
	Short: "Play a dialogue graph in the terminal",
	Long: `Starts the dialogue engine in interactive mode. Without a graph id the
project's entry graph is played.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{}
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Profile, _ = cmd.Flags().GetString("profile")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.AutoSave, _ = cmd.Flags().GetBool("auto-save")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		if len(args) > 0 {
			opts.GraphID = args[0]
		}

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("profile", "p", "", "Player profile to load and save global variables")
	runCmd.Flags().Bool("fresh", false, "Delete the profile before starting")
	runCmd.Flags().Bool("auto-save", true, "Save the profile after each choice and at the end")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the graph when its file changes")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")

	rootCmd.Run = runCmd.Run
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
