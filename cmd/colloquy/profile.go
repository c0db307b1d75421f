package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved player profiles",
	Long:  `List, inspect, and remove player profiles in the store configured by colloquy.yaml.`,
}

var profileLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved profiles",
	Run: func(cmd *cobra.Command, args []string) {
		proj := openProject(cmd)
		defer proj.Close()

		profiles, err := proj.Profiles.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing profiles: %v\n", err)
			os.Exit(1)
		}

		if len(profiles) == 0 {
			fmt.Println("No saved profiles found.")
			return
		}

		fmt.Println("Profiles:")
		for _, p := range profiles {
			fmt.Println("- " + p)
		}
	},
}

var profileInspectCmd = &cobra.Command{
	Use:   "inspect <profile>",
	Short: "Print the saved variables of a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		proj := openProject(cmd)
		defer proj.Close()

		data, err := proj.Profiles.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading profile '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		// Pretty print JSON
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling profile: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <profile>...",
	Short: "Remove one or more profiles",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		proj := openProject(cmd)
		defer proj.Close()
		hasError := false

		for _, id := range args {
			if err := proj.Profiles.Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed profile '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileLsCmd)
	profileCmd.AddCommand(profileInspectCmd)
	profileCmd.AddCommand(profileRmCmd)
}

func openProject(cmd *cobra.Command) *cli.Project {
	dir, _ := cmd.Flags().GetString("dir")
	debug, _ := cmd.Flags().GetBool("debug")
	proj, err := cli.OpenProject(dir, debug)
	if err != nil {
		fmt.Printf("Error opening project: %v\n", err)
		os.Exit(1)
	}
	return proj
}
