package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [graph-id]",
	Short: "Export the dialogue graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of a dialogue graph, the entry graph by default.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		if err := cli.Graph(cmd.Context(), dir, id, os.Stdout); err != nil {
			fmt.Printf("Error exporting graph: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
