package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long:  `Serves dialogue sessions over a JSON API, with Server-Sent Events and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.ServeOptions{}
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Addr, _ = cmd.Flags().GetString("addr")

		if err := cli.Serve(opts); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from colloquy.yaml, :8080)")
}
