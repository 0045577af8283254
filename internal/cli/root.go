// Package cli wires the helmdeck commands.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/helmdeck/helmdeck/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"  _          _               _           _\n" +
		" | |__   ___| |_ __ ___   __| | ___  ___| | __\n" +
		" | '_ \\ / _ \\ | '_ ` _ \\ / _` |/ _ \\/ __| |/ /\n" +
		" | | | |  __/ | | | | | | (_| |  __/ (__|   <\n" +
		" |_| |_|\\___|_|_| |_| |_|\\__,_|\\___|\\___|_|\\_\\\n"
)

var rootCmd = &cobra.Command{
	Use:   "helmdeck",
	Short: "helmdeck - Assistant Gateway Console",
	Long:  color.CyanString(logo) + "\nA terminal console for the assistant gateway: live chat, history, and background task results.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
}
