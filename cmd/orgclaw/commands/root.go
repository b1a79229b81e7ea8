// Package commands implements the orgclaw CLI commands using cobra.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orgclaw",
		Short: "Orgclaw - conversational personal organizer",
		Long: `Orgclaw is a conversational personal organizer that lives in your chat
app: reminders, lists, events, habits and recaps over WhatsApp, Discord
or a local terminal.

Examples:
  orgclaw serve
  orgclaw serve --config ./orgclaw.yaml
  orgclaw auth set-key openai
  orgclaw db status`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newVersionCmd(version),
		newAuthCmd(),
		newDBCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}

// newLogger builds the process logger from the verbose flag.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
