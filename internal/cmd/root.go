package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for adl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adl",
		Short: "Use case description compiler",
		Long: `adl compiles use case documents into prompts for conversational
assistants.

It parses use case files (Markdown with "### UseCase:" blocks), keeps
the parts whose conditions are active, resolves "#id" references and
switches to alternative or fallback solutions as use cases are used.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .adl/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")
	cmd.PersistentFlags().String("store-path", "", "Path to the document store database")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewOptionsCommand())
	cmd.AddCommand(NewDiffCommand())
	cmd.AddCommand(NewReplyCommand())
	cmd.AddCommand(NewReplCommand())
	cmd.AddCommand(NewStoreCommand())

	return cmd
}
