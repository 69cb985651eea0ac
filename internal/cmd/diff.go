package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/compiler"
	"github.com/harrison/adl/internal/config"
)

// NewDiffCommand creates and returns the diff subcommand
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <file-or-directory>...",
		Short: "Show how two condition sets change the compiled prompt",
		Long: `Compile the documents twice, once with the --left and once with
the --right conditions (each on top of the configured conditions), and
print a unified diff of the two prompts.

Exit code: 0 whether or not the prompts differ`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runDiff,
		SilenceUsage: true,
	}

	cmd.Flags().StringSlice("left", nil, "Conditions of the left prompt")
	cmd.Flags().StringSlice("right", nil, "Conditions of the right prompt")
	cmd.Flags().StringSlice("used", nil, "Usage history applied to both sides")
	cmd.Flags().StringSlice("resolve", nil, "Directory searched for referenced use cases")
	cmd.Flags().Int("context", 3, "Lines of context")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, config.Flags{})
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.existingStore()
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	resolveDirs, _ := cmd.Flags().GetStringSlice("resolve")
	// The summary of each side is noise here
	quiet := *e
	quiet.log = &multiLogger{}
	c := newCompiler(&quiet, resolveDirs, s)

	left, _ := cmd.Flags().GetStringSlice("left")
	right, _ := cmd.Flags().GetStringSlice("right")
	used, _ := cmd.Flags().GetStringSlice("used")
	contextLines, _ := cmd.Flags().GetInt("context")

	compile := func(conds []string) (string, error) {
		result, err := c.Compile(context.Background(), compiler.Options{
			Paths:         args,
			Conditions:    append(append([]string{}, e.cfg.Conditions...), conds...),
			Used:          used,
			FallbackLimit: e.cfg.FallbackLimit,
			ExampleLimit:  e.cfg.ExampleLimit,
		})
		if err != nil {
			return "", err
		}
		return result.Markup, nil
	}

	leftText, err := compile(left)
	if err != nil {
		return fmt.Errorf("failed to compile left side: %w", err)
	}
	rightText, err := compile(right)
	if err != nil {
		return fmt.Errorf("failed to compile right side: %w", err)
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(leftText),
		B:        difflib.SplitLines(rightText),
		FromFile: "conditions: " + describeConditions(left),
		ToFile:   "conditions: " + describeConditions(right),
		Context:  contextLines,
	})
	if err != nil {
		return fmt.Errorf("failed to diff prompts: %w", err)
	}

	if diff == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "prompts are identical")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), diff)
	return nil
}

func describeConditions(conds []string) string {
	if len(conds) == 0 {
		return "(none)"
	}
	return strings.Join(conds, ",")
}
