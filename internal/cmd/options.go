package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/extract"
	"github.com/harrison/adl/internal/formatter"
	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
)

// optionsOutput is the --json form of the options command
type optionsOutput struct {
	UseCase string                `json:"useCase"`
	Content string                `json:"content"`
	Options []optionWithReference `json:"options"`
}

type optionWithReference struct {
	extract.FlowOption
	UseCase string `json:"useCase,omitempty"`
}

// NewOptionsCommand creates and returns the options subcommand
func NewOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options <file-or-directory>...",
		Short: "List the flow options of a use case",
		Long: `Render one use case for the active conditions and list its
"[option] command" lines. Options whose command references another use
case in the loaded documents show the target id.

With --boxes, the older box syntax is used: markdown links are not
guarded against and lines are not trimmed.`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runOptions,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("use-case", "u", "", "Use case id (required)")
	cmd.Flags().StringSliceP("condition", "c", nil, "Active condition")
	cmd.Flags().Bool("boxes", false, "Extract boxes instead of flow options")
	cmd.Flags().Bool("json", false, "Print JSON")
	cmd.MarkFlagRequired("use-case")

	return cmd
}

func runOptions(cmd *cobra.Command, args []string) error {
	files, err := parser.FilterUseCaseFiles(args)
	if err != nil {
		return err
	}
	all, err := parser.ParseFiles(files)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("use-case")
	uc, ok := models.FindUseCase(all, id)
	if !ok {
		return fmt.Errorf("use case %q not found", id)
	}
	active, _ := cmd.Flags().GetStringSlice("condition")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if boxes, _ := cmd.Flags().GetBool("boxes"); boxes {
		uc.SubUseCase = false
		text, err := formatter.Format([]models.UseCase{uc}, formatter.Options{Conditions: active})
		if err != nil {
			return err
		}
		result := extract.ExtractBoxes(text)
		if asJSON {
			return writeJSON(out, result)
		}
		for _, b := range result.Boxes {
			fmt.Fprintf(out, "[%s] %s\n", b.Option, b.Command)
		}
		return nil
	}

	flow, err := extract.FlowOptionsFor(uc, active)
	if err != nil {
		return err
	}

	result := optionsOutput{UseCase: uc.ID, Content: flow.ContentWithoutOptions, Options: []optionWithReference{}}
	for _, opt := range flow.Options {
		entry := optionWithReference{FlowOption: opt}
		if target, ok := opt.ReferencedUseCase(all); ok {
			entry.UseCase = target.ID
		}
		result.Options = append(result.Options, entry)
	}

	if asJSON {
		return writeJSON(out, result)
	}
	if len(result.Options) == 0 {
		fmt.Fprintf(out, "%s has no flow options\n", uc.ID)
		return nil
	}
	for _, opt := range result.Options {
		if opt.UseCase != "" {
			fmt.Fprintf(out, "[%s] %s -> %s\n", opt.Option, opt.Command, opt.UseCase)
			continue
		}
		fmt.Fprintf(out, "[%s] %s\n", opt.Option, opt.Command)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
