package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/config"
	"github.com/harrison/adl/internal/display"
	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
	"github.com/harrison/adl/internal/resolver"
	"github.com/harrison/adl/internal/store"
	"github.com/harrison/adl/internal/validation"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>...",
		Short: "Check use case documents for problems",
		Long: `Check use case documents without compiling them:
  - Syntax errors (unknown sections, empty categories)
  - Duplicate use case ids
  - Examples shared by several use cases
  - Unbalanced brackets and quotes, mixed tab/space indentation
  - With --resolve, references that resolve nowhere

Directories are scanned recursively; base_ fragments are skipped unless
named explicitly. With --json a machine readable report is printed.

Exit code: 0 if valid, 1 if issues were found`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runValidate,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("json", false, "Print a JSON report")
	cmd.Flags().Bool("resolve", false, "Report references missing from the documents, use_case_dir and the store")
	cmd.Flags().StringSlice("resolve-dir", nil, "Extra directory searched for references (implies --resolve)")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd, config.Flags{})
	if err != nil {
		return err
	}
	defer e.Close()

	files, err := parser.FilterUseCaseFiles(args)
	if err != nil {
		return err
	}

	opts := validation.Options{}
	resolve, _ := cmd.Flags().GetBool("resolve")
	resolveDirs, _ := cmd.Flags().GetStringSlice("resolve-dir")
	if resolve || len(resolveDirs) > 0 {
		s, err := e.existingStore()
		if err != nil {
			return err
		}
		if s != nil {
			defer s.Close()
		}
		opts.References = validationReferences(e, files, resolveDirs, s)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	var progress *display.ProgressIndicator
	if !asJSON {
		if len(files) == 1 {
			display.DisplaySingleFile(cmd.ErrOrStderr(), files[0])
		} else {
			progress = display.NewProgressIndicator(cmd.ErrOrStderr(), len(files))
			progress.Start()
		}
	}

	ctx := context.Background()
	results := make([]models.ValidationResult, 0, len(files))
	for _, file := range files {
		if progress != nil {
			progress.Step(file)
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		result, err := validation.Validate(ctx, file, string(content), opts)
		if err != nil {
			return fmt.Errorf("failed to validate %s: %w", file, err)
		}
		results = append(results, result)
	}
	if progress != nil {
		progress.Complete()
	}

	report := validation.NewReport(results)
	if asJSON {
		data, err := validation.MarshalReport(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		warnBaseFiles(cmd.ErrOrStderr(), args)
		for _, result := range results {
			e.log.LogValidation(result)
		}
	}

	if !report.Valid {
		invalid := 0
		for _, r := range results {
			if !r.Valid() {
				invalid++
			}
		}
		return fmt.Errorf("validation failed: %d of %d documents have issues", invalid, len(results))
	}
	return nil
}

// validationReferences lets documents validated together satisfy each
// other's references before the configured sources are asked. Documents
// that fail to parse are left out; Validate reports them.
func validationReferences(e *env, files, dirs []string, s *store.Store) resolver.Source {
	var corpus []models.UseCase
	for _, f := range files {
		doc, err := parser.ParseFile(f)
		if err != nil {
			continue
		}
		corpus = append(corpus, doc.UseCases...)
	}

	chain := resolver.Chain{resolver.MemorySource{UseCases: corpus}}
	if refs := e.references(dirs, s); refs != nil {
		chain = append(chain, refs)
	}
	return chain
}
