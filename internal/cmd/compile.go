package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/compiler"
	"github.com/harrison/adl/internal/config"
	"github.com/harrison/adl/internal/display"
	"github.com/harrison/adl/internal/formatter"
	"github.com/harrison/adl/internal/store"
)

// NewCompileCommand creates and returns the compile subcommand
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file-or-directory>...",
		Short: "Compile use case documents into a prompt",
		Long: `Render the use cases visible for the active conditions.

Solutions are picked from the usage history: a use case that was used
renders its alternative solution, one used at least --fallback-limit
times renders its fallback. Referenced use cases are pulled from
--resolve directories, use_case_dir and the document store.

With --store the arguments name stored documents instead of files.
The prompt is printed to stdout unless --out is given.`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runCompile,
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceP("condition", "c", nil, "Active condition (repeatable or comma separated)")
	cmd.Flags().String("input", "", "Current user input matched by regex conditions")
	cmd.Flags().StringSlice("used", nil, "Use case id from the usage history, once per use")
	cmd.Flags().StringSlice("alternative", nil, "Force the alternative solution of a use case")
	cmd.Flags().StringSlice("fallback", nil, "Force the fallback solution of a use case")
	cmd.Flags().Int("fallback-limit", 0, "Uses before the fallback solution is picked (0 disables, default from config)")
	cmd.Flags().Int("example-limit", 0, "Maximum example lines per use case (0 = unlimited, default from config)")
	cmd.Flags().Bool("no-solution", false, "Omit steps and solutions")
	cmd.Flags().Bool("no-examples", false, "Omit examples")
	cmd.Flags().StringSlice("resolve", nil, "Directory searched for referenced use cases")
	cmd.Flags().Bool("store", false, "Arguments are stored document names")
	cmd.Flags().Bool("html", false, "Render the prompt as HTML")
	cmd.Flags().StringP("out", "o", "", "Write the prompt to this file")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	flags := config.Flags{}
	flags.Conditions, _ = cmd.Flags().GetStringSlice("condition")
	if cmd.Flags().Changed("fallback-limit") {
		v, _ := cmd.Flags().GetInt("fallback-limit")
		flags.FallbackLimit = &v
	}
	if cmd.Flags().Changed("example-limit") {
		v, _ := cmd.Flags().GetInt("example-limit")
		flags.ExampleLimit = &v
	}
	if cmd.Flags().Changed("html") {
		v, _ := cmd.Flags().GetBool("html")
		flags.HTML = &v
	}

	e, err := loadEnv(cmd, flags)
	if err != nil {
		return err
	}
	if err := e.withFileLog(); err != nil {
		return err
	}
	defer e.Close()

	fromStore, _ := cmd.Flags().GetBool("store")
	var s *store.Store
	if fromStore {
		s, err = e.openStore()
	} else {
		s, err = e.existingStore()
	}
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	resolveDirs, _ := cmd.Flags().GetStringSlice("resolve")
	c := newCompiler(e, resolveDirs, s)

	opts := compiler.Options{
		Conditions:    e.cfg.Conditions,
		FallbackLimit: e.cfg.FallbackLimit,
		ExampleLimit:  e.cfg.ExampleLimit,
		HTML:          e.cfg.Render.HTML,
	}
	if fromStore {
		opts.Documents = args
	} else {
		opts.Paths = args
		warnBaseFiles(cmd.ErrOrStderr(), args)
	}
	opts.Input, _ = cmd.Flags().GetString("input")
	opts.Used, _ = cmd.Flags().GetStringSlice("used")
	opts.Alternatives, _ = cmd.Flags().GetStringSlice("alternative")
	opts.Fallbacks, _ = cmd.Flags().GetStringSlice("fallback")
	opts.OutPath, _ = cmd.Flags().GetString("out")
	noSolution, _ := cmd.Flags().GetBool("no-solution")
	noExamples, _ := cmd.Flags().GetBool("no-examples")
	opts.Output = formatter.OutputOptions{SkipSolution: noSolution, SkipExamples: noExamples}

	result, err := c.Compile(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	if opts.OutPath == "" {
		out := result.Markup
		if opts.HTML {
			out = result.HTML
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return nil
}

// newCompiler wires the compiler to the env's logger, processor and sources
func newCompiler(e *env, resolveDirs []string, s *store.Store) *compiler.Compiler {
	var opts []compiler.Option
	if refs := e.references(resolveDirs, s); refs != nil {
		opts = append(opts, compiler.WithReferences(refs))
	}
	if s != nil {
		opts = append(opts, compiler.WithDocumentStore(s))
	}
	if p := e.processor(); p != nil {
		opts = append(opts, compiler.WithProcessor(p))
	}
	return compiler.New(e.log, opts...)
}

// warnBaseFiles lists base_ fragments that directory arguments skip
func warnBaseFiles(w io.Writer, paths []string) {
	var skipped []string
	for _, path := range paths {
		files, err := display.FindBaseFiles(path)
		if err != nil {
			continue
		}
		skipped = append(skipped, files...)
	}
	if len(skipped) > 0 {
		display.BaseFilesWarning(skipped).Display(w)
	}
}
