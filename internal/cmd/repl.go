package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/compiler"
	"github.com/harrison/adl/internal/config"
	"github.com/harrison/adl/internal/display"
	"github.com/harrison/adl/internal/extract"
)

const replHelp = `Type a user message to compile the prompt for it. Commands:
  :cond [c1,c2]   show or replace the active conditions
  :use <id>       record one use of a use case
  :reply <text>   record the use case named by an assistant reply
  :reset          forget the usage history
  :show           compile without user input
  :help           show this help
  :quit           leave`

// NewReplCommand creates and returns the repl subcommand
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl <file-or-directory>...",
		Short: "Compile prompts interactively",
		Long: `Start an interactive session over the given documents. Each line
you type is used as the user input for regex conditions and the prompt is
compiled again. The usage history grows as you record uses, so repeated
use cases switch to their alternative and then fallback solutions.`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runRepl,
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceP("condition", "c", nil, "Initial active condition")
	cmd.Flags().StringSlice("resolve", nil, "Directory searched for referenced use cases")

	return cmd
}

func runRepl(cmd *cobra.Command, args []string) error {
	flags := config.Flags{}
	if cmd.Flags().Changed("condition") {
		flags.Conditions, _ = cmd.Flags().GetStringSlice("condition")
	}
	e, err := loadEnv(cmd, flags)
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
	// Unresolved references are shown as warnings by the session
	quiet := *e
	quiet.log = &multiLogger{}

	session := &replSession{
		compiler:      newCompiler(&quiet, resolveDirs, s),
		paths:         args,
		conditions:    e.cfg.Conditions,
		fallbackLimit: e.cfg.FallbackLimit,
		exampleLimit:  e.cfg.ExampleLimit,
		out:           cmd.OutOrStdout(),
	}

	rl, err := readline.New("adl> ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(session.out, replHelp)
	return session.run(cmd.Context(), rl)
}

// lineReader is the part of readline the session needs
type lineReader interface {
	Readline() (string, error)
}

// replSession holds the state of one interactive session
type replSession struct {
	compiler      *compiler.Compiler
	paths         []string
	conditions    []string
	used          []string
	fallbackLimit int
	exampleLimit  int
	out           io.Writer

	lastUnresolved string
}

// run reads lines until :quit, Ctrl-C or end of input
func (s *replSession) run(ctx context.Context, r lineReader) error {
	for {
		line, err := r.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		quit, err := s.handle(ctx, strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
	}
}

// handle runs one line and reports whether the session should end
func (s *replSession) handle(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, ":") {
		return false, s.compile(ctx, line)
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case ":q", ":quit", ":exit":
		return true, nil
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":cond":
		if arg != "" {
			s.conditions = splitList(arg)
		}
		fmt.Fprintf(s.out, "conditions: %s\n", describeConditions(s.conditions))
	case ":use":
		if arg == "" {
			return false, errors.New(":use needs a use case id")
		}
		s.record(arg)
	case ":reply":
		_, id := extract.ExtractUseCaseID(arg)
		if id == "" {
			return false, errors.New("reply names no use case")
		}
		s.record(id)
	case ":reset":
		s.used = nil
		fmt.Fprintln(s.out, "usage history cleared")
	case ":show":
		return false, s.compile(ctx, "")
	default:
		return false, fmt.Errorf("unknown command %s, try :help", command)
	}
	return false, nil
}

func (s *replSession) record(id string) {
	s.used = append(s.used, id)
	uses := 0
	for _, u := range s.used {
		if u == id {
			uses++
		}
	}
	fmt.Fprintf(s.out, "recorded %s (%d uses)\n", id, uses)
}

func (s *replSession) compile(ctx context.Context, input string) error {
	result, err := s.compiler.Compile(ctx, compiler.Options{
		Paths:         s.paths,
		Conditions:    s.conditions,
		Input:         input,
		Used:          s.used,
		FallbackLimit: s.fallbackLimit,
		ExampleLimit:  s.exampleLimit,
	})
	if err != nil {
		return err
	}

	unresolved := strings.Join(result.Summary.Unresolved, ",")
	if unresolved != "" && unresolved != s.lastUnresolved {
		display.UnresolvedWarning(result.Summary.Unresolved).Display(s.out)
	}
	s.lastUnresolved = unresolved

	fmt.Fprint(s.out, result.Markup)
	return nil
}

// splitList splits a comma separated list, dropping empty entries
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
