package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/config"
	"github.com/harrison/adl/internal/filelock"
	"github.com/harrison/adl/internal/parser"
	"github.com/harrison/adl/internal/store"
)

// NewStoreCommand creates the 'adl store' parent command
func NewStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored use case documents",
		Long: `Commands for the document store.

Stored documents can be compiled with "adl compile --store" and serve as
the last source when references are resolved. Every save keeps the
previous content as a revision.`,
	}

	cmd.AddCommand(newStoreSaveCommand())
	cmd.AddCommand(newStoreGetCommand())
	cmd.AddCommand(newStoreListCommand())
	cmd.AddCommand(newStoreDeleteCommand())
	cmd.AddCommand(newStoreRevisionsCommand())

	return cmd
}

func newStoreSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file> [name]",
		Short: "Save a use case document",
		Long: `Parse a use case document and save it under name, which defaults
to the file name without extension. Documents that fail to parse are
rejected.`,
		Args:         cobra.RangeArgs(1, 2),
		RunE:         runStoreSave,
		SilenceUsage: true,
	}
	cmd.Flags().StringSliceP("tag", "t", nil, "Tag the document")
	return cmd
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	if !parser.IsUseCaseFile(args[0]) {
		return fmt.Errorf("%s is not a use case document (*.md, *.markdown, no base_ prefix)", args[0])
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	if len(args) == 2 {
		name = args[1]
	}
	tags, _ := cmd.Flags().GetStringSlice("tag")

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		doc, err := s.Save(ctx, name, string(content), tags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d use cases)\n", doc.Name, len(doc.UseCaseIDs))
		return nil
	})
}

func newStoreGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "get <name>",
		Short:        "Print a stored document",
		Args:         cobra.ExactArgs(1),
		RunE:         runStoreGet,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("out", "o", "", "Write the document to this file")
	return cmd
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		doc, err := s.Get(ctx, args[0])
		if err != nil {
			return notFound(args[0], err)
		}
		if out == "" {
			fmt.Fprint(cmd.OutOrStdout(), doc.Content)
			return nil
		}
		if err := filelock.LockAndWrite(ctx, out, []byte(doc.Content)); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	})
}

func newStoreListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List stored documents",
		Args:         cobra.NoArgs,
		RunE:         runStoreList,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("tag", "t", "", "Only documents with this tag")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func runStoreList(cmd *cobra.Command, args []string) error {
	tag, _ := cmd.Flags().GetString("tag")
	asJSON, _ := cmd.Flags().GetBool("json")
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		docs, err := s.List(ctx, tag)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			if docs == nil {
				docs = []store.Document{}
			}
			return writeJSON(out, docs)
		}
		if len(docs) == 0 {
			fmt.Fprintln(out, "No stored documents")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tUSE CASES\tTAGS\tUPDATED")
		for _, doc := range docs {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				doc.Name, len(doc.UseCaseIDs), strings.Join(doc.Tags, ","), doc.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	})
}

func newStoreDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <name>",
		Short:        "Delete a stored document and its revisions",
		Args:         cobra.ExactArgs(1),
		RunE:         runStoreDelete,
		SilenceUsage: true,
	}
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		if err := s.Delete(ctx, args[0]); err != nil {
			return notFound(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func newStoreRevisionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "revisions <name>",
		Short:        "List earlier versions of a stored document",
		Args:         cobra.ExactArgs(1),
		RunE:         runStoreRevisions,
		SilenceUsage: true,
	}
}

func runStoreRevisions(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		revisions, err := s.Revisions(ctx, args[0])
		if err != nil {
			return notFound(args[0], err)
		}
		out := cmd.OutOrStdout()
		if len(revisions) == 0 {
			fmt.Fprintf(out, "%s has no earlier revisions\n", args[0])
			return nil
		}
		for i, rev := range revisions {
			fmt.Fprintf(out, "%d. %s  %d bytes\n", i+1, rev.CreatedAt.Format("2006-01-02 15:04:05"), len(rev.Content))
		}
		return nil
	})
}

// withStore loads the environment and runs fn against the configured store
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Store) error) error {
	e, err := loadEnv(cmd, config.Flags{})
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	e.log.LogDebug(fmt.Sprintf("Using store %s", s.Path()))
	return fn(cmd.Context(), s)
}

func notFound(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("document %q not found", name)
	}
	return err
}
