package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
)

// MemorySource resolves references against an in-memory corpus
type MemorySource struct {
	UseCases []models.UseCase
}

// Lookup returns the first corpus entry for each requested id, in corpus order
func (m MemorySource) Lookup(_ context.Context, ids []string) ([]models.UseCase, error) {
	return pick(m.UseCases, ids), nil
}

// DirSource resolves references against use case documents on disk. Path
// may be a directory (scanned recursively) or a single document.
type DirSource struct {
	Path string
}

// Lookup parses the documents in sorted path order and returns the first
// use case found for each requested id. Parsing stops once every id is found.
func (d DirSource) Lookup(ctx context.Context, ids []string) ([]models.UseCase, error) {
	if _, err := os.Stat(d.Path); err != nil {
		return nil, fmt.Errorf("failed to access use case source: %w", err)
	}

	files, err := parser.FilterUseCaseFiles([]string{d.Path})
	if errors.Is(err, parser.ErrNoUseCaseFiles) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}

	var found []models.UseCase
	for _, file := range files {
		if len(remaining) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := parser.ParseFile(file)
		if err != nil {
			return nil, err
		}
		for _, uc := range doc.UseCases {
			if remaining[uc.ID] {
				delete(remaining, uc.ID)
				found = append(found, uc)
			}
		}
	}
	return found, nil
}

// UseCaseFinder is the part of the document store the resolver needs
type UseCaseFinder interface {
	FindUseCases(ctx context.Context, ids []string) ([]models.UseCase, error)
}

// StoreSource resolves references against the document store's use case index
type StoreSource struct {
	Finder UseCaseFinder
}

// Lookup queries the store index
func (s StoreSource) Lookup(ctx context.Context, ids []string) ([]models.UseCase, error) {
	return s.Finder.FindUseCases(ctx, ids)
}

// Chain consults sources in order; later sources only see ids earlier ones
// did not provide
type Chain []Source

// Lookup implements Source
func (c Chain) Lookup(ctx context.Context, ids []string) ([]models.UseCase, error) {
	remaining := ids
	var found []models.UseCase
	for _, src := range c {
		if len(remaining) == 0 {
			break
		}
		got, err := src.Lookup(ctx, remaining)
		if err != nil {
			return nil, err
		}
		got = pick(got, remaining)
		found = append(found, got...)

		have := make(map[string]bool, len(got))
		for _, uc := range got {
			have[uc.ID] = true
		}
		var next []string
		for _, id := range remaining {
			if !have[id] {
				next = append(next, id)
			}
		}
		remaining = next
	}
	return found, nil
}

// pick returns the first use case for each of ids, in corpus order
func pick(corpus []models.UseCase, ids []string) []models.UseCase {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var found []models.UseCase
	for _, uc := range corpus {
		if wanted[uc.ID] {
			delete(wanted, uc.ID)
			found = append(found, uc)
		}
	}
	return found
}
