// Package resolver expands "#id" references between use cases by pulling
// the referenced use cases from a source: an in-memory corpus, a directory
// of use case documents or the document store.
package resolver

import (
	"context"
	"fmt"

	"github.com/harrison/adl/internal/models"
)

// Source looks up use cases by id. Implementations return the use cases
// they hold for any of ids, in their own stable order; ids they do not know
// are simply absent from the result.
type Source interface {
	Lookup(ctx context.Context, ids []string) ([]models.UseCase, error)
}

// Result is the outcome of resolving references
type Result struct {
	// UseCases holds the input use cases followed by the resolved ones
	UseCases []models.UseCase
	// Resolved is the number of use cases added
	Resolved int
	// Unresolved lists referenced ids no source could provide, in first-seen order
	Unresolved []string
}

// Resolve appends every use case referenced (transitively) by useCases.
// Resolved use cases follow the order they are first referenced: each one
// is appended and its own references are expanded before the next sibling.
// References to use cases already present never reach the source. The source
// is asked once per visited use case for all of its missing references. A nil
// source leaves every missing reference unresolved.
func Resolve(ctx context.Context, useCases []models.UseCase, src Source) (*Result, error) {
	r := &resolution{
		src:        src,
		result:     &Result{UseCases: append([]models.UseCase(nil), useCases...)},
		present:    make(map[string]bool, len(useCases)),
		unresolved: make(map[string]bool),
	}
	for _, uc := range useCases {
		r.present[uc.ID] = true
	}

	for _, uc := range useCases {
		if err := r.visit(ctx, uc); err != nil {
			return nil, err
		}
	}
	return r.result, nil
}

// resolution is the state of one Resolve call
type resolution struct {
	src        Source
	result     *Result
	present    map[string]bool
	unresolved map[string]bool
}

// visit appends the missing references of uc in reference order, expanding
// each one depth-first
func (r *resolution) visit(ctx context.Context, uc models.UseCase) error {
	pending := r.missingRefs(uc)
	if len(pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	byID := make(map[string]models.UseCase, len(pending))
	if r.src != nil {
		found, err := r.src.Lookup(ctx, pending)
		if err != nil {
			return fmt.Errorf("failed to resolve references %v: %w", pending, err)
		}
		for _, f := range found {
			if _, ok := byID[f.ID]; !ok {
				byID[f.ID] = f
			}
		}
	}

	for _, id := range pending {
		// an earlier sibling's expansion may already have pulled it in
		if r.present[id] || r.unresolved[id] {
			continue
		}
		ref, ok := byID[id]
		if !ok {
			r.unresolved[id] = true
			r.result.Unresolved = append(r.result.Unresolved, id)
			continue
		}
		r.present[id] = true
		r.result.UseCases = append(r.result.UseCases, ref)
		r.result.Resolved++
		if err := r.visit(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// missingRefs returns the referenced ids of uc that are neither present nor
// known to be unresolvable, deduplicated in first-seen order
func (r *resolution) missingRefs(uc models.UseCase) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ref := range uc.ExtractReferences() {
		id := models.RefID(ref)
		if id == "" || r.present[id] || r.unresolved[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
