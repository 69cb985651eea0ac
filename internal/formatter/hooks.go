package formatter

import (
	"fmt"
	"strings"

	"github.com/harrison/adl/internal/models"
)

// IncludeSubCases returns a Hook that appends every sub use case referenced
// by a block as a "#### Case: <id>" section, rendered with the same conditions
// as the block itself. References to regular use cases are left alone.
func IncludeSubCases(processor CodeBlockProcessor) Hook {
	return func(uc models.UseCase, block string, all []models.UseCase, active []string) (string, error) {
		var sb strings.Builder
		sb.WriteString(block)

		for _, ref := range uc.ExtractReferences() {
			sub, ok := models.FindUseCase(all, models.RefID(ref))
			if !ok || !sub.SubUseCase || !sub.Matches(active) {
				continue
			}
			text, err := Output(sub.Solution, active, processor)
			if err != nil {
				return "", fmt.Errorf("failed to render sub use case %s: %w", sub.ID, err)
			}
			fmt.Fprintf(&sb, "#### Case: %s\n%s", sub.ID, text)
		}
		return sb.String(), nil
	}
}

// ChainHooks runs hooks in order, feeding each the previous result
func ChainHooks(hooks ...Hook) Hook {
	return func(uc models.UseCase, block string, all []models.UseCase, active []string) (string, error) {
		var err error
		for _, h := range hooks {
			block, err = h(uc, block, all, active)
			if err != nil {
				return "", err
			}
		}
		return block, nil
	}
}
