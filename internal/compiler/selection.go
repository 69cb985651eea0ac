package compiler

import "github.com/harrison/adl/internal/conditions"

// DefaultFallbackLimit is the number of uses after which a use case
// switches to its fallback solution
const DefaultFallbackLimit = 2

// SelectSolutions derives solution overrides from a usage history: every
// used id renders its alternative solution, and ids used at least
// fallbackLimit times render their fallback. fallbackLimit <= 0 disables
// fallbacks. Both lists keep first-use order.
func SelectSolutions(used []string, fallbackLimit int) (alternatives, fallbacks []string) {
	counts := make(map[string]int, len(used))
	for _, id := range used {
		counts[id]++
		alternatives = conditions.Union(alternatives, []string{id})
	}
	if fallbackLimit <= 0 {
		return alternatives, nil
	}
	for _, id := range alternatives {
		if counts[id] >= fallbackLimit {
			fallbacks = append(fallbacks, id)
		}
	}
	return alternatives, fallbacks
}
