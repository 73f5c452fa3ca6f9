package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"prun-economy-lab/internal/domain"
)

const (
	sourceWorkers = 100 // source rates are per 100 workers
	hoursPerDay   = 24  // source rates are per day
)

// HourlyRate converts a per-100-workers-per-day consumption to per worker per hour.
func HourlyRate(per100PerDay float64) float64 {
	if per100PerDay <= 0 {
		return 0
	}
	return per100PerDay / sourceWorkers / hoursPerDay
}

// IsLuxury reports whether a consumable name denotes a luxury good.
func IsLuxury(name string) bool {
	return strings.Contains(name, "Luxury")
}

var recipeItemPattern = regexp.MustCompile(`^([\d.]+)x([A-Z0-9]+)$`)

// ParseRecipeKey splits a recipe key of the form "BMP:1xC-2xH=>200xPE"
// into building code, inputs and outputs. Extraction keys may have no inputs.
func ParseRecipeKey(key string) (building string, inputs, outputs []domain.RecipeItem, err error) {
	head, body, found := strings.Cut(key, ":")
	if !found {
		return "", nil, nil, fmt.Errorf("recipe key %q: missing building: %w", key, ErrInvalidRecipe)
	}
	left, right, found := strings.Cut(body, "=>")
	if !found {
		return "", nil, nil, fmt.Errorf("recipe key %q: missing '=>': %w", key, ErrInvalidRecipe)
	}

	if inputs, err = parseItems(left); err != nil {
		return "", nil, nil, fmt.Errorf("recipe key %q inputs: %w", key, err)
	}
	if outputs, err = parseItems(right); err != nil {
		return "", nil, nil, fmt.Errorf("recipe key %q outputs: %w", key, err)
	}
	if len(outputs) == 0 {
		return "", nil, nil, fmt.Errorf("recipe key %q: no outputs: %w", key, ErrInvalidRecipe)
	}
	return strings.TrimSpace(head), inputs, outputs, nil
}

func parseItems(s string) ([]domain.RecipeItem, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "-")
	items := make([]domain.RecipeItem, 0, len(parts))
	for _, part := range parts {
		m := recipeItemPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, fmt.Errorf("item %q: %w", part, ErrInvalidRecipe)
		}
		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", part, ErrInvalidRecipe)
		}
		items = append(items, domain.RecipeItem{Ticker: m[2], Quantity: qty})
	}
	return items, nil
}
