// Package catalog holds the static reference data of the economy: materials,
// recipes, buildings and workforce consumption profiles.
//
// A Catalog is immutable after construction and safe for concurrent reads.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"prun-economy-lab/internal/domain"
)

var (
	// ErrDuplicateKey is returned when a ticker, recipe key, building or workforce type repeats.
	ErrDuplicateKey = errors.New("duplicate catalog key")

	// ErrInvalidRecipe is returned for recipes without a key or outputs.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Catalog is an indexed, read-only view over reference data.
type Catalog struct {
	materials map[string]domain.Material
	recipes   []domain.Recipe
	byKey     map[string]int
	producers map[string][]int // output ticker -> recipe indexes, catalog order
	buildings map[string]domain.Building
	profiles  map[string]domain.WorkforceProfile
}

// New builds a Catalog. Inputs are copied; the caller may reuse the slices.
// Recipe order is preserved and defines tie-breaking in cost resolution.
func New(
	materials []domain.Material,
	recipes []domain.Recipe,
	buildings []domain.Building,
	profiles []domain.WorkforceProfile,
) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]domain.Material, len(materials)),
		recipes:   make([]domain.Recipe, 0, len(recipes)),
		byKey:     make(map[string]int, len(recipes)),
		producers: make(map[string][]int),
		buildings: make(map[string]domain.Building, len(buildings)),
		profiles:  make(map[string]domain.WorkforceProfile, len(profiles)),
	}

	for _, m := range materials {
		if _, ok := c.materials[m.Ticker]; ok {
			return nil, fmt.Errorf("material %s: %w", m.Ticker, ErrDuplicateKey)
		}
		c.materials[m.Ticker] = m
	}

	for _, r := range recipes {
		if r.Key == "" || len(r.Outputs) == 0 {
			return nil, fmt.Errorf("recipe %q: %w", r.Key, ErrInvalidRecipe)
		}
		if _, ok := c.byKey[r.Key]; ok {
			return nil, fmt.Errorf("recipe %s: %w", r.Key, ErrDuplicateKey)
		}
		idx := len(c.recipes)
		c.recipes = append(c.recipes, cloneRecipe(r))
		c.byKey[r.Key] = idx

		seen := make(map[string]bool, len(r.Outputs))
		for _, out := range r.Outputs {
			if seen[out.Ticker] {
				continue
			}
			seen[out.Ticker] = true
			c.producers[out.Ticker] = append(c.producers[out.Ticker], idx)
		}
	}

	for _, b := range buildings {
		if _, ok := c.buildings[b.Code]; ok {
			return nil, fmt.Errorf("building %s: %w", b.Code, ErrDuplicateKey)
		}
		wf := make(map[string]int, len(b.Workforce))
		for k, v := range b.Workforce {
			wf[k] = v
		}
		b.Workforce = wf
		c.buildings[b.Code] = b
	}

	for _, p := range profiles {
		if _, ok := c.profiles[p.Type]; ok {
			return nil, fmt.Errorf("workforce %s: %w", p.Type, ErrDuplicateKey)
		}
		p.Necessary = append([]domain.Consumable(nil), p.Necessary...)
		p.Luxury = append([]domain.Consumable(nil), p.Luxury...)
		c.profiles[p.Type] = p
	}

	return c, nil
}

func cloneRecipe(r domain.Recipe) domain.Recipe {
	r.Inputs = append([]domain.RecipeItem(nil), r.Inputs...)
	r.Outputs = append([]domain.RecipeItem(nil), r.Outputs...)
	return r
}

// Material returns the material with the given ticker.
func (c *Catalog) Material(ticker string) (domain.Material, bool) {
	m, ok := c.materials[ticker]
	return m, ok
}

// Materials returns all materials sorted by ticker.
func (c *Catalog) Materials() []domain.Material {
	result := make([]domain.Material, 0, len(c.materials))
	for _, m := range c.materials {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})
	return result
}

// Tickers returns the tickers of all materials, sorted.
func (c *Catalog) Tickers() []string {
	result := make([]string, 0, len(c.materials))
	for t := range c.materials {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// Recipe returns the recipe with the given key.
func (c *Catalog) Recipe(key string) (domain.Recipe, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return domain.Recipe{}, false
	}
	return cloneRecipe(c.recipes[idx]), true
}

// Recipes returns all recipes in catalog order.
func (c *Catalog) Recipes() []domain.Recipe {
	result := make([]domain.Recipe, len(c.recipes))
	for i, r := range c.recipes {
		result[i] = cloneRecipe(r)
	}
	return result
}

// RecipesFor returns recipes producing ticker in catalog order.
// Returns nil for raw materials.
func (c *Catalog) RecipesFor(ticker string) []domain.Recipe {
	idxs := c.producers[ticker]
	if len(idxs) == 0 {
		return nil
	}
	result := make([]domain.Recipe, len(idxs))
	for i, idx := range idxs {
		result[i] = cloneRecipe(c.recipes[idx])
	}
	return result
}

// RecipeCount returns the number of recipes producing ticker.
func (c *Catalog) RecipeCount(ticker string) int {
	return len(c.producers[ticker])
}

// Building returns the building with the given code.
func (c *Catalog) Building(code string) (domain.Building, bool) {
	b, ok := c.buildings[code]
	return b, ok
}

// Buildings returns all buildings sorted by code.
func (c *Catalog) Buildings() []domain.Building {
	result := make([]domain.Building, 0, len(c.buildings))
	for _, b := range c.buildings {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result
}

// Profile returns the consumption profile of a workforce type.
func (c *Catalog) Profile(workforceType string) (domain.WorkforceProfile, bool) {
	p, ok := c.profiles[workforceType]
	return p, ok
}

// Profiles returns all workforce profiles in workforce order, then by type name.
func (c *Catalog) Profiles() []domain.WorkforceProfile {
	rank := make(map[string]int, len(domain.WorkforceTypes))
	for i, wt := range domain.WorkforceTypes {
		rank[wt] = i
	}
	result := make([]domain.WorkforceProfile, 0, len(c.profiles))
	for _, p := range c.profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		ri, iok := rank[result[i].Type]
		rj, jok := rank[result[j].Type]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// Staffing resolves the workforce type and headcount of a recipe.
// Explicit recipe values win; otherwise the building's dominant workforce is used.
// ok is false when neither source yields a staffed workforce, or the recipe is explicitly unstaffed.
func (c *Catalog) Staffing(r domain.Recipe) (workforceType string, headcount int, ok bool) {
	if Unstaffed(r) {
		return "", 0, false
	}
	workforceType, headcount = r.WorkforceType, r.Workforce

	if b, found := c.buildings[r.Building]; found {
		switch {
		case workforceType == "":
			workforceType, headcount = b.DominantWorkforce()
		case headcount <= 0:
			headcount = b.Workforce[workforceType]
		}
	}

	if workforceType == "" || headcount <= 0 {
		return "", 0, false
	}
	return workforceType, headcount, true
}

// Unstaffed reports whether a recipe declares workforce NONE.
func Unstaffed(r domain.Recipe) bool {
	return strings.EqualFold(strings.TrimSpace(r.WorkforceType), domain.WorkforceNone)
}
