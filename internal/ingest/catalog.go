// Package ingest decodes catalog and market snapshot files into typed domain
// values. Files are YAML; JSON documents decode as well.
package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
)

// CatalogFile is the on-disk layout of reference data.
type CatalogFile struct {
	Materials      []MaterialRow      `yaml:"materials"`
	Buildings      []BuildingRow      `yaml:"buildings"`
	WorkforceNeeds []WorkforceNeedRow `yaml:"workforce_needs"`
	Recipes        []RecipeRow        `yaml:"recipes"`
}

// MaterialRow is one material entry.
type MaterialRow struct {
	Ticker   string  `yaml:"ticker"`
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Tier     int     `yaml:"tier"`
	Weight   float64 `yaml:"weight"`
	Volume   float64 `yaml:"volume"`
}

// BuildingRow maps a building to its workforce headcounts.
type BuildingRow struct {
	Code      string         `yaml:"code"`
	Name      string         `yaml:"name"`
	Workforce map[string]int `yaml:"workforce"`
}

// WorkforceNeedRow is one consumable of a workforce type.
// Amount is consumed per 100 workers per day.
type WorkforceNeedRow struct {
	Workforce string  `yaml:"workforce"`
	Ticker    string  `yaml:"ticker"`
	Name      string  `yaml:"name"`
	Amount    float64 `yaml:"amount"`
	Luxury    *bool   `yaml:"luxury"` // nil = derive from name
}

// ItemRow is a (ticker, quantity) pair.
type ItemRow struct {
	Ticker   string  `yaml:"ticker"`
	Quantity float64 `yaml:"quantity"`
}

// RecipeRow is one recipe. Building, inputs and outputs default to what the key encodes.
// The key is only required to parse when outputs are omitted.
type RecipeRow struct {
	Key             string    `yaml:"key"`
	Building        string    `yaml:"building"`
	WorkforceType   string    `yaml:"workforce_type"`
	Workforce       int       `yaml:"workforce"`
	DurationSeconds float64   `yaml:"duration_seconds"`
	Inputs          []ItemRow `yaml:"inputs"`
	Outputs         []ItemRow `yaml:"outputs"`
}

// LoadCatalog reads and builds a catalog from a file.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalog decodes and builds a catalog.
func ReadCatalog(r io.Reader) (*catalog.Catalog, error) {
	var file CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return file.Build()
}

// Build converts file rows into a catalog.
func (f CatalogFile) Build() (*catalog.Catalog, error) {
	materials := make([]domain.Material, len(f.Materials))
	for i, m := range f.Materials {
		materials[i] = domain.Material{
			Ticker:   m.Ticker,
			Name:     m.Name,
			Category: m.Category,
			Tier:     m.Tier,
			Weight:   m.Weight,
			Volume:   m.Volume,
		}
	}

	buildings := make([]domain.Building, len(f.Buildings))
	for i, b := range f.Buildings {
		buildings[i] = domain.Building{Code: b.Code, Name: b.Name, Workforce: b.Workforce}
	}

	profiles, err := buildProfiles(f.WorkforceNeeds)
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(f.Recipes))
	for _, row := range f.Recipes {
		r, err := row.recipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	return catalog.New(materials, recipes, buildings, profiles)
}

func buildProfiles(rows []WorkforceNeedRow) ([]domain.WorkforceProfile, error) {
	var order []string
	byType := make(map[string]*domain.WorkforceProfile)

	for _, row := range rows {
		if row.Workforce == "" || row.Ticker == "" {
			return nil, fmt.Errorf("workforce need %+v: workforce and ticker are required", row)
		}
		if row.Amount < 0 {
			return nil, fmt.Errorf("workforce need %s/%s: negative amount %v", row.Workforce, row.Ticker, row.Amount)
		}

		p, ok := byType[row.Workforce]
		if !ok {
			p = &domain.WorkforceProfile{Type: row.Workforce}
			byType[row.Workforce] = p
			order = append(order, row.Workforce)
		}

		luxury := catalog.IsLuxury(row.Name)
		if row.Luxury != nil {
			luxury = *row.Luxury
		}
		c := domain.Consumable{Ticker: row.Ticker, Rate: catalog.HourlyRate(row.Amount)}
		if luxury {
			p.Luxury = append(p.Luxury, c)
		} else {
			p.Necessary = append(p.Necessary, c)
		}
	}

	result := make([]domain.WorkforceProfile, len(order))
	for i, wt := range order {
		result[i] = *byType[wt]
	}
	return result, nil
}

func (row RecipeRow) recipe() (domain.Recipe, error) {
	r := domain.Recipe{
		Key:           row.Key,
		Building:      row.Building,
		WorkforceType: row.WorkforceType,
		Workforce:     row.Workforce,
		Duration:      time.Duration(row.DurationSeconds * float64(time.Second)),
		Inputs:        items(row.Inputs),
		Outputs:       items(row.Outputs),
	}

	if len(r.Outputs) == 0 {
		building, inputs, outputs, err := catalog.ParseRecipeKey(row.Key)
		if err != nil {
			return domain.Recipe{}, err
		}
		if r.Building == "" {
			r.Building = building
		}
		if len(r.Inputs) == 0 {
			r.Inputs = inputs
		}
		r.Outputs = outputs
	} else if r.Building == "" {
		// A key that does not encode a building leaves the recipe unstaffed.
		if building, _, _, err := catalog.ParseRecipeKey(row.Key); err == nil {
			r.Building = building
		}
	}
	return r, nil
}

func items(rows []ItemRow) []domain.RecipeItem {
	if len(rows) == 0 {
		return nil
	}
	result := make([]domain.RecipeItem, len(rows))
	for i, row := range rows {
		result[i] = domain.RecipeItem{Ticker: row.Ticker, Quantity: row.Quantity}
	}
	return result
}
