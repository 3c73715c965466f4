package recipes

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var catalog []byte

const kind = "recipe"

// Repository looks up static recipe data
type Repository interface {
	// Get returns the recipe with the given ID
	Get(id string) (*alchemy.Recipe, error)

	// List returns every recipe ordered by ID
	List() []*alchemy.Recipe
}

type staticRepo struct {
	recipes map[string]*alchemy.Recipe
}

// NewStatic creates a repository over the given recipes
func NewStatic(list ...*alchemy.Recipe) Repository {
	repo := &staticRepo{recipes: make(map[string]*alchemy.Recipe, len(list))}
	for _, r := range list {
		repo.recipes[r.ID] = r.Clone()
	}
	return repo
}

// Parse decodes a YAML recipe list
func Parse(data []byte) ([]*alchemy.Recipe, error) {
	var list []*alchemy.Recipe
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}

	seen := make(map[string]bool, len(list))
	for _, r := range list {
		if r.ID == "" {
			return nil, fmt.Errorf("recipe without id in catalog")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate recipe %s in catalog", r.ID)
		}
		if r.BaseDuration <= 0 {
			return nil, fmt.Errorf("recipe %s has no base duration", r.ID)
		}
		seen[r.ID] = true
	}
	return list, nil
}

// NewEmbedded loads the built-in catalog
func NewEmbedded() (Repository, error) {
	list, err := Parse(catalog)
	if err != nil {
		return nil, err
	}
	return NewStatic(list...), nil
}

// Get returns the recipe with the given ID
func (r *staticRepo) Get(id string) (*alchemy.Recipe, error) {
	recipe, ok := r.recipes[id]
	if !ok {
		return nil, repositories.NewRecordNotFoundError(kind, id)
	}
	return recipe.Clone(), nil
}

// List returns every recipe ordered by ID
func (r *staticRepo) List() []*alchemy.Recipe {
	out := make([]*alchemy.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		out = append(out, recipe.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
