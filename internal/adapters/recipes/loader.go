package recipes

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// Load reads the recipe dataset from a JSON file. Dataset order is
// preserved: search results depend on it.
func Load(path string) ([]domain.Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe data %s: %w", path, err)
	}

	var recipes []domain.Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return nil, fmt.Errorf("parsing recipe data %s: %w", path, err)
	}

	for i, r := range recipes {
		if r.Title == "" {
			return nil, fmt.Errorf("recipe %d in %s has no title", i, path)
		}
	}

	observability.Logger().Info("recipe dataset loaded", "path", path, "count", len(recipes))
	return recipes, nil
}
