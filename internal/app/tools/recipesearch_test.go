package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/domain"
)

func testRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			Title:       "Margherita Pasta",
			Ingredients: []string{"spaghetti", "tomatoes", "basil", "mozzarella cheese"},
			Cuisine:     "italian",
			DietaryTags: []string{"vegetarian"},
			TimeMinutes: 25,
			Difficulty:  domain.DifficultyEasy,
		},
		{
			Title:       "Lemon Herb Salmon",
			Ingredients: []string{"salmon", "lemon", "asparagus"},
			Cuisine:     "mediterranean",
			DietaryTags: []string{"gluten-free", "dairy-free"},
			TimeMinutes: 30,
			Difficulty:  domain.DifficultyEasy,
		},
		{
			Title:       "Chickpea Spinach Curry",
			Ingredients: []string{"chickpeas", "spinach", "coconut milk"},
			Cuisine:     "indian",
			DietaryTags: []string{"vegan", "vegetarian", "gluten-free", "dairy-free"},
			TimeMinutes: 35,
			Difficulty:  domain.DifficultyMedium,
		},
		{
			Title:       "Mushroom Risotto",
			Ingredients: []string{"arborio rice", "porcini mushrooms", "parmesan"},
			Cuisine:     "italian",
			DietaryTags: []string{"vegetarian", "gluten-free"},
			TimeMinutes: 50,
			Difficulty:  domain.DifficultyHard,
		},
		{
			Title:       "Black Bean Tacos",
			Ingredients: []string{"black beans", "corn tortillas", "avocado"},
			Cuisine:     "mexican",
			DietaryTags: []string{"vegan", "vegetarian", "gluten-free", "dairy-free"},
			TimeMinutes: 20,
			Difficulty:  domain.DifficultyEasy,
		},
		{
			Title:       "Thai Green Curry",
			Ingredients: []string{"green curry paste", "coconut milk", "eggplant"},
			Cuisine:     "thai",
			DietaryTags: []string{"vegan", "vegetarian", "gluten-free", "dairy-free"},
			TimeMinutes: 40,
			Difficulty:  domain.DifficultyMedium,
		},
	}
}

func searchTitles(t *testing.T, s *tools.RecipeSearch, input map[string]any) []string {
	t.Helper()
	out, err := s.Call(context.Background(), tools.ToolContext{}, input)
	require.NoError(t, err)

	recipes, ok := out["recipes"].([]map[string]any)
	require.True(t, ok, "recipes payload has unexpected shape")

	var titles []string
	for _, r := range recipes {
		titles = append(titles, r["title"].(string))
	}
	return titles
}

func TestSearchNoFiltersReturnsDatasetHead(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	titles := searchTitles(t, s, map[string]any{})

	assert.Len(t, titles, 5)
	assert.Equal(t, "Margherita Pasta", titles[0], "dataset order must be preserved")
}

func TestSearchNoFiltersSmallDataset(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes()[:2], 5)

	titles := searchTitles(t, s, map[string]any{})

	assert.Len(t, titles, 2)
}

func TestSearchVeganReturnsOnlyVeganRecipes(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	titles := searchTitles(t, s, map[string]any{
		"dietary_restrictions": []any{"vegan"},
	})

	assert.ElementsMatch(t, []string{"Chickpea Spinach Curry", "Black Bean Tacos", "Thai Green Curry"}, titles)
}

func TestSearchDietarySupersetSemantics(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	titles := searchTitles(t, s, map[string]any{
		"dietary_restrictions": []any{"vegan", "gluten-free"},
	})

	// Thai Green Curry and friends are tagged with both; Margherita is
	// vegetarian only and must never appear.
	assert.NotContains(t, titles, "Margherita Pasta")
	assert.Contains(t, titles, "Thai Green Curry")
}

func TestSearchIngredientsMatchAtLeastOne(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	titles := searchTitles(t, s, map[string]any{
		"ingredients": []any{"salmon", "chickpeas"},
	})

	assert.ElementsMatch(t, []string{"Lemon Herb Salmon", "Chickpea Spinach Curry"}, titles)
}

func TestSearchFiltersAreConjunctive(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	titles := searchTitles(t, s, map[string]any{
		"cuisine":    "italian",
		"difficulty": "easy",
	})

	assert.Equal(t, []string{"Margherita Pasta"}, titles)
}

func TestSearchDifficultyIsACeiling(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 6)

	titles := searchTitles(t, s, map[string]any{"difficulty": "medium"})

	assert.NotContains(t, titles, "Mushroom Risotto")
	assert.Contains(t, titles, "Chickpea Spinach Curry")
	assert.Contains(t, titles, "Margherita Pasta")
}

func TestSearchMaxTime(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 6)

	titles := searchTitles(t, s, map[string]any{"max_time_minutes": float64(30)})

	assert.ElementsMatch(t, []string{"Margherita Pasta", "Lemon Herb Salmon", "Black Bean Tacos"}, titles)
}

func TestSearchRejectsBadArguments(t *testing.T) {
	s := tools.NewRecipeSearch(testRecipes(), 5)

	_, err := s.Call(context.Background(), tools.ToolContext{}, map[string]any{
		"difficulty": "impossible",
	})
	assert.ErrorIs(t, err, tools.ErrBadArgument)

	_, err = s.Call(context.Background(), tools.ToolContext{}, map[string]any{
		"ingredients": "salmon",
	})
	assert.ErrorIs(t, err, tools.ErrBadArgument)
}
