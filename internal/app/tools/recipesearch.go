package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// searchInput is the typed shape of the recipe_search tool arguments. All
// filters are optional; an empty input returns the head of the dataset.
type searchInput struct {
	Ingredients         []string `json:"ingredients" validate:"omitempty,dive,min=1"`
	DietaryRestrictions []string `json:"dietary_restrictions" validate:"omitempty,dive,min=1"`
	Cuisine             string   `json:"cuisine"`
	MaxTimeMinutes      int      `json:"max_time_minutes" validate:"omitempty,gt=0"`
	Difficulty          string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// RecipeSearch filters a static recipe dataset. All filters are conjunctive;
// within the ingredients filter a recipe matches when it contains at least
// one of the requested ingredients. Dataset order is preserved and results
// are truncated to maxResults.
type RecipeSearch struct {
	recipes    []domain.Recipe
	maxResults int
	validate   *validator.Validate
}

func NewRecipeSearch(recipes []domain.Recipe, maxResults int) *RecipeSearch {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &RecipeSearch{
		recipes:    recipes,
		maxResults: maxResults,
		validate:   validator.New(),
	}
}

func (s *RecipeSearch) Name() string {
	return "recipe_search"
}

func (s *RecipeSearch) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "recipe_search",
		Description: "Search for recipes based on ingredients, dietary restrictions, cuisine, cooking time, and difficulty level. Returns matching recipes with details.",
		Parameters: []domain.ToolParam{
			{
				Name:        "ingredients",
				Type:        "array",
				Items:       "string",
				Description: "Ingredients to search for; a recipe matches when it uses at least one (optional)",
			},
			{
				Name:        "dietary_restrictions",
				Type:        "array",
				Items:       "string",
				Description: "Dietary constraints like 'vegetarian', 'vegan', 'gluten-free', 'dairy-free'; a recipe must satisfy all of them (optional)",
			},
			{
				Name:        "cuisine",
				Type:        "string",
				Description: "Cuisine type like 'italian', 'mexican', 'asian', 'mediterranean' (optional)",
			},
			{
				Name:        "max_time_minutes",
				Type:        "integer",
				Description: "Maximum cooking time in minutes (optional)",
			},
			{
				Name:        "difficulty",
				Type:        "string",
				Enum:        []string{"easy", "medium", "hard"},
				Description: "Maximum recipe difficulty level (optional)",
			},
		},
	}
}

func (s *RecipeSearch) Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
	if err := ValidateInput(s.Schema(), input); err != nil {
		return nil, err
	}

	in, err := s.decodeInput(input)
	if err != nil {
		return nil, err
	}

	matched := s.Search(in)

	log := observability.LoggerFromContext(ctx)
	log.Debug("recipe search executed",
		"session_id", tctx.SessionID,
		"matched", len(matched),
	)

	summaries := make([]map[string]any, 0, len(matched))
	for _, r := range matched {
		summaries = append(summaries, recipeSummary(r))
	}

	return map[string]any{
		"recipes":  summaries,
		"returned": len(matched),
	}, nil
}

func (s *RecipeSearch) decodeInput(input map[string]any) (searchInput, error) {
	var in searchInput

	raw, err := json.Marshal(input)
	if err != nil {
		return in, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	if err := s.validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return in, nil
}

// Search applies the conjunctive filters over the dataset and truncates the
// result to the configured maximum.
func (s *RecipeSearch) Search(in searchInput) []domain.Recipe {
	var out []domain.Recipe
	for _, r := range s.recipes {
		if len(in.Ingredients) > 0 && !matchesAnyIngredient(r, in.Ingredients) {
			continue
		}
		if len(in.DietaryRestrictions) > 0 && !matchesAllDietary(r, in.DietaryRestrictions) {
			continue
		}
		if in.Cuisine != "" && !strings.EqualFold(r.Cuisine, in.Cuisine) {
			continue
		}
		if in.MaxTimeMinutes > 0 && r.TimeMinutes > in.MaxTimeMinutes {
			continue
		}
		if in.Difficulty != "" {
			max := domain.ParseDifficulty(in.Difficulty)
			if r.Difficulty.Rank() < 0 || r.Difficulty.Rank() > max.Rank() {
				continue
			}
		}
		out = append(out, r)
		if len(out) == s.maxResults {
			break
		}
	}
	return out
}

// matchesAnyIngredient reports whether the recipe uses at least one of the
// requested ingredients. Matching is case-insensitive substring in either
// direction, so "tomato" matches "cherry tomatoes".
func matchesAnyIngredient(r domain.Recipe, wanted []string) bool {
	for _, w := range wanted {
		wl := strings.ToLower(strings.TrimSpace(w))
		if wl == "" {
			continue
		}
		for _, ing := range r.Ingredients {
			il := strings.ToLower(ing)
			if strings.Contains(il, wl) || strings.Contains(wl, il) {
				return true
			}
		}
	}
	return false
}

// matchesAllDietary reports whether the recipe's dietary tags form a
// superset of the requested restrictions.
func matchesAllDietary(r domain.Recipe, wanted []string) bool {
	tags := make(map[string]bool, len(r.DietaryTags))
	for _, t := range r.DietaryTags {
		tags[strings.ToLower(t)] = true
	}
	for _, w := range wanted {
		if !tags[strings.ToLower(strings.TrimSpace(w))] {
			return false
		}
	}
	return true
}

func recipeSummary(r domain.Recipe) map[string]any {
	main := r.Ingredients
	if len(main) > 5 {
		main = main[:5]
	}
	return map[string]any{
		"title":            r.Title,
		"description":      r.Description,
		"cuisine":          r.Cuisine,
		"time_minutes":     r.TimeMinutes,
		"difficulty":       string(r.Difficulty),
		"dietary_tags":     r.DietaryTags,
		"main_ingredients": main,
		"servings":         r.Servings,
	}
}
