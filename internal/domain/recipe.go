package domain

// Recipe is read-only reference data owned by the recipe dataset. The core
// never mutates it.
type Recipe struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Ingredients []string   `json:"ingredients"`
	Cuisine     string     `json:"cuisine"`
	DietaryTags []string   `json:"dietary_tags"`
	TimeMinutes int        `json:"time_minutes"`
	Difficulty  Difficulty `json:"difficulty"`
	Servings    int        `json:"servings"`
}
