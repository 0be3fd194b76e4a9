package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// dietaryVocabulary maps each canonical restriction to the phrases that
// imply it. Kept as an ordered slice so detection output is deterministic.
var dietaryVocabulary = []struct {
	canonical string
	keywords  []string
}{
	{"vegetarian", []string{"vegetarian", "veggie"}},
	{"vegan", []string{"vegan", "plant-based", "plant based"}},
	{"gluten-free", []string{"gluten-free", "gluten free", "no gluten", "celiac"}},
	{"dairy-free", []string{"dairy-free", "dairy free", "lactose-free", "no dairy", "no milk"}},
	{"nut-free", []string{"nut-free", "nut free", "no nuts"}},
	{"low-carb", []string{"low-carb", "low carb", "keto", "ketogenic"}},
	{"paleo", []string{"paleo", "paleolithic"}},
	{"halal", []string{"halal"}},
	{"kosher", []string{"kosher"}},
}

// knownCuisines are the cuisine labels recognized in free text.
var knownCuisines = []string{
	"italian", "mexican", "asian", "mediterranean", "american", "indian", "thai",
}

// leadIns are the phrases an ingredient list tends to follow. Ordered from
// most to least specific; the first match wins.
var leadIns = []string{
	"what can i make with",
	"what can i cook with",
	"recipes using",
	"recipes with",
	"recipe using",
	"recipe with",
	"recipe for",
	"i've got",
	"i have",
	"i got",
	"using",
	"with",
}

// timePatterns extract an upper bound on cooking time in minutes.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`under (\d+) min`),
	regexp.MustCompile(`less than (\d+) min`),
	regexp.MustCompile(`(\d+) min(?:ute)?s? or less`),
	regexp.MustCompile(`in (\d+) min`),
}

// candidate words that are never ingredients.
var ingredientStopwords = map[string]bool{
	"recipe": true, "recipes": true, "dish": true, "dishes": true,
	"meal": true, "meals": true, "food": true, "something": true,
	"dinner": true, "lunch": true, "breakfast": true, "dessert": true,
	"ideas": true, "options": true, "suggestions": true,
}

// Extractor parses ingredients and dietary constraints out of free-form
// user text. Pattern rules run first; when they find nothing in an
// utterance that looks substantial, a single structured-extraction call to
// the completion service fills the gap. Extraction is best-effort and never
// returns an error.
type Extractor struct {
	completions domain.CompletionClient
}

func NewExtractor(completions domain.CompletionClient) *Extractor {
	return &Extractor{completions: completions}
}

func (e *Extractor) Name() string {
	return "ingredient_extractor"
}

func (e *Extractor) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "ingredient_extractor",
		Description: "Extract ingredients and dietary constraints from user text. Use when the user mentions ingredients they have or provides recipe text to parse.",
		Parameters: []domain.ToolParam{
			{
				Name:        "text",
				Type:        "string",
				Description: "The text containing ingredients to extract",
				Required:    true,
			},
		},
	}
}

func (e *Extractor) Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
	if err := ValidateInput(e.Schema(), input); err != nil {
		return nil, err
	}
	text := getString(input, "text")
	ex := e.Extract(ctx, text)
	return map[string]any{
		"ingredients":         ex.Ingredients,
		"dietary_constraints": ex.DietaryConstraints,
		"count":               len(ex.Ingredients),
	}, nil
}

// Extract runs the pattern rules over text, falling back to the completion
// service when they find nothing in a non-trivial utterance.
func (e *Extractor) Extract(ctx context.Context, text string) domain.Extraction {
	ex := domain.Extraction{
		Ingredients:        extractIngredients(text),
		DietaryConstraints: extractDietaryConstraints(text),
	}

	if ex.IsEmpty() && nonTrivial(text) {
		log := observability.LoggerFromContext(ctx)
		log.Debug("pattern extraction found nothing, trying completion fallback")
		fallback, err := e.fallbackExtract(ctx, text)
		if err != nil {
			log.Warn("extraction fallback failed", "error", err)
			return ex
		}
		return fallback
	}

	return ex
}

// nonTrivial reports whether text is long enough to bother the completion
// service with. Short utterances that matched nothing stay empty.
func nonTrivial(text string) bool {
	return len(strings.Fields(text)) >= 4
}

const extractionSystemPrompt = "You are a precise ingredient extraction assistant. Respond only with valid JSON."

func (e *Extractor) fallbackExtract(ctx context.Context, text string) (domain.Extraction, error) {
	prompt := "Extract all ingredients and dietary constraints from the following text.\n" +
		"Respond with ONLY a JSON object of the shape " +
		`{"ingredients": ["..."], "dietary_constraints": ["..."]}` +
		", no other text. Use empty lists when nothing is found.\n\nText: " + text

	resp, err := e.completions.Complete(ctx, domain.CompletionRequest{
		System: extractionSystemPrompt,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Text: prompt},
		},
	})
	if err != nil {
		return domain.Extraction{}, err
	}

	var ex domain.Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text)), &ex); err != nil {
		return domain.Extraction{}, err
	}
	return ex, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// add around JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractIngredients applies the ordered lead-in rules: find the first
// lead-in phrase, take the rest of the sentence, split it on list
// separators and keep the parts that look like ingredient names.
func extractIngredients(text string) []string {
	lower := strings.ToLower(text)

	var tail string
	for _, lead := range leadIns {
		if idx := strings.Index(lower, lead+" "); idx >= 0 {
			tail = lower[idx+len(lead)+1:]
			break
		}
	}
	if tail == "" {
		return nil
	}

	// Only the sentence the lead-in starts.
	if end := strings.IndexAny(tail, ".!?\n"); end >= 0 {
		tail = tail[:end]
	}

	tail = strings.ReplaceAll(tail, " and ", ",")
	tail = strings.ReplaceAll(tail, " or ", ",")

	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(tail, ",") {
		name := cleanIngredient(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// cleanIngredient normalizes one list element and rejects anything that
// does not look like an ingredient name.
func cleanIngredient(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,;:!?")
	for _, article := range []string{"a ", "an ", "the ", "some "} {
		s = strings.TrimPrefix(s, article)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	if len(words) > 3 {
		return ""
	}
	if strings.ContainsAny(s, "0123456789") {
		return ""
	}
	for _, w := range words {
		if ingredientStopwords[w] {
			return ""
		}
	}
	if isDietaryPhrase(s) {
		return ""
	}
	return s
}

func isDietaryPhrase(s string) bool {
	for _, entry := range dietaryVocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(s, kw) {
				return true
			}
		}
	}
	return false
}

// extractDietaryConstraints matches the fixed vocabulary against text,
// returning canonical restriction names in vocabulary order.
func extractDietaryConstraints(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, entry := range dietaryVocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, entry.canonical)
				break
			}
		}
	}
	return out
}

// PreferenceDelta derives the per-turn preference delta from the raw
// utterance and its extraction: dietary constraints carry over directly,
// cuisine, time bound and difficulty ceiling come from additional pattern
// matches on the utterance.
func PreferenceDelta(utterance string, ex domain.Extraction) domain.PreferenceSet {
	lower := strings.ToLower(utterance)

	delta := domain.PreferenceSet{
		DietaryRestrictions: ex.DietaryConstraints,
	}

	for _, cuisine := range knownCuisines {
		if strings.Contains(lower, cuisine) {
			delta.Cuisine = cuisine
			break
		}
	}

	for _, pattern := range timePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			if minutes, err := strconv.Atoi(m[1]); err == nil && minutes > 0 {
				delta.MaxTimeMinutes = minutes
			}
			break
		}
	}

	switch {
	case containsWord(lower, "easy"), containsWord(lower, "simple"), containsWord(lower, "beginner"):
		delta.MaxDifficulty = domain.DifficultyEasy
	case containsWord(lower, "intermediate"):
		delta.MaxDifficulty = domain.DifficultyMedium
	}

	return delta
}

func containsWord(text, word string) bool {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	}) {
		if w == word {
			return true
		}
	}
	return false
}
