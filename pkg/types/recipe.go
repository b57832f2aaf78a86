package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Ingredient summary limits.
const (
	summaryMaxIngredients = 3
	summaryMaxLen         = 30
	summaryCutLen         = 27
	summaryEllipsis       = "..."
	summaryEmpty          = "No ingredients"
)

// Recipe is a named dish with a category, an ordered ingredient list, and
// preparation text. RecipeID is assigned by NewRecipe and never changes.
type Recipe struct {
	RecipeID    string   `json:"recipe_id"`   // UUID v7, generated on creation.
	Name        string   `json:"name"`        // Display name (required, non-blank).
	Category    string   `json:"category"`    // One of Categories().
	Ingredients []string `json:"ingredients"` // Insertion order is meaningful.
	Steps       string   `json:"steps"`       // Free-form preparation text.
}

// Fields holds the mutable fields of a Recipe. It is the payload for
// NewRecipe and Store.Update.
type Fields struct {
	Name        string
	Category    string
	Ingredients []string
	Steps       string
}

// Validate checks that every field is present and the category is known.
// It returns a *ValidationError naming the first offending field.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrInvalidName}
	}
	if !ValidCategory(f.Category) {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if len(f.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Err: ErrInvalidIngredients}
	}
	for _, ing := range f.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return &ValidationError{Field: "ingredients", Err: ErrInvalidIngredients}
		}
	}
	if strings.TrimSpace(f.Steps) == "" {
		return &ValidationError{Field: "steps", Err: ErrInvalidSteps}
	}
	return nil
}

// NewRecipe validates the fields and returns a Recipe with a fresh UUID v7.
// Callers trim user input before calling; NewRecipe stores values as given.
func NewRecipe(name, category string, ingredients []string, steps string) (*Recipe, error) {
	f := Fields{Name: name, Category: category, Ingredients: ingredients, Steps: steps}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r := &Recipe{RecipeID: generateID()}
	r.apply(f)
	return r, nil
}

// generateID returns a new UUID v7, falling back to v4 if v7 generation fails.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Apply replaces the mutable fields after validating them. RecipeID is
// untouched. On error the recipe is unchanged.
func (r *Recipe) Apply(f Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r.apply(f)
	return nil
}

func (r *Recipe) apply(f Fields) {
	r.Name = f.Name
	r.Category = f.Category
	r.Ingredients = slices.Clone(f.Ingredients)
	r.Steps = f.Steps
}

// Fields returns the mutable fields of r.
func (r *Recipe) Fields() Fields {
	return Fields{
		Name:        r.Name,
		Category:    r.Category,
		Ingredients: slices.Clone(r.Ingredients),
		Steps:       r.Steps,
	}
}

// Validate checks a recipe read back from storage: a non-empty ID plus the
// same field rules as NewRecipe.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.RecipeID) == "" {
		return &ValidationError{Field: "recipe_id", Err: ErrInvalidID}
	}
	return r.Fields().Validate()
}

// Clone returns a deep copy of r.
func (r *Recipe) Clone() *Recipe {
	cp := *r
	cp.Ingredients = slices.Clone(r.Ingredients)
	return &cp
}

// ShortIngredientSummary renders at most the first three ingredients,
// truncating any longer than 30 characters to 27 plus "...", and appends
// " (+n more)" when ingredients were left out. An empty list renders as
// "No ingredients".
func (r *Recipe) ShortIngredientSummary() string {
	if len(r.Ingredients) == 0 {
		return summaryEmpty
	}

	n := min(summaryMaxIngredients, len(r.Ingredients))
	parts := make([]string, 0, n)
	for _, ing := range r.Ingredients[:n] {
		parts = append(parts, truncate(ing))
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(parts, ", "))
	if extra := len(r.Ingredients) - summaryMaxIngredients; extra > 0 {
		fmt.Fprintf(&sb, " (+%d more)", extra)
	}
	return sb.String()
}

// truncate counts runes so multi-byte ingredient names are cut on character
// boundaries.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryMaxLen {
		return s
	}
	return string(runes[:summaryCutLen]) + summaryEllipsis
}

// ParseIngredients splits one-ingredient-per-line text into a list,
// trimming each line and dropping blank ones.
func ParseIngredients(text string) []string {
	var out []string
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
