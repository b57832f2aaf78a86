package types

import "slices"

// Recipe categories. The set is fixed; a recipe carries exactly one.
const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategoryDessert   = "Dessert"
	CategorySnack     = "Snack"
	CategoryBeverage  = "Beverage"
	CategoryAppetizer = "Appetizer"
)

// Selector sentinels accepted by the filter in addition to the categories.
const (
	SelectorAll       = "All"
	SelectorFavorites = "Favorites"
)

// categories is the fixed category set in display order.
var categories = []string{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategoryDessert,
	CategorySnack,
	CategoryBeverage,
	CategoryAppetizer,
}

// Categories returns the fixed category set in display order.
func Categories() []string {
	return slices.Clone(categories)
}

// ValidCategory reports whether c is one of the fixed categories.
// The comparison is exact and case-sensitive.
func ValidCategory(c string) bool {
	return slices.Contains(categories, c)
}

// Selectors returns every value ParseSelector accepts: All, the categories,
// then Favorites.
func Selectors() []string {
	out := make([]string, 0, len(categories)+2)
	out = append(out, SelectorAll)
	out = append(out, categories...)
	return append(out, SelectorFavorites)
}

// ParseSelector validates a category selector. The empty string selects All.
func ParseSelector(s string) (string, error) {
	switch {
	case s == "":
		return SelectorAll, nil
	case s == SelectorAll, s == SelectorFavorites, ValidCategory(s):
		return s, nil
	default:
		return "", &ValidationError{Field: "category", Err: ErrInvalidSelector}
	}
}
