package domain

import (
	"regexp"
	"strings"
)

// Closed category set. Every item and catalog entry carries one of these or Uncategorized.
const (
	CategoryProduce       = "produce"
	CategoryProtein       = "protein"
	CategoryDairy         = "dairy"
	CategoryGrains        = "grains"
	CategoryFrozen        = "frozen"
	CategoryBeverages     = "beverages"
	CategorySnacks        = "snacks"
	CategoryConfectionery = "confectionery"

	Uncategorized = "uncategorized"
)

var knownCategories = map[string]bool{
	CategoryProduce:       true,
	CategoryProtein:       true,
	CategoryDairy:         true,
	CategoryGrains:        true,
	CategoryFrozen:        true,
	CategoryBeverages:     true,
	CategorySnacks:        true,
	CategoryConfectionery: true,
}

// categoryAliases maps common receipt and extraction labels onto the closed set
var categoryAliases = map[string]string{
	// Produce
	"fruit": CategoryProduce, "fruits": CategoryProduce, "vegetable": CategoryProduce,
	"vegetables": CategoryProduce, "veg": CategoryProduce, "veggies": CategoryProduce,
	"fresh produce": CategoryProduce,
	// Protein
	"meat": CategoryProtein, "meats": CategoryProtein, "poultry": CategoryProtein,
	"seafood": CategoryProtein, "fish": CategoryProtein, "eggs": CategoryProtein,
	"deli": CategoryProtein, "legumes": CategoryProtein,
	// Dairy
	"milk": CategoryDairy, "cheese": CategoryDairy, "yogurt": CategoryDairy,
	"dairy and eggs": CategoryDairy,
	// Grains
	"grain": CategoryGrains, "bread": CategoryGrains, "bakery": CategoryGrains,
	"cereal": CategoryGrains, "cereals": CategoryGrains, "pasta": CategoryGrains,
	"rice": CategoryGrains,
	// Frozen
	"frozen foods": CategoryFrozen, "frozen food": CategoryFrozen,
	// Beverages
	"beverage": CategoryBeverages, "drink": CategoryBeverages, "drinks": CategoryBeverages,
	"soda": CategoryBeverages, "juice": CategoryBeverages,
	// Snacks
	"snack": CategorySnacks, "chips": CategorySnacks, "crackers": CategorySnacks,
	// Confectionery
	"candy": CategoryConfectionery, "sweets": CategoryConfectionery,
	"dessert": CategoryConfectionery, "desserts": CategoryConfectionery,
	"chocolate": CategoryConfectionery,
}

var categorySeparatorRegex = regexp.MustCompile(`[\s_\-/]+`)

// NormalizeCategory maps a free-form category label onto the closed category
// set, returning Uncategorized when it cannot be mapped.
func NormalizeCategory(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "&", " and ")
	key = strings.TrimSpace(categorySeparatorRegex.ReplaceAllString(key, " "))

	if knownCategories[key] {
		return key
	}
	if alias, ok := categoryAliases[key]; ok {
		return alias
	}
	return Uncategorized
}

// IsKnownCategory reports whether category is a member of the closed set
func IsKnownCategory(category string) bool {
	return knownCategories[category]
}

// KnownCategories returns the closed category set in a stable order
func KnownCategories() []string {
	return []string{
		CategoryProduce, CategoryProtein, CategoryDairy, CategoryGrains,
		CategoryFrozen, CategoryBeverages, CategorySnacks, CategoryConfectionery,
	}
}
