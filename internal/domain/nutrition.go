package domain

import "time"

// NutritionData is the nutrient profile resolved for a receipt item name
type NutritionData struct {
	FdcID       string    `json:"fdcId"`
	ProductName string    `json:"productName"`
	Nutrients   Nutrients `json:"nutrients"`
	Confidence  float64   `json:"confidence"` // Match confidence score 0-100
	Source      string    `json:"source"`     // "USDA" or "Cache"
	CachedAt    time.Time `json:"cachedAt,omitempty"`
}

// SearchRequest represents a nutrient lookup for a single receipt line
type SearchRequest struct {
	ProductName string `json:"productName"`
	Brand       string `json:"brand,omitempty"`
}

// MatchResult represents the result of a product matching operation
type MatchResult struct {
	FdcID         string   `json:"fdcId"`
	Description   string   `json:"description"`
	MatchScore    float64  `json:"matchScore"`
	MatchedTokens []string `json:"matchedTokens,omitempty"`
}

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	BrandOwner  string         `json:"brandOwner,omitempty"`
	FoodClass   string         `json:"foodClass,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data
type USDANutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
