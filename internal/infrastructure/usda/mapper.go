package usda

import (
	"strconv"
	"strings"

	"github.com/nutribudget/backend/internal/domain"
)

// USDA Nutrient IDs for the nutrients that drive health scoring
const (
	NutrientIDProtein   = 1003 // Protein (g)
	NutrientIDFiber     = 1079 // Fiber, total dietary (g)
	NutrientIDSugars    = 2000 // Sugars, total including NLEA (g)
	NutrientIDSugarsAlt = 1063 // Sugars, Total (g), used by some Foundation foods
	NutrientIDSodium    = 1093 // Sodium, Na (mg)
)

// MapToNutritionData converts USDA food data to our domain NutritionData model
func MapToNutritionData(usdaFood *domain.USDAFood, confidence float64) *domain.NutritionData {
	return &domain.NutritionData{
		FdcID:       strconv.Itoa(usdaFood.FdcID),
		ProductName: usdaFood.Description,
		Nutrients:   extractNutrients(usdaFood.Nutrients),
		Confidence:  confidence,
		Source:      "USDA",
	}
}

// extractNutrients picks the scoring nutrients out of a USDA nutrient list.
// Nutrients the record does not report stay nil.
func extractNutrients(usdaNutrients []domain.USDANutrient) domain.Nutrients {
	nutrients := domain.Nutrients{}

	for _, nutrient := range usdaNutrients {
		value := nutrient.Value
		if value < 0 {
			continue
		}
		switch nutrient.NutrientID {
		case NutrientIDProtein:
			nutrients.Protein = &value
		case NutrientIDFiber:
			nutrients.Fiber = &value
		case NutrientIDSugars:
			nutrients.Sugar = &value
		case NutrientIDSugarsAlt:
			if nutrients.Sugar == nil {
				nutrients.Sugar = &value
			}
		case NutrientIDSodium:
			if strings.EqualFold(nutrient.UnitName, "g") {
				value *= 1000
			}
			nutrients.Sodium = &value
		}
	}

	return nutrients
}
