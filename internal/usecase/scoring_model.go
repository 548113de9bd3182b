package usecase

import (
	"math"
	"strings"

	"github.com/nutribudget/backend/internal/domain"
)

// ScoringVersion identifies the prior table and nutrient weights below.
// Bump it whenever either changes so stored results can be told apart.
const ScoringVersion = "2024-06"

// neutralPrior is used for uncategorized items
const neutralPrior = 50.0

// defaultPriors is the base score of each category before nutrient adjustments
var defaultPriors = map[string]float64{
	domain.CategoryProduce:       85,
	domain.CategoryProtein:       70,
	domain.CategoryDairy:         60,
	domain.CategoryGrains:        60,
	domain.CategoryFrozen:        45,
	domain.CategoryBeverages:     40,
	domain.CategorySnacks:        30,
	domain.CategoryConfectionery: 20,
	domain.Uncategorized:         neutralPrior,
}

// Nutrient weights and caps. Every cap is small enough that a single nutrient
// cannot move any prior outside [0,100].
const (
	proteinPerGram = 0.75
	proteinCap     = 15.0
	fiberPerGram   = 2.0
	fiberCap       = 15.0
	sugarPerGram   = 0.5
	sugarCap       = 20.0
	sodiumPerMg    = 1.0 / 40.0
	sodiumCap      = 15.0
)

// ScoringConfig holds configuration for the scoring model
type ScoringConfig struct {
	// PriorOverrides replaces individual category priors; values are clamped to [0,100]
	PriorOverrides map[string]float64
}

// ScoringModel maps an item's category and nutrient profile to a 0-100 health score.
// It is immutable after construction and safe for concurrent use.
type ScoringModel struct {
	priors map[string]float64
}

// NewScoringModel creates a scoring model with the default prior table and any overrides
func NewScoringModel(config ScoringConfig) *ScoringModel {
	priors := make(map[string]float64, len(defaultPriors))
	for category, prior := range defaultPriors {
		priors[category] = prior
	}
	for raw, prior := range config.PriorOverrides {
		category := domain.NormalizeCategory(raw)
		if category == domain.Uncategorized && strings.ToLower(strings.TrimSpace(raw)) != domain.Uncategorized {
			continue
		}
		priors[category] = clamp(prior, 0, 100)
	}

	return &ScoringModel{priors: priors}
}

// Prior returns the base score of a normalized category
func (m *ScoringModel) Prior(category string) float64 {
	if prior, ok := m.priors[category]; ok {
		return prior
	}
	return neutralPrior
}

// Score computes the health score of an item from its category and nutrients
func (m *ScoringModel) Score(item domain.Item) int {
	score := m.Prior(item.Category) + nutrientAdjustment(item.Nutrients)
	return int(math.Round(clamp(score, 0, 100)))
}

// nutrientAdjustment sums the bounded contribution of each known nutrient
func nutrientAdjustment(n *domain.Nutrients) float64 {
	if n == nil {
		return 0
	}

	var adjustment float64
	if n.Protein != nil {
		adjustment += math.Min(*n.Protein*proteinPerGram, proteinCap)
	}
	if n.Fiber != nil {
		adjustment += math.Min(*n.Fiber*fiberPerGram, fiberCap)
	}
	if n.Sugar != nil {
		adjustment -= math.Min(*n.Sugar*sugarPerGram, sugarCap)
	}
	if n.Sodium != nil {
		adjustment -= math.Min(*n.Sodium*sodiumPerMg, sodiumCap)
	}
	return adjustment
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
