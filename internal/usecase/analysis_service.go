package usecase

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/nutribudget/backend/config"
	"github.com/nutribudget/backend/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	Scoring            ScoringConfig
	Optimizer          OptimizerConfig
	EnableDebugLogging bool
}

// AnalysisService scores a receipt, summarizes it and builds the optimized
// basket. Analyze performs no I/O and reads only the immutable catalog, so a
// single service can serve any number of concurrent requests.
type AnalysisService struct {
	scoring            *ScoringModel
	optimizer          *Optimizer
	enableDebugLogging bool
}

// AnalysisServiceConfigFrom maps the application configuration onto the
// analysis service, so every entry point scores and optimizes alike
func AnalysisServiceConfigFrom(cfg *config.Config) AnalysisServiceConfig {
	return AnalysisServiceConfig{
		Scoring: ScoringConfig{
			PriorOverrides: cfg.Scoring.Priors,
		},
		Optimizer: OptimizerConfig{
			HealthyThreshold:   cfg.Scoring.HealthyThreshold,
			SimilarPriceRatio:  cfg.Optimizer.SimilarPriceRatio,
			DefaultBudgetRatio: cfg.Optimizer.DefaultBudgetRatio,
			EnableDebugLogging: cfg.Debug(),
		},
		EnableDebugLogging: cfg.Debug(),
	}
}

// NewAnalysisService creates a new analysis service over the given catalog
func NewAnalysisService(catalog domain.CatalogSource, config AnalysisServiceConfig) *AnalysisService {
	return &AnalysisService{
		scoring:            NewScoringModel(config.Scoring),
		optimizer:          NewOptimizer(catalog, config.Optimizer),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Analyze validates and scores raw items, then returns the current and
// optimized baskets. It never returns an error: malformed input and internal
// failures are reported in a failure envelope.
func (s *AnalysisService) Analyze(rawItems []domain.RawItem, budget *float64) (response domain.AnalysisResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ANALYZE] Recovered from panic: %v", r)
			response = failure(fmt.Errorf("analysis failed: %v", r))
		}
	}()

	items, limit, err := s.prepare(rawItems, budget)
	if err != nil {
		if s.enableDebugLogging {
			log.Printf("[ANALYZE] Rejected request: %v", err)
		}
		return failure(err)
	}

	current := &domain.CurrentBasket{
		Items:         items,
		BasketSummary: Summarize(items),
	}
	optimized := s.optimizer.Optimize(items, limit)

	if s.enableDebugLogging {
		log.Printf("[ANALYZE] Current: $%s, health %d | Optimized: $%s, health %d, swaps %d",
			current.TotalCost, current.AvgHealthScore,
			optimized.Summary.TotalCost, optimized.Summary.AvgHealthScore, len(optimized.Swaps))
	}

	return domain.AnalysisResponse{
		Success:   true,
		Current:   current,
		Optimized: &optimized,
	}
}

// prepare validates the request and converts raw items into scored items
func (s *AnalysisService) prepare(rawItems []domain.RawItem, budget *float64) ([]domain.Item, *domain.Money, error) {
	if rawItems == nil {
		return nil, nil, fmt.Errorf("%w: item list is missing", domain.ErrMalformedInput)
	}

	var limit *domain.Money
	if budget != nil {
		b, err := domain.ParseAmount(*budget)
		switch {
		case err == nil && b > 0:
			limit = &b
		case *budget > domain.MaxAmount:
			return nil, nil, fmt.Errorf("%w: budget exceeds the supported maximum of %.0f", domain.ErrMalformedInput, domain.MaxAmount)
		default:
			return nil, nil, fmt.Errorf("%w: budget must be a positive amount", domain.ErrMalformedInput)
		}
	}

	items := make([]domain.Item, 0, len(rawItems))
	for i, raw := range rawItems {
		item, err := toItem(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: item %d: %v", domain.ErrMalformedInput, i+1, err)
		}
		item.HealthScore = s.scoring.Score(item)
		items = append(items, item)
	}

	return items, limit, nil
}

// toItem validates a raw item and normalizes its category
func toItem(raw domain.RawItem) (domain.Item, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return domain.Item{}, errors.New("name is required")
	}
	price, err := domain.ParseAmount(raw.Price)
	switch {
	case err == nil:
	case math.IsNaN(raw.Price) || math.IsInf(raw.Price, 0):
		return domain.Item{}, fmt.Errorf("%q has an invalid price", name)
	case raw.Price < 0:
		return domain.Item{}, fmt.Errorf("%q has a negative price", name)
	default:
		return domain.Item{}, fmt.Errorf("%q has a price above the supported maximum of %.0f", name, domain.MaxAmount)
	}
	if err := validateNutrients(raw.Nutrients); err != nil {
		return domain.Item{}, fmt.Errorf("%q: %v", name, err)
	}

	return domain.Item{
		Name:      name,
		Price:     price,
		Category:  domain.NormalizeCategory(raw.Category),
		Nutrients: copyNutrients(raw.Nutrients),
	}, nil
}

func validateNutrients(n *domain.Nutrients) error {
	if n == nil {
		return nil
	}
	fields := []struct {
		name  string
		value *float64
	}{
		{"protein", n.Protein},
		{"sugar", n.Sugar},
		{"fiber", n.Fiber},
		{"sodium", n.Sodium},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if math.IsNaN(*f.value) || math.IsInf(*f.value, 0) || *f.value < 0 {
			return fmt.Errorf("%s must be a non-negative amount", f.name)
		}
	}
	return nil
}

// copyNutrients detaches the item from the caller's request data
func copyNutrients(n *domain.Nutrients) *domain.Nutrients {
	if n.IsEmpty() {
		return nil
	}
	out := &domain.Nutrients{}
	if n.Protein != nil {
		v := *n.Protein
		out.Protein = &v
	}
	if n.Sugar != nil {
		v := *n.Sugar
		out.Sugar = &v
	}
	if n.Fiber != nil {
		v := *n.Fiber
		out.Fiber = &v
	}
	if n.Sodium != nil {
		v := *n.Sodium
		out.Sodium = &v
	}
	return out
}

func failure(err error) domain.AnalysisResponse {
	return domain.NewFailureResponse(err)
}
