package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nutribudget/backend/internal/domain"
	"github.com/nutribudget/backend/internal/infrastructure/usda"
)

// EnrichmentServiceConfig holds configuration for the enrichment service
type EnrichmentServiceConfig struct {
	CacheTTL               time.Duration
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
	Workers                int
	LookupTimeout          time.Duration
	EnableDebugLogging     bool
}

// EnrichmentService fills in missing nutrient profiles of receipt items from
// USDA FoodData Central. It runs before analysis and never fails a request:
// items it cannot resolve are passed through untouched.
type EnrichmentService struct {
	cache              domain.CacheRepository
	usdaClient         domain.USDAClient
	matchingService    *MatchingService
	preprocessor       *QueryPreprocessor
	cacheTTL           time.Duration
	workers            int
	lookupTimeout      time.Duration
	enableDebugLogging bool
}

// NewEnrichmentService creates a new enrichment service with dependencies
func NewEnrichmentService(
	cache domain.CacheRepository,
	usdaClient domain.USDAClient,
	config EnrichmentServiceConfig,
) *EnrichmentService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // Default 30 days
	}

	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}

	timeout := config.LookupTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &EnrichmentService{
		cache:      cache,
		usdaClient: usdaClient,
		matchingService: NewMatchingService(MatchConfig{
			MinConfidenceThreshold: config.MinConfidenceThreshold,
			EnableFuzzyMatching:    config.EnableFuzzyMatching,
			EnableDebugLogging:     config.EnableDebugLogging,
		}),
		preprocessor:       NewQueryPreprocessor(config.EnableDebugLogging),
		cacheTTL:           cacheTTL,
		workers:            workers,
		lookupTimeout:      timeout,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Enrich returns a copy of items in which every item without nutrients has
// been given the nutrient profile of its best USDA match, when one is found
// with enough confidence. Lookups run on a bounded number of workers.
func (s *EnrichmentService) Enrich(ctx context.Context, items []domain.RawItem) []domain.RawItem {
	if items == nil {
		return nil
	}

	out := make([]domain.RawItem, len(items))
	copy(out, items)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				data, err := s.LookupNutrients(ctx, out[i].Name)
				if err != nil {
					log.Printf("[ENRICH] Skipping %q: %v", out[i].Name, err)
					continue
				}
				nutrients := data.Nutrients
				out[i].Nutrients = &nutrients
			}
		}()
	}

	for i := range out {
		if !out[i].Nutrients.IsEmpty() || strings.TrimSpace(out[i].Name) == "" {
			continue
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return out
}

// LookupNutrients resolves the nutrient profile of a receipt item name.
// Flow: check cache -> search USDA -> match best result -> cache -> return
func (s *EnrichmentService) LookupNutrients(ctx context.Context, productName string) (*domain.NutritionData, error) {
	key := s.preprocessor.CacheKey(productName)
	if key == "" {
		return nil, domain.ErrMalformedInput
	}
	cacheKey := "nutrients:" + key

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		cached.Source = "Cache"
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	foods, err := s.search(ctx, productName)
	if err != nil {
		return nil, err
	}

	request := &domain.SearchRequest{ProductName: s.preprocessor.PreprocessQuery(productName)}
	match, err := s.matchingService.FindBestMatch(ctx, request, foods)
	if err != nil {
		// Low confidence nutrients would be worse than none for scoring
		return nil, err
	}

	food := findFood(foods, match.FdcID)
	if food == nil {
		return nil, domain.ErrProductNotFound
	}

	// Search results may be abridged; fetch the full record if nutrients are missing
	if len(food.Nutrients) == 0 {
		details, err := s.usdaClient.GetFoodDetails(ctx, match.FdcID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
		}
		food = details
	}

	data := usda.MapToNutritionData(food, match.MatchScore)
	if err := s.setInCache(ctx, cacheKey, data); err != nil {
		log.Printf("[ENRICH] Failed to cache %q: %v", cacheKey, err)
	}

	if s.enableDebugLogging {
		log.Printf("[ENRICH] %q -> %q (confidence %.1f)", productName, data.ProductName, data.Confidence)
	}
	return data, nil
}

// search queries USDA with the cleaned name and falls back to the two most
// important food keywords when the full query finds nothing
func (s *EnrichmentService) search(ctx context.Context, productName string) ([]domain.USDAFood, error) {
	query := s.preprocessor.PreprocessQuery(productName)
	result, err := s.usdaClient.SearchFoods(ctx, query)
	if err == nil && result != nil && len(result.Foods) > 0 {
		return result.Foods, nil
	}
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}

	keywords := s.preprocessor.ExtractFoodKeywords(productName)
	if len(keywords) > 2 {
		keywords = keywords[:2]
	}
	fallback := strings.Join(keywords, " ")
	if fallback == "" || fallback == query {
		return nil, domain.ErrProductNotFound
	}

	result, err = s.usdaClient.SearchFoods(ctx, fallback)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	if result == nil || len(result.Foods) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return result.Foods, nil
}

func findFood(foods []domain.USDAFood, fdcID string) *domain.USDAFood {
	for i := range foods {
		if strconv.Itoa(foods[i].FdcID) == fdcID {
			return &foods[i]
		}
	}
	return nil
}

// getFromCache retrieves nutrient data from cache
func (s *EnrichmentService) getFromCache(ctx context.Context, key string) (*domain.NutritionData, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *domain.NutritionData:
		copied := *v
		return &copied, nil
	case map[string]interface{}:
		return mapToNutritionData(v), nil
	default:
		return nil, domain.ErrCacheMiss
	}
}

// setInCache stores nutrient data in cache
func (s *EnrichmentService) setInCache(ctx context.Context, key string, data *domain.NutritionData) error {
	data.CachedAt = time.Now()
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

// mapToNutritionData converts a map (from the JSON round-tripping cache) to NutritionData
func mapToNutritionData(data map[string]interface{}) *domain.NutritionData {
	result := &domain.NutritionData{}

	if v, ok := data["fdcId"].(string); ok {
		result.FdcID = v
	}
	if v, ok := data["productName"].(string); ok {
		result.ProductName = v
	}
	if v, ok := data["confidence"].(float64); ok {
		result.Confidence = v
	}
	if v, ok := data["source"].(string); ok {
		result.Source = v
	}

	if nutrients, ok := data["nutrients"].(map[string]interface{}); ok {
		result.Nutrients.Protein = floatField(nutrients, "protein")
		result.Nutrients.Sugar = floatField(nutrients, "sugar")
		result.Nutrients.Fiber = floatField(nutrients, "fiber")
		result.Nutrients.Sodium = floatField(nutrients, "sodium")
	}

	return result
}

func floatField(m map[string]interface{}, key string) *float64 {
	v, ok := m[key].(float64)
	if !ok {
		return nil
	}
	return &v
}
