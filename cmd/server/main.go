package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nutribudget/backend/config"
	httpDelivery "github.com/nutribudget/backend/internal/delivery/http"
	"github.com/nutribudget/backend/internal/infrastructure/cache"
	"github.com/nutribudget/backend/internal/infrastructure/catalog"
	"github.com/nutribudget/backend/internal/infrastructure/usda"
	"github.com/nutribudget/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NutriBudget Backend v%s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// The catalog is loaded once and shared read-only by every request
	cat, err := catalog.LoadOrDefault(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	source := cfg.Catalog.Path
	if source == "" {
		source = "embedded"
	}
	log.Printf("Catalog: %s (version %s, %d products in %d categories)",
		source, cat.Version(), cat.Len(), len(cat.Categories()))

	analysisService := usecase.NewAnalysisService(cat, usecase.AnalysisServiceConfigFrom(cfg))
	log.Printf("Scoring version: %s, healthy threshold: %d", usecase.ScoringVersion, cfg.Scoring.HealthyThreshold)

	var enricher httpDelivery.Enricher
	if cfg.Enrichment.Enabled {
		enrichmentService, closeCache := newEnrichmentService(cfg)
		defer closeCache()
		enricher = enrichmentService
	} else {
		log.Printf("Nutrient enrichment disabled")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService, cat, enricher)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newEnrichmentService wires the cache and USDA client behind the enrichment service
func newEnrichmentService(cfg *config.Config) (*usecase.EnrichmentService, func()) {
	if cfg.Cache.Type == "redis" {
		log.Printf("WARNING: redis cache is not available in this build, falling back to memory")
	}
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache: memory (TTL %s)", cfg.Cache.TTL)

	usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, usda.WithRequestsPerHour(cfg.RateLimit.USDA))

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" || cfg.Debug() {
		usdaClient.SetDebug(true)
		log.Printf("USDA client debug mode enabled")
	}
	log.Printf("USDA API configured: %s (key: %s...)", cfg.USDA.BaseURL, maskKey(cfg.USDA.APIKey))

	service := usecase.NewEnrichmentService(memoryCache, usdaClient, usecase.EnrichmentServiceConfig{
		CacheTTL:               cfg.Cache.TTL,
		MinConfidenceThreshold: cfg.Enrichment.MinConfidence,
		EnableFuzzyMatching:    cfg.Enrichment.FuzzyMatching,
		Workers:                cfg.Enrichment.Workers,
		LookupTimeout:          cfg.Enrichment.Timeout,
		EnableDebugLogging:     cfg.Debug(),
	})

	log.Printf("Enrichment: workers=%d, confidence=%.0f%%, fuzzy=%v",
		cfg.Enrichment.Workers, cfg.Enrichment.MinConfidence, cfg.Enrichment.FuzzyMatching)

	return service, memoryCache.Close
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4]
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
