package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nutribudget/backend/internal/domain"
	"github.com/nutribudget/backend/internal/usecase"
)

// ServiceName and Version are reported by the health endpoints
const (
	ServiceName = "nutribudget-backend"
	Version     = "1.0.0"
)

// Analyzer runs the scoring and substitution pipeline
type Analyzer interface {
	Analyze(items []domain.RawItem, budget *float64) domain.AnalysisResponse
}

// Enricher fills in missing nutrient profiles before analysis
type Enricher interface {
	Enrich(ctx context.Context, items []domain.RawItem) []domain.RawItem
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer Analyzer
	catalog  domain.CatalogSource
	enricher Enricher
}

// NewHandler creates a new HTTP handler. enricher may be nil, in which case
// enrichment requests are ignored.
func NewHandler(analyzer Analyzer, catalog domain.CatalogSource, enricher Enricher) *Handler {
	return &Handler{
		analyzer: analyzer,
		catalog:  catalog,
		enricher: enricher,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        ServiceName,
		"version":        Version,
		"catalogVersion": h.catalog.Version(),
		"scoringVersion": usecase.ScoringVersion,
	})
}

// Root reports that the service is running
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "NutriBudget API is running",
	})
}

// Analyze handles basket analysis requests
// POST /api/v1/analyze[?enrich=true]
func (h *Handler) Analyze(c *gin.Context) {
	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewFailureResponse(fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)))
		return
	}

	items := req.Items
	if h.wantsEnrichment(c) {
		items = h.enricher.Enrich(c.Request.Context(), items)
	}

	response := h.analyzer.Analyze(items, req.Budget)
	if !response.Success {
		status := http.StatusInternalServerError
		if errors.Is(response.Err(), domain.ErrMalformedInput) {
			status = http.StatusBadRequest
		}
		log.Printf("[HTTP] Analysis failed (%d): %s", status, response.Error)
		c.JSON(status, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) wantsEnrichment(c *gin.Context) bool {
	if h.enricher == nil {
		return false
	}
	enrich, err := strconv.ParseBool(c.DefaultQuery("enrich", "false"))
	return err == nil && enrich
}

type categorySummary struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ListCatalog lists the catalog categories and their sizes
// GET /api/v1/catalog
func (h *Handler) ListCatalog(c *gin.Context) {
	categories := h.catalog.Categories()
	summaries := make([]categorySummary, 0, len(categories))
	for _, category := range categories {
		summaries = append(summaries, categorySummary{
			Category: category,
			Count:    len(h.catalog.Lookup(category)),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"version":    h.catalog.Version(),
		"categories": summaries,
	})
}

// GetCatalogCategory returns the ranked candidates of one category.
// Unknown categories are not an error and yield an empty list.
// GET /api/v1/catalog/:category
func (h *Handler) GetCatalogCategory(c *gin.Context) {
	category := domain.NormalizeCategory(c.Param("category"))

	entries := h.catalog.Lookup(category)
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"entries":  entries,
	})
}
