package domain

import "errors"

var (
	// ErrMalformedInput is returned when the item list or budget is structurally invalid
	ErrMalformedInput = errors.New("invalid input")

	// ErrInvalidCatalog is returned when catalog reference data fails validation
	ErrInvalidCatalog = errors.New("invalid catalog data")

	// ErrProductNotFound is returned when a product cannot be found in USDA database
	ErrProductNotFound = errors.New("product not found in USDA database")

	// ErrLowConfidence is returned when the match confidence is below the threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")
)
