package domain

import (
	"encoding/json"
	"errors"
)

// Swap is an accepted replacement of one original item with a catalog product
type Swap struct {
	Original    Item
	Replacement CatalogEntry
	// Savings is positive when the replacement is cheaper, negative when it costs more
	Savings Money
	Reason  string
}

// ScoreGain returns how many health points the swap adds
func (s Swap) ScoreGain() int {
	return s.Replacement.HealthScore - s.Original.HealthScore
}

type swapJSON struct {
	Original               string `json:"original"`
	OriginalPrice          Money  `json:"originalPrice"`
	OriginalHealthScore    int    `json:"originalHealthScore"`
	Replacement            string `json:"replacement"`
	ReplacementPrice       Money  `json:"replacementPrice"`
	ReplacementHealthScore int    `json:"replacementHealthScore"`
	Category               string `json:"category"`
	Reason                 string `json:"reason"`
	Savings                Money  `json:"savings"`
}

// MarshalJSON flattens the swap into the shape presentation clients consume
func (s Swap) MarshalJSON() ([]byte, error) {
	return json.Marshal(swapJSON{
		Original:               s.Original.Name,
		OriginalPrice:          s.Original.Price,
		OriginalHealthScore:    s.Original.HealthScore,
		Replacement:            s.Replacement.ProductName,
		ReplacementPrice:       s.Replacement.Price,
		ReplacementHealthScore: s.Replacement.HealthScore,
		Category:               s.Replacement.Category,
		Reason:                 s.Reason,
		Savings:                s.Savings,
	})
}

// OptimizedItem is one line of the optimized basket
type OptimizedItem struct {
	Name         string `json:"name"`
	Price        Money  `json:"price"`
	Category     string `json:"category"`
	HealthScore  int    `json:"healthScore"`
	Reason       string `json:"reason"`
	Replaced     bool   `json:"replaced"`
	OriginalName string `json:"originalName,omitempty"`
}

// OptimizedSummary is the optimized basket aggregate plus savings against the current basket
type OptimizedSummary struct {
	BasketSummary
	MoneySaved Money `json:"moneySaved"`
}

// OptimizationResult is the outcome of the substitution optimizer.
// OptimizedList always has one entry per input item, in input order.
type OptimizationResult struct {
	OptimizedList []OptimizedItem  `json:"optimizedList"`
	Swaps         []Swap           `json:"swaps"`
	Summary       OptimizedSummary `json:"summary"`
}

// AnalysisRequest is the body accepted by the analysis endpoint and CLI
type AnalysisRequest struct {
	Items  []RawItem `json:"items"`
	Budget *float64  `json:"budget,omitempty"`
}

// AnalysisResponse is the envelope returned to presentation clients
type AnalysisResponse struct {
	Success   bool                `json:"success"`
	Current   *CurrentBasket      `json:"current,omitempty"`
	Optimized *OptimizationResult `json:"optimized,omitempty"`
	Error     string              `json:"error,omitempty"`

	err error
}

// NewFailureResponse builds the failure envelope for err
func NewFailureResponse(err error) AnalysisResponse {
	return AnalysisResponse{
		Success: false,
		Error:   err.Error(),
		err:     err,
	}
}

// Err returns the error behind a failed response, or nil on success.
// Use errors.Is to tell malformed input from internal failures.
func (r AnalysisResponse) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return errors.New(r.Error)
}
