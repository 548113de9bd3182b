package usecase

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nutribudget/backend/internal/domain"
)

// Reasons attached to optimized list entries
const (
	ReasonAlreadyHealthy = "kept: already a healthy choice"
	ReasonNoAlternative  = "no healthier alternative found"
	ReasonOverBudget     = "kept: healthier swap exceeds budget"
)

// OptimizerConfig holds configuration for the substitution optimizer
type OptimizerConfig struct {
	// HealthyThreshold is the score at which an item without a better
	// alternative is reported as already healthy
	HealthyThreshold int
	// SimilarPriceRatio is the relative price difference still described as "similar price"
	SimilarPriceRatio float64
	// DefaultBudgetRatio, when > 0, caps the optimized basket at this share of
	// the current total if the caller supplies no budget
	DefaultBudgetRatio float64
	EnableDebugLogging bool
}

// Optimizer selects healthier per-item replacements from the catalog and
// trims them to a budget. It holds no per-call state and is safe for
// concurrent use.
type Optimizer struct {
	catalog            domain.CatalogSource
	healthyThreshold   int
	similarPriceRatio  float64
	defaultBudgetRatio float64
	enableDebugLogging bool
}

// NewOptimizer creates an optimizer over a read-only catalog
func NewOptimizer(catalog domain.CatalogSource, config OptimizerConfig) *Optimizer {
	threshold := config.HealthyThreshold
	if threshold <= 0 {
		threshold = 70
	}

	similar := config.SimilarPriceRatio
	if similar <= 0 {
		similar = 0.10
	}

	ratio := config.DefaultBudgetRatio
	if ratio < 0 {
		ratio = 0
	}

	return &Optimizer{
		catalog:            catalog,
		healthyThreshold:   threshold,
		similarPriceRatio:  similar,
		defaultBudgetRatio: ratio,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// proposal is a tentative replacement for the item at index
type proposal struct {
	index       int
	replacement domain.CatalogEntry
	gain        int
	increase    domain.Money // replacement price minus original price
	revoked     bool
}

// Optimize proposes the best catalog replacement for every item, then, if a
// budget applies, revokes the least cost-efficient price increases until the
// basket fits. Items are never dropped or duplicated: the optimized list has
// one entry per input item, in input order.
func (o *Optimizer) Optimize(items []domain.Item, budget *domain.Money) domain.OptimizationResult {
	proposals := make([]*proposal, len(items))
	tentativeTotal := domain.Money(0)
	currentTotal := domain.Money(0)

	for i, item := range items {
		currentTotal += item.Price
		tentativeTotal += item.Price

		best, ok := o.bestCandidate(item)
		if !ok {
			continue
		}
		p := &proposal{
			index:       i,
			replacement: best,
			gain:        best.HealthScore - item.HealthScore,
			increase:    best.Price - item.Price,
		}
		proposals[i] = p
		tentativeTotal += p.increase

		if o.enableDebugLogging {
			log.Printf("[OPTIMIZE] %q (%d) -> %q (%d), price delta %s",
				item.Name, item.HealthScore, best.ProductName, best.HealthScore, p.increase)
		}
	}

	limit := budget
	if limit == nil && o.defaultBudgetRatio > 0 {
		derived := domain.MoneyFromFloat(currentTotal.Float() * o.defaultBudgetRatio)
		limit = &derived
	}
	if limit != nil && tentativeTotal > *limit {
		tentativeTotal = revokeOverBudget(proposals, tentativeTotal, *limit)
		if o.enableDebugLogging {
			log.Printf("[OPTIMIZE] Budget %s applied, optimized total %s", *limit, tentativeTotal)
		}
	}

	return o.assemble(items, proposals, currentTotal)
}

// bestCandidate returns the top-ranked strictly healthier candidate for item
func (o *Optimizer) bestCandidate(item domain.Item) (domain.CatalogEntry, bool) {
	var best domain.CatalogEntry
	found := false

	for _, candidate := range o.catalog.Lookup(item.Category) {
		if candidate.HealthScore <= item.HealthScore {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(candidate.ProductName), strings.TrimSpace(item.Name)) {
			continue
		}
		if !found || ranksBefore(candidate, best, item) {
			best = candidate
			found = true
		}
	}

	return best, found
}

// ranksBefore orders candidates by (cheaper ? 0 : 1, -gain, price, name) ascending
func ranksBefore(a, b domain.CatalogEntry, item domain.Item) bool {
	aCheaper := a.Price < item.Price
	bCheaper := b.Price < item.Price
	if aCheaper != bCheaper {
		return aCheaper
	}
	if a.HealthScore != b.HealthScore {
		return a.HealthScore > b.HealthScore
	}
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return strings.ToLower(a.ProductName) < strings.ToLower(b.ProductName)
}

// revokeOverBudget reverts price-increasing proposals, worst cost-efficiency
// first, until total fits within limit or nothing revocable remains. Proposals
// that do not raise the price are kept because reverting them cannot lower
// the total. Returns the new total.
func revokeOverBudget(proposals []*proposal, total, limit domain.Money) domain.Money {
	var revocable []*proposal
	for _, p := range proposals {
		if p != nil && p.increase > 0 {
			revocable = append(revocable, p)
		}
	}

	sort.SliceStable(revocable, func(i, j int) bool {
		a, b := revocable[i], revocable[j]
		// gain/increase ascending, compared without division
		left := int64(a.gain) * int64(b.increase)
		right := int64(b.gain) * int64(a.increase)
		if left != right {
			return left < right
		}
		if a.increase != b.increase {
			return a.increase > b.increase
		}
		return a.index < b.index
	})

	for _, p := range revocable {
		if total <= limit {
			break
		}
		p.revoked = true
		total -= p.increase
	}
	return total
}

// assemble builds the optimized list, swap list and summary in input order
func (o *Optimizer) assemble(items []domain.Item, proposals []*proposal, currentTotal domain.Money) domain.OptimizationResult {
	result := domain.OptimizationResult{
		OptimizedList: make([]domain.OptimizedItem, 0, len(items)),
		Swaps:         make([]domain.Swap, 0),
	}

	for i, item := range items {
		p := proposals[i]

		if p == nil || p.revoked {
			reason := ReasonNoAlternative
			switch {
			case p != nil:
				reason = ReasonOverBudget
			case item.HealthScore >= o.healthyThreshold:
				reason = ReasonAlreadyHealthy
			}
			result.OptimizedList = append(result.OptimizedList, domain.OptimizedItem{
				Name:        item.Name,
				Price:       item.Price,
				Category:    item.Category,
				HealthScore: item.HealthScore,
				Reason:      reason,
			})
			continue
		}

		reason := o.replacementReason(item, p)
		result.OptimizedList = append(result.OptimizedList, domain.OptimizedItem{
			Name:         p.replacement.ProductName,
			Price:        p.replacement.Price,
			Category:     p.replacement.Category,
			HealthScore:  p.replacement.HealthScore,
			Reason:       reason,
			Replaced:     true,
			OriginalName: item.Name,
		})
		result.Swaps = append(result.Swaps, domain.Swap{
			Original:    item,
			Replacement: p.replacement,
			Savings:     item.Price - p.replacement.Price,
			Reason:      reason,
		})
	}

	summary := summarizeOptimized(result.OptimizedList)
	result.Summary = domain.OptimizedSummary{
		BasketSummary: summary,
		MoneySaved:    currentTotal - summary.TotalCost,
	}
	return result
}

// replacementReason describes a replacement's health gain and price effect
func (o *Optimizer) replacementReason(item domain.Item, p *proposal) string {
	priceNote := "costs more"
	switch {
	case withinRatio(item.Price, p.replacement.Price, o.similarPriceRatio):
		priceNote = "similar price"
	case p.increase < 0:
		priceNote = "cheaper"
	}
	return fmt.Sprintf("replaced: healthier choice (+%d score), %s", p.gain, priceNote)
}

// withinRatio reports whether b differs from a by at most ratio of a
func withinRatio(a, b domain.Money, ratio float64) bool {
	diff := b - a
	if diff < 0 {
		diff = -diff
	}
	if a == 0 {
		return diff == 0
	}
	return float64(diff) <= float64(a)*ratio
}
