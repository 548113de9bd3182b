package usecase

import (
	"math"

	"github.com/nutribudget/backend/internal/domain"
)

// Summarize aggregates a list of scored items. Costs are summed exactly in
// cents; the average health score is the unweighted mean rounded to the
// nearest integer. An empty list yields the zero summary.
func Summarize(items []domain.Item) domain.BasketSummary {
	return summarize(len(items), func(i int) (domain.Money, int) {
		return items[i].Price, items[i].HealthScore
	})
}

// summarizeOptimized is Summarize over the optimized list
func summarizeOptimized(items []domain.OptimizedItem) domain.BasketSummary {
	return summarize(len(items), func(i int) (domain.Money, int) {
		return items[i].Price, items[i].HealthScore
	})
}

// summarize aggregates n lines whose price and score are given by line
func summarize(n int, line func(i int) (domain.Money, int)) domain.BasketSummary {
	if n == 0 {
		return domain.BasketSummary{}
	}

	var total domain.Money
	scoreSum := 0
	for i := 0; i < n; i++ {
		price, score := line(i)
		total += price
		scoreSum += score
	}

	return domain.BasketSummary{
		TotalCost:      total,
		AvgHealthScore: int(math.Round(float64(scoreSum) / float64(n))),
		ItemCount:      n,
	}
}
