package usecase

import (
	"testing"

	"github.com/nutribudget/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *domain.Catalog {
	return domain.NewCatalog("test", []domain.CatalogEntry{
		{Category: domain.CategoryBeverages, ProductName: "Sparkling Water", Price: 180, HealthScore: 80},
		{Category: domain.CategorySnacks, ProductName: "Raw Almonds", Price: 599, HealthScore: 82},
		{Category: domain.CategorySnacks, ProductName: "Hummus", Price: 349, HealthScore: 72},
		{Category: domain.CategorySnacks, ProductName: "Rice Cakes", Price: 229, HealthScore: 65},
		{Category: domain.CategoryDairy, ProductName: "Skim Milk", Price: 299, HealthScore: 78},
		{Category: domain.CategoryGrains, ProductName: "Steel-Cut Oats", Price: 300, HealthScore: 80},
		{Category: domain.CategoryFrozen, ProductName: "Frozen Vegetables", Price: 200, HealthScore: 60},
	})
}

func money(m domain.Money) *domain.Money { return &m }

func TestOptimizer_SodaScenario(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{{Name: "Soda", Price: 250, Category: domain.CategoryBeverages, HealthScore: 21}}

	result := optimizer.Optimize(items, nil)

	require.Len(t, result.Swaps, 1)
	swap := result.Swaps[0]
	assert.Equal(t, "Sparkling Water", swap.Replacement.ProductName)
	assert.Equal(t, domain.Money(70), swap.Savings)
	assert.Equal(t, 59, swap.ScoreGain())
	assert.Equal(t, "replaced: healthier choice (+59 score), cheaper", swap.Reason)

	require.Len(t, result.OptimizedList, 1)
	assert.Equal(t, domain.OptimizedItem{
		Name:         "Sparkling Water",
		Price:        180,
		Category:     domain.CategoryBeverages,
		HealthScore:  80,
		Reason:       swap.Reason,
		Replaced:     true,
		OriginalName: "Soda",
	}, result.OptimizedList[0])

	assert.Equal(t, domain.OptimizedSummary{
		BasketSummary: domain.BasketSummary{TotalCost: 180, AvgHealthScore: 80, ItemCount: 1},
		MoneySaved:    70,
	}, result.Summary)
}

func TestOptimizer_CandidateSelection(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})

	tests := []struct {
		name        string
		item        domain.Item
		wantName    string
		wantReason  string
		wantReplace bool
	}{
		{
			name:        "cheaper candidate beats larger gain",
			item:        domain.Item{Name: "Chips", Price: 300, Category: domain.CategorySnacks, HealthScore: 30},
			wantName:    "Rice Cakes",
			wantReason:  "replaced: healthier choice (+35 score), cheaper",
			wantReplace: true,
		},
		{
			name:        "largest gain when nothing is cheaper",
			item:        domain.Item{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
			wantName:    "Raw Almonds",
			wantReason:  "replaced: healthier choice (+52 score), costs more",
			wantReplace: true,
		},
		{
			name:        "similar price within ten percent",
			item:        domain.Item{Name: "Whole Milk", Price: 290, Category: domain.CategoryDairy, HealthScore: 60},
			wantName:    "Skim Milk",
			wantReason:  "replaced: healthier choice (+18 score), similar price",
			wantReplace: true,
		},
		{
			name:        "same product is never its own replacement",
			item:        domain.Item{Name: "hummus", Price: 349, Category: domain.CategorySnacks, HealthScore: 40},
			wantName:    "Rice Cakes",
			wantReason:  "replaced: healthier choice (+25 score), cheaper",
			wantReplace: true,
		},
		{
			name:       "equal score is not an improvement",
			item:       domain.Item{Name: "Seltzer", Price: 150, Category: domain.CategoryBeverages, HealthScore: 80},
			wantName:   "Seltzer",
			wantReason: ReasonAlreadyHealthy,
		},
		{
			name:       "healthy item without alternatives",
			item:       domain.Item{Name: "Apples", Price: 199, Category: domain.CategoryProduce, HealthScore: 85},
			wantName:   "Apples",
			wantReason: ReasonAlreadyHealthy,
		},
		{
			name:       "unhealthy item without alternatives",
			item:       domain.Item{Name: "Batteries", Price: 599, Category: domain.Uncategorized, HealthScore: 50},
			wantName:   "Batteries",
			wantReason: ReasonNoAlternative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := optimizer.Optimize([]domain.Item{tt.item}, nil)

			require.Len(t, result.OptimizedList, 1)
			got := result.OptimizedList[0]
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.wantReplace, got.Replaced)
			if tt.wantReplace {
				assert.Len(t, result.Swaps, 1)
				assert.Equal(t, tt.item.Name, got.OriginalName)
			} else {
				assert.Empty(t, result.Swaps)
				assert.Equal(t, tt.item.Price, got.Price)
				assert.Equal(t, tt.item.HealthScore, got.HealthScore)
			}
		})
	}
}

func TestOptimizer_TiesBreakByName(t *testing.T) {
	cat := domain.NewCatalog("ties", []domain.CatalogEntry{
		{Category: domain.CategorySnacks, ProductName: "Beta Bar", Price: 200, HealthScore: 70},
		{Category: domain.CategorySnacks, ProductName: "Alpha Bar", Price: 200, HealthScore: 70},
	})
	optimizer := NewOptimizer(cat, OptimizerConfig{})

	result := optimizer.Optimize([]domain.Item{{Name: "Candy", Price: 250, Category: domain.CategorySnacks, HealthScore: 20}}, nil)

	require.Len(t, result.Swaps, 1)
	assert.Equal(t, "Alpha Bar", result.Swaps[0].Replacement.ProductName)
}

func TestOptimizer_BudgetRevokesLeastEfficientIncrease(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		// Raw Almonds: +52 for +3.99
		{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
		// Skim Milk: +28 for +0.49
		{Name: "Whole Milk", Price: 250, Category: domain.CategoryDairy, HealthScore: 50},
	}

	unconstrained := optimizer.Optimize(items, nil)
	require.Len(t, unconstrained.Swaps, 2)
	assert.Equal(t, domain.Money(898), unconstrained.Summary.TotalCost)

	result := optimizer.Optimize(items, money(500))

	assert.LessOrEqual(t, int64(result.Summary.TotalCost), int64(500))
	assert.Equal(t, domain.Money(499), result.Summary.TotalCost)

	require.Len(t, result.Swaps, 1)
	assert.Equal(t, "Skim Milk", result.Swaps[0].Replacement.ProductName)

	assert.Equal(t, "Chips", result.OptimizedList[0].Name)
	assert.Equal(t, ReasonOverBudget, result.OptimizedList[0].Reason)
	assert.False(t, result.OptimizedList[0].Replaced)
}

func TestOptimizer_BudgetTieRevokesLargerIncreaseFirst(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		// Steel-Cut Oats: +40 for +2.00
		{Name: "Cereal", Price: 100, Category: domain.CategoryGrains, HealthScore: 40},
		// Frozen Vegetables: +20 for +1.00
		{Name: "Frozen Pizza", Price: 100, Category: domain.CategoryFrozen, HealthScore: 40},
	}

	result := optimizer.Optimize(items, money(400))

	require.Len(t, result.Swaps, 1)
	assert.Equal(t, "Frozen Vegetables", result.Swaps[0].Replacement.ProductName)
	assert.Equal(t, domain.Money(300), result.Summary.TotalCost)
}

func TestOptimizer_InfeasibleBudgetKeepsCheaperSwaps(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
		{Name: "Whole Milk", Price: 250, Category: domain.CategoryDairy, HealthScore: 50},
		{Name: "Soda", Price: 250, Category: domain.CategoryBeverages, HealthScore: 21},
	}

	result := optimizer.Optimize(items, money(100))

	// Every increase is revoked; the cheaper soda swap only helps
	require.Len(t, result.Swaps, 1)
	assert.Equal(t, "Sparkling Water", result.Swaps[0].Replacement.ProductName)
	assert.Equal(t, domain.Money(630), result.Summary.TotalCost)
	assert.LessOrEqual(t, int64(result.Summary.TotalCost), int64(Summarize(items).TotalCost))
	assert.Equal(t, ReasonOverBudget, result.OptimizedList[0].Reason)
	assert.Equal(t, ReasonOverBudget, result.OptimizedList[1].Reason)
}

func TestOptimizer_BudgetAboveTotalChangesNothing(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
		{Name: "Whole Milk", Price: 250, Category: domain.CategoryDairy, HealthScore: 50},
	}

	assert.Equal(t, optimizer.Optimize(items, nil), optimizer.Optimize(items, money(10000)))
}

func TestOptimizer_DefaultBudgetRatio(t *testing.T) {
	items := []domain.Item{{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30}}

	t.Run("applies when no budget is given", func(t *testing.T) {
		optimizer := NewOptimizer(testCatalog(), OptimizerConfig{DefaultBudgetRatio: 0.8})

		result := optimizer.Optimize(items, nil)

		assert.Empty(t, result.Swaps)
		assert.Equal(t, ReasonOverBudget, result.OptimizedList[0].Reason)
	})

	t.Run("explicit budget wins", func(t *testing.T) {
		optimizer := NewOptimizer(testCatalog(), OptimizerConfig{DefaultBudgetRatio: 0.8})

		result := optimizer.Optimize(items, money(1000))

		require.Len(t, result.Swaps, 1)
		assert.Equal(t, "Raw Almonds", result.Swaps[0].Replacement.ProductName)
	})

	t.Run("zero ratio leaves basket unconstrained", func(t *testing.T) {
		optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})

		assert.Len(t, optimizer.Optimize(items, nil).Swaps, 1)
	})
}

func TestOptimizer_HealthyThreshold(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{HealthyThreshold: 90})
	items := []domain.Item{{Name: "Apples", Price: 199, Category: domain.CategoryProduce, HealthScore: 85}}

	result := optimizer.Optimize(items, nil)

	assert.Equal(t, ReasonNoAlternative, result.OptimizedList[0].Reason)
}

func TestOptimizer_Invariants(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		{Name: "Soda", Price: 250, Category: domain.CategoryBeverages, HealthScore: 21},
		{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
		{Name: "Apples", Price: 199, Category: domain.CategoryProduce, HealthScore: 85},
		{Name: "Whole Milk", Price: 250, Category: domain.CategoryDairy, HealthScore: 50},
		{Name: "Soda", Price: 250, Category: domain.CategoryBeverages, HealthScore: 21},
		{Name: "Batteries", Price: 599, Category: domain.Uncategorized, HealthScore: 50},
	}
	current := Summarize(items)

	for _, budget := range []*domain.Money{nil, money(2000), money(1500), money(1000), money(1)} {
		result := optimizer.Optimize(items, budget)

		// One entry per input item, in order
		require.Len(t, result.OptimizedList, len(items))
		replaced := 0
		for i, entry := range result.OptimizedList {
			if entry.Replaced {
				replaced++
				assert.Equal(t, items[i].Name, entry.OriginalName)
				assert.Greater(t, entry.HealthScore, items[i].HealthScore)
				assert.Equal(t, items[i].Category, entry.Category)
			} else {
				assert.Equal(t, items[i].Name, entry.Name)
			}
		}
		assert.Equal(t, replaced, len(result.Swaps))

		// Swap savings account for the whole difference
		var saved domain.Money
		for _, swap := range result.Swaps {
			saved += swap.Savings
		}
		assert.Equal(t, saved, result.Summary.MoneySaved)
		assert.Equal(t, current.TotalCost-result.Summary.TotalCost, result.Summary.MoneySaved)

		// Health never goes down
		assert.GreaterOrEqual(t, result.Summary.AvgHealthScore, current.AvgHealthScore)

		if budget != nil && result.Summary.TotalCost > *budget {
			assert.LessOrEqual(t, int64(result.Summary.TotalCost), int64(current.TotalCost),
				"an unreachable budget still never raises the total")
		}
	}
}

func TestOptimizer_Deterministic(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})
	items := []domain.Item{
		{Name: "Soda", Price: 250, Category: domain.CategoryBeverages, HealthScore: 21},
		{Name: "Chips", Price: 200, Category: domain.CategorySnacks, HealthScore: 30},
		{Name: "Whole Milk", Price: 250, Category: domain.CategoryDairy, HealthScore: 50},
	}

	first := optimizer.Optimize(items, money(600))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, optimizer.Optimize(items, money(600)))
	}
}

func TestOptimizer_EmptyBasket(t *testing.T) {
	optimizer := NewOptimizer(testCatalog(), OptimizerConfig{})

	result := optimizer.Optimize([]domain.Item{}, nil)

	assert.NotNil(t, result.OptimizedList)
	assert.Empty(t, result.OptimizedList)
	assert.NotNil(t, result.Swaps)
	assert.Empty(t, result.Swaps)
	assert.Equal(t, domain.OptimizedSummary{}, result.Summary)
}

func TestWithinRatio(t *testing.T) {
	tests := []struct {
		a, b domain.Money
		want bool
	}{
		{100, 110, true},
		{100, 90, true},
		{100, 111, false},
		{100, 89, false},
		{0, 0, true},
		{0, 1, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withinRatio(tt.a, tt.b, 0.10), "withinRatio(%d, %d)", tt.a, tt.b)
	}
}
