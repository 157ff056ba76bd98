package money

import (
	"github.com/shopspring/decimal"

	"github.com/ncasas/obra-service/internal/models"
)

// Traffic-light thresholds on the accumulatedCost/budget ratio. These
// are presentation policy, not a financial invariant.
var (
	yellowThreshold = decimal.NewFromFloat(0.8)
	redThreshold    = decimal.NewFromInt(1)
)

// StatusFor maps a partida's cost/budget ratio to its traffic-light
// indicator: green while well under budget, yellow when approaching it,
// red once spent past it. A zero budget with any cost is red.
func StatusFor(budget, accumulatedCost decimal.Decimal) models.BudgetStatus {
	if !budget.IsPositive() {
		if accumulatedCost.IsPositive() {
			return models.BudgetRed
		}
		return models.BudgetGreen
	}
	ratio := accumulatedCost.Div(budget)
	switch {
	case ratio.GreaterThan(redThreshold):
		return models.BudgetRed
	case ratio.GreaterThanOrEqual(yellowThreshold):
		return models.BudgetYellow
	default:
		return models.BudgetGreen
	}
}
