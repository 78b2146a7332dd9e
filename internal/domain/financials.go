package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// OpportunityFinancials is the roll-up of an opportunity's orders.
// WeightedValue is derived for reads and never stored.
type OpportunityFinancials struct {
	Value             float64
	GrossProfit       float64
	GrossProfitMargin int
	WeightedValue     float64
}

// RecomputeOpportunityFinancials sums every item of every order. Value is the
// discount-aware proposal total; gross profit is proposal minus cost.
func RecomputeOpportunityFinancials(opp *Opportunity, orders []Order) OpportunityFinancials {
	totalCost, totalProposal := decimal.Zero, decimal.Zero
	for _, order := range orders {
		cost, proposal := sumItems(order.Items)
		totalCost = totalCost.Add(cost)
		totalProposal = totalProposal.Add(proposal)
	}

	value := totalProposal.Round(2).InexactFloat64()
	grossProfit := totalProposal.Sub(totalCost).Round(2).InexactFloat64()

	return OpportunityFinancials{
		Value:             value,
		GrossProfit:       grossProfit,
		GrossProfitMargin: GrossProfitMargin(value, grossProfit),
		WeightedValue:     WeightedValue(value, opp.Probability),
	}
}

// OrderTotal returns the sum of the items' proposal totals
func OrderTotal(items []OrderItem) float64 {
	_, proposal := sumItems(items)
	return proposal.Round(2).InexactFloat64()
}

func sumItems(items []OrderItem) (cost, proposal decimal.Decimal) {
	cost, proposal = decimal.Zero, decimal.Zero
	for _, item := range items {
		cost = cost.Add(decimal.NewFromFloat(item.TotalCost))
		proposal = proposal.Add(decimal.NewFromFloat(item.TotalProposal))
	}
	return cost, proposal
}

// GrossProfitMargin returns round(grossProfit / value * 100), or 0 when value
// is not positive. The result is not clamped: a loss yields a negative margin.
func GrossProfitMargin(value, grossProfit float64) int {
	if value <= 0 {
		return 0
	}
	return int(math.Round(grossProfit / value * 100))
}

// WeightedValue scales value by the win probability, rounded to cents
func WeightedValue(value float64, probability int) float64 {
	return decimal.NewFromFloat(value).
		Mul(decimal.NewFromInt(int64(probability))).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// ApplyFinancials writes the stored roll-up fields onto the opportunity
func (o *Opportunity) ApplyFinancials(f OpportunityFinancials) {
	o.Value = f.Value
	o.GrossProfit = f.GrossProfit
	o.GrossProfitMargin = f.GrossProfitMargin
}

// SetManualFinancials applies a direct edit of value and/or gross profit and
// keeps the margin consistent with the stored fields
func (o *Opportunity) SetManualFinancials(value, grossProfit *float64) {
	if value != nil {
		o.Value = decimal.NewFromFloat(*value).Round(2).InexactFloat64()
	}
	if grossProfit != nil {
		o.GrossProfit = decimal.NewFromFloat(*grossProfit).Round(2).InexactFloat64()
	}
	o.GrossProfitMargin = GrossProfitMargin(o.Value, o.GrossProfit)
}
