package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType determines how an order item referencing the product is priced
type ProductType string

const (
	ProductTypeOneTime      ProductType = "onetime"
	ProductTypeSubscription ProductType = "subscription"
	ProductTypeServiceBased ProductType = "service-based"
)

// IsValid checks if the ProductType is a valid enum value
func (t ProductType) IsValid() bool {
	switch t {
	case ProductTypeOneTime, ProductTypeSubscription, ProductTypeServiceBased:
		return true
	}
	return false
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// PricingInput holds the per-item values fed into a pricing strategy
type PricingInput struct {
	Quantity        int
	CostValue       float64
	ProposalValue   float64
	DiscountPercent float64
}

// ItemTotals is the stored result of pricing an order item
type ItemTotals struct {
	TotalCost     float64
	TotalProposal float64
}

// ProductPricing computes item totals for one product type
type ProductPricing interface {
	ComputeTotals(in PricingInput) (ItemTotals, error)
}

// OneTimePricing prices an item as quantity x unit value
type OneTimePricing struct{}

// ServiceBasedPricing prices an item as quantity x unit value
type ServiceBasedPricing struct{}

// SubscriptionPricing multiplies the unit value by the number of billed
// months. A nil Period bills a single period.
type SubscriptionPricing struct {
	Period *DateRange
}

func (OneTimePricing) ComputeTotals(in PricingInput) (ItemTotals, error) {
	if err := in.Validate(); err != nil {
		return ItemTotals{}, err
	}
	return in.totals(1), nil
}

func (ServiceBasedPricing) ComputeTotals(in PricingInput) (ItemTotals, error) {
	if err := in.Validate(); err != nil {
		return ItemTotals{}, err
	}
	return in.totals(1), nil
}

func (p SubscriptionPricing) ComputeTotals(in PricingInput) (ItemTotals, error) {
	if err := in.Validate(); err != nil {
		return ItemTotals{}, err
	}
	months := 1
	if p.Period != nil {
		months = p.Period.Months()
	}
	return in.totals(months), nil
}

// Validate rejects quantities below one, negative amounts and discounts outside 0-100
func (in PricingInput) Validate() error {
	verr := &ValidationError{}
	if in.Quantity < 1 {
		verr.Add("quantity", "must be at least 1")
	}
	if in.CostValue < 0 {
		verr.Add("costValue", "must not be negative")
	}
	if in.ProposalValue < 0 {
		verr.Add("proposalValue", "must not be negative")
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		verr.Add("discount", "must be between 0 and 100")
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func (in PricingInput) totals(periods int) ItemTotals {
	hundred := decimal.NewFromInt(100)
	multiplier := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(in.DiscountPercent).Div(hundred))
	units := decimal.NewFromInt(int64(in.Quantity)).Mul(decimal.NewFromInt(int64(periods))).Mul(multiplier)

	return ItemTotals{
		TotalCost:     units.Mul(decimal.NewFromFloat(in.CostValue)).Round(2).InexactFloat64(),
		TotalProposal: units.Mul(decimal.NewFromFloat(in.ProposalValue)).Round(2).InexactFloat64(),
	}
}

// DateRange is an inclusive calendar range used for subscription billing
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns a validation error when end is before start
func NewDateRange(start, end time.Time) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, NewValidationError("endDate", "must not be before startDate")
	}
	return DateRange{Start: start, End: end}, nil
}

// Months counts calendar months touched by the range, inclusive of both
// ends. Partial months are not prorated by day.
func (r DateRange) Months() int {
	start, end := r.Start.UTC(), r.End.UTC()
	return (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
}

// NewProductPricing selects the pricing strategy for a product type. The
// dates only matter for subscriptions; when either is missing the
// subscription is billed without a month multiplier.
func NewProductPricing(productType ProductType, startDate, endDate *time.Time) (ProductPricing, error) {
	switch productType {
	case ProductTypeOneTime:
		return OneTimePricing{}, nil
	case ProductTypeServiceBased:
		return ServiceBasedPricing{}, nil
	case ProductTypeSubscription:
		if startDate == nil || endDate == nil {
			return SubscriptionPricing{}, nil
		}
		period, err := NewDateRange(*startDate, *endDate)
		if err != nil {
			return nil, err
		}
		return SubscriptionPricing{Period: &period}, nil
	default:
		return nil, NewValidationError("productType", fmt.Sprintf("unknown product type %q", productType))
	}
}

// ComputeItemTotals prices a single order item. It is pure and must be
// re-run whenever any of its inputs change on a stored item.
func ComputeItemTotals(productType ProductType, in PricingInput, startDate, endDate *time.Time) (ItemTotals, error) {
	pricing, err := NewProductPricing(productType, startDate, endDate)
	if err != nil {
		return ItemTotals{}, err
	}
	return pricing.ComputeTotals(in)
}

// ParseDate parses an optional calendar date. Full RFC 3339 timestamps are
// accepted and truncated to their date. An empty value yields nil.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}
