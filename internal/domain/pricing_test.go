package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return &d
}

func TestComputeItemTotals_NonSubscription(t *testing.T) {
	tests := []struct {
		name          string
		productType   domain.ProductType
		in            domain.PricingInput
		totalCost     float64
		totalProposal float64
	}{
		{
			name:          "onetime without discount",
			productType:   domain.ProductTypeOneTime,
			in:            domain.PricingInput{Quantity: 3, CostValue: 10, ProposalValue: 15},
			totalCost:     30,
			totalProposal: 45,
		},
		{
			name:          "onetime with discount",
			productType:   domain.ProductTypeOneTime,
			in:            domain.PricingInput{Quantity: 2, CostValue: 100, ProposalValue: 250, DiscountPercent: 15},
			totalCost:     170,
			totalProposal: 425,
		},
		{
			name:          "service-based rounds to cents",
			productType:   domain.ProductTypeServiceBased,
			in:            domain.PricingInput{Quantity: 1, CostValue: 33.333, ProposalValue: 10.005, DiscountPercent: 0},
			totalCost:     33.33,
			totalProposal: 10.01,
		},
		{
			name:          "full discount",
			productType:   domain.ProductTypeServiceBased,
			in:            domain.PricingInput{Quantity: 5, CostValue: 20, ProposalValue: 30, DiscountPercent: 100},
			totalCost:     0,
			totalProposal: 0,
		},
		{
			name:          "zero values are allowed",
			productType:   domain.ProductTypeOneTime,
			in:            domain.PricingInput{Quantity: 1},
			totalCost:     0,
			totalProposal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := domain.ComputeItemTotals(tt.productType, tt.in, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.totalCost, totals.TotalCost)
			assert.Equal(t, tt.totalProposal, totals.TotalProposal)
		})
	}
}

func TestComputeItemTotals_NonSubscriptionIgnoresDates(t *testing.T) {
	in := domain.PricingInput{Quantity: 2, CostValue: 10, ProposalValue: 20}
	totals, err := domain.ComputeItemTotals(domain.ProductTypeOneTime, in, date(t, "2024-01-01"), date(t, "2024-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, totals.TotalCost)
	assert.Equal(t, 40.0, totals.TotalProposal)
}

func TestComputeItemTotals_Subscription(t *testing.T) {
	t.Run("months counted inclusively without day proration", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 2, CostValue: 100, ProposalValue: 150}
		totals, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2024-01-15"), date(t, "2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, 600.0, totals.TotalCost)
		assert.Equal(t, 900.0, totals.TotalProposal)
	})

	t.Run("full year with discount", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 1, CostValue: 50, ProposalValue: 80, DiscountPercent: 10}
		totals, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2024-01-01"), date(t, "2024-12-31"))
		require.NoError(t, err)
		assert.Equal(t, 540.0, totals.TotalCost)
		assert.Equal(t, 864.0, totals.TotalProposal)
	})

	t.Run("range inside one month counts as one", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 1, CostValue: 10, ProposalValue: 20}
		totals, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2024-05-03"), date(t, "2024-05-03"))
		require.NoError(t, err)
		assert.Equal(t, 10.0, totals.TotalCost)
		assert.Equal(t, 20.0, totals.TotalProposal)
	})

	t.Run("range across years", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 1, CostValue: 10, ProposalValue: 20}
		totals, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2023-11-30"), date(t, "2024-02-01"))
		require.NoError(t, err)
		assert.Equal(t, 40.0, totals.TotalCost)
		assert.Equal(t, 80.0, totals.TotalProposal)
	})

	t.Run("missing date bills without month multiplier", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 3, CostValue: 10, ProposalValue: 20}
		totals, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2024-01-01"), nil)
		require.NoError(t, err)
		assert.Equal(t, 30.0, totals.TotalCost)
		assert.Equal(t, 60.0, totals.TotalProposal)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		in := domain.PricingInput{Quantity: 1, CostValue: 10, ProposalValue: 20}
		_, err := domain.ComputeItemTotals(domain.ProductTypeSubscription, in, date(t, "2024-03-01"), date(t, "2024-02-28"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Errors, "endDate")
	})
}

func TestComputeItemTotals_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.PricingInput
		field string
	}{
		{"zero quantity", domain.PricingInput{Quantity: 0, CostValue: 1, ProposalValue: 1}, "quantity"},
		{"negative quantity", domain.PricingInput{Quantity: -1, CostValue: 1, ProposalValue: 1}, "quantity"},
		{"negative cost", domain.PricingInput{Quantity: 1, CostValue: -1, ProposalValue: 1}, "costValue"},
		{"negative proposal", domain.PricingInput{Quantity: 1, CostValue: 1, ProposalValue: -0.01}, "proposalValue"},
		{"negative discount", domain.PricingInput{Quantity: 1, DiscountPercent: -5}, "discount"},
		{"discount above 100", domain.PricingInput{Quantity: 1, DiscountPercent: 100.5}, "discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ComputeItemTotals(domain.ProductTypeOneTime, tt.in, nil, nil)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Errors, tt.field)
		})
	}
}

func TestComputeItemTotals_UnknownProductType(t *testing.T) {
	_, err := domain.ComputeItemTotals(domain.ProductType("bundle"), domain.PricingInput{Quantity: 1}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDateRange_Months(t *testing.T) {
	tests := []struct {
		start, end string
		months     int
	}{
		{"2024-01-15", "2024-03-10", 3},
		{"2024-01-01", "2024-12-31", 12},
		{"2024-02-01", "2024-02-29", 1},
		{"2023-12-31", "2024-01-01", 2},
		{"2022-06-15", "2024-06-14", 25},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			r, err := domain.NewDateRange(*date(t, tt.start), *date(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.months, r.Months())
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := domain.ParseDate("closeDate", "")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = domain.ParseDate("closeDate", "2024-06-30")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2024-06-30", d.Format(domain.DateLayout))

	d, err = domain.ParseDate("closeDate", "2024-06-30T15:04:05Z")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2024-06-30", d.Format(domain.DateLayout))

	_, err = domain.ParseDate("closeDate", "30/06/2024")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Errors, "closeDate")
}
