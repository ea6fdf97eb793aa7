package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

func TestComputeTotals(t *testing.T) {
	rec := models.StudentRecord{
		TotalCredits:  18,
		CreditValue:   100,
		TechnologyFee: 100,
		DiscountPct:   0.25,
		AmountPaid:    500,
	}

	totals := ComputeTotals(rec)

	assert.InDelta(t, 1800.0, totals.AcademicFeeOriginal, 1e-9)
	assert.InDelta(t, 1350.0, totals.AcademicFeeDiscounted, 1e-9)
	assert.InDelta(t, 100.0, totals.TechnologyFee, 1e-9)
	assert.InDelta(t, 1900.0, totals.TotalSemesterOriginal, 1e-9)
	assert.InDelta(t, 1450.0, totals.TotalSemesterDiscounted, 1e-9)
	assert.InDelta(t, 1400.0, totals.BalanceOriginal, 1e-9)
	assert.InDelta(t, 950.0, totals.BalanceDiscounted, 1e-9)
}

func TestComputeTotalsNoTechnologyFee(t *testing.T) {
	rec := models.StudentRecord{
		TotalCredits: 10,
		CreditValue:  80,
		DiscountPct:  0.5,
	}

	totals := ComputeTotals(rec)

	assert.InDelta(t, 800.0, totals.TotalSemesterOriginal, 1e-9)
	assert.InDelta(t, 400.0, totals.TotalSemesterDiscounted, 1e-9)
}

// The technology fee is flat: it never scales with the discount or the load.
func TestComputeTotalsTechnologyFeeNotDiscounted(t *testing.T) {
	rec := models.StudentRecord{
		TotalCredits:  12,
		CreditValue:   100,
		TechnologyFee: 100,
		DiscountPct:   1.0,
	}

	totals := ComputeTotals(rec)

	assert.InDelta(t, 0.0, totals.AcademicFeeDiscounted, 1e-9)
	assert.InDelta(t, 100.0, totals.TotalSemesterDiscounted, 1e-9)
}
