package service

import "github.com/diegocaceres21/saae-discount-api/internal/models"

// ComputeTotals derives the semester figures from a reconciled record. The
// technology fee is a flat one-credit-equivalent charge, not scaled by load.
func ComputeTotals(rec models.StudentRecord) models.FinancialTotals {
	academic := rec.CreditValue * float64(rec.TotalCredits)
	discounted := academic * (1 - rec.DiscountPct)

	t := models.FinancialTotals{
		AcademicFeeOriginal:   academic,
		AcademicFeeDiscounted: discounted,
		TechnologyFee:         rec.TechnologyFee,
	}
	t.TotalSemesterOriginal = t.AcademicFeeOriginal + t.TechnologyFee
	t.TotalSemesterDiscounted = t.AcademicFeeDiscounted + t.TechnologyFee
	t.BalanceOriginal = t.TotalSemesterOriginal - rec.AmountPaid
	t.BalanceDiscounted = t.TotalSemesterDiscounted - rec.AmountPaid
	return t
}
