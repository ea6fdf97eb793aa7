package models

import "time"

// StudentSeed identifies a student selected for a pipeline run before any
// upstream data has been fetched.
type StudentSeed struct {
	ExternalID string `json:"external_id" validate:"required"`
	Document   string `json:"document" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
}

// StudentRecord is the unit the discount pipeline fills in: identity, the
// extracted academic load, the reconciled payment data and the allocated
// discount. The semester totals are never stored, they are recomputed from
// these fields whenever needed.
type StudentRecord struct {
	ID               string    `db:"id" json:"id"`
	RequestID        string    `db:"request_id" json:"request_id,omitempty"`
	ExternalID       string    `db:"external_id" json:"external_id"`
	Document         string    `db:"document" json:"document"`
	FullName         string    `db:"full_name" json:"full_name"`
	Career           string    `db:"career" json:"career"`
	TotalCredits     int       `db:"total_credits" json:"total_credits"`
	CreditValue      float64   `db:"credit_value" json:"credit_value"`
	TechnologyFee    float64   `db:"technology_fee" json:"technology_fee"`
	DiscountPct      float64   `db:"discount_pct" json:"discount_pct"`
	AmountPaid       float64   `db:"amount_paid" json:"amount_paid"`
	PaymentPlan      string    `db:"payment_plan" json:"payment_plan"`
	PaymentReference string    `db:"payment_reference" json:"payment_reference"`
	Registered       bool      `db:"registered" json:"registered"`
	Comment          string    `db:"comment" json:"comment"`
	Position         int       `db:"position" json:"position"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// FinancialTotals are the derived semester figures for one student. They are
// computed on demand from the stored record fields and never persisted, so a
// registry export can't go stale against tariff or discount changes.
type FinancialTotals struct {
	AcademicFeeOriginal     float64 `json:"academic_fee_original"`
	AcademicFeeDiscounted   float64 `json:"academic_fee_discounted"`
	TechnologyFee           float64 `json:"technology_fee"`
	TotalSemesterOriginal   float64 `json:"total_semester_original"`
	TotalSemesterDiscounted float64 `json:"total_semester_discounted"`
	BalanceOriginal         float64 `json:"balance_original"`
	BalanceDiscounted       float64 `json:"balance_discounted"`
}

// SiblingGroup is an ordered set of students jointly evaluated for the
// family-support discount. Order is rank order once the allocator has run.
type SiblingGroup struct {
	Students []*StudentRecord
}

// Documents lists the group's ID documents in current order.
func (g *SiblingGroup) Documents() []string {
	docs := make([]string, 0, len(g.Students))
	for _, s := range g.Students {
		docs = append(docs, s.Document)
	}
	return docs
}

// HasDuplicateDocuments reports whether two students share an ID document.
func (g *SiblingGroup) HasDuplicateDocuments() bool {
	seen := make(map[string]struct{}, len(g.Students))
	for _, s := range g.Students {
		if _, ok := seen[s.Document]; ok {
			return true
		}
		seen[s.Document] = struct{}{}
	}
	return false
}

// GroupResult tags a bulk-mode sibling group with its outcome. Failing groups
// carry a message; other groups continue independently.
type GroupResult struct {
	GroupIndex int             `json:"group_index"`
	Documents  []string        `json:"documents"`
	Records    []StudentRecord `json:"records,omitempty"`
	Failed     bool            `json:"failed"`
	Error      string          `json:"error,omitempty"`
}
