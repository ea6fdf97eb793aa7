package dto

import "github.com/diegocaceres21/saae-discount-api/internal/models"

// IndividualRunRequest submits a manually selected sibling group for one
// target term.
type IndividualRunRequest struct {
	TargetTerm string               `json:"target_term" validate:"required"`
	Students   []models.StudentSeed `json:"students" validate:"required,min=2,dive"`
}

// BulkRunRequest submits spreadsheet-derived sibling groups, identified by
// ID-document fragments, for one or more target terms.
type BulkRunRequest struct {
	TargetTerms []string   `json:"target_terms" validate:"required,min=1,dive,required"`
	Groups      [][]string `json:"groups" validate:"required,min=1,dive,min=2,dive,required"`
}

// BulkRunResponse reports per-group outcomes.
type BulkRunResponse struct {
	Results []models.GroupResult `json:"results"`
}

// ReorderRequest applies a tie swap to a ranked group snapshot. Position is
// the upper rank of the adjacent pair to exchange.
type ReorderRequest struct {
	Records  []models.StudentRecord `json:"records" validate:"required,min=2"`
	Position int                    `json:"position" validate:"gte=0"`
}

// ReorderResponse returns the re-allocated group. Swapped is false when the
// pair was not tied and the order was left unchanged.
type ReorderResponse struct {
	Records []models.StudentRecord `json:"records"`
	Swapped bool                   `json:"swapped"`
}

// StudentRecordView decorates a committed record with its derived totals.
type StudentRecordView struct {
	models.StudentRecord
	Totals models.FinancialTotals `json:"totals"`
}
