package models

// PersonSummary is one hit of an upstream person lookup by document fragment.
type PersonSummary struct {
	ExternalID string `json:"codigo"`
	Document   string `json:"documento"`
	FullName   string `json:"nombre_completo"`
}

// KardexTermBlock is one academic-term entry of a student's kardex. The
// header carries the term label and, after the last colon, the career label.
// The body is tabular; the last row holds the cumulative credit count for the
// term in the cell indexed by KardexCreditCell.
type KardexTermBlock struct {
	Header string     `json:"cabecera"`
	Rows   [][]string `json:"filas"`
}

// PaymentRow is one semi-structured row of a student's payment history.
type PaymentRow struct {
	Cells []string `json:"celdas"`
}

// InvoiceRow is one detail row of an invoice lookup.
type InvoiceRow struct {
	Cells []string `json:"celdas"`
}

// Upstream cell layout. The academic records service returns positional rows;
// these indices are fixed by its export format.
const (
	// KardexCreditCell indexes the cumulative-credit cell within the last
	// row of a kardex term block.
	KardexCreditCell = 5

	// PaymentKindCell holds the row kind; rows equal to
	// RegularInvoiceMarker reference a registration invoice.
	PaymentKindCell      = 2
	RegularInvoiceMarker = "FACTURA"

	// Invoice lookup parameters within a qualifying payment row.
	PaymentMasterCell = 3
	PaymentRegionCell = 4
	PaymentOrderCell  = 5

	// InvoiceReferenceCell holds the free-text reference matched against the
	// target term and the plan keywords. The paid amount sits in the row's
	// last cell.
	InvoiceReferenceCell = 1
)

// Payment plan labels as recorded on the registry.
const (
	PlanEstandar = "PLAN ESTANDAR"
	PlanPlus     = "PLAN PLUS"
)

// PaymentInfo is the reconciled registration payment for one student.
type PaymentInfo struct {
	Reference  string  `json:"reference"`
	Plan       string  `json:"plan"`
	AmountPaid float64 `json:"amount_paid"`
}

// ManualPaymentEntry is the operator-supplied fallback when automatic payment
// extraction finds nothing.
type ManualPaymentEntry struct {
	Reference string  `json:"reference"`
	Plan      string  `json:"plan" validate:"omitempty,oneof='PLAN ESTANDAR' 'PLAN PLUS'"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}
