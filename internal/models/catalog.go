package models

import "time"

// CareerCatalogEntry maps a normalized career name to its tariff. Career
// names are stored diacritic-stripped; reconciliation is exact equality.
type CareerCatalogEntry struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	CreditValue        float64   `db:"credit_value" json:"credit_value"`
	IncludesTechnology bool      `db:"includes_technology" json:"includes_technology"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DiscountTier is one rank position of the family-support scale. The tier at
// position k applies to the student ranked k-th by credit load.
type DiscountTier struct {
	ID         string  `db:"id" json:"id"`
	Position   int     `db:"position" json:"position"`
	Percentage float64 `db:"percentage" json:"percentage"`
}
