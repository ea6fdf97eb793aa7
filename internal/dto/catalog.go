package dto

// UpsertCareerRequest creates or updates a catalog career.
type UpsertCareerRequest struct {
	Name               string  `json:"name" validate:"required"`
	CreditValue        float64 `json:"credit_value" validate:"required,gt=0"`
	IncludesTechnology bool    `json:"includes_technology"`
}

// UpsertTierRequest creates or updates a discount tier.
type UpsertTierRequest struct {
	Position   int     `json:"position" validate:"gte=0"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=1"`
}
