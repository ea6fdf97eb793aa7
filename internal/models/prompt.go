package models

import "time"

// PromptKind enumerates the operator interactions a pipeline run can block on.
type PromptKind string

const (
	PromptManualPayment PromptKind = "manual_payment"
	PromptCareerChoice  PromptKind = "career_choice"
)

// Prompt is a pending operator decision. The pipeline run that raised it is
// suspended until the prompt is resolved or cancelled.
type Prompt struct {
	ID          string               `json:"id"`
	Kind        PromptKind           `json:"kind"`
	StudentName string               `json:"student_name"`
	Career      string               `json:"career,omitempty"`
	Candidates  []CareerCatalogEntry `json:"candidates,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}
