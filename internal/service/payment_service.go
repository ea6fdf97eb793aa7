package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

type paymentRecordsClient interface {
	PaymentHistory(ctx context.Context, studentExternalID string) ([]models.PaymentRow, error)
	InvoiceDetail(ctx context.Context, masterNumber, regionID, order string) ([]models.InvoiceRow, error)
}

// PaymentService reconciles the registration-fee payment for one student
// against upstream invoices. Automatic extraction failing is routine, not
// fatal: the service degrades to a manual operator entry.
type PaymentService struct {
	records  paymentRecordsClient
	prompter Prompter
	logger   *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(records paymentRecordsClient, prompter Prompter, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{records: records, prompter: prompter, logger: logger}
}

// Reconcile finds the registration invoice for the target term(s) and the
// payment plan. Any failure, upstream or parse, falls back to the operator
// prompt; only operator cancellation propagates as an error.
func (s *PaymentService) Reconcile(ctx context.Context, studentExternalID, studentName string, targetTerms []string) (models.PaymentInfo, error) {
	info, err := s.extract(ctx, studentExternalID, targetTerms)
	if err == nil {
		return info, nil
	}

	s.logger.Info("automatic payment extraction failed, requesting manual entry",
		zap.String("student", studentName),
		zap.Error(err))

	entry, promptErr := s.prompter.ManualPayment(ctx, studentName)
	if promptErr != nil {
		return models.PaymentInfo{}, promptErr
	}
	return models.PaymentInfo{
		Reference:  entry.Reference,
		Plan:       entry.Plan,
		AmountPaid: entry.Amount,
	}, nil
}

func (s *PaymentService) extract(ctx context.Context, studentExternalID string, targetTerms []string) (models.PaymentInfo, error) {
	rows, err := s.records.PaymentHistory(ctx, studentExternalID)
	if err != nil {
		return models.PaymentInfo{}, err
	}

	for _, row := range rows {
		if !isRegularInvoice(row) {
			continue
		}
		master := row.Cells[models.PaymentMasterCell]
		region := row.Cells[models.PaymentRegionCell]
		order := row.Cells[models.PaymentOrderCell]

		detail, err := s.records.InvoiceDetail(ctx, master, region, order)
		if err != nil {
			return models.PaymentInfo{}, err
		}

		if info, ok := matchInvoiceRows(detail, targetTerms); ok {
			return info, nil
		}
	}

	return models.PaymentInfo{}, appErrors.Clone(appErrors.ErrPaymentNotFound, "no invoice matches the target term")
}

func isRegularInvoice(row models.PaymentRow) bool {
	if models.PaymentOrderCell >= len(row.Cells) {
		return false
	}
	return row.Cells[models.PaymentKindCell] == models.RegularInvoiceMarker
}

// matchInvoiceRows finds the first detail row whose reference mentions a
// target term together with a plan keyword. First match wins.
func matchInvoiceRows(rows []models.InvoiceRow, targetTerms []string) (models.PaymentInfo, bool) {
	for _, row := range rows {
		if models.InvoiceReferenceCell >= len(row.Cells) || len(row.Cells) < 2 {
			continue
		}
		ref := row.Cells[models.InvoiceReferenceCell]
		if !containsAnyTerm(ref, targetTerms) {
			continue
		}
		plan, ok := planFromReference(ref)
		if !ok {
			continue
		}
		amount, err := parseAmount(row.Cells[len(row.Cells)-1])
		if err != nil {
			continue
		}
		return models.PaymentInfo{Reference: ref, Plan: plan, AmountPaid: amount}, true
	}
	return models.PaymentInfo{}, false
}

func containsAnyTerm(ref string, targetTerms []string) bool {
	for _, term := range targetTerms {
		if term != "" && strings.Contains(ref, term) {
			return true
		}
	}
	return false
}

func planFromReference(ref string) (string, bool) {
	switch {
	case strings.Contains(ref, "ESTANDAR") || strings.Contains(ref, "ESTÁNDAR"):
		return models.PlanEstandar, true
	case strings.Contains(ref, "PLUS"):
		return models.PlanPlus, true
	}
	return "", false
}

// parseAmount strips thousands separators before parsing, upstream formats
// amounts like "1,250.50".
func parseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}
