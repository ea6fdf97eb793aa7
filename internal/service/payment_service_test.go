package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

type mockPaymentRecords struct {
	payments    []models.PaymentRow
	paymentsErr error
	invoices    map[string][]models.InvoiceRow
	invoicesErr error
	lookups     int
}

func (m *mockPaymentRecords) PaymentHistory(ctx context.Context, studentExternalID string) ([]models.PaymentRow, error) {
	return m.payments, m.paymentsErr
}

func (m *mockPaymentRecords) InvoiceDetail(ctx context.Context, masterNumber, regionID, order string) ([]models.InvoiceRow, error) {
	m.lookups++
	if m.invoicesErr != nil {
		return nil, m.invoicesErr
	}
	return m.invoices[masterNumber], nil
}

type mockPrompter struct {
	paymentEntry models.ManualPaymentEntry
	paymentErr   error
	careerChoice models.CareerCatalogEntry
	careerErr    error
	paymentCalls int
	careerCalls  int
}

func (m *mockPrompter) ManualPayment(ctx context.Context, studentName string) (models.ManualPaymentEntry, error) {
	m.paymentCalls++
	return m.paymentEntry, m.paymentErr
}

func (m *mockPrompter) SelectCareer(ctx context.Context, studentName, career string, candidates []models.CareerCatalogEntry) (models.CareerCatalogEntry, error) {
	m.careerCalls++
	return m.careerChoice, m.careerErr
}

func paymentRow(kind, master, region, order string) models.PaymentRow {
	return models.PaymentRow{Cells: []string{"01/02/2025", "x", kind, master, region, order}}
}

func TestPaymentReconcileAutomatic(t *testing.T) {
	records := &mockPaymentRecords{
		payments: []models.PaymentRow{
			paymentRow("RECIBO", "900", "LP", "1"),
			paymentRow("FACTURA", "1001", "LP", "2"),
		},
		invoices: map[string][]models.InvoiceRow{
			"1001": {
				{Cells: []string{"1", "MATRICULA 1-2025 PLAN ESTANDAR", "1,250.50"}},
			},
		},
	}
	prompter := &mockPrompter{}
	svc := NewPaymentService(records, prompter, zap.NewNop())

	info, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.NoError(t, err)
	assert.Equal(t, models.PlanEstandar, info.Plan)
	assert.InDelta(t, 1250.50, info.AmountPaid, 1e-9)
	assert.Contains(t, info.Reference, "1-2025")
	assert.Zero(t, prompter.paymentCalls)
	// The RECIBO row never triggers an invoice lookup.
	assert.Equal(t, 1, records.lookups)
}

func TestPaymentReconcilePlanPlus(t *testing.T) {
	records := &mockPaymentRecords{
		payments: []models.PaymentRow{paymentRow("FACTURA", "1001", "LP", "2")},
		invoices: map[string][]models.InvoiceRow{
			"1001": {{Cells: []string{"1", "MATRICULA 1-2025 PLAN PLUS", "900.00"}}},
		},
	}
	svc := NewPaymentService(records, &mockPrompter{}, zap.NewNop())

	info, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPlus, info.Plan)
}

func TestPaymentReconcileFallsBackToPrompt(t *testing.T) {
	records := &mockPaymentRecords{
		payments: []models.PaymentRow{paymentRow("FACTURA", "1001", "LP", "2")},
		invoices: map[string][]models.InvoiceRow{
			"1001": {{Cells: []string{"1", "MATRICULA 2-2024 PLAN ESTANDAR", "800.00"}}},
		},
	}
	prompter := &mockPrompter{paymentEntry: models.ManualPaymentEntry{
		Reference: "manual", Plan: models.PlanEstandar, Amount: 777,
	}}
	svc := NewPaymentService(records, prompter, zap.NewNop())

	info, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.paymentCalls)
	assert.Equal(t, "manual", info.Reference)
	assert.InDelta(t, 777.0, info.AmountPaid, 1e-9)
}

func TestPaymentReconcileUpstreamFailureFallsBackToPrompt(t *testing.T) {
	records := &mockPaymentRecords{paymentsErr: errors.New("boom")}
	prompter := &mockPrompter{paymentEntry: models.ManualPaymentEntry{Amount: 0}}
	svc := NewPaymentService(records, prompter, zap.NewNop())

	info, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.paymentCalls)
	assert.Zero(t, info.AmountPaid)
}

func TestPaymentReconcileCancelPropagates(t *testing.T) {
	records := &mockPaymentRecords{}
	prompter := &mockPrompter{paymentErr: appErrors.ErrBatchCancelled}
	svc := NewPaymentService(records, prompter, zap.NewNop())

	_, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBatchCancelled))
}

func TestPaymentReconcileFirstMatchWins(t *testing.T) {
	records := &mockPaymentRecords{
		payments: []models.PaymentRow{paymentRow("FACTURA", "1001", "LP", "2")},
		invoices: map[string][]models.InvoiceRow{
			"1001": {
				{Cells: []string{"1", "MATRICULA 1-2025 PLAN ESTANDAR", "100.00"}},
				{Cells: []string{"2", "MATRICULA 1-2025 PLAN PLUS", "200.00"}},
			},
		},
	}
	svc := NewPaymentService(records, &mockPrompter{}, zap.NewNop())

	info, err := svc.Reconcile(context.Background(), "S1", "Ana Perez", []string{"1-2025"})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, info.AmountPaid, 1e-9)
	assert.Equal(t, models.PlanEstandar, info.Plan)
}
