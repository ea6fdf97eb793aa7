package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

func testCatalog() []models.CareerCatalogEntry {
	return []models.CareerCatalogEntry{
		{ID: "c1", Name: "Ingenieria de Sistemas", CreditValue: 100, IncludesTechnology: true},
		{ID: "c2", Name: "Derecho", CreditValue: 80},
	}
}

func TestCareerReconcileExactMatch(t *testing.T) {
	prompter := &mockPrompter{}
	svc := NewCareerService(prompter, zap.NewNop())
	rec := &models.StudentRecord{FullName: "Ana Perez", Career: "Ingenieria de Sistemas"}

	entry, err := svc.Reconcile(context.Background(), rec, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "c1", entry.ID)
	assert.Zero(t, prompter.careerCalls)
}

func TestCareerReconcileStripsDiacriticsBeforeMatching(t *testing.T) {
	svc := NewCareerService(&mockPrompter{}, zap.NewNop())
	rec := &models.StudentRecord{FullName: "Ana Perez", Career: "Ingeniería de Sistemas"}

	entry, err := svc.Reconcile(context.Background(), rec, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "c1", entry.ID)
	assert.Equal(t, "Ingenieria de Sistemas", rec.Career)
}

func TestCareerReconcilePromptsOnMismatch(t *testing.T) {
	prompter := &mockPrompter{careerChoice: models.CareerCatalogEntry{ID: "c2", Name: "Derecho", CreditValue: 80}}
	svc := NewCareerService(prompter, zap.NewNop())
	rec := &models.StudentRecord{FullName: "Ana Perez", Career: "Ciencias Juridicas"}

	entry, err := svc.Reconcile(context.Background(), rec, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.careerCalls)
	assert.Equal(t, "c2", entry.ID)
	// The operator's catalog choice overwrites the extracted label.
	assert.Equal(t, "Derecho", rec.Career)
}

func TestCareerReconcileEmptyNameIsFatal(t *testing.T) {
	prompter := &mockPrompter{}
	svc := NewCareerService(prompter, zap.NewNop())
	rec := &models.StudentRecord{FullName: "Ana Perez", Career: "   "}

	_, err := svc.Reconcile(context.Background(), rec, testCatalog())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCareerNotInCatalog))
	assert.Zero(t, prompter.careerCalls)
}

func TestCareerReconcileCancelPropagates(t *testing.T) {
	prompter := &mockPrompter{careerErr: appErrors.ErrBatchCancelled}
	svc := NewCareerService(prompter, zap.NewNop())
	rec := &models.StudentRecord{FullName: "Ana Perez", Career: "Desconocida"}

	_, err := svc.Reconcile(context.Background(), rec, testCatalog())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBatchCancelled))
}
