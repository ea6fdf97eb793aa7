package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

func newCatalogMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryListCareers(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "credit_value", "includes_technology", "created_at", "updated_at"}).
		AddRow("c1", "Derecho", 80.0, false, now, now).
		AddRow("c2", "Ingenieria de Sistemas", 100.0, true, now, now)
	mock.ExpectQuery("SELECT id, name, credit_value, includes_technology, created_at, updated_at FROM career_catalog ORDER BY name").
		WillReturnRows(rows)

	careers, err := repo.ListCareers(context.Background())
	require.NoError(t, err)
	require.Len(t, careers, 2)
	assert.Equal(t, "Derecho", careers[0].Name)
	assert.True(t, careers[1].IncludesTechnology)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryUpsertCareerAssignsID(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("INSERT INTO career_catalog").
		WithArgs(sqlmock.AnyArg(), "Ingenieria Informatica", 120.0, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.CareerCatalogEntry{Name: "Ingenieria Informatica", CreditValue: 120, IncludesTechnology: true}
	require.NoError(t, repo.UpsertCareer(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListTiers(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "position", "percentage"}).
		AddRow("t0", 0, 0.0).
		AddRow("t1", 1, 0.25)
	mock.ExpectQuery("SELECT id, position, percentage FROM discount_tiers ORDER BY position").
		WillReturnRows(rows)

	tiers, err := repo.ListTiers(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, 0.25, tiers[1].Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryUpsertTier(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("INSERT INTO discount_tiers").
		WithArgs(sqlmock.AnyArg(), 2, 0.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tier := &models.DiscountTier{Position: 2, Percentage: 0.5}
	require.NoError(t, repo.UpsertTier(context.Background(), tier))
	assert.NotEmpty(t, tier.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
