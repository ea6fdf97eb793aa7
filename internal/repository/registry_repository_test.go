package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

func newRegistryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func registryFixture() (*models.DiscountRequest, []models.StudentRecord) {
	request := &models.DiscountRequest{
		ID:          "req-1",
		Mode:        models.RequestModeIndividual,
		TargetTerms: "1-2025",
		CreatedBy:   "u1",
	}
	records := []models.StudentRecord{
		{ID: "r1", RequestID: "req-1", ExternalID: "S1", Document: "D1", FullName: "Ana Perez", Position: 0},
		{ID: "r2", RequestID: "req-1", ExternalID: "S2", Document: "D2", FullName: "Luis Perez", Position: 1},
	}
	return request, records
}

func TestRegistryRepositoryCreateRequest(t *testing.T) {
	db, mock, cleanup := newRegistryMock(t)
	defer cleanup()
	repo := NewRegistryRepository(db)

	request, records := registryFixture()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO discount_requests").
		WithArgs("req-1", "individual", "1-2025", "u1", sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateRequest(context.Background(), request, records)
	require.NoError(t, err)
	assert.Equal(t, 2, request.RecordCount)
	assert.False(t, request.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepositoryCreateRequestRollsBackOnRecordFailure(t *testing.T) {
	db, mock, cleanup := newRegistryMock(t)
	defer cleanup()
	repo := NewRegistryRepository(db)

	request, records := registryFixture()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO discount_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_records").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.CreateRequest(context.Background(), request, records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "D1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepositoryListRequestsWithFilters(t *testing.T) {
	db, mock, cleanup := newRegistryMock(t)
	defer cleanup()
	repo := NewRegistryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "mode", "target_terms", "created_by", "created_at", "record_count"}).
		AddRow("req-1", "bulk", "1-2025,2-2025", "u1", now, 3)

	mock.ExpectQuery("SELECT id, mode, target_terms, created_by, created_at, record_count FROM discount_requests").
		WithArgs("bulk", "%1-2025%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM discount_requests`).
		WithArgs("bulk", "%1-2025%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	requests, total, err := repo.ListRequests(context.Background(), models.RequestFilter{
		Mode:     models.RequestModeBulk,
		Term:     "1-2025",
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepositoryGetRequest(t *testing.T) {
	db, mock, cleanup := newRegistryMock(t)
	defer cleanup()
	repo := NewRegistryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, mode, target_terms, created_by, created_at, record_count FROM discount_requests WHERE id = $1 LIMIT 1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mode", "target_terms", "created_by", "created_at", "record_count"}).
			AddRow("req-1", "individual", "1-2025", "u1", now, 2))

	recordRows := sqlmock.NewRows([]string{"id", "request_id", "external_id", "document", "full_name", "career", "total_credits", "credit_value", "technology_fee", "discount_pct", "amount_paid", "payment_plan", "payment_reference", "registered", "comment", "position", "created_at"}).
		AddRow("r1", "req-1", "S1", "D1", "Ana Perez", "Derecho", 18, 100.0, 0.0, 0.0, 500.0, "PLAN ESTANDAR", "ref-1", true, "", 0, now).
		AddRow("r2", "req-1", "S2", "D2", "Luis Perez", "Derecho", 12, 100.0, 0.0, 0.25, 300.0, "PLAN PLUS", "ref-2", true, "", 1, now)
	mock.ExpectQuery("SELECT (.+) FROM student_records WHERE request_id").
		WithArgs("req-1").
		WillReturnRows(recordRows)

	request, records, err := repo.GetRequest(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestModeIndividual, request.Mode)
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Position)
	assert.Equal(t, 0.25, records[1].DiscountPct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepositoryGetRequestNotFound(t *testing.T) {
	db, mock, cleanup := newRegistryMock(t)
	defer cleanup()
	repo := NewRegistryRepository(db)

	mock.ExpectQuery("SELECT id, mode, target_terms, created_by, created_at, record_count FROM discount_requests WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.GetRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
