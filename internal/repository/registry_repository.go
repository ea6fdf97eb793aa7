package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

// RegistryRepository persists committed discount requests and their student
// records.
type RegistryRepository struct {
	db *sqlx.DB
}

// NewRegistryRepository creates a new instance of RegistryRepository.
func NewRegistryRepository(db *sqlx.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// CreateRequest stores the request header and its records in one transaction.
// A group either commits whole or not at all.
func (r *RegistryRepository) CreateRequest(ctx context.Context, request *models.DiscountRequest, records []models.StudentRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	request.RecordCount = len(records)

	const requestQuery = `INSERT INTO discount_requests (id, mode, target_terms, created_by, created_at, record_count)
		VALUES (:id, :mode, :target_terms, :created_by, :created_at, :record_count)`
	if _, err := tx.NamedExecContext(ctx, requestQuery, request); err != nil {
		return fmt.Errorf("insert discount request: %w", err)
	}

	const recordQuery = `INSERT INTO student_records (id, request_id, external_id, document, full_name, career, total_credits, credit_value, technology_fee, discount_pct, amount_paid, payment_plan, payment_reference, registered, comment, position, created_at)
		VALUES (:id, :request_id, :external_id, :document, :full_name, :career, :total_credits, :credit_value, :technology_fee, :discount_pct, :amount_paid, :payment_plan, :payment_reference, :registered, :comment, :position, :created_at)`
	for i := range records {
		if _, err := tx.NamedExecContext(ctx, recordQuery, &records[i]); err != nil {
			return fmt.Errorf("insert student record %s: %w", records[i].Document, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registry tx: %w", err)
	}
	return nil
}

// ListRequests returns committed requests matching the filter with total count.
func (r *RegistryRepository) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.DiscountRequest, int, error) {
	baseQuery := `FROM discount_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Mode != "" {
		conditions = append(conditions, fmt.Sprintf("mode = $%d", len(args)+1))
		args = append(args, filter.Mode)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("target_terms LIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Term+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, mode, target_terms, created_by, created_at, record_count %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var requests []models.DiscountRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list discount requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count discount requests: %w", err)
	}

	return requests, total, nil
}

// GetRequest returns a request header with its records in rank order.
func (r *RegistryRepository) GetRequest(ctx context.Context, id string) (*models.DiscountRequest, []models.StudentRecord, error) {
	const requestQuery = `SELECT id, mode, target_terms, created_by, created_at, record_count FROM discount_requests WHERE id = $1 LIMIT 1`
	var request models.DiscountRequest
	if err := r.db.GetContext(ctx, &request, requestQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("get discount request: %w", err)
	}

	const recordsQuery = `SELECT id, request_id, external_id, document, full_name, career, total_credits, credit_value, technology_fee, discount_pct, amount_paid, payment_plan, payment_reference, registered, comment, position, created_at FROM student_records WHERE request_id = $1 ORDER BY position`
	var records []models.StudentRecord
	if err := r.db.SelectContext(ctx, &records, recordsQuery, id); err != nil {
		return nil, nil, fmt.Errorf("get student records: %w", err)
	}

	return &request, records, nil
}
