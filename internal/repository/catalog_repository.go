package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

// CatalogRepository provides database access for the career/tariff catalog
// and the discount tier scale.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCareers returns every catalog entry ordered by name.
func (r *CatalogRepository) ListCareers(ctx context.Context) ([]models.CareerCatalogEntry, error) {
	const query = `SELECT id, name, credit_value, includes_technology, created_at, updated_at FROM career_catalog ORDER BY name`
	var careers []models.CareerCatalogEntry
	if err := r.db.SelectContext(ctx, &careers, query); err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return careers, nil
}

// UpsertCareer inserts or updates a catalog entry keyed by normalized name.
func (r *CatalogRepository) UpsertCareer(ctx context.Context, entry *models.CareerCatalogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO career_catalog (id, name, credit_value, includes_technology, created_at, updated_at)
		VALUES (:id, :name, :credit_value, :includes_technology, :created_at, :updated_at)
		ON CONFLICT (name) DO UPDATE SET credit_value = EXCLUDED.credit_value, includes_technology = EXCLUDED.includes_technology, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert career: %w", err)
	}
	return nil
}

// ListTiers returns the discount scale ordered by rank position.
func (r *CatalogRepository) ListTiers(ctx context.Context) ([]models.DiscountTier, error) {
	const query = `SELECT id, position, percentage FROM discount_tiers ORDER BY position`
	var tiers []models.DiscountTier
	if err := r.db.SelectContext(ctx, &tiers, query); err != nil {
		return nil, fmt.Errorf("list discount tiers: %w", err)
	}
	return tiers, nil
}

// UpsertTier inserts or updates a tier keyed by rank position.
func (r *CatalogRepository) UpsertTier(ctx context.Context, tier *models.DiscountTier) error {
	if tier.ID == "" {
		tier.ID = uuid.NewString()
	}
	const query = `INSERT INTO discount_tiers (id, position, percentage)
		VALUES (:id, :position, :percentage)
		ON CONFLICT (position) DO UPDATE SET percentage = EXCLUDED.percentage`
	if _, err := r.db.NamedExecContext(ctx, query, tier); err != nil {
		return fmt.Errorf("upsert tier: %w", err)
	}
	return nil
}
