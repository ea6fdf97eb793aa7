package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

const (
	cacheKeyCareers = "catalog:careers"
	cacheKeyTiers   = "catalog:tiers"
)

type catalogRepo interface {
	ListCareers(ctx context.Context) ([]models.CareerCatalogEntry, error)
	UpsertCareer(ctx context.Context, entry *models.CareerCatalogEntry) error
	ListTiers(ctx context.Context) ([]models.DiscountTier, error)
	UpsertTier(ctx context.Context, tier *models.DiscountTier) error
}

// CatalogService serves the career/tariff catalog and the discount tier
// scale. Both are read on every pipeline run, so reads go through the cache;
// administrative writes invalidate it. The catalog is never mutated during a
// pipeline run.
type CatalogService struct {
	repo      catalogRepo
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogRepo, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Careers returns all catalog entries, cached.
func (s *CatalogService) Careers(ctx context.Context) ([]models.CareerCatalogEntry, error) {
	var careers []models.CareerCatalogEntry
	if hit, _ := s.cache.Get(ctx, cacheKeyCareers, &careers); hit {
		return careers, nil
	}
	careers, err := s.repo.ListCareers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	s.cache.Set(ctx, cacheKeyCareers, careers, 0)
	return careers, nil
}

// Tiers returns the discount scale ordered by rank position, cached.
func (s *CatalogService) Tiers(ctx context.Context) ([]models.DiscountTier, error) {
	var tiers []models.DiscountTier
	if hit, _ := s.cache.Get(ctx, cacheKeyTiers, &tiers); hit {
		return tiers, nil
	}
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list discount tiers")
	}
	s.cache.Set(ctx, cacheKeyTiers, tiers, 0)
	return tiers, nil
}

// UpsertCareer stores a career with its name normalized the same way kardex
// careers are, so reconciliation stays an exact match.
func (s *CatalogService) UpsertCareer(ctx context.Context, req dto.UpsertCareerRequest) (*models.CareerCatalogEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}
	entry := &models.CareerCatalogEntry{
		Name:               NormalizeCareerName(req.Name),
		CreditValue:        req.CreditValue,
		IncludesTechnology: req.IncludesTechnology,
	}
	if err := s.repo.UpsertCareer(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert career")
	}
	s.cache.Invalidate(ctx, "catalog:*")
	return entry, nil
}

// UpsertTier stores a tier of the discount scale.
func (s *CatalogService) UpsertTier(ctx context.Context, req dto.UpsertTierRequest) (*models.DiscountTier, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tier payload")
	}
	tier := &models.DiscountTier{Position: req.Position, Percentage: req.Percentage}
	if err := s.repo.UpsertTier(ctx, tier); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert tier")
	}
	s.cache.Invalidate(ctx, "catalog:*")
	return tier, nil
}
