package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

type registryReader interface {
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.DiscountRequest, int, error)
	GetRequest(ctx context.Context, id string) (*models.DiscountRequest, []models.StudentRecord, error)
}

// RegistryService serves committed requests for browsing. Totals are derived
// at read time from the stored record fields.
type RegistryService struct {
	repo   registryReader
	logger *zap.Logger
}

// NewRegistryService constructs a RegistryService.
func NewRegistryService(repo registryReader, logger *zap.Logger) *RegistryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{repo: repo, logger: logger}
}

// List returns committed requests matching the filter with paging metadata.
func (s *RegistryService) List(ctx context.Context, filter models.RequestFilter) ([]models.DiscountRequest, *models.Pagination, error) {
	requests, total, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a request with its records decorated with derived totals.
func (s *RegistryService) Get(ctx context.Context, id string) (*models.DiscountRequest, []dto.StudentRecordView, error) {
	request, records, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	views := make([]dto.StudentRecordView, len(records))
	for i, rec := range records {
		views[i] = dto.StudentRecordView{StudentRecord: rec, Totals: ComputeTotals(rec)}
	}
	return request, views, nil
}
