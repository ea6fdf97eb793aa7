package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

type recordsGateway interface {
	LookupPersons(ctx context.Context, fragment string) ([]models.PersonSummary, error)
	AcademicHistory(ctx context.Context, studentExternalID string) ([]models.KardexTermBlock, error)
}

type paymentReconciler interface {
	Reconcile(ctx context.Context, studentExternalID, studentName string, targetTerms []string) (models.PaymentInfo, error)
}

type careerReconciler interface {
	Reconcile(ctx context.Context, rec *models.StudentRecord, catalog []models.CareerCatalogEntry) (models.CareerCatalogEntry, error)
}

type catalogProvider interface {
	Careers(ctx context.Context) ([]models.CareerCatalogEntry, error)
	Tiers(ctx context.Context) ([]models.DiscountTier, error)
}

type registryStore interface {
	CreateRequest(ctx context.Context, request *models.DiscountRequest, records []models.StudentRecord) error
}

type batchObserver interface {
	ObserveBatch(mode string, failed bool, duration time.Duration)
}

// PipelineService runs the discount pipeline end to end: upstream extraction,
// payment and career reconciliation, tier allocation and the final commit.
type PipelineService struct {
	records   recordsGateway
	payments  paymentReconciler
	careers   careerReconciler
	catalog   catalogProvider
	registry  registryStore
	allocator *DiscountAllocator
	validator *validator.Validate
	metrics   batchObserver
	logger    *zap.Logger
	workers   int
}

// NewPipelineService constructs a PipelineService. workers bounds concurrent
// kardex extraction per batch; reconciliation stages stay sequential because
// they can suspend on operator prompts.
func NewPipelineService(records recordsGateway, payments paymentReconciler, careers careerReconciler, catalog catalogProvider, registry registryStore, allocator *DiscountAllocator, validate *validator.Validate, metrics batchObserver, logger *zap.Logger, workers int) *PipelineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if allocator == nil {
		allocator = NewDiscountAllocator(logger)
	}
	if workers <= 0 {
		workers = 1
	}
	return &PipelineService{
		records:   records,
		payments:  payments,
		careers:   careers,
		catalog:   catalog,
		registry:  registry,
		allocator: allocator,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		workers:   workers,
	}
}

// RunIndividual processes a manually selected group for one target term.
// All-or-nothing: any per-student failure or an operator cancel aborts the
// whole submission and nothing is committed.
func (s *PipelineService) RunIndividual(ctx context.Context, req dto.IndividualRunRequest, actorID string) ([]models.StudentRecord, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid individual run payload")
	}

	group, err := buildGroup(req.Students)
	if err != nil {
		return nil, err
	}

	records, err := s.processGroup(ctx, group, []string{req.TargetTerm}, false)
	if err != nil {
		s.observe(string(models.RequestModeIndividual), true, start)
		return nil, err
	}

	request := &models.DiscountRequest{
		ID:          uuid.NewString(),
		Mode:        models.RequestModeIndividual,
		TargetTerms: req.TargetTerm,
		CreatedBy:   actorID,
		RecordCount: len(records),
	}
	if err := s.commit(ctx, request, records); err != nil {
		s.observe(string(models.RequestModeIndividual), true, start)
		return nil, err
	}

	s.observe(string(models.RequestModeIndividual), false, start)
	return records, nil
}

// RunBulk processes spreadsheet-derived groups. Groups fail independently;
// only operator cancellation aborts the whole batch, in which case nothing
// is committed.
func (s *PipelineService) RunBulk(ctx context.Context, req dto.BulkRunRequest, actorID string) ([]models.GroupResult, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk run payload")
	}

	results := make([]models.GroupResult, 0, len(req.Groups))
	pending := make(map[int][]models.StudentRecord)

	for idx, fragments := range req.Groups {
		records, err := s.processBulkGroup(ctx, fragments, req.TargetTerms)
		if err != nil {
			if appErrors.HasCode(err, appErrors.ErrBatchCancelled) {
				// Cancellation is atomic for the entire submission: no group
				// processed so far is committed.
				s.observe(string(models.RequestModeBulk), true, start)
				return nil, err
			}
			s.logger.Warn("sibling group failed",
				zap.Int("group", idx),
				zap.Strings("documents", fragments),
				zap.Error(err))
			results = append(results, models.GroupResult{
				GroupIndex: idx,
				Documents:  fragments,
				Failed:     true,
				Error:      appErrors.FromError(err).Message,
			})
			continue
		}
		pending[idx] = records
		results = append(results, models.GroupResult{
			GroupIndex: idx,
			Documents:  fragments,
			Records:    records,
		})
	}

	// Commit only after every group has been processed, so a cancellation
	// anywhere in the batch leaves zero committed records.
	terms := strings.Join(req.TargetTerms, ",")
	for i := range results {
		if results[i].Failed {
			continue
		}
		records := pending[results[i].GroupIndex]
		request := &models.DiscountRequest{
			ID:          uuid.NewString(),
			Mode:        models.RequestModeBulk,
			TargetTerms: terms,
			CreatedBy:   actorID,
			RecordCount: len(records),
		}
		if err := s.commit(ctx, request, records); err != nil {
			results[i].Failed = true
			results[i].Records = nil
			results[i].Error = appErrors.FromError(err).Message
		}
	}

	anyFailed := false
	for i := range results {
		if results[i].Failed {
			anyFailed = true
			break
		}
	}
	s.observe(string(models.RequestModeBulk), anyFailed, start)
	return results, nil
}

// Reorder applies a tie swap to a ranked group snapshot and re-allocates.
// Swaps between students with unequal credits are a no-op.
func (s *PipelineService) Reorder(ctx context.Context, req dto.ReorderRequest) (*dto.ReorderResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	if req.Position >= len(req.Records)-1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "position out of range")
	}

	tiers, err := s.catalog.Tiers(ctx)
	if err != nil {
		return nil, err
	}

	group := &models.SiblingGroup{Students: make([]*models.StudentRecord, len(req.Records))}
	for i := range req.Records {
		rec := req.Records[i]
		group.Students[i] = &rec
	}

	swapped := s.allocator.SwapAdjacent(group, req.Position, tiers)
	out := make([]models.StudentRecord, len(group.Students))
	for i, rec := range group.Students {
		out[i] = *rec
	}
	return &dto.ReorderResponse{Records: out, Swapped: swapped}, nil
}

// processBulkGroup resolves document fragments to students, then runs the
// shared pipeline in aggregate mode.
func (s *PipelineService) processBulkGroup(ctx context.Context, fragments []string, targetTerms []string) ([]models.StudentRecord, error) {
	seeds := make([]models.StudentSeed, 0, len(fragments))
	for _, fragment := range fragments {
		persons, err := s.records.LookupPersons(ctx, fragment)
		if err != nil {
			return nil, err
		}
		if len(persons) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPersonNotFound,
				fmt.Sprintf("no person matches document %s", fragment))
		}
		person := persons[0]
		seeds = append(seeds, models.StudentSeed{
			ExternalID: person.ExternalID,
			Document:   person.Document,
			FullName:   person.FullName,
		})
	}

	group, err := buildGroup(seeds)
	if err != nil {
		return nil, err
	}
	return s.processGroup(ctx, group, targetTerms, true)
}

// processGroup is the shared per-group pipeline: extraction (bounded
// concurrency), payment reconciliation, career reconciliation (strictly
// sequential, may suspend), allocation, tariff application.
func (s *PipelineService) processGroup(ctx context.Context, group *models.SiblingGroup, targetTerms []string, aggregate bool) ([]models.StudentRecord, error) {
	if err := s.extractAll(ctx, group, targetTerms, aggregate); err != nil {
		return nil, err
	}

	// Payment prompts go to a single operator; keep them one at a time.
	for _, rec := range group.Students {
		info, err := s.payments.Reconcile(ctx, rec.ExternalID, rec.FullName, targetTerms)
		if err != nil {
			return nil, err
		}
		rec.PaymentReference = info.Reference
		rec.PaymentPlan = info.Plan
		rec.AmountPaid = info.AmountPaid
	}

	careers, err := s.catalog.Careers(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range group.Students {
		entry, err := s.careers.Reconcile(ctx, rec, careers)
		if err != nil {
			return nil, err
		}
		rec.CreditValue = entry.CreditValue
		if entry.IncludesTechnology {
			rec.TechnologyFee = entry.CreditValue
		} else {
			rec.TechnologyFee = 0
		}
	}

	tiers, err := s.catalog.Tiers(ctx)
	if err != nil {
		return nil, err
	}
	s.allocator.Allocate(group, tiers)

	records := make([]models.StudentRecord, len(group.Students))
	for i, rec := range group.Students {
		rec.Registered = true
		records[i] = *rec
	}
	return records, nil
}

// extractAll fetches and parses kardexes, fanning out up to s.workers
// students at once. Students share no state at this stage.
func (s *PipelineService) extractAll(ctx context.Context, group *models.SiblingGroup, targetTerms []string, aggregate bool) error {
	sem := make(chan struct{}, s.workers)
	errs := make([]error, len(group.Students))
	var wg sync.WaitGroup

	for i, rec := range group.Students {
		wg.Add(1)
		go func(i int, rec *models.StudentRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			blocks, err := s.records.AcademicHistory(ctx, rec.ExternalID)
			if err != nil {
				errs[i] = err
				return
			}
			credits, career, err := ExtractTermInfo(blocks, targetTerms, aggregate)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", rec.FullName, err)
				return
			}
			rec.TotalCredits = credits
			rec.Career = career
		}(i, rec)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PipelineService) commit(ctx context.Context, request *models.DiscountRequest, records []models.StudentRecord) error {
	for i := range records {
		records[i].RequestID = request.ID
	}
	if err := s.registry.CreateRequest(ctx, request, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit discount request")
	}
	s.logger.Info("discount request committed",
		zap.String("request_id", request.ID),
		zap.String("mode", string(request.Mode)),
		zap.Int("records", len(records)))
	return nil
}

func (s *PipelineService) observe(mode string, failed bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveBatch(mode, failed, time.Since(start))
	}
}

// buildGroup validates group shape before any upstream call: minimum size
// two, no duplicate documents.
func buildGroup(seeds []models.StudentSeed) (*models.SiblingGroup, error) {
	if len(seeds) < 2 {
		return nil, appErrors.ErrGroupTooSmall
	}
	group := &models.SiblingGroup{Students: make([]*models.StudentRecord, len(seeds))}
	for i, seed := range seeds {
		group.Students[i] = &models.StudentRecord{
			ID:         uuid.NewString(),
			ExternalID: seed.ExternalID,
			Document:   seed.Document,
			FullName:   seed.FullName,
			CreatedAt:  time.Now().UTC(),
		}
	}
	if group.HasDuplicateDocuments() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate ID documents within group")
	}
	return group, nil
}
