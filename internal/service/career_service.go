package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

// CareerService matches an extracted career name against the tariff catalog.
// Mismatches suspend the batch for operator disambiguation, one student at a
// time; a cancel there aborts the whole batch.
type CareerService struct {
	prompter Prompter
	logger   *zap.Logger
}

// NewCareerService constructs a CareerService.
func NewCareerService(prompter Prompter, logger *zap.Logger) *CareerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{prompter: prompter, logger: logger}
}

// Reconcile resolves the record's career against the catalog. Matching is
// exact equality of diacritic-stripped names. On an operator selection the
// record's career is overwritten with the catalog name.
func (s *CareerService) Reconcile(ctx context.Context, rec *models.StudentRecord, catalog []models.CareerCatalogEntry) (models.CareerCatalogEntry, error) {
	name := NormalizeCareerName(rec.Career)
	for _, entry := range catalog {
		if entry.Name == name {
			rec.Career = entry.Name
			return entry, nil
		}
	}

	if strings.TrimSpace(name) == "" {
		return models.CareerCatalogEntry{}, appErrors.Clone(appErrors.ErrCareerNotInCatalog,
			fmt.Sprintf("kardex of %s carries no career label", rec.FullName))
	}

	s.logger.Info("career not in catalog, requesting operator selection",
		zap.String("student", rec.FullName),
		zap.String("career", name))

	choice, err := s.prompter.SelectCareer(ctx, rec.FullName, name, catalog)
	if err != nil {
		return models.CareerCatalogEntry{}, err
	}

	rec.Career = choice.Name
	return choice, nil
}
