package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	"github.com/diegocaceres21/saae-discount-api/pkg/export"
	"github.com/diegocaceres21/saae-discount-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Format       models.ReportFormat
}

// ExportService builds registry datasets and persists rendered files. Totals
// columns are recomputed from the stored record fields at render time.
type ExportService struct {
	registry registryReader
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(registry registryReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		registry: registry,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the dataset for the job's request and stores the rendered
// export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	request, records, err := s.registry.GetRequest(ctx, job.RequestID)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", job.RequestID, err)
	}

	dataset := buildRegistryDataset(records)
	title := fmt.Sprintf("Registro de descuentos %s (%s)", request.TargetTerms, request.Mode)

	var payload []byte
	switch job.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("registro_%s_%s.%s", job.RequestID, time.Now().UTC().Format("20060102T150405"), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	return &ExportResult{RelativePath: relPath, Format: job.Format}, nil
}

// SignDownload issues a download token for a finished job's file.
func (s *ExportService) SignDownload(jobID, relPath string) (string, time.Time, error) {
	return s.signer.Generate(jobID, relPath)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open exposes stored files for download streaming.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes stored files older than the TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func buildRegistryDataset(records []models.StudentRecord) export.Dataset {
	headers := []string{
		"documento", "nombre", "carrera", "creditos", "valor_credito",
		"descuento", "colegiatura", "colegiatura_descuento", "tecnologia",
		"total_semestre", "total_descuento", "pagado", "saldo",
		"plan", "referencia", "comentario",
	}
	numeric := []string{
		"creditos", "valor_credito", "descuento", "colegiatura",
		"colegiatura_descuento", "tecnologia", "total_semestre",
		"total_descuento", "pagado", "saldo",
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		totals := ComputeTotals(rec)
		rows = append(rows, map[string]string{
			"documento":             rec.Document,
			"nombre":                rec.FullName,
			"carrera":               rec.Career,
			"creditos":              fmt.Sprintf("%d", rec.TotalCredits),
			"valor_credito":         fmt.Sprintf("%.2f", rec.CreditValue),
			"descuento":             fmt.Sprintf("%.0f%%", rec.DiscountPct*100),
			"colegiatura":           fmt.Sprintf("%.2f", totals.AcademicFeeOriginal),
			"colegiatura_descuento": fmt.Sprintf("%.2f", totals.AcademicFeeDiscounted),
			"tecnologia":            fmt.Sprintf("%.2f", totals.TechnologyFee),
			"total_semestre":        fmt.Sprintf("%.2f", totals.TotalSemesterOriginal),
			"total_descuento":       fmt.Sprintf("%.2f", totals.TotalSemesterDiscounted),
			"pagado":                fmt.Sprintf("%.2f", rec.AmountPaid),
			"saldo":                 fmt.Sprintf("%.2f", totals.BalanceDiscounted),
			"plan":                  rec.PaymentPlan,
			"referencia":            rec.PaymentReference,
			"comentario":            rec.Comment,
		})
	}

	return export.Dataset{Headers: headers, NumericHeaders: numeric, Rows: rows}
}
