package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
	"github.com/diegocaceres21/saae-discount-api/pkg/jobs"
)

type mockReportStore struct {
	jobsByID map[string]*models.ReportJob
	seq      int
	failed   map[string]string
	deleted  []string
	expired  []models.ReportJob
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{jobsByID: map[string]*models.ReportJob{}, failed: map[string]string{}}
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	m.seq++
	job.ID = fmt.Sprintf("job-%d", m.seq)
	job.CreatedAt = time.Now().UTC()
	m.jobsByID[job.ID] = job
	return nil
}

func (m *mockReportStore) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobsByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockReportStore) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	m.jobsByID[id].Status = models.ReportStatusProcessing
	m.jobsByID[id].StartedAt = &startedAt
	return nil
}

func (m *mockReportStore) MarkDone(ctx context.Context, id, filePath string, finishedAt time.Time) error {
	job := m.jobsByID[id]
	job.Status = models.ReportStatusDone
	job.FilePath = &filePath
	job.FinishedAt = &finishedAt
	return nil
}

func (m *mockReportStore) MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error {
	job := m.jobsByID[id]
	job.Status = models.ReportStatusFailed
	job.ErrorMessage = &message
	job.FinishedAt = &finishedAt
	m.failed[id] = message
	return nil
}

func (m *mockReportStore) ListExpired(ctx context.Context, cutoff time.Time) ([]models.ReportJob, error) {
	return m.expired, nil
}

func (m *mockReportStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.jobsByID, id)
	return nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func newReportForTest(t *testing.T) (*ReportService, *mockReportStore, *mockDispatcher, *mockRegistryReader) {
	t.Helper()
	store := newMockReportStore()
	queue := &mockDispatcher{}
	registry := exportFixture()
	exporter, _ := newExportForTest(t)
	exporter.registry = registry
	svc := NewReportService(store, registry, queue, exporter, zap.NewNop(), ReportServiceConfig{
		ResultTTL:  time.Hour,
		MaxRetries: 3,
	})
	return svc, store, queue, registry
}

func TestReportCreateJobQueues(t *testing.T) {
	svc, store, queue, _ := newReportForTest(t)

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		RequestID: "req-1",
		Format:    models.ReportFormatCSV,
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, "registry_export", queue.enqueued[0].Type)
	assert.Equal(t, "u1", store.jobsByID[resp.ID].CreatedBy)
}

func TestReportCreateJobUnsupportedFormat(t *testing.T) {
	svc, _, _, _ := newReportForTest(t)

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		RequestID: "req-1",
		Format:    models.ReportFormat("xlsx"),
	}, "u1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestReportCreateJobUnknownRequest(t *testing.T) {
	svc, _, _, registry := newReportForTest(t)
	registry.err = sql.ErrNoRows

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		RequestID: "missing",
		Format:    models.ReportFormatCSV,
	}, "u1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestReportCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	svc, store, queue, _ := newReportForTest(t)
	queue.err = errors.New("queue full")

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		RequestID: "req-1",
		Format:    models.ReportFormatCSV,
	}, "u1")
	require.Error(t, err)
	require.Len(t, store.failed, 1)
}

func TestReportHandleJobGeneratesAndMarksDone(t *testing.T) {
	svc, store, _, _ := newReportForTest(t)
	job := &models.ReportJob{RequestID: "req-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	err := svc.HandleJob(context.Background(), jobs.Job{ID: job.ID, Type: "registry_export", Attempt: 1})
	require.NoError(t, err)

	stored := store.jobsByID[job.ID]
	assert.Equal(t, models.ReportStatusDone, stored.Status)
	require.NotNil(t, stored.FilePath)
	assert.True(t, strings.HasSuffix(*stored.FilePath, ".csv"))
}

func TestReportHandleJobRetriesBeforeFailing(t *testing.T) {
	svc, store, _, registry := newReportForTest(t)
	registry.err = errors.New("upstream down")
	job := &models.ReportJob{RequestID: "req-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	// Early attempts return the error without marking the job failed, so the
	// queue retries it.
	err := svc.HandleJob(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.Error(t, err)
	assert.Empty(t, store.failed)

	err = svc.HandleJob(context.Background(), jobs.Job{ID: job.ID, Attempt: 3})
	require.Error(t, err)
	assert.Len(t, store.failed, 1)
	assert.Equal(t, models.ReportStatusFailed, store.jobsByID[job.ID].Status)
}

func TestReportGetStatusSignsFinishedJob(t *testing.T) {
	svc, store, _, _ := newReportForTest(t)
	job := &models.ReportJob{RequestID: "req-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))
	require.NoError(t, store.MarkDone(context.Background(), job.ID, "registro_req-1_x.csv", time.Now().UTC()))

	resp, err := svc.GetStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDone, resp.Status)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "/api/v1/reports/download/"))
	require.NotNil(t, resp.ExpiresAt)
}

func TestReportGetStatusNotFound(t *testing.T) {
	svc, _, _, _ := newReportForTest(t)

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestReportResolveDownload(t *testing.T) {
	svc, store, _, _ := newReportForTest(t)
	job := &models.ReportJob{RequestID: "req-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	require.NoError(t, svc.HandleJob(context.Background(), jobs.Job{ID: job.ID, Attempt: 1}))
	status, err := svc.GetStatus(context.Background(), job.ID)
	require.NoError(t, err)
	token := strings.TrimPrefix(status.DownloadURL, "/api/v1/reports/download/")

	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
}

func TestReportResolveDownloadRejectsBadToken(t *testing.T) {
	svc, _, _, _ := newReportForTest(t)

	_, err := svc.ResolveDownload(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestReportResolveDownloadRejectsUnfinishedJob(t *testing.T) {
	svc, store, _, _ := newReportForTest(t)
	job := &models.ReportJob{RequestID: "req-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	token, _, err := svc.exporter.SignDownload(job.ID, "registro_req-1_x.csv")
	require.NoError(t, err)

	_, err = svc.ResolveDownload(context.Background(), token)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}
