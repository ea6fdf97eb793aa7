package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
	"github.com/diegocaceres21/saae-discount-api/pkg/response"
)

type catalogRepoStub struct {
	careers  []models.CareerCatalogEntry
	tiers    []models.DiscountTier
	upserted *models.CareerCatalogEntry
}

func (s *catalogRepoStub) ListCareers(ctx context.Context) ([]models.CareerCatalogEntry, error) {
	return s.careers, nil
}

func (s *catalogRepoStub) UpsertCareer(ctx context.Context, entry *models.CareerCatalogEntry) error {
	s.upserted = entry
	return nil
}

func (s *catalogRepoStub) ListTiers(ctx context.Context) ([]models.DiscountTier, error) {
	return s.tiers, nil
}

func (s *catalogRepoStub) UpsertTier(ctx context.Context, tier *models.DiscountTier) error {
	return nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newCatalogHandlerForTest(repo *catalogRepoStub) *CatalogHandler {
	svc := service.NewCatalogService(repo, nil, nil, zap.NewNop())
	return NewCatalogHandler(svc)
}

func TestCatalogHandlerListCareers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandlerForTest(&catalogRepoStub{
		careers: []models.CareerCatalogEntry{{ID: "c1", Name: "Derecho", CreditValue: 80}},
	})

	c, w := newGinContext(http.MethodGet, "/catalog/careers", nil)
	handler.ListCareers(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestCatalogHandlerUpsertCareer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &catalogRepoStub{}
	handler := newCatalogHandlerForTest(repo)

	payload, _ := json.Marshal(dto.UpsertCareerRequest{
		Name:        "Ingeniería Informática",
		CreditValue: 120,
	})
	c, w := newGinContext(http.MethodPut, "/catalog/careers", payload)
	handler.UpsertCareer(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "Ingenieria Informatica", repo.upserted.Name)
}

func TestCatalogHandlerUpsertCareerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandlerForTest(&catalogRepoStub{})

	payload, _ := json.Marshal(dto.UpsertCareerRequest{Name: "Derecho"})
	c, w := newGinContext(http.MethodPut, "/catalog/careers", payload)
	handler.UpsertCareer(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestCatalogHandlerUpsertTier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandlerForTest(&catalogRepoStub{})

	payload, _ := json.Marshal(dto.UpsertTierRequest{Position: 1, Percentage: 0.25})
	c, w := newGinContext(http.MethodPut, "/catalog/tiers", payload)
	handler.UpsertTier(c)

	require.Equal(t, http.StatusOK, w.Code)
}
