package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
	"github.com/diegocaceres21/saae-discount-api/pkg/response"
)

// PipelineHandler wires discount pipeline and registry endpoints.
type PipelineHandler struct {
	pipeline *service.PipelineService
	registry *service.RegistryService
}

// NewPipelineHandler creates a new handler.
func NewPipelineHandler(pipeline *service.PipelineService, registry *service.RegistryService) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline, registry: registry}
}

// RunIndividual godoc
// @Summary Run the pipeline for a manually selected group
// @Description Processes a sibling group for one target term. The call blocks while operator prompts are pending.
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param payload body dto.IndividualRunRequest true "Run payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /pipeline/individual [post]
func (h *PipelineHandler) RunIndividual(c *gin.Context) {
	var req dto.IndividualRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}

	records, err := h.pipeline.RunIndividual(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, records)
}

// RunBulk godoc
// @Summary Run the pipeline for spreadsheet-derived groups
// @Description Processes sibling groups identified by document fragments. Groups fail independently; an operator cancel aborts the whole batch.
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param payload body dto.BulkRunRequest true "Bulk run payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pipeline/bulk [post]
func (h *PipelineHandler) RunBulk(c *gin.Context) {
	var req dto.BulkRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	results, err := h.pipeline.RunBulk(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.BulkRunResponse{Results: results}, nil)
}

// Reorder godoc
// @Summary Swap tied adjacent students in a ranked group
// @Description Exchanges two adjacent students with equal credit loads and re-allocates the discount scale. Not persisted.
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param payload body dto.ReorderRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pipeline/reorder [post]
func (h *PipelineHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}

	res, err := h.pipeline.Reorder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ListRequests godoc
// @Summary List committed discount requests
// @Tags Registry
// @Produce json
// @Param mode query string false "Filter by mode (individual|bulk)"
// @Param term query string false "Filter by target term"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registry/requests [get]
func (h *PipelineHandler) ListRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := models.RequestFilter{
		Mode:     models.RequestMode(c.Query("mode")),
		Term:     c.Query("term"),
		Page:     page,
		PageSize: pageSize,
	}

	requests, pagination, err := h.registry.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, pagination)
}

// GetRequest godoc
// @Summary Get one committed request with derived totals
// @Tags Registry
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registry/requests/{id} [get]
func (h *PipelineHandler) GetRequest(c *gin.Context) {
	request, records, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"request": request, "records": records}, nil)
}
