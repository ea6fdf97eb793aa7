package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
	"github.com/diegocaceres21/saae-discount-api/pkg/response"
)

// CatalogHandler wires career/tariff catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListCareers godoc
// @Summary List catalog careers with tariffs
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/careers [get]
func (h *CatalogHandler) ListCareers(c *gin.Context) {
	careers, err := h.service.Careers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, careers, nil)
}

// UpsertCareer godoc
// @Summary Create or update a catalog career
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.UpsertCareerRequest true "Career payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog/careers [put]
func (h *CatalogHandler) UpsertCareer(c *gin.Context) {
	var req dto.UpsertCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid career payload"))
		return
	}

	entry, err := h.service.UpsertCareer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ListTiers godoc
// @Summary List the discount tier scale
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/tiers [get]
func (h *CatalogHandler) ListTiers(c *gin.Context) {
	tiers, err := h.service.Tiers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tiers, nil)
}

// UpsertTier godoc
// @Summary Create or update a discount tier
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.UpsertTierRequest true "Tier payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog/tiers [put]
func (h *CatalogHandler) UpsertTier(c *gin.Context) {
	var req dto.UpsertTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tier payload"))
		return
	}

	tier, err := h.service.UpsertTier(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tier, nil)
}
