package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diegocaceres21/saae-discount-api/internal/dto"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
	"github.com/diegocaceres21/saae-discount-api/pkg/response"
)

// PromptHandler exposes the operator side of suspended pipeline runs.
type PromptHandler struct {
	broker *service.PromptBroker
}

// NewPromptHandler creates a new handler.
func NewPromptHandler(broker *service.PromptBroker) *PromptHandler {
	return &PromptHandler{broker: broker}
}

// List godoc
// @Summary List pending operator prompts
// @Tags Prompts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /prompts [get]
func (h *PromptHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.broker.Pending(), nil)
}

// ResolvePayment godoc
// @Summary Answer a manual-payment prompt
// @Description Supplies the payment data the kardex extraction could not find. An empty body confirms "no payment".
// @Tags Prompts
// @Accept json
// @Produce json
// @Param id path string true "Prompt ID"
// @Param payload body dto.ResolvePaymentRequest true "Payment entry"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /prompts/{id}/payment [post]
func (h *PromptHandler) ResolvePayment(c *gin.Context) {
	var req dto.ResolvePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	entry := models.ManualPaymentEntry{
		Reference: req.Reference,
		Plan:      req.Plan,
		Amount:    req.Amount,
	}
	if err := h.broker.ResolvePayment(c.Param("id"), entry); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResolveCareer godoc
// @Summary Answer a career prompt with one of its candidates
// @Tags Prompts
// @Accept json
// @Produce json
// @Param id path string true "Prompt ID"
// @Param payload body dto.ResolveCareerRequest true "Career choice"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /prompts/{id}/career [post]
func (h *PromptHandler) ResolveCareer(c *gin.Context) {
	var req dto.ResolveCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid career payload"))
		return
	}

	if err := h.broker.ResolveCareer(c.Param("id"), req.CareerID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Cancel godoc
// @Summary Cancel a prompt and abort its batch
// @Tags Prompts
// @Produce json
// @Param id path string true "Prompt ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /prompts/{id} [delete]
func (h *PromptHandler) Cancel(c *gin.Context) {
	if err := h.broker.Cancel(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
