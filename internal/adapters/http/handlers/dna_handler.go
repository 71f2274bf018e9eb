package handlers

import (
	"errors"

	"dna-erp-po/internal/core/domain"
	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/services"
	"dna-erp-po/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DNAHandler handles approval ruleset endpoints
type DNAHandler struct {
	dnaService *services.DNAService
}

// NewDNAHandler creates a new DNA handler
func NewDNAHandler(dnaService *services.DNAService) *DNAHandler {
	return &DNAHandler{dnaService: dnaService}
}

// Get returns the active ruleset
// @Summary Get approval ruleset
// @Description Get the currently active approval thresholds and settings
// @Tags DNA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dna [get]
func (h *DNAHandler) Get(c *fiber.Ctx) error {
	return response.Success(c, "Ruleset retrieved successfully", fiber.Map{
		"ruleset": h.dnaService.Ruleset(),
		"path":    h.dnaService.Path(),
	})
}

// Update replaces the active ruleset
// @Summary Update approval ruleset
// @Description Validate and persist a new approval ruleset. Director role or above.
// @Tags DNA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dna.Ruleset true "New ruleset"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /dna [put]
func (h *DNAHandler) Update(c *fiber.Ctx) error {
	var rs dna.Ruleset
	if err := c.BodyParser(&rs); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.dnaService.Save(&rs); err != nil {
		if errors.Is(err, domain.ErrDNAInvalid) {
			return response.UnprocessableEntity(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save ruleset")
	}

	return response.Success(c, "Ruleset updated successfully", fiber.Map{
		"ruleset": h.dnaService.Ruleset(),
	})
}

// Reload re-reads the ruleset from disk
// @Summary Reload approval ruleset
// @Description Re-read the ruleset file from disk, replacing the in-memory copy
// @Tags DNA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /dna/reload [post]
func (h *DNAHandler) Reload(c *fiber.Ctx) error {
	rs, err := h.dnaService.Reload()
	if err != nil {
		return response.InternalServerError(c, "Failed to reload ruleset")
	}

	return response.Success(c, "Ruleset reloaded successfully", fiber.Map{
		"ruleset": rs,
	})
}
