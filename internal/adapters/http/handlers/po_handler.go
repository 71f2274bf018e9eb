package handlers

import (
	"errors"

	"dna-erp-po/internal/core/domain"
	"dna-erp-po/internal/core/services"
	"dna-erp-po/internal/pkg/pagination"
	"dna-erp-po/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// POHandler handles purchase order endpoints
type POHandler struct {
	poService *services.POService
}

// NewPOHandler creates a new purchase order handler
func NewPOHandler(poService *services.POService) *POHandler {
	return &POHandler{poService: poService}
}

// ActionRequest carries the optional comment for lifecycle actions
type ActionRequest struct {
	Comment string `json:"comment"`
}

// Create handles PO creation
// @Summary Create purchase order
// @Description Create a new purchase order in DRAFT status
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePOInput true "Purchase order data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /purchase-orders [post]
func (h *POHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreatePOInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Amount < 0 {
		return response.BadRequest(c, "Amount must be non-negative")
	}

	po, err := h.poService.Create(c.Context(), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.Unauthorized(c, "User not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create purchase order")
		}
	}

	return response.Created(c, "Purchase order created successfully", fiber.Map{
		"purchase_order": po,
		"approval":       h.poService.ApprovalInfoFor(po),
	})
}

// List handles PO listing
// @Summary List purchase orders
// @Description List purchase orders with optional status and creator filters
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(DRAFT, PENDING_APPROVAL, APPROVED, REJECTED)
// @Param mine query bool false "Only orders created by the current user"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /purchase-orders [get]
func (h *POHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	input := &services.ListPOInput{
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if c.QueryBool("mine", false) {
		input.CreatedByID = &userID
	}

	pos, total, err := h.poService.List(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to list purchase orders")
	}

	items := make([]fiber.Map, 0, len(pos))
	for _, po := range pos {
		items = append(items, fiber.Map{
			"purchase_order": po,
			"approval":       h.poService.ApprovalInfoFor(po),
		})
	}

	return response.Success(c, "Purchase orders retrieved successfully", fiber.Map{
		"purchase_orders": items,
		"pagination":      pagination.GetMeta(params, total),
	})
}

// GetByID handles PO detail retrieval
// @Summary Get purchase order
// @Description Get a purchase order with its full audit trail
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /purchase-orders/{id} [get]
func (h *POHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid purchase order ID")
	}

	po, err := h.poService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPONotFound) {
			return response.NotFound(c, "Purchase order not found")
		}
		return response.InternalServerError(c, "Failed to get purchase order")
	}

	return response.Success(c, "Purchase order retrieved successfully", fiber.Map{
		"purchase_order": po,
		"approval":       h.poService.ApprovalInfoFor(po),
	})
}

// Update handles PO field edits
// @Summary Update purchase order
// @Description Update editable fields of a purchase order
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Param body body services.UpdatePOInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /purchase-orders/{id} [put]
func (h *POHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid purchase order ID")
	}

	var req services.UpdatePOInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	po, err := h.poService.Update(c.Context(), uint(id), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPONotFound):
			return response.NotFound(c, "Purchase order not found")
		case errors.Is(err, domain.ErrPOImmutable):
			return response.BadRequest(c, "Approved purchase orders cannot be modified")
		case errors.Is(err, domain.ErrInvalidState):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update purchase order")
		}
	}

	return response.Success(c, "Purchase order updated successfully", fiber.Map{
		"purchase_order": po,
		"approval":       h.poService.ApprovalInfoFor(po),
	})
}

// Delete handles PO deletion
// @Summary Delete purchase order
// @Description Delete a purchase order and its audit trail. Approved orders cannot be deleted.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /purchase-orders/{id} [delete]
func (h *POHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid purchase order ID")
	}

	if err := h.poService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrPONotFound):
			return response.NotFound(c, "Purchase order not found")
		case errors.Is(err, domain.ErrPOUndeletable):
			return response.BadRequest(c, "Approved purchase orders cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete purchase order")
		}
	}

	return response.Success(c, "Purchase order deleted successfully", nil)
}

// GetLogs handles audit trail retrieval
// @Summary Get purchase order audit trail
// @Description Get the append-only action history of a purchase order, newest first
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /purchase-orders/{id}/logs [get]
func (h *POHandler) GetLogs(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid purchase order ID")
	}

	logs, err := h.poService.AuditTrail(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPONotFound) {
			return response.NotFound(c, "Purchase order not found")
		}
		return response.InternalServerError(c, "Failed to get audit trail")
	}

	return response.Success(c, "Audit trail retrieved successfully", fiber.Map{
		"logs": logs,
	})
}

// Submit moves a DRAFT order into PENDING_APPROVAL
// @Summary Submit purchase order
// @Description Submit a draft purchase order for approval
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /purchase-orders/{id}/submit [post]
func (h *POHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionSubmit)
}

// Approve approves a pending order
// @Summary Approve purchase order
// @Description Approve a pending purchase order. Requires sufficient role for the amount.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Param body body ActionRequest false "Optional comment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /purchase-orders/{id}/approve [post]
func (h *POHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionApprove)
}

// Reject rejects a pending order
// @Summary Reject purchase order
// @Description Reject a pending purchase order. Requires sufficient role for the amount.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Param body body ActionRequest false "Comment (required when the ruleset demands one)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /purchase-orders/{id}/reject [post]
func (h *POHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionReject)
}

// Revise returns a rejected order to DRAFT for revision
// @Summary Revise purchase order
// @Description Return a rejected purchase order to draft for revision
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase order ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /purchase-orders/{id}/revise [post]
func (h *POHandler) Revise(c *fiber.Ctx) error {
	return h.transition(c, domain.ActionRevise)
}

// transition runs one lifecycle action and maps the rule errors to HTTP
func (h *POHandler) transition(c *fiber.Ctx, action domain.Action) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid purchase order ID")
	}

	// Body is optional for actions without comments
	var req ActionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	po, err := h.poService.Transition(c.Context(), uint(id), userID, action, req.Comment)
	if err != nil {
		return h.mapTransitionError(c, err)
	}

	return response.Success(c, "Purchase order "+string(action)+" successful", fiber.Map{
		"purchase_order": po,
		"approval":       h.poService.ApprovalInfoFor(po),
	})
}

func (h *POHandler) mapTransitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrPONotFound):
		return response.NotFound(c, "Purchase order not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.Unauthorized(c, "User not found")
	case errors.Is(err, domain.ErrStatusConflict):
		return response.Conflict(c, "Purchase order was changed by another request, please reload")
	case errors.Is(err, domain.ErrInsufficientRole):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrSelfApprovalDisabled):
		return response.Forbidden(c, "You cannot approve your own purchase order")
	case errors.Is(err, domain.ErrCommentRequired):
		return response.UnprocessableEntity(c, "A comment is required when rejecting")
	case errors.Is(err, domain.ErrRevisionDisabled):
		return response.Forbidden(c, "Revision of rejected orders is disabled")
	case errors.Is(err, domain.ErrPolicyViolation):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Failed to process purchase order action")
	}
}
