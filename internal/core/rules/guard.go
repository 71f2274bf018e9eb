package rules

import (
	"fmt"

	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/domain"
)

// Actor identifies who is attempting a lifecycle action
type Actor struct {
	ID   uint
	Role domain.Role
}

// Transition is an authorized lifecycle transition. It describes the
// effects the executor must apply; the guard itself mutates nothing.
type Transition struct {
	From      domain.Status
	To        domain.Status
	LogAction string

	// Field effects
	SetSubmittedAt  bool // submit: submittedAt = now
	SetResolvedBy   bool // approve/reject: approvedById = actor, resolvedAt = now
	ClearResolution bool // revise: approvedById, resolvedAt = nil
}

// Log actions recorded in the audit trail, one per successful transition
const (
	LogActionCreated   = "Created PO"
	LogActionSubmitted = "Submitted for approval"
	LogActionApproved  = "Approved"
	LogActionRejected  = "Rejected"
	LogActionRevised   = "Revised - returned to draft"
)

// Decide checks whether the actor may perform the action on the order in
// its current status under the given ruleset. It returns the authorized
// transition, or an error from the lifecycle taxonomy: ErrInvalidState,
// ErrInsufficientRole, or ErrPolicyViolation. Any error means no state
// change and no log entry.
func Decide(po *domain.PurchaseOrder, actor Actor, action domain.Action, comment string, rs *dna.Ruleset) (*Transition, error) {
	switch action {
	case domain.ActionSubmit:
		return decideSubmit(po)
	case domain.ActionApprove:
		return decideApprove(po, actor, rs)
	case domain.ActionReject:
		return decideReject(po, actor, comment, rs)
	case domain.ActionRevise:
		return decideRevise(po, rs)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
}

func decideSubmit(po *domain.PurchaseOrder) (*Transition, error) {
	if po.Status != domain.StatusDraft && po.Status != domain.StatusRejected {
		return nil, fmt.Errorf("%w: only DRAFT or REJECTED orders can be submitted (current: %s)",
			domain.ErrInvalidState, po.Status)
	}

	return &Transition{
		From:           po.Status,
		To:             domain.StatusPendingApproval,
		LogAction:      LogActionSubmitted,
		SetSubmittedAt: true,
	}, nil
}

func decideApprove(po *domain.PurchaseOrder, actor Actor, rs *dna.Ruleset) (*Transition, error) {
	if po.Status != domain.StatusPendingApproval {
		return nil, fmt.Errorf("%w: only PENDING_APPROVAL orders can be approved (current: %s)",
			domain.ErrInvalidState, po.Status)
	}

	if !CanApprove(actor.Role, po.Amount, rs.Thresholds) {
		return nil, fmt.Errorf("%w: role %s cannot approve amount %.0f (requires %s)",
			domain.ErrInsufficientRole, actor.Role, po.Amount, RequiredRole(po.Amount, rs.Thresholds))
	}

	if actor.ID == po.CreatedByID && !rs.IsSelfApprovalAllowed() {
		return nil, fmt.Errorf("%w: %w", domain.ErrPolicyViolation, domain.ErrSelfApprovalDisabled)
	}

	return &Transition{
		From:          po.Status,
		To:            domain.StatusApproved,
		LogAction:     LogActionApproved,
		SetResolvedBy: true,
	}, nil
}

func decideReject(po *domain.PurchaseOrder, actor Actor, comment string, rs *dna.Ruleset) (*Transition, error) {
	if po.Status != domain.StatusPendingApproval {
		return nil, fmt.Errorf("%w: only PENDING_APPROVAL orders can be rejected (current: %s)",
			domain.ErrInvalidState, po.Status)
	}

	if !CanApprove(actor.Role, po.Amount, rs.Thresholds) {
		return nil, fmt.Errorf("%w: role %s cannot reject amount %.0f (requires %s)",
			domain.ErrInsufficientRole, actor.Role, po.Amount, RequiredRole(po.Amount, rs.Thresholds))
	}

	if comment == "" && rs.RequireCommentOnReject() {
		return nil, fmt.Errorf("%w: %w", domain.ErrPolicyViolation, domain.ErrCommentRequired)
	}

	return &Transition{
		From:          po.Status,
		To:            domain.StatusRejected,
		LogAction:     LogActionRejected,
		SetResolvedBy: true,
	}, nil
}

func decideRevise(po *domain.PurchaseOrder, rs *dna.Ruleset) (*Transition, error) {
	if po.Status != domain.StatusRejected {
		return nil, fmt.Errorf("%w: only REJECTED orders can be revised (current: %s)",
			domain.ErrInvalidState, po.Status)
	}

	if !rs.IsRevisionAllowed() {
		return nil, fmt.Errorf("%w: %w", domain.ErrPolicyViolation, domain.ErrRevisionDisabled)
	}

	return &Transition{
		From:            po.Status,
		To:              domain.StatusDraft,
		LogAction:       LogActionRevised,
		ClearResolution: true,
	}, nil
}

// CanModify checks the edit guard: APPROVED orders are immutable unless
// the modifyAfterApproval policy is enabled.
func CanModify(status domain.Status, rs *dna.Ruleset) error {
	if status == domain.StatusApproved && !rs.CanModifyAfterApproval() {
		return domain.ErrPOImmutable
	}
	return nil
}

// CanDelete checks the deletion guard: APPROVED orders are never deleted,
// regardless of policy.
func CanDelete(status domain.Status) error {
	if status == domain.StatusApproved {
		return domain.ErrPOUndeletable
	}
	return nil
}
