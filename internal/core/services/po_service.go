package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/core/domain"
	"dna-erp-po/internal/core/rules"

	"gorm.io/gorm"
)

// POService executes the purchase order lifecycle: it loads snapshots,
// consults the rules core, and applies the authorized transition through
// the status-guarded repository update. All rule decisions live in the
// rules package; this layer owns the side effects.
type POService struct {
	poRepo   repositories.PORepository
	userRepo repositories.UserRepository
	logRepo  repositories.ApprovalLogRepository
	dna      *DNAService
}

// NewPOService creates a new purchase order service
func NewPOService(
	poRepo repositories.PORepository,
	userRepo repositories.UserRepository,
	logRepo repositories.ApprovalLogRepository,
	dna *DNAService,
) *POService {
	return &POService{
		poRepo:   poRepo,
		userRepo: userRepo,
		logRepo:  logRepo,
		dna:      dna,
	}
}

// CreatePOInput represents create input
type CreatePOInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Vendor      string  `json:"vendor,omitempty"`
}

// ApprovalInfo is the resolved threshold context for a PO, derived from
// the current ruleset
type ApprovalInfo struct {
	Level        int         `json:"level"`
	RequiredRole domain.Role `json:"required_role"`
	SLAHours     int         `json:"sla_hours"`
	SLADueAt     *time.Time  `json:"sla_due_at,omitempty"`
	Overdue      bool        `json:"overdue"`
}

// Create creates a new purchase order in DRAFT and logs the creation
func (s *POService) Create(ctx context.Context, input *CreatePOInput, creatorID uint) (*models.PurchaseOrder, error) {
	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	year := time.Now().Year()
	seq, err := s.poRepo.MaxSequence(ctx, year)
	if err != nil {
		return nil, err
	}

	po := &models.PurchaseOrder{
		PONumber:    fmt.Sprintf("PO-%d-%03d", year, seq+1),
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Vendor:      input.Vendor,
		Status:      string(domain.StatusDraft),
		CreatedByID: creatorID,
	}

	entry := &models.ApprovalLog{
		UserID: creatorID,
		Action: rules.LogActionCreated,
	}

	if err := s.poRepo.Create(ctx, po, entry); err != nil {
		return nil, err
	}

	log.Printf("✅ PO created: %s (amount: %.0f)", po.PONumber, po.Amount)
	return s.poRepo.GetByID(ctx, po.ID)
}

// GetByID gets a purchase order with its audit trail
func (s *POService) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	po, err := s.poRepo.GetByIDWithLogs(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPONotFound
		}
		return nil, err
	}
	return po, nil
}

// ListPOInput represents list input
type ListPOInput struct {
	Status      string
	CreatedByID *uint
	Offset      int
	Limit       int
}

// List lists purchase orders, optionally filtered by status or creator
func (s *POService) List(ctx context.Context, input *ListPOInput) ([]*models.PurchaseOrder, int64, error) {
	if input.Status != "" && !domain.Status(input.Status).IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}

	filter := repositories.POFilter{
		Status:      input.Status,
		CreatedByID: input.CreatedByID,
	}
	return s.poRepo.List(ctx, filter, input.Offset, input.Limit)
}

// UpdatePOInput represents modify input; nil fields are left untouched
type UpdatePOInput struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Vendor      *string  `json:"vendor,omitempty"`
}

// Update modifies PO fields in place, subject to the edit guard
func (s *POService) Update(ctx context.Context, id uint, input *UpdatePOInput) (*models.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPONotFound
		}
		return nil, err
	}

	if err := rules.CanModify(domain.Status(po.Status), s.dna.Ruleset()); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Amount != nil {
		if *input.Amount < 0 {
			return nil, fmt.Errorf("%w: amount must be non-negative", domain.ErrInvalidInput)
		}
		fields["amount"] = *input.Amount
	}
	if input.Vendor != nil {
		fields["vendor"] = *input.Vendor
	}

	if len(fields) > 0 {
		if err := s.poRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.poRepo.GetByID(ctx, id)
}

// Delete removes a purchase order and its audit trail. APPROVED orders
// are never deleted.
func (s *POService) Delete(ctx context.Context, id uint) error {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPONotFound
		}
		return err
	}

	if err := rules.CanDelete(domain.Status(po.Status)); err != nil {
		return err
	}

	if err := s.poRepo.DeleteWithLogs(ctx, id); err != nil {
		// The SQL guard catches an approval that lands between our read
		// and the delete.
		if errors.Is(err, domain.ErrStatusConflict) {
			return domain.ErrPOUndeletable
		}
		return err
	}

	log.Printf("🗑️ PO deleted: %s", po.PONumber)
	return nil
}

// Transition executes one lifecycle action (submit/approve/reject/revise)
// as the given actor. The rules core authorizes the transition; the
// repository applies it with a status-guarded update so two racing
// requests can never both win. On any error the order and its audit trail
// are untouched.
func (s *POService) Transition(ctx context.Context, id uint, actorID uint, action domain.Action, comment string) (*models.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPONotFound
		}
		return nil, err
	}

	actorRow, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	actor := rules.Actor{ID: actorRow.ID, Role: domain.Role(actorRow.Role)}
	tr, err := rules.Decide(po.ToDomain(), actor, action, comment, s.dna.Ruleset())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := repositories.StatusUpdate{ToStatus: string(tr.To)}
	if tr.SetSubmittedAt {
		update.SetSubmittedAt = &now
	}
	if tr.SetResolvedBy {
		update.SetResolvedBy = &actor.ID
		update.SetResolvedAt = &now
	}
	update.ClearResolution = tr.ClearResolution

	entry := &models.ApprovalLog{
		POID:    po.ID,
		UserID:  actor.ID,
		Action:  tr.LogAction,
		Comment: comment,
	}

	if err := s.poRepo.TransitionStatus(ctx, po.ID, string(tr.From), update, entry); err != nil {
		return nil, err
	}

	log.Printf("✅ PO %s: %s → %s by user %d", po.PONumber, tr.From, tr.To, actor.ID)
	return s.poRepo.GetByIDWithLogs(ctx, po.ID)
}

// AuditTrail returns the append-only action history of a PO, newest first
func (s *POService) AuditTrail(ctx context.Context, id uint) ([]*models.ApprovalLog, error) {
	if _, err := s.poRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPONotFound
		}
		return nil, err
	}
	return s.logRepo.GetByPOID(ctx, id)
}

// ApprovalInfoFor resolves the threshold context for a PO under the
// current ruleset, including the SLA due time for pending orders
func (s *POService) ApprovalInfoFor(po *models.PurchaseOrder) *ApprovalInfo {
	rs := s.dna.Ruleset()
	band := rules.Resolve(po.Amount, rs.Thresholds)

	info := &ApprovalInfo{
		Level:        band.Level,
		RequiredRole: band.Role,
		SLAHours:     band.SLAHours,
	}

	if po.Status == string(domain.StatusPendingApproval) && po.SubmittedAt != nil {
		due := po.SubmittedAt.Add(time.Duration(band.SLAHours) * time.Hour)
		info.SLADueAt = &due
		info.Overdue = time.Now().After(due)
	}

	return info
}
