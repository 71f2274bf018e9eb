package repositories

import (
	"context"
	"fmt"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/core/domain"

	"gorm.io/gorm"
)

// poRepository implements PORepository
type poRepository struct {
	db *gorm.DB
}

// NewPORepository creates a new purchase order repository
func NewPORepository(db *gorm.DB) PORepository {
	return &poRepository{db: db}
}

// Create inserts the PO and its "Created" log entry in one transaction
func (r *poRepository) Create(ctx context.Context, po *models.PurchaseOrder, log *models.ApprovalLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		log.POID = po.ID
		return tx.Create(log).Error
	})
}

func (r *poRepository) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("ApprovedBy").
		First(&po, id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *poRepository) GetByIDWithLogs(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("ApprovedBy").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Logs.User").
		First(&po, id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *poRepository) List(ctx context.Context, filter POFilter, offset, limit int) ([]*models.PurchaseOrder, int64, error) {
	var pos []*models.PurchaseOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&models.PurchaseOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedByID != nil {
		q = q.Where("created_by_id = ?", *filter.CreatedByID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Preload("CreatedBy").
		Preload("ApprovedBy").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error

	return pos, total, err
}

// MaxSequence scans the year's PO numbers for the highest suffix. Counting
// rows instead would reuse a number after a deletion and trip the unique
// index on po_number.
func (r *poRepository) MaxSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("PO-%d-", year)
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("po_number LIKE ?", prefix+"%").
		Select("COALESCE(MAX(CAST(SUBSTRING(po_number, ?) AS UNSIGNED)), 0)", len(prefix)+1).
		Scan(&max).Error
	return max, err
}

func (r *poRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// TransitionStatus performs the status-guarded conditional update: the row
// is only touched while its stored status still equals fromStatus, so of
// two racing transitions exactly one wins. The loser gets
// domain.ErrStatusConflict. The audit log entry rides in the same
// transaction - no transition without its log, no log without its
// transition.
func (r *poRepository) TransitionStatus(ctx context.Context, id uint, fromStatus string, update StatusUpdate, log *models.ApprovalLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{"status": update.ToStatus}
		if update.SetSubmittedAt != nil {
			fields["submitted_at"] = update.SetSubmittedAt
		}
		if update.SetResolvedBy != nil {
			fields["approved_by_id"] = update.SetResolvedBy
			fields["resolved_at"] = update.SetResolvedAt
		}
		if update.ClearResolution {
			fields["approved_by_id"] = nil
			fields["resolved_at"] = nil
			fields["sla_breached_at"] = nil
		}

		res := tx.Model(&models.PurchaseOrder{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStatusConflict
		}

		return tx.Create(log).Error
	})
}

// DeleteWithLogs removes the PO and its audit trail together. The status
// guard is enforced in SQL as well, so a concurrent approval cannot slip a
// deletion past the APPROVED terminal state.
func (r *poRepository) DeleteWithLogs(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status <> ?", id, string(domain.StatusApproved)).
			Delete(&models.PurchaseOrder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStatusConflict
		}

		return tx.Where("po_id = ?", id).Delete(&models.ApprovalLog{}).Error
	})
}

// ListPendingUnbreached returns pending orders not yet flagged for SLA
// breach. The due time depends on each order's amount band, so the caller
// computes overdueness against the ruleset.
func (r *poRepository) ListPendingUnbreached(ctx context.Context) ([]*models.PurchaseOrder, error) {
	var pos []*models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusPendingApproval)).
		Where("submitted_at IS NOT NULL").
		Where("sla_breached_at IS NULL").
		Find(&pos).Error
	return pos, err
}

func (r *poRepository) MarkSLABreached(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND sla_breached_at IS NULL", id).
		Update("sla_breached_at", &at).Error
}

func (r *poRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// approvalLogRepository implements ApprovalLogRepository
type approvalLogRepository struct {
	db *gorm.DB
}

// NewApprovalLogRepository creates a new approval log repository
func NewApprovalLogRepository(db *gorm.DB) ApprovalLogRepository {
	return &approvalLogRepository{db: db}
}

func (r *approvalLogRepository) GetByPOID(ctx context.Context, poID uint) ([]*models.ApprovalLog, error) {
	var logs []*models.ApprovalLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("po_id = ?", poID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
