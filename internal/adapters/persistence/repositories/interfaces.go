package repositories

import (
	"context"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
)

// UserRepository defines user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// POFilter narrows PO list queries
type POFilter struct {
	Status      string
	CreatedByID *uint
}

// StatusUpdate carries the field effects of one lifecycle transition
type StatusUpdate struct {
	ToStatus        string
	SetSubmittedAt  *time.Time
	SetResolvedBy   *uint
	SetResolvedAt   *time.Time
	ClearResolution bool
}

// PORepository defines purchase order data access
type PORepository interface {
	Create(ctx context.Context, po *models.PurchaseOrder, log *models.ApprovalLog) error
	GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	GetByIDWithLogs(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	List(ctx context.Context, filter POFilter, offset, limit int) ([]*models.PurchaseOrder, int64, error)
	// MaxSequence returns the highest numeric suffix among PO numbers of
	// the given year, 0 when none exist. Deletions never shrink it, so the
	// next number cannot collide with the unique index.
	MaxSequence(ctx context.Context, year int) (int, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// TransitionStatus updates the PO only if its stored status still equals
	// fromStatus and appends the log entry in the same transaction. Returns
	// domain.ErrStatusConflict when the guard matches no row.
	TransitionStatus(ctx context.Context, id uint, fromStatus string, update StatusUpdate, log *models.ApprovalLog) error
	// DeleteWithLogs removes the PO and its audit log in one transaction,
	// guarded against the APPROVED status at the SQL level.
	DeleteWithLogs(ctx context.Context, id uint) error
	ListPendingUnbreached(ctx context.Context) ([]*models.PurchaseOrder, error)
	MarkSLABreached(ctx context.Context, id uint, at time.Time) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ApprovalLogRepository defines audit log read access (writes happen with
// their transition, inside the PO repository)
type ApprovalLogRepository interface {
	GetByPOID(ctx context.Context, poID uint) ([]*models.ApprovalLog, error)
}
