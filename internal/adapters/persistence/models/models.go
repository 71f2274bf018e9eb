package models

import (
	"time"

	"gorm.io/gorm"

	"dna-erp-po/internal/core/domain"
)

// User represents the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'STAFF'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// PurchaseOrder represents the purchase_orders table.
// Status changes go through the status-guarded transition in the PO
// repository, never through a plain Save.
type PurchaseOrder struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PONumber      string     `gorm:"size:30;uniqueIndex;not null" json:"po_number"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Amount        float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Vendor        string     `gorm:"size:200" json:"vendor"`
	Status        string     `gorm:"size:30;not null;default:'DRAFT';index" json:"status"`
	CreatedByID   uint       `gorm:"not null;index" json:"created_by_id"`
	ApprovedByID  *uint      `json:"approved_by_id"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	SLABreachedAt *time.Time `json:"sla_breached_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	CreatedBy  *User         `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	ApprovedBy *User         `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	Logs       []ApprovalLog `gorm:"foreignKey:POID" json:"logs,omitempty"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence row to the snapshot the rules core
// operates on
func (po *PurchaseOrder) ToDomain() *domain.PurchaseOrder {
	return &domain.PurchaseOrder{
		ID:           po.ID,
		PONumber:     po.PONumber,
		Title:        po.Title,
		Description:  po.Description,
		Amount:       po.Amount,
		Vendor:       po.Vendor,
		Status:       domain.Status(po.Status),
		CreatedByID:  po.CreatedByID,
		ApprovedByID: po.ApprovedByID,
		SubmittedAt:  po.SubmittedAt,
		ResolvedAt:   po.ResolvedAt,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

// ApprovalLog represents the approval_logs table: append-only audit records,
// one per lifecycle action, never updated
type ApprovalLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	POID      uint      `gorm:"not null;index;column:po_id" json:"po_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ApprovalLog) TableName() string {
	return "approval_logs"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&PurchaseOrder{},
		&ApprovalLog{},
	)
}
