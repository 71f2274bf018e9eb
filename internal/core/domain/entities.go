package domain

import "time"

// Role represents a user role in the approval hierarchy
type Role string

const (
	RoleStaff    Role = "STAFF"
	RoleManager  Role = "MANAGER"
	RoleDirector Role = "DIRECTOR"
	RoleCEO      Role = "CEO"
)

// roleRanks maps each role to its ordinal rank. Unknown roles fall back to
// the STAFF rank (0) rather than failing; the DNA repository is free-form
// text and a typo there must not lock anyone out of read access.
var roleRanks = map[Role]int{
	RoleStaff:    0,
	RoleManager:  1,
	RoleDirector: 2,
	RoleCEO:      3,
}

// Rank returns the ordinal rank of a role (STAFF=0 ... CEO=3).
// Unrecognized roles rank as STAFF.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// IsValid reports whether the role is one of the four known roles
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Status represents a purchase order lifecycle status
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// IsValid reports whether the status is a known lifecycle status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Action represents a purchase order lifecycle action
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRevise  Action = "revise"
)

// User represents a user in the domain layer
type User struct {
	ID        uint
	Email     string
	Name      string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PurchaseOrder is the PO snapshot the rules core operates on.
// Persistence concerns (relations, soft delete) live in the models layer.
type PurchaseOrder struct {
	ID           uint
	PONumber     string
	Title        string
	Description  string
	Amount       float64
	Vendor       string
	Status       Status
	CreatedByID  uint
	ApprovedByID *uint
	SubmittedAt  *time.Time
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApprovalLog is an immutable audit record of a lifecycle action
type ApprovalLog struct {
	ID        uint
	POID      uint
	UserID    uint
	Action    string
	Comment   string
	CreatedAt time.Time
}
