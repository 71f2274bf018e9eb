// Package dna holds the externally configurable business-rule set ("DNA")
// that parameterizes the purchase order approval workflow: the ordered
// approval threshold bands and the flat policy settings record.
//
// A Ruleset is loaded wholesale from the DNA repository file, is immutable
// within a request, and is passed explicitly into the rules core - there is
// no package-global configuration.
package dna

import (
	"fmt"
	"time"

	"dna-erp-po/internal/core/domain"
)

// ApprovalThreshold is one contiguous amount band mapped to the minimum
// role required to approve and the SLA target for resolving at that level.
// MaxAmount == nil marks the unbounded top band.
type ApprovalThreshold struct {
	Level     int         `yaml:"level" json:"level"`
	MinAmount float64     `yaml:"minAmount" json:"min_amount"`
	MaxAmount *float64    `yaml:"maxAmount" json:"max_amount"`
	Role      domain.Role `yaml:"role" json:"role"`
	SLAHours  int         `yaml:"slaHours" json:"sla_hours"`
}

// Settings is the flat policy flag record
type Settings struct {
	SelfApproval            bool `yaml:"selfApproval" json:"self_approval"`
	AllowRevision           bool `yaml:"allowRevision" json:"allow_revision"`
	ModifyAfterApproval     bool `yaml:"modifyAfterApproval" json:"modify_after_approval"`
	RequireCommentOnReject  bool `yaml:"requireCommentOnReject" json:"require_comment_on_reject"`
	AutoEscalateOnSLABreach bool `yaml:"autoEscalateOnSlaBreach" json:"auto_escalate_on_sla_breach"`
}

// Ruleset is the full DNA configuration object
type Ruleset struct {
	Version     string              `yaml:"version" json:"version"`
	LastUpdated string              `yaml:"lastUpdated" json:"last_updated"`
	Thresholds  []ApprovalThreshold `yaml:"approvalThresholds" json:"approval_thresholds"`
	Settings    Settings            `yaml:"settings" json:"settings"`
}

// Default returns the built-in ruleset used when no DNA file is present.
// Values mirror the seeded DNA repository (v1.2).
func Default() *Ruleset {
	max1 := 499999.0
	max2 := 4999999.0
	return &Ruleset{
		Version:     "1.2",
		LastUpdated: time.Now().Format("2006-01-02"),
		Thresholds: []ApprovalThreshold{
			{Level: 1, MinAmount: 0, MaxAmount: &max1, Role: domain.RoleManager, SLAHours: 24},
			{Level: 2, MinAmount: 500000, MaxAmount: &max2, Role: domain.RoleDirector, SLAHours: 48},
			{Level: 3, MinAmount: 5000000, MaxAmount: nil, Role: domain.RoleCEO, SLAHours: 72},
		},
		Settings: Settings{
			SelfApproval:            false,
			AllowRevision:           true,
			ModifyAfterApproval:     false,
			RequireCommentOnReject:  true,
			AutoEscalateOnSLABreach: true,
		},
	}
}

// Settings projections consumed by handlers and the lifecycle guard

// IsSelfApprovalAllowed reports whether a creator may approve their own PO
func (r *Ruleset) IsSelfApprovalAllowed() bool {
	return r.Settings.SelfApproval
}

// IsRevisionAllowed reports whether a rejected PO may be returned to draft
func (r *Ruleset) IsRevisionAllowed() bool {
	return r.Settings.AllowRevision
}

// RequireCommentOnReject reports whether reject needs a non-empty comment
func (r *Ruleset) RequireCommentOnReject() bool {
	return r.Settings.RequireCommentOnReject
}

// CanModifyAfterApproval reports whether an APPROVED PO may still be edited
func (r *Ruleset) CanModifyAfterApproval() bool {
	return r.Settings.ModifyAfterApproval
}

// AutoEscalateOnSLABreach reports whether overdue pending orders should be
// flagged for escalation
func (r *Ruleset) AutoEscalateOnSLABreach() bool {
	return r.Settings.AutoEscalateOnSLABreach
}

// Validate checks the threshold band invariants: a non-empty list sorted
// ascending by level, contiguous amounts, and exactly one unbounded band
// sitting at the top. The resolver itself stays lenient on violations
// (see Resolve); Validate exists so saves can fail loudly instead.
func (r *Ruleset) Validate() error {
	if len(r.Thresholds) == 0 {
		return fmt.Errorf("%w: no approval thresholds defined", domain.ErrDNAInvalid)
	}

	unbounded := 0
	for i, t := range r.Thresholds {
		if t.Level < 1 {
			return fmt.Errorf("%w: threshold %d has level %d (must be >= 1)", domain.ErrDNAInvalid, i, t.Level)
		}
		if t.MinAmount < 0 {
			return fmt.Errorf("%w: level %d has negative minAmount", domain.ErrDNAInvalid, t.Level)
		}
		if t.SLAHours <= 0 {
			return fmt.Errorf("%w: level %d has non-positive slaHours", domain.ErrDNAInvalid, t.Level)
		}
		if !t.Role.IsValid() {
			return fmt.Errorf("%w: level %d has unknown role %q", domain.ErrDNAInvalid, t.Level, t.Role)
		}
		if i > 0 {
			prev := r.Thresholds[i-1]
			if t.Level <= prev.Level {
				return fmt.Errorf("%w: levels not strictly increasing at level %d", domain.ErrDNAInvalid, t.Level)
			}
			if prev.MaxAmount == nil {
				return fmt.Errorf("%w: unbounded band at level %d is not the highest", domain.ErrDNAInvalid, prev.Level)
			}
			if t.MaxAmount != nil && *t.MaxAmount <= *prev.MaxAmount {
				return fmt.Errorf("%w: maxAmount not increasing at level %d", domain.ErrDNAInvalid, t.Level)
			}
		}
		if t.MaxAmount == nil {
			unbounded++
		} else if *t.MaxAmount <= t.MinAmount {
			return fmt.Errorf("%w: level %d has maxAmount <= minAmount", domain.ErrDNAInvalid, t.Level)
		}
	}

	if unbounded == 0 {
		return fmt.Errorf("%w: no unbounded top band (every maxAmount is finite)", domain.ErrDNAInvalid)
	}
	if unbounded > 1 {
		return fmt.Errorf("%w: more than one unbounded band", domain.ErrDNAInvalid)
	}

	return nil
}
