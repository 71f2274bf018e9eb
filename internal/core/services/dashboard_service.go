package services

import (
	"context"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/domain"
	"dna-erp-po/internal/core/rules"
)

// DashboardService aggregates workflow statistics for the overview page
type DashboardService struct {
	poRepo repositories.PORepository
	dna    *DNAService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(poRepo repositories.PORepository, dna *DNAService) *DashboardService {
	return &DashboardService{poRepo: poRepo, dna: dna}
}

// PendingItem is one pending order in the approval workload view
type PendingItem struct {
	ID           uint        `json:"id"`
	PONumber     string      `json:"po_number"`
	Title        string      `json:"title"`
	Amount       float64     `json:"amount"`
	RequiredRole domain.Role `json:"required_role"`
	SLAHours     int         `json:"sla_hours"`
	SLADueAt     *time.Time  `json:"sla_due_at,omitempty"`
	Overdue      bool        `json:"overdue"`
}

// Overview is the dashboard payload
type Overview struct {
	StatusCounts  map[string]int64       `json:"status_counts"`
	PendingByRole map[domain.Role]int    `json:"pending_by_role"`
	Overdue       []PendingItem          `json:"overdue,omitempty"`
	RulesetInfo   map[string]interface{} `json:"ruleset"`
}

// GetOverview builds the dashboard: counts per status, the pending
// workload broken down by required approver role, and - when the
// auto-escalation policy is on - the orders past their SLA.
func (s *DashboardService) GetOverview(ctx context.Context) (*Overview, error) {
	rs := s.dna.Ruleset()

	counts, err := s.poRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range []domain.Status{domain.StatusDraft, domain.StatusPendingApproval, domain.StatusApproved, domain.StatusRejected} {
		if _, ok := counts[string(status)]; !ok {
			counts[string(status)] = 0
		}
	}

	pending, _, err := s.poRepo.List(ctx, repositories.POFilter{Status: string(domain.StatusPendingApproval)}, 0, pagingAll)
	if err != nil {
		return nil, err
	}

	byRole := make(map[domain.Role]int)
	var overdue []PendingItem
	now := time.Now()

	for _, po := range pending {
		item := toPendingItem(po, rs.Thresholds, now)
		byRole[item.RequiredRole]++
		if rs.AutoEscalateOnSLABreach() && item.Overdue {
			overdue = append(overdue, item)
		}
	}

	return &Overview{
		StatusCounts:  counts,
		PendingByRole: byRole,
		Overdue:       overdue,
		RulesetInfo: map[string]interface{}{
			"version":      rs.Version,
			"last_updated": rs.LastUpdated,
			"bands":        len(rs.Thresholds),
		},
	}, nil
}

// pagingAll caps the pending scan; a demo workflow never approaches it
const pagingAll = 1000

func toPendingItem(po *models.PurchaseOrder, thresholds []dna.ApprovalThreshold, now time.Time) PendingItem {
	band := rules.Resolve(po.Amount, thresholds)

	item := PendingItem{
		ID:           po.ID,
		PONumber:     po.PONumber,
		Title:        po.Title,
		Amount:       po.Amount,
		RequiredRole: band.Role,
		SLAHours:     band.SLAHours,
	}

	if po.SubmittedAt != nil {
		due := po.SubmittedAt.Add(time.Duration(band.SLAHours) * time.Hour)
		item.SLADueAt = &due
		item.Overdue = now.After(due)
	}

	return item
}
