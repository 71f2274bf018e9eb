package services

import (
	"context"
	"log"
	"time"

	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/core/rules"

	"github.com/robfig/cron/v3"
)

// SLAService periodically scans pending orders against their SLA targets
// and stamps the ones past due. The stamp only feeds reporting (dashboard
// and PO detail); it never changes a required role or a status - breached
// orders still go through the normal approval path.
type SLAService struct {
	poRepo repositories.PORepository
	dna    *DNAService
	cron   *cron.Cron
}

// NewSLAService creates a new SLA breach scanner
func NewSLAService(poRepo repositories.PORepository, dna *DNAService) *SLAService {
	return &SLAService{
		poRepo: poRepo,
		dna:    dna,
		cron:   cron.New(),
	}
}

// Start schedules the hourly scan
func (s *SLAService) Start() {
	s.cron.AddFunc("@hourly", func() {
		if err := s.Scan(context.Background()); err != nil {
			log.Printf("⚠️ SLA scan failed: %v", err)
		}
	})
	s.cron.Start()
	log.Println("✅ SLA breach scanner started (hourly)")
}

// Stop stops the scheduler
func (s *SLAService) Stop() {
	s.cron.Stop()
}

// Scan flags pending orders whose SLA window has elapsed. Skipped
// entirely when the auto-escalation policy is off.
func (s *SLAService) Scan(ctx context.Context) error {
	rs := s.dna.Ruleset()
	if !rs.AutoEscalateOnSLABreach() {
		return nil
	}

	pending, err := s.poRepo.ListPendingUnbreached(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	breached := 0
	for _, po := range pending {
		slaHours := rules.SLAHours(po.Amount, rs.Thresholds)
		due := po.SubmittedAt.Add(time.Duration(slaHours) * time.Hour)
		if now.Before(due) {
			continue
		}

		if err := s.poRepo.MarkSLABreached(ctx, po.ID, now); err != nil {
			log.Printf("⚠️ failed to mark SLA breach for %s: %v", po.PONumber, err)
			continue
		}
		breached++
		log.Printf("⏰ SLA breached: %s (due %s)", po.PONumber, due.Format(time.RFC3339))
	}

	if breached > 0 {
		log.Printf("⏰ SLA scan: %d order(s) newly breached", breached)
	}
	return nil
}
