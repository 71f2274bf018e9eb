package config

import (
	"fmt"
	"log"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/core/domain"
	"dna-erp-po/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder populates the demo data set: one user per role and a few sample
// purchase orders in different lifecycle states
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	users, err := s.seedUsers()
	if err != nil {
		return err
	}

	if err := s.seedPurchaseOrders(users); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// demo password shared by all seeded accounts
const demoPassword = "password123"

func (s *Seeder) seedUsers() (map[domain.Role]*models.User, error) {
	seeds := []struct {
		email string
		name  string
		role  domain.Role
	}{
		{"staff@example.com", "John Staff", domain.RoleStaff},
		{"manager@example.com", "Jane Manager", domain.RoleManager},
		{"director@example.com", "Bob Director", domain.RoleDirector},
		{"ceo@example.com", "Alice CEO", domain.RoleCEO},
	}

	hashed, err := password.Hash(demoPassword)
	if err != nil {
		return nil, err
	}

	users := make(map[domain.Role]*models.User, len(seeds))
	for _, seed := range seeds {
		user := &models.User{
			Email:    seed.email,
			Name:     seed.name,
			Password: hashed,
			Role:     string(seed.role),
			IsActive: true,
		}

		err := s.db.Where("email = ?", seed.email).FirstOrCreate(user).Error
		if err != nil {
			return nil, err
		}
		users[seed.role] = user
	}

	log.Printf("🌱 Seeded %d demo users", len(users))
	return users, nil
}

func (s *Seeder) seedPurchaseOrders(users map[domain.Role]*models.User) error {
	var count int64
	if err := s.db.Model(&models.PurchaseOrder{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	year := time.Now().Year()
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	staff := users[domain.RoleStaff]
	director := users[domain.RoleDirector]

	pos := []*models.PurchaseOrder{
		{
			PONumber:    fmt.Sprintf("PO-%d-001", year),
			Title:       "Office Supplies",
			Description: "Pens, papers, and stationery",
			Amount:      500000,
			Vendor:      "PT Supplier Alat Tulis",
			Status:      string(domain.StatusDraft),
			CreatedByID: staff.ID,
		},
		{
			PONumber:    fmt.Sprintf("PO-%d-002", year),
			Title:       "Computer Equipment",
			Description: "5 laptops for new employees",
			Amount:      75000000,
			Vendor:      "PT Tech Solutions",
			Status:      string(domain.StatusPendingApproval),
			CreatedByID: staff.ID,
			SubmittedAt: &now,
		},
		{
			PONumber:     fmt.Sprintf("PO-%d-003", year),
			Title:        "Marketing Materials",
			Description:  "Brochures and banners",
			Amount:       2500000,
			Vendor:       "PT Print Pro",
			Status:       string(domain.StatusApproved),
			CreatedByID:  staff.ID,
			ApprovedByID: &director.ID,
			SubmittedAt:  &yesterday,
			ResolvedAt:   &now,
		},
	}

	for _, po := range pos {
		if err := s.db.Create(po).Error; err != nil {
			return err
		}
	}

	log.Printf("🌱 Seeded %d sample purchase orders", len(pos))
	return nil
}
