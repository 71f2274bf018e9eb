package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePORepo is an in-memory PORepository with the same status-guard
// semantics as the SQL implementation
type fakePORepo struct {
	pos    map[uint]*models.PurchaseOrder
	logs   []*models.ApprovalLog
	nextID uint
}

func newFakePORepo() *fakePORepo {
	return &fakePORepo{pos: map[uint]*models.PurchaseOrder{}, nextID: 1}
}

func (f *fakePORepo) Create(ctx context.Context, po *models.PurchaseOrder, log *models.ApprovalLog) error {
	po.ID = f.nextID
	f.nextID++
	po.CreatedAt = time.Now()
	f.pos[po.ID] = po
	log.POID = po.ID
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakePORepo) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	po, ok := f.pos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *po
	return &cp, nil
}

func (f *fakePORepo) GetByIDWithLogs(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	return f.GetByID(ctx, id)
}

func (f *fakePORepo) List(ctx context.Context, filter repositories.POFilter, offset, limit int) ([]*models.PurchaseOrder, int64, error) {
	var out []*models.PurchaseOrder
	for _, po := range f.pos {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.CreatedByID != nil && po.CreatedByID != *filter.CreatedByID {
			continue
		}
		cp := *po
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakePORepo) MaxSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("PO-%d-", year)
	max := 0
	for _, po := range f.pos {
		if !strings.HasPrefix(po.PONumber, prefix) {
			continue
		}
		if n, err := strconv.Atoi(po.PONumber[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (f *fakePORepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	po, ok := f.pos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["title"]; ok {
		po.Title = v.(string)
	}
	if v, ok := fields["description"]; ok {
		po.Description = v.(string)
	}
	if v, ok := fields["amount"]; ok {
		po.Amount = v.(float64)
	}
	if v, ok := fields["vendor"]; ok {
		po.Vendor = v.(string)
	}
	return nil
}

func (f *fakePORepo) TransitionStatus(ctx context.Context, id uint, fromStatus string, update repositories.StatusUpdate, log *models.ApprovalLog) error {
	po, ok := f.pos[id]
	if !ok || po.Status != fromStatus {
		return domain.ErrStatusConflict
	}
	po.Status = update.ToStatus
	if update.SetSubmittedAt != nil {
		po.SubmittedAt = update.SetSubmittedAt
	}
	if update.SetResolvedBy != nil {
		po.ApprovedByID = update.SetResolvedBy
		po.ResolvedAt = update.SetResolvedAt
	}
	if update.ClearResolution {
		po.ApprovedByID = nil
		po.ResolvedAt = nil
		po.SLABreachedAt = nil
	}
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakePORepo) DeleteWithLogs(ctx context.Context, id uint) error {
	po, ok := f.pos[id]
	if !ok || po.Status == string(domain.StatusApproved) {
		return domain.ErrStatusConflict
	}
	delete(f.pos, id)
	return nil
}

func (f *fakePORepo) ListPendingUnbreached(ctx context.Context) ([]*models.PurchaseOrder, error) {
	var out []*models.PurchaseOrder
	for _, po := range f.pos {
		if po.Status == string(domain.StatusPendingApproval) && po.SubmittedAt != nil && po.SLABreachedAt == nil {
			out = append(out, po)
		}
	}
	return out, nil
}

func (f *fakePORepo) MarkSLABreached(ctx context.Context, id uint, at time.Time) error {
	po, ok := f.pos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if po.SLABreachedAt == nil {
		po.SLABreachedAt = &at
	}
	return nil
}

func (f *fakePORepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, po := range f.pos {
		counts[po.Status]++
	}
	return counts, nil
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

// fakeLogRepo is an in-memory ApprovalLogRepository backed by the PO repo
type fakeLogRepo struct {
	poRepo *fakePORepo
}

func (f *fakeLogRepo) GetByPOID(ctx context.Context, poID uint) ([]*models.ApprovalLog, error) {
	var out []*models.ApprovalLog
	for _, l := range f.poRepo.logs {
		if l.POID == poID {
			out = append(out, l)
		}
	}
	return out, nil
}

func newTestPOService(t *testing.T) (*POService, *fakePORepo, *fakeUserRepo) {
	t.Helper()

	// Missing file means default ruleset
	dnaService, err := NewDNAService(filepath.Join(t.TempDir(), "ruleset.yaml"))
	require.NoError(t, err)

	poRepo := newFakePORepo()
	userRepo := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Email: "staff@example.com", Name: "John Staff", Role: string(domain.RoleStaff), IsActive: true},
		2: {ID: 2, Email: "manager@example.com", Name: "Jane Manager", Role: string(domain.RoleManager), IsActive: true},
		4: {ID: 4, Email: "ceo@example.com", Name: "Alice CEO", Role: string(domain.RoleCEO), IsActive: true},
	}}

	return NewPOService(poRepo, userRepo, &fakeLogRepo{poRepo: poRepo}, dnaService), poRepo, userRepo
}

func TestPOServiceCreateNumbersSequentially(t *testing.T) {
	svc, _, _ := newTestPOService(t)
	ctx := context.Background()
	year := time.Now().Year()

	first, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreatePOInput{Title: "Laptops", Amount: 75000000}, 1)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusDraft), first.Status)
	assert.Equal(t, fmt.Sprintf("PO-%d-001", year), first.PONumber)
	assert.Equal(t, fmt.Sprintf("PO-%d-002", year), second.PONumber)
}

// Numbering advances past the highest existing suffix, so deleting an
// earlier order never hands out a number that is still taken.
func TestPOServiceCreateNumberingSurvivesDeletion(t *testing.T) {
	svc, _, _ := newTestPOService(t)
	ctx := context.Background()
	year := time.Now().Year()

	first, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreatePOInput{Title: "Laptops", Amount: 75000000}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.ID))

	third, err := svc.Create(ctx, &CreatePOInput{Title: "Chairs", Amount: 200000}, 1)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PO-%d-003", year), third.PONumber)
}

func TestPOServiceSubmitAndApprove(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)

	po, err = svc.Transition(ctx, po.ID, 1, domain.ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPendingApproval), po.Status)
	require.NotNil(t, repo.pos[po.ID].SubmittedAt)

	po, err = svc.Transition(ctx, po.ID, 2, domain.ActionApprove, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), po.Status)
	require.NotNil(t, repo.pos[po.ID].ApprovedByID)
	assert.Equal(t, uint(2), *repo.pos[po.ID].ApprovedByID)

	// Created, Submitted, Approved
	logs, err := svc.AuditTrail(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestPOServiceSelfApprovalRejectedWithoutLog(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Laptops", Amount: 100000}, 2)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, po.ID, 2, domain.ActionSubmit, "")
	require.NoError(t, err)

	before := len(repo.logs)
	_, err = svc.Transition(ctx, po.ID, 2, domain.ActionApprove, "")
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.ErrorIs(t, err, domain.ErrSelfApprovalDisabled)
	assert.Len(t, repo.logs, before, "denied action must not write a log entry")
	assert.Equal(t, string(domain.StatusPendingApproval), repo.pos[po.ID].Status)
}

func TestPOServiceConcurrentTransitionLoserGetsConflict(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, po.ID, 1, domain.ActionSubmit, "")
	require.NoError(t, err)

	// First decision wins
	_, err = svc.Transition(ctx, po.ID, 2, domain.ActionApprove, "")
	require.NoError(t, err)

	// A second decision that read PENDING_APPROVAL before the first landed
	// hits the repository status guard and loses
	err = repo.TransitionStatus(ctx, po.ID, string(domain.StatusPendingApproval),
		repositories.StatusUpdate{ToStatus: string(domain.StatusRejected)},
		&models.ApprovalLog{POID: po.ID, UserID: 4, Action: "Rejected"})
	assert.ErrorIs(t, err, domain.ErrStatusConflict)
	assert.Equal(t, string(domain.StatusApproved), repo.pos[po.ID].Status)
}

func TestPOServiceRejectRequiresComment(t *testing.T) {
	svc, _, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, po.ID, 1, domain.ActionSubmit, "")
	require.NoError(t, err)

	_, err = svc.Transition(ctx, po.ID, 2, domain.ActionReject, "")
	assert.ErrorIs(t, err, domain.ErrCommentRequired)

	po, err = svc.Transition(ctx, po.ID, 2, domain.ActionReject, "over budget")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), po.Status)
}

func TestPOServiceReviseClearsResolution(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, po.ID, 1, domain.ActionSubmit, "")
	require.NoError(t, err)
	_, err = svc.Transition(ctx, po.ID, 2, domain.ActionReject, "wrong vendor")
	require.NoError(t, err)

	po, err = svc.Transition(ctx, po.ID, 1, domain.ActionRevise, "")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDraft), po.Status)
	assert.Nil(t, repo.pos[po.ID].ApprovedByID)
	assert.Nil(t, repo.pos[po.ID].ResolvedAt)
}

func TestPOServiceDeleteApprovedForbidden(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	repo.pos[po.ID].Status = string(domain.StatusApproved)

	err = svc.Delete(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrPOUndeletable)
}

func TestPOServiceUpdateApprovedImmutable(t *testing.T) {
	svc, repo, _ := newTestPOService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &CreatePOInput{Title: "Office Supplies", Amount: 100000}, 1)
	require.NoError(t, err)
	repo.pos[po.ID].Status = string(domain.StatusApproved)

	title := "New title"
	_, err = svc.Update(ctx, po.ID, &UpdatePOInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrPOImmutable)
}
