package rules

import (
	"testing"
	"time"

	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleset() *dna.Ruleset {
	rs := dna.Default()
	return rs
}

func pendingPO(amount float64, createdBy uint) *domain.PurchaseOrder {
	now := time.Now()
	return &domain.PurchaseOrder{
		ID:          1,
		PONumber:    "PO-2026-001",
		Amount:      amount,
		Status:      domain.StatusPendingApproval,
		CreatedByID: createdBy,
		SubmittedAt: &now,
	}
}

func TestDecideSubmit(t *testing.T) {
	rs := testRuleset()
	actor := Actor{ID: 1, Role: domain.RoleStaff}

	tests := []struct {
		name    string
		status  domain.Status
		wantErr error
	}{
		{"from draft", domain.StatusDraft, nil},
		{"from rejected", domain.StatusRejected, nil},
		{"from pending", domain.StatusPendingApproval, domain.ErrInvalidState},
		{"from approved", domain.StatusApproved, domain.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := &domain.PurchaseOrder{ID: 1, Amount: 1000, Status: tt.status, CreatedByID: 1}
			tr, err := Decide(po, actor, domain.ActionSubmit, "", rs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusPendingApproval, tr.To)
			assert.True(t, tr.SetSubmittedAt)
			assert.Equal(t, LogActionSubmitted, tr.LogAction)
		})
	}
}

func TestDecideApprove(t *testing.T) {
	rs := testRuleset()
	po := pendingPO(100000, 1) // manager band

	tr, err := Decide(po, Actor{ID: 2, Role: domain.RoleManager}, domain.ActionApprove, "", rs)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, tr.To)
	assert.True(t, tr.SetResolvedBy)
	assert.Equal(t, LogActionApproved, tr.LogAction)
}

func TestDecideApproveInsufficientRole(t *testing.T) {
	rs := testRuleset()
	po := pendingPO(100000, 1) // requires MANAGER

	_, err := Decide(po, Actor{ID: 2, Role: domain.RoleStaff}, domain.ActionApprove, "", rs)
	require.ErrorIs(t, err, domain.ErrInsufficientRole)
	assert.Contains(t, err.Error(), "STAFF")
	assert.Contains(t, err.Error(), "MANAGER")
}

func TestDecideApproveWrongState(t *testing.T) {
	rs := testRuleset()
	po := &domain.PurchaseOrder{ID: 1, Amount: 1000, Status: domain.StatusDraft, CreatedByID: 1}

	_, err := Decide(po, Actor{ID: 2, Role: domain.RoleCEO}, domain.ActionApprove, "", rs)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// Creator approving their own PO is a policy violation while selfApproval
// is disabled, even when the role qualifies.
func TestDecideApproveSelfApprovalPolicy(t *testing.T) {
	rs := testRuleset()
	rs.Settings.SelfApproval = false
	po := pendingPO(100000, 7)
	creator := Actor{ID: 7, Role: domain.RoleCEO}

	_, err := Decide(po, creator, domain.ActionApprove, "", rs)
	require.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.ErrorIs(t, err, domain.ErrSelfApprovalDisabled)

	rs.Settings.SelfApproval = true
	tr, err := Decide(po, creator, domain.ActionApprove, "", rs)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, tr.To)
}

func TestDecideRejectCommentPolicy(t *testing.T) {
	rs := testRuleset()
	rs.Settings.RequireCommentOnReject = true
	po := pendingPO(100000, 1)
	actor := Actor{ID: 2, Role: domain.RoleDirector}

	_, err := Decide(po, actor, domain.ActionReject, "", rs)
	require.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.ErrorIs(t, err, domain.ErrCommentRequired)

	tr, err := Decide(po, actor, domain.ActionReject, "over budget", rs)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, tr.To)
	assert.True(t, tr.SetResolvedBy)
	assert.Equal(t, LogActionRejected, tr.LogAction)

	// With the policy off, an empty comment is fine.
	rs.Settings.RequireCommentOnReject = false
	_, err = Decide(po, actor, domain.ActionReject, "", rs)
	assert.NoError(t, err)
}

func TestDecideRejectInsufficientRole(t *testing.T) {
	rs := testRuleset()
	po := pendingPO(600000, 1) // director band

	_, err := Decide(po, Actor{ID: 2, Role: domain.RoleManager}, domain.ActionReject, "no", rs)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestDecideRevise(t *testing.T) {
	rs := testRuleset()
	rs.Settings.AllowRevision = true

	po := &domain.PurchaseOrder{ID: 1, Amount: 1000, Status: domain.StatusRejected, CreatedByID: 1}
	tr, err := Decide(po, Actor{ID: 1, Role: domain.RoleStaff}, domain.ActionRevise, "", rs)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, tr.To)
	assert.True(t, tr.ClearResolution)
	assert.Equal(t, LogActionRevised, tr.LogAction)
}

func TestDecideReviseDisabled(t *testing.T) {
	rs := testRuleset()
	rs.Settings.AllowRevision = false

	po := &domain.PurchaseOrder{ID: 1, Amount: 1000, Status: domain.StatusRejected, CreatedByID: 1}
	_, err := Decide(po, Actor{ID: 1, Role: domain.RoleStaff}, domain.ActionRevise, "", rs)
	require.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.ErrorIs(t, err, domain.ErrRevisionDisabled)
}

func TestDecideReviseWrongState(t *testing.T) {
	rs := testRuleset()
	rs.Settings.AllowRevision = true

	for _, status := range []domain.Status{domain.StatusDraft, domain.StatusPendingApproval, domain.StatusApproved} {
		po := &domain.PurchaseOrder{ID: 1, Status: status, CreatedByID: 1}
		_, err := Decide(po, Actor{ID: 1, Role: domain.RoleStaff}, domain.ActionRevise, "", rs)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "status %s", status)
	}
}

// The state gate comes before the policy gate: revising an order that was
// never rejected is an invalid state even while revision is disabled.
func TestDecideReviseWrongStateWithRevisionDisabled(t *testing.T) {
	rs := testRuleset()
	rs.Settings.AllowRevision = false

	for _, status := range []domain.Status{domain.StatusDraft, domain.StatusPendingApproval, domain.StatusApproved} {
		po := &domain.PurchaseOrder{ID: 1, Status: status, CreatedByID: 1}
		_, err := Decide(po, Actor{ID: 1, Role: domain.RoleStaff}, domain.ActionRevise, "", rs)
		require.ErrorIs(t, err, domain.ErrInvalidState, "status %s", status)
		assert.NotErrorIs(t, err, domain.ErrPolicyViolation, "status %s", status)
	}
}

func TestDecideUnknownAction(t *testing.T) {
	rs := testRuleset()
	po := pendingPO(1000, 1)

	_, err := Decide(po, Actor{ID: 2, Role: domain.RoleCEO}, domain.Action("escalate"), "", rs)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCanModifyGuard(t *testing.T) {
	rs := testRuleset()
	rs.Settings.ModifyAfterApproval = false

	for _, status := range []domain.Status{domain.StatusDraft, domain.StatusPendingApproval, domain.StatusRejected} {
		assert.NoError(t, CanModify(status, rs), "status %s", status)
	}
	assert.ErrorIs(t, CanModify(domain.StatusApproved, rs), domain.ErrPOImmutable)

	rs.Settings.ModifyAfterApproval = true
	assert.NoError(t, CanModify(domain.StatusApproved, rs))
}

func TestCanDeleteGuard(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusDraft, domain.StatusPendingApproval, domain.StatusRejected} {
		assert.NoError(t, CanDelete(status), "status %s", status)
	}
	assert.ErrorIs(t, CanDelete(domain.StatusApproved), domain.ErrPOUndeletable)
}
