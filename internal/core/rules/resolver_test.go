package rules

import (
	"testing"

	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v float64) *float64 { return &v }

// threeBands mirrors the seeded DNA repository (v1.2)
func threeBands() []dna.ApprovalThreshold {
	return []dna.ApprovalThreshold{
		{Level: 1, MinAmount: 0, MaxAmount: amt(499999), Role: domain.RoleManager, SLAHours: 24},
		{Level: 2, MinAmount: 500000, MaxAmount: amt(4999999), Role: domain.RoleDirector, SLAHours: 48},
		{Level: 3, MinAmount: 5000000, MaxAmount: nil, Role: domain.RoleCEO, SLAHours: 72},
	}
}

func TestResolveBandSelection(t *testing.T) {
	bands := threeBands()

	tests := []struct {
		name      string
		amount    float64
		wantLevel int
		wantRole  domain.Role
		wantSLA   int
	}{
		{"zero amount hits first band", 0, 1, domain.RoleManager, 24},
		{"mid first band", 250000, 1, domain.RoleManager, 24},
		{"just below first boundary", 499998, 1, domain.RoleManager, 24},
		{"first boundary escalates", 499999, 2, domain.RoleDirector, 48},
		{"mid second band", 1000000, 2, domain.RoleDirector, 48},
		{"second boundary escalates", 4999999, 3, domain.RoleCEO, 72},
		{"unbounded top band", 100000000, 3, domain.RoleCEO, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.amount, bands)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, tt.wantSLA, got.SLAHours)
		})
	}
}

// An amount exactly equal to a band's maxAmount belongs to the NEXT band:
// boundary amounts escalate upward.
func TestResolveBoundaryStrictLessThan(t *testing.T) {
	bands := []dna.ApprovalThreshold{
		{Level: 1, MinAmount: 0, MaxAmount: amt(500000), Role: domain.RoleManager, SLAHours: 24},
		{Level: 2, MinAmount: 500000, MaxAmount: nil, Role: domain.RoleCEO, SLAHours: 72},
	}

	below := Resolve(499999, bands)
	at := Resolve(500000, bands)

	assert.Equal(t, domain.RoleManager, below.Role)
	assert.Equal(t, 24, below.SLAHours)
	assert.Equal(t, domain.RoleCEO, at.Role)
	assert.Equal(t, 72, at.SLAHours)
	assert.Greater(t, at.Level, below.Level)
}

func TestResolveMonotonicity(t *testing.T) {
	bands := threeBands()

	amounts := []float64{0, 1, 100, 499998, 499999, 500000, 4999998, 4999999, 5000000, 1e9}
	prevLevel := 0
	for _, a := range amounts {
		level := Resolve(a, bands).Level
		assert.GreaterOrEqual(t, level, prevLevel, "resolve level must not decrease as amount grows (amount=%v)", a)
		prevLevel = level
	}
}

func TestResolveIsPure(t *testing.T) {
	bands := threeBands()
	first := Resolve(750000, bands)
	second := Resolve(750000, bands)
	assert.Equal(t, first, second)
}

// A threshold list with no unbounded top band is a misconfiguration; the
// resolver deliberately degrades to the last band instead of failing.
func TestResolveMisconfiguredFallsBackToLastBand(t *testing.T) {
	bands := []dna.ApprovalThreshold{
		{Level: 1, MinAmount: 0, MaxAmount: amt(1000), Role: domain.RoleManager, SLAHours: 24},
		{Level: 2, MinAmount: 1000, MaxAmount: amt(2000), Role: domain.RoleDirector, SLAHours: 48},
	}

	got := Resolve(5000, bands)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, domain.RoleDirector, got.Role)

	// The shape is still flagged loudly by validation.
	rs := &dna.Ruleset{Thresholds: bands}
	require.Error(t, rs.Validate())
}

func TestResolveEmptyThresholds(t *testing.T) {
	got := Resolve(100, nil)
	assert.Equal(t, domain.RoleCEO, got.Role)
}

func TestCanApprove(t *testing.T) {
	bands := threeBands()

	tests := []struct {
		name   string
		role   domain.Role
		amount float64
		want   bool
	}{
		{"staff cannot approve manager-level amount", domain.RoleStaff, 100000, false},
		{"manager approves own band", domain.RoleManager, 100000, true},
		{"manager cannot approve director band", domain.RoleManager, 600000, false},
		{"director approves manager band", domain.RoleDirector, 100000, true},
		{"director approves own band", domain.RoleDirector, 600000, true},
		{"director cannot approve ceo band", domain.RoleDirector, 6000000, false},
		{"ceo approves everything", domain.RoleCEO, 6000000, true},
		{"unknown role ranks as staff", domain.Role("INTERN"), 100000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanApprove(tt.role, tt.amount, bands))
		})
	}
}

// If a role can approve an amount, every role ranked at or above it can too.
func TestCanApproveMonotonicInRank(t *testing.T) {
	bands := threeBands()
	order := []domain.Role{domain.RoleStaff, domain.RoleManager, domain.RoleDirector, domain.RoleCEO}

	for _, amount := range []float64{0, 499999, 500000, 4999999, 5000000} {
		allowed := false
		for _, role := range order {
			ok := CanApprove(role, amount, bands)
			if allowed {
				assert.True(t, ok, "role %s must be able to approve %v once a lower rank can", role, amount)
			}
			allowed = allowed || ok
		}
		assert.True(t, allowed, "the top role must always be able to approve %v", amount)
	}
}

func TestRequiredRoleAndSLAProjections(t *testing.T) {
	bands := threeBands()

	assert.Equal(t, domain.RoleManager, RequiredRole(250000, bands))
	assert.Equal(t, 24, SLAHours(250000, bands))
	assert.Equal(t, domain.RoleCEO, RequiredRole(5000000, bands))
	assert.Equal(t, 72, SLAHours(5000000, bands))
}
