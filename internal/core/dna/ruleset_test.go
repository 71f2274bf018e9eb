package dna

import (
	"os"
	"path/filepath"
	"testing"

	"dna-erp-po/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bound(v float64) *float64 { return &v }

func TestDefaultRulesetIsValid(t *testing.T) {
	rs := Default()
	require.NoError(t, rs.Validate())
	assert.Len(t, rs.Thresholds, 3)
	assert.Nil(t, rs.Thresholds[2].MaxAmount)
	assert.False(t, rs.IsSelfApprovalAllowed())
	assert.True(t, rs.IsRevisionAllowed())
	assert.True(t, rs.RequireCommentOnReject())
	assert.False(t, rs.CanModifyAfterApproval())
	assert.True(t, rs.AutoEscalateOnSLABreach())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []ApprovalThreshold
		wantErr    string
	}{
		{
			name:    "empty list",
			wantErr: "no approval thresholds",
		},
		{
			name: "no unbounded top band",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 0, MaxAmount: bound(1000), Role: domain.RoleManager, SLAHours: 24},
			},
			wantErr: "no unbounded top band",
		},
		{
			name: "two unbounded bands",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 0, Role: domain.RoleManager, SLAHours: 24},
				{Level: 2, MinAmount: 1000, Role: domain.RoleCEO, SLAHours: 72},
			},
			wantErr: "is not the highest",
		},
		{
			name: "levels not increasing",
			thresholds: []ApprovalThreshold{
				{Level: 2, MinAmount: 0, MaxAmount: bound(1000), Role: domain.RoleManager, SLAHours: 24},
				{Level: 2, MinAmount: 1000, Role: domain.RoleCEO, SLAHours: 72},
			},
			wantErr: "levels not strictly increasing",
		},
		{
			name: "unknown role",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 0, Role: domain.Role("SUPERVISOR"), SLAHours: 24},
			},
			wantErr: "unknown role",
		},
		{
			name: "non-positive sla",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 0, Role: domain.RoleManager, SLAHours: 0},
			},
			wantErr: "non-positive slaHours",
		},
		{
			name: "max below min",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 2000, MaxAmount: bound(1000), Role: domain.RoleManager, SLAHours: 24},
				{Level: 2, MinAmount: 1000, Role: domain.RoleCEO, SLAHours: 72},
			},
			wantErr: "maxAmount <= minAmount",
		},
		{
			name: "valid two bands",
			thresholds: []ApprovalThreshold{
				{Level: 1, MinAmount: 0, MaxAmount: bound(500000), Role: domain.RoleManager, SLAHours: 24},
				{Level: 2, MinAmount: 500000, Role: domain.RoleCEO, SLAHours: 72},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &Ruleset{Version: "test", Thresholds: tt.thresholds}
			err := rs.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDNAInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileMissingReturnsDefault(t *testing.T) {
	rs, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Thresholds, rs.Thresholds)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dna.yaml")

	rs := Default()
	rs.Version = "1.3"
	rs.Settings.SelfApproval = true
	require.NoError(t, SaveFile(path, rs))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1.3", loaded.Version)
	assert.True(t, loaded.Settings.SelfApproval)
	assert.Equal(t, rs.Thresholds, loaded.Thresholds)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestSaveFileRejectsInvalidRuleset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dna.yaml")

	rs := &Ruleset{Version: "bad"}
	err := SaveFile(path, rs)
	require.ErrorIs(t, err, domain.ErrDNAInvalid)

	// Nothing was written.
	_, err = LoadFile(path)
	require.NoError(t, err) // falls back to default
}

func TestLoadFileMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dna.yaml")
	require.NoError(t, os.WriteFile(path, []byte("approvalThresholds: [not : valid : yaml"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
