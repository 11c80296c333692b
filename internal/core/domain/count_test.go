// internal/core/domain/count_test.go
package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

func TestFinalCount(t *testing.T) {
	tests := []struct {
		name      string
		estimated int
		adds      int
		removes   int
		expected  int
	}{
		{
			name:      "estimate_only",
			estimated: 5,
			expected:  5,
		},
		{
			name:      "adds_and_removes_net_out",
			estimated: 5,
			adds:      2,
			removes:   1,
			expected:  6,
		},
		{
			name:      "over_removal_clamps_to_zero",
			estimated: 0,
			removes:   3,
			expected:  0,
		},
		{
			name:      "removal_down_to_exactly_zero",
			estimated: 3,
			removes:   3,
			expected:  0,
		},
		{
			name:      "adds_recover_from_over_removal",
			estimated: 1,
			adds:      4,
			removes:   3,
			expected:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.FinalCount(tt.estimated, tt.adds, tt.removes))
		})
	}
}

// The floor invariant: the result is never negative and equals the unclamped
// formula whenever that formula is non-negative.
func TestFinalCount_FloorInvariant(t *testing.T) {
	for estimated := 0; estimated <= 12; estimated++ {
		for adds := 0; adds <= 6; adds++ {
			for removes := 0; removes <= 20; removes++ {
				got := domain.FinalCount(estimated, adds, removes)
				require.GreaterOrEqual(t, got, 0,
					"finalCount(%d,%d,%d) went negative", estimated, adds, removes)

				if raw := estimated + adds - removes; raw >= 0 {
					require.Equal(t, raw, got,
						"finalCount(%d,%d,%d) diverged from the closed form", estimated, adds, removes)
				}
			}
		}
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name     string
		final    int
		expected string
		variance string
	}{
		{name: "shortage_is_negative", final: 8, expected: "10", variance: "-2"},
		{name: "exact_match_is_zero", final: 6, expected: "6", variance: "0"},
		{name: "surplus_is_positive", final: 15, expected: "12.5", variance: "2.5"},
		{name: "manual_entry_shortage", final: 12, expected: "15", variance: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := decimal.RequireFromString(tt.expected)
			want := decimal.RequireFromString(tt.variance)

			got := domain.Variance(tt.final, expected)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestDetectionResult_AverageConfidence(t *testing.T) {
	t.Run("empty_result_is_zero", func(t *testing.T) {
		r := &domain.DetectionResult{EstimatedCount: 0}
		assert.Zero(t, r.AverageConfidence())
	})

	t.Run("mean_of_detections", func(t *testing.T) {
		r := &domain.DetectionResult{
			EstimatedCount: 3,
			Detections: []domain.Detection{
				{Confidence: 0.9},
				{Confidence: 0.8},
				{Confidence: 0.7},
			},
		}
		assert.InDelta(t, 0.8, r.AverageConfidence(), 1e-9)
	})
}

func TestCountSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		session domain.CountSession
		wantErr string
	}{
		{
			name:    "valid_without_inventory_id",
			session: domain.CountSession{CompanyID: "01", BranchID: "0101"},
		},
		{
			name:    "missing_company",
			session: domain.CountSession{BranchID: "0101"},
			wantErr: "company_id is required",
		},
		{
			name:    "missing_branch",
			session: domain.CountSession{CompanyID: "01"},
			wantErr: "branch_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidObjectType(t *testing.T) {
	assert.True(t, domain.ValidObjectType(domain.ObjectRoundTube))
	assert.True(t, domain.ValidObjectType(domain.ObjectBar))
	assert.False(t, domain.ValidObjectType(domain.ObjectType("pallet")))
	assert.False(t, domain.ValidObjectType(domain.ObjectType("")))
}
