package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/types"
)

func TestExcludePolicyMatch(t *testing.T) {
	policy := NewExcludePolicy([]types.MatrixExclude{
		{OS: "windows-latest", Python: "3.9", Reason: "no win wheels for 3.9"},
		{OS: "macos-*", ConstraintSet: "oldest", Reason: "oldest pins lack arm64 wheels"},
		{Python: "3.13", Reason: "not validated yet"},
	})

	tests := []struct {
		name       string
		job        types.MatrixJob
		wantMatch  bool
		wantReason string
	}{
		{
			name:       "exact os and python",
			job:        types.MatrixJob{OS: "windows-latest", Python: "3.9", ConstraintSet: "default"},
			wantMatch:  true,
			wantReason: "no win wheels for 3.9",
		},
		{
			name:      "exact os wrong python",
			job:       types.MatrixJob{OS: "windows-latest", Python: "3.10", ConstraintSet: "default"},
			wantMatch: false,
		},
		{
			name:       "prefix os",
			job:        types.MatrixJob{OS: "macos-14", Python: "3.11", ConstraintSet: "oldest"},
			wantMatch:  true,
			wantReason: "oldest pins lack arm64 wheels",
		},
		{
			name:      "prefix os wrong set",
			job:       types.MatrixJob{OS: "macos-14", Python: "3.11", ConstraintSet: "default"},
			wantMatch: false,
		},
		{
			name:       "python only rule matches any os",
			job:        types.MatrixJob{OS: "ubuntu-latest", Python: "3.13", ConstraintSet: "oldest"},
			wantMatch:  true,
			wantReason: "not validated yet",
		},
		{
			name:      "no rule",
			job:       types.MatrixJob{OS: "ubuntu-latest", Python: "3.11", ConstraintSet: "default"},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, matched := policy.Match(tt.job)
			require.Equal(t, tt.wantMatch, matched)
			if tt.wantMatch {
				if diff := cmp.Diff(tt.wantReason, rule.Reason); diff != "" {
					t.Fatalf("reason mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestExcludePolicyFirstMatchWins(t *testing.T) {
	policy := NewExcludePolicy([]types.MatrixExclude{
		{OS: "windows-*", Reason: "first"},
		{OS: "windows-latest", Reason: "second"},
	})

	rule, matched := policy.Match(types.MatrixJob{OS: "windows-latest", Python: "3.10", ConstraintSet: "default"})
	require.True(t, matched)
	require.Equal(t, "first", rule.Reason)
}

func TestExcludePolicyWildcardAxis(t *testing.T) {
	policy := NewExcludePolicy([]types.MatrixExclude{
		{OS: "*", Python: "3.9", Reason: "dropped"},
	})

	_, matched := policy.Match(types.MatrixJob{OS: "macos-13", Python: "3.9", ConstraintSet: "default"})
	require.True(t, matched)
	_, matched = policy.Match(types.MatrixJob{OS: "macos-13", Python: "3.10", ConstraintSet: "default"})
	require.False(t, matched)
}
