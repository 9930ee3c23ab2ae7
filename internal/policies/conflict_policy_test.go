package policies

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/types"
)

func TestApplyResolutionForce(t *testing.T) {
	req := types.Requirement{
		Name: "dimod",
		Constraints: []types.Constraint{
			{Name: "dimod", Op: types.ConstraintOpGte, Version: "0.10.0", Source: "manifest:requirements.txt"},
		},
	}
	directive := types.ResolutionDirective{
		Dependency: "dimod",
		Action:     "force",
		Value:      "0.12.3",
		Reason:     "pin past ABI break",
		Owner:      "releng",
	}

	got, record, err := ApplyResolution(req, directive)
	require.NoError(t, err)

	want := []types.Constraint{
		{Name: "dimod", Op: types.ConstraintOpEq, Version: "0.12.3", Source: "resolution:force"},
	}
	if diff := cmp.Diff(want, got.Constraints); diff != "" {
		t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(types.ResolutionRecord(directive), record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyResolutionRelax(t *testing.T) {
	req := types.Requirement{
		Name: "numpy",
		Constraints: []types.Constraint{
			{Name: "numpy", Op: types.ConstraintOpLt, Version: "2", Source: "manifest:requirements.txt"},
		},
	}
	got, _, err := ApplyResolution(req, types.ResolutionDirective{
		Dependency: "numpy", Action: "relax", Reason: "upper bound stale", Owner: "releng",
	})
	require.NoError(t, err)
	require.Empty(t, got.Constraints)
	require.Equal(t, "numpy", got.Name)
}

func TestApplyResolutionReplace(t *testing.T) {
	req := types.Requirement{
		Name: "dwave-qbsolv",
		Constraints: []types.Constraint{
			{Name: "dwave-qbsolv", Op: types.ConstraintOpEq, Version: "0.3.4", Source: "manifest:requirements.txt"},
		},
	}
	got, _, err := ApplyResolution(req, types.ResolutionDirective{
		Dependency: "dwave-qbsolv", Action: "replace", Value: "dwave-samplers", Reason: "package retired", Owner: "releng",
	})
	require.NoError(t, err)
	require.Equal(t, "dwave-samplers", got.Name)
	require.Empty(t, got.Constraints)
}

func TestApplyResolutionErrors(t *testing.T) {
	tests := []struct {
		name      string
		directive types.ResolutionDirective
		wantCode  errbuilder.ErrCode
	}{
		{
			name:      "block",
			directive: types.ResolutionDirective{Dependency: "dimod", Action: "block", Reason: "CVE", Owner: "sec"},
			wantCode:  errbuilder.CodePermissionDenied,
		},
		{
			name:      "force without value",
			directive: types.ResolutionDirective{Dependency: "dimod", Action: "force", Reason: "r", Owner: "releng"},
			wantCode:  errbuilder.CodeInvalidArgument,
		},
		{
			name:      "replace without value",
			directive: types.ResolutionDirective{Dependency: "dimod", Action: "replace", Reason: "r", Owner: "releng"},
			wantCode:  errbuilder.CodeInvalidArgument,
		},
		{
			name:      "unknown action",
			directive: types.ResolutionDirective{Dependency: "dimod", Action: "delete", Reason: "r", Owner: "releng"},
			wantCode:  errbuilder.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ApplyResolution(types.Requirement{Name: "dimod"}, tt.directive)
			require.Error(t, err)
			if diff := cmp.Diff(tt.wantCode, errbuilder.CodeOf(err)); diff != "" {
				t.Fatalf("error code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
