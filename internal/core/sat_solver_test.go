package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/types"
)

func TestResolveWithSolverPrefersNewest(t *testing.T) {
	releases := map[string][]types.PackageRelease{
		"dimod": {
			{Version: "0.9.0"},
			{Version: "0.10.13"},
			{Version: "0.12.3"},
		},
	}
	reqs := []types.Requirement{
		{
			Name: "dimod",
			Constraints: []types.Constraint{
				{Name: "dimod", Op: types.ConstraintOpGte, Version: "0.9.0"},
			},
		},
	}

	selected, err := resolveWithSolver(t.Context(), releases, linuxPy310(), reqs)
	require.NoError(t, err)
	want := map[string]string{"dimod": "0.12.3"}
	if diff := cmp.Diff(want, selected); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
}

func TestResolveWithSolverTransitive(t *testing.T) {
	releases := map[string][]types.PackageRelease{
		"dwave-system": {
			{Version: "1.18.0", Requires: []string{"dimod>=0.10.0,<0.12.0", "minorminer>=0.2.0"}},
		},
		"dimod": {
			{Version: "0.9.0"},
			{Version: "0.10.13"},
			{Version: "0.12.3"},
		},
		"minorminer": {
			{Version: "0.2.9"},
			{Version: "0.2.12"},
		},
	}
	reqs := []types.Requirement{
		{
			Name: "dwave-system",
			Constraints: []types.Constraint{
				{Name: "dwave-system", Op: types.ConstraintOpEq, Version: "1.18.0"},
			},
		},
	}

	selected, err := resolveWithSolver(t.Context(), releases, linuxPy310(), reqs)
	require.NoError(t, err)
	if diff := cmp.Diff("1.18.0", selected["dwave-system"]); diff != "" {
		t.Fatalf("unexpected dwave-system (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("0.10.13", selected["dimod"]); diff != "" {
		t.Fatalf("unexpected dimod (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("0.2.12", selected["minorminer"]); diff != "" {
		t.Fatalf("unexpected minorminer (-want +got):\n%s", diff)
	}
}

func TestResolveWithSolverMarkerGatedEdge(t *testing.T) {
	// The gated edge is unsatisfiable; resolution only succeeds because
	// the marker does not hold for python 3.10.
	releases := map[string][]types.PackageRelease{
		"dwave-system": {
			{Version: "1.18.0", Requires: []string{`dwave-tabu>=9.9 ; python_version < "3.10"`}},
		},
		"dwave-tabu": {
			{Version: "0.5.0"},
		},
	}
	reqs := []types.Requirement{
		{Name: "dwave-system"},
	}

	selected, err := resolveWithSolver(t.Context(), releases, linuxPy310(), reqs)
	require.NoError(t, err)
	if diff := cmp.Diff("1.18.0", selected["dwave-system"]); diff != "" {
		t.Fatalf("unexpected dwave-system (-want +got):\n%s", diff)
	}
}

func TestResolveWithSolverNoCandidate(t *testing.T) {
	releases := map[string][]types.PackageRelease{
		"dimod": {{Version: "0.9.0"}},
	}
	reqs := []types.Requirement{
		{
			Name: "dimod",
			Constraints: []types.Constraint{
				{Name: "dimod", Op: types.ConstraintOpGte, Version: "1.0.0"},
			},
		},
	}

	_, err := resolveWithSolver(t.Context(), releases, linuxPy310(), reqs)
	require.Error(t, err)
	require.Contains(t, errorText(err), "no compatible version")
}
