package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/types"
)

func TestSetPolicyParticipatesIn(t *testing.T) {
	policy := NewSetPolicy([]types.ConstraintSet{
		{Name: "default"},
		{Name: "core", Packages: []string{"dimod", "Dwave_Neal"}},
		{Name: "samplers", Packages: []string{"dwave-*"}},
		{Name: "everything", Packages: []string{"*"}},
	})

	tests := []struct {
		name string
		set  string
		pkg  string
		want bool
	}{
		{name: "open set admits anything", set: "default", pkg: "numpy", want: true},
		{name: "exact match", set: "core", pkg: "dimod", want: true},
		{name: "exact match normalizes both sides", set: "core", pkg: "dwave.neal", want: true},
		{name: "exact miss", set: "core", pkg: "numpy", want: false},
		{name: "prefix match", set: "samplers", pkg: "dwave-system", want: true},
		{name: "prefix normalizes pattern", set: "samplers", pkg: "dwave_neal", want: true},
		{name: "prefix miss", set: "samplers", pkg: "minorminer", want: false},
		{name: "wildcard", set: "everything", pkg: "anything-at-all", want: true},
		{name: "unknown set is open", set: "missing", pkg: "numpy", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, policy.ParticipatesIn(tt.set, tt.pkg))
		})
	}
}

func TestSetPolicyFilterRequirements(t *testing.T) {
	policy := NewSetPolicy([]types.ConstraintSet{
		{Name: "oldest", Packages: []string{"dimod", "dwave-*"}},
	})
	reqs := []types.Requirement{
		{Name: "dimod", Source: "manifest:requirements.txt"},
		{Name: "numpy", Source: "manifest:requirements.txt"},
		{Name: "dwave-system", Source: "manifest:requirements.txt"},
	}

	kept := policy.FilterRequirements("oldest", reqs)
	want := []string{"dimod", "dwave-system"}
	var got []string
	for _, req := range kept {
		got = append(got, req.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kept requirements mismatch (-want +got):\n%s", diff)
	}

	// An open set returns a copy, never a view of the input.
	all := policy.FilterRequirements("default", reqs)
	require.Len(t, all, 3)
	all[0].Name = "mutated"
	require.Equal(t, "dimod", reqs[0].Name)
}
