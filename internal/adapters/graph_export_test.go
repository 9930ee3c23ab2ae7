package adapters

import (
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/types"
)

func TestGraphExportAdapterExportDOT(t *testing.T) {
	lock := types.EnvironmentLock{
		Label: "ubuntu-latest-py3.10-default",
		Entries: []types.LockEntry{
			{Package: "dwave-system", Version: "1.18.0"},
			{Package: "dimod", Version: "0.12.3"},
			{Package: "minorminer", Version: "0.2.12"},
		},
	}
	releases := map[string][]types.PackageRelease{
		"dwave-system": {
			{Version: "1.18.0", Requires: []string{
				"dimod>=0.10.0",
				"minorminer>=0.2.0 ; python_version < \"3.12\"",
				"scipy>=1.7.3",
			}},
		},
	}
	env := types.Environment{PythonVersion: "3.10", SysPlatform: "linux"}

	dot, err := NewGraphExportAdapter().ExportDOT(lock, releases, env)
	require.NoError(t, err)

	require.Contains(t, dot, "digraph")
	require.Contains(t, dot, `"dwave-system"`)
	require.Contains(t, dot, "dimod 0.12.3")
	require.Contains(t, dot, "ubuntu-latest-py3.10-default (python 3.10, linux)")
	// scipy is not pinned in the lock so it never becomes an edge.
	require.NotContains(t, dot, "scipy")
	require.Equal(t, 2, strings.Count(dot, "->"))
}

func TestGraphExportAdapterEmptyLock(t *testing.T) {
	_, err := NewGraphExportAdapter().ExportDOT(types.EnvironmentLock{}, nil, types.Environment{})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestRequirementName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "dimod", want: "dimod"},
		{raw: "dimod>=0.10.0", want: "dimod"},
		{raw: "dwave-neal (>=0.5.4)", want: "dwave-neal"},
		{raw: "networkx[default]>=2.4", want: "networkx"},
		{raw: "scipy ; python_version < \"3.12\"", want: "scipy"},
		{raw: "Dwave_Preprocessing~=0.5", want: "dwave-preprocessing"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, requirementName(tt.raw)); diff != "" {
			t.Fatalf("requirementName(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}
