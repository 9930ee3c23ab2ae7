package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const pyprojectTOML = `[project]
name = "dwave-ocean-sdk"
version = "6.1.0"
requires-python = ">=3.8"
dependencies = [
    "dimod==0.12.3",
    "dwave-neal>=0.6.0",
    "minorminer>=0.2.0 ; python_version < \"3.12\"",
]
`

func writePyproject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPyprojectFileAdapterLoad(t *testing.T) {
	adapter := NewPyprojectFileAdapter()
	manifest, err := adapter.LoadPyproject(writePyproject(t, pyprojectTOML))
	require.NoError(t, err)

	require.Equal(t, "dwave-ocean-sdk", manifest.Name)
	require.Equal(t, "6.1.0", manifest.Version)
	require.Equal(t, ">=3.8", manifest.RequiresPython)

	var names []string
	for _, req := range manifest.Requirements {
		names = append(names, req.Name)
	}
	if diff := cmp.Diff([]string{"dimod", "dwave-neal", "minorminer"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "pyproject:dwave-ocean-sdk", manifest.Requirements[0].Source)
	require.NotNil(t, manifest.Requirements[2].Marker)
}

func TestPyprojectFileAdapterErrors(t *testing.T) {
	adapter := NewPyprojectFileAdapter()

	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode errbuilder.ErrCode
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.toml") },
			wantCode: errbuilder.CodeNotFound,
		},
		{
			name:     "invalid toml",
			path:     func(t *testing.T) string { return writePyproject(t, "[project\nname =") },
			wantCode: errbuilder.CodeInvalidArgument,
		},
		{
			name:     "missing name",
			path:     func(t *testing.T) string { return writePyproject(t, "[project]\nversion = \"1.0\"\n") },
			wantCode: errbuilder.CodeInvalidArgument,
		},
		{
			name: "bad dependency",
			path: func(t *testing.T) string {
				return writePyproject(t, "[project]\nname = \"x\"\ndependencies = [\"==1.0\"]\n")
			},
			wantCode: errbuilder.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.LoadPyproject(tt.path(t))
			require.Error(t, err)
			if diff := cmp.Diff(tt.wantCode, errbuilder.CodeOf(err)); diff != "" {
				t.Fatalf("error code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
