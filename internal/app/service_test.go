package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const pipelineYAML = `api_version: v1
kind: pipeline
metadata:
  name: ocean-sdk
  version: 6.1.0
  owners:
    - releng
manifest:
  requirements:
    - requirements.txt
matrix:
  os:
    - ubuntu-latest
  python:
    - "3.10"
    - "3.11"
  constraint_sets:
    - name: default
    - name: oldest
      pins: dimod==0.10.13
release:
  tag_prefix: v
  channel: pypi
`

const manifestTXT = `dimod>=0.10.0
dwave-neal>=0.5 ; python_version < "3.11"
`

const indexYAML = `packages:
  dimod:
    - 0.10.13
    - 0.12.3
  dwave-neal:
    - 0.6.0
`

// writePipelineFixture lays out a minimal pipeline directory: the spec,
// its requirements manifest, and a package index.
func writePipelineFixture(t *testing.T) (specPath string, indexPath string) {
	t.Helper()
	dir := t.TempDir()
	specPath = filepath.Join(dir, "pipeline.yaml")
	indexPath = filepath.Join(dir, "index.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(pipelineYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte(manifestTXT), 0o644))
	require.NoError(t, os.WriteFile(indexPath, []byte(indexYAML), 0o644))
	return specPath, indexPath
}
