package app

import (
	"path/filepath"
	"strings"

	"ocean-manifest/internal/types"
)

// manifestProject carries the identity fields collected from the
// manifests: the version used for release checks and the declared
// requires-python range, when a pyproject provides them.
type manifestProject struct {
	Version        string
	RequiresPython string
}

// loadManifest reads every manifest file the pipeline references and
// returns the combined requirement list plus the project identity.
// Paths are resolved relative to the spec file.
func (s Service) loadManifest(specPath string, spec types.Spec) ([]types.Requirement, manifestProject, error) {
	baseDir := filepath.Dir(specPath)
	var reqs []types.Requirement
	for _, ref := range spec.Manifest.Requirements {
		path := resolveManifestPath(baseDir, ref)
		loaded, err := s.Requirements.LoadRequirements(path)
		if err != nil {
			return nil, manifestProject{}, err
		}
		reqs = append(reqs, loaded...)
	}
	identity := manifestProject{Version: spec.Metadata.Version}
	if strings.TrimSpace(spec.Manifest.Pyproject) != "" {
		path := resolveManifestPath(baseDir, spec.Manifest.Pyproject)
		project, err := s.Pyproject.LoadPyproject(path)
		if err != nil {
			return nil, manifestProject{}, err
		}
		reqs = append(reqs, project.Requirements...)
		if strings.TrimSpace(project.Version) != "" {
			identity.Version = project.Version
		}
		identity.RequiresPython = strings.TrimSpace(project.RequiresPython)
	}
	return reqs, identity, nil
}

func resolveManifestPath(baseDir string, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(baseDir, ref)
}
