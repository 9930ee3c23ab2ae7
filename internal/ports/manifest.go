package ports

import "ocean-manifest/internal/types"

type RequirementsPort interface {
	LoadRequirements(path string) ([]types.Requirement, error)
}

type PyprojectPort interface {
	LoadPyproject(path string) (types.ProjectManifest, error)
}
