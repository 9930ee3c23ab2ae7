package ports

import "ocean-manifest/internal/types"

// GraphExportPort renders a resolved lock as a dependency graph in DOT
// format, using the index's per-release requires metadata for edges.
type GraphExportPort interface {
	ExportDOT(lock types.EnvironmentLock, releases map[string][]types.PackageRelease, env types.Environment) (string, error)
}
