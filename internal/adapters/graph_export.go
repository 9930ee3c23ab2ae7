package adapters

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

// GraphExportAdapter renders a resolved lock as a DOT digraph. Edges
// come from the index's per-release requires metadata; only targets
// that are themselves pinned in the lock become edges, since the lock
// already reflects environment-marker filtering.
type GraphExportAdapter struct{}

func NewGraphExportAdapter() GraphExportAdapter {
	return GraphExportAdapter{}
}

func (a GraphExportAdapter) ExportDOT(lock types.EnvironmentLock, releases map[string][]types.PackageRelease, env types.Environment) (string, error) {
	if len(lock.Entries) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("environment lock has no entries")
	}
	g := graph.New(graph.StringHash, graph.Directed())
	pinned := map[string]string{}
	for _, entry := range lock.Entries {
		name := shared.NormalizePackageName(entry.Package)
		pinned[name] = entry.Version
		label := fmt.Sprintf("%s %s", name, entry.Version)
		if err := g.AddVertex(name, graph.VertexAttribute("label", label)); err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to add graph vertex").
				WithCause(err)
		}
	}
	normalized := map[string][]types.PackageRelease{}
	for name, list := range releases {
		normalized[shared.NormalizePackageName(name)] = list
	}
	for _, entry := range lock.Entries {
		name := shared.NormalizePackageName(entry.Package)
		release, ok := findRelease(normalized[name], entry.Version)
		if !ok {
			continue
		}
		for _, requires := range release.Requires {
			target := requirementName(requires)
			if target == "" || target == name {
				continue
			}
			if _, ok := pinned[target]; !ok {
				continue
			}
			if err := g.AddEdge(name, target); err != nil && err != graph.ErrEdgeAlreadyExists {
				return "", errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to add graph edge").
					WithCause(err)
			}
		}
	}
	var builder strings.Builder
	if err := draw.DOT(g, &builder, draw.GraphAttribute("label", graphTitle(lock, env))); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render dependency graph").
			WithCause(err)
	}
	return builder.String(), nil
}

func graphTitle(lock types.EnvironmentLock, env types.Environment) string {
	if env.PythonVersion == "" {
		return lock.Label
	}
	return fmt.Sprintf("%s (python %s, %s)", lock.Label, env.PythonVersion, env.SysPlatform)
}

func findRelease(list []types.PackageRelease, version string) (types.PackageRelease, bool) {
	for _, release := range list {
		if release.Version == version {
			return release, true
		}
	}
	return types.PackageRelease{}, false
}

// requirementName extracts the normalized project name from a PEP 508
// requirement line, dropping extras, specifiers, and markers.
func requirementName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	end := len(trimmed)
	for i, r := range trimmed {
		if r == '[' || r == '(' || r == ';' || r == ' ' ||
			r == '<' || r == '>' || r == '=' || r == '!' || r == '~' {
			end = i
			break
		}
	}
	return shared.NormalizePackageName(trimmed[:end])
}

var _ ports.GraphExportPort = GraphExportAdapter{}
