package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

type IndexFileAdapter struct {
	Path   string
	cached types.IndexFile
	loaded bool
}

func NewIndexFileAdapter(path string) *IndexFileAdapter {
	return &IndexFileAdapter{Path: path}
}

func (a *IndexFileAdapter) AvailableVersions(name string) ([]string, error) {
	index, err := a.load()
	if err != nil {
		return nil, err
	}
	if versions, ok := index.Packages[name]; ok && len(versions) > 0 {
		return versions, nil
	}
	normalized := shared.NormalizePackageName(name)
	if normalized != name {
		return index.Packages[normalized], nil
	}
	return index.Packages[name], nil
}

func (a *IndexFileAdapter) Releases() (map[string][]types.PackageRelease, error) {
	index, err := a.load()
	if err != nil {
		return nil, err
	}
	if index.Releases == nil {
		return map[string][]types.PackageRelease{}, nil
	}
	return index.Releases, nil
}

func (a *IndexFileAdapter) load() (types.IndexFile, error) {
	if a.loaded {
		return a.cached, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return types.IndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("index file not found").
			WithCause(err)
	}
	var idx types.IndexFile
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return types.IndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid index format").
			WithCause(err)
	}
	if idx.Packages == nil {
		idx.Packages = map[string][]string{}
	}
	// Versions listed only under releases still count as available.
	if len(idx.Packages) == 0 && len(idx.Releases) > 0 {
		for name, releases := range idx.Releases {
			for _, entry := range releases {
				if entry.Version == "" {
					continue
				}
				idx.Packages[name] = append(idx.Packages[name], entry.Version)
			}
			idx.Packages[name] = shared.UniqueStrings(idx.Packages[name])
		}
	}
	a.cached = idx
	a.loaded = true
	return idx, nil
}

var _ ports.IndexPort = (*IndexFileAdapter)(nil)
