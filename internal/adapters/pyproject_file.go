package adapters

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/core"
	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

type PyprojectFileAdapter struct{}

func NewPyprojectFileAdapter() PyprojectFileAdapter {
	return PyprojectFileAdapter{}
}

// pyprojectDoc maps the subset of pyproject.toml this tool reads: the
// PEP 621 [project] table.
type pyprojectDoc struct {
	Project struct {
		Name           string   `toml:"name"`
		Version        string   `toml:"version"`
		RequiresPython string   `toml:"requires-python"`
		Dependencies   []string `toml:"dependencies"`
	} `toml:"project"`
}

func (a PyprojectFileAdapter) LoadPyproject(path string) (types.ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("pyproject file not found").
			WithCause(err)
	}
	var doc pyprojectDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse pyproject toml").
			WithCause(err)
	}
	if doc.Project.Name == "" {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pyproject is missing project.name")
	}
	manifest := types.ProjectManifest{
		Name:           doc.Project.Name,
		Version:        doc.Project.Version,
		RequiresPython: doc.Project.RequiresPython,
	}
	for i, line := range doc.Project.Dependencies {
		req, err := core.ParseRequirement(line, "pyproject:"+doc.Project.Name)
		if err != nil {
			return types.ProjectManifest{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("project.dependencies[%d]: invalid requirement", i)).
				WithCause(err)
		}
		manifest.Requirements = append(manifest.Requirements, req)
	}
	return manifest, nil
}

var _ ports.PyprojectPort = PyprojectFileAdapter{}
