package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/core"
	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

type RequirementsFileAdapter struct{}

func NewRequirementsFileAdapter() RequirementsFileAdapter {
	return RequirementsFileAdapter{}
}

// LoadRequirements parses a requirements file: one specifier per line,
// "#" comments, backslash continuations. Installer options ("-r",
// "--index-url", ...) are not manifest content and are rejected.
func (a RequirementsFileAdapter) LoadRequirements(path string) ([]types.Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("requirements file not found").
			WithCause(err)
	}
	source := fmt.Sprintf("manifest:%s", filepath.Base(path))

	var reqs []types.Requirement
	pending := ""
	for i, line := range strings.Split(string(data), "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			pending += strings.TrimSuffix(line, "\\")
			continue
		}
		line = pending + line
		pending = ""
		if strings.HasPrefix(line, "-") {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s:%d: installer options are not allowed in manifests: %s", filepath.Base(path), i+1, line))
		}
		req, err := core.ParseRequirement(line, source)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s:%d: invalid requirement", filepath.Base(path), i+1)).
				WithCause(err)
		}
		reqs = append(reqs, req)
	}
	if pending != "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s: dangling line continuation", filepath.Base(path)))
	}
	return reqs, nil
}

var _ ports.RequirementsPort = RequirementsFileAdapter{}
