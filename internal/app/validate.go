package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"ocean-manifest/internal/core"
)

// Validate checks the pipeline spec, its manifests, and the expanded
// matrix without touching a package index: every requirement must
// parse and every marker must evaluate in every matrix environment.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline spec path is required")
	}
	spec, err := s.SpecLoader.LoadPipeline(specPath)
	if err != nil {
		return ValidateResult{}, err
	}
	compiler := core.NewSpecCompiler()
	if err := compiler.ValidateSpec(ctx, spec); err != nil {
		return ValidateResult{}, err
	}
	reqs, project, err := s.loadManifest(specPath, spec)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := checkRequiresPython(project.RequiresPython, spec.Matrix.Python); err != nil {
		return ValidateResult{}, err
	}
	jobs, err := core.ExpandMatrix(ctx, spec.Matrix)
	if err != nil {
		return ValidateResult{}, err
	}
	for _, job := range jobs {
		env := core.EnvironmentForJob(job)
		for _, requirement := range reqs {
			if requirement.Marker == nil {
				continue
			}
			if _, err := core.EvalMarker(*requirement.Marker, env); err != nil {
				return ValidateResult{}, err
			}
		}
	}
	return ValidateResult{
		PipelineName: spec.Metadata.Name,
		JobCount:     len(jobs),
		Requirements: len(reqs),
	}, nil
}

// checkRequiresPython rejects matrix python entries outside the
// project's declared requires-python range.
func checkRequiresPython(requiresPython string, pythons []string) error {
	if requiresPython == "" {
		return nil
	}
	specifiers, err := pep440.NewSpecifiers(requiresPython)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("pyproject requires-python is not a valid specifier set: %s", requiresPython)).
			WithCause(err)
	}
	for _, python := range pythons {
		version, err := pep440.Parse(python)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("matrix python entry is not a version: %s", python)).
				WithCause(err)
		}
		if !specifiers.Check(version) {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("matrix python %s is outside requires-python %s", python, requiresPython))
		}
	}
	return nil
}
