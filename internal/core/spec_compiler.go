package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/rs/zerolog/log"

	"ocean-manifest/internal/policies"
	"ocean-manifest/internal/types"
)

type SpecCompiler struct{}

func NewSpecCompiler() SpecCompiler {
	return SpecCompiler{}
}

// ValidateSpec checks a pipeline spec for structural soundness before
// any resolution work starts.
func (c SpecCompiler) ValidateSpec(ctx context.Context, spec types.Spec) error {
	assert.NotEmpty(ctx, spec.APIVersion, "api_version must be set")
	assert.NotEmpty(ctx, string(spec.Kind), "kind must be set")
	assert.NotEmpty(ctx, spec.Metadata.Name, "metadata.name must be set")
	assert.NotEmpty(ctx, spec.Metadata.Version, "metadata.version must be set")
	if len(spec.Metadata.Owners) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("metadata.owners must not be empty")
	}
	if spec.Kind != types.SpecKindPipeline {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("spec kind must be pipeline")
	}
	if len(spec.Manifest.Requirements) == 0 && strings.TrimSpace(spec.Manifest.Pyproject) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest must reference requirements files or a pyproject")
	}
	if err := ValidateMatrix(spec.Matrix); err != nil {
		return err
	}
	for _, python := range spec.Matrix.Python {
		if _, err := pep440.Parse(python); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("matrix python entry is not a version: %s", python)).
				WithCause(err)
		}
	}
	for _, set := range spec.Matrix.ConstraintSets {
		if _, err := ParseConstraintSet(set); err != nil {
			return err
		}
		for _, pattern := range set.Packages {
			if strings.TrimSpace(pattern) == "" {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("constraint set %s has an empty package pattern", set.Name))
			}
		}
	}
	if err := validateResolutions(spec.Resolutions); err != nil {
		return err
	}
	if err := validateRelease(spec.Release); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("spec", spec.Metadata.Name).Msg("spec validated")
	return nil
}

func validateRelease(rule types.ReleaseRule) error {
	if strings.TrimSpace(rule.Channel) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("release.channel must not be empty")
	}
	return nil
}

func validateResolutions(resolutions []types.ResolutionDirective) error {
	for _, directive := range resolutions {
		if err := validateResolutionDirective(directive); err != nil {
			return err
		}
	}
	return nil
}

func validateResolutionDirective(directive types.ResolutionDirective) error {
	if strings.TrimSpace(directive.Dependency) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution directive dependency must not be empty")
	}
	action := strings.ToLower(strings.TrimSpace(directive.Action))
	if action == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution directive action must not be empty")
	}
	switch action {
	case policies.ActionForce, policies.ActionRelax, policies.ActionReplace, policies.ActionBlock:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("resolution directive has invalid action: %s", directive.Action))
	}
	if strings.TrimSpace(directive.Reason) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution directive reason must not be empty")
	}
	if strings.TrimSpace(directive.Owner) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution directive owner must not be empty")
	}
	if (action == policies.ActionForce || action == policies.ActionReplace) && strings.TrimSpace(directive.Value) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution directive value must not be empty for force/replace actions")
	}
	return nil
}
