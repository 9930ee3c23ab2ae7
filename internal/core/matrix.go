package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"ocean-manifest/internal/policies"
	"ocean-manifest/internal/types"
)

// ExpandMatrix produces the cross product of the matrix axes minus
// excluded cells, in declaration order (os, then python, then
// constraint set). At least one job must survive exclusion.
func ExpandMatrix(ctx context.Context, matrix types.Matrix) ([]types.MatrixJob, error) {
	if err := ValidateMatrix(matrix); err != nil {
		return nil, err
	}
	exclude := policies.NewExcludePolicy(matrix.Exclude)
	var jobs []types.MatrixJob
	excluded := 0
	for _, osName := range matrix.OS {
		for _, python := range matrix.Python {
			for _, set := range matrix.ConstraintSets {
				job := types.MatrixJob{
					OS:            osName,
					Python:        python,
					ConstraintSet: set.Name,
					Label:         JobLabel(osName, python, set.Name),
				}
				if _, ok := exclude.Match(job); ok {
					excluded++
					continue
				}
				jobs = append(jobs, job)
			}
		}
	}
	if len(jobs) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("matrix exclusions remove every job")
	}
	log.Ctx(ctx).Debug().
		Int("jobs", len(jobs)).
		Int("excluded", excluded).
		Msg("matrix expanded")
	return jobs, nil
}

// JobLabel builds the stable identifier for one matrix cell. Lock and
// report files are named after it.
func JobLabel(osName string, python string, set string) string {
	return fmt.Sprintf("%s-py%s-%s", osName, python, set)
}

// ParseJobLabel is the inverse of JobLabel. Constraint set names may
// contain dashes, so the python segment ends at the first dash after
// the "py" marker.
func ParseJobLabel(label string) (types.MatrixJob, error) {
	marker := strings.Index(label, "-py")
	if marker <= 0 {
		return types.MatrixJob{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid job label: %s", label))
	}
	osName := label[:marker]
	rest := label[marker+len("-py"):]
	split := strings.Index(rest, "-")
	if split <= 0 || split == len(rest)-1 {
		return types.MatrixJob{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid job label: %s", label))
	}
	return types.MatrixJob{
		OS:            osName,
		Python:        rest[:split],
		ConstraintSet: rest[split+1:],
		Label:         label,
	}, nil
}

// ValidateMatrix checks axis and exclusion well-formedness. Exclusion
// axis values must reference declared axis entries unless they use a
// wildcard.
func ValidateMatrix(matrix types.Matrix) error {
	if len(matrix.OS) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("matrix.os must not be empty")
	}
	if len(matrix.Python) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("matrix.python must not be empty")
	}
	if len(matrix.ConstraintSets) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("matrix.constraint_sets must not be empty")
	}
	setNames := map[string]struct{}{}
	for _, set := range matrix.ConstraintSets {
		name := strings.TrimSpace(set.Name)
		if name == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("constraint set name must not be empty")
		}
		if _, ok := setNames[name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("duplicate constraint set: %s", name))
		}
		setNames[name] = struct{}{}
	}
	for _, rule := range matrix.Exclude {
		if strings.TrimSpace(rule.OS) == "" && strings.TrimSpace(rule.Python) == "" && strings.TrimSpace(rule.ConstraintSet) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("matrix exclusion must constrain at least one axis")
		}
		if err := validateExcludeAxis(rule.OS, matrix.OS, "os"); err != nil {
			return err
		}
		if err := validateExcludeAxis(rule.Python, matrix.Python, "python"); err != nil {
			return err
		}
		if err := validateExcludeAxis(rule.ConstraintSet, constraintSetNames(matrix.ConstraintSets), "constraint_set"); err != nil {
			return err
		}
	}
	return nil
}

// ParseConstraintSet turns a set's space-separated pin string into
// requirements attributed to "set:<name>".
func ParseConstraintSet(set types.ConstraintSet) ([]types.Requirement, error) {
	var out []types.Requirement
	for _, pin := range strings.Fields(set.Pins) {
		req, err := ParseRequirement(pin, fmt.Sprintf("set:%s", set.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

// EnvironmentForJob derives concrete marker variable values from a
// matrix cell. The runner OS name decides the platform triple the way
// CPython would report it.
func EnvironmentForJob(job types.MatrixJob) types.Environment {
	env := types.Environment{
		Label:             job.Label,
		PythonVersion:     job.Python,
		PythonFullVersion: job.Python + ".0",
	}
	osName := strings.ToLower(job.OS)
	switch {
	case strings.Contains(osName, "macos"):
		env.SysPlatform = "darwin"
		env.OSName = "posix"
		env.PlatformSystem = "Darwin"
		env.PlatformMachine = "arm64"
	case strings.Contains(osName, "windows"):
		env.SysPlatform = "win32"
		env.OSName = "nt"
		env.PlatformSystem = "Windows"
		env.PlatformMachine = "AMD64"
	default:
		env.SysPlatform = "linux"
		env.OSName = "posix"
		env.PlatformSystem = "Linux"
		env.PlatformMachine = "x86_64"
	}
	return env
}

func validateExcludeAxis(value string, axis []string, name string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasSuffix(trimmed, "*") {
		return nil
	}
	for _, entry := range axis {
		if entry == trimmed {
			return nil
		}
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("matrix exclusion references unknown %s: %s", name, trimmed))
}

func constraintSetNames(sets []types.ConstraintSet) []string {
	out := make([]string, 0, len(sets))
	for _, set := range sets {
		out = append(out, set.Name)
	}
	return out
}
