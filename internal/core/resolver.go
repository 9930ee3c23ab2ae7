package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"ocean-manifest/internal/policies"
	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

type ResolverCore struct {
	Index        ports.IndexPort
	UseSATSolver bool
}

func NewResolverCore(index ports.IndexPort) ResolverCore {
	return ResolverCore{Index: index}
}

// ResolveEnvironment computes the lock for one matrix cell: keep the
// requirements whose markers hold in env, merge duplicates, apply
// resolution directives, and select the best compatible version of
// each package from the index. A conflict without a directive is an
// error.
func (r ResolverCore) ResolveEnvironment(ctx context.Context, env types.Environment, reqs []types.Requirement, directives []types.ResolutionDirective) (types.EnvironmentLock, []types.ResolutionRecord, error) {
	if r.Index == nil {
		return types.EnvironmentLock{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires an index port")
	}

	active, err := activeRequirements(reqs, env)
	if err != nil {
		return types.EnvironmentLock{}, nil, err
	}
	merged := mergeRequirements(active)
	directiveMap := mapDirectives(directives)

	lock := types.EnvironmentLock{Label: env.Label}
	var records []types.ResolutionRecord

	if r.UseSATSolver {
		prepared := make([]types.Requirement, 0, len(merged))
		for _, req := range merged {
			updated, record, err := r.prepareRequirement(req, directiveMap)
			if err != nil {
				return types.EnvironmentLock{}, nil, err
			}
			if record.Action != "" {
				records = append(records, record)
			}
			prepared = append(prepared, updated)
		}
		releases, err := r.Index.Releases()
		if err != nil {
			return types.EnvironmentLock{}, nil, err
		}
		selected, err := resolveWithSolver(ctx, releases, env, prepared)
		if err != nil {
			return types.EnvironmentLock{}, nil, err
		}
		for name, version := range selected {
			lock.Entries = append(lock.Entries, types.LockEntry{Package: name, Version: version})
		}
	} else {
		cache := newVersionCache()
		for _, req := range merged {
			version, record, err := r.resolveRequirement(ctx, req, directiveMap, cache)
			if err != nil {
				return types.EnvironmentLock{}, nil, err
			}
			if record.Action != "" {
				records = append(records, record)
			}
			if version == "" {
				continue
			}
			lock.Entries = append(lock.Entries, types.LockEntry{Package: req.Name, Version: version})
		}
	}

	sort.Slice(lock.Entries, func(i, j int) bool {
		return lock.Entries[i].Package < lock.Entries[j].Package
	})
	log.Ctx(ctx).Debug().
		Str("environment", env.Label).
		Int("resolved", len(lock.Entries)).
		Msg("resolver completed")
	return lock, records, nil
}

// activeRequirements keeps the requirements whose marker evaluates true
// in the given environment. Marker-free requirements always apply.
func activeRequirements(reqs []types.Requirement, env types.Environment) ([]types.Requirement, error) {
	var out []types.Requirement
	for _, req := range reqs {
		if req.Marker != nil {
			ok, err := EvalMarker(*req.Marker, env)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, req)
	}
	return out, nil
}

func (r ResolverCore) prepareRequirement(req types.Requirement, directives map[string]types.ResolutionDirective) (types.Requirement, types.ResolutionRecord, error) {
	directive, ok := directiveFor(req, directives)
	if !ok {
		return req, types.ResolutionRecord{}, nil
	}
	updated, record, err := policies.ApplyResolution(req, directive)
	if err != nil {
		return types.Requirement{}, record, err
	}
	return updated, record, nil
}

func (r ResolverCore) resolveRequirement(ctx context.Context, req types.Requirement, directives map[string]types.ResolutionDirective, cache *versionCache) (string, types.ResolutionRecord, error) {
	available, err := r.Index.AvailableVersions(req.Name)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	version, err := bestCompatibleVersion(req, available, cache)
	if err == nil {
		return version, types.ResolutionRecord{}, nil
	}

	directive, ok := directiveFor(req, directives)
	if !ok {
		return "", types.ResolutionRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("conflict without resolution directive: %s", req.Name)).
			WithCause(err)
	}

	updated, record, err := policies.ApplyResolution(req, directive)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}

	available, err = r.Index.AvailableVersions(updated.Name)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	version, err = bestCompatibleVersion(updated, available, cache)
	if err != nil {
		return "", types.ResolutionRecord{}, err
	}
	log.Ctx(ctx).Debug().Str("dependency", req.Name).Msg("resolution directive applied")
	return version, record, nil
}

// mergeRequirements folds duplicate package lines into one requirement
// per normalized name, then keeps only the constraints of the highest
// source priority so constraint-set pins override manifest lines.
func mergeRequirements(reqs []types.Requirement) []types.Requirement {
	merged := map[string]types.Requirement{}
	var order []string
	for _, req := range reqs {
		key := shared.NormalizePackageName(req.Name)
		existing, ok := merged[key]
		if !ok {
			req.Name = key
			merged[key] = req
			order = append(order, key)
			continue
		}
		existing.Constraints = append(existing.Constraints, req.Constraints...)
		merged[key] = existing
	}
	out := make([]types.Requirement, 0, len(order))
	for _, key := range order {
		req := merged[key]
		req.Constraints = filterConstraintsByPriority(req.Constraints)
		out = append(out, req)
	}
	return out
}

func mapDirectives(directives []types.ResolutionDirective) map[string]types.ResolutionDirective {
	mapped := map[string]types.ResolutionDirective{}
	for _, directive := range directives {
		if directive.Dependency == "" {
			continue
		}
		mapped[shared.NormalizePackageName(directive.Dependency)] = directive
	}
	return mapped
}

func directiveFor(req types.Requirement, directives map[string]types.ResolutionDirective) (types.ResolutionDirective, bool) {
	directive, ok := directives[shared.NormalizePackageName(req.Name)]
	return directive, ok
}

// filterConstraintsByPriority keeps only the constraints from the
// highest-priority source. Bare-name references never displace hard
// constraints.
func filterConstraintsByPriority(constraints []types.Constraint) []types.Constraint {
	if len(constraints) == 0 {
		return constraints
	}
	maxPriority := -1
	for _, constraint := range constraints {
		priority := constraintPriority(constraint.Source)
		if priority > maxPriority {
			maxPriority = priority
		}
	}
	if maxPriority < 0 {
		return constraints
	}
	var top []types.Constraint
	for _, constraint := range constraints {
		if constraintPriority(constraint.Source) == maxPriority {
			top = append(top, constraint)
		}
	}
	hasHard := false
	for _, constraint := range top {
		if constraint.Op != types.ConstraintOpNone {
			hasHard = true
			break
		}
	}
	if hasHard {
		var hard []types.Constraint
		for _, constraint := range top {
			if constraint.Op != types.ConstraintOpNone {
				hard = append(hard, constraint)
			}
		}
		return hard
	}
	var fallback []types.Constraint
	for _, constraint := range constraints {
		if constraint.Op == types.ConstraintOpNone {
			continue
		}
		fallback = append(fallback, constraint)
	}
	return fallback
}

func constraintPriority(source string) int {
	normalized := strings.ToLower(strings.TrimSpace(source))
	switch {
	case strings.HasPrefix(normalized, "resolution:"):
		return 3
	case strings.HasPrefix(normalized, "set:"):
		return 2
	case strings.HasPrefix(normalized, "manifest:"), strings.HasPrefix(normalized, "pyproject:"):
		return 1
	default:
		return 0
	}
}
