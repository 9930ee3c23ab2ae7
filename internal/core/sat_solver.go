package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/crillab/gophersat/solver"

	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

// satVarKey maps a SAT variable ID back to its package name and version.
type satVarKey struct {
	Name    string
	Version string
}

// satSolverState holds all bookkeeping for one SAT solver invocation.
// Isolating this avoids passing six maps through every helper call.
type satSolverState struct {
	nameToVersionID map[string]map[string]int
	packageVars     map[string][]int
	varRequires     map[int][]types.Requirement
	varKey          map[int]satVarKey
	cache           *versionCache
	varID           int
	costLits        []solver.Lit
	costWeights     []int
}

// resolveWithSolver uses a SAT solver to select the best compatible set
// of packages for the given requirements, including transitive
// requirements declared in the index's release metadata. Edges whose
// markers do not hold in env are ignored.
func resolveWithSolver(ctx context.Context, releases map[string][]types.PackageRelease, env types.Environment, reqs []types.Requirement) (map[string]string, error) {
	if len(reqs) == 0 {
		return map[string]string{}, nil
	}
	if len(releases) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("sat resolution requires an index with release metadata")
	}

	state, err := buildSolverState(releases, env)
	if err != nil {
		return nil, err
	}
	if state.varID == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("sat solver received no package versions to solve")
	}

	clauses, err := buildSolverClauses(state, reqs)
	if err != nil {
		return nil, err
	}

	return solveSAT(ctx, state, clauses)
}

// buildSolverState enumerates every (package, version) pair as a SAT
// variable, pre-parsing each release's requirement lines and dropping
// the edges gated out by the environment.
func buildSolverState(releases map[string][]types.PackageRelease, env types.Environment) (satSolverState, error) {
	s := satSolverState{
		nameToVersionID: map[string]map[string]int{},
		packageVars:     map[string][]int{},
		varRequires:     map[int][]types.Requirement{},
		varKey:          map[int]satVarKey{},
		cache:           newVersionCache(),
	}

	for name, versions := range releases {
		normalized := shared.NormalizePackageName(name)
		ordered := sortReleasesAscending(versions, s.cache)
		ids := make([]int, 0, len(ordered))
		for i, entry := range ordered {
			if entry.Version == "" {
				continue
			}
			s.varID++
			id := s.varID
			if s.nameToVersionID[normalized] == nil {
				s.nameToVersionID[normalized] = map[string]int{}
			}
			s.nameToVersionID[normalized][entry.Version] = id
			ids = append(ids, id)
			s.varKey[id] = satVarKey{Name: normalized, Version: entry.Version}
			requires, err := activeReleaseRequires(normalized, entry, env)
			if err != nil {
				return satSolverState{}, err
			}
			s.varRequires[id] = requires
			weight := len(ordered) - 1 - i
			s.costLits = append(s.costLits, solver.IntToLit(int32(id))) //nolint:gosec // id is bounded by the number of package versions, well within int32 range
			s.costWeights = append(s.costWeights, weight)
		}
		if len(ids) > 0 {
			s.packageVars[normalized] = ids
		}
	}
	return s, nil
}

// activeReleaseRequires parses a release's requirement lines and keeps
// those whose markers hold in the environment. Extras edges never
// apply: locks are built without extras.
func activeReleaseRequires(name string, release types.PackageRelease, env types.Environment) ([]types.Requirement, error) {
	var out []types.Requirement
	for _, line := range release.Requires {
		req, err := ParseRequirement(line, fmt.Sprintf("index:%s==%s", name, release.Version))
		if err != nil {
			return nil, err
		}
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

// buildSolverClauses generates three kinds of SAT clauses:
//  1. At-most-one: only one version of each package can be selected.
//  2. Root demands: each requested requirement must have at least one candidate.
//  3. Transitive: if a version is selected its requires must be satisfiable.
func buildSolverClauses(s satSolverState, reqs []types.Requirement) ([][]int, error) {
	var clauses [][]int

	// At-most-one per package
	for _, ids := range s.packageVars {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				clauses = append(clauses, []int{-ids[i], -ids[j]})
			}
		}
	}

	// Root requirement demands
	for _, req := range reqs {
		candidates, err := candidatesForRequirement(req, s)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("no compatible version for %s", req.Name))
		}
		clauses = append(clauses, candidates)
	}

	// Transitive requirement clauses
	for id, requires := range s.varRequires {
		for _, req := range requires {
			candidates, err := candidatesForRequirement(req, s)
			if err != nil {
				return nil, err
			}
			if len(candidates) == 0 {
				clauses = append(clauses, []int{-id})
				continue
			}
			clause := append([]int{-id}, candidates...)
			clauses = append(clauses, uniqueInts(clause))
		}
	}
	return clauses, nil
}

// solveSAT feeds the clauses to gophersat's optimization solver, extracts
// the selected (name, version) pairs from the model, and returns them.
func solveSAT(ctx context.Context, s satSolverState, clauses [][]int) (map[string]string, error) {
	problem := solver.ParseSliceNb(clauses, s.varID)
	problem.SetCostFunc(s.costLits, s.costWeights)
	sat := solver.New(problem)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if cost := sat.Minimize(); cost < 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("sat solver found no satisfiable selection")
	}
	model := sat.Model()
	selected := map[string]string{}
	for id, key := range s.varKey {
		if id-1 < 0 || id-1 >= len(model) {
			continue
		}
		if !model[id-1] {
			continue
		}
		selected[key.Name] = key.Version
	}
	if len(selected) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("sat solver produced empty selection")
	}
	return selected, nil
}

// candidatesForRequirement returns the SAT variable IDs of all package
// versions that satisfy the requirement's constraints.
func candidatesForRequirement(req types.Requirement, s satSolverState) ([]int, error) {
	name := shared.NormalizePackageName(req.Name)
	ids, ok := s.packageVars[name]
	if !ok {
		return nil, nil
	}
	prepared, err := prepareConstraints(req.Constraints, s.cache)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, id := range ids {
		ok, err := satisfiesAll(s.varKey[id].Version, prepared, s.cache)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, id)
		}
	}
	return uniqueInts(out), nil
}

// sortReleasesAscending returns a new slice sorted by version
// ascending. Unparseable versions fall back to lexicographic ordering.
func sortReleasesAscending(values []types.PackageRelease, cache *versionCache) []types.PackageRelease {
	ordered := append([]types.PackageRelease(nil), values...)
	sort.Slice(ordered, func(i, j int) bool {
		if cmp := cache.compare(ordered[i].Version, ordered[j].Version); cmp != 0 {
			return cmp < 0
		}
		return ordered[i].Version < ordered[j].Version
	})
	return ordered
}

// uniqueInts deduplicates a slice of ints while preserving order.
func uniqueInts(values []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
