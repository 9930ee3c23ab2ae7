package policies

import (
	"strings"

	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

// SetPolicy decides which manifest packages participate in each
// constraint set. A set with no package patterns is open: every
// manifest package participates. Pattern names are PEP 503-normalized
// before matching, so "Dwave_Neal" and "dwave-neal" are the same
// package.
type SetPolicy struct {
	sets map[string]setMatcher
}

type setMatcher struct {
	open     bool
	wildcard bool
	exact    map[string]struct{}
	prefixes []string
}

func NewSetPolicy(sets []types.ConstraintSet) SetPolicy {
	policy := SetPolicy{sets: map[string]setMatcher{}}
	for _, set := range sets {
		policy.sets[set.Name] = compileSetMatcher(set.Packages)
	}
	return policy
}

// ParticipatesIn reports whether the named package is in scope for the
// given constraint set. Unknown set names are treated as open.
func (p SetPolicy) ParticipatesIn(setName string, name string) bool {
	matcher, ok := p.sets[setName]
	if !ok || matcher.open {
		return true
	}
	return matcher.matches(shared.NormalizePackageName(name))
}

// FilterRequirements keeps the requirements whose packages participate
// in the set, preserving input order.
func (p SetPolicy) FilterRequirements(setName string, reqs []types.Requirement) []types.Requirement {
	matcher, ok := p.sets[setName]
	if !ok || matcher.open {
		return append([]types.Requirement(nil), reqs...)
	}
	var kept []types.Requirement
	for _, req := range reqs {
		if matcher.matches(shared.NormalizePackageName(req.Name)) {
			kept = append(kept, req)
		}
	}
	return kept
}

func compileSetMatcher(patterns []string) setMatcher {
	if len(patterns) == 0 {
		return setMatcher{open: true}
	}
	matcher := setMatcher{exact: map[string]struct{}{}}
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		switch {
		case trimmed == "":
			continue
		case trimmed == "*":
			matcher.wildcard = true
		case strings.HasSuffix(trimmed, "*"):
			prefix := shared.NormalizePackageName(strings.TrimSuffix(trimmed, "*"))
			matcher.prefixes = append(matcher.prefixes, prefix)
		default:
			matcher.exact[shared.NormalizePackageName(trimmed)] = struct{}{}
		}
	}
	return matcher
}

func (m setMatcher) matches(name string) bool {
	if m.wildcard {
		return true
	}
	if _, ok := m.exact[name]; ok {
		return true
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
