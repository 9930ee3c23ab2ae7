package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"ocean-manifest/internal/types"
)

// preparedConstraint is a pre-parsed version constraint ready for
// repeated comparison. Arbitrary equality (===) is kept as a raw string
// because PEP 440 defines it as exact textual match.
type preparedConstraint struct {
	op   types.ConstraintOp
	spec pep440.Specifiers
	raw  string
}

// versionCache memoizes parsed version objects to avoid repeated parsing
// during constraint evaluation and sorting.
type versionCache struct {
	versions map[string]pep440.Version
	specs    map[string]pep440.Specifiers
}

func newVersionCache() *versionCache {
	return &versionCache{
		versions: map[string]pep440.Version{},
		specs:    map[string]pep440.Specifiers{},
	}
}

// version returns a parsed PEP 440 version, caching the result.
func (c *versionCache) version(value string) (pep440.Version, error) {
	if parsed, ok := c.versions[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.versions[value] = parsed
	return parsed, nil
}

// spec returns parsed PEP 440 specifiers, caching the result.
func (c *versionCache) spec(value string) (pep440.Specifiers, error) {
	if parsed, ok := c.specs[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	c.specs[value] = parsed
	return parsed, nil
}

// compare returns -1, 0, or 1 comparing two version strings. Returns 0
// on parse errors.
func (c *versionCache) compare(a string, b string) int {
	v1, err := c.version(a)
	if err != nil {
		return 0
	}
	v2, err := c.version(b)
	if err != nil {
		return 0
	}
	return v1.Compare(v2)
}

// bestCompatibleVersion selects the highest version from available that
// satisfies all of the requirement's constraints. Returns an error if
// no compatible version exists.
func bestCompatibleVersion(req types.Requirement, available []string, cache *versionCache) (string, error) {
	if len(available) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no available versions for %s", req.Name))
	}
	if cache == nil {
		cache = newVersionCache()
	}
	parsedConstraints, err := prepareConstraints(req.Constraints, cache)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, version := range available {
		ok, err := satisfiesAll(version, parsedConstraints, cache)
		if err != nil {
			return "", err
		}
		if ok {
			candidates = append(candidates, version)
		}
	}
	if len(candidates) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("no compatible version for %s", req.Name))
	}
	sort.Slice(candidates, func(i, j int) bool {
		return cache.compare(candidates[i], candidates[j]) > 0
	})
	return candidates[0], nil
}

// prepareConstraints parses each constraint's version string upfront so
// it can be reused across multiple candidate comparisons.
func prepareConstraints(constraints []types.Constraint, cache *versionCache) ([]preparedConstraint, error) {
	var out []preparedConstraint
	for _, constraint := range constraints {
		if constraint.Op == types.ConstraintOpNone {
			continue
		}
		if constraint.Op == types.ConstraintOpArbEq {
			out = append(out, preparedConstraint{op: constraint.Op, raw: constraint.Version})
			continue
		}
		spec, err := cache.spec(toPep440Spec(constraint))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid specifier for %s: %s%s", constraint.Name, constraint.Op, constraint.Version)).
				WithCause(err)
		}
		out = append(out, preparedConstraint{op: constraint.Op, spec: spec})
	}
	return out, nil
}

// satisfiesAll checks a version against all prepared constraints.
func satisfiesAll(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	if len(constraints) == 0 {
		return true, nil
	}
	parsed, err := cache.version(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		if constraint.op == types.ConstraintOpArbEq {
			if version != constraint.raw {
				return false, nil
			}
			continue
		}
		if !constraint.spec.Check(parsed) {
			return false, nil
		}
	}
	return true, nil
}

// toPep440Spec converts an internal constraint to a PEP 440 specifier
// string (e.g. ">= 1.0", "~= 2.3").
func toPep440Spec(constraint types.Constraint) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", constraint.Op, constraint.Version))
}

// sortVersionsDescending orders version strings newest first,
// falling back to lexicographic order for unparseable values.
func sortVersionsDescending(versions []string, cache *versionCache) []string {
	if cache == nil {
		cache = newVersionCache()
	}
	ordered := append([]string(nil), versions...)
	sort.Slice(ordered, func(i, j int) bool {
		if cmp := cache.compare(ordered[i], ordered[j]); cmp != 0 {
			return cmp > 0
		}
		return ordered[i] > ordered[j]
	})
	return ordered
}
