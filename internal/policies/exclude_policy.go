package policies

import (
	"strings"

	"ocean-manifest/internal/types"
)

// ExcludePolicy decides whether an expanded matrix cell is excluded.
// Each rule's non-empty axes must all match; axis values support a
// trailing "*" for prefix matching. Rules are checked in declaration
// order and the first match wins so reasons stay deterministic.
type ExcludePolicy struct {
	rules []compiledExclude
}

type compiledExclude struct {
	os            axisPattern
	python        axisPattern
	constraintSet axisPattern
	rule          types.MatrixExclude
}

type axisPattern struct {
	any    bool
	prefix string
	exact  string
}

func NewExcludePolicy(rules []types.MatrixExclude) ExcludePolicy {
	policy := ExcludePolicy{}
	for _, rule := range rules {
		policy.rules = append(policy.rules, compiledExclude{
			os:            compileAxisPattern(rule.OS),
			python:        compileAxisPattern(rule.Python),
			constraintSet: compileAxisPattern(rule.ConstraintSet),
			rule:          rule,
		})
	}
	return policy
}

// Match returns the first exclusion rule covering the job, if any.
func (p ExcludePolicy) Match(job types.MatrixJob) (types.MatrixExclude, bool) {
	for _, rule := range p.rules {
		if rule.os.matches(job.OS) && rule.python.matches(job.Python) && rule.constraintSet.matches(job.ConstraintSet) {
			return rule.rule, true
		}
	}
	return types.MatrixExclude{}, false
}

func compileAxisPattern(value string) axisPattern {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "*" {
		return axisPattern{any: true}
	}
	if strings.HasSuffix(trimmed, "*") {
		return axisPattern{prefix: strings.TrimSuffix(trimmed, "*")}
	}
	return axisPattern{exact: trimmed}
}

func (p axisPattern) matches(value string) bool {
	if p.any {
		return true
	}
	if p.prefix != "" {
		return strings.HasPrefix(value, p.prefix)
	}
	return value == p.exact
}
