package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/types"
)

// opTokens is the ordered list of constraint operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false
// matches (e.g. "===" before "==" before "=").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpArbEq,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

// ParseConstraint splits a raw "name>=version" string into a Constraint.
// When no operator is found the constraint is treated as a bare name
// reference with ConstraintOpNone.
func ParseConstraint(raw string, source string) (types.Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Constraint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty constraint")
	}
	for _, op := range opTokens {
		if strings.Contains(raw, string(op)) {
			parts := strings.SplitN(raw, string(op), 2)
			name := strings.TrimSpace(parts[0])
			version := strings.TrimSpace(parts[1])
			if name == "" || version == "" {
				return types.Constraint{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid constraint: %s", raw))
			}
			return types.Constraint{
				Name:    name,
				Op:      op,
				Version: version,
				Source:  source,
			}, nil
		}
	}
	return types.Constraint{
		Name:    raw,
		Op:      types.ConstraintOpNone,
		Version: "",
		Source:  source,
	}, nil
}

// ParseRequirement parses one manifest line of the form
//
//	name[extras] op version, op version ; marker
//
// into a Requirement. Comments and surrounding whitespace must already
// be stripped by the loader.
func ParseRequirement(raw string, source string) (types.Requirement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty requirement")
	}

	specPart := raw
	var marker *types.Marker
	if idx := strings.Index(raw, ";"); idx >= 0 {
		specPart = strings.TrimSpace(raw[:idx])
		markerText := strings.TrimSpace(raw[idx+1:])
		if markerText == "" {
			return types.Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("requirement has empty marker: %s", raw))
		}
		parsed, err := ParseMarker(markerText)
		if err != nil {
			return types.Requirement{}, err
		}
		marker = &parsed
	}

	name, extras, specs, err := splitNameAndSpecs(specPart)
	if err != nil {
		return types.Requirement{}, err
	}

	req := types.Requirement{
		Name:   name,
		Extras: extras,
		Marker: marker,
		Source: source,
	}
	if specs == "" {
		return req, nil
	}
	for _, piece := range strings.Split(specs, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return types.Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("requirement has empty specifier: %s", raw))
		}
		constraint, err := ParseConstraint(name+piece, source)
		if err != nil {
			return types.Requirement{}, err
		}
		if constraint.Op == types.ConstraintOpNone {
			return types.Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("specifier without operator: %s", piece))
		}
		req.Constraints = append(req.Constraints, constraint)
	}
	return req, nil
}

// splitNameAndSpecs separates "name[extras]>=1.0,<2" into its name,
// extras list, and the raw specifier tail.
func splitNameAndSpecs(raw string) (string, []string, string, error) {
	rest := strings.TrimSpace(raw)
	end := len(rest)
	for i, r := range rest {
		if r == '[' || r == '<' || r == '>' || r == '=' || r == '!' || r == '~' || r == ' ' {
			end = i
			break
		}
	}
	name := strings.TrimSpace(rest[:end])
	if name == "" {
		return "", nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("requirement has no package name: %s", raw))
	}
	rest = strings.TrimSpace(rest[end:])

	var extras []string
	if strings.HasPrefix(rest, "[") {
		close := strings.Index(rest, "]")
		if close < 0 {
			return "", nil, "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unterminated extras list: %s", raw))
		}
		for _, extra := range strings.Split(rest[1:close], ",") {
			extra = strings.TrimSpace(extra)
			if extra != "" {
				extras = append(extras, extra)
			}
		}
		rest = strings.TrimSpace(rest[close+1:])
	}
	return name, extras, rest, nil
}
