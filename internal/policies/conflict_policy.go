package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/types"
)

const (
	ActionForce   = "force"
	ActionRelax   = "relax"
	ActionReplace = "replace"
	ActionBlock   = "block"
)

// ApplyResolution rewrites a requirement according to a resolution
// directive and returns the audit record. Block is an error: the
// dependency may not appear in any lock.
func ApplyResolution(req types.Requirement, directive types.ResolutionDirective) (types.Requirement, types.ResolutionRecord, error) {
	record := types.ResolutionRecord(directive)

	switch strings.ToLower(directive.Action) {
	case ActionForce:
		if directive.Value == "" {
			return types.Requirement{}, record, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("force directive requires value")
		}
		req.Constraints = []types.Constraint{{
			Name:    req.Name,
			Op:      types.ConstraintOpEq,
			Version: directive.Value,
			Source:  "resolution:force",
		}}
		return req, record, nil
	case ActionRelax:
		req.Constraints = []types.Constraint{}
		return req, record, nil
	case ActionReplace:
		if directive.Value == "" {
			return types.Requirement{}, record, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("replace directive requires value")
		}
		req.Name = directive.Value
		req.Constraints = []types.Constraint{}
		return req, record, nil
	case ActionBlock:
		return types.Requirement{}, record, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg(fmt.Sprintf("dependency blocked by directive: %s", req.Name))
	default:
		return types.Requirement{}, record, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown resolution action: %s", directive.Action))
	}
}
