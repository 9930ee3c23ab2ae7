package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"ocean-manifest/internal/types"
)

// EvaluateTag decides whether a pushed tag may trigger deployment to
// the release channel. The tag must carry the configured prefix, the
// remainder must be a PEP 440 version, pre/dev releases are gated by
// AllowPrerelease, and MatchManifest additionally requires the tag to
// equal the manifest's own version.
func EvaluateTag(tag string, rule types.ReleaseRule, manifestVersion string) (types.ReleaseDecision, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return types.ReleaseDecision{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("tag is required")
	}

	decision := types.ReleaseDecision{Tag: trimmed, Channel: rule.Channel, Eligible: true}

	versionText := trimmed
	if rule.TagPrefix != "" {
		if !strings.HasPrefix(trimmed, rule.TagPrefix) {
			decision.Eligible = false
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("tag missing prefix %q", rule.TagPrefix))
			return decision, nil
		}
		versionText = strings.TrimPrefix(trimmed, rule.TagPrefix)
	}

	version, err := pep440.Parse(versionText)
	if err != nil {
		decision.Eligible = false
		decision.Reasons = append(decision.Reasons, fmt.Sprintf("tag is not a release version: %s", versionText))
		return decision, nil
	}
	decision.Version = version.String()

	if !rule.AllowPrerelease && !isFinalRelease(decision.Version) {
		decision.Eligible = false
		decision.Reasons = append(decision.Reasons, "pre, post, and dev releases are not deployable on this channel")
	}
	if strings.Contains(decision.Version, "+") {
		decision.Eligible = false
		decision.Reasons = append(decision.Reasons, "local version segments are never deployable")
	}
	if rule.MatchManifest && strings.TrimSpace(manifestVersion) != "" {
		manifest, err := pep440.Parse(manifestVersion)
		if err != nil {
			return types.ReleaseDecision{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("manifest version is not a version: %s", manifestVersion)).
				WithCause(err)
		}
		if version.Compare(manifest) != 0 {
			decision.Eligible = false
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("tag %s does not match manifest version %s", decision.Version, manifest.String()))
		}
	}
	return decision, nil
}

// isFinalRelease reports whether a normalized PEP 440 version string is
// a plain release: epoch and numeric segments only, no pre, post, dev,
// or local suffix.
func isFinalRelease(normalized string) bool {
	rest := normalized
	if idx := strings.Index(rest, "!"); idx >= 0 {
		rest = rest[idx+1:]
	}
	for _, r := range rest {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return rest != ""
}
