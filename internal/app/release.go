package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/core"
)

// Release evaluates a tag against the pipeline's release rule. When
// the tag is eligible and promotion is requested, the snapshot from
// the latest resolve run is recorded and its channel pointer moved.
func (s Service) Release(ctx context.Context, req ReleaseRequest) (ReleaseResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return ReleaseResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline spec path is required")
	}
	tag := strings.TrimSpace(req.Tag)
	if tag == "" {
		return ReleaseResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("tag is required")
	}
	spec, err := s.SpecLoader.LoadPipeline(specPath)
	if err != nil {
		return ReleaseResult{}, err
	}
	_, project, err := s.loadManifest(specPath, spec)
	if err != nil {
		return ReleaseResult{}, err
	}
	decision, err := core.EvaluateTag(tag, spec.Release, project.Version)
	if err != nil {
		return ReleaseResult{}, err
	}
	result := ReleaseResult{Decision: decision}
	if !req.Promote {
		return result, nil
	}
	if !decision.Eligible {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(strings.Join(decision.Reasons, "; "))
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = strings.TrimSpace(spec.Defaults.Output)
	}
	if outputDir == "" {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required for promotion")
	}
	snapshotDir := strings.TrimSpace(req.SnapshotDir)
	if snapshotDir == "" {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot directory is required for promotion")
	}
	intent, err := s.OutputReader.ReadSnapshotIntent(filepath.Join(outputDir, "snapshot.intent"))
	if err != nil {
		return result, err
	}
	snapshots := s.Snapshots(snapshotDir)
	if err := snapshots.Record(ctx, intent.SnapshotID); err != nil {
		if errbuilder.CodeOf(err) != errbuilder.CodeAlreadyExists {
			return result, err
		}
	}
	if err := snapshots.Promote(ctx, intent.SnapshotID, decision.Channel); err != nil {
		return result, err
	}
	result.SnapshotID = intent.SnapshotID
	result.Promoted = true
	return result, nil
}
