package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/core"
	"ocean-manifest/internal/policies"
	"ocean-manifest/internal/types"
)

// Resolve expands the matrix and computes one lock per surviving job,
// then writes the locks, the reports, and a snapshot intent to the
// output directory.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline spec path is required")
	}
	spec, err := s.SpecLoader.LoadPipeline(specPath)
	if err != nil {
		return ResolveResult{}, err
	}
	indexPath := strings.TrimSpace(req.Index)
	if indexPath == "" {
		indexPath = strings.TrimSpace(spec.Defaults.Index)
	}
	if indexPath == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package index file is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = strings.TrimSpace(spec.Defaults.Output)
	}
	if outputDir == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}

	compiler := core.NewSpecCompiler()
	if err := compiler.ValidateSpec(ctx, spec); err != nil {
		return ResolveResult{}, err
	}
	manifestReqs, _, err := s.loadManifest(specPath, spec)
	if err != nil {
		return ResolveResult{}, err
	}
	jobs, err := core.ExpandMatrix(ctx, spec.Matrix)
	if err != nil {
		return ResolveResult{}, err
	}
	jobs, err = filterJobs(jobs, req.Labels)
	if err != nil {
		return ResolveResult{}, err
	}

	setReqs, err := parseConstraintSets(spec.Matrix.ConstraintSets)
	if err != nil {
		return ResolveResult{}, err
	}
	setPolicy := policies.NewSetPolicy(spec.Matrix.ConstraintSets)
	resolver := core.NewResolverCore(adapters.NewIndexFileAdapter(indexPath))
	resolver.UseSATSolver = req.SATSolver

	output := adapters.NewOutputFileAdapter(outputDir)
	var locks []types.EnvironmentLock
	var reportEntries []types.MatrixReportEntry
	recordSeen := map[string]struct{}{}
	var records []types.ResolutionRecord
	for _, job := range jobs {
		env := core.EnvironmentForJob(job)
		jobReqs := append(setPolicy.FilterRequirements(job.ConstraintSet, manifestReqs), setReqs[job.ConstraintSet]...)
		lock, jobRecords, err := resolver.ResolveEnvironment(ctx, env, jobReqs, spec.Resolutions)
		if err != nil {
			return ResolveResult{}, err
		}
		lock.Job = job
		if err := output.WriteEnvironmentLock(lock); err != nil {
			return ResolveResult{}, err
		}
		locks = append(locks, lock)
		reportEntries = append(reportEntries, types.MatrixReportEntry{
			OS:            job.OS,
			Python:        job.Python,
			ConstraintSet: job.ConstraintSet,
			Label:         job.Label,
		})
		for _, record := range jobRecords {
			key := record.Dependency + "|" + record.Action + "|" + record.Value
			if _, ok := recordSeen[key]; ok {
				continue
			}
			recordSeen[key] = struct{}{}
			records = append(records, record)
		}
	}

	if err := output.WriteMatrixReport(reportEntries); err != nil {
		return ResolveResult{}, err
	}
	if err := output.WriteResolutionReport(types.ResolutionReport{Records: records}); err != nil {
		return ResolveResult{}, err
	}
	snapshotID := strings.TrimSpace(req.SnapshotID)
	prefix := snapshotPrefixForSpec(spec)
	if snapshotID == "" {
		snapshotID = buildSnapshotID(prefix, spec.Release.Channel, locks)
	}
	intent := buildSnapshotIntent(spec.Release.Channel, prefix, snapshotID, s.Clock)
	if err := output.WriteSnapshotIntent(intent); err != nil {
		return ResolveResult{}, err
	}
	return ResolveResult{
		PipelineName: spec.Metadata.Name,
		SnapshotID:   snapshotID,
		OutputDir:    outputDir,
		LockCount:    len(locks),
	}, nil
}

func filterJobs(jobs []types.MatrixJob, labels []string) ([]types.MatrixJob, error) {
	if len(labels) == 0 {
		return jobs, nil
	}
	wanted := map[string]struct{}{}
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		wanted[trimmed] = struct{}{}
	}
	var out []types.MatrixJob
	for _, job := range jobs {
		if _, ok := wanted[job.Label]; ok {
			out = append(out, job)
			delete(wanted, job.Label)
		}
	}
	if len(wanted) > 0 {
		var missing []string
		for label := range wanted {
			missing = append(missing, label)
		}
		sort.Strings(missing)
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown matrix labels: %s", strings.Join(missing, ", ")))
	}
	return out, nil
}

func parseConstraintSets(sets []types.ConstraintSet) (map[string][]types.Requirement, error) {
	parsed := map[string][]types.Requirement{}
	for _, set := range sets {
		reqs, err := core.ParseConstraintSet(set)
		if err != nil {
			return nil, err
		}
		parsed[set.Name] = reqs
	}
	return parsed, nil
}

func snapshotPrefixForSpec(spec types.Spec) string {
	prefix := strings.TrimSuffix(strings.TrimSpace(spec.Release.TagPrefix), "-")
	if prefix == "" {
		prefix = spec.Metadata.Name
	}
	return prefix
}

func buildSnapshotIntent(channel string, prefix string, snapshotID string, clock func() time.Time) types.SnapshotIntent {
	now := time.Now().UTC()
	if clock != nil {
		now = clock().UTC()
	}
	return types.SnapshotIntent{
		Channel:    channel,
		Prefix:     prefix,
		SnapshotID: snapshotID,
		CreatedAt:  now.Format(time.RFC3339),
	}
}

// buildSnapshotID hashes the full pin set so identical resolutions
// reuse the same snapshot id.
func buildSnapshotID(prefix string, channel string, locks []types.EnvironmentLock) string {
	ordered := append([]types.EnvironmentLock(nil), locks...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Label < ordered[j].Label
	})
	var builder strings.Builder
	builder.WriteString(prefix)
	builder.WriteString("\n")
	builder.WriteString(channel)
	builder.WriteString("\n")
	for _, lock := range ordered {
		builder.WriteString(lock.Label)
		builder.WriteString("\n")
		entries := append([]types.LockEntry(nil), lock.Entries...)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Package < entries[j].Package
		})
		for _, entry := range entries {
			builder.WriteString(entry.Package)
			builder.WriteString("==")
			builder.WriteString(entry.Version)
			builder.WriteString("\n")
		}
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(sum[:])[:12])
}
