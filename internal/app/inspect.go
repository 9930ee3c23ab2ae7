package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/core"
	"ocean-manifest/internal/types"
)

// Inspect summarizes a previous resolve run from its output directory.
// With a graph label and an index it also renders that lock's
// dependency graph in DOT format.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	locks, err := s.OutputReader.ReadEnvironmentLocks(outputDir)
	if err != nil {
		return InspectResult{}, err
	}
	result := InspectResult{LockCount: len(locks)}
	for _, lock := range locks {
		summary := InspectLockSummary{Label: lock.Label, Count: len(lock.Entries)}
		for _, entry := range lock.Entries {
			summary.Packages = append(summary.Packages, fmt.Sprintf("%s==%s", entry.Package, entry.Version))
		}
		result.Locks = append(result.Locks, summary)
	}
	report, err := s.OutputReader.ReadResolutionReport(filepath.Join(outputDir, "resolution.report"))
	if err == nil {
		result.ResolutionRecords = report.Records
	}
	intent, err := s.OutputReader.ReadSnapshotIntent(filepath.Join(outputDir, "snapshot.intent"))
	if err == nil {
		result.SnapshotIntent = intent
	}
	if label := strings.TrimSpace(req.GraphLabel); label != "" {
		dot, err := s.exportGraph(locks, label, req.Index)
		if err != nil {
			return InspectResult{}, err
		}
		result.GraphDOT = dot
	}
	return result, nil
}

func (s Service) exportGraph(locks []types.EnvironmentLock, label string, indexPath string) (string, error) {
	indexPath = strings.TrimSpace(indexPath)
	if indexPath == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("graph export requires a package index")
	}
	var target types.EnvironmentLock
	found := false
	for _, lock := range locks {
		if lock.Label == label {
			target = lock
			found = true
			break
		}
	}
	if !found {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no lock found for label: %s", label))
	}
	index := adapters.NewIndexFileAdapter(indexPath)
	releases, err := index.Releases()
	if err != nil {
		return "", err
	}
	job, err := core.ParseJobLabel(label)
	if err != nil {
		return "", err
	}
	return s.GraphExport.ExportDOT(target, releases, core.EnvironmentForJob(job))
}
