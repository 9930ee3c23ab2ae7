package app

import (
	"context"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/types"
)

// PruneSnapshots applies the retention policy to recorded snapshots
// and deletes the losers unless the run is a dry run.
func (s Service) PruneSnapshots(ctx context.Context, req PruneRequest) (PruneResult, error) {
	snapshotDir := strings.TrimSpace(req.SnapshotDir)
	if snapshotDir == "" {
		return PruneResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot directory is required")
	}
	snapshots := s.Snapshots(snapshotDir)
	listed, err := snapshots.ListSnapshots(ctx)
	if err != nil {
		return PruneResult{}, err
	}
	policy := types.SnapshotRetentionPolicy{
		KeepLast:        req.KeepLast,
		KeepDays:        req.KeepDays,
		ProtectChannels: req.ProtectChannels,
		ProtectPrefixes: req.ProtectPrefixes,
		DryRun:          req.DryRun,
	}
	plan := BuildPrunePlan(listed, policy, timeNow(s.Clock))
	if policy.DryRun {
		return PruneResult{
			KeepCount:   len(plan.Keep),
			DeleteCount: len(plan.Delete),
			DryRun:      true,
		}, nil
	}
	var deleted []string
	for _, snapshot := range plan.Delete {
		if err := snapshots.DeleteSnapshot(ctx, snapshot.SnapshotID); err != nil {
			return PruneResult{}, err
		}
		deleted = append(deleted, snapshot.SnapshotID)
	}
	return PruneResult{
		KeepCount:   len(plan.Keep),
		DeleteCount: len(deleted),
		Deleted:     deleted,
		DryRun:      false,
	}, nil
}

func timeNow(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
