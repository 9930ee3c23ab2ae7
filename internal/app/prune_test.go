package app

import (
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/adapters"
)

func recordSnapshotAt(t *testing.T, dir string, id string, created time.Time) {
	t.Helper()
	adapter := adapters.NewSnapshotFileAdapter(dir)
	adapter.Now = func() time.Time { return created }
	require.NoError(t, adapter.Record(t.Context(), id))
}

func TestServicePruneSnapshots(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	snapshotDir := t.TempDir()
	recordSnapshotAt(t, snapshotDir, "ocean-aaaa", now.Add(-3*time.Hour))
	recordSnapshotAt(t, snapshotDir, "ocean-bbbb", now.Add(-2*time.Hour))
	recordSnapshotAt(t, snapshotDir, "ocean-cccc", now.Add(-1*time.Hour))

	service := NewService()
	service.Clock = func() time.Time { return now }

	dry, err := service.PruneSnapshots(t.Context(), PruneRequest{
		SnapshotDir: snapshotDir,
		KeepLast:    1,
		DryRun:      true,
	})
	require.NoError(t, err)
	require.True(t, dry.DryRun)
	require.Equal(t, 1, dry.KeepCount)
	require.Equal(t, 2, dry.DeleteCount)
	require.Empty(t, dry.Deleted)

	result, err := service.PruneSnapshots(t.Context(), PruneRequest{
		SnapshotDir: snapshotDir,
		KeepLast:    1,
	})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"ocean-aaaa", "ocean-bbbb"}, result.Deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}

	remaining, err := adapters.NewSnapshotFileAdapter(snapshotDir).ListSnapshots(t.Context())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "ocean-cccc", remaining[0].SnapshotID)
}

func TestServicePruneSnapshotsProtectedChannel(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	snapshotDir := t.TempDir()
	recordSnapshotAt(t, snapshotDir, "ocean-aaaa", now.AddDate(0, 0, -60))
	recordSnapshotAt(t, snapshotDir, "ocean-bbbb", now.AddDate(0, 0, -60))
	require.NoError(t, adapters.NewSnapshotFileAdapter(snapshotDir).Promote(t.Context(), "ocean-aaaa", "pypi"))

	service := NewService()
	service.Clock = func() time.Time { return now }

	result, err := service.PruneSnapshots(t.Context(), PruneRequest{
		SnapshotDir:     snapshotDir,
		KeepDays:        7,
		ProtectChannels: []string{"pypi"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.KeepCount)
	if diff := cmp.Diff([]string{"ocean-bbbb"}, result.Deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestServicePruneSnapshotsRequiresDir(t *testing.T) {
	_, err := NewService().PruneSnapshots(t.Context(), PruneRequest{})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
