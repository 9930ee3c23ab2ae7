package ports

import (
	"context"

	"ocean-manifest/internal/types"
)

type SnapshotPort interface {
	Record(ctx context.Context, snapshotID string) error
	Promote(ctx context.Context, snapshotID string, channel string) error
	ListSnapshots(ctx context.Context) ([]types.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, snapshotID string) error
}
