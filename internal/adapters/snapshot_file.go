package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

// SnapshotFileAdapter stores manifest snapshots as marker files under
// Dir/snapshots and channel pointers under Dir/channels. Each marker
// holds the snapshot id and the creation timestamp.
type SnapshotFileAdapter struct {
	Dir string
	Now func() time.Time
}

func NewSnapshotFileAdapter(dir string) SnapshotFileAdapter {
	return SnapshotFileAdapter{Dir: dir, Now: time.Now}
}

func (a SnapshotFileAdapter) Record(ctx context.Context, snapshotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.validateSnapshotID(snapshotID); err != nil {
		return err
	}
	snapshotsDir := filepath.Join(a.Dir, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create snapshots directory").
			WithCause(err)
	}
	path := filepath.Join(snapshotsDir, snapshotID+".snapshot")
	if _, err := os.Stat(path); err == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("snapshot already exists")
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	content := snapshotID + "\n" + now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write snapshot metadata").
			WithCause(err)
	}
	return nil
}

func (a SnapshotFileAdapter) Promote(ctx context.Context, snapshotID string, channel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.validateSnapshotID(snapshotID); err != nil {
		return err
	}
	if strings.TrimSpace(channel) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("channel is empty")
	}
	channelsDir := filepath.Join(a.Dir, "channels")
	if err := os.MkdirAll(channelsDir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create channels directory").
			WithCause(err)
	}
	path := filepath.Join(channelsDir, channel)
	if err := os.WriteFile(path, []byte(snapshotID+"\n"), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write channel pointer").
			WithCause(err)
	}
	return nil
}

func (a SnapshotFileAdapter) ListSnapshots(ctx context.Context) ([]types.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Dir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot directory is empty")
	}
	snapshotsDir := filepath.Join(a.Dir, "snapshots")
	entries, err := os.ReadDir(snapshotsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.SnapshotInfo{}, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read snapshots directory").
			WithCause(err)
	}
	var snapshots []types.SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".snapshot") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read snapshot info").
				WithCause(err)
		}
		snapshotID := strings.TrimSuffix(name, ".snapshot")
		createdAt := info.ModTime().UTC()
		content, err := os.ReadFile(filepath.Join(snapshotsDir, name))
		if err == nil {
			lines := strings.Split(strings.TrimSpace(string(content)), "\n")
			if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
				snapshotID = strings.TrimSpace(lines[0])
			}
			if len(lines) > 1 {
				if parsed := parseTimeFlexible(lines[1]); !parsed.IsZero() {
					createdAt = parsed
				}
			}
		}
		snapshots = append(snapshots, types.SnapshotInfo{
			SnapshotID: snapshotID,
			Prefix:     snapshotPrefix(snapshotID),
			CreatedAt:  createdAt,
		})
	}
	if err := applyChannelMappings(a.Dir, snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (a SnapshotFileAdapter) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.validateSnapshotID(snapshotID); err != nil {
		return err
	}
	path := filepath.Join(a.Dir, "snapshots", snapshotID+".snapshot")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("snapshot not found")
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to delete snapshot").
			WithCause(err)
	}
	return nil
}

func (a SnapshotFileAdapter) validateSnapshotID(snapshotID string) error {
	if strings.TrimSpace(a.Dir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot directory is empty")
	}
	if strings.TrimSpace(snapshotID) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot id is empty")
	}
	if strings.Contains(snapshotID, string(os.PathSeparator)) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot id contains path separator")
	}
	return nil
}

// snapshotPrefix returns the text before the final dash-separated
// segment, the convention used when snapshot ids are minted.
func snapshotPrefix(snapshotID string) string {
	idx := strings.LastIndex(snapshotID, "-")
	if idx <= 0 {
		return ""
	}
	return snapshotID[:idx]
}

func applyChannelMappings(root string, snapshots []types.SnapshotInfo) error {
	channelsDir := filepath.Join(root, "channels")
	entries, err := os.ReadDir(channelsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read channels directory").
			WithCause(err)
	}
	mapping := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(channelsDir, entry.Name()))
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read channel pointer").
				WithCause(err)
		}
		snapshotID := strings.TrimSpace(string(content))
		if snapshotID == "" {
			continue
		}
		mapping[snapshotID] = entry.Name()
	}
	for i := range snapshots {
		if channel, ok := mapping[snapshots[i].SnapshotID]; ok {
			snapshots[i].Channel = channel
		}
	}
	return nil
}

var _ ports.SnapshotPort = SnapshotFileAdapter{}
