package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

type OutputReaderAdapter struct{}

func NewOutputReaderAdapter() OutputReaderAdapter {
	return OutputReaderAdapter{}
}

// ReadEnvironmentLocks loads every `*.lock` file under dir, sorted by
// label so callers see a stable order.
func (a OutputReaderAdapter) ReadEnvironmentLocks(dir string) ([]types.EnvironmentLock, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.lock"))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid lock directory pattern").
			WithCause(err)
	}
	sort.Strings(matches)
	var locks []types.EnvironmentLock
	for _, path := range matches {
		lock, err := readEnvironmentLock(path)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

func readEnvironmentLock(path string) (types.EnvironmentLock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.EnvironmentLock{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("lock file not found").
			WithCause(err)
	}
	lock := types.EnvironmentLock{
		Label: strings.TrimSuffix(filepath.Base(path), ".lock"),
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "==", 2)
		if len(parts) != 2 {
			return types.EnvironmentLock{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid lock file format")
		}
		lock.Entries = append(lock.Entries, types.LockEntry{
			Package: strings.TrimSpace(parts[0]),
			Version: strings.TrimSpace(parts[1]),
		})
	}
	return lock, nil
}

func (a OutputReaderAdapter) ReadResolutionReport(path string) (types.ResolutionReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.ResolutionReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("resolution.report not found").
			WithCause(err)
	}
	var records []types.ResolutionRecord
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 5 {
			return types.ResolutionReport{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid resolution.report format")
		}
		record := types.ResolutionRecord{
			Dependency: strings.TrimSpace(parts[0]),
			Action:     strings.TrimSpace(parts[1]),
			Value:      strings.TrimSpace(parts[2]),
			Reason:     strings.TrimSpace(parts[3]),
			Owner:      strings.TrimSpace(parts[4]),
		}
		if len(parts) > 5 {
			record.ExpiresAt = strings.TrimSpace(parts[5])
		}
		records = append(records, record)
	}
	return types.ResolutionReport{Records: records}, nil
}

func (a OutputReaderAdapter) ReadSnapshotIntent(path string) (types.SnapshotIntent, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.SnapshotIntent{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("snapshot.intent not found").
			WithCause(err)
	}
	intent := types.SnapshotIntent{}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return types.SnapshotIntent{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid snapshot.intent format")
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		switch key {
		case "channel":
			intent.Channel = value
		case "snapshot_prefix":
			intent.Prefix = value
		case "snapshot_id":
			intent.SnapshotID = value
		case "created_at":
			intent.CreatedAt = value
		}
	}
	if strings.TrimSpace(intent.SnapshotID) == "" {
		return types.SnapshotIntent{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot.intent missing snapshot_id")
	}
	return intent, nil
}

var _ ports.OutputReaderPort = OutputReaderAdapter{}
