package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

type OutputFileAdapter struct {
	Dir string
}

func NewOutputFileAdapter(dir string) OutputFileAdapter {
	return OutputFileAdapter{Dir: dir}
}

// WriteEnvironmentLock emits one `<label>.lock` file per matrix cell,
// one `name==version` pin per line, sorted by package name.
func (a OutputFileAdapter) WriteEnvironmentLock(lock types.EnvironmentLock) error {
	if lock.Label == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("environment lock label is empty")
	}
	path, err := a.ensurePath(lock.Label + ".lock")
	if err != nil {
		return err
	}
	entries := append([]types.LockEntry(nil), lock.Entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Package < entries[j].Package
	})
	var lines []string
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s==%s", entry.Package, entry.Version))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func (a OutputFileAdapter) WriteMatrixReport(entries []types.MatrixReportEntry) error {
	path, err := a.ensurePath("matrix.report")
	if err != nil {
		return err
	}
	ordered := append([]types.MatrixReportEntry(nil), entries...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Label < ordered[j].Label
	})
	data, err := yaml.Marshal(ordered)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal matrix report").
			WithCause(err)
	}
	return os.WriteFile(path, data, 0644)
}

func (a OutputFileAdapter) WriteResolutionReport(report types.ResolutionReport) error {
	path, err := a.ensurePath("resolution.report")
	if err != nil {
		return err
	}
	ordered := append([]types.ResolutionRecord(nil), report.Records...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Dependency != ordered[j].Dependency {
			return ordered[i].Dependency < ordered[j].Dependency
		}
		if ordered[i].Action != ordered[j].Action {
			return ordered[i].Action < ordered[j].Action
		}
		if ordered[i].Value != ordered[j].Value {
			return ordered[i].Value < ordered[j].Value
		}
		if ordered[i].Owner != ordered[j].Owner {
			return ordered[i].Owner < ordered[j].Owner
		}
		return ordered[i].Reason < ordered[j].Reason
	})
	var lines []string
	for _, record := range ordered {
		lines = append(lines, fmt.Sprintf(
			"%s,%s,%s,%s,%s,%s",
			record.Dependency,
			record.Action,
			record.Value,
			record.Reason,
			record.Owner,
			record.ExpiresAt,
		))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func (a OutputFileAdapter) WriteSnapshotIntent(intent types.SnapshotIntent) error {
	path, err := a.ensurePath("snapshot.intent")
	if err != nil {
		return err
	}
	content := fmt.Sprintf(
		"channel=%s\nsnapshot_prefix=%s\nsnapshot_id=%s\ncreated_at=%s\n",
		intent.Channel,
		intent.Prefix,
		intent.SnapshotID,
		intent.CreatedAt,
	)
	return os.WriteFile(path, []byte(content), 0644)
}

func (a OutputFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.OutputPort = OutputFileAdapter{}
