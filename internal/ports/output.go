package ports

import "ocean-manifest/internal/types"

type OutputPort interface {
	WriteEnvironmentLock(lock types.EnvironmentLock) error
	WriteMatrixReport(entries []types.MatrixReportEntry) error
	WriteResolutionReport(report types.ResolutionReport) error
	WriteSnapshotIntent(intent types.SnapshotIntent) error
}

type OutputReaderPort interface {
	ReadEnvironmentLocks(dir string) ([]types.EnvironmentLock, error)
	ReadResolutionReport(path string) (types.ResolutionReport, error)
	ReadSnapshotIntent(path string) (types.SnapshotIntent, error)
}
