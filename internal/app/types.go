package app

import "ocean-manifest/internal/types"

type ValidateRequest struct {
	SpecPath string
}

type ValidateResult struct {
	PipelineName string
	JobCount     int
	Requirements int
}

type ResolveRequest struct {
	SpecPath   string
	Index      string
	OutputDir  string
	Labels     []string
	SnapshotID string
	SATSolver  bool
}

type ResolveResult struct {
	PipelineName string
	SnapshotID   string
	OutputDir    string
	LockCount    int
}

type MatrixRequest struct {
	SpecPath  string
	OutputDir string
}

type MatrixResult struct {
	PipelineName string
	Jobs         []types.MatrixJob
}

type IndexRequest struct {
	Output           string
	IndexURL         string
	User             string
	APIKey           string
	Packages         []string
	MaxPackages      int
	Workers          int
	FetchRequires    bool
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type IndexResult struct {
	OutputPath   string
	PackageCount int
}

type InspectRequest struct {
	OutputDir  string
	Index      string
	GraphLabel string
}

type InspectLockSummary struct {
	Label    string
	Count    int
	Packages []string
}

type InspectResult struct {
	LockCount         int
	Locks             []InspectLockSummary
	ResolutionRecords []types.ResolutionRecord
	SnapshotIntent    types.SnapshotIntent
	GraphDOT          string
}

type ReleaseRequest struct {
	SpecPath    string
	Tag         string
	OutputDir   string
	SnapshotDir string
	Promote     bool
}

type ReleaseResult struct {
	Decision   types.ReleaseDecision
	SnapshotID string
	Promoted   bool
}

type PruneRequest struct {
	SnapshotDir     string
	KeepLast        int
	KeepDays        int
	ProtectChannels []string
	ProtectPrefixes []string
	DryRun          bool
}

type PruneResult struct {
	KeepCount   int
	DeleteCount int
	Deleted     []string
	DryRun      bool
}
