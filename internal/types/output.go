package types

type LockEntry struct {
	Package string
	Version string
}

// EnvironmentLock is the resolved pin set for one matrix cell.
type EnvironmentLock struct {
	Label   string
	Job     MatrixJob
	Entries []LockEntry
}

type ResolvedDependency struct {
	Package string
	Version string
}

type SnapshotIntent struct {
	Channel    string
	Prefix     string
	SnapshotID string
	CreatedAt  string
}

type ResolutionRecord struct {
	Dependency string
	Action     string
	Value      string
	Reason     string
	Owner      string
	ExpiresAt  string
}

type ResolutionReport struct {
	Records []ResolutionRecord
}

// MatrixReportEntry summarizes one expanded job for the matrix report.
type MatrixReportEntry struct {
	OS            string `yaml:"os"`
	Python        string `yaml:"python"`
	ConstraintSet string `yaml:"constraint_set"`
	Label         string `yaml:"label"`
}

// ReleaseDecision is the outcome of evaluating a tag against the
// pipeline's release rule.
type ReleaseDecision struct {
	Tag      string
	Version  string
	Channel  string
	Eligible bool
	Reasons  []string
}
