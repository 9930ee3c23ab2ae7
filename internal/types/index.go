package types

// IndexFile is the on-disk package index: every package name maps to
// its known versions. Releases optionally carries per-version install
// requirements (requirement lines, markers included) for transitive
// solving.
type IndexFile struct {
	Packages map[string][]string         `yaml:"packages"`
	Releases map[string][]PackageRelease `yaml:"releases,omitempty"`
}

type PackageRelease struct {
	Version  string   `yaml:"version"`
	Requires []string `yaml:"requires,omitempty"`
}
