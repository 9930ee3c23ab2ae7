package types

type Metadata struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Owners      []string `yaml:"owners"`
	Description string   `yaml:"description,omitempty"`
}

// SpecDefaults provides pipeline-level defaults that the CLI and
// application layer use when a value is not explicitly provided via
// flags or environment variables.
type SpecDefaults struct {
	Index  string `yaml:"index,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// ManifestRefs names the dependency manifest files the pipeline owns.
// Requirements files use the "name op version ; marker" line format;
// Pyproject points at a pyproject.toml whose [project] table carries
// dependencies and requires-python.
type ManifestRefs struct {
	Requirements []string `yaml:"requirements"`
	Pyproject    string   `yaml:"pyproject,omitempty"`
}

type ResolutionDirective struct {
	Dependency string `yaml:"dependency"`
	Action     string `yaml:"action"`
	Value      string `yaml:"value,omitempty"`
	Reason     string `yaml:"reason"`
	Owner      string `yaml:"owner"`
	ExpiresAt  string `yaml:"expires_at,omitempty"`
}

// ReleaseRule gates deployment: a tag must carry the given prefix and
// parse as a PEP 440 public version before artifacts may be uploaded
// to the named channel.
type ReleaseRule struct {
	TagPrefix       string `yaml:"tag_prefix,omitempty"`
	Channel         string `yaml:"channel"`
	AllowPrerelease bool   `yaml:"allow_prerelease,omitempty"`
	MatchManifest   bool   `yaml:"match_manifest,omitempty"`
}

type Spec struct {
	APIVersion  string                `yaml:"api_version"`
	Kind        SpecKind              `yaml:"kind"`
	Metadata    Metadata              `yaml:"metadata"`
	Defaults    SpecDefaults          `yaml:"defaults,omitempty"`
	Manifest    ManifestRefs          `yaml:"manifest"`
	Matrix      Matrix                `yaml:"matrix"`
	Resolutions []ResolutionDirective `yaml:"resolutions,omitempty"`
	Release     ReleaseRule           `yaml:"release"`
}
