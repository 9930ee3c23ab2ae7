package types

// ProjectManifest is the parsed [project] table of a pyproject.toml:
// the package's own identity plus its declared dependencies.
type ProjectManifest struct {
	Name           string
	Version        string
	RequiresPython string
	Requirements   []Requirement
}
