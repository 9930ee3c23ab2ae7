package types

// ConstraintSet is a named list of extra version specifiers applied on
// top of the manifest for one matrix column. Pins is a space-separated
// list of "name==version" style specifiers, matching how CI passes
// them to the installer. Packages optionally scopes the set: when
// non-empty, only manifest packages matching one of the patterns
// (exact name, trailing "*" prefix, or a lone "*") participate in the
// set's jobs.
type ConstraintSet struct {
	Name     string   `yaml:"name"`
	Pins     string   `yaml:"pins"`
	Packages []string `yaml:"packages,omitempty"`
}

// MatrixExclude removes matching cells from the expanded matrix. Empty
// fields are wildcards; a cell is excluded when every non-empty field
// matches. Values may use a trailing "*" for prefix matching.
type MatrixExclude struct {
	OS            string `yaml:"os,omitempty"`
	Python        string `yaml:"python,omitempty"`
	ConstraintSet string `yaml:"constraint_set,omitempty"`
	Reason        string `yaml:"reason,omitempty"`
}

type Matrix struct {
	OS             []string        `yaml:"os"`
	Python         []string        `yaml:"python"`
	ConstraintSets []ConstraintSet `yaml:"constraint_sets"`
	Exclude        []MatrixExclude `yaml:"exclude,omitempty"`
}

// MatrixJob is one expanded matrix cell.
type MatrixJob struct {
	OS            string
	Python        string
	ConstraintSet string
	Label         string
}
