package types

type Constraint struct {
	Name    string
	Op      ConstraintOp
	Version string
	Source  string
}

// Requirement is one manifest line: a package name, zero or more
// version constraints, and an optional environment marker gating
// whether the line applies in a given environment.
type Requirement struct {
	Name        string
	Extras      []string
	Constraints []Constraint
	Marker      *Marker
	Source      string
}

// Marker is a parsed environment marker expression. A leaf node has
// Cmp set and Join empty; an inner node joins its Terms with "and" or
// "or". Raw preserves the original text for reports.
type Marker struct {
	Join  MarkerJoin
	Terms []Marker
	Cmp   *MarkerComparison
	Raw   string
}

// MarkerComparison is a single "variable op literal" test. Flipped
// records the "literal op variable" spelling so evaluation can reverse
// the operands.
type MarkerComparison struct {
	Var     string
	Op      MarkerOp
	Value   string
	Flipped bool
}

// Environment is a concrete assignment of marker variables, derived
// from one matrix cell.
type Environment struct {
	Label             string
	PythonVersion     string
	PythonFullVersion string
	SysPlatform       string
	OSName            string
	PlatformMachine   string
	PlatformSystem    string
	Extra             string
}

// Lookup returns the value of a marker variable in this environment.
func (e Environment) Lookup(name string) (string, bool) {
	switch name {
	case MarkerVarPythonVersion:
		return e.PythonVersion, true
	case MarkerVarPythonFullVersion:
		return e.PythonFullVersion, true
	case MarkerVarSysPlatform:
		return e.SysPlatform, true
	case MarkerVarOSName:
		return e.OSName, true
	case MarkerVarPlatformMachine:
		return e.PlatformMachine, true
	case MarkerVarPlatformSystem:
		return e.PlatformSystem, true
	case MarkerVarExtra:
		return e.Extra, true
	default:
		return "", false
	}
}
