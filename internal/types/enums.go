package types

type SpecKind string

const (
	SpecKindPipeline SpecKind = "pipeline"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
	ConstraintOpArbEq  ConstraintOp = "==="
)

// MarkerOp covers the comparison operators allowed inside environment
// markers. It is a superset of ConstraintOp: markers additionally allow
// substring membership tests.
type MarkerOp string

const (
	MarkerOpEq     MarkerOp = "=="
	MarkerOpNe     MarkerOp = "!="
	MarkerOpCompat MarkerOp = "~="
	MarkerOpGte    MarkerOp = ">="
	MarkerOpLte    MarkerOp = "<="
	MarkerOpGt     MarkerOp = ">"
	MarkerOpLt     MarkerOp = "<"
	MarkerOpIn     MarkerOp = "in"
	MarkerOpNotIn  MarkerOp = "not in"
)

// MarkerJoin is the boolean connective of a non-leaf marker node.
type MarkerJoin string

const (
	MarkerJoinNone MarkerJoin = ""
	MarkerJoinAnd  MarkerJoin = "and"
	MarkerJoinOr   MarkerJoin = "or"
)

// Marker variables recognized in requirement environment markers. The
// set is limited to what a CI matrix cell can actually vary; anything
// else is rejected at parse time.
const (
	MarkerVarPythonVersion     = "python_version"
	MarkerVarPythonFullVersion = "python_full_version"
	MarkerVarSysPlatform       = "sys_platform"
	MarkerVarOSName            = "os_name"
	MarkerVarPlatformMachine   = "platform_machine"
	MarkerVarPlatformSystem    = "platform_system"
	MarkerVarExtra             = "extra"
)
