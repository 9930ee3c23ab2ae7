package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"ocean-manifest/internal/types"
)

// markerVariables is the closed set of environment marker variables the
// matrix can vary. Unknown variables fail at parse time rather than
// silently evaluating to the empty string.
var markerVariables = map[string]struct{}{
	types.MarkerVarPythonVersion:     {},
	types.MarkerVarPythonFullVersion: {},
	types.MarkerVarSysPlatform:       {},
	types.MarkerVarOSName:            {},
	types.MarkerVarPlatformMachine:   {},
	types.MarkerVarPlatformSystem:    {},
	types.MarkerVarExtra:             {},
}

// versionedMarkerVariables compare with PEP 440 semantics instead of
// plain string ordering.
var versionedMarkerVariables = map[string]struct{}{
	types.MarkerVarPythonVersion:     {},
	types.MarkerVarPythonFullVersion: {},
}

type markerTokenKind int

const (
	tokenIdent markerTokenKind = iota
	tokenString
	tokenOp
	tokenLParen
	tokenRParen
)

type markerToken struct {
	kind markerTokenKind
	text string
}

// ParseMarker parses an environment marker expression such as
//
//	python_version < "3.11" and sys_platform != "win32"
//
// into a Marker tree. "or" binds looser than "and"; parentheses group.
func ParseMarker(raw string) (types.Marker, error) {
	tokens, err := tokenizeMarker(raw)
	if err != nil {
		return types.Marker{}, err
	}
	parser := markerParser{tokens: tokens, raw: raw}
	marker, err := parser.parseOr()
	if err != nil {
		return types.Marker{}, err
	}
	if parser.pos != len(parser.tokens) {
		return types.Marker{}, markerError(raw, "trailing tokens after expression")
	}
	marker.Raw = raw
	return marker, nil
}

// EvalMarker evaluates a marker tree against a concrete environment.
func EvalMarker(marker types.Marker, env types.Environment) (bool, error) {
	switch marker.Join {
	case types.MarkerJoinAnd:
		for _, term := range marker.Terms {
			ok, err := EvalMarker(term, env)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case types.MarkerJoinOr:
		for _, term := range marker.Terms {
			ok, err := EvalMarker(term, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		if marker.Cmp == nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("marker leaf without comparison")
		}
		return evalComparison(*marker.Cmp, env)
	}
}

func evalComparison(cmp types.MarkerComparison, env types.Environment) (bool, error) {
	varValue, ok := env.Lookup(cmp.Var)
	if !ok {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown marker variable: %s", cmp.Var))
	}

	left, right := varValue, cmp.Value
	if cmp.Flipped {
		left, right = cmp.Value, varValue
	}

	switch cmp.Op {
	case types.MarkerOpIn:
		return strings.Contains(right, left), nil
	case types.MarkerOpNotIn:
		return !strings.Contains(right, left), nil
	}

	if _, versioned := versionedMarkerVariables[cmp.Var]; versioned {
		return compareVersionMarker(left, right, cmp.Op)
	}
	return compareStringMarker(left, right, cmp.Op)
}

// compareVersionMarker compares two values with PEP 440 semantics,
// falling back to string comparison when either side does not parse as
// a version.
func compareVersionMarker(left string, right string, op types.MarkerOp) (bool, error) {
	lv, lerr := pep440.Parse(left)
	rv, rerr := pep440.Parse(right)
	if lerr != nil || rerr != nil {
		if op == types.MarkerOpCompat {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("~= requires version operands: %q, %q", left, right))
		}
		return compareStringMarker(left, right, op)
	}
	switch op {
	case types.MarkerOpEq:
		return lv.Compare(rv) == 0, nil
	case types.MarkerOpNe:
		return lv.Compare(rv) != 0, nil
	case types.MarkerOpGte:
		return lv.Compare(rv) >= 0, nil
	case types.MarkerOpLte:
		return lv.Compare(rv) <= 0, nil
	case types.MarkerOpGt:
		return lv.Compare(rv) > 0, nil
	case types.MarkerOpLt:
		return lv.Compare(rv) < 0, nil
	case types.MarkerOpCompat:
		spec, err := pep440.NewSpecifiers("~= " + right)
		if err != nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid ~= operand: %s", right)).
				WithCause(err)
		}
		return spec.Check(lv), nil
	default:
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported marker operator: %s", op))
	}
}

func compareStringMarker(left string, right string, op types.MarkerOp) (bool, error) {
	switch op {
	case types.MarkerOpEq:
		return left == right, nil
	case types.MarkerOpNe:
		return left != right, nil
	case types.MarkerOpGte:
		return left >= right, nil
	case types.MarkerOpLte:
		return left <= right, nil
	case types.MarkerOpGt:
		return left > right, nil
	case types.MarkerOpLt:
		return left < right, nil
	default:
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported marker operator: %s", op))
	}
}

func tokenizeMarker(raw string) ([]markerToken, error) {
	var tokens []markerToken
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, markerToken{kind: tokenLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, markerToken{kind: tokenRParen, text: ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(raw[i+1:], c)
			if end < 0 {
				return nil, markerError(raw, "unterminated string literal")
			}
			tokens = append(tokens, markerToken{kind: tokenString, text: raw[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("<>=!~", rune(c)):
			j := i
			for j < len(raw) && strings.ContainsRune("<>=!~", rune(raw[j])) {
				j++
			}
			tokens = append(tokens, markerToken{kind: tokenOp, text: raw[i:j]})
			i = j
		case isIdentByte(c):
			j := i
			for j < len(raw) && isIdentByte(raw[j]) {
				j++
			}
			tokens = append(tokens, markerToken{kind: tokenIdent, text: raw[i:j]})
			i = j
		default:
			return nil, markerError(raw, fmt.Sprintf("unexpected character %q", c))
		}
	}
	return tokens, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type markerParser struct {
	tokens []markerToken
	pos    int
	raw    string
}

func (p *markerParser) peek() (markerToken, bool) {
	if p.pos >= len(p.tokens) {
		return markerToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *markerParser) next() (markerToken, bool) {
	token, ok := p.peek()
	if ok {
		p.pos++
	}
	return token, ok
}

func (p *markerParser) parseOr() (types.Marker, error) {
	first, err := p.parseAnd()
	if err != nil {
		return types.Marker{}, err
	}
	terms := []types.Marker{first}
	for {
		token, ok := p.peek()
		if !ok || token.kind != tokenIdent || token.text != "or" {
			break
		}
		p.pos++
		term, err := p.parseAnd()
		if err != nil {
			return types.Marker{}, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return types.Marker{Join: types.MarkerJoinOr, Terms: terms}, nil
}

func (p *markerParser) parseAnd() (types.Marker, error) {
	first, err := p.parseAtom()
	if err != nil {
		return types.Marker{}, err
	}
	terms := []types.Marker{first}
	for {
		token, ok := p.peek()
		if !ok || token.kind != tokenIdent || token.text != "and" {
			break
		}
		p.pos++
		term, err := p.parseAtom()
		if err != nil {
			return types.Marker{}, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return types.Marker{Join: types.MarkerJoinAnd, Terms: terms}, nil
}

func (p *markerParser) parseAtom() (types.Marker, error) {
	token, ok := p.next()
	if !ok {
		return types.Marker{}, markerError(p.raw, "unexpected end of marker")
	}
	if token.kind == tokenLParen {
		inner, err := p.parseOr()
		if err != nil {
			return types.Marker{}, err
		}
		closing, ok := p.next()
		if !ok || closing.kind != tokenRParen {
			return types.Marker{}, markerError(p.raw, "missing closing parenthesis")
		}
		return inner, nil
	}
	return p.parseComparison(token)
}

func (p *markerParser) parseComparison(first markerToken) (types.Marker, error) {
	var variable string
	var literal string
	var flipped bool

	switch first.kind {
	case tokenIdent:
		if _, ok := markerVariables[first.text]; !ok {
			return types.Marker{}, markerError(p.raw, fmt.Sprintf("unknown marker variable: %s", first.text))
		}
		variable = first.text
	case tokenString:
		literal = first.text
		flipped = true
	default:
		return types.Marker{}, markerError(p.raw, fmt.Sprintf("unexpected token %q", first.text))
	}

	op, err := p.parseMarkerOp()
	if err != nil {
		return types.Marker{}, err
	}

	second, ok := p.next()
	if !ok {
		return types.Marker{}, markerError(p.raw, "comparison missing right operand")
	}
	if flipped {
		if second.kind != tokenIdent {
			return types.Marker{}, markerError(p.raw, "comparison between two literals")
		}
		if _, ok := markerVariables[second.text]; !ok {
			return types.Marker{}, markerError(p.raw, fmt.Sprintf("unknown marker variable: %s", second.text))
		}
		variable = second.text
	} else {
		if second.kind != tokenString {
			return types.Marker{}, markerError(p.raw, "comparison right operand must be a quoted string")
		}
		literal = second.text
	}

	return types.Marker{
		Cmp: &types.MarkerComparison{
			Var:     variable,
			Op:      op,
			Value:   literal,
			Flipped: flipped,
		},
	}, nil
}

func (p *markerParser) parseMarkerOp() (types.MarkerOp, error) {
	token, ok := p.next()
	if !ok {
		return "", markerError(p.raw, "comparison missing operator")
	}
	if token.kind == tokenOp {
		switch types.MarkerOp(token.text) {
		case types.MarkerOpEq, types.MarkerOpNe, types.MarkerOpCompat,
			types.MarkerOpGte, types.MarkerOpLte, types.MarkerOpGt, types.MarkerOpLt:
			return types.MarkerOp(token.text), nil
		}
		return "", markerError(p.raw, fmt.Sprintf("invalid marker operator: %s", token.text))
	}
	if token.kind == tokenIdent && token.text == "in" {
		return types.MarkerOpIn, nil
	}
	if token.kind == tokenIdent && token.text == "not" {
		follow, ok := p.next()
		if !ok || follow.kind != tokenIdent || follow.text != "in" {
			return "", markerError(p.raw, `"not" must be followed by "in"`)
		}
		return types.MarkerOpNotIn, nil
	}
	return "", markerError(p.raw, fmt.Sprintf("invalid marker operator: %s", token.text))
}

func markerError(raw string, msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid marker %q: %s", raw, msg))
}
