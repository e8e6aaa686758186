package lexer

import (
	"regexp"
	"strings"

	"github.com/zurustar/trace/pkg/token"
)

// Mode selects which of the two grammars is active.
// The same symbol can mean different things depending on the mode, e.g. "-" is
// Negate when an operand is expected and Sub when an operator is expected.
type Mode int

const (
	ExpectOperand Mode = iota
	ExpectOperator
)

func (m Mode) String() string {
	if m == ExpectOperator {
		return "operator"
	}
	return "operand"
}

// rule matches one token kind at the start of the input.
// match returns the length of the match, or -1.
type rule struct {
	kind  token.Kind
	match func(s string) int
}

func pattern(expr string) func(string) int {
	re := regexp.MustCompile(`^(?:` + expr + `)`)
	return func(s string) int {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return -1
		}
		return loc[1]
	}
}

func literal(text string) func(string) int {
	return func(s string) int {
		if strings.HasPrefix(s, text) {
			return len(text)
		}
		return -1
	}
}

var percentPrefix = regexp.MustCompile(`^-?[0-9.]+%`)

// percentLiteral matches "n%" unless the percent sign is followed by exactly one
// more "%", which makes it the start of the "%%" modulo operator. "5%%%2" is
// therefore 5 percent modulo 2.
func percentLiteral(s string) int {
	loc := percentPrefix.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	rest := s[loc[1]:]
	if !strings.HasPrefix(rest, "%") || strings.HasPrefix(rest, "%%") {
		return loc[1]
	}
	return -1
}

const ident = `[a-zA-Z_][\w.]*`

var beepRule = rule{token.Beep, pattern(`@[^@]*@`)}

// Rules are tried in order and the first match wins, so the longer forms
// (function literals, calls) come before the identifier and number forms
// they would otherwise be read as.
var operandRules = []rule{
	beepRule,
	{token.Negate, literal("-")},
	{token.PlusMinus, literal("+-")},
	{token.Not, literal("!")},
	{token.AnonFunction, pattern(`\(\)=>\{[^}]*\}`)},
	{token.AnonLambda, pattern(`\(\)=>[^;]*;?`)},
	{token.Function, pattern(ident + `\(\)=>\{[^}]*\}`)},
	{token.Lambda, pattern(ident + `\(\)=>[^;]*;?`)},
	{token.FunctionCall, pattern(`(?:` + ident + `)?\(\)`)},
	{token.TailCall, pattern(`>(?:` + ident + `)?\(\)`)},
	{token.Variable, pattern(ident)},
	{token.LiteralArray, pattern(`-?[0-9.]+(?:\|-?[0-9.]+)+`)},
	{token.Percent, percentLiteral},
	{token.Literal, pattern(`-?[0-9.]+`)},
	{token.Statement, literal(";")},
	{token.StartGroup, literal("(")},
	{token.Pointer, literal("&")},
}

var operatorRules = []rule{
	beepRule,
	{token.AddSet, literal("+=")},
	{token.SubSet, literal("-=")},
	{token.PowSet, literal("**=")},
	{token.MulSet, literal("*=")},
	{token.DivSet, literal("/=")},
	{token.ModSet, literal("%%=")},
	{token.Increment, literal("++")},
	{token.Decrement, literal("--")},

	{token.Add, literal("+")},
	{token.Sub, literal("-")},
	{token.Pow, literal("**")},
	{token.Mul, literal("*")},
	{token.Div, literal("/")},
	{token.Mod, literal("%%")},
	{token.Range, literal("~")},

	{token.GtEq, literal(">=")},
	{token.LtEq, literal("<=")},
	{token.NotEq, literal("!=")},
	{token.Eq, literal("==")},
	{token.Lt, literal("<")},
	{token.Gt, literal(">")},
	{token.Or, literal("||")},
	{token.And, literal("&&")},
	{token.Xor, literal("^")},

	{token.Set, literal("=")},

	{token.TernaryTrue, literal("?")},
	{token.TernaryFalse, literal(":")},
	{token.BlockStart, literal("{")},
	{token.BlockEnd, literal("}")},

	{token.Statement, literal(";")},
	{token.Separator, literal(",")},
	{token.EndGroup, literal(")")},
}

func (m Mode) rules() []rule {
	if m == ExpectOperator {
		return operatorRules
	}
	return operandRules
}

// Match returns the kind and length of the first rule of the mode's grammar
// that matches the start of s.
func (m Mode) Match(s string) (token.Kind, int, bool) {
	for _, r := range m.rules() {
		if n := r.match(s); n > 0 {
			return r.kind, n, true
		}
	}
	return token.Null, 0, false
}

// Next returns the mode that follows a token of the given kind.
func (m Mode) Next(kind token.Kind) Mode {
	switch kind {
	case token.EndGroup, token.Increment, token.Decrement:
		return ExpectOperator
	case token.Function, token.Lambda, token.Statement, token.Separator, token.Pointer,
		token.Negate, token.PlusMinus, token.Not, token.StartGroup, token.BlockStart:
		return ExpectOperand
	}
	if m == ExpectOperand {
		return ExpectOperator
	}
	return ExpectOperand
}
