// Package token defines the token kinds produced by the lexer and consumed by the VM.
// The token stream is the only program representation: operator precedence is
// already encoded in it as explicit grouping, so the VM never consults a
// precedence table of its own.
package token

import (
	"fmt"
	"math"
)

// Kind represents the kind of a token.
type Kind int

// Token kinds
const (
	Null Kind = iota

	// Operands
	Variable     // name
	Pointer      // & (memory dereference of the next operand)
	Literal      // 1.5
	Percent      // 50% (percent of the variable "value")
	LiteralArray // 1|2|3 (random pick)

	// Unary modifiers
	Negate    // -
	Not       // !
	PlusMinus // +- (random sign)

	// Grouping
	StartGroup // (
	EndGroup   // )

	// Calls and function literals
	FunctionCall   // name() or ()
	TailCall       // >name() or >()
	AnonFunction   // ()=>{body}
	Function       // name()=>{body}
	AnonLambda     // ()=>expr;
	Lambda         // name()=>expr;

	// Arithmetic
	Add   // +
	Sub   // -
	Mul   // *
	Div   // /
	Mod   // %%
	Pow   // **
	Range // ~ (random interpolation)

	// Comparison and logic
	Gt    // >
	Lt    // <
	GtEq  // >=
	LtEq  // <=
	Eq    // ==
	NotEq // !=
	Or    // ||
	And   // &&
	Xor   // ^

	// Control
	TernaryTrue  // ?
	TernaryFalse // :
	BlockStart   // {
	BlockEnd     // }

	// Assignment
	Set       // =
	AddSet    // +=
	SubSet    // -=
	MulSet    // *=
	DivSet    // /=
	ModSet    // %%=
	PowSet    // **=
	Increment // ++
	Decrement // --

	// Boundaries
	Statement // ;
	Separator // ,
	Beep      // @payload@
)

var kindNames = map[Kind]string{
	Null: "NULL",

	Variable:     "VARIABLE",
	Pointer:      "&",
	Literal:      "LITERAL",
	Percent:      "PERCENT",
	LiteralArray: "LITERAL_ARRAY",

	Negate:    "NEGATE",
	Not:       "NOT",
	PlusMinus: "+-",

	StartGroup: "(",
	EndGroup:   ")",

	FunctionCall: "CALL",
	TailCall:     "TAIL_CALL",
	AnonFunction: "ANON_FUNCTION",
	Function:     "FUNCTION",
	AnonLambda:   "ANON_LAMBDA",
	Lambda:       "LAMBDA",

	Add:   "+",
	Sub:   "-",
	Mul:   "*",
	Div:   "/",
	Mod:   "%%",
	Pow:   "**",
	Range: "~",

	Gt:    ">",
	Lt:    "<",
	GtEq:  ">=",
	LtEq:  "<=",
	Eq:    "==",
	NotEq: "!=",
	Or:    "||",
	And:   "&&",
	Xor:   "^",

	TernaryTrue:  "?",
	TernaryFalse: ":",
	BlockStart:   "{",
	BlockEnd:     "}",

	Set:       "=",
	AddSet:    "+=",
	SubSet:    "-=",
	MulSet:    "*=",
	DivSet:    "/=",
	ModSet:    "%%=",
	PowSet:    "**=",
	Increment: "++",
	Decrement: "--",

	Statement: ";",
	Separator: ",",
	Beep:      "BEEP",
}

// String returns a string representation of the token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsAssignment returns true for = and the compound assignment operators.
func (k Kind) IsAssignment() bool {
	return k >= Set && k <= PowSet
}

// IsBinary returns true for operators that fold an operand into the accumulator.
func (k Kind) IsBinary() bool {
	return k >= Add && k <= Xor
}

// IsFunctionLiteral returns true for the four function literal forms.
func (k Kind) IsFunctionLiteral() bool {
	return k >= AnonFunction && k <= Lambda
}

// IsNamedLiteral returns true for function literals that carry a name.
// Named literals only register a function and produce no value.
func (k Kind) IsNamedLiteral() bool {
	return k == Function || k == Lambda
}

// IsBoundary returns true for statement and argument separators.
func (k Kind) IsBoundary() bool {
	return k == Statement || k == Separator
}

// Token represents a lexical token.
type Token struct {
	Kind  Kind
	Value float64 // NaN unless the kind carries a numeric literal
	Text  string  // exact matched text
}

// New creates a token whose Value is parsed from text.
func New(kind Kind, text string) Token {
	return Token{Kind: kind, Value: ParseNumber(text), Text: text}
}

// Synthetic creates a token that has no numeric value.
func Synthetic(kind Kind, text string) Token {
	return Token{Kind: kind, Value: math.NaN(), Text: text}
}

// Equal reports whether two tokens have the same kind, value and text.
// NaN values compare equal to each other.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind || t.Text != o.Text {
		return false
	}
	if math.IsNaN(t.Value) {
		return math.IsNaN(o.Value)
	}
	return t.Value == o.Value
}

func (t Token) String() string {
	if math.IsNaN(t.Value) {
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
	return fmt.Sprintf("%s %q (%g)", t.Kind, t.Text, t.Value)
}
