package token

import (
	"math"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Null, "NULL"},
		{Variable, "VARIABLE"},
		{Literal, "LITERAL"},
		{StartGroup, "("},
		{EndGroup, ")"},
		{Add, "+"},
		{Mod, "%%"},
		{Pow, "**"},
		{Range, "~"},
		{NotEq, "!="},
		{ModSet, "%%="},
		{TailCall, "TAIL_CALL"},
		{Beep, "BEEP"},
		{Kind(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}

func TestKindClasses(t *testing.T) {
	for _, k := range []Kind{Set, AddSet, SubSet, MulSet, DivSet, ModSet, PowSet} {
		if !k.IsAssignment() {
			t.Errorf("%s should be an assignment", k)
		}
	}
	for _, k := range []Kind{Increment, Decrement, Eq, Variable} {
		if k.IsAssignment() {
			t.Errorf("%s should not be an assignment", k)
		}
	}

	for _, k := range []Kind{Add, Sub, Mul, Div, Mod, Pow, Range, Gt, Lt, GtEq, LtEq, Eq, NotEq, Or, And, Xor} {
		if !k.IsBinary() {
			t.Errorf("%s should be binary", k)
		}
	}
	if TernaryTrue.IsBinary() || Set.IsBinary() {
		t.Error("ternary and assignment markers are not binary operators")
	}

	if !Function.IsNamedLiteral() || !Lambda.IsNamedLiteral() {
		t.Error("named literals not detected")
	}
	if AnonFunction.IsNamedLiteral() || AnonLambda.IsNamedLiteral() {
		t.Error("anonymous literals reported as named")
	}
	for _, k := range []Kind{AnonFunction, Function, AnonLambda, Lambda} {
		if !k.IsFunctionLiteral() {
			t.Errorf("%s should be a function literal", k)
		}
	}
	if FunctionCall.IsFunctionLiteral() {
		t.Error("a call is not a function literal")
	}

	if !Statement.IsBoundary() || !Separator.IsBoundary() || EndGroup.IsBoundary() {
		t.Error("boundary classification is wrong")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0", 0},
		{"42", 42},
		{"-3", -3},
		{"1.5", 1.5},
		{".5", 0.5},
		{"1.", 1},
		{"1.2.3", 1.2},
		{"50%", 50},
		{"1|2|3", 1},
		{"007", 7},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.input); got != tt.expected {
			t.Errorf("ParseNumber(%q) = %g, expected %g", tt.input, got, tt.expected)
		}
	}

	for _, input := range []string{"", ".", "-", "abc", "f()", "&"} {
		if got := ParseNumber(input); !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %g, expected NaN", input, got)
		}
	}
}

func TestTokenEqual(t *testing.T) {
	a := Synthetic(StartGroup, "(")
	b := Synthetic(StartGroup, "(")
	if !a.Equal(b) {
		t.Error("synthetic tokens with NaN values should be equal")
	}

	if New(Literal, "1").Equal(New(Literal, "2")) {
		t.Error("different literals should not be equal")
	}
	if New(Literal, "1").Equal(New(Variable, "1")) {
		t.Error("different kinds should not be equal")
	}
	if Synthetic(Literal, "1").Equal(New(Literal, "1")) {
		t.Error("NaN and 1 should not be equal")
	}
}
